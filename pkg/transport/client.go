package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/hashicorp/go-cleanhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultTimeout = 30 * time.Second

// Default User-Agent header value for API clients.
func UserAgent() string {
	return "goflickr/" + versioninfo.Short()
}

type settings struct {
	timeout   time.Duration
	transport http.RoundTripper
	logger    *slog.Logger
}

type Option func(*settings)

// WithTimeout sets the overall per-request timeout. Zero disables the client-level timeout; context deadlines still apply.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.timeout = timeout
	}
}

// WithTransport sets a custom (inner) transport for the HTTP client.
func WithTransport(transport http.RoundTripper) Option {
	return func(s *settings) {
		s.transport = transport
	}
}

// WithLogger enables debug logging of every round trip to the given logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// Generates an HTTP client with decent general-purpose defaults for API calls: a pooled transport (not shared with [http.DefaultTransport]), OpenTelemetry instrumentation, and an overall timeout.
//
// The client never retries. Signed OAuth requests carry a single-use nonce, so a blind retry of the same request would be rejected as a replay anyway; retry decisions belong to calling code, which can re-sign.
func NewClient(options ...Option) *http.Client {
	s := settings{
		timeout:   DefaultTimeout,
		transport: cleanhttp.DefaultPooledTransport(),
	}
	for _, option := range options {
		option(&s)
	}

	var rt http.RoundTripper = otelhttp.NewTransport(s.transport)
	if s.logger != nil {
		rt = &loggingTransport{inner: rt, logger: s.logger}
	}
	return &http.Client{
		Transport: rt,
		Timeout:   s.timeout,
	}
}

// For use in tests: short timeout, default transport.
func TestingHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 2 * time.Second,
	}
}

type loggingTransport struct {
	inner  http.RoundTripper
	logger *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.inner.RoundTrip(req)
	// never log the query string; it carries signatures
	if err != nil {
		t.logger.Debug("HTTP round trip failed", "method", req.Method, "host", req.URL.Host, "path", req.URL.Path, "duration", time.Since(start), "err", err)
		return nil, err
	}
	t.logger.Debug("HTTP round trip", "method", req.Method, "host", req.URL.Host, "path", req.URL.Path, "status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}
