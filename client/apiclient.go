package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goflickr/goflickr/formdata"
	"github.com/goflickr/goflickr/oauth1"
	"github.com/goflickr/goflickr/pkg/transport"
)

// HTTP transport used by [APIClient]. [http.Client] implements this interface.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// General purpose client for the Flickr REST API, including photo uploads and the OAuth handshake.
//
// Fields other than credentials may be customized after the client is created, but not while requests are in flight. Credentials can only be changed by deriving a new client ([APIClient.WithToken]).
type APIClient struct {
	// Inner HTTP client. Any [Doer] works; for example an [http.Client] with custom timeouts, or a test double.
	Client Doer

	// Service endpoint URLs.
	Endpoints Endpoints

	// Request signer. Defaults to [oauth1.HMACSigner] if nil.
	Signer oauth1.Signer

	// Optional multipart encoder for uploads. Mostly useful to fix the boundary in tests.
	FormEncoder *formdata.Encoder

	// Optional HTTP headers which will be included in all requests. Only a single value per key is included.
	Headers http.Header

	// Logger for request-level debug output. Defaults to [slog.Default] if nil.
	Logger *slog.Logger

	creds oauth1.Credentials
}

// Creates a client from the provided configuration, with a default HTTP client and User-Agent.
//
// Fails with [*ConfigError] if the consumer key or secret is missing, only one of token and token secret is set, or an endpoint URL is malformed.
func NewAPIClient(cfg Config) (*APIClient, error) {
	creds := oauth1.Credentials{
		ConsumerKey:    cfg.ConsumerKey,
		ConsumerSecret: cfg.ConsumerSecret,
		Token:          cfg.Token,
		TokenSecret:    cfg.TokenSecret,
	}
	if err := creds.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}

	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	oauthBase := cfg.OAuthBase
	if oauthBase == "" {
		oauthBase = DefaultOAuthBase
	}
	ep := EndpointsFor(apiBase, oauthBase)
	if err := ep.validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = transport.DefaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = transport.UserAgent()
	}

	return &APIClient{
		Client:    transport.NewClient(transport.WithTimeout(timeout)),
		Endpoints: ep,
		Signer:    oauth1.NewHMACSigner(),
		Headers: http.Header{
			"User-Agent": []string{ua},
		},
		creds: creds,
	}, nil
}

// Returns a copy of the client credentials.
func (c *APIClient) Credentials() oauth1.Credentials {
	return c.creds
}

// Returns a shallow copy of the APIClient bound to a different token pair; for example the request token between the two handshake steps, or a stored access token.
func (c *APIClient) WithToken(token, secret string) (*APIClient, error) {
	creds := c.creds.WithToken(token, secret)
	if err := creds.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	out := *c
	out.Headers = c.Headers.Clone()
	out.creds = creds
	return &out, nil
}

// Read-only API call (HTTP GET) to the given API method, eg "flickr.photos.getInfo".
func (c *APIClient) Get(ctx context.Context, endpoint string, params map[string]any) (*APIResult, error) {
	req, err := NewAPIRequest(http.MethodGet, endpoint, params)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Write API call (HTTP POST, form-encoded body) to the given API method.
func (c *APIClient) Post(ctx context.Context, endpoint string, params map[string]any) (*APIResult, error) {
	req, err := NewAPIRequest(http.MethodPost, endpoint, params)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Uploads a new photo. Params are the upload arguments (title, tags, is_public, etc). The returned result carries the new photo ID ([APIResult.PhotoID]), or a `ticketid` for asynchronous uploads.
func (c *APIClient) Upload(ctx context.Context, params map[string]any, file *formdata.File) (*APIResult, error) {
	return c.upload(ctx, params, file, UploadNew)
}

// Replaces the content of an existing photo; params must include `photo_id`.
func (c *APIClient) Replace(ctx context.Context, params map[string]any, file *formdata.File) (*APIResult, error) {
	return c.upload(ctx, params, file, UploadReplace)
}

func (c *APIClient) upload(ctx context.Context, params map[string]any, file *formdata.File, mode UploadMode) (*APIResult, error) {
	if file == nil {
		return nil, fmt.Errorf("upload requires a file payload")
	}
	req, err := NewAPIRequest(http.MethodPost, "", params)
	if err != nil {
		return nil, err
	}
	req.File = file
	req.Upload = mode
	return c.Do(ctx, req)
}

// Full-featured method for API requests: builds and signs the request, sends it, and normalizes the response.
func (c *APIClient) Do(ctx context.Context, req *APIRequest) (*APIResult, error) {
	b := RequestBuilder{
		Endpoints: c.Endpoints,
		Signer:    c.Signer,
		Encoder:   c.FormEncoder,
	}
	signed, err := b.Build(req, &c.creds)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, status, err := c.send(ctx, signed)
	duration := time.Since(start)

	label := statusLabel(err)
	apiRequests.WithLabelValues(signed.Kind, label).Inc()
	apiRequestDuration.WithLabelValues(signed.Kind, label).Observe(duration.Seconds())
	c.logger().Debug("flickr API request", "method", signed.Method, "endpoint", req.Endpoint, "kind", signed.Kind, "status", status, "outcome", label, "duration", duration)

	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *APIClient) send(ctx context.Context, signed *SignedRequest) (*APIResult, int, error) {
	httpReq, err := signed.HTTPRequest(ctx, c.Headers)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("%s request failed: %w", signed.Kind, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response body: %w", err)
	}
	res, err := NormalizeResponse(body, resp.StatusCode, signed.Format)
	return res, resp.StatusCode, err
}

func (c *APIClient) httpClient() Doer {
	if c.Client == nil {
		return http.DefaultClient
	}
	return c.Client
}

func (c *APIClient) signer() oauth1.Signer {
	if c.Signer == nil {
		return oauth1.NewHMACSigner()
	}
	return c.Signer
}

func (c *APIClient) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
