package client

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DefaultAPIBase   = "https://api.flickr.com/services"
	DefaultOAuthBase = "https://www.flickr.com/services/oauth"
)

// Client configuration. Can be populated directly, or from the environment with [LoadConfig].
type Config struct {
	// Application API key (required)
	ConsumerKey string `env:"FLICKR_API_KEY"`

	// Application secret (required)
	ConsumerSecret string `env:"FLICKR_API_SECRET"`

	// Optional OAuth token (request token during the handshake, access token afterwards)
	Token string `env:"FLICKR_OAUTH_TOKEN"`

	// Secret for Token. Must be set iff Token is set.
	TokenSecret string `env:"FLICKR_OAUTH_TOKEN_SECRET"`

	// URL prefix for the REST, upload and replace endpoints. Defaults to [DefaultAPIBase].
	APIBase string `env:"FLICKR_API_BASE"`

	// URL prefix for the OAuth endpoints. Defaults to [DefaultOAuthBase].
	OAuthBase string `env:"FLICKR_OAUTH_BASE"`

	// Per-request timeout of the default HTTP client. Defaults to [github.com/goflickr/goflickr/pkg/transport.DefaultTimeout]; ignored when a custom client is provided.
	Timeout time.Duration `env:"FLICKR_TIMEOUT"`

	// Optional User-Agent override.
	UserAgent string `env:"FLICKR_USER_AGENT"`
}

// Reads a [Config] from FLICKR_* environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, &ConfigError{Err: err}
	}
	return cfg, nil
}

// Full URLs of every service endpoint the client talks to.
type Endpoints struct {
	REST         string
	Upload       string
	Replace      string
	RequestToken string
	AccessToken  string
	Authorize    string
}

// Derives endpoint URLs from the API and OAuth URL prefixes.
func EndpointsFor(apiBase, oauthBase string) Endpoints {
	apiBase = strings.TrimSuffix(apiBase, "/")
	oauthBase = strings.TrimSuffix(oauthBase, "/")
	return Endpoints{
		REST:         apiBase + "/rest",
		Upload:       apiBase + "/upload/",
		Replace:      apiBase + "/replace/",
		RequestToken: oauthBase + "/request_token",
		AccessToken:  oauthBase + "/access_token",
		Authorize:    oauthBase + "/authorize",
	}
}

func DefaultEndpoints() Endpoints {
	return EndpointsFor(DefaultAPIBase, DefaultOAuthBase)
}

func (ep Endpoints) validate() error {
	for name, raw := range map[string]string{
		"rest":          ep.REST,
		"upload":        ep.Upload,
		"replace":       ep.Replace,
		"request token": ep.RequestToken,
		"access token":  ep.AccessToken,
		"authorize":     ep.Authorize,
	} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s endpoint: %w", name, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s endpoint: not an absolute URL: %q", name, raw)
		}
		if u.RawQuery != "" || u.Fragment != "" || strings.HasSuffix(raw, "?") {
			return fmt.Errorf("%s endpoint: must not carry a query or fragment: %q", name, raw)
		}
	}
	return nil
}
