package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goflickr/goflickr/oauth1"

	"github.com/google/go-querystring/query"
)

// Permission levels which may be requested on the authorize page. Each level includes the ones before it.
var validPerms = map[string]bool{
	"read":   true,
	"write":  true,
	"delete": true,
}

// Callback value for out-of-band (non-web) handshakes; the user copies the verifier code manually.
const CallbackOOB = "oob"

// OAuth token pair returned by the request-token or access-token step.
type AuthTokenSet struct {
	Token       string
	TokenSecret string

	// Ready-to-redirect authorization page URL. Only set on the request-token step.
	AuthorizeURL string

	// Complete response; eg `oauth_callback_confirmed`, or `user_nsid`, `username` and `fullname` after the access-token step.
	Values url.Values
}

type authorizeQuery struct {
	Token string `url:"oauth_token"`
	Perms string `url:"perms,omitempty"`
}

// First handshake step: obtains a request token, signed with the consumer credentials only, and builds the authorization URL to send the user to.
//
// An empty callbackURL selects out-of-band mode ([CallbackOOB]). perms is one of "read", "write" or "delete"; any other value (including empty) is left out of the URL, so the application's default permissions apply.
func (c *APIClient) GetAuthenticationTokens(ctx context.Context, callbackURL, perms string) (*AuthTokenSet, error) {
	if callbackURL == "" {
		callbackURL = CallbackOOB
	}
	creds := c.creds.ConsumerOnly()
	params := url.Values{"oauth_callback": []string{callbackURL}}

	vals, err := c.tokenRequest(ctx, "request_token", c.Endpoints.RequestToken, params, &creds)
	if err != nil {
		return nil, err
	}
	tokens := AuthTokenSet{
		Token:       vals.Get("oauth_token"),
		TokenSecret: vals.Get("oauth_token_secret"),
		Values:      vals,
	}
	if tokens.Token == "" {
		return nil, &AuthError{Message: "request token response is missing oauth_token"}
	}

	aq := authorizeQuery{Token: tokens.Token}
	if validPerms[perms] {
		aq.Perms = perms
	}
	q, err := query.Values(aq)
	if err != nil {
		return nil, err
	}
	tokens.AuthorizeURL = c.Endpoints.Authorize + "?" + q.Encode()
	return &tokens, nil
}

// Second handshake step: exchanges the verifier (from the callback, or typed in by the user) for the final access token.
//
// The client must be bound to the request token from the first step; see [APIClient.WithToken].
func (c *APIClient) GetAuthTokens(ctx context.Context, verifier string) (*AuthTokenSet, error) {
	if verifier == "" {
		return nil, &AuthError{Message: "no OAuth verifier supplied"}
	}
	if !c.creds.HasToken() {
		return nil, &AuthError{Message: "request token required to exchange verifier"}
	}
	creds := c.creds
	params := url.Values{"oauth_verifier": []string{verifier}}

	vals, err := c.tokenRequest(ctx, "access_token", c.Endpoints.AccessToken, params, &creds)
	if err != nil {
		return nil, err
	}
	tokens := AuthTokenSet{
		Token:       vals.Get("oauth_token"),
		TokenSecret: vals.Get("oauth_token_secret"),
		Values:      vals,
	}
	if tokens.Token == "" || tokens.TokenSecret == "" {
		return nil, &AuthError{Message: "access token response is missing oauth_token or oauth_token_secret"}
	}
	return &tokens, nil
}

// Signed GET to one of the OAuth token endpoints, which answer with URL-encoded bodies. The HTTP status is checked before the body is parsed.
func (c *APIClient) tokenRequest(ctx context.Context, kind, endpoint string, params url.Values, creds *oauth1.Credentials) (url.Values, error) {
	start := time.Now()
	vals, status, err := c.doTokenRequest(ctx, endpoint, params, creds)
	duration := time.Since(start)

	label := statusLabel(err)
	apiRequests.WithLabelValues(kind, label).Inc()
	apiRequestDuration.WithLabelValues(kind, label).Observe(duration.Seconds())
	c.logger().Debug("flickr OAuth request", "kind", kind, "status", status, "outcome", label, "duration", duration)
	return vals, err
}

func (c *APIClient) doTokenRequest(ctx context.Context, endpoint string, params url.Values, creds *oauth1.Credentials) (url.Values, int, error) {
	if strings.ContainsAny(endpoint, "?#") {
		return nil, 0, &ConfigError{Err: fmt.Errorf("token endpoint must not carry a query or fragment: %q", endpoint)}
	}
	signed, err := c.signer().Sign(http.MethodGet, endpoint, params, creds)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+signed.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}
	for k := range c.Headers {
		req.Header.Set(k, c.Headers.Get(k))
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("OAuth token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("token request to %s failed", endpoint)
		// the service reports problems as `oauth_problem=...`
		if vals, err := url.ParseQuery(string(body)); err == nil && vals.Get("oauth_problem") != "" {
			msg = msg + ": " + vals.Get("oauth_problem")
		}
		return nil, resp.StatusCode, &AuthError{StatusCode: resp.StatusCode, Message: msg}
	}

	vals, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, resp.StatusCode, &DecodeError{Format: "urlencoded", Err: err}
	}
	return vals, resp.StatusCode, nil
}
