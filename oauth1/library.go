package oauth1

import (
	"net/url"
	"strings"

	"github.com/garyburd/go-oauth/oauth"
)

// Signer backed by [github.com/garyburd/go-oauth/oauth].
//
// Nonce and timestamp are generated by the library and can not be injected.
type LibrarySigner struct{}

func (LibrarySigner) Sign(method, rawURL string, params url.Values, creds *Credentials) (url.Values, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	base, query, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	c := oauth.Client{
		Credentials: oauth.Credentials{
			Token:  creds.ConsumerKey,
			Secret: creds.ConsumerSecret,
		},
	}
	var tok *oauth.Credentials
	if creds.HasToken() {
		tok = &oauth.Credentials{
			Token:  creds.Token,
			Secret: creds.TokenSecret,
		}
	}

	out := CloneValues(params)
	out.Del("oauth_signature")
	out.Del("oauth_token")

	// the library ignores the URL query, so it is signed as part of the params instead
	signing := CloneValues(out)
	for k, vals := range query {
		signing[k] = append(signing[k], vals...)
	}
	c.SignParam(tok, method, base, signing)
	for k, vals := range signing {
		if strings.HasPrefix(k, "oauth_") {
			out[k] = vals
		}
	}
	return out, nil
}
