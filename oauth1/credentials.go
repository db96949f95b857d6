package oauth1

import (
	"errors"
)

var (
	ErrMissingConsumer = errors.New("oauth1: consumer key and consumer secret are required")
	ErrPartialToken    = errors.New("oauth1: token and token secret must be set together")
)

// Application and (optional) user credentials used for signing.
type Credentials struct {
	// Application API key; sent as both `oauth_consumer_key` and `api_key`
	ConsumerKey string

	// Application secret. Never sent over the wire.
	ConsumerSecret string

	// Request token or access token, depending on handshake stage. Optional.
	Token string

	// Secret matching Token. Required iff Token is set.
	TokenSecret string
}

// Checks the invariants: consumer key and secret present, token fields both set or both empty.
func (c *Credentials) Validate() error {
	if c == nil || c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return ErrMissingConsumer
	}
	if (c.Token == "") != (c.TokenSecret == "") {
		return ErrPartialToken
	}
	return nil
}

func (c Credentials) HasToken() bool {
	return c.Token != "" && c.TokenSecret != ""
}

// Returns a copy with the token pair cleared, for consumer-only signing.
func (c Credentials) ConsumerOnly() Credentials {
	return Credentials{
		ConsumerKey:    c.ConsumerKey,
		ConsumerSecret: c.ConsumerSecret,
	}
}

// Returns a copy bound to a different token pair.
func (c Credentials) WithToken(token, secret string) Credentials {
	c.Token = token
	c.TokenSecret = secret
	return c
}
