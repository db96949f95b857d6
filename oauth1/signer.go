package oauth1

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SignatureMethodHMACSHA1 = "HMAC-SHA1"
	Version                 = "1.0"
)

// Interface for OAuth 1.0a signature implementations.
//
// Sign returns a new set of parameters: the input params plus the `oauth_*` protocol parameters and `oauth_signature`. The input is not modified. When creds has no token, the request is signed in consumer-only mode.
type Signer interface {
	Sign(method, rawURL string, params url.Values, creds *Credentials) (url.Values, error)
}

// HMAC-SHA1 signer which builds the signature base string itself.
//
// The zero value is usable and uses the wall clock and random nonces.
type HMACSigner struct {
	// Returns the current time; used for `oauth_timestamp`. Defaults to [time.Now].
	Clock func() time.Time

	// Returns a fresh single-use token; used for `oauth_nonce`. Defaults to [NewNonce].
	Nonce func() string
}

func NewHMACSigner() *HMACSigner {
	return &HMACSigner{
		Clock: time.Now,
		Nonce: NewNonce,
	}
}

// Generates a random 32 character hex nonce.
func NewNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *HMACSigner) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

func (s *HMACSigner) nonce() string {
	if s.Nonce == nil {
		return NewNonce()
	}
	return s.Nonce()
}

func (s *HMACSigner) Sign(method, rawURL string, params url.Values, creds *Credentials) (url.Values, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	out := CloneValues(params)
	out.Del("oauth_signature")
	out.Set("oauth_consumer_key", creds.ConsumerKey)
	out.Set("oauth_nonce", s.nonce())
	out.Set("oauth_signature_method", SignatureMethodHMACSHA1)
	out.Set("oauth_timestamp", strconv.FormatInt(s.now().Unix(), 10))
	out.Set("oauth_version", Version)
	if creds.HasToken() {
		out.Set("oauth_token", creds.Token)
	} else {
		out.Del("oauth_token")
	}

	base, err := BaseString(method, rawURL, out)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha1.New, []byte(signingKey(creds.ConsumerSecret, creds.TokenSecret)))
	mac.Write([]byte(base))
	out.Set("oauth_signature", base64.StdEncoding.EncodeToString(mac.Sum(nil)))
	return out, nil
}

// Deep copy of a parameter set. A nil input returns an empty (non-nil) set.
func CloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+7)
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
