package oauth1

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Percent-encodes a string per RFC 3986 section 2.1, as required by OAuth 1.0a (RFC 5849 section 3.6).
//
// Only the unreserved characters (ALPHA, DIGIT, '-', '.', '_', '~') are left as-is; everything else is encoded byte-wise as UTF-8 with upper-case hex digits. Note that this differs from [url.QueryEscape], which turns spaces in to '+'.
func PercentEncode(s string) string {
	var n int
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}

// Returns the "base string URI" (RFC 5849 section 3.4.1.2) for the given URL, along with any query parameters it carried.
//
// Scheme and host are lower-cased, default ports are removed, and query and fragment are dropped.
func NormalizeURL(rawURL string) (string, url.Values, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("oauth1: invalid request URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", nil, fmt.Errorf("oauth1: request URL must be absolute: %q", rawURL)
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	switch {
	case scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return scheme + "://" + host + path, u.Query(), nil
}

// Builds the normalized parameter string: every key and value percent-encoded, pairs sorted by key then value, joined with '&'.
//
// The `oauth_signature` parameter is never part of the string.
func NormalizeParams(params ...url.Values) string {
	type pair struct{ k, v string }
	var pairs []pair
	for _, p := range params {
		for k, vals := range p {
			if k == "oauth_signature" {
				continue
			}
			ek := PercentEncode(k)
			for _, v := range vals {
				pairs = append(pairs, pair{ek, PercentEncode(v)})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].k != pairs[j].k {
			return pairs[i].k < pairs[j].k
		}
		return pairs[i].v < pairs[j].v
	})

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.k)
		b.WriteByte('=')
		b.WriteString(p.v)
	}
	return b.String()
}

// Builds the signature base string: `METHOD&enc(url)&enc(params)`.
//
// Query parameters present on rawURL are included in the parameter set, as the protocol requires.
func BaseString(method, rawURL string, params url.Values) (string, error) {
	base, query, err := NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(method) + "&" + PercentEncode(base) + "&" + PercentEncode(NormalizeParams(query, params)), nil
}

func signingKey(consumerSecret, tokenSecret string) string {
	return PercentEncode(consumerSecret) + "&" + PercentEncode(tokenSecret)
}
