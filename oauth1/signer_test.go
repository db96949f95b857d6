package oauth1

import (
	"net/url"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Worked example from OAuth Core 1.0, appendix A.
var photosCreds = Credentials{
	ConsumerKey:    "dpf43f3p2l4k3l03",
	ConsumerSecret: "kd94hf93k423kf44",
	Token:          "nnch734d00sl2jdk",
	TokenSecret:    "pfkkdhi9sl3r4s00",
}

func fixedSigner(ts int64, nonce string) *HMACSigner {
	return &HMACSigner{
		Clock: func() time.Time { return time.Unix(ts, 0) },
		Nonce: func() string { return nonce },
	}
}

func TestRFCExampleSignature(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := fixedSigner(1191242096, "kllo9940pd9333jh")
	out, err := s.Sign("GET", "http://photos.example.net/photos?file=vacation.jpg&size=original", nil, &photosCreds)
	require.NoError(err)

	base, err := BaseString("GET", "http://photos.example.net/photos?file=vacation.jpg&size=original", out)
	require.NoError(err)
	assert.Equal("GET&http%3A%2F%2Fphotos.example.net%2Fphotos&file%3Dvacation.jpg%26oauth_consumer_key%3Ddpf43f3p2l4k3l03%26oauth_nonce%3Dkllo9940pd9333jh%26oauth_signature_method%3DHMAC-SHA1%26oauth_timestamp%3D1191242096%26oauth_token%3Dnnch734d00sl2jdk%26oauth_version%3D1.0%26size%3Doriginal", base)
	assert.Equal("tR3+Ty81lMeYAr/Fid0kMTYa/WM=", out.Get("oauth_signature"))

	// URL query params are signed, but not copied in to the output
	assert.Empty(out.Get("file"))
}

func TestSignedParams(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	params := url.Values{"method": []string{"flickr.test.echo"}}
	out, err := NewHMACSigner().Sign("POST", "https://api.example.com/services/rest", params, &photosCreds)
	require.NoError(err)

	for _, k := range []string{"oauth_signature", "oauth_nonce", "oauth_timestamp", "oauth_consumer_key", "oauth_token", "oauth_signature_method", "oauth_version"} {
		assert.Len(out[k], 1, k)
	}
	assert.Equal("HMAC-SHA1", out.Get("oauth_signature_method"))
	assert.Equal("1.0", out.Get("oauth_version"))
	assert.Equal("nnch734d00sl2jdk", out.Get("oauth_token"))
	assert.Equal("flickr.test.echo", out.Get("method"))

	// input must not be modified
	assert.Equal(url.Values{"method": []string{"flickr.test.echo"}}, params)
}

func TestNonceFreshness(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	hexNonce := regexp.MustCompile(`^[0-9a-f]{32}$`)
	s := NewHMACSigner()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		out, err := s.Sign("GET", "https://api.example.com/services/rest", nil, &photosCreds)
		require.NoError(err)
		n := out.Get("oauth_nonce")
		assert.Regexp(hexNonce, n)
		assert.False(seen[n], "nonce reused: %s", n)
		seen[n] = true

		ts, err := strconv.ParseInt(out.Get("oauth_timestamp"), 10, 64)
		require.NoError(err)
		assert.InDelta(time.Now().Unix(), ts, 5)
	}
}

func TestTimestampFollowsClock(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	now := time.Unix(1700000000, 0)
	s := &HMACSigner{Clock: func() time.Time { return now }}

	first, err := s.Sign("GET", "https://api.example.com/services/rest", nil, &photosCreds)
	require.NoError(err)
	now = now.Add(3 * time.Second)
	second, err := s.Sign("GET", "https://api.example.com/services/rest", nil, &photosCreds)
	require.NoError(err)

	assert.Equal("1700000000", first.Get("oauth_timestamp"))
	assert.Equal("1700000003", second.Get("oauth_timestamp"))
	assert.NotEqual(first.Get("oauth_nonce"), second.Get("oauth_nonce"))
	assert.NotEqual(first.Get("oauth_signature"), second.Get("oauth_signature"))
}

func TestConsumerOnly(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	creds := photosCreds.ConsumerOnly()
	params := url.Values{"oauth_callback": []string{"http://printer.example.com/ready"}}
	out, err := fixedSigner(1191242096, "abc").Sign("GET", "https://photos.example.net/request_token", params, &creds)
	require.NoError(err)
	assert.Empty(out["oauth_token"])
	assert.Equal("http://printer.example.com/ready", out.Get("oauth_callback"))
	assert.NotEmpty(out.Get("oauth_signature"))

	// a stray token param is not carried through
	params.Set("oauth_token", "leftover")
	out, err = fixedSigner(1191242096, "abc").Sign("GET", "https://photos.example.net/request_token", params, &creds)
	require.NoError(err)
	assert.Empty(out["oauth_token"])
}

func TestSignValidation(t *testing.T) {
	assert := assert.New(t)

	s := NewHMACSigner()
	_, err := s.Sign("GET", "https://api.example.com/", nil, &Credentials{ConsumerKey: "key"})
	assert.ErrorIs(err, ErrMissingConsumer)

	_, err = s.Sign("GET", "https://api.example.com/", nil, &Credentials{ConsumerKey: "key", ConsumerSecret: "secret", Token: "tok"})
	assert.ErrorIs(err, ErrPartialToken)

	_, err = s.Sign("GET", "/relative/path", nil, &photosCreds)
	assert.Error(err)

	_, err = s.Sign("GET", "https://api.example.com/", nil, nil)
	assert.ErrorIs(err, ErrMissingConsumer)
}

func TestLibrarySignerAgrees(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	params := url.Values{
		"method":   []string{"flickr.photos.search"},
		"text":     []string{"hello world! a+b=c ☃"},
		"tags":     []string{"b", "a"},
		"per_page": []string{"10"},
	}
	for _, rawURL := range []string{
		"https://api.example.com/services/rest",
		"https://api.example.com/services/rest?lang=en&tags=c",
		"HTTPS://API.example.com:443/services/rest",
	} {
		for _, creds := range []Credentials{photosCreds, photosCreds.ConsumerOnly()} {
			lib, err := LibrarySigner{}.Sign("POST", rawURL, params, &creds)
			require.NoError(err)
			require.NotEmpty(lib.Get("oauth_signature"))

			ts, err := strconv.ParseInt(lib.Get("oauth_timestamp"), 10, 64)
			require.NoError(err)
			own, err := fixedSigner(ts, lib.Get("oauth_nonce")).Sign("POST", rawURL, params, &creds)
			require.NoError(err)

			assert.Equal(own.Get("oauth_signature"), lib.Get("oauth_signature"), rawURL)
			assert.Equal(own.Get("oauth_token"), lib.Get("oauth_token"))

			// URL query params are signed, but not copied in to the returned set
			assert.Empty(lib["lang"])
			assert.Equal([]string{"b", "a"}, lib["tags"])
		}
	}
}
