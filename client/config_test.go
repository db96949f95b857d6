package client

import (
	"testing"
	"time"

	"github.com/goflickr/goflickr/oauth1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	t.Setenv("FLICKR_API_KEY", "envkey")
	t.Setenv("FLICKR_API_SECRET", "envsecret")
	t.Setenv("FLICKR_OAUTH_TOKEN", "envtoken")
	t.Setenv("FLICKR_OAUTH_TOKEN_SECRET", "envtokensecret")
	t.Setenv("FLICKR_API_BASE", "https://api.example.com/services/")
	t.Setenv("FLICKR_TIMEOUT", "5s")

	cfg, err := LoadConfig()
	require.NoError(err)
	assert.Equal(Config{
		ConsumerKey:    "envkey",
		ConsumerSecret: "envsecret",
		Token:          "envtoken",
		TokenSecret:    "envtokensecret",
		APIBase:        "https://api.example.com/services/",
		Timeout:        5 * time.Second,
	}, cfg)

	c, err := NewAPIClient(cfg)
	require.NoError(err)
	assert.Equal("https://api.example.com/services/rest", c.Endpoints.REST)
	assert.Equal("https://api.example.com/services/upload/", c.Endpoints.Upload)
	assert.Equal(DefaultOAuthBase+"/request_token", c.Endpoints.RequestToken)
	assert.True(c.Credentials().HasToken())
	assert.False(c.Credentials().ConsumerOnly().HasToken())
	assert.NotEmpty(c.Headers.Get("User-Agent"))

	t.Setenv("FLICKR_TIMEOUT", "not-a-duration")
	_, err = LoadConfig()
	var configerr *ConfigError
	assert.ErrorAs(err, &configerr)
}

func TestNewAPIClientConfigErrors(t *testing.T) {
	assert := assert.New(t)

	var configerr *ConfigError

	_, err := NewAPIClient(Config{})
	assert.ErrorAs(err, &configerr)
	assert.ErrorIs(err, oauth1.ErrMissingConsumer)

	_, err = NewAPIClient(Config{ConsumerKey: "key"})
	assert.ErrorIs(err, oauth1.ErrMissingConsumer)

	_, err = NewAPIClient(Config{ConsumerKey: "key", ConsumerSecret: "secret", Token: "tok"})
	assert.ErrorAs(err, &configerr)
	assert.ErrorIs(err, oauth1.ErrPartialToken)

	_, err = NewAPIClient(Config{ConsumerKey: "key", ConsumerSecret: "secret", TokenSecret: "toksecret"})
	assert.ErrorIs(err, oauth1.ErrPartialToken)

	_, err = NewAPIClient(Config{ConsumerKey: "key", ConsumerSecret: "secret", APIBase: "not a url"})
	assert.ErrorAs(err, &configerr)

	_, err = NewAPIClient(Config{ConsumerKey: "key", ConsumerSecret: "secret", OAuthBase: "://bad"})
	assert.ErrorAs(err, &configerr)
}

func TestDefaultEndpoints(t *testing.T) {
	assert := assert.New(t)

	ep := DefaultEndpoints()
	assert.Equal(Endpoints{
		REST:         "https://api.flickr.com/services/rest",
		Upload:       "https://api.flickr.com/services/upload/",
		Replace:      "https://api.flickr.com/services/replace/",
		RequestToken: "https://www.flickr.com/services/oauth/request_token",
		AccessToken:  "https://www.flickr.com/services/oauth/access_token",
		Authorize:    "https://www.flickr.com/services/oauth/authorize",
	}, ep)
	assert.NoError(ep.validate())

	ep.Replace = "/relative/replace/"
	assert.Error(ep.validate())

	for _, raw := range []string{
		"https://api.example.com/services/rest?lang=en",
		"https://api.example.com/services/rest?",
		"https://api.example.com/services/rest#frag",
	} {
		ep = DefaultEndpoints()
		ep.REST = raw
		assert.Error(ep.validate(), raw)
	}

	var configerr *ConfigError
	_, err := NewAPIClient(Config{ConsumerKey: "key", ConsumerSecret: "secret", APIBase: "https://api.example.com/services?lang=en"})
	assert.ErrorAs(err, &configerr)
}
