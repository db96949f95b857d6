/*
General-purpose client for the Flickr REST API.

[APIClient] wraps an HTTP client (any [Doer]) and an OAuth 1.0a signer ([oauth1.Signer]), and provides a small generic interface: [APIClient.Get] and [APIClient.Post] for REST methods, [APIClient.Upload] and [APIClient.Replace] for photo uploads, and [APIClient.Do] with an [APIRequest] for complete control. No catalog of API methods is included; any method name is passed through verbatim.

Every request goes through the same pipeline:

  - [RequestBuilder] merges the mandatory parameters (`format=json`, `nojsoncallback=1`, `method`, `api_key`) with the caller's parameters, with the mandatory ones winning on collision, and picks the REST, upload or replace URL.
  - The signer adds `oauth_*` parameters. Uploads are signed over the non-file parameters only, and the file is appended to the multipart body afterwards.
  - The response is decoded by [NormalizeResponse]: JSON for REST calls, the legacy XML format for uploads. Both converge on [APIResult], and on one set of typed errors.

Errors are returned as one of [*ConfigError], [*InvalidMethodError], [*HTTPError], [*DecodeError], [*AuthError], or [*APIError], all intended for use with [errors.As]. Transport failures are wrapped. Nothing is retried.

The three-legged OAuth handshake is two calls: [APIClient.GetAuthenticationTokens] returns a request token and the URL to send the user to; after the user approves, a client bound to the request token ([APIClient.WithToken]) exchanges the verifier with [APIClient.GetAuthTokens]. Persisting the resulting access token is up to calling code.
*/
package client
