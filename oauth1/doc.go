/*
OAuth 1.0a request signing, as used by the Flickr API.

[Credentials] holds the application ("consumer") key and secret, and optionally a user token and token secret. Credentials are plain values: once handed to a [Signer] or to the API client they are never modified.

The [Signer] interface turns an HTTP method, target URL and parameter set in to the same parameter set plus the `oauth_*` protocol parameters, including `oauth_signature`. When no token is configured, requests are signed in "consumer-only" mode, which is what the request-token step of the three-legged handshake requires.

Two implementations are included:

- [HMACSigner] builds the signature base string and HMAC-SHA1 signature directly. The clock and nonce source can be injected, which makes signatures reproducible in tests.
- [LibrarySigner] delegates to [github.com/garyburd/go-oauth/oauth]. It exists mostly so that calling code (and tests) can swap signers without touching request construction.

Signers never perform network or file I/O.
*/
package oauth1
