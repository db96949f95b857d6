package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/goflickr/goflickr/formdata"
	"github.com/goflickr/goflickr/oauth1"
)

// Which upload endpoint (if any) a request with a file payload targets.
type UploadMode int

const (
	UploadNone UploadMode = iota
	UploadNew
	UploadReplace
)

// Multipart field name carrying the file payload.
const PhotoField = "photo"

// One logical API call, before signing.
type APIRequest struct {
	// HTTP method, "GET" or "POST" (required)
	Method string

	// API method name, eg "flickr.photos.getInfo". Required for REST calls; optional for uploads.
	Endpoint string

	// Caller parameters, already flattened to strings. May be nil.
	Params url.Values

	// Optional file payload; requires POST.
	File *formdata.File

	// Upload endpoint selection; only meaningful when File is set.
	Upload UploadMode
}

// Initializes a new request, converting typed params with [ParseParams]. The params map is not retained.
func NewAPIRequest(method, endpoint string, params map[string]any) (*APIRequest, error) {
	qp, err := ParseParams(params)
	if err != nil {
		return nil, err
	}
	return &APIRequest{
		Method:   method,
		Endpoint: endpoint,
		Params:   qp,
	}, nil
}

// Request after parameter merging and signing, ready to hand to a transport.
type SignedRequest struct {
	Method string

	// Target URL; for GET this includes the encoded query string
	URL string

	// Final parameters, including `oauth_*` signature parameters
	Params url.Values

	// Request body; nil for GET
	Body []byte

	// Content-Type header for Body
	ContentType string

	// Expected response format
	Format ResponseFormat

	// "rest", "upload", or "replace"; used for logging and metrics
	Kind string
}

// Assembles and signs [APIRequest]s against a set of endpoints.
type RequestBuilder struct {
	Endpoints Endpoints
	Signer    oauth1.Signer

	// Multipart encoder for uploads; the zero value (random boundary) is used if nil
	Encoder *formdata.Encoder
}

// Merges the mandatory params in to the request params, signs them, and encodes the body.
//
// Mandatory params (`format`, `nojsoncallback`, `method`, `api_key`) take precedence over caller params with the same key. When a file is attached, only the non-file params are signed; the file part is appended to the multipart body afterwards.
func (b *RequestBuilder) Build(req *APIRequest, creds *oauth1.Credentials) (*SignedRequest, error) {
	method := strings.ToUpper(req.Method)
	switch method {
	case http.MethodGet, http.MethodPost:
	default:
		return nil, &InvalidMethodError{Method: req.Method}
	}
	if method == http.MethodGet && (req.File != nil || req.Upload != UploadNone) {
		return nil, &InvalidMethodError{Method: req.Method, Reason: "file uploads require POST"}
	}
	if req.File == nil && req.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if err := creds.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}

	params := oauth1.CloneValues(req.Params)
	params.Set("format", "json")
	params.Set("nojsoncallback", "1")
	if req.Endpoint != "" {
		params.Set("method", req.Endpoint)
	}
	params.Set("api_key", creds.ConsumerKey)

	out := SignedRequest{
		Method: method,
		Format: FormatJSON,
		Kind:   "rest",
	}
	target := b.Endpoints.REST
	if req.File != nil {
		out.Format = FormatLegacyXML
		if req.Upload == UploadReplace {
			target = b.Endpoints.Replace
			out.Kind = "replace"
		} else {
			target = b.Endpoints.Upload
			out.Kind = "upload"
		}
	}

	if strings.ContainsAny(target, "?#") {
		return nil, &ConfigError{Err: fmt.Errorf("%s endpoint must not carry a query or fragment: %q", out.Kind, target)}
	}

	signer := b.Signer
	if signer == nil {
		signer = oauth1.NewHMACSigner()
	}
	signed, err := signer.Sign(method, target, params, creds)
	if err != nil {
		return nil, err
	}
	out.Params = signed

	switch {
	case req.File != nil:
		fields := make([]formdata.Field, 0, len(signed)+1)
		for _, k := range sortedKeys(signed) {
			for _, v := range signed[k] {
				fields = append(fields, formdata.TextField(k, v))
			}
		}
		fields = append(fields, formdata.FileField(PhotoField, req.File))

		enc := b.Encoder
		if enc == nil {
			enc = &formdata.Encoder{}
		}
		body, ct, err := enc.Encode(fields)
		if err != nil {
			return nil, err
		}
		out.URL = target
		out.Body = body
		out.ContentType = ct
	case method == http.MethodPost:
		out.URL = target
		out.Body = []byte(signed.Encode())
		out.ContentType = "application/x-www-form-urlencoded"
	default:
		out.URL = target + "?" + signed.Encode()
	}
	return &out, nil
}

// Creates an [http.Request] for this signed request.
//
// `clientHeaders`, if provided, is treated as client-level defaults. Only a single value is allowed per key ("Set" behavior). The Content-Type header is always set from the request itself.
func (r *SignedRequest) HTTPRequest(ctx context.Context, clientHeaders http.Header) (*http.Request, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, err
	}

	for k := range clientHeaders {
		httpReq.Header.Set(k, clientHeaders.Get(k))
	}
	if r.ContentType != "" {
		httpReq.Header.Set("Content-Type", r.ContentType)
	}
	switch r.Format {
	case FormatJSON:
		httpReq.Header.Set("Accept", "application/json")
	case FormatLegacyXML:
		httpReq.Header.Set("Accept", "text/xml")
	}
	return httpReq, nil
}

func sortedKeys(v url.Values) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
