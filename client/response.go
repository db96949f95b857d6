package client

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Wire format of an API response body.
type ResponseFormat int

const (
	// JSON object, used by all REST calls
	FormatJSON ResponseFormat = iota

	// XML element tree, used only by the upload and replace endpoints
	FormatLegacyXML
)

func (f ResponseFormat) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatLegacyXML:
		return "xml"
	}
	return fmt.Sprintf("ResponseFormat(%d)", int(f))
}

// Message used when a legacy XML `err` element has no `msg` attribute.
const defaultUploadErrorMessage = "unknown upload error"

// Normalized outcome of an API call, independent of wire format.
type APIResult struct {
	OK bool

	// Decoded response. For JSON this is the complete top-level object (numbers as [json.Number]). For legacy XML it holds `photoid` and/or `ticketid`.
	Payload map[string]any

	// Set iff OK is false
	ErrorCode    int
	ErrorMessage string

	// Wire format the result was decoded from
	Format ResponseFormat
}

// Converts a failure result in to the matching typed error: [*AuthError] for JSON error codes below 100, [*APIError] otherwise. Returns nil for successful results.
func (r *APIResult) Err() error {
	if r == nil || r.OK {
		return nil
	}
	if r.Format == FormatJSON && r.ErrorCode < 100 {
		return &AuthError{Code: r.ErrorCode, Message: r.ErrorMessage}
	}
	return &APIError{Code: r.ErrorCode, Message: r.ErrorMessage}
}

// Photo ID from an upload or replace result. Empty if absent.
func (r *APIResult) PhotoID() string {
	if r == nil {
		return ""
	}
	s, _ := r.Payload["photoid"].(string)
	return s
}

// Decodes a raw response body and checks it for failure.
//
// Any HTTP status outside 200-299 is an [*HTTPError], regardless of body content. Otherwise the body is decoded according to format; unparseable bodies result in [*DecodeError], and service failure markers in [*AuthError] or [*APIError]. On success the returned result always has OK set.
func NormalizeResponse(body []byte, status int, format ResponseFormat) (*APIResult, error) {
	if status < 200 || status >= 300 {
		return nil, &HTTPError{StatusCode: status}
	}

	var res *APIResult
	var err error
	switch format {
	case FormatJSON:
		res, err = decodeJSONResult(body)
	case FormatLegacyXML:
		res, err = decodeXMLResult(body)
	default:
		return nil, fmt.Errorf("unsupported response format: %s", format)
	}
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func decodeJSONResult(body []byte) (*APIResult, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, &DecodeError{Format: "json", Err: err}
	}
	if payload == nil {
		return nil, &DecodeError{Format: "json", Err: errors.New("expected a JSON object")}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &DecodeError{Format: "json", Err: errors.New("unexpected data after JSON object")}
	}

	if stat, _ := payload["stat"].(string); stat != "fail" {
		return &APIResult{OK: true, Payload: payload, Format: FormatJSON}, nil
	}

	code, ok := intValue(payload["code"])
	if !ok {
		return nil, &DecodeError{Format: "json", Err: fmt.Errorf("failure response without integer code: %v", payload["code"])}
	}
	msg, _ := payload["message"].(string)
	if msg == "" {
		msg = "unknown error"
	}
	return &APIResult{
		Payload:      payload,
		ErrorCode:    code,
		ErrorMessage: msg,
		Format:       FormatJSON,
	}, nil
}

func intValue(v any) (int, bool) {
	switch v := v.(type) {
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

// Walks the legacy XML element tree. The root `stat` attribute defaults to "ok"; the first `err` element anywhere in the tree carries failure details.
func decodeXMLResult(body []byte) (*APIResult, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	var (
		rootSeen   bool
		rootClosed bool
		depth      int
		stat       = "ok"
		errElem    *xml.StartElement
		payload    = map[string]any{}
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DecodeError{Format: "xml", Err: err}
		}
		// only whitespace, comments and processing instructions may surround the root element
		var start xml.StartElement
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 && (rootClosed || !rootSeen) {
				return nil, &DecodeError{Format: "xml", Err: errors.New("text outside of root element")}
			}
			continue
		case xml.EndElement:
			depth--
			if depth == 0 {
				rootClosed = true
			}
			continue
		case xml.StartElement:
			if rootClosed {
				return nil, &DecodeError{Format: "xml", Err: errors.New("unexpected data after root element")}
			}
			start = t
		default:
			continue
		}
		if !rootSeen {
			rootSeen = true
			if v := attrValue(start, "stat"); v != "" {
				stat = v
			}
		}
		switch start.Name.Local {
		case "err":
			if errElem == nil {
				e := start.Copy()
				errElem = &e
			}
		case "photoid", "ticketid":
			var text string
			if err := dec.DecodeElement(&text, &start); err != nil {
				return nil, &DecodeError{Format: "xml", Err: err}
			}
			if _, dup := payload[start.Name.Local]; !dup {
				payload[start.Name.Local] = strings.TrimSpace(text)
			}
			// DecodeElement consumed the end tag
			if depth == 0 {
				rootClosed = true
			}
			continue
		}
		depth++
	}
	if !rootSeen {
		return nil, &DecodeError{Format: "xml", Err: errors.New("no root element")}
	}

	if stat != "fail" && errElem == nil {
		return &APIResult{OK: true, Payload: payload, Format: FormatLegacyXML}, nil
	}
	if errElem == nil {
		return nil, &DecodeError{Format: "xml", Err: errors.New("failure response without err element")}
	}

	code, err := strconv.Atoi(strings.TrimSpace(attrValue(*errElem, "code")))
	if err != nil {
		return nil, &DecodeError{Format: "xml", Err: fmt.Errorf("err element code: %w", err)}
	}
	msg := attrValue(*errElem, "msg")
	if msg == "" {
		msg = defaultUploadErrorMessage
	}
	return &APIResult{
		Payload:      map[string]any{},
		ErrorCode:    code,
		ErrorMessage: msg,
		Format:       FormatLegacyXML,
	}, nil
}

func attrValue(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
