// Package formdata encodes ordered fields, including named binary payloads, as a multipart/form-data body.
package formdata

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// Content type used for scalar (non-file) fields.
const TextContentType = "text/plain; charset=utf-8"

var ErrEmptyFieldName = errors.New("formdata: empty field name")

// A named binary payload.
type File struct {
	// Filename sent in the Content-Disposition header. Also used to guess the part content type.
	Name string

	Data []byte

	// Optional explicit content type; guessed when empty.
	ContentType string
}

// Reads a file from disk in to memory, naming it by its base name.
func FileFromPath(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &File{
		Name: filepath.Base(path),
		Data: data,
	}, nil
}

// One form field. Exactly one of Value or File is meaningful: when File is non-nil the field is a file part.
type Field struct {
	Name  string
	Value string
	File  *File
}

func TextField(name, value string) Field {
	return Field{Name: name, Value: value}
}

func FileField(name string, f *File) Field {
	return Field{Name: name, File: f}
}

// Multipart body encoder.
//
// The zero value picks a fresh random boundary for every Encode call.
type Encoder struct {
	// Optional fixed boundary, for deterministic output. Must be 1-70 characters from the RFC 2046 boundary alphabet.
	Boundary string
}

// Serializes fields, in order, and returns the body along with the matching Content-Type header value.
func (e *Encoder) Encode(fields []Field) ([]byte, string, error) {
	var buf bytes.Buffer
	var boundary string
	if e != nil {
		boundary = e.Boundary
	}
	w, err := newWriter(&buf, boundary, fields)
	if err != nil {
		return nil, "", err
	}

	for _, f := range fields {
		if f.Name == "" {
			return nil, "", ErrEmptyFieldName
		}

		hdr := make(textproto.MIMEHeader)
		var payload []byte
		if f.File != nil {
			hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(f.Name), escapeQuotes(f.File.Name)))
			ct := f.File.ContentType
			if ct == "" {
				ct = GuessContentType(f.File.Name, f.File.Data)
			}
			hdr.Set("Content-Type", ct)
			payload = f.File.Data
		} else {
			hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, escapeQuotes(f.Name)))
			hdr.Set("Content-Type", TextContentType)
			payload = []byte(f.Value)
		}

		part, err := w.CreatePart(hdr)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(payload); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

const maxBoundaryAttempts = 8

func newWriter(buf *bytes.Buffer, boundary string, fields []Field) (*multipart.Writer, error) {
	if boundary != "" {
		w := multipart.NewWriter(buf)
		if err := w.SetBoundary(boundary); err != nil {
			return nil, fmt.Errorf("formdata: %w", err)
		}
		if err := checkCollision(boundary, fields); err != nil {
			return nil, err
		}
		return w, nil
	}

	for i := 0; i < maxBoundaryAttempts; i++ {
		w := multipart.NewWriter(buf)
		if checkCollision(w.Boundary(), fields) == nil {
			return w, nil
		}
	}
	return nil, errors.New("formdata: could not pick a boundary absent from field content")
}

// The boundary delimiter must not show up inside any part.
func checkCollision(boundary string, fields []Field) error {
	delim := []byte("--" + boundary)
	for _, f := range fields {
		var data []byte
		if f.File != nil {
			data = f.File.Data
		} else {
			data = []byte(f.Value)
		}
		if bytes.Contains(data, delim) {
			return fmt.Errorf("formdata: boundary %q appears in field %q", boundary, f.Name)
		}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
