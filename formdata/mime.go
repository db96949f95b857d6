package formdata

import (
	"mime"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// Guesses a part content type from the filename extension, falling back to sniffing the payload bytes.
//
// Unknown content ends up as "application/octet-stream".
func GuessContentType(filename string, data []byte) string {
	if ext := filepath.Ext(filename); ext != "" {
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
	}
	return mimetype.Detect(data).String()
}
