package formdata

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestFixedBoundaryLayout(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	enc := Encoder{Boundary: "xXxBOUNDARYxXx"}
	body, ct, err := enc.Encode([]Field{
		TextField("title", "hello"),
		FileField("photo", &File{Name: "cat.jpg", Data: []byte{0xff, 0xd8, 0xff}}),
	})
	require.NoError(err)
	assert.Equal("multipart/form-data; boundary=xXxBOUNDARYxXx", ct)

	expect := "--xXxBOUNDARYxXx\r\n" +
		"Content-Disposition: form-data; name=\"title\"\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"hello\r\n" +
		"--xXxBOUNDARYxXx\r\n" +
		"Content-Disposition: form-data; name=\"photo\"; filename=\"cat.jpg\"\r\n" +
		"Content-Type: image/jpeg\r\n" +
		"\r\n" +
		"\xff\xd8\xff\r\n" +
		"--xXxBOUNDARYxXx--\r\n"
	assert.Equal(expect, string(body))
}

func TestRoundTrip(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	binary := make([]byte, 4096)
	for i := range binary {
		binary[i] = byte(i * 7)
	}
	fields := []Field{
		TextField("api_key", "abc123"),
		TextField("title", "Ünïcødé title with \"quotes\""),
		TextField("empty", ""),
		FileField("photo", &File{Name: "holiday photo.png", Data: binary}),
		TextField("oauth_signature", "a+b/c="),
	}

	body, ct, err := (&Encoder{}).Encode(fields)
	require.NoError(err)

	mediaType, params, err := mime.ParseMediaType(ct)
	require.NoError(err)
	assert.Equal("multipart/form-data", mediaType)
	require.NotEmpty(params["boundary"])

	r := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	for _, f := range fields {
		part, err := r.NextPart()
		require.NoError(err)
		assert.Equal(f.Name, part.FormName())
		data, err := io.ReadAll(part)
		require.NoError(err)
		if f.File != nil {
			assert.Equal(f.File.Name, part.FileName())
			assert.Equal("image/png", part.Header.Get("Content-Type"))
			assert.Equal(f.File.Data, data)
		} else {
			assert.Equal("", part.FileName())
			assert.Equal(TextContentType, part.Header.Get("Content-Type"))
			assert.Equal(f.Value, string(data))
		}
	}
	_, err = r.NextPart()
	assert.Equal(io.EOF, err)
}

func TestRandomBoundaries(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	_, ct1, err := (&Encoder{}).Encode([]Field{TextField("a", "b")})
	require.NoError(err)
	_, ct2, err := (&Encoder{}).Encode([]Field{TextField("a", "b")})
	require.NoError(err)
	assert.NotEqual(ct1, ct2)
}

func TestEncodeErrors(t *testing.T) {
	assert := assert.New(t)

	_, _, err := (&Encoder{}).Encode([]Field{TextField("", "value")})
	assert.ErrorIs(err, ErrEmptyFieldName)

	// boundary present in content
	enc := Encoder{Boundary: "abc"}
	_, _, err = enc.Encode([]Field{TextField("x", "data --abc more")})
	assert.Error(err)

	// invalid boundary characters
	enc = Encoder{Boundary: "bad\nboundary"}
	_, _, err = enc.Encode([]Field{TextField("x", "y")})
	assert.Error(err)
}

func TestGuessContentType(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("image/jpeg", GuessContentType("IMG_0001.jpg", nil))
	assert.Equal("image/png", GuessContentType("upload", pngHeader))
	assert.Equal("image/png", GuessContentType("upload.unknownext", pngHeader))

	// explicit type wins over guessing
	body, _, err := (&Encoder{Boundary: "b"}).Encode([]Field{FileField("photo", &File{Name: "x.jpg", Data: []byte("y"), ContentType: "video/mp4"})})
	assert.NoError(err)
	assert.Contains(string(body), "Content-Type: video/mp4\r\n")
}

func TestFileFromPath(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	p := filepath.Join(t.TempDir(), "sunset.png")
	require.NoError(os.WriteFile(p, pngHeader, 0o600))

	f, err := FileFromPath(p)
	require.NoError(err)
	assert.Equal("sunset.png", f.Name)
	assert.Equal(pngHeader, f.Data)

	_, err = FileFromPath(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(err)
}
