package api

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
)

func TestDecodeImage(t *testing.T) {
	gif := []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

	// the declared subtype is ignored in favour of the sniffed one
	payload, err := decodeImage("data:image/png;base64," + base64.StdEncoding.EncodeToString(gif))
	require.NoError(t, err)
	assert.Equal(t, "image/gif", payload.ContentType)
	assert.True(t, strings.HasPrefix(payload.Filename, "recipes/"))
	assert.True(t, strings.HasSuffix(payload.Filename, ".gif"))
	assert.Equal(t, gif, payload.Data)

	other, err := decodeImage("data:image/gif;base64," + base64.StdEncoding.EncodeToString(gif))
	require.NoError(t, err)
	assert.NotEqual(t, payload.Filename, other.Filename)
}

func TestDecodeImageRejects(t *testing.T) {
	tests := map[string]string{
		"plain url":     "https://example.com/cat.png",
		"not an image":  "data:text/plain;base64,aGVsbG8=",
		"bad base64":    "data:image/png;base64,@@@",
		"empty payload": "data:image/png;base64,",
		"text bytes":    "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("just text")),
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := decodeImage(input)
			var validation *service.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, "image", validation.Field)
		})
	}
}

func TestDecodeImageTooLarge(t *testing.T) {
	// rejected on length alone, the payload is never decoded
	oversized := "data:image/png;base64," + strings.Repeat("A", (maxImageBytes/3+2)*4)

	_, err := decodeImage(oversized)
	var validation *service.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "image is too large", validation.Message)
}
