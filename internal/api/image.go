package api

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	maxImageBytes = 10 << 20
	// base64 image plus the rest of the recipe
	maxRecipeBodyBytes = maxImageBytes/3*4 + 1<<20
)

var errImageTooLarge = &service.ValidationError{Field: "image", Message: "image is too large"}

// decodeImage turns a data:image/<ext>;base64,<payload> URI into a stored-ready payload.
// The declared type is not trusted; the bytes are sniffed.
func decodeImage(dataURI string) (*types.ImagePayload, error) {
	header, payload, ok := strings.Cut(dataURI, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:image/") {
		return nil, &service.ValidationError{Field: "image", Message: "image must be a base64 data URI"}
	}

	payload = strings.TrimSpace(payload)
	if base64.StdEncoding.DecodedLen(len(payload)) > maxImageBytes+2 {
		return nil, errImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &service.ValidationError{Field: "image", Message: "image is not valid base64"}
	}
	if len(data) == 0 {
		return nil, &service.ValidationError{Field: "image", Message: "image is empty"}
	}
	if len(data) > maxImageBytes {
		return nil, errImageTooLarge
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, &service.ValidationError{Field: "image", Message: "uploaded file is not an image"}
	}

	return &types.ImagePayload{
		Filename:    "recipes/" + uuid.NewString() + mtype.Extension(),
		ContentType: mtype.String(),
		Data:        data,
	}, nil
}
