package storage

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

var ErrInvalidImage = errors.New("upload a valid image")

// DecodeBase64Image accepts a data URI ("data:image/png;base64,...") or a
// bare base64 string and returns the decoded bytes if they sniff as an
// allowed image type.
func DecodeBase64Image(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrInvalidImage
	}

	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ";base64,")
		if idx < 0 {
			return nil, ErrInvalidImage
		}
		payload = payload[idx+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidImage, err.Error())
	}

	if !mimetype.EqualsAny(mimetype.Detect(data).String(), AllowImage...) {
		return nil, ErrInvalidImage
	}
	return data, nil
}
