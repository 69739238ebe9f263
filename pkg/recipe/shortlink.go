package recipe

import (
	"Foodgram-Backend/domain"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	ShortLinkAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	DefaultShortLinkLength = 6
	ShortLinkPathPrefix    = "/s/"
)

// ShortLinkGenerator returns a fresh random token.
type ShortLinkGenerator func() (string, error)

// NewShortLinkGenerator makes tokens of length characters. length is capped
// at domain.MaxLengthShortLink, the width of the short_link column.
func NewShortLinkGenerator(length int) ShortLinkGenerator {
	if length < 1 {
		length = DefaultShortLinkLength
	}
	if length > domain.MaxLengthShortLink {
		length = domain.MaxLengthShortLink
	}
	return func() (string, error) {
		return gonanoid.Generate(ShortLinkAlphabet, length)
	}
}

// ShortLinkURL builds the public URL for a token, e.g.
// https://foodgram.example/s/Ab3dE9.
func ShortLinkURL(appURL, token string) string {
	return strings.TrimRight(appURL, "/") + ShortLinkPathPrefix + token
}
