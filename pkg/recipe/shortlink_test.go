package recipe

import (
	"Foodgram-Backend/domain"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShortLinkGenerator(t *testing.T) {
	generate := NewShortLinkGenerator(DefaultShortLinkLength)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		token, err := generate()
		require.NoError(t, err)
		assert.Len(t, token, DefaultShortLinkLength)
		for _, r := range token {
			assert.True(t, strings.ContainsRune(ShortLinkAlphabet, r), "unexpected rune %q", r)
		}
		seen[token] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestNewShortLinkGenerator_FallsBackToDefaultLength(t *testing.T) {
	token, err := NewShortLinkGenerator(0)()

	require.NoError(t, err)
	assert.Len(t, token, DefaultShortLinkLength)
}

func TestNewShortLinkGenerator_CapsLengthAtColumnWidth(t *testing.T) {
	token, err := NewShortLinkGenerator(64)()
	require.NoError(t, err)
	assert.Len(t, token, domain.MaxLengthShortLink)
}

func TestShortLinkURL(t *testing.T) {
	assert.Equal(t, "https://foodgram.example/s/Ab3dE9", ShortLinkURL("https://foodgram.example", "Ab3dE9"))
	assert.Equal(t, "https://foodgram.example/s/Ab3dE9", ShortLinkURL("https://foodgram.example/", "Ab3dE9"))
}
