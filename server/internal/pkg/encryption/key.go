package encryption

import (
	"fmt"
	"unicode/utf8"
)

// CreateKey derives the 128-bit key from arbitrary key text.
// The UTF-8 bytes are zero-padded when short and truncated when long.
func CreateKey(text string) (Key, error) {
	var key Key
	if !utf8.ValidString(text) {
		return key, fmt.Errorf("%w: key text is not valid UTF-8", ErrInvalidKeyMaterial)
	}
	copy(key[:], text)
	return key, nil
}

// CreateIV validates IV text and returns its bytes
func CreateIV(text string) ([]byte, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: IV text is not valid UTF-8", ErrInvalidKeyMaterial)
	}
	if len(text) != BlockSize {
		return nil, fmt.Errorf("%w: IV must be %d bytes, got %d", ErrInvalidIVLength, BlockSize, len(text))
	}
	return []byte(text), nil
}
