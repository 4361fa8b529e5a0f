// server/internal/pkg/encryption/symmetric.go
package encryption

import "errors"

var (
	ErrInvalidKeyMaterial = errors.New("invalid key material")
	ErrInvalidIVLength    = errors.New("invalid IV length")
	ErrInvalidCiphertext  = errors.New("invalid ciphertext")
	ErrInvalidPlaintext   = errors.New("invalid plaintext")
	ErrPaddingAmbiguity   = errors.New("invalid padding")
	ErrInvalidBlockSize   = errors.New("invalid block size")
	ErrUnknownAlgorithm   = errors.New("unknown algorithm")
	ErrUnknownPadding     = errors.New("unknown padding")
)
