package encryption

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/twofish"
)

// Twofish adapts the reference Twofish implementation to SymmetricCipher
type Twofish struct {
	block cipher.Block
}

// NewTwofish creates a reference Twofish cipher; key must be 16, 24 or 32 bytes
func NewTwofish(key []byte) (*Twofish, error) {
	block, err := twofish.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyMaterial, err)
	}
	return &Twofish{block: block}, nil
}

// BlockSize returns the block size of Twofish
func (t *Twofish) BlockSize() int {
	return twofish.BlockSize
}

// KeySize returns the key size used by the codec
func (t *Twofish) KeySize() int {
	return KeySize
}

// Name returns the cipher name
func (t *Twofish) Name() string {
	return AlgorithmTwofish
}

// Encrypt encrypts a 128-bit block
func (t *Twofish) Encrypt(block []byte) ([]byte, error) {
	if len(block) != twofish.BlockSize {
		return nil, fmt.Errorf("%w: plaintext must be %d bytes, got %d", ErrInvalidBlockSize, twofish.BlockSize, len(block))
	}
	out := make([]byte, twofish.BlockSize)
	t.block.Encrypt(out, block)
	return out, nil
}

// Decrypt decrypts a 128-bit block
func (t *Twofish) Decrypt(block []byte) ([]byte, error) {
	if len(block) != twofish.BlockSize {
		return nil, fmt.Errorf("%w: ciphertext must be %d bytes, got %d", ErrInvalidBlockSize, twofish.BlockSize, len(block))
	}
	out := make([]byte, twofish.BlockSize)
	t.block.Decrypt(out, block)
	return out, nil
}

// NewCipher creates a named cipher for the derived key
func NewCipher(algorithm string, key Key, opts ...Option) (SymmetricCipher, error) {
	switch algorithm {
	case "", AlgorithmTwofishLite:
		return NewTwofishLiteFromKey(key, opts...), nil
	case AlgorithmTwofish:
		c, err := NewTwofish(key[:])
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}
