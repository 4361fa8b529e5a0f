package modes

import (
	"fmt"

	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/encryption"
)

// Mode interface defines the encryption mode contract
type Mode interface {
	Encrypt(cipher encryption.SymmetricCipher, plaintext []byte, iv []byte) ([]byte, error)
	Decrypt(cipher encryption.SymmetricCipher, ciphertext []byte, iv []byte) ([]byte, error)
	RequiresIV() bool
	Name() string
}

// EncryptBlock XORs the block with the chain state and encrypts it
func EncryptBlock(cipher encryption.SymmetricCipher, block []byte, prev []byte) ([]byte, error) {
	x, err := encryption.XORBlocks(block, prev)
	if err != nil {
		return nil, err
	}
	return cipher.Encrypt(x)
}

// DecryptBlock decrypts the block and XORs it with the chain state
func DecryptBlock(cipher encryption.SymmetricCipher, block []byte, prev []byte) ([]byte, error) {
	d, err := cipher.Decrypt(block)
	if err != nil {
		return nil, err
	}
	return encryption.XORBlocks(d, prev)
}

// CBCMode - Cipher Block Chaining Mode.
// The previous block lives in each call, so one CBCMode and one cipher can serve concurrent calls.
type CBCMode struct{}

func (c *CBCMode) Name() string {
	return "CBC"
}

func (c *CBCMode) RequiresIV() bool {
	return true
}

func (c *CBCMode) Encrypt(cipher encryption.SymmetricCipher, plaintext []byte, iv []byte) ([]byte, error) {
	blockSize := cipher.BlockSize()
	if len(iv) != blockSize {
		return nil, fmt.Errorf("%w: IV length must be %d, got %d", encryption.ErrInvalidIVLength, blockSize, len(iv))
	}
	if len(plaintext)%blockSize != 0 {
		return nil, fmt.Errorf("%w: plaintext length must be multiple of block size (%d)", encryption.ErrInvalidBlockSize, blockSize)
	}

	ciphertext := make([]byte, len(plaintext))
	prevCipherBlock := make([]byte, blockSize)
	copy(prevCipherBlock, iv)

	for i := 0; i < len(plaintext); i += blockSize {
		encryptedBlock, err := EncryptBlock(cipher, plaintext[i:i+blockSize], prevCipherBlock)
		if err != nil {
			return nil, err
		}
		copy(ciphertext[i:], encryptedBlock)
		prevCipherBlock = encryptedBlock
	}

	return ciphertext, nil
}

func (c *CBCMode) Decrypt(cipher encryption.SymmetricCipher, ciphertext []byte, iv []byte) ([]byte, error) {
	blockSize := cipher.BlockSize()
	if len(iv) != blockSize {
		return nil, fmt.Errorf("%w: IV length must be %d, got %d", encryption.ErrInvalidIVLength, blockSize, len(iv))
	}
	if len(ciphertext)%blockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length must be multiple of block size (%d)", encryption.ErrInvalidCiphertext, blockSize)
	}

	plaintext := make([]byte, len(ciphertext))
	prevCipherBlock := make([]byte, blockSize)
	copy(prevCipherBlock, iv)

	for i := 0; i < len(ciphertext); i += blockSize {
		block := ciphertext[i : i+blockSize]
		decryptedBlock, err := DecryptBlock(cipher, block, prevCipherBlock)
		if err != nil {
			return nil, err
		}
		copy(plaintext[i:], decryptedBlock)
		// chain on the ciphertext just consumed, never the plaintext
		copy(prevCipherBlock, block)
	}

	return plaintext, nil
}

// GetMode returns a Mode implementation for the given mode name
func GetMode(modeName string) Mode {
	switch modeName {
	case "", "CBC":
		return &CBCMode{}
	default:
		return nil
	}
}
