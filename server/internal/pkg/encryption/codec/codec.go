// Package codec is the text boundary of the cipher: UTF-8 text in, Base64 ciphertext out.
package codec

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/encryption"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/encryption/modes"
	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/encryption/padding"
)

// Engine encrypts and decrypts text with one key and IV.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	cipher encryption.SymmetricCipher
	mode   modes.Mode
	padder padding.Padder
	iv     []byte
}

// Option configures an Engine
type Option func(*settings)

type settings struct {
	algorithm string
	padder    padding.Padder
	cipherOps []encryption.Option
}

// WithAlgorithm selects the block cipher by name
func WithAlgorithm(name string) Option {
	return func(s *settings) {
		s.algorithm = name
	}
}

// WithPadding sets the padding scheme
func WithPadding(p padding.Padder) Option {
	return func(s *settings) {
		s.padder = p
	}
}

// WithMDS enables MDS diffusion in the TWOFISH_LITE round function
func WithMDS(enabled bool) Option {
	return func(s *settings) {
		s.cipherOps = append(s.cipherOps, encryption.WithMDS(enabled))
	}
}

// New creates an engine from key and IV text
func New(keyText, ivText string, opts ...Option) (*Engine, error) {
	s := settings{
		algorithm: encryption.AlgorithmTwofishLite,
		padder:    &padding.PKCS7Padding{},
	}
	for _, opt := range opts {
		opt(&s)
	}

	key, err := encryption.CreateKey(keyText)
	if err != nil {
		return nil, err
	}
	iv, err := encryption.CreateIV(ivText)
	if err != nil {
		return nil, err
	}

	c, err := encryption.NewCipher(s.algorithm, key, s.cipherOps...)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cipher: c,
		mode:   &modes.CBCMode{},
		padder: s.padder,
		iv:     iv,
	}, nil
}

// Algorithm returns the name of the underlying block cipher
func (e *Engine) Algorithm() string {
	return e.cipher.Name()
}

// Padding returns the name of the padding scheme
func (e *Engine) Padding() string {
	return e.padder.Name()
}

// EncryptBytes pads and CBC-encrypts raw bytes
func (e *Engine) EncryptBytes(plaintext []byte) ([]byte, error) {
	padded := e.padder.Pad(plaintext, e.cipher.BlockSize())
	return e.mode.Encrypt(e.cipher, padded, e.iv)
}

// DecryptBytes CBC-decrypts raw bytes and strips the padding
func (e *Engine) DecryptBytes(ciphertext []byte) ([]byte, error) {
	blockSize := e.cipher.BlockSize()
	if len(ciphertext)%blockSize != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of %d", encryption.ErrInvalidCiphertext, len(ciphertext), blockSize)
	}
	if len(ciphertext) == 0 {
		// the padder decides whether nothing at all is a valid padded message
		plaintext, err := e.padder.Unpad(nil, blockSize)
		if err != nil {
			return nil, fmt.Errorf("%w: empty ciphertext: %v", encryption.ErrInvalidCiphertext, err)
		}
		return plaintext, nil
	}

	padded, err := e.mode.Decrypt(e.cipher, ciphertext, e.iv)
	if err != nil {
		return nil, err
	}
	return e.padder.Unpad(padded, blockSize)
}

// Encrypt encrypts UTF-8 text and returns standard Base64
func (e *Engine) Encrypt(text string) (string, error) {
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("%w: plaintext is not valid UTF-8", encryption.ErrInvalidPlaintext)
	}
	ciphertext, err := e.EncryptBytes([]byte(text))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt decodes Base64, decrypts and returns the original text
func (e *Engine) Decrypt(encoded string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", encryption.ErrInvalidCiphertext, err)
	}

	plaintext, err := e.DecryptBytes(ciphertext)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plaintext) {
		return "", fmt.Errorf("%w: decrypted data is not valid UTF-8", encryption.ErrInvalidCiphertext)
	}
	return string(plaintext), nil
}
