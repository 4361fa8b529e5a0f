package padding

import (
	"fmt"

	"github.com/eriXtrip/IAS-TwoFish/server/internal/pkg/encryption"
)

// Padder interface defines the padding contract
type Padder interface {
	Pad(data []byte, blockSize int) []byte
	Unpad(data []byte, blockSize int) ([]byte, error)
	Name() string
}

const (
	PKCS7  = "PKCS7"
	Legacy = "LEGACY"
)

// PKCS7Padding - PKCS#7 padding scheme.
// A block-aligned input always receives a full extra block, so Unpad is unambiguous.
type PKCS7Padding struct{}

func (p *PKCS7Padding) Name() string {
	return PKCS7
}

func (p *PKCS7Padding) Pad(data []byte, blockSize int) []byte {
	paddingLen := blockSize - (len(data) % blockSize)
	padded := make([]byte, len(data), len(data)+paddingLen)
	copy(padded, data)
	for i := 0; i < paddingLen; i++ {
		padded = append(padded, byte(paddingLen))
	}
	return padded
}

func (p *PKCS7Padding) Unpad(data []byte, blockSize int) ([]byte, error) {
	paddingLen, err := readPadLength(data, blockSize)
	if err != nil {
		return nil, err
	}

	for i := len(data) - paddingLen; i < len(data); i++ {
		if data[i] != byte(paddingLen) {
			return nil, fmt.Errorf("%w: pad byte %d at offset %d, want %d", encryption.ErrPaddingAmbiguity, data[i], i, paddingLen)
		}
	}

	return data[:len(data)-paddingLen], nil
}

// LegacyPadding pads only a short final block and strips by the last byte.
// Aligned plaintexts get no padding, so their final bytes are misread as padding on
// decrypt. It exists for ciphertexts produced by the old browser client.
type LegacyPadding struct{}

func (l *LegacyPadding) Name() string {
	return Legacy
}

func (l *LegacyPadding) Pad(data []byte, blockSize int) []byte {
	padded := make([]byte, len(data))
	copy(padded, data)
	rem := len(data) % blockSize
	if rem == 0 {
		return padded
	}
	paddingLen := blockSize - rem
	for i := 0; i < paddingLen; i++ {
		padded = append(padded, byte(paddingLen))
	}
	return padded
}

func (l *LegacyPadding) Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	paddingLen, err := readPadLength(data, blockSize)
	if err != nil {
		return nil, err
	}
	return data[:len(data)-paddingLen], nil
}

// readPadLength reads the trailing pad length and checks it lies in [1, blockSize]
func readPadLength(data []byte, blockSize int) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty padded data", encryption.ErrPaddingAmbiguity)
	}
	paddingLen := int(data[len(data)-1])
	if paddingLen == 0 || paddingLen > blockSize || paddingLen > len(data) {
		return 0, fmt.Errorf("%w: pad length %d out of range [1,%d]", encryption.ErrPaddingAmbiguity, paddingLen, blockSize)
	}
	return paddingLen, nil
}

// GetPadder returns a Padder implementation for the given padding name
func GetPadder(paddingName string) (Padder, error) {
	switch paddingName {
	case "", PKCS7:
		return &PKCS7Padding{}, nil
	case Legacy:
		return &LegacyPadding{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", encryption.ErrUnknownPadding, paddingName)
	}
}

// Names lists the supported padding schemes
func Names() []string {
	return []string{PKCS7, Legacy}
}
