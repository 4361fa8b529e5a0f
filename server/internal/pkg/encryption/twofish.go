package encryption

import "fmt"

// TwofishLite is the simplified Twofish-style block cipher: input whitening,
// a 16-round Feistel network and output whitening over 128-bit blocks.
// All fields are read-only after NewTwofishLite, so one value may be shared between goroutines.
type TwofishLite struct {
	sboxes  *SBoxes
	subkeys *Subkeys
	core    *FeistelCore
}

// Option configures a TwofishLite cipher
type Option func(*options)

type options struct {
	diffusion Diffusion
}

// WithDiffusion sets the diffusion step applied inside the round function
func WithDiffusion(d Diffusion) Option {
	return func(o *options) {
		o.diffusion = d
	}
}

// WithMDS enables or disables MDS diffusion in the round function
func WithMDS(enabled bool) Option {
	return func(o *options) {
		if enabled {
			o.diffusion = MDSDiffusion{}
		} else {
			o.diffusion = NoDiffusion{}
		}
	}
}

// NewTwofishLite creates a cipher for the given key text
func NewTwofishLite(keyText string, opts ...Option) (*TwofishLite, error) {
	key, err := CreateKey(keyText)
	if err != nil {
		return nil, err
	}
	return NewTwofishLiteFromKey(key, opts...), nil
}

// NewTwofishLiteFromKey creates a cipher from an already derived key
func NewTwofishLiteFromKey(key Key, opts ...Option) *TwofishLite {
	o := options{diffusion: NoDiffusion{}}
	for _, opt := range opts {
		opt(&o)
	}

	sboxes := GenerateSBoxes(key)
	subkeys := KeySchedule(key)

	return &TwofishLite{
		sboxes:  sboxes,
		subkeys: subkeys,
		core:    NewFeistelCore(sboxes, subkeys, o.diffusion),
	}
}

// BlockSize returns the block size of the cipher
func (t *TwofishLite) BlockSize() int {
	return BlockSize
}

// KeySize returns the derived key size
func (t *TwofishLite) KeySize() int {
	return KeySize
}

// Name returns the cipher name
func (t *TwofishLite) Name() string {
	if d := t.core.diffusion.Name(); d != (NoDiffusion{}).Name() {
		return AlgorithmTwofishLite + "+" + d
	}
	return AlgorithmTwofishLite
}

// Subkeys returns a copy of the expanded subkeys
func (t *TwofishLite) Subkeys() Subkeys {
	return *t.subkeys
}

// SBoxes returns a copy of the substitution tables
func (t *TwofishLite) SBoxes() SBoxes {
	return *t.sboxes
}

// Encrypt encrypts a 128-bit block
func (t *TwofishLite) Encrypt(block []byte) ([]byte, error) {
	if len(block) != BlockSize {
		return nil, fmt.Errorf("%w: plaintext must be %d bytes, got %d", ErrInvalidBlockSize, BlockSize, len(block))
	}

	w := ApplyWhitening(block, t.subkeys, InputWhitening)
	r, err := t.core.EncryptionRounds(w)
	if err != nil {
		return nil, err
	}
	return ApplyWhitening(r, t.subkeys, OutputWhitening), nil
}

// Decrypt decrypts a 128-bit block
func (t *TwofishLite) Decrypt(block []byte) ([]byte, error) {
	if len(block) != BlockSize {
		return nil, fmt.Errorf("%w: ciphertext must be %d bytes, got %d", ErrInvalidBlockSize, BlockSize, len(block))
	}

	u := ApplyWhitening(block, t.subkeys, OutputWhitening)
	d, err := t.core.DecryptionRounds(u)
	if err != nil {
		return nil, err
	}
	return ApplyWhitening(d, t.subkeys, InputWhitening), nil
}
