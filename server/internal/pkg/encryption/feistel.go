package encryption

import "fmt"

// FFunction is the round function applied to every byte of the right half.
// The subkey picks one of the S-boxes, the byte is substituted through it and
// mixed with the low byte of the subkey.
func FFunction(r byte, s *SBoxes, subkey uint32) byte {
	return s[subkey%SBoxCount][r] ^ byte(subkey)
}

// FeistelCore runs the 16-round network over one whitened block
type FeistelCore struct {
	sboxes    *SBoxes
	subkeys   *Subkeys
	diffusion Diffusion
}

// NewFeistelCore creates a core from precomputed tables; a nil diffusion means NoDiffusion
func NewFeistelCore(sboxes *SBoxes, subkeys *Subkeys, diffusion Diffusion) *FeistelCore {
	if diffusion == nil {
		diffusion = NoDiffusion{}
	}
	return &FeistelCore{
		sboxes:    sboxes,
		subkeys:   subkeys,
		diffusion: diffusion,
	}
}

// round computes F over a half block with the subkey of the given round
func (fc *FeistelCore) round(half []byte, round int) []byte {
	subkey := fc.subkeys[round]
	out := make([]byte, halfBlock)
	for k := 0; k < halfBlock; k++ {
		out[k] = FFunction(half[k], fc.sboxes, subkey)
	}
	fc.diffusion.Diffuse(out)
	return out
}

// EncryptionRounds runs rounds 0..15 forward
func (fc *FeistelCore) EncryptionRounds(block []byte) ([]byte, error) {
	if len(block) != BlockSize {
		return nil, fmt.Errorf("%w: block must be %d bytes, got %d", ErrInvalidBlockSize, BlockSize, len(block))
	}

	left := make([]byte, halfBlock)
	right := make([]byte, halfBlock)
	copy(left, block[:halfBlock])
	copy(right, block[halfBlock:])

	for r := 0; r < Rounds; r++ {
		fOut := fc.round(right, r)
		newRight := xorBytes(left, fOut)
		left = right
		right = newRight
	}

	return append(left, right...), nil
}

// DecryptionRounds runs rounds 15..0 and undoes EncryptionRounds
func (fc *FeistelCore) DecryptionRounds(block []byte) ([]byte, error) {
	if len(block) != BlockSize {
		return nil, fmt.Errorf("%w: block must be %d bytes, got %d", ErrInvalidBlockSize, BlockSize, len(block))
	}

	left := make([]byte, halfBlock)
	right := make([]byte, halfBlock)
	copy(left, block[:halfBlock])
	copy(right, block[halfBlock:])

	for r := Rounds - 1; r >= 0; r-- {
		fOut := fc.round(left, r)
		newLeft := xorBytes(right, fOut)
		right = left
		left = newLeft
	}

	return append(left, right...), nil
}

// xorBytes returns a XOR b over the length of a
func xorBytes(a, b []byte) []byte {
	result := make([]byte, len(a))
	for i := range a {
		result[i] = a[i] ^ b[i]
	}
	return result
}

// XORBlocks returns a XOR b; both must have the same length
func XORBlocks(a, b []byte) ([]byte, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: cannot XOR %d and %d bytes", ErrInvalidBlockSize, len(a), len(b))
	}
	return xorBytes(a, b), nil
}
