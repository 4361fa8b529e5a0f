package encryption

// Subkey offsets consumed by the whitening passes
const (
	InputWhitening  = 0
	OutputWhitening = 4
)

// ApplyWhitening XORs each byte of the block with the low byte of subkeys[offset+k].
// The input block is not modified.
func ApplyWhitening(block []byte, subkeys *Subkeys, offset int) []byte {
	out := make([]byte, len(block))
	for k := range block {
		out[k] = block[k] ^ byte(subkeys[offset+k])
	}
	return out
}
