package encryption

// mdsMatrix is the 4x4 diffusion matrix over GF(2^8)
var mdsMatrix = [4][4]byte{
	{0x01, 0xEF, 0x5B, 0x5B},
	{0x5B, 0xEF, 0xEF, 0x01},
	{0xEF, 0x5B, 0x01, 0xEF},
	{0xEF, 0x01, 0xEF, 0x5B},
}

// gfReduction is x^8 + x^4 + x^3 + x + 1 without the x^8 term
const gfReduction = 0x1B

// GFMultiply multiplies a and b in GF(2^8)
func GFMultiply(a, b byte) byte {
	var result byte
	for i := 0; i < 8; i++ {
		if b&1 == 1 {
			result ^= a
		}
		highBit := a & 0x80
		a <<= 1
		if highBit != 0 {
			a ^= gfReduction
		}
		b >>= 1
	}
	return result
}

// MDS multiplies the column vector v by the diffusion matrix
func MDS(v [4]byte) [4]byte {
	var out [4]byte
	for i := 0; i < 4; i++ {
		var acc byte
		for j := 0; j < 4; j++ {
			acc ^= GFMultiply(mdsMatrix[i][j], v[j])
		}
		out[i] = acc
	}
	return out
}

// Diffusion mixes the F-function output of one round in place
type Diffusion interface {
	Diffuse(half []byte)
	Name() string
}

// NoDiffusion leaves the round output untouched
type NoDiffusion struct{}

func (NoDiffusion) Diffuse(half []byte) {}

func (NoDiffusion) Name() string {
	return "NONE"
}

// MDSDiffusion runs every 4-byte column of the round output through MDS
type MDSDiffusion struct{}

func (MDSDiffusion) Diffuse(half []byte) {
	for off := 0; off+4 <= len(half); off += 4 {
		var col [4]byte
		copy(col[:], half[off:off+4])
		col = MDS(col)
		copy(half[off:off+4], col[:])
	}
}

func (MDSDiffusion) Name() string {
	return "MDS"
}
