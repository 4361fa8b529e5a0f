package encryption

// GenerateSBoxes derives the substitution tables from the key.
// Each table is the identity permutation XORed with a rotating key byte, which is much weaker
// than the key-dependent q-permutations of real Twofish.
func GenerateSBoxes(key Key) *SBoxes {
	s := new(SBoxes)
	for j := 0; j < SBoxCount; j++ {
		for i := 0; i < 256; i++ {
			s[j][i] = byte(i) ^ key[(j+i)%KeySize]
		}
	}
	return s
}
