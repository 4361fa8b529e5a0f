package encryption

// golden ratio constant, same as RC5/RC6
const scheduleDelta = uint32(0x9E3779B9)

// KeySchedule expands the key into round subkeys
func KeySchedule(key Key) *Subkeys {
	k := new(Subkeys)
	for i := 0; i < SubkeyCount; i++ {
		k[i] = uint32(key[i%KeySize]) + uint32(i)*scheduleDelta
	}
	return k
}
