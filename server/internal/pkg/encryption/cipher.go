package encryption

// SymmetricCipher is the interface that all block ciphers used by the modes must implement
type SymmetricCipher interface {
	// Encrypt encrypts exactly one block
	Encrypt(block []byte) ([]byte, error)

	// Decrypt decrypts exactly one block
	Decrypt(block []byte) ([]byte, error)

	// BlockSize returns the block size in bytes
	BlockSize() int

	// KeySize returns the required key size in bytes
	KeySize() int

	// Name returns the algorithm name
	Name() string
}

const (
	BlockSize = 16 // 128-bit blocks (16 bytes)
	KeySize   = 16 // 128-bit key (16 bytes), derived from key text

	Rounds      = 16 // Feistel rounds
	SubkeyCount = 40 // generated subkeys, 16..39 reserved
	SBoxCount   = 4  // key-dependent substitution tables

	halfBlock = BlockSize / 2
)

// Algorithm names accepted by the codec and the gateway
const (
	AlgorithmTwofishLite = "TWOFISH_LITE"
	AlgorithmTwofish     = "TWOFISH"
)

// Key is the normalized 128-bit cipher key
type Key [KeySize]byte

// SBoxes holds the four key-dependent substitution tables
type SBoxes [SBoxCount][256]byte

// Subkeys holds the expanded round subkeys
type Subkeys [SubkeyCount]uint32
