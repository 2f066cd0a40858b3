package iid

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Size is the identifier width in bytes.
const Size = 16

// domainKey is the 32-byte key for BLAKE3 keyed hashing. Deriving
// identifiers in a dedicated domain keeps them from colliding with any
// other BLAKE3 use of the same name bytes. The key is the ASCII encoding
// of the domain name, zero-padded to 32 bytes, so it stays readable in
// hex dumps.
var domainKey = [32]byte{
	'i', 'n', 't', 'f', 'b', 'u', 's', '.', 'i', 'i', 'd', 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// ID is a fixed-width interface identifier, derived deterministically
// from a human-readable name. Two IDs are equal exactly when the names
// they were derived from are equal. The digest is stable across builds
// and processes.
//
// The zero ID is reserved and never matches a derived identifier.
type ID struct {
	sum [Size]byte
}

// New derives the identifier for name.
func New(name string) ID {
	h, err := blake3.NewKeyed(domainKey[:])
	if err != nil {
		// The key length is a compile-time constant; NewKeyed cannot
		// fail on a 32-byte key.
		panic(err)
	}
	h.Write([]byte(name))

	var id ID
	copy(id.sum[:], h.Sum(nil))
	return id
}

// Equal reports whether the two identifiers are the same.
func (id ID) Equal(other ID) bool {
	return id.sum == other.sum
}

// IsZero reports whether id is the reserved zero identifier.
func (id ID) IsZero() bool {
	return id.sum == [Size]byte{}
}

// String returns the identifier as lowercase hex.
func (id ID) String() string {
	return hex.EncodeToString(id.sum[:])
}
