package types

import (
	"encoding/hex"
	"fmt"
)

// KeyTypeIDLen is the fixed size of a key purpose tag.
const KeyTypeIDLen = 4

// KeyTypeID is a 4-byte tag naming the purpose a key is used for, e.g.
// block authoring or finality voting. It is opaque to the keystore: compared
// by equality, used as an enumeration filter and as the on-disk filename
// prefix. The same public key may be registered under several key types.
type KeyTypeID [KeyTypeIDLen]byte

// KeyTypeIDFromString builds a KeyTypeID from its 4-character string form.
func KeyTypeIDFromString(s string) (KeyTypeID, error) {
	var id KeyTypeID
	if len(s) != KeyTypeIDLen {
		return id, fmt.Errorf("the key type should be exactly %d bytes, got %q", KeyTypeIDLen, s)
	}
	copy(id[:], s)
	return id, nil
}

// KeyTypeIDFromBytes builds a KeyTypeID from raw bytes.
func KeyTypeIDFromBytes(b []byte) (KeyTypeID, error) {
	var id KeyTypeID
	if len(b) != KeyTypeIDLen {
		return id, fmt.Errorf("the key type should be exactly %d bytes, got %d", KeyTypeIDLen, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// Hex returns the lowercase hex form used as the filename prefix.
func (id KeyTypeID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id KeyTypeID) String() string {
	return string(id[:])
}

// PublicKeyRef names a single key for presence checks: the raw public key
// bytes together with the key type it is expected under.
type PublicKeyRef struct {
	Public  []byte
	KeyType KeyTypeID
}
