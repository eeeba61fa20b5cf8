// Package crypto defines the scheme identifiers and key interfaces shared
// by the keystore and its per-scheme adapter packages.
//
// The supported scheme set is closed and small. Operations dispatch on the
// Scheme tag instead of leaking concrete key types through the keystore's
// public API.
package crypto

import (
	"github.com/meridianchain/keystore/types"
)

// Scheme identifies a signature algorithm family.
type Scheme string

const (
	Ed25519 Scheme = "ed25519"
	Sr25519 Scheme = "sr25519"
	Ecdsa   Scheme = "ecdsa"
)

// Schemes lists the supported schemes in a stable order.
var Schemes = []Scheme{Ed25519, Sr25519, Ecdsa}

// CryptoTypePublicPair tags a raw public key with the scheme it belongs to,
// disambiguating identical bytes across schemes.
type CryptoTypePublicPair struct {
	Scheme Scheme
	Public []byte
}

// KeyPair is scheme-tagged private and public key material. The private
// part never leaves the pair; only the recovery string it was derived from
// is ever persisted.
type KeyPair interface {
	Scheme() Scheme
	Public() []byte
	Sign(msg []byte) ([]byte, error)
}

// VRFSigner is implemented by keypairs of the one scheme (sr25519) that can
// produce verifiable-random-function outputs.
type VRFSigner interface {
	VRFSign(data types.VRFTranscriptData) (*types.VRFSignature, error)
}

// Adapter exposes one scheme's key operations over byte buffers. Adapters
// are pure with respect to external state; all randomness comes from
// crypto/rand.
type Adapter interface {
	Scheme() Scheme

	// Generate returns a fresh random keypair together with the BIP39
	// phrase it was derived from; the phrase is what gets persisted.
	Generate() (KeyPair, string, error)

	// FromSeed derives a keypair from a raw 32-byte seed.
	FromSeed(seed []byte) (KeyPair, error)

	// FromSURI derives a keypair from a full secret URI, resolving the
	// inline password and any hard derivation junctions.
	FromSURI(suri string) (KeyPair, error)

	// ValidatePublic reports whether pub is acceptable as a public key of
	// this scheme. Used to filter raw directory entries during
	// enumeration, so it must not require more than a byte-level check.
	ValidatePublic(pub []byte) error
}
