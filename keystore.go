// Package keystore defines the capability surface of a signing key store
// and a forwarding facade over any backend that provides it.
package keystore

import (
	"github.com/meridianchain/keystore/crypto"
	"github.com/meridianchain/keystore/local"
	"github.com/meridianchain/keystore/types"
)

// CryptoStore is the full capability surface a signing backend exposes to
// the rest of the system. Secret key material never crosses it; keys are
// addressed by scheme, key type and public key bytes.
type CryptoStore interface {
	// PublicKeysByType lists the public keys stored under keyType that the
	// scheme accepts.
	PublicKeysByType(scheme crypto.Scheme, keyType types.KeyTypeID) ([][]byte, error)

	// GenerateNew creates a persisted random key when seed is empty, and
	// an ephemeral key recorded under keyType otherwise.
	GenerateNew(scheme crypto.Scheme, keyType types.KeyTypeID, seed string) (crypto.KeyPair, error)

	// InsertUnknown stores a recovery string under keyType and public
	// without validating that they belong together.
	InsertUnknown(keyType types.KeyTypeID, suri string, public []byte) error

	// SupportedKeys filters candidates down to the ones present under
	// keyType.
	SupportedKeys(keyType types.KeyTypeID, candidates []crypto.CryptoTypePublicPair) ([]crypto.CryptoTypePublicPair, error)

	// Keys lists every key stored under keyType, once per scheme that
	// accepts its public key bytes.
	Keys(keyType types.KeyTypeID) ([]crypto.CryptoTypePublicPair, error)

	// HasKeys reports whether every referenced key is available.
	HasKeys(refs []types.PublicKeyRef) bool

	// SignWith signs msg with the key identified by keyType and the
	// scheme-tagged public key.
	SignWith(keyType types.KeyTypeID, key crypto.CryptoTypePublicPair, msg []byte) ([]byte, error)

	// VRFSign produces a VRF output and proof for the transcript under an
	// sr25519 key.
	VRFSign(keyType types.KeyTypeID, public []byte, data types.VRFTranscriptData) (*types.VRFSignature, error)

	// Close releases any secret material held by the backend.
	Close() error
}

var _ CryptoStore = (*local.LocalKeystore)(nil)

// Keystore forwards every operation to the wrapped backend.
type Keystore struct {
	store CryptoStore
}

var _ CryptoStore = (*Keystore)(nil)

func NewKeystore(store CryptoStore) *Keystore {
	return &Keystore{store: store}
}

func (k *Keystore) PublicKeysByType(scheme crypto.Scheme, keyType types.KeyTypeID) ([][]byte, error) {
	return k.store.PublicKeysByType(scheme, keyType)
}

func (k *Keystore) GenerateNew(scheme crypto.Scheme, keyType types.KeyTypeID, seed string) (crypto.KeyPair, error) {
	return k.store.GenerateNew(scheme, keyType, seed)
}

func (k *Keystore) InsertUnknown(keyType types.KeyTypeID, suri string, public []byte) error {
	return k.store.InsertUnknown(keyType, suri, public)
}

func (k *Keystore) SupportedKeys(keyType types.KeyTypeID, candidates []crypto.CryptoTypePublicPair) ([]crypto.CryptoTypePublicPair, error) {
	return k.store.SupportedKeys(keyType, candidates)
}

func (k *Keystore) Keys(keyType types.KeyTypeID) ([]crypto.CryptoTypePublicPair, error) {
	return k.store.Keys(keyType)
}

func (k *Keystore) HasKeys(refs []types.PublicKeyRef) bool {
	return k.store.HasKeys(refs)
}

func (k *Keystore) SignWith(keyType types.KeyTypeID, key crypto.CryptoTypePublicPair, msg []byte) ([]byte, error) {
	return k.store.SignWith(keyType, key, msg)
}

func (k *Keystore) VRFSign(keyType types.KeyTypeID, public []byte, data types.VRFTranscriptData) (*types.VRFSignature, error) {
	return k.store.VRFSign(keyType, public, data)
}

func (k *Keystore) Close() error {
	return k.store.Close()
}
