// Package ecdsa implements the secp256k1 keystore adapter. Signatures are
// 65-byte recoverable signatures over the blake2b-256 digest of the
// message, in r || s || v form.
package ecdsa

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	becdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/blake2b"

	"github.com/meridianchain/keystore/crypto"
	"github.com/meridianchain/keystore/types"
)

const (
	PublicKeyLen = 33
	SignatureLen = 65
)

const hdkdTag = "Secp256k1HDKD"

// SignCompact headers are 27 + recovery id, plus 4 for compressed keys.
const compactSigHeader = 27 + 4

type Adapter struct{}

var _ crypto.Adapter = &Adapter{}

func NewAdapter() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Scheme() crypto.Scheme {
	return crypto.Ecdsa
}

func (a *Adapter) Generate() (crypto.KeyPair, string, error) {
	phrase, err := crypto.GenerateMnemonic()
	if err != nil {
		return nil, "", err
	}
	kp, err := a.FromSURI(phrase)
	if err != nil {
		return nil, "", err
	}
	return kp, phrase, nil
}

func (a *Adapter) FromSeed(seed []byte) (crypto.KeyPair, error) {
	if len(seed) != crypto.SeedLen {
		return nil, fmt.Errorf("%w: ecdsa seed should be %d bytes, got %d", types.ErrInvalidSeed, crypto.SeedLen, len(seed))
	}
	priv, _ := btcec.PrivKeyFromBytes(seed)
	if priv.Key.IsZero() {
		return nil, fmt.Errorf("%w: seed reduces to the zero scalar", types.ErrInvalidSeed)
	}
	return &KeyPair{priv: priv}, nil
}

func (a *Adapter) FromSURI(suri string) (crypto.KeyPair, error) {
	parsed, err := crypto.ParseSecretURI(suri)
	if err != nil {
		return nil, err
	}
	seed, err := crypto.SeedFromPhrase(parsed.Phrase, parsed.Password)
	if err != nil {
		return nil, err
	}
	for _, j := range parsed.Junctions {
		if !j.Hard {
			return nil, fmt.Errorf("%w: soft derivation is not supported for ecdsa", types.ErrInvalidPhrase)
		}
		seed = crypto.HardDeriveSeed(hdkdTag, seed, j.ChainCode)
	}
	return a.FromSeed(seed)
}

func (a *Adapter) ValidatePublic(pub []byte) error {
	if len(pub) != PublicKeyLen {
		return fmt.Errorf("a compressed secp256k1 public key is %d bytes, got %d", PublicKeyLen, len(pub))
	}
	if _, err := btcec.ParsePubKey(pub); err != nil {
		return err
	}
	return nil
}

type KeyPair struct {
	priv *btcec.PrivateKey
}

var _ crypto.KeyPair = &KeyPair{}

func (k *KeyPair) Scheme() crypto.Scheme {
	return crypto.Ecdsa
}

func (k *KeyPair) Public() []byte {
	return k.priv.PubKey().SerializeCompressed()
}

func (k *KeyPair) Sign(msg []byte) ([]byte, error) {
	digest := blake2b.Sum256(msg)
	compact, err := becdsa.SignCompact(k.priv, digest[:], true)
	if err != nil {
		return nil, err
	}
	sig := make([]byte, SignatureLen)
	copy(sig, compact[1:])
	sig[SignatureLen-1] = compact[0] - compactSigHeader
	return sig, nil
}

// RecoverPublic recovers the compressed public key that produced sig over
// msg.
func RecoverPublic(msg, sig []byte) ([]byte, error) {
	if len(sig) != SignatureLen {
		return nil, fmt.Errorf("an ecdsa signature is %d bytes, got %d", SignatureLen, len(sig))
	}
	compact := make([]byte, SignatureLen)
	compact[0] = sig[SignatureLen-1] + compactSigHeader
	copy(compact[1:], sig[:SignatureLen-1])
	digest := blake2b.Sum256(msg)
	pub, _, err := becdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return nil, err
	}
	return pub.SerializeCompressed(), nil
}
