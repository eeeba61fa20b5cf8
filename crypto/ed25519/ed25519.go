// Package ed25519 implements the ed25519 keystore adapter on top of the
// standard library.
package ed25519

import (
	ed "crypto/ed25519"
	"fmt"

	"github.com/meridianchain/keystore/crypto"
	"github.com/meridianchain/keystore/types"
)

const (
	PublicKeyLen = ed.PublicKeySize
	SignatureLen = ed.SignatureSize
)

const hdkdTag = "Ed25519HDKD"

type Adapter struct{}

var _ crypto.Adapter = &Adapter{}

func NewAdapter() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Scheme() crypto.Scheme {
	return crypto.Ed25519
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
	if len(seed) != ed.SeedSize {
		return nil, fmt.Errorf("%w: ed25519 seed should be %d bytes, got %d", types.ErrInvalidSeed, ed.SeedSize, len(seed))
	}
	return &KeyPair{priv: ed.NewKeyFromSeed(seed)}, nil
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
			return nil, fmt.Errorf("%w: soft derivation is not supported for ed25519", types.ErrInvalidPhrase)
		}
		seed = crypto.HardDeriveSeed(hdkdTag, seed, j.ChainCode)
	}
	return a.FromSeed(seed)
}

func (a *Adapter) ValidatePublic(pub []byte) error {
	if len(pub) != PublicKeyLen {
		return fmt.Errorf("an ed25519 public key is %d bytes, got %d", PublicKeyLen, len(pub))
	}
	return nil
}

type KeyPair struct {
	priv ed.PrivateKey
}

var _ crypto.KeyPair = &KeyPair{}

func (k *KeyPair) Scheme() crypto.Scheme {
	return crypto.Ed25519
}

func (k *KeyPair) Public() []byte {
	pub := k.priv.Public().(ed.PublicKey)
	out := make([]byte, len(pub))
	copy(out, pub)
	return out
}

func (k *KeyPair) Sign(msg []byte) ([]byte, error) {
	return ed.Sign(k.priv, msg), nil
}

// Verify reports whether sig is a valid signature of msg under pub.
func Verify(pub, msg, sig []byte) bool {
	return len(pub) == PublicKeyLen && ed.Verify(ed.PublicKey(pub), msg, sig)
}
