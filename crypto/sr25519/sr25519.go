// Package sr25519 implements the sr25519 (schnorrkel/ristretto255) keystore
// adapter. It is the only scheme with VRF support.
package sr25519

import (
	"encoding/binary"
	"fmt"

	schnorrkel "github.com/ChainSafe/go-schnorrkel"
	"github.com/gtank/merlin"

	"github.com/meridianchain/keystore/crypto"
	"github.com/meridianchain/keystore/types"
)

const (
	PublicKeyLen = 32
	SignatureLen = 64
)

// signingContext is the context string the surrounding system verifies
// signatures against.
var signingContext = []byte("substrate")

type Adapter struct{}

var _ crypto.Adapter = &Adapter{}

func NewAdapter() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Scheme() crypto.Scheme {
	return crypto.Sr25519
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
	ms, err := miniSecretFromSeed(seed)
	if err != nil {
		return nil, err
	}
	return newKeyPair(ms), nil
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
	ms, err := miniSecretFromSeed(seed)
	if err != nil {
		return nil, err
	}
	for _, j := range parsed.Junctions {
		if !j.Hard {
			return nil, fmt.Errorf("%w: soft derivation is not supported", types.ErrInvalidPhrase)
		}
		ms, _, err = ms.HardDeriveMiniSecretKey([]byte{}, j.ChainCode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidPhrase, err)
		}
	}
	return newKeyPair(ms), nil
}

// ValidatePublic is a byte-level check only; ristretto point validity is
// established when the key is actually used.
func (a *Adapter) ValidatePublic(pub []byte) error {
	if len(pub) != PublicKeyLen {
		return fmt.Errorf("an sr25519 public key is %d bytes, got %d", PublicKeyLen, len(pub))
	}
	return nil
}

func miniSecretFromSeed(seed []byte) (*schnorrkel.MiniSecretKey, error) {
	if len(seed) != crypto.SeedLen {
		return nil, fmt.Errorf("%w: sr25519 seed should be %d bytes, got %d", types.ErrInvalidSeed, crypto.SeedLen, len(seed))
	}
	var raw [crypto.SeedLen]byte
	copy(raw[:], seed)
	ms, err := schnorrkel.NewMiniSecretKeyFromRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidSeed, err)
	}
	return ms, nil
}

type KeyPair struct {
	secret *schnorrkel.SecretKey
	pub    *schnorrkel.PublicKey
}

var (
	_ crypto.KeyPair   = &KeyPair{}
	_ crypto.VRFSigner = &KeyPair{}
)

func newKeyPair(ms *schnorrkel.MiniSecretKey) *KeyPair {
	return &KeyPair{
		secret: ms.ExpandEd25519(),
		pub:    ms.Public(),
	}
}

func (k *KeyPair) Scheme() crypto.Scheme {
	return crypto.Sr25519
}

func (k *KeyPair) Public() []byte {
	enc := k.pub.Encode()
	return enc[:]
}

func (k *KeyPair) Sign(msg []byte) ([]byte, error) {
	sig, err := k.secret.Sign(schnorrkel.NewSigningContext(signingContext, msg))
	if err != nil {
		return nil, err
	}
	enc := sig.Encode()
	return enc[:], nil
}

// VRFSign produces the VRF output and proof for the given transcript data.
func (k *KeyPair) VRFSign(data types.VRFTranscriptData) (*types.VRFSignature, error) {
	inout, proof, err := k.secret.VrfSign(makeTranscript(data))
	if err != nil {
		return nil, err
	}
	sig := &types.VRFSignature{
		Output: inout.Output().Encode(),
		Proof:  proof.Encode(),
	}
	return sig, nil
}

func makeTranscript(data types.VRFTranscriptData) *merlin.Transcript {
	t := merlin.NewTranscript(data.Label)
	for _, item := range data.Items {
		if item.U64 != nil {
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], *item.U64)
			t.AppendMessage([]byte(item.Label), buf[:])
			continue
		}
		t.AppendMessage([]byte(item.Label), item.Bytes)
	}
	return t
}

// Verify reports whether sig is a valid signature of msg under pub.
func Verify(pub, msg, sig []byte) (bool, error) {
	pk, err := decodePublic(pub)
	if err != nil {
		return false, err
	}
	if len(sig) != SignatureLen {
		return false, fmt.Errorf("an sr25519 signature is %d bytes, got %d", SignatureLen, len(sig))
	}
	var rawSig [SignatureLen]byte
	copy(rawSig[:], sig)
	s := &schnorrkel.Signature{}
	if err := s.Decode(rawSig); err != nil {
		return false, err
	}
	return pk.Verify(s, schnorrkel.NewSigningContext(signingContext, msg))
}

// VRFVerify reports whether sig's output and proof are valid for the
// transcript under pub.
func VRFVerify(pub []byte, data types.VRFTranscriptData, sig *types.VRFSignature) (bool, error) {
	pk, err := decodePublic(pub)
	if err != nil {
		return false, err
	}
	out := new(schnorrkel.VrfOutput)
	if err := out.Decode(sig.Output); err != nil {
		return false, err
	}
	proof := new(schnorrkel.VrfProof)
	if err := proof.Decode(sig.Proof); err != nil {
		return false, err
	}
	return pk.VrfVerify(makeTranscript(data), out, proof)
}

func decodePublic(pub []byte) (*schnorrkel.PublicKey, error) {
	if len(pub) != PublicKeyLen {
		return nil, fmt.Errorf("an sr25519 public key is %d bytes, got %d", PublicKeyLen, len(pub))
	}
	var raw [PublicKeyLen]byte
	copy(raw[:], pub)
	pk := &schnorrkel.PublicKey{}
	if err := pk.Decode(raw); err != nil {
		return nil, err
	}
	return pk, nil
}
