package ecdsa_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridianchain/keystore/crypto"
	"github.com/meridianchain/keystore/crypto/ecdsa"
	"github.com/meridianchain/keystore/types"
)

const testSeedHex = "3d97c819d68f9bafa7d6e79cb991eebcd77d966c5334c0b94d9e1fa7ad0869dc"

func TestFromSeed(t *testing.T) {
	a := ecdsa.NewAdapter()

	seed, err := hex.DecodeString(testSeedHex)
	require.NoError(t, err)

	pair, err := a.FromSeed(seed)
	require.NoError(t, err)
	require.Equal(t, crypto.Ecdsa, pair.Scheme())
	require.Len(t, pair.Public(), ecdsa.PublicKeyLen)

	again, err := a.FromSeed(seed)
	require.NoError(t, err)
	require.Equal(t, pair.Public(), again.Public())

	fromSURI, err := a.FromSURI("0x" + testSeedHex)
	require.NoError(t, err)
	require.Equal(t, pair.Public(), fromSURI.Public())

	_, err = a.FromSeed(seed[:16])
	require.ErrorIs(t, err, types.ErrInvalidSeed)
}

func TestSignAndRecover(t *testing.T) {
	a := ecdsa.NewAdapter()

	pair, phrase, err := a.Generate()
	require.NoError(t, err)

	msg := []byte("the message to sign")
	sig, err := pair.Sign(msg)
	require.NoError(t, err)
	require.Len(t, sig, ecdsa.SignatureLen)

	recovered, err := ecdsa.RecoverPublic(msg, sig)
	require.NoError(t, err)
	require.Equal(t, pair.Public(), recovered)

	// A different message recovers a different key.
	other, err := ecdsa.RecoverPublic([]byte("another message"), sig)
	if err == nil {
		require.NotEqual(t, pair.Public(), other)
	}

	fromPhrase, err := a.FromSURI(phrase)
	require.NoError(t, err)
	require.Equal(t, pair.Public(), fromPhrase.Public())
}

func TestDerivation(t *testing.T) {
	a := ecdsa.NewAdapter()

	_, phrase, err := a.Generate()
	require.NoError(t, err)

	base, err := a.FromSURI(phrase)
	require.NoError(t, err)

	derived, err := a.FromSURI(phrase + "//0")
	require.NoError(t, err)
	require.NotEqual(t, base.Public(), derived.Public())

	_, err = a.FromSURI(phrase + "/soft")
	require.ErrorIs(t, err, types.ErrInvalidPhrase)
}

func TestValidatePublic(t *testing.T) {
	a := ecdsa.NewAdapter()

	pair, _, err := a.Generate()
	require.NoError(t, err)
	require.NoError(t, a.ValidatePublic(pair.Public()))

	require.Error(t, a.ValidatePublic(pair.Public()[:32]))

	// Right length, invalid encoding.
	bad := make([]byte, ecdsa.PublicKeyLen)
	bad[0] = 0x05
	require.Error(t, a.ValidatePublic(bad))
}
