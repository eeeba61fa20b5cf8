package keystore_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meridianchain/keystore"
	"github.com/meridianchain/keystore/config"
	"github.com/meridianchain/keystore/crypto"
	"github.com/meridianchain/keystore/local"
	"github.com/meridianchain/keystore/types"
)

const testSeed = "0x3d97c819d68f9bafa7d6e79cb991eebcd77d966c5334c0b94d9e1fa7ad0869dc"

func openFacade(t *testing.T, home string) *keystore.Keystore {
	cfg := config.DefaultConfigWithHome(home)
	backend, err := local.Open(&cfg, nil, zap.NewNop())
	require.NoError(t, err)
	return keystore.NewKeystore(backend)
}

func TestFacadeForwards(t *testing.T) {
	home := t.TempDir()
	ks := openFacade(t, home)
	keyType, err := types.KeyTypeIDFromString("aura")
	require.NoError(t, err)

	// Empty seed: a persisted random key.
	persisted, err := ks.GenerateNew(crypto.Sr25519, keyType, "")
	require.NoError(t, err)

	// Non-empty seed: ephemeral, but visible under the key type.
	ephemeral, err := ks.GenerateNew(crypto.Ed25519, keyType, testSeed)
	require.NoError(t, err)

	srKeys, err := ks.PublicKeysByType(crypto.Sr25519, keyType)
	require.NoError(t, err)
	require.Contains(t, srKeys, persisted.Public())
	edKeys, err := ks.PublicKeysByType(crypto.Ed25519, keyType)
	require.NoError(t, err)
	require.Contains(t, edKeys, ephemeral.Public())

	require.True(t, ks.HasKeys([]types.PublicKeyRef{
		{Public: persisted.Public(), KeyType: keyType},
		{Public: ephemeral.Public(), KeyType: keyType},
	}))

	all, err := ks.Keys(keyType)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	supported, err := ks.SupportedKeys(keyType, []crypto.CryptoTypePublicPair{
		{Scheme: crypto.Sr25519, Public: persisted.Public()},
	})
	require.NoError(t, err)
	require.Len(t, supported, 1)

	sig, err := ks.SignWith(keyType, crypto.CryptoTypePublicPair{
		Scheme: crypto.Sr25519,
		Public: persisted.Public(),
	}, []byte("msg"))
	require.NoError(t, err)
	require.NotEmpty(t, sig)

	slot := uint64(1)
	vrfSig, err := ks.VRFSign(keyType, persisted.Public(), types.VRFTranscriptData{
		Label: "transcript",
		Items: []types.VRFTranscriptItem{{Label: "slot", U64: &slot}},
	})
	require.NoError(t, err)
	require.NotNil(t, vrfSig)

	require.NoError(t, ks.Close())

	// Only the persisted key survives a reopen.
	reopened := openFacade(t, home)
	require.True(t, reopened.HasKeys([]types.PublicKeyRef{
		{Public: persisted.Public(), KeyType: keyType},
	}))
	require.False(t, reopened.HasKeys([]types.PublicKeyRef{
		{Public: ephemeral.Public(), KeyType: keyType},
	}))
}

func TestFacadeErrors(t *testing.T) {
	ks := openFacade(t, t.TempDir())
	keyType, err := types.KeyTypeIDFromString("gran")
	require.NoError(t, err)

	_, err = ks.GenerateNew(crypto.Scheme("unknown"), keyType, "")
	require.ErrorIs(t, err, keystore.ErrKeyNotSupported)

	_, err = ks.SignWith(keyType, crypto.CryptoTypePublicPair{
		Scheme: crypto.Ed25519,
		Public: make([]byte, 32),
	}, []byte("msg"))
	require.ErrorIs(t, err, keystore.ErrPairNotFound)

	_, err = types.KeyTypeIDFromString("toolong")
	require.Error(t, err)
}
