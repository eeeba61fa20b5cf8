package crypto_test

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridianchain/keystore/crypto"
	"github.com/meridianchain/keystore/types"
)

const devPhrase = "bottom drive obey lake curtain smoke basket hold race lonely fit walk"

func TestParseSecretURI(t *testing.T) {
	testCases := []struct {
		name      string
		suri      string
		phrase    string
		junctions int
		password  string
	}{
		{
			name:   "phrase only",
			suri:   devPhrase,
			phrase: devPhrase,
		},
		{
			name:      "hard junctions",
			suri:      devPhrase + "//Alice//1",
			phrase:    devPhrase,
			junctions: 2,
		},
		{
			name:     "password only",
			suri:     devPhrase + "///secret",
			phrase:   devPhrase,
			password: "secret",
		},
		{
			name:      "password containing separators",
			suri:      devPhrase + "//Alice///pass/word",
			phrase:    devPhrase,
			junctions: 1,
			password:  "pass/word",
		},
		{
			name:   "hex seed phrase",
			suri:   "0x3d97c819d68f9bafa7d6e79cb991eebcd77d966c5334c0b94d9e1fa7ad0869dc",
			phrase: "0x3d97c819d68f9bafa7d6e79cb991eebcd77d966c5334c0b94d9e1fa7ad0869dc",
		},
		{
			name:      "omitted phrase falls back to the dev phrase",
			suri:      "//Alice",
			phrase:    crypto.DevPhrase,
			junctions: 1,
		},
		{
			name:     "omitted phrase with password",
			suri:     "///secret",
			phrase:   crypto.DevPhrase,
			password: "secret",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := crypto.ParseSecretURI(tc.suri)
			require.NoError(t, err)
			require.Equal(t, tc.phrase, parsed.Phrase)
			require.Len(t, parsed.Junctions, tc.junctions)
			require.Equal(t, tc.password, parsed.Password)
			for _, j := range parsed.Junctions {
				require.True(t, j.Hard)
			}
		})
	}

	_, err := crypto.ParseSecretURI("")
	require.ErrorIs(t, err, types.ErrInvalidPhrase)

	_, err = crypto.ParseSecretURI(devPhrase + "//")
	require.ErrorIs(t, err, types.ErrInvalidPhrase)

	parsed, err := crypto.ParseSecretURI(devPhrase + "/soft")
	require.NoError(t, err)
	require.Len(t, parsed.Junctions, 1)
	require.False(t, parsed.Junctions[0].Hard)
}

func TestJunctionChainCodes(t *testing.T) {
	// Numeric components encode as little-endian u64.
	parsed, err := crypto.ParseSecretURI(devPhrase + "//42")
	require.NoError(t, err)
	var want [32]byte
	binary.LittleEndian.PutUint64(want[:], 42)
	require.Equal(t, want, parsed.Junctions[0].ChainCode)

	// Non-numeric components encode as length-prefixed bytes.
	parsed, err = crypto.ParseSecretURI(devPhrase + "//Alice")
	require.NoError(t, err)
	want = [32]byte{}
	want[0] = byte(len("Alice") << 2)
	copy(want[1:], "Alice")
	require.Equal(t, want, parsed.Junctions[0].ChainCode)

	// Components whose encoding exceeds 32 bytes are hashed, so two long
	// components must not collide by truncation.
	long := devPhrase + "//averylongjunctioncomponentthatneedshashing"
	longer := long + "x"
	a, err := crypto.ParseSecretURI(long)
	require.NoError(t, err)
	b, err := crypto.ParseSecretURI(longer)
	require.NoError(t, err)
	require.NotEqual(t, a.Junctions[0].ChainCode, b.Junctions[0].ChainCode)

	// Components over 63 bytes use the two-byte compact length prefix:
	// blake2b-256(0x9101 || "a"*100).
	parsed, err = crypto.ParseSecretURI(devPhrase + "//" + strings.Repeat("a", 100))
	require.NoError(t, err)
	wantHex, err := hex.DecodeString("0cc6ae1565611349f15a291549fc38c30273d4bf600eec3ec6dfffff6d5bb8d8")
	require.NoError(t, err)
	copy(want[:], wantHex)
	require.Equal(t, want, parsed.Junctions[0].ChainCode)
}

func TestSeedFromMnemonic(t *testing.T) {
	seed, err := crypto.SeedFromMnemonic(devPhrase, "")
	require.NoError(t, err)
	require.Equal(t,
		"fac7959dbfe72f052e5a0c3c8d6530f202b02fd8f9f5ca3580ec8deb7797479e",
		hex.EncodeToString(seed),
	)

	withPassword, err := crypto.SeedFromMnemonic(devPhrase, "secret")
	require.NoError(t, err)
	require.NotEqual(t, seed, withPassword)

	// Shorter phrases resolve too.
	twelve := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	short, err := crypto.SeedFromMnemonic(twelve, "")
	require.NoError(t, err)
	require.Len(t, short, crypto.SeedLen)

	_, err = crypto.SeedFromMnemonic("this is not a valid mnemonic phrase at all", "")
	require.ErrorIs(t, err, types.ErrInvalidPhrase)

	// Valid words, broken checksum.
	badChecksum := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon"
	_, err = crypto.SeedFromMnemonic(badChecksum, "")
	require.ErrorIs(t, err, types.ErrInvalidPhrase)
}

func TestSeedFromHexString(t *testing.T) {
	seed, err := crypto.SeedFromHexString("0x3d97c819d68f9bafa7d6e79cb991eebcd77d966c5334c0b94d9e1fa7ad0869dc")
	require.NoError(t, err)
	require.Len(t, seed, crypto.SeedLen)

	_, err = crypto.SeedFromHexString("0xabcd")
	require.ErrorIs(t, err, types.ErrInvalidSeed)

	_, err = crypto.SeedFromHexString("0xzz97c819d68f9bafa7d6e79cb991eebcd77d966c5334c0b94d9e1fa7ad0869dc")
	require.ErrorIs(t, err, types.ErrInvalidSeed)
}

func TestGenerateMnemonic(t *testing.T) {
	phrase, err := crypto.GenerateMnemonic()
	require.NoError(t, err)

	seed, err := crypto.SeedFromMnemonic(phrase, "")
	require.NoError(t, err)
	require.Len(t, seed, crypto.SeedLen)

	other, err := crypto.GenerateMnemonic()
	require.NoError(t, err)
	require.NotEqual(t, phrase, other)
}

func TestHardDeriveSeed(t *testing.T) {
	seed, err := crypto.SeedFromMnemonic(devPhrase, "")
	require.NoError(t, err)

	var cc [32]byte
	cc[0] = byte(len("Alice") << 2)
	copy(cc[1:], "Alice")

	derived := crypto.HardDeriveSeed("Ed25519HDKD", seed, cc)
	require.Len(t, derived, crypto.SeedLen)
	require.Equal(t, derived, crypto.HardDeriveSeed("Ed25519HDKD", seed, cc))
	require.NotEqual(t, derived, crypto.HardDeriveSeed("Secp256k1HDKD", seed, cc))
	require.NotEqual(t, derived, seed)
}
