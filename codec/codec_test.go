package codec_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridianchain/keystore/codec"
	"github.com/meridianchain/keystore/types"
)

const testSURI = "bottom drive obey lake curtain smoke basket hold race lonely fit walk//Alice"

func TestPlaintextRoundTrip(t *testing.T) {
	data, err := codec.Encode(testSURI, nil)
	require.NoError(t, err)
	require.Equal(t, []byte(`"`+testSURI+`"`), data)

	suri, err := codec.Decode(data, nil)
	require.NoError(t, err)
	require.Equal(t, testSURI, suri)
}

func TestEncryptedRoundTrip(t *testing.T) {
	password := types.NewPassword("hunter2")

	data, err := codec.Encode(testSURI, password)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("KSENC01!")))
	require.NotContains(t, string(data), testSURI)

	suri, err := codec.Decode(data, password)
	require.NoError(t, err)
	require.Equal(t, testSURI, suri)

	// A fresh salt and nonce every time.
	again, err := codec.Encode(testSURI, password)
	require.NoError(t, err)
	require.NotEqual(t, data, again)
}

func TestWrongPassword(t *testing.T) {
	data, err := codec.Encode(testSURI, types.NewPassword("right"))
	require.NoError(t, err)

	_, err = codec.Decode(data, types.NewPassword("wrong"))
	require.ErrorIs(t, err, codec.ErrAuthFailed)
}

func TestPasswordModeMismatch(t *testing.T) {
	encrypted, err := codec.Encode(testSURI, types.NewPassword("pw"))
	require.NoError(t, err)
	plain, err := codec.Encode(testSURI, nil)
	require.NoError(t, err)

	_, err = codec.Decode(encrypted, nil)
	require.ErrorIs(t, err, codec.ErrMalformed)

	_, err = codec.Decode(plain, types.NewPassword("pw"))
	require.ErrorIs(t, err, codec.ErrMalformed)
}

func TestMalformedContent(t *testing.T) {
	_, err := codec.Decode([]byte("not json"), nil)
	require.ErrorIs(t, err, codec.ErrMalformed)

	_, err = codec.Decode([]byte(`{"not":"a string"}`), nil)
	require.ErrorIs(t, err, codec.ErrMalformed)

	_, err = codec.Decode([]byte("KSENC01!short"), types.NewPassword("pw"))
	require.ErrorIs(t, err, codec.ErrMalformed)

	// A flipped ciphertext byte fails authentication.
	data, err := codec.Encode(testSURI, types.NewPassword("pw"))
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	_, err = codec.Decode(data, types.NewPassword("pw"))
	require.ErrorIs(t, err, codec.ErrAuthFailed)
}
