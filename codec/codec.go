// Package codec encodes a key's recovery string to and from the bytes
// stored in a keystore file.
//
// Without a password the content is the JSON string encoding of the
// recovery string. With a password it is an authenticated envelope:
//
//	magic || scrypt salt (16) || secretbox nonce (24) || secretbox(payload)
//
// Secretbox authenticates the ciphertext, so decoding under the wrong
// password fails cleanly instead of yielding garbage that might parse as a
// different key.
package codec

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	"github.com/meridianchain/keystore/types"
)

var (
	// ErrMalformed reports file content that does not parse as an encoded
	// recovery string.
	ErrMalformed = errors.New("malformed key file")
	// ErrAuthFailed reports an authenticated decryption failure: the
	// configured password does not match the one the file was written
	// with.
	ErrAuthFailed = errors.New("key file authentication failed")
)

var envelopeMagic = []byte("KSENC01!")

const (
	saltLen  = 16
	nonceLen = 24
	keyLen   = 32

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// Encode produces the file content for a recovery string, encrypting iff a
// password is supplied.
func Encode(suri string, password *types.Password) ([]byte, error) {
	plain, err := json.Marshal(suri)
	if err != nil {
		return nil, err
	}
	if password == nil {
		return plain, nil
	}

	var salt [saltLen]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	key, err := deriveKey(password, salt[:])
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(envelopeMagic)+saltLen+nonceLen+len(plain)+secretbox.Overhead)
	out = append(out, envelopeMagic...)
	out = append(out, salt[:]...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plain, &nonce, key), nil
}

// Decode recovers the recovery string from file content. The password must
// match how the file was written: a passwordless store refuses envelopes
// and a password-configured store refuses plaintext, both as ErrMalformed.
func Decode(data []byte, password *types.Password) (string, error) {
	if password == nil {
		if bytes.HasPrefix(data, envelopeMagic) {
			return "", fmt.Errorf("%w: content is encrypted but no password is configured", ErrMalformed)
		}
		return decodeString(data)
	}

	if !bytes.HasPrefix(data, envelopeMagic) {
		return "", fmt.Errorf("%w: expected an encrypted envelope", ErrMalformed)
	}
	rest := data[len(envelopeMagic):]
	if len(rest) < saltLen+nonceLen+secretbox.Overhead {
		return "", fmt.Errorf("%w: truncated envelope", ErrMalformed)
	}

	key, err := deriveKey(password, rest[:saltLen])
	if err != nil {
		return "", err
	}
	var nonce [nonceLen]byte
	copy(nonce[:], rest[saltLen:saltLen+nonceLen])
	plain, ok := secretbox.Open(nil, rest[saltLen+nonceLen:], &nonce, key)
	if !ok {
		return "", ErrAuthFailed
	}
	return decodeString(plain)
}

func decodeString(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return s, nil
}

func deriveKey(password *types.Password, salt []byte) (*[keyLen]byte, error) {
	raw, err := scrypt.Key(password.Reveal(), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, err
	}
	key := new([keyLen]byte)
	copy(key[:], raw)
	return key, nil
}
