package types

import (
	"errors"
)

var (
	// ErrInvalidPassword reports a malformed password supplied by the
	// caller. A wrong-but-well-formed password does not produce this
	// error; it surfaces as ErrPairNotFound on retrieval.
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidPhrase   = errors.New("invalid recovery phrase (BIP39) data")
	ErrInvalidSeed     = errors.New("invalid seed")
	ErrKeyNotSupported = errors.New("key crypto type is not supported")
	ErrPairNotFound    = errors.New("pair not found")
	ErrUnavailable     = errors.New("keystore unavailable")
)
