package keystore

import "github.com/meridianchain/keystore/types"

// The sentinel errors of the store API, re-exported so callers holding
// only the facade can match them with errors.Is.
var (
	ErrInvalidPassword = types.ErrInvalidPassword
	ErrInvalidPhrase   = types.ErrInvalidPhrase
	ErrInvalidSeed     = types.ErrInvalidSeed
	ErrKeyNotSupported = types.ErrKeyNotSupported
	ErrPairNotFound    = types.ErrPairNotFound
	ErrUnavailable     = types.ErrUnavailable
)
