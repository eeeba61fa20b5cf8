package crypto

import (
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/cosmos/go-bip39"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/pbkdf2"

	"github.com/meridianchain/keystore/types"
)

const (
	// SeedLen is the raw seed size shared by all supported schemes.
	SeedLen = 32

	mnemonicEntropySize = 256
	seedRounds          = 2048
)

// DevPhrase is the well-known development phrase. A SURI that omits its
// phrase ("//Alice") resolves against it.
const DevPhrase = "bottom drive obey lake curtain smoke basket hold race lonely fit walk"

// Junction is a single derivation step parsed from a secret URI.
type Junction struct {
	Hard      bool
	ChainCode [32]byte
}

// SecretURI is the parsed recovery form of a key: a phrase (mnemonic or
// 0x-prefixed hex seed), derivation junctions and an optional inline
// password.
type SecretURI struct {
	Phrase    string
	Junctions []Junction
	Password  string
}

// ParseSecretURI splits a SURI of the form
//
//	<phrase>[//hard-junction|/soft-junction]*[///password]
//
// Soft junctions are parsed here but rejected by the adapters, which only
// support hard derivation.
func ParseSecretURI(s string) (*SecretURI, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty secret URI", types.ErrInvalidPhrase)
	}

	res := &SecretURI{}
	if i := strings.Index(s, "///"); i >= 0 {
		res.Password = s[i+3:]
		s = s[:i]
	}

	// The phrase runs up to the first junction separator.
	phraseEnd := strings.Index(s, "/")
	if phraseEnd < 0 {
		phraseEnd = len(s)
	}
	res.Phrase = s[:phraseEnd]
	if res.Phrase == "" {
		res.Phrase = DevPhrase
	}

	rest := s[phraseEnd:]
	for len(rest) > 0 {
		rest = rest[1:] // leading '/'
		hard := false
		if strings.HasPrefix(rest, "/") {
			hard = true
			rest = rest[1:]
		}
		end := strings.Index(rest, "/")
		if end < 0 {
			end = len(rest)
		}
		component := rest[:end]
		if component == "" {
			return nil, fmt.Errorf("%w: empty junction in derivation path", types.ErrInvalidPhrase)
		}
		res.Junctions = append(res.Junctions, Junction{
			Hard:      hard,
			ChainCode: junctionChainCode(component),
		})
		rest = rest[end:]
	}

	return res, nil
}

// junctionChainCode encodes a junction component into its 32-byte chain
// code: numeric components as little-endian u64, anything else as a
// length-prefixed byte string; encodings longer than 32 bytes are
// blake2b-256 hashed, shorter ones zero-padded.
func junctionChainCode(component string) [32]byte {
	var enc []byte
	if n, err := strconv.ParseUint(component, 10, 64); err == nil {
		enc = make([]byte, 8)
		binary.LittleEndian.PutUint64(enc, n)
	} else {
		enc = scaleEncodeBytes([]byte(component))
	}

	var cc [32]byte
	if len(enc) > len(cc) {
		cc = blake2b.Sum256(enc)
	} else {
		copy(cc[:], enc)
	}
	return cc
}

// scaleEncodeBytes is the SCALE encoding of a byte string: a compact length
// prefix followed by the bytes. Junction components are caller input, so
// the two- and four-byte compact forms are covered as well.
func scaleEncodeBytes(b []byte) []byte {
	n := uint64(len(b))
	var prefix []byte
	switch {
	case n < 1<<6:
		prefix = []byte{byte(n << 2)}
	case n < 1<<14:
		prefix = make([]byte, 2)
		binary.LittleEndian.PutUint16(prefix, uint16(n<<2)|0b01)
	default:
		prefix = make([]byte, 4)
		binary.LittleEndian.PutUint32(prefix, uint32(n<<2)|0b10)
	}
	return append(prefix, b...)
}

// GenerateMnemonic returns a fresh 24-word BIP39 phrase from crypto/rand
// entropy.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropySize)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// SeedFromMnemonic derives the 32-byte seed from a BIP39 phrase:
// PBKDF2-SHA512 over the phrase's entropy, salted with "mnemonic" plus the
// password. This is the construction the surrounding ecosystem derives
// session keys with, so phrases are portable across implementations.
func SeedFromMnemonic(phrase, password string) ([]byte, error) {
	entropy, err := mnemonicEntropy(phrase)
	if err != nil {
		return nil, err
	}
	return pbkdf2.Key(entropy, []byte("mnemonic"+password), seedRounds, 64, sha512.New)[:SeedLen], nil
}

// mnemonicEntropy recovers the raw entropy a phrase encodes. The bip39
// dependency only exposes the entropy with the checksum bits appended as a
// big-endian integer, so the checksum is stripped here and then verified by
// rebuilding the phrase from the entropy.
func mnemonicEntropy(phrase string) ([]byte, error) {
	words := strings.Fields(phrase)
	if len(words) < 12 || len(words) > 24 || len(words)%3 != 0 {
		return nil, fmt.Errorf("%w: a phrase has 12 to 24 words, got %d", types.ErrInvalidPhrase, len(words))
	}
	phrase = strings.Join(words, " ")

	checksummed, err := bip39.MnemonicToByteArray(phrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidPhrase, err)
	}
	bitSize := len(words) * 11
	checksumBits := uint(bitSize / 33)
	x := new(big.Int).SetBytes(checksummed)
	x.Rsh(x, checksumBits)
	entropy := x.FillBytes(make([]byte, (bitSize-int(checksumBits))/8))

	rebuilt, err := bip39.NewMnemonic(entropy)
	if err != nil || rebuilt != phrase {
		return nil, fmt.Errorf("%w: checksum mismatch", types.ErrInvalidPhrase)
	}
	return entropy, nil
}

// SeedFromHexString decodes a 0x-prefixed (or bare) hex seed string.
func SeedFromHexString(s string) ([]byte, error) {
	seed, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidSeed, err)
	}
	if len(seed) != SeedLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", types.ErrInvalidSeed, SeedLen, len(seed))
	}
	return seed, nil
}

// SeedFromPhrase resolves the phrase part of a SURI, which is either a
// hex seed or a mnemonic, to a 32-byte seed.
func SeedFromPhrase(phrase, password string) ([]byte, error) {
	if strings.HasPrefix(phrase, "0x") {
		return SeedFromHexString(phrase)
	}
	return SeedFromMnemonic(phrase, password)
}

// HardDeriveSeed applies one hard junction to a seed, domain-separated by
// the scheme's HDKD tag ("Ed25519HDKD", "Secp256k1HDKD").
func HardDeriveSeed(tag string, seed []byte, cc [32]byte) []byte {
	buf := make([]byte, 0, len(tag)+1+len(seed)+len(cc))
	buf = append(buf, scaleEncodeBytes([]byte(tag))...)
	buf = append(buf, seed...)
	buf = append(buf, cc[:]...)
	sum := blake2b.Sum256(buf)
	return sum[:]
}
