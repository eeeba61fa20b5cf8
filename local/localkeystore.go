// Package local implements the directory-backed keystore. Every persisted
// key is one file whose name identifies the key type and public key and
// whose content is the encoded recovery string; loaded pairs are cached in
// memory so each file is decoded at most once per store instance.
package local

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/meridianchain/keystore/codec"
	"github.com/meridianchain/keystore/config"
	"github.com/meridianchain/keystore/crypto"
	"github.com/meridianchain/keystore/crypto/ecdsa"
	"github.com/meridianchain/keystore/crypto/ed25519"
	"github.com/meridianchain/keystore/crypto/sr25519"
	"github.com/meridianchain/keystore/metrics"
	"github.com/meridianchain/keystore/types"
)

type LocalKeystore struct {
	// mu guards the ephemeral index and serializes file writes; the pair
	// cache carries its own lock.
	mu        sync.RWMutex
	dir       string
	password  *types.Password
	adapters  map[crypto.Scheme]crypto.Adapter
	cache     *keyCache
	ephemeral map[ephemeralRef]struct{}
	logger    *zap.Logger
	metrics   *metrics.KeystoreMetrics
}

// ephemeralRef records a key that was inserted under a key type without
// being persisted, so type-filtered enumeration can still report it.
type ephemeralRef struct {
	keyType types.KeyTypeID
	scheme  crypto.Scheme
	public  string
}

// Open prepares the keystore directory and returns a store over it. Keys
// are not loaded eagerly; each one is read on first use.
func Open(cfg *config.Config, password *types.Password, logger *zap.Logger) (*LocalKeystore, error) {
	dir := cfg.KeyDirectory
	if dir == "" {
		return nil, fmt.Errorf("%w: the key directory should not be empty", types.ErrUnavailable)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create the keystore directory: %w", err)
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", types.ErrUnavailable, dir)
	}

	return &LocalKeystore{
		dir:      dir,
		password: password,
		adapters: map[crypto.Scheme]crypto.Adapter{
			crypto.Ed25519: ed25519.NewAdapter(),
			crypto.Sr25519: sr25519.NewAdapter(),
			crypto.Ecdsa:   ecdsa.NewAdapter(),
		},
		cache:     newKeyCache(),
		ephemeral: make(map[ephemeralRef]struct{}),
		logger:    logger,
		metrics:   metrics.NewKeystoreMetrics(),
	}, nil
}

func (ks *LocalKeystore) adapterFor(scheme crypto.Scheme) (crypto.Adapter, error) {
	a, ok := ks.adapters[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrKeyNotSupported, scheme)
	}
	return a, nil
}

// Generate creates a fresh key under keyType, persists it and returns the
// loaded pair.
func (ks *LocalKeystore) Generate(scheme crypto.Scheme, keyType types.KeyTypeID) (crypto.KeyPair, error) {
	a, err := ks.adapterFor(scheme)
	if err != nil {
		return nil, err
	}
	pair, phrase, err := a.Generate()
	if err != nil {
		return nil, err
	}
	if err := ks.persist(keyType, pair.Public(), phrase); err != nil {
		return nil, err
	}
	ks.cache.put(scheme, pair.Public(), pair)
	ks.metrics.KeystoreCreatedKeysCounter.WithLabelValues(string(scheme)).Inc()

	ks.logger.Info(
		"generated a new key",
		zap.String("scheme", string(scheme)),
		zap.String("key_type", keyType.String()),
		zap.String("pk", hex.EncodeToString(pair.Public())),
	)

	return pair, nil
}

// GenerateNew creates a persisted random key when seed is empty, and an
// ephemeral key recorded under keyType otherwise.
func (ks *LocalKeystore) GenerateNew(scheme crypto.Scheme, keyType types.KeyTypeID, seed string) (crypto.KeyPair, error) {
	if seed == "" {
		return ks.Generate(scheme, keyType)
	}
	return ks.insertEphemeral(scheme, seed, &keyType)
}

// InsertEphemeralFromSeed loads a key into the in-memory cache without
// touching the disk. The seed may be a hex seed or a full recovery string.
func (ks *LocalKeystore) InsertEphemeralFromSeed(scheme crypto.Scheme, seed string) (crypto.KeyPair, error) {
	return ks.insertEphemeral(scheme, seed, nil)
}

func (ks *LocalKeystore) insertEphemeral(scheme crypto.Scheme, seed string, keyType *types.KeyTypeID) (crypto.KeyPair, error) {
	a, err := ks.adapterFor(scheme)
	if err != nil {
		return nil, err
	}
	pair, err := a.FromSURI(seed)
	if err != nil {
		return nil, err
	}
	ks.cache.put(scheme, pair.Public(), pair)
	if keyType != nil {
		ks.mu.Lock()
		ks.ephemeral[ephemeralRef{
			keyType: *keyType,
			scheme:  scheme,
			public:  hex.EncodeToString(pair.Public()),
		}] = struct{}{}
		ks.mu.Unlock()
	}
	return pair, nil
}

// InsertUnknown writes a recovery string under keyType and public without
// validating that they belong together. Only I/O or encoding can fail.
func (ks *LocalKeystore) InsertUnknown(keyType types.KeyTypeID, suri string, public []byte) error {
	return ks.persist(keyType, public, suri)
}

func (ks *LocalKeystore) persist(keyType types.KeyTypeID, public []byte, suri string) error {
	content, err := codec.Encode(suri, ks.password)
	if err != nil {
		return err
	}
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return ks.writeKeyFile(ks.keyFilePath(keyType, public), content)
}

// KeyPair resolves a pair by scheme and public key, searching every key
// type on disk on a cache miss.
func (ks *LocalKeystore) KeyPair(scheme crypto.Scheme, public []byte) (crypto.KeyPair, error) {
	return ks.lookupPair(scheme, public, nil)
}

// KeyPairByType is KeyPair restricted to one key type.
func (ks *LocalKeystore) KeyPairByType(scheme crypto.Scheme, public []byte, keyType types.KeyTypeID) (crypto.KeyPair, error) {
	return ks.lookupPair(scheme, public, &keyType)
}

func (ks *LocalKeystore) lookupPair(scheme crypto.Scheme, public []byte, keyType *types.KeyTypeID) (crypto.KeyPair, error) {
	a, err := ks.adapterFor(scheme)
	if err != nil {
		return nil, err
	}

	// A type-restricted lookup must establish membership under that key
	// type before the cache may answer; the cache is keyed by scheme and
	// public key only and knows nothing about key types.
	var entries []dirEntry
	if keyType != nil {
		path := ks.keyFilePath(*keyType, public)
		exists, err := fileExists(path)
		if err != nil {
			return nil, err
		}
		switch {
		case exists:
			entries = []dirEntry{{keyType: *keyType, public: public, path: path}}
		case ks.ephemeralRecorded(*keyType, scheme, public):
			if pair, ok := ks.cache.get(scheme, public); ok {
				return pair, nil
			}
		}
	} else {
		if pair, ok := ks.cache.get(scheme, public); ok {
			return pair, nil
		}
		all, err := ks.listEntries(nil)
		if err != nil {
			return nil, err
		}
		for _, e := range all {
			if bytes.Equal(e.public, public) {
				entries = append(entries, e)
			}
		}
	}

	var lastErr error
	for _, e := range entries {
		if pair, ok := ks.cache.get(scheme, public); ok {
			return pair, nil
		}
		pair, err := ks.loadEntry(a, e)
		if err != nil {
			lastErr = err
			continue
		}
		ks.cache.put(scheme, public, pair)
		return pair, nil
	}

	ks.metrics.KeystoreLookupMissCounter.Inc()
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrPairNotFound, lastErr)
	}
	return nil, fmt.Errorf("%w: no %s key %s", types.ErrPairNotFound, scheme, hex.EncodeToString(public))
}

func (ks *LocalKeystore) ephemeralRecorded(keyType types.KeyTypeID, scheme crypto.Scheme, public []byte) bool {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	_, ok := ks.ephemeral[ephemeralRef{
		keyType: keyType,
		scheme:  scheme,
		public:  hex.EncodeToString(public),
	}]
	return ok
}

// fileExists separates a missing file from a failing stat, so real I/O
// errors are never mistaken for an absent key.
func fileExists(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// loadEntry decodes one key file and checks that the recovered pair really
// is the key the file name claims. A mismatch is a retrieval failure; the
// wrong pair is never returned.
func (ks *LocalKeystore) loadEntry(a crypto.Adapter, e dirEntry) (crypto.KeyPair, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return nil, err
	}
	suri, err := codec.Decode(data, ks.password)
	if err != nil {
		return nil, err
	}
	pair, err := a.FromSURI(suri)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(pair.Public(), e.public) {
		return nil, fmt.Errorf("the recovered %s public key does not match the file name", a.Scheme())
	}
	return pair, nil
}

// PublicKeys lists the public keys a scheme accepts, from file names alone
// plus any cached keys of the scheme. Nothing is decrypted.
func (ks *LocalKeystore) PublicKeys(scheme crypto.Scheme) ([][]byte, error) {
	a, err := ks.adapterFor(scheme)
	if err != nil {
		return nil, err
	}
	entries, err := ks.listEntries(nil)
	if err != nil {
		return nil, err
	}

	out := make([][]byte, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if a.ValidatePublic(e.public) != nil {
			continue
		}
		out = append(out, e.public)
		seen[hex.EncodeToString(e.public)] = struct{}{}
	}
	for _, pub := range ks.cache.publicKeys(scheme) {
		if _, ok := seen[hex.EncodeToString(pub)]; ok {
			continue
		}
		out = append(out, pub)
	}
	return out, nil
}

// PublicKeysByType lists the public keys stored under keyType that the
// scheme accepts, plus ephemeral keys recorded under that key type.
func (ks *LocalKeystore) PublicKeysByType(scheme crypto.Scheme, keyType types.KeyTypeID) ([][]byte, error) {
	a, err := ks.adapterFor(scheme)
	if err != nil {
		return nil, err
	}
	entries, err := ks.listEntries(&keyType)
	if err != nil {
		return nil, err
	}

	out := make([][]byte, 0, len(entries))
	for _, e := range entries {
		if a.ValidatePublic(e.public) != nil {
			continue
		}
		out = append(out, e.public)
	}

	ks.mu.RLock()
	defer ks.mu.RUnlock()
	for ref := range ks.ephemeral {
		if ref.keyType != keyType || ref.scheme != scheme {
			continue
		}
		pub, err := hex.DecodeString(ref.public)
		if err != nil {
			continue
		}
		out = append(out, pub)
	}
	return out, nil
}

// Keys lists every key stored under keyType, reported once per scheme that
// accepts its public key bytes.
func (ks *LocalKeystore) Keys(keyType types.KeyTypeID) ([]crypto.CryptoTypePublicPair, error) {
	entries, err := ks.listEntries(&keyType)
	if err != nil {
		return nil, err
	}

	out := make([]crypto.CryptoTypePublicPair, 0, len(entries))
	for _, e := range entries {
		for _, scheme := range crypto.Schemes {
			if ks.adapters[scheme].ValidatePublic(e.public) != nil {
				continue
			}
			out = append(out, crypto.CryptoTypePublicPair{Scheme: scheme, Public: e.public})
		}
	}

	ks.mu.RLock()
	defer ks.mu.RUnlock()
	for ref := range ks.ephemeral {
		if ref.keyType != keyType {
			continue
		}
		pub, err := hex.DecodeString(ref.public)
		if err != nil {
			continue
		}
		out = append(out, crypto.CryptoTypePublicPair{Scheme: ref.scheme, Public: pub})
	}
	return out, nil
}

// SupportedKeys filters candidates down to the ones present under keyType,
// preserving the candidate order.
func (ks *LocalKeystore) SupportedKeys(keyType types.KeyTypeID, candidates []crypto.CryptoTypePublicPair) ([]crypto.CryptoTypePublicPair, error) {
	all, err := ks.Keys(keyType)
	if err != nil {
		return nil, err
	}
	have := make(map[string]struct{}, len(all))
	for _, p := range all {
		have[pairKey(p)] = struct{}{}
	}
	out := make([]crypto.CryptoTypePublicPair, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := have[pairKey(c)]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func pairKey(p crypto.CryptoTypePublicPair) string {
	return string(p.Scheme) + ":" + hex.EncodeToString(p.Public)
}

// HasKeys reports whether every referenced key is available, on disk or in
// memory.
func (ks *LocalKeystore) HasKeys(refs []types.PublicKeyRef) bool {
	for _, ref := range refs {
		if ks.hasKey(ref) {
			continue
		}
		return false
	}
	return true
}

func (ks *LocalKeystore) hasKey(ref types.PublicKeyRef) bool {
	// A stat failure other than "not exist" cannot confirm the key; it is
	// reported as absent since this API carries no error.
	if exists, err := fileExists(ks.keyFilePath(ref.KeyType, ref.Public)); err == nil && exists {
		return true
	}
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	hexPub := hex.EncodeToString(ref.Public)
	for r := range ks.ephemeral {
		if r.keyType == ref.KeyType && r.public == hexPub {
			return true
		}
	}
	return false
}

// SignWith signs msg with the key identified by keyType and the
// scheme-tagged public key.
func (ks *LocalKeystore) SignWith(keyType types.KeyTypeID, key crypto.CryptoTypePublicPair, msg []byte) ([]byte, error) {
	pair, err := ks.lookupPair(key.Scheme, key.Public, &keyType)
	if err != nil {
		return nil, err
	}
	sig, err := pair.Sign(msg)
	if err != nil {
		return nil, err
	}
	ks.metrics.KeystoreSignCounter.WithLabelValues(string(key.Scheme)).Inc()
	return sig, nil
}

// VRFSign produces a VRF output and proof for the transcript under the
// sr25519 key identified by keyType and public.
func (ks *LocalKeystore) VRFSign(keyType types.KeyTypeID, public []byte, data types.VRFTranscriptData) (*types.VRFSignature, error) {
	pair, err := ks.lookupPair(crypto.Sr25519, public, &keyType)
	if err != nil {
		return nil, err
	}
	signer, ok := pair.(crypto.VRFSigner)
	if !ok {
		return nil, fmt.Errorf("%w: %s keys cannot produce VRF outputs", types.ErrKeyNotSupported, pair.Scheme())
	}
	sig, err := signer.VRFSign(data)
	if err != nil {
		return nil, err
	}
	ks.metrics.KeystoreVrfSignCounter.Inc()
	return sig, nil
}

// Close releases the password material. The store must not be used after.
func (ks *LocalKeystore) Close() error {
	if ks.password != nil {
		ks.password.Zeroize()
	}
	return nil
}
