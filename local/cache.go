package local

import (
	"encoding/hex"
	"sync"

	"github.com/meridianchain/keystore/crypto"
)

// keyCache is the in-memory view of loaded keypairs, keyed by scheme and
// public key. Entries are never evicted; the population is bounded by the
// number of distinct keys a store instance ever touches, which is small.
type keyCache struct {
	mu    sync.RWMutex
	pairs map[cacheKey]crypto.KeyPair
}

type cacheKey struct {
	scheme crypto.Scheme
	public string // lowercase hex, comparable
}

func newKeyCache() *keyCache {
	return &keyCache{pairs: make(map[cacheKey]crypto.KeyPair)}
}

func newCacheKey(scheme crypto.Scheme, public []byte) cacheKey {
	return cacheKey{scheme: scheme, public: hex.EncodeToString(public)}
}

func (c *keyCache) get(scheme crypto.Scheme, public []byte) (crypto.KeyPair, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pair, ok := c.pairs[newCacheKey(scheme, public)]
	return pair, ok
}

func (c *keyCache) put(scheme crypto.Scheme, public []byte, pair crypto.KeyPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pairs[newCacheKey(scheme, public)] = pair
}

// publicKeys returns the raw public keys cached for one scheme.
func (c *keyCache) publicKeys(scheme crypto.Scheme) [][]byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([][]byte, 0, len(c.pairs))
	for k := range c.pairs {
		if k.scheme != scheme {
			continue
		}
		pub, err := hex.DecodeString(k.public)
		if err != nil {
			continue
		}
		out = append(out, pub)
	}
	return out
}
