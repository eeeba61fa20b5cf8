package local

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/meridianchain/keystore/types"
)

// dirEntry is one parsed keystore file: its key type tag, the raw public
// key recovered from the filename and the full path.
type dirEntry struct {
	keyType types.KeyTypeID
	public  []byte
	path    string
}

const keyTypeHexLen = 2 * types.KeyTypeIDLen

// keyFileName is hex(keyType) || hex(public), lowercase, no separator.
func keyFileName(keyType types.KeyTypeID, public []byte) string {
	return keyType.Hex() + hex.EncodeToString(public)
}

func (ks *LocalKeystore) keyFilePath(keyType types.KeyTypeID, public []byte) string {
	return filepath.Join(ks.dir, keyFileName(keyType, public))
}

// parseKeyFileName recovers (keyType, public) from a directory entry name.
// Names that are not lowercase hex with a full key type prefix and a
// non-empty public key belong to other tools and are skipped.
func parseKeyFileName(name string) (types.KeyTypeID, []byte, bool) {
	var id types.KeyTypeID
	if len(name) <= keyTypeHexLen || name != strings.ToLower(name) {
		return id, nil, false
	}
	raw, err := hex.DecodeString(name)
	if err != nil {
		return id, nil, false
	}
	copy(id[:], raw[:types.KeyTypeIDLen])
	return id, raw[types.KeyTypeIDLen:], true
}

// listEntries reads the store directory once and parses every conforming
// filename; non-conforming entries are discarded without aborting the
// listing. filter, when non-nil, restricts the result to one key type. The
// order is whatever the directory listing yields.
func (ks *LocalKeystore) listEntries(filter *types.KeyTypeID) ([]dirEntry, error) {
	files, err := os.ReadDir(ks.dir)
	if err != nil {
		return nil, err
	}
	entries := make([]dirEntry, 0, len(files))
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		keyType, public, ok := parseKeyFileName(f.Name())
		if !ok {
			continue
		}
		if filter != nil && keyType != *filter {
			continue
		}
		entries = append(entries, dirEntry{
			keyType: keyType,
			public:  public,
			path:    filepath.Join(ks.dir, f.Name()),
		})
	}
	return entries, nil
}

// writeKeyFile writes content to a temporary file in the store directory
// and renames it over the final path, so a concurrent reader never observes
// a partially written file. Temp names start with a dot and never parse as
// key entries.
func (ks *LocalKeystore) writeKeyFile(path string, content []byte) error {
	tmp, err := os.CreateTemp(ks.dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}
	if err := tmp.Chmod(0600); err != nil {
		cleanup()
		return err
	}
	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
