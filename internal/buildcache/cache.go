// Package buildcache records what the last successful generation was built
// from, so an unchanged document can skip regeneration.
//
// The cache is conservative: any mismatch regenerates everything. It lives
// inside the output directory, so removing that directory also removes the
// cache.
package buildcache

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/zeebo/xxh3"
)

// SchemaVersion is bumped when the cache format or the generated output
// changes shape. A mismatch forces a rebuild.
const SchemaVersion = 1

// FileName is the cache file inside the output directory.
const FileName = ".mortar-cache"

// Cache represents the on-disk generation cache.
type Cache struct {
	V int `json:"v"`

	// Fingerprint covers the document bytes and every generation setting.
	Fingerprint string `json:"fingerprint"`

	// Outputs lists files that must still exist for the cache to hold.
	Outputs []string `json:"outputs"`
}

// CachePath returns the cache file path inside outDir.
func CachePath(outDir string) string {
	return filepath.Join(outDir, FileName)
}

// Load reads a cache file. It returns nil when the file is missing or
// unreadable; callers treat nil as a miss.
func Load(path string) *Cache {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil
	}
	return &c
}

// Save writes the cache atomically (temp file, then rename).
func Save(path string, cache *Cache) error {
	data, err := json.Marshal(cache, jsontext.Multiline(true))
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}

// Delete removes the cache file. Errors are ignored.
func Delete(path string) {
	os.Remove(path)
}

// IsValid reports whether generation can be skipped: the schema version and
// fingerprint match and every recorded output still exists.
func (c *Cache) IsValid(fingerprint string) bool {
	if c == nil {
		return false
	}
	if c.V != SchemaVersion {
		return false
	}
	if c.Fingerprint != fingerprint {
		return false
	}
	for _, path := range c.Outputs {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}

// Fingerprint hashes the document together with the settings that shape the
// output. settings is encoded as JSON, so any serializable value works.
func Fingerprint(document []byte, settings any) (string, error) {
	encoded, err := json.Marshal(settings, json.Deterministic(true))
	if err != nil {
		return "", fmt.Errorf("encoding settings: %w", err)
	}
	h := xxh3.New()
	h.Write([]byte(strconv.Itoa(len(document))))
	h.Write([]byte{0})
	h.Write(document)
	h.Write(encoded)
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// HashFile returns the xxh3 digest of a file, or "" when it cannot be read.
func HashFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

// New creates a cache entry with the current schema version.
func New(fingerprint string, outputs []string) *Cache {
	return &Cache{
		V:           SchemaVersion,
		Fingerprint: fingerprint,
		Outputs:     outputs,
	}
}
