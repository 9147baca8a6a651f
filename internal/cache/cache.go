package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching raw detector responses
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// keyVersion changes whenever prompts or parsing change incompatibly
const keyVersion = "v1"

// DetectionKey builds the cache key for one detector call. Any change to the
// provider, model, pass or chunk text yields a different key.
func DetectionKey(provider, model, pass, text string) string {
	hash := sha256.New()
	for _, part := range []string{provider, model, pass} {
		hash.Write([]byte(strings.ToLower(part)))
		hash.Write([]byte{0})
	}
	hash.Write([]byte(text))
	return "neutralizer:" + keyVersion + ":" + hex.EncodeToString(hash.Sum(nil))
}

// RewriteKey builds the cache key for a neutral rewrite of text
func RewriteKey(provider, model, text string) string {
	return DetectionKey(provider, model, "rewrite", text)
}

// New builds the cache described by enabled/dir/TTLs. A disabled cache is a
// no-op; an empty dir keeps entries in memory only.
func New(enabled bool, dir string, memoryTTL, diskTTL time.Duration) Cache {
	switch {
	case !enabled:
		return Nop{}
	case dir == "":
		return NewMemoryCache(memoryTTL, 10*time.Minute)
	default:
		return NewLayeredCache(memoryTTL, dir, diskTTL)
	}
}

// Nop is a cache that stores nothing
type Nop struct{}

func (Nop) Get(string) ([]byte, bool) { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error { return nil }
func (Nop) Clear() error { return nil }
