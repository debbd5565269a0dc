// Package cache provides a layered memory/disk cache for research API and
// LLM responses, so repeated batch runs do not re-fetch identical queries.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the caching interface
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a namespaced cache key from a request identity string
// (URL, or provider/model/prompt tuple)
func Key(identity string) string {
	hash := sha256.Sum256([]byte(identity))
	return "medlens:v1:" + hex.EncodeToString(hash[:])
}
