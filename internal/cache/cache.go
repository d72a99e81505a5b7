// Package cache stores rendered validation reports so that repeated batch
// runs skip documents that have not changed. Keys bind the document file to
// the rule set: touching the file or editing the config invalidates the
// entry.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Store is a byte-oriented cache layer.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ReportKey derives the cache key for one work product file under one rule
// config. mtime and size stand in for a content hash; cheap and good enough
// for a gate that re-runs on change.
func ReportKey(path string, mtime time.Time, size int64, configFingerprint string) string {
	raw := fmt.Sprintf("%s|%d|%d|%s", path, mtime.UnixNano(), size, configFingerprint)
	sum := sha256.Sum256([]byte(raw))
	return "factgate:v1:" + hex.EncodeToString(sum[:])
}
