// Package cache stores computed preview results so that re-evaluating an
// unchanged graph is free. Entries are content-addressed: keys hash the
// serialized graph plus every evaluation parameter, so a stale entry can
// never be returned for edited inputs, only missed.
//
// Backends: file (CLI default), Redis and MongoDB (shared deployments), and
// null (caching disabled). The interpreter itself never touches the cache;
// the CLI and API wrap it.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is the backend interface. Get reports (data, found, error): a miss
// is not an error, and backends treat corrupt entries as misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// DefaultTTL is how long preview results stay valid. Content addressing
// makes longer TTLs safe; the TTL only bounds storage growth.
const DefaultTTL = 7 * 24 * time.Hour

// EvalKeyOpts are the evaluation parameters participating in an eval key.
type EvalKeyOpts struct {
	MinX float64
	MaxX float64
	MinZ float64
	MaxZ float64
	Seed uint64
	Root string
}

// EvalKey builds the cache key for an interpreter result.
// graphHash is the content hash of the serialized graph (see Hash).
func EvalKey(graphHash string, opts EvalKeyOpts) string {
	return hashKey("eval", graphHash, opts)
}

// GraphKey builds the cache key for a lowered graph document.
func GraphKey(treeHash, prefix string) string {
	return hashKey("graph", treeHash, prefix)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 content hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
