// Package cache provides pluggable result caching for the collision
// pipeline.
//
// Collision-graph construction dominates the runtime of the string
// entry points, and its result depends only on the object file content,
// the contact epsilon, and the grid resolution. Backends store encoded
// results keyed by those inputs: a file cache for CLI usage, a Redis
// cache for service deployments, and a null cache to disable caching.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached artifact kind.
const (
	// TTLCollision applies to collision-string results. Object files are
	// content-hashed, so entries never go stale; the TTL only bounds disk
	// growth.
	TTLCollision = 30 * 24 * time.Hour

	// TTLVariation applies to variation results, which are stochastic and
	// only cached for short-lived replay.
	TTLVariation = 24 * time.Hour
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// CollisionKeyOpts are the inputs, besides the object content, that change a
// collision-graph result.
type CollisionKeyOpts struct {
	Epsilon          float32 `json:"epsilon"`
	ResX             int     `json:"res_x"`
	ResY             int     `json:"res_y"`
	ResZ             int     `json:"res_z"`
	Samples          int     `json:"samples"`
	AppendNodeIDs    bool    `json:"append_node_ids"`
}

// VariationKeyOpts are the inputs, besides the exemplar contents, that
// change a variation result.
type VariationKeyOpts struct {
	Epsilon float32 `json:"epsilon"`
	Count   int     `json:"count"`
	Seed1   uint32  `json:"seed1"`
	Seed2   uint32  `json:"seed2"`
}

// Keyer generates cache keys for pipeline artifacts.
type Keyer interface {
	// CollisionKey keys a collision-string result by the object content
	// hash and detection parameters.
	CollisionKey(objHash string, opts CollisionKeyOpts) string

	// VariationKey keys a variation result by both exemplar hashes and the
	// generation parameters.
	VariationKey(hashA, hashB string, opts VariationKeyOpts) string
}

// DefaultKeyer hashes all key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// CollisionKey generates a key for collision-string caching.
func (k *DefaultKeyer) CollisionKey(objHash string, opts CollisionKeyOpts) string {
	return hashKey("collision", objHash, opts)
}

// VariationKey generates a key for variation caching.
func (k *DefaultKeyer) VariationKey(hashA, hashB string, opts VariationKeyOpts) string {
	return hashKey("variation", hashA, hashB, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
