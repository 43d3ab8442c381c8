package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a namespaced cache key: an artifact-kind prefix
// ("collision" or "variation", which also selects the file backend's
// subdirectory) followed by the SHA-256 of the JSON-encoded components.
// Components are the object content hash(es) plus every option that changes
// the result, so two encodings of the same file with different epsilon or
// grid resolution never share an entry.
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes the SHA-256 content hash of an object file's bytes as a
// 64-character hex string. The pipeline also folds this hash into its RNG
// seeds, so cached and freshly computed encodings of one file agree.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
