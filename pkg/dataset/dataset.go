// Package dataset persists encoded structure strings for training-set
// construction.
//
// A dataset run scans a folder of object files, computes the collision
// string of each, and appends one record per encoding to a store. Two
// backends exist: an append-only JSONL file for local runs and a MongoDB
// collection for shared corpora.
package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// derivedSuffix marks collision-graph exports living next to their source
// objects; they are never dataset inputs themselves.
const derivedSuffix = "_coll_graph.obj"

// Record is one encoded structure string with its provenance.
type Record struct {
	ID        string    `bson:"_id" json:"id"`
	Source    string    `bson:"source" json:"source"`
	Encoded   string    `bson:"encoded" json:"encoded"`
	NodeIDs   string    `bson:"node_ids,omitempty" json:"node_ids,omitempty"`
	Epsilon   float32   `bson:"epsilon" json:"epsilon"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// NewRecord creates a record with a fresh id and timestamp.
func NewRecord(source, encoded string) Record {
	return Record{
		ID:        uuid.New().String(),
		Source:    source,
		Encoded:   encoded,
		CreatedAt: time.Now().UTC(),
	}
}

// Store persists dataset records.
type Store interface {
	// Put appends one record.
	Put(ctx context.Context, rec Record) error

	// Close flushes and releases the backend.
	Close(ctx context.Context) error
}

// Scan lists the object files under dir, skipping derived collision-graph
// exports. The result is sorted by path so dataset runs are reproducible.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".obj") {
			continue
		}
		if strings.HasSuffix(name, derivedSuffix) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}
