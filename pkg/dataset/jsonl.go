package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/PeterZhouSZ/string2shape/pkg/observability"
)

// FileStore appends records as JSON lines to a single file. Safe for
// concurrent Put calls within one process.
type FileStore struct {
	mu sync.Mutex
	f  *os.File
	w  *bufio.Writer
}

// NewFileStore opens (or creates) a JSONL file for appending.
func NewFileStore(path string) (*FileStore, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileStore{f: f, w: bufio.NewWriter(f)}, nil
}

// Put appends one record as a JSON line.
func (s *FileStore) Put(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		observability.Dataset().OnRecordError(ctx, "jsonl", err)
		return err
	}
	observability.Dataset().OnRecordWrite(ctx, "jsonl", len(data))
	return nil
}

// Close flushes buffered lines and closes the file.
func (s *FileStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		_ = s.f.Close()
		return err
	}
	return s.f.Close()
}

// ReadAll decodes every record in a JSONL file, for tooling and tests.
func ReadAll(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var recs []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, sc.Err()
}

var _ Store = (*FileStore)(nil)
