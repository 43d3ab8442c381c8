package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "structures.jsonl")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	r1 := NewRecord("wales.obj", "AAB(A)1")
	r1.Epsilon = 0.01
	r2 := NewRecord("playground.obj", "CC.D")
	require.NoError(t, s.Put(ctx, r1))
	require.NoError(t, s.Put(ctx, r2))
	require.NoError(t, s.Close(ctx))

	recs, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, r1.ID, recs[0].ID)
	assert.Equal(t, "AAB(A)1", recs[0].Encoded)
	assert.InDelta(t, 0.01, recs[0].Epsilon, 1e-6)
	assert.Equal(t, "playground.obj", recs[1].Source)
	assert.NotEqual(t, recs[0].ID, recs[1].ID)
}

func TestFileStoreAppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "structures.jsonl")
	ctx := context.Background()

	s1, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.Put(ctx, NewRecord("a.obj", "A")))
	require.NoError(t, s1.Close(ctx))

	s2, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s2.Put(ctx, NewRecord("b.obj", "B")))
	require.NoError(t, s2.Close(ctx))

	recs, err := ReadAll(path)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestScanSkipsDerivedFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"wales.obj",
		"playground.obj",
		"wales_coll_graph.obj", // derived export, skipped
		"notes.txt",            // not an object
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("v 0 0 0\n"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.obj"), 0o755))

	files, err := Scan(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "playground.obj"),
		filepath.Join(dir, "wales.obj"),
	}, files)
}
