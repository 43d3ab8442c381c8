package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeterZhouSZ/string2shape/pkg/cache"
	"github.com/PeterZhouSZ/string2shape/pkg/config"
	"github.com/PeterZhouSZ/string2shape/pkg/errors"
	"github.com/PeterZhouSZ/string2shape/pkg/observability"
	"github.com/PeterZhouSZ/string2shape/pkg/wfobject"
)

// writeCubeChain writes an OBJ file with unit cubes at the given x offsets,
// one group per cube, materials naming the part types.
func writeCubeChain(t *testing.T, path string, cubes []struct {
	mat string
	x   float32
}) {
	t.Helper()
	var sb strings.Builder
	base := 0
	for i, c := range cubes {
		for _, d := range [][3]float32{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
			{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
		} {
			fmt.Fprintf(&sb, "v %g %g %g\n", c.x+d[0], d[1], d[2])
		}
		fmt.Fprintf(&sb, "g cube_%d\nusemtl %s\n", i, c.mat)
		quads := [][4]int{
			{1, 2, 3, 4}, {5, 8, 7, 6}, {1, 5, 6, 2},
			{2, 6, 7, 3}, {3, 7, 8, 4}, {4, 8, 5, 1},
		}
		for _, q := range quads {
			fmt.Fprintf(&sb, "f %d %d %d\n", base+q[0], base+q[1], base+q[2])
			fmt.Fprintf(&sb, "f %d %d %d\n", base+q[0], base+q[2], base+q[3])
		}
		base += 8
	}
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
}

func chain(mats []string, xs []float32) []struct {
	mat string
	x   float32
} {
	out := make([]struct {
		mat string
		x   float32
	}, len(mats))
	for i := range mats {
		out[i] = struct {
			mat string
			x   float32
		}{mats[i], xs[i]}
	}
	return out
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	return NewRunner(config.Default(), nil, nil, nil)
}

func TestToCollisionString(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.obj")
	writeCubeChain(t, path, chain([]string{"a", "b", "a"}, []float32{0, 1, 2}))

	r := newTestRunner(t)
	defer r.Close()

	s, err := r.ToCollisionString(context.Background(), path)
	require.NoError(t, err)
	assert.NotEmpty(t, s)
	assert.NotContains(t, s, "\n", "result is a single line")
	assert.Equal(t, s, r.LastResult())

	// Deterministic per input: same file, same string.
	s2, err := r.ToCollisionString(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, s, s2)
}

func TestToCollisionStringsSampleCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.obj")
	writeCubeChain(t, path, chain([]string{"a", "b", "a"}, []float32{0, 1, 2}))

	r := newTestRunner(t)
	defer r.Close()

	text, err := r.ToCollisionStrings(context.Background(), path, false)
	require.NoError(t, err)
	assert.Len(t, strings.Split(text, "\n"), 1+resamples)
	assert.False(t, strings.HasSuffix(text, "\n"), "trailing line break is stripped")

	withIDs, err := r.ToCollisionStrings(context.Background(), path, true)
	require.NoError(t, err)
	lines := strings.Split(withIDs, "\n")
	assert.Len(t, lines, 2*(1+resamples))
	// Annotation lines hold space-separated node ids.
	for _, l := range lines[1+resamples:] {
		assert.Regexp(t, `^\d+( \d+)*$`, l)
	}
}

func TestToCollisionStringsDisconnected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "split.obj")
	writeCubeChain(t, path, chain([]string{"a", "a"}, []float32{0, 5}))

	r := newTestRunner(t)
	defer r.Close()

	text, err := r.ToCollisionStrings(context.Background(), path, false)
	require.NoError(t, err)
	assert.Empty(t, text, "disconnected graphs yield empty text")
}

func TestCollisionStringCaching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.obj")
	writeCubeChain(t, path, chain([]string{"a", "b"}, []float32{0, 1}))

	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	require.NoError(t, err)
	r := NewRunner(config.Default(), fc, nil, nil)
	defer r.Close()

	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	s1, err := r.ToCollisionStrings(context.Background(), path, false)
	require.NoError(t, err)
	assert.EqualValues(t, 0, hooks.hits.Load())
	assert.EqualValues(t, 1, hooks.misses.Load())

	s2, err := r.ToCollisionStrings(context.Background(), path, false)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
	assert.EqualValues(t, 1, hooks.hits.Load())
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits   atomic.Int64
	misses atomic.Int64
}

func (h *countingCacheHooks) OnCacheHit(_ context.Context, _ string)  { h.hits.Add(1) }
func (h *countingCacheHooks) OnCacheMiss(_ context.Context, _ string) { h.misses.Add(1) }

func TestGenerateVariations(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "a.obj")
	fileB := filepath.Join(dir, "b.obj")
	writeCubeChain(t, fileA, chain([]string{"a", "a", "a"}, []float32{0, 1, 2}))
	writeCubeChain(t, fileB, chain([]string{"a", "a", "a"}, []float32{0, 1, 2}))

	cfg := config.Default()
	cfg.Variation.Count = 2
	cfg.Variation.Seed1, cfg.Variation.Seed2 = 5, 9
	r := NewRunner(cfg, nil, nil, nil)
	defer r.Close()

	text, err := r.GenerateVariations(context.Background(), fileA, fileB)
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.Equal(t, text, r.LastResult())

	// Generated objects land next to the first exemplar.
	matches, err := filepath.Glob(filepath.Join(dir, "*_variation.obj"))
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
}

func TestRepairRestoresContact(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "a.obj")
	fileB := filepath.Join(dir, "b.obj")
	fileT := filepath.Join(dir, "target.obj")
	writeCubeChain(t, fileA, chain([]string{"a", "b"}, []float32{0, 1}))
	writeCubeChain(t, fileB, chain([]string{"a", "b"}, []float32{0, 1}))
	// Second part drifted by 0.01: within the variation epsilon, outside
	// strict contact.
	writeCubeChain(t, fileT, chain([]string{"a", "b"}, []float32{0, 1.01}))

	r := newTestRunner(t)
	defer r.Close()

	status, err := r.Repair(context.Background(), fileA, fileB, fileT, "target_fixed.obj~")
	require.NoError(t, err)
	assert.Equal(t, RepairOK, status)

	out := filepath.Join(dir, "target_fixed")
	repaired, err := wfobject.Load(out)
	require.NoError(t, err)
	require.Equal(t, 2, repaired.NumParts())
	d := repaired.PartCentroid(1).Sub(repaired.PartCentroid(0))
	assert.InDelta(t, 1, d.X, 1e-3, "contact must be restored")
}

func TestRepairInvalidGrammar(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "a.obj")
	fileB := filepath.Join(dir, "b.obj")
	fileT := filepath.Join(dir, "target.obj")
	writeCubeChain(t, fileA, chain([]string{"a", "b"}, []float32{0, 1}))
	writeCubeChain(t, fileB, chain([]string{"a", "b"}, []float32{0, 1}))
	// Two touching same-type parts: the (a,a) pair was never induced.
	writeCubeChain(t, fileT, chain([]string{"a", "a"}, []float32{0, 1}))

	r := newTestRunner(t)
	defer r.Close()

	status, err := r.Repair(context.Background(), fileA, fileB, fileT, "t_out.obj~")
	require.Error(t, err)
	assert.Equal(t, RepairInvalid, status)
	assert.Equal(t, errors.ErrCodeGrammarViolation, errors.GetCode(err))
	_, statErr := os.Stat(filepath.Join(dir, "t_out"))
	assert.True(t, os.IsNotExist(statErr), "no output on grammar violation")
}

func TestRepairExhaustionFails(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "a.obj")
	fileB := filepath.Join(dir, "b.obj")
	fileT := filepath.Join(dir, "target.obj")
	writeCubeChain(t, fileA, chain([]string{"a", "a"}, []float32{0, 1}))
	writeCubeChain(t, fileB, chain([]string{"a", "a"}, []float32{0, 1}))
	// Overlapping cubes produce a contact triangle that cannot satisfy
	// the one-apart template on a line, so passes oscillate to the cap.
	writeCubeChain(t, fileT, chain([]string{"a", "a", "a"}, []float32{0, 0.5, 1}))

	r := newTestRunner(t)
	defer r.Close()

	status, err := r.Repair(context.Background(), fileA, fileB, fileT, "t_out.obj~")
	require.Error(t, err)
	assert.Equal(t, RepairFailed, status)
	assert.Equal(t, errors.ErrCodeRepairExhausted, errors.GetCode(err))
}

func TestRepairConvergedButStillInvalidFails(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "a.obj")
	fileB := filepath.Join(dir, "b.obj")
	fileT := filepath.Join(dir, "target.obj")
	writeCubeChain(t, fileA, chain([]string{"a", "b"}, []float32{0, 1}))
	writeCubeChain(t, fileB, chain([]string{"a", "b"}, []float32{0, 1}))
	// The b-a template puts the third cube one unit before the second, on
	// top of the first cube. Repair converges there, but the strict graph
	// then carries an a-a contact no rule allows.
	writeCubeChain(t, fileT, chain([]string{"a", "b", "a"}, []float32{0, 1, 1.5}))

	r := newTestRunner(t)
	defer r.Close()

	status, err := r.Repair(context.Background(), fileA, fileB, fileT, "t_out.obj~")
	require.Error(t, err)
	assert.Equal(t, RepairFailed, status)
	assert.Equal(t, errors.ErrCodeRepairInvalid, errors.GetCode(err))
	_, statErr := os.Stat(filepath.Join(dir, "t_out"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGraphTextToObject(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "a.obj")
	fileB := filepath.Join(dir, "b.obj")
	writeCubeChain(t, fileA, chain([]string{"a", "b", "a"}, []float32{0, 1, 2}))
	writeCubeChain(t, fileB, chain([]string{"a", "b", "a"}, []float32{0, 1, 2}))

	text := strings.Join([]string{
		"0 1", "1 2", "-1 -1", // exemplar A labels
		"0 1", "1 2", "-1 -1", // exemplar B labels
		"0 1", "1 2", "-1 -1", // target graph definition
	}, "\n")

	out := filepath.Join(dir, "materialized.obj")
	r := newTestRunner(t)
	defer r.Close()

	status, err := r.GraphTextToObject(context.Background(), fileA, fileB, text, out)
	require.NoError(t, err)
	assert.Equal(t, MaterializeOK, status)

	o, err := wfobject.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 3, o.NumParts())
}

func TestGraphTextToObjectBadText(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "a.obj")
	writeCubeChain(t, fileA, chain([]string{"a", "b"}, []float32{0, 1}))

	r := newTestRunner(t)
	defer r.Close()

	status, err := r.GraphTextToObject(context.Background(), fileA, fileA, "not nine lines", filepath.Join(dir, "x.obj"))
	require.Error(t, err)
	assert.Equal(t, MaterializeFailed, status)
}

func TestRepairOutputPath(t *testing.T) {
	got, err := repairOutputPath(filepath.Join("objs", "target.obj"), "result_fixed.obj~")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("objs", "result_fixed"), got)

	got, err = repairOutputPath(filepath.Join("objs", "t.obj"), "ab.obj~")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("objs", "ab"), got)

	// Basenames of five characters or fewer cannot carry the suffix.
	for _, bad := range []string{"abc", ".obj~", ""} {
		_, err = repairOutputPath(filepath.Join("objs", "t.obj"), bad)
		require.Error(t, err, "name %q", bad)
		assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
	}
}

func TestBuildGrid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.obj")
	writeCubeChain(t, path, chain([]string{"a", "b"}, []float32{0, 1}))

	r := newTestRunner(t)
	defer r.Close()

	stats, err := r.BuildGrid(context.Background(), path, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Parts)
	assert.Positive(t, stats.Cells)
	assert.True(t, stats.Verified)

	// Explicit resolutions override the configured grid.
	coarse, err := r.BuildGrid(context.Background(), path, 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, coarse.Cells)
	assert.True(t, coarse.Verified)
}
