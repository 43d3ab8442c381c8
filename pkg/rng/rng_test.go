package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCoverage samples each seeded generator 10,000 times and checks that
// every one of the eight equal-width sub-intervals of [0,1] receives at
// least one sample, across 500 independent seed trials, and that no sample
// ever leaves [0,1].
func TestCoverage(t *testing.T) {
	const (
		trials  = 500
		samples = 10000
		buckets = 8
	)
	for trial := 0; trial < trials; trial++ {
		u := New(uint32(trial*2654435761+1), uint32(trial*40503+17))
		var hit [buckets]bool
		for i := 0; i < samples; i++ {
			x := u.Float32()
			require.GreaterOrEqual(t, x, float32(0), "trial %d", trial)
			require.Less(t, x, float32(1)+1e-6, "trial %d", trial)
			b := int(x * buckets)
			if b >= buckets {
				b = buckets - 1
			}
			hit[b] = true
		}
		for b := 0; b < buckets; b++ {
			require.True(t, hit[b], "trial %d: bucket %d never hit", trial, b)
		}
	}
}

func TestDeterminism(t *testing.T) {
	a := New(12345, 67890)
	b := New(12345, 67890)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Float32(), b.Float32())
	}
}

func TestSeedsDiverge(t *testing.T) {
	a := New(1, 2)
	b := New(2, 1)
	same := 0
	for i := 0; i < 100; i++ {
		if a.Float32() == b.Float32() {
			same++
		}
	}
	assert.Less(t, same, 5)
}

func TestIntnRange(t *testing.T) {
	u := New(7, 7)
	for i := 0; i < 1000; i++ {
		n := u.Intn(13)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 13)
	}
}

func TestPermIsPermutation(t *testing.T) {
	u := New(99, 100)
	p := u.Perm(20)
	seen := make(map[int]bool)
	for _, v := range p {
		require.False(t, seen[v])
		seen[v] = true
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 20)
	}
	require.Len(t, seen, 20)
}
