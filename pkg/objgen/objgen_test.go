package objgen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeterZhouSZ/string2shape/pkg/errors"
	"github.com/PeterZhouSZ/string2shape/pkg/graph"
	"github.com/PeterZhouSZ/string2shape/pkg/wfobject"
)

// triObject builds one single-triangle part per entry at the given x offset.
func triObject(t *testing.T, parts []struct {
	mat string
	x   float32
}) *wfobject.Object {
	t.Helper()
	var sb strings.Builder
	for i, p := range parts {
		fmt.Fprintf(&sb, "v %g 0 0\nv %g 1 0\nv %g 0 1\n", p.x, p.x, p.x)
		base := i * 3
		fmt.Fprintf(&sb, "g p%d\nusemtl %s\nf %d %d %d\n", i, p.mat, base+1, base+2, base+3)
	}
	o, err := wfobject.Read(strings.NewReader(sb.String()))
	require.NoError(t, err)
	return o
}

func chainExemplar(t *testing.T, mats []string, labels []graph.Label) Exemplar {
	t.Helper()
	specs := make([]struct {
		mat string
		x   float32
	}, len(mats))
	for i, m := range mats {
		specs[i] = struct {
			mat string
			x   float32
		}{m, float32(i)}
	}
	edges := make([]graph.Edge, len(mats)-1)
	for i := range edges {
		edges[i] = graph.Edge{U: int32(i), V: int32(i + 1)}
	}
	g, err := graph.FromEdges(len(mats), edges)
	require.NoError(t, err)
	return Exemplar{Object: triObject(t, specs), Graph: g, Labels: labels}
}

func TestMaterializeTwoNodeChain(t *testing.T) {
	ex := chainExemplar(t, []string{"a", "b"}, nil)
	target, err := graph.FromEdges(2, []graph.Edge{{U: 0, V: 1}})
	require.NoError(t, err)

	out, err := Materialize(ex, ex, target, nil)
	require.NoError(t, err)
	require.Equal(t, 2, out.NumParts())
	require.NoError(t, out.Validate())

	// The two parts must sit one unit apart in x, as in the exemplar.
	d := out.PartCentroid(1).Sub(out.PartCentroid(0))
	assert.InDelta(t, 1, d.X, 1e-4)
	assert.InDelta(t, 0, d.Y, 1e-4)
	assert.InDelta(t, 0, d.Z, 1e-4)
}

func TestMaterializeDeterministic(t *testing.T) {
	ex := chainExemplar(t, []string{"a", "b", "a"}, nil)
	target, err := graph.FromEdges(3, []graph.Edge{{U: 0, V: 1}, {U: 1, V: 2}})
	require.NoError(t, err)

	o1, err := Materialize(ex, ex, target, nil)
	require.NoError(t, err)
	o2, err := Materialize(ex, ex, target, nil)
	require.NoError(t, err)
	assert.Equal(t, o1.Vertices, o2.Vertices)
	assert.Equal(t, o1.Faces, o2.Faces)
}

func TestDonorSelectionByLabel(t *testing.T) {
	ex1 := chainExemplar(t, []string{"a", "b"}, []graph.Label{graph.KnownLabel(7)})
	ex2 := chainExemplar(t, []string{"c", "d"}, []graph.Label{graph.KnownLabel(9)})
	target, err := graph.FromEdges(2, []graph.Edge{{U: 0, V: 1}})
	require.NoError(t, err)

	// The target edge is labeled 9, so only exemplar two's parts qualify.
	out, err := Materialize(ex1, ex2, target, []graph.Label{graph.KnownLabel(9)})
	require.NoError(t, err)
	require.Equal(t, 2, out.NumParts())
	names := make([]string, 0, len(out.Materials))
	for _, m := range out.Materials {
		names = append(names, m.Name)
	}
	assert.ElementsMatch(t, []string{"c", "d"}, names)
}

func TestUnknownTargetLabelsMatchAnything(t *testing.T) {
	ex1 := chainExemplar(t, []string{"a", "b"}, []graph.Label{graph.KnownLabel(7)})
	ex2 := chainExemplar(t, []string{"c", "d"}, []graph.Label{graph.KnownLabel(9)})
	target, err := graph.FromEdges(2, []graph.Edge{{U: 0, V: 1}})
	require.NoError(t, err)

	// Unknown labels constrain nothing, so exemplar one wins the scan.
	out, err := Materialize(ex1, ex2, target, []graph.Label{{}})
	require.NoError(t, err)
	assert.Equal(t, "a", out.Materials[out.Faces[out.Parts[0].FaceStart].Material].Name)
}

func TestMaterializeNoDonor(t *testing.T) {
	ex1 := chainExemplar(t, []string{"a", "b"}, []graph.Label{graph.KnownLabel(7)})
	ex2 := chainExemplar(t, []string{"c", "d"}, []graph.Label{graph.KnownLabel(9)})
	target, err := graph.FromEdges(2, []graph.Edge{{U: 0, V: 1}})
	require.NoError(t, err)

	out, err := Materialize(ex1, ex2, target, []graph.Label{graph.KnownLabel(99)})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNoDonor, errors.GetCode(err))
	assert.Zero(t, out.NumParts(), "failure must yield an empty object")
}

func TestMaterializeEmptyTarget(t *testing.T) {
	ex := chainExemplar(t, []string{"a", "b"}, nil)
	target, err := graph.FromEdges(0, nil)
	require.NoError(t, err)

	out, err := Materialize(ex, ex, target, nil)
	require.NoError(t, err)
	assert.Zero(t, out.NumParts())
}

func TestMaterializeDisconnectedTarget(t *testing.T) {
	ex := chainExemplar(t, []string{"a", "b"}, nil)
	target, err := graph.FromEdges(4, []graph.Edge{{U: 0, V: 1}, {U: 2, V: 3}})
	require.NoError(t, err)

	_, err = Materialize(ex, ex, target, nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDisconnected, errors.GetCode(err))
}

func TestContextMatches(t *testing.T) {
	k := graph.KnownLabel
	assert.True(t, contextMatches(nil, nil))
	assert.True(t, contextMatches([]graph.Label{{}}, nil))
	assert.True(t, contextMatches([]graph.Label{k(3)}, []graph.Label{k(3)}))
	assert.True(t, contextMatches([]graph.Label{k(3)}, []graph.Label{{}}))
	assert.False(t, contextMatches([]graph.Label{k(3)}, []graph.Label{k(4)}))
	assert.False(t, contextMatches([]graph.Label{k(3), k(3)}, []graph.Label{k(3)}))
	assert.True(t, contextMatches([]graph.Label{k(3), k(3)}, []graph.Label{k(3), {}}))
}
