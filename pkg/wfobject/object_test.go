package wfobject

import (
	"bytes"
	"strings"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoPartOBJ = `# two touching boxes, collapsed to single triangles per side
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 1 0 0
v 2 0 0
v 2 1 0
v 1 1 0
g left
usemtl a
f 1 2 3
f 1 3 4
g right
usemtl b
f 5 6 7
f 5 7 8
`

func TestReadPartsAndTypes(t *testing.T) {
	o, err := Read(strings.NewReader(twoPartOBJ))
	require.NoError(t, err)

	assert.Equal(t, 2, o.NumParts())
	assert.Len(t, o.Vertices, 8)
	assert.Len(t, o.Faces, 4)
	require.Len(t, o.Materials, 2)
	assert.Equal(t, "a", o.Materials[0].Name)
	assert.Equal(t, "b", o.Materials[1].Name)
	assert.Equal(t, []int{0, 1}, o.PartTypes())

	assert.Equal(t, []int{0, 1, 2, 3}, o.PartVertices(0))
	assert.Equal(t, []int{4, 5, 6, 7}, o.PartVertices(1))
}

func TestReadQuadTriangulation(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
usemtl m
f 1 2 3 4
`
	o, err := Read(strings.NewReader(src))
	require.NoError(t, err)

	// One quad fans into two triangles sharing the first vertex.
	require.Len(t, o.Faces, 2)
	assert.Equal(t, [3]int{0, 1, 2}, o.Faces[0].Verts)
	assert.Equal(t, [3]int{0, 2, 3}, o.Faces[1].Verts)
	assert.Equal(t, 1, o.NumParts())
}

func TestReadNegativeIndices(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
usemtl m
f -3 -2 -1
`
	o, err := Read(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, o.Faces, 1)
	assert.Equal(t, [3]int{0, 1, 2}, o.Faces[0].Verts)
}

func TestReadTextureNormalIndices(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
usemtl m
f 1/1 2/2/2 3//3
`
	o, err := Read(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, o.Faces, 1)
	assert.Equal(t, [3]int{0, 1, 2}, o.Faces[0].Verts)
}

func TestReadDefaultMaterial(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`
	o, err := Read(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, o.Materials, 1)
	assert.Equal(t, "default", o.Materials[0].Name)
}

func TestReadErrors(t *testing.T) {
	cases := map[string]string{
		"no faces":           "v 0 0 0\n",
		"index out of range": "v 0 0 0\nusemtl m\nf 1 2 3\n",
		"bad coordinate":     "v x 0 0\n",
		"short face":         "v 0 0 0\nv 1 0 0\nusemtl m\nf 1 2\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	o, err := Read(strings.NewReader(twoPartOBJ))
	require.NoError(t, err)
	o.MtlLib = "parts.mtl"

	var buf bytes.Buffer
	require.NoError(t, o.Write(&buf))

	back, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, o.NumParts(), back.NumParts())
	assert.Equal(t, o.PartTypes(), back.PartTypes())
	assert.Equal(t, o.Vertices, back.Vertices)
	assert.Equal(t, "parts.mtl", back.MtlLib)
	for i := range o.Faces {
		assert.Equal(t, o.Faces[i].Verts, back.Faces[i].Verts)
	}
}

func TestNewObjectBuildsParts(t *testing.T) {
	verts := []math32.Vector3{
		math32.Vec3(0, 0, 0), math32.Vec3(1, 0, 0), math32.Vec3(0, 1, 0),
		math32.Vec3(2, 0, 0), math32.Vec3(3, 0, 0), math32.Vec3(2, 1, 0),
	}
	faces := []Face{
		{Verts: [3]int{0, 1, 2}, Material: 0, Group: 0},
		{Verts: [3]int{3, 4, 5}, Material: 1, Group: 1},
	}
	mats := []Material{{Name: "a"}, {Name: "b"}}

	o := NewObject(verts, faces, mats)
	require.NoError(t, o.Validate())
	assert.Equal(t, 2, o.NumParts())
	assert.Equal(t, []int{0, 1}, o.PartTypes())
	assert.Equal(t, []int{3, 4, 5}, o.PartVertices(1))
}

func TestPartTypesSharedByMaterialName(t *testing.T) {
	first := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 2 0 0\nv 3 0 0\nv 2 1 0\n" +
		"g p0\nusemtl steel\nf 1 2 3\ng p1\nusemtl glass\nf 4 5 6\n"
	second := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 2 0 0\nv 3 0 0\nv 2 1 0\n" +
		"g p0\nusemtl glass\nf 1 2 3\ng p1\nusemtl wood\nf 4 5 6\n"

	o1, err := Read(strings.NewReader(first))
	require.NoError(t, err)
	o2, err := Read(strings.NewReader(second))
	require.NoError(t, err)

	// Shared names share one type id; distinct names never collide, even
	// though each file numbers its own materials from zero.
	assert.Equal(t, o1.Parts[1].Type, o2.Parts[0].Type, "glass is glass in both files")
	assert.NotEqual(t, o1.Parts[0].Type, o2.Parts[1].Type, "steel and wood stay distinct")
	assert.Equal(t, TypeOf("steel"), o1.Parts[0].Type)
	assert.Equal(t, "steel", TypeName(o1.Parts[0].Type))
	assert.Equal(t, "", TypeName(-1))
}

func TestPartBoundsAndCentroid(t *testing.T) {
	o, err := Read(strings.NewReader(twoPartOBJ))
	require.NoError(t, err)

	b := o.PartBounds(1)
	assert.InDelta(t, 1, b.Min.X, 1e-6)
	assert.InDelta(t, 2, b.Max.X, 1e-6)

	c := o.PartCentroid(1)
	assert.InDelta(t, 1.5, c.X, 1e-6)
	assert.InDelta(t, 0.5, c.Y, 1e-6)
}

func TestTransformPartTranslation(t *testing.T) {
	o, err := Read(strings.NewReader(twoPartOBJ))
	require.NoError(t, err)

	var q math32.Quat
	q.SetIdentity()
	o.TransformPart(1, q, math32.Vector3{}, math32.Vec3(0, 0, 3))

	// Only part 1 moves.
	assert.InDelta(t, 3, o.Vertices[4].Z, 1e-6)
	assert.InDelta(t, 0, o.Vertices[0].Z, 1e-6)
	assert.InDelta(t, 3, o.Parts[1].Pos.Z, 1e-6)
	assert.InDelta(t, 0, o.Parts[0].Pos.Z, 1e-6)
}

func TestTransformPartRotationAboutPivot(t *testing.T) {
	o, err := Read(strings.NewReader(twoPartOBJ))
	require.NoError(t, err)

	// Quarter turn about z, pivoting on the shared edge at x=1.
	q := math32.NewQuatAxisAngle(math32.Vec3(0, 0, 1), math32.Pi/2)
	pivot := math32.Vec3(1, 0, 0)
	o.TransformPart(1, q, pivot, math32.Vector3{})

	// Vertex (2,0,0) rotates to (1,1,0).
	assert.InDelta(t, 1, o.Vertices[5].X, 1e-5)
	assert.InDelta(t, 1, o.Vertices[5].Y, 1e-5)

	// Pose accumulates the rotation: x-axis maps to y-axis.
	rx := math32.Vec3(1, 0, 0).MulQuat(o.Parts[1].Quat)
	assert.InDelta(t, 0, rx.X, 1e-5)
	assert.InDelta(t, 1, rx.Y, 1e-5)
}

func TestTransformPartAccumulates(t *testing.T) {
	o, err := Read(strings.NewReader(twoPartOBJ))
	require.NoError(t, err)

	var q math32.Quat
	q.SetIdentity()
	o.TransformPart(1, q, math32.Vector3{}, math32.Vec3(1, 0, 0))
	o.TransformPart(1, q, math32.Vector3{}, math32.Vec3(1, 0, 0))

	assert.InDelta(t, 2, o.Parts[1].Pos.X, 1e-6)
	assert.InDelta(t, 3, o.Vertices[4].X, 1e-6)
}

func TestCloneIsIndependent(t *testing.T) {
	o, err := Read(strings.NewReader(twoPartOBJ))
	require.NoError(t, err)

	c := o.Clone()
	var q math32.Quat
	q.SetIdentity()
	c.TransformPart(0, q, math32.Vector3{}, math32.Vec3(0, 0, 9))

	assert.InDelta(t, 9, c.Vertices[0].Z, 1e-6)
	assert.InDelta(t, 0, o.Vertices[0].Z, 1e-6)
	assert.InDelta(t, 0, o.Parts[0].Pos.Z, 1e-6)
}

func TestValidateCatchesBadReferences(t *testing.T) {
	o, err := Read(strings.NewReader(twoPartOBJ))
	require.NoError(t, err)

	bad := o.Clone()
	bad.Faces[0].Material = 7
	assert.Error(t, bad.Validate())

	bad = o.Clone()
	bad.Faces[0].Verts[0] = len(bad.Vertices)
	assert.Error(t, bad.Validate())

	bad = o.Clone()
	bad.Parts[1].FaceStart++
	assert.Error(t, bad.Validate())
}
