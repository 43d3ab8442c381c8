package wfobject

import (
	"sort"

	"cogentcore.org/core/math32"

	"github.com/PeterZhouSZ/string2shape/pkg/errors"
)

// Face is a single triangle. Verts index into Object.Vertices.
type Face struct {
	Verts    [3]int
	Material int // index into Object.Materials
	Group    int // group id assigned during parsing
}

// Material is a named material referenced by usemtl records.
type Material struct {
	Name string
}

// Part is a rigid component of an object: a contiguous face range sharing a
// group id, plus the rigid pose accumulated by repair operations.
type Part struct {
	ID        int
	FaceStart int // first face index (inclusive)
	FaceEnd   int // one past the last face index
	Type      int // interned type id of the first face's material, see TypeOf

	// Pose relative to the loaded geometry. Identity/zero at load time.
	Quat math32.Quat
	Pos  math32.Vector3

	verts []int // vertex indices owned by this part, sorted
}

// Object is a multi-part rigid 3D object.
type Object struct {
	Vertices  []math32.Vector3
	Faces     []Face
	Materials []Material
	Parts     []Part

	// MtlLib is the material library name from the mtllib record, if any.
	MtlLib string
}

// NewObject builds an object from raw geometry. Faces are sliced into parts
// by contiguous runs of equal group id, the same way the file reader does.
func NewObject(vertices []math32.Vector3, faces []Face, materials []Material) *Object {
	o := &Object{Vertices: vertices, Faces: faces, Materials: materials}
	o.buildParts()
	return o
}

// NumParts returns the number of rigid parts.
func (o *Object) NumParts() int { return len(o.Parts) }

// PartTypes returns the material-derived type of every part, indexed by
// part id. The slice is freshly allocated on each call.
func (o *Object) PartTypes() []int {
	types := make([]int, len(o.Parts))
	for i := range o.Parts {
		types[i] = o.Parts[i].Type
	}
	return types
}

// PartVertices returns the sorted vertex indices owned by part i.
// The returned slice is shared with the object and must not be modified.
func (o *Object) PartVertices(i int) []int { return o.Parts[i].verts }

// PartBounds returns the axis-aligned bounding box of part i.
func (o *Object) PartBounds(i int) math32.Box3 {
	b := math32.B3Empty()
	for _, vi := range o.Parts[i].verts {
		b.ExpandByPoint(o.Vertices[vi])
	}
	return b
}

// PartCentroid returns the mean of part i's owned vertices.
func (o *Object) PartCentroid(i int) math32.Vector3 {
	var c math32.Vector3
	vs := o.Parts[i].verts
	if len(vs) == 0 {
		return c
	}
	for _, vi := range vs {
		c = c.Add(o.Vertices[vi])
	}
	return c.DivScalar(float32(len(vs)))
}

// Bounds returns the bounding box of the whole object.
func (o *Object) Bounds() math32.Box3 {
	b := math32.B3Empty()
	for _, v := range o.Vertices {
		b.ExpandByPoint(v)
	}
	return b
}

// TransformPart applies a rigid transform to part i: rotation q about pivot
// followed by translation offset. The part's vertices are moved and its pose
// is composed with the delta, so repeated corrections accumulate.
func (o *Object) TransformPart(i int, q math32.Quat, pivot, offset math32.Vector3) {
	p := &o.Parts[i]
	for _, vi := range p.verts {
		v := o.Vertices[vi].Sub(pivot)
		o.Vertices[vi] = v.MulQuat(q).Add(pivot).Add(offset)
	}
	p.Quat = p.Quat.Mul(q)
	p.Quat.Normalize()
	p.Pos = p.Pos.Sub(pivot).MulQuat(q).Add(pivot).Add(offset)
}

// Clone returns a deep copy of the object. Parts, faces, and vertices are
// all duplicated so the copy can be mutated independently.
func (o *Object) Clone() *Object {
	c := &Object{
		Vertices:  append([]math32.Vector3(nil), o.Vertices...),
		Faces:     append([]Face(nil), o.Faces...),
		Materials: append([]Material(nil), o.Materials...),
		Parts:     append([]Part(nil), o.Parts...),
		MtlLib:    o.MtlLib,
	}
	for i := range c.Parts {
		c.Parts[i].verts = append([]int(nil), o.Parts[i].verts...)
	}
	return c
}

// Validate checks internal consistency: faces reference existing vertices
// and materials, parts cover the face array contiguously.
func (o *Object) Validate() error {
	for fi, f := range o.Faces {
		for _, vi := range f.Verts {
			if vi < 0 || vi >= len(o.Vertices) {
				return errors.New(errors.ErrCodeInvalidObject,
					"face %d references vertex %d of %d", fi, vi, len(o.Vertices))
			}
		}
		if f.Material < 0 || f.Material >= len(o.Materials) {
			return errors.New(errors.ErrCodeInvalidObject,
				"face %d references material %d of %d", fi, f.Material, len(o.Materials))
		}
	}
	next := 0
	for _, p := range o.Parts {
		if p.FaceStart != next || p.FaceEnd < p.FaceStart {
			return errors.New(errors.ErrCodeInvalidObject,
				"part %d has face range [%d,%d), expected start %d", p.ID, p.FaceStart, p.FaceEnd, next)
		}
		next = p.FaceEnd
	}
	if next != len(o.Faces) {
		return errors.New(errors.ErrCodeInvalidObject,
			"parts cover %d of %d faces", next, len(o.Faces))
	}
	return nil
}

// buildParts slices the face array into contiguous runs of equal group id
// and computes per-part vertex ownership and type.
func (o *Object) buildParts() {
	o.Parts = o.Parts[:0]
	start := 0
	for i := 1; i <= len(o.Faces); i++ {
		if i == len(o.Faces) || o.Faces[i].Group != o.Faces[start].Group {
			p := Part{
				ID:        len(o.Parts),
				FaceStart: start,
				FaceEnd:   i,
				Type:      o.materialType(o.Faces[start].Material),
			}
			p.Quat.SetIdentity()
			p.verts = ownedVertices(o.Faces[start:i])
			o.Parts = append(o.Parts, p)
			start = i
		}
	}
}

// materialType resolves a material index to its interned type id. Out of
// range indices keep their raw value; Validate rejects them afterwards.
func (o *Object) materialType(mat int) int {
	if mat < 0 || mat >= len(o.Materials) {
		return mat
	}
	return TypeOf(o.Materials[mat].Name)
}

func ownedVertices(faces []Face) []int {
	seen := make(map[int]struct{}, len(faces)*2)
	for _, f := range faces {
		for _, vi := range f.Verts {
			seen[vi] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for vi := range seen {
		out = append(out, vi)
	}
	sort.Ints(out)
	return out
}
