// Package objgen materializes a target collision graph into part geometry
// borrowed from two exemplar objects.
//
// Every target node is matched to a donor part by its labeled incident-edge
// context, then donors are assembled along a spanning tree of the target
// graph using the relative-pose templates learned from the exemplars.
package objgen

import (
	"cogentcore.org/core/math32"

	"github.com/PeterZhouSZ/string2shape/pkg/errors"
	"github.com/PeterZhouSZ/string2shape/pkg/graph"
	"github.com/PeterZhouSZ/string2shape/pkg/wfobject"
	"github.com/PeterZhouSZ/string2shape/pkg/wiggle"
)

// Donor identifies one exemplar part supplying geometry for a target node.
type Donor struct {
	Object *wfobject.Object
	Part   int
}

// Exemplar bundles an object with its collision graph and the edge labels
// aligned to the graph's unique-edge list. Labels may be nil, in which case
// every incident edge is treated as unknown.
type Exemplar struct {
	Object *wfobject.Object
	Graph  *graph.Graph
	Labels []graph.Label
}

// nodeContext returns the incident edge labels of every node, indexed by
// node id. Labels beyond the provided slice default to unknown.
func nodeContext(g *graph.Graph, labels []graph.Label) [][]graph.Label {
	ctx := make([][]graph.Label, g.NumNodes())
	for i, e := range g.UniqueEdges() {
		var l graph.Label
		if i < len(labels) {
			l = labels[i]
		}
		ctx[e.U] = append(ctx[e.U], l)
		ctx[e.V] = append(ctx[e.V], l)
	}
	return ctx
}

// contextMatches reports whether a donor's incident labels can satisfy the
// target's. Every known target label must be covered by a distinct donor
// label that is either unknown or carries the same value; unknown target
// labels constrain nothing.
func contextMatches(target, donor []graph.Label) bool {
	need := make(map[int32]int)
	for _, l := range target {
		if l.Known {
			need[l.Value]++
		}
	}
	if len(need) == 0 {
		return true
	}
	wild := 0
	have := make(map[int32]int)
	for _, l := range donor {
		if l.Known {
			have[l.Value]++
		} else {
			wild++
		}
	}
	for v, n := range need {
		n -= have[v]
		if n > 0 {
			wild -= n
			if wild < 0 {
				return false
			}
		}
	}
	return true
}

// selectDonors picks a donor part for every target node. Target node n
// corresponds to exemplar node n; exemplar one is tried first, exemplar two
// second, so the selection is deterministic for identical inputs.
func selectDonors(ex1, ex2 Exemplar, target *graph.Graph, targetLabels []graph.Label) ([]Donor, error) {
	ctx1 := nodeContext(ex1.Graph, ex1.Labels)
	ctx2 := nodeContext(ex2.Graph, ex2.Labels)
	want := nodeContext(target, targetLabels)

	donors := make([]Donor, target.NumNodes())
	for n := range donors {
		switch {
		case n < len(ctx1) && contextMatches(want[n], ctx1[n]):
			donors[n] = Donor{Object: ex1.Object, Part: n}
		case n < len(ctx2) && contextMatches(want[n], ctx2[n]):
			donors[n] = Donor{Object: ex2.Object, Part: n}
		default:
			return nil, errors.New(errors.ErrCodeNoDonor,
				"target node %d has no exemplar node with a compatible labeled context", n)
		}
	}
	return donors, nil
}

// pose is a world placement for one target node.
type pose struct {
	pos  math32.Vector3
	quat math32.Quat
}

// placeNodes walks a spanning tree of the target graph and derives a world
// pose per node from the exemplar relative-pose templates. The root keeps
// its donor's original frame so the assembly stays near the exemplar's
// coordinate range.
func placeNodes(solver *wiggle.Solver, target *graph.Graph, donors []Donor) ([]pose, error) {
	tree, err := target.SpanningTree()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDisconnected, err, "target graph must be connected")
	}

	children := make(map[int32][]int32)
	for _, e := range tree {
		children[e.U] = append(children[e.U], e.V)
		children[e.V] = append(children[e.V], e.U)
	}

	poses := make([]pose, target.NumNodes())
	placed := make([]bool, target.NumNodes())
	if len(poses) == 0 {
		return poses, nil
	}

	root := donors[0]
	poses[0] = pose{
		pos:  root.Object.PartCentroid(root.Part),
		quat: root.Object.Parts[root.Part].Quat,
	}
	placed[0] = true

	queue := []int32{0}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range children[u] {
			if placed[v] {
				continue
			}
			srcType := donors[u].Object.Parts[donors[u].Part].Type
			dstType := donors[v].Object.Parts[donors[v].Part].Type
			rel, relQuat, ok := solver.Template(srcType, dstType)
			if !ok {
				// No exemplar edge with this type pair: stack the part on
				// its parent and let the repair solver sort it out.
				relQuat.SetIdentity()
			}
			parent := poses[u]
			poses[v] = pose{
				pos:  parent.pos.Add(rel.MulQuat(parent.quat)),
				quat: relQuat.Mul(parent.quat),
			}
			placed[v] = true
			queue = append(queue, v)
		}
	}
	return poses, nil
}

// Assemble builds an object with one part per target node from explicitly
// chosen donors, placing them along a spanning tree of the target graph
// using the solver's relative-pose templates. donors must have one entry
// per target node. On failure an empty object is returned alongside the
// error.
func Assemble(solver *wiggle.Solver, target *graph.Graph, donors []Donor) (*wfobject.Object, error) {
	empty := &wfobject.Object{}
	if len(donors) != target.NumNodes() {
		return empty, errors.New(errors.ErrCodeInvalidInput,
			"%d donors for %d target nodes", len(donors), target.NumNodes())
	}
	if target.NumNodes() == 0 {
		return empty, nil
	}

	poses, err := placeNodes(solver, target, donors)
	if err != nil {
		return empty, err
	}

	out := concat(donors)
	for i := range donors {
		cur := pose{pos: out.PartCentroid(i), quat: out.Parts[i].Quat}
		dq := quatInverse(cur.quat)
		dq = dq.Mul(poses[i].quat)
		dq.Normalize()
		out.TransformPart(i, dq, cur.pos, poses[i].pos.Sub(cur.pos))
	}
	if err := out.Validate(); err != nil {
		return empty, err
	}
	return out, nil
}

// Materialize builds an object realizing the target graph from the two
// exemplars' geometry. The result has one part per target node, in node
// order. On failure an empty object is returned alongside the error.
func Materialize(ex1, ex2 Exemplar, target *graph.Graph, targetLabels []graph.Label) (*wfobject.Object, error) {
	empty := &wfobject.Object{}
	if target.NumNodes() == 0 {
		return empty, nil
	}
	// Connectivity is a property of the target alone, so it is ruled out
	// before any donor matching.
	if !target.IsConnected() {
		return empty, errors.New(errors.ErrCodeDisconnected,
			"target graph must be connected")
	}

	donors, err := selectDonors(ex1, ex2, target, targetLabels)
	if err != nil {
		return empty, err
	}

	solver := wiggle.NewSolver()
	if err := solver.Init(ex1.Object, ex1.Graph); err != nil {
		return empty, err
	}
	if err := solver.Init(ex2.Object, ex2.Graph); err != nil {
		return empty, err
	}
	return Assemble(solver, target, donors)
}

// concat concatenates the donor parts' geometry into a fresh object, one
// group per target node. Materials are deduplicated by name.
func concat(donors []Donor) *wfobject.Object {
	var (
		verts []math32.Vector3
		faces []wfobject.Face
		mats  []wfobject.Material
	)
	matIndex := make(map[string]int)
	lookupMat := func(name string) int {
		if i, ok := matIndex[name]; ok {
			return i
		}
		matIndex[name] = len(mats)
		mats = append(mats, wfobject.Material{Name: name})
		return len(mats) - 1
	}

	for node, d := range donors {
		p := d.Object.Parts[d.Part]
		remap := make(map[int]int)
		for _, vi := range d.Object.PartVertices(d.Part) {
			remap[vi] = len(verts)
			verts = append(verts, d.Object.Vertices[vi])
		}
		for fi := p.FaceStart; fi < p.FaceEnd; fi++ {
			f := d.Object.Faces[fi]
			nf := wfobject.Face{
				Material: lookupMat(d.Object.Materials[f.Material].Name),
				Group:    node,
			}
			for k, vi := range f.Verts {
				nf.Verts[k] = remap[vi]
			}
			faces = append(faces, nf)
		}
	}
	return wfobject.NewObject(verts, faces, mats)
}

func quatInverse(q math32.Quat) math32.Quat {
	return math32.Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}
