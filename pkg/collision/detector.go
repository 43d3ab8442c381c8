// Package collision builds collision graphs: one node per rigid part, one
// undirected edge per pair of parts whose minimum separation is within a
// caller-selected tolerance.
//
// The broad phase enumerates candidate pairs through the uniform grid in
// package spatial; the narrow phase measures point-to-triangle distance
// between the two parts' surfaces. Candidate pairs are independent, so the
// narrow phase fans out across workers and the edge set is merged
// afterwards; discovery order never affects the result.
package collision

import (
	"runtime"
	"sync"

	"cogentcore.org/core/math32"

	"github.com/PeterZhouSZ/string2shape/pkg/graph"
	"github.com/PeterZhouSZ/string2shape/pkg/spatial"
	"github.com/PeterZhouSZ/string2shape/pkg/wfobject"
)

// DefaultResolution is the grid resolution used when none is configured,
// matching the historical 24^3 build used for the shape datasets.
const DefaultResolution = 24

// Detector computes collision graphs over an object's parts.
// The zero value is not usable; use NewDetector.
type Detector struct {
	resX, resY, resZ int
	workers          int
}

// Option configures a Detector.
type Option func(*Detector)

// WithResolution sets the broad-phase grid resolution.
func WithResolution(x, y, z int) Option {
	return func(d *Detector) { d.resX, d.resY, d.resZ = x, y, z }
}

// WithWorkers caps narrow-phase parallelism. Values below 1 fall back to
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(d *Detector) { d.workers = n }
}

// NewDetector creates a detector with the default 24^3 grid.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{resX: DefaultResolution, resY: DefaultResolution, resZ: DefaultResolution}
	for _, opt := range opts {
		opt(d)
	}
	if d.workers < 1 {
		d.workers = runtime.GOMAXPROCS(0)
	}
	return d
}

// ComputeCollisionGraph returns the adjacency graph of o's parts. Two parts
// are adjacent iff the minimum separation between their surfaces is at most
// epsilon: epsilon 0 means strict touching contact, positive epsilon
// tolerates a gap (used after geometry has been perturbed). The call is
// idempotent: an unmodified object always yields the identical edge set.
// The returned graph carries the part types of the object.
func (d *Detector) ComputeCollisionGraph(o *wfobject.Object, epsilon float32) (*graph.Graph, error) {
	n := o.NumParts()
	boxes := make([]math32.Box3, n)
	for i := 0; i < n; i++ {
		b := o.PartBounds(i)
		// Inflate proxies so near-contact pairs still share a cell.
		b.ExpandByScalar(epsilon)
		boxes[i] = b
	}

	grid := spatial.Build(boxes, d.resX, d.resY, d.resZ)
	pairs := grid.CandidatePairs()

	edges := make([]bool, len(pairs))
	var wg sync.WaitGroup
	chunk := (len(pairs) + d.workers - 1) / d.workers
	for w := 0; w < d.workers && w*chunk < len(pairs); w++ {
		lo, hi := w*chunk, (w+1)*chunk
		if hi > len(pairs) {
			hi = len(pairs)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				a, b := pairs[i][0], pairs[i][1]
				if !boxes[a].IntersectsBox(boxes[b]) {
					continue
				}
				edges[i] = d.partsTouch(o, int(a), int(b), epsilon)
			}
		}(lo, hi)
	}
	wg.Wait()

	var out []graph.Edge
	for i, hit := range edges {
		if hit {
			out = append(out, graph.Edge{U: pairs[i][0], V: pairs[i][1]})
		}
	}
	g, err := graph.FromEdges(n, out)
	if err != nil {
		return nil, err
	}
	g.Types = o.PartTypes()
	return g, nil
}

// partsTouch reports whether the minimum separation between parts a and b
// is at most epsilon. The test measures each part's vertices against the
// other part's triangles, which is exact for contacts at mesh features and
// within grid-cell tolerance elsewhere.
func (d *Detector) partsTouch(o *wfobject.Object, a, b int, epsilon float32) bool {
	limitSq := epsilon * epsilon
	if epsilon == 0 {
		// Strict contact still needs numeric headroom for float32 meshes.
		const contactSlop = 1e-5
		limitSq = contactSlop * contactSlop
	}
	if vertsAgainstFaces(o, a, b, limitSq) {
		return true
	}
	return vertsAgainstFaces(o, b, a, limitSq)
}

func vertsAgainstFaces(o *wfobject.Object, src, dst int, limitSq float32) bool {
	p := o.Parts[dst]
	for _, vi := range o.PartVertices(src) {
		v := o.Vertices[vi]
		for _, f := range o.Faces[p.FaceStart:p.FaceEnd] {
			if pointTriangleDistSquared(v,
				o.Vertices[f.Verts[0]],
				o.Vertices[f.Verts[1]],
				o.Vertices[f.Verts[2]]) <= limitSq {
				return true
			}
		}
	}
	return false
}
