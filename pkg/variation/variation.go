// Package variation recombines the structure of two exemplar objects into
// new collision graphs, filtered through the induced grammar.
//
// A candidate is built by cutting a random edge in each exemplar's collision
// graph, keeping the component on one side of each cut, and bridging the two
// components at the cut endpoints. Candidates that violate the grammar are
// discarded and a new recombination is drawn; only validated structures are
// encoded or written out.
package variation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PeterZhouSZ/string2shape/pkg/codec"
	"github.com/PeterZhouSZ/string2shape/pkg/collision"
	"github.com/PeterZhouSZ/string2shape/pkg/errors"
	"github.com/PeterZhouSZ/string2shape/pkg/grammar"
	"github.com/PeterZhouSZ/string2shape/pkg/graph"
	"github.com/PeterZhouSZ/string2shape/pkg/objgen"
	"github.com/PeterZhouSZ/string2shape/pkg/observability"
	"github.com/PeterZhouSZ/string2shape/pkg/rng"
	"github.com/PeterZhouSZ/string2shape/pkg/wfobject"
	"github.com/PeterZhouSZ/string2shape/pkg/wiggle"
)

// Options controls how many variations are produced and which side effects
// run for each accepted candidate.
type Options struct {
	// Count is the number of validated variations to emit.
	Count int
	// MaxAttempts bounds the total number of recombination draws.
	MaxAttempts int
	// WriteVariationGraphs persists each accepted structural graph as an
	// edge-list text file.
	WriteVariationGraphs bool
	// WriteVariations materializes each accepted candidate and persists it
	// as an object file.
	WriteVariations bool
	// FixVariation pipes each materialized candidate through the repair
	// solver and re-validates it before acceptance.
	FixVariation bool
	// OutDir is the directory written files go to. Defaults to ".".
	OutDir string
}

func (o Options) withDefaults() Options {
	if o.Count <= 0 {
		o.Count = 10
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 16 * o.Count
	}
	if o.OutDir == "" {
		o.OutDir = "."
	}
	return o
}

// Generator draws grammar-valid recombinations of two exemplars.
type Generator struct {
	rand *rng.Uniform
	det  *collision.Detector
}

// NewGenerator creates a generator. A nil rand seeds from the wall clock; a
// nil detector uses default grid resolution.
func NewGenerator(rand *rng.Uniform, det *collision.Detector) *Generator {
	if rand == nil {
		now := time.Now().UnixNano()
		rand = rng.New(uint32(now), uint32(now>>32))
	}
	if det == nil {
		det = collision.NewDetector()
	}
	return &Generator{rand: rand, det: det}
}

// exemplar is one source object with its collision graph and part types.
type exemplar struct {
	obj   *wfobject.Object
	graph *graph.Graph
	types []int
}

// candidate is one recombined structure before validation.
type candidate struct {
	graph  *graph.Graph
	types  []int
	donors []objgen.Donor
}

// Result is the outcome of one Generate call.
type Result struct {
	// Encoded holds one structure string per accepted variation.
	Encoded []string
	// Attempts is the number of recombinations drawn, accepted or not.
	Attempts int
	// Written lists the files persisted as side effects, if any.
	Written []string
}

// Text joins the encoded variation strings into the newline-delimited form
// callers return to users.
func (r *Result) Text() string { return strings.Join(r.Encoded, "\n") }

// Generate produces up to opts.Count grammar-valid variations of the two
// exemplars. Candidates failing validation are discarded and redrawn, never
// emitted. File writes happen only under the explicit option flags.
func (gen *Generator) Generate(ctx context.Context, obj1, obj2 *wfobject.Object, epsilon float32, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	ex1, err := gen.prepare(obj1, epsilon)
	if err != nil {
		return nil, err
	}
	ex2, err := gen.prepare(obj2, epsilon)
	if err != nil {
		return nil, err
	}

	model := grammar.NewModel()
	if err := model.Init(ex1.obj, ex1.graph); err != nil {
		return nil, err
	}
	if err := model.Init(ex2.obj, ex2.graph); err != nil {
		return nil, err
	}

	solver := wiggle.NewSolver()
	if err := solver.Init(ex1.obj, ex1.graph); err != nil {
		return nil, err
	}
	if err := solver.Init(ex2.obj, ex2.graph); err != nil {
		return nil, err
	}

	res := &Result{}
	for res.Attempts < opts.MaxAttempts && len(res.Encoded) < opts.Count {
		res.Attempts++

		cand, err := gen.recombine(ex1, ex2)
		if err != nil {
			return nil, err
		}
		valid := model.Check(cand.graph, cand.types)
		observability.Pipeline().OnVariationCandidate(ctx, cand.graph.NumNodes(), valid)
		if !valid {
			continue
		}

		var obj *wfobject.Object
		if opts.WriteVariations || opts.FixVariation {
			obj, err = objgen.Assemble(solver, cand.graph, cand.donors)
			if err != nil {
				continue
			}
			if opts.FixVariation && !gen.repairAndValidate(solver, obj, cand, model) {
				continue
			}
		}

		s, _ := codec.EncodeStructure(cand.graph, cand.types, gen.rand)
		res.Encoded = append(res.Encoded, s)

		if opts.WriteVariationGraphs {
			path := filepath.Join(opts.OutDir, uuid.New().String()+"_graph.txt")
			text := codec.EncodeEdgeLines(cand.graph.UniqueEdges(), nil)
			if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
				return res, errors.Wrap(errors.ErrCodeInternal, err, "writing variation graph")
			}
			res.Written = append(res.Written, path)
		}
		if opts.WriteVariations {
			path := filepath.Join(opts.OutDir, uuid.New().String()+"_variation.obj")
			if err := obj.Save(path); err != nil {
				return res, errors.Wrap(errors.ErrCodeInternal, err, "writing variation object")
			}
			res.Written = append(res.Written, path)
		}
	}
	return res, nil
}

// prepare computes an exemplar's collision graph and part types.
func (gen *Generator) prepare(obj *wfobject.Object, epsilon float32) (exemplar, error) {
	g, err := gen.det.ComputeCollisionGraph(obj, epsilon)
	if err != nil {
		return exemplar{}, err
	}
	if g.NumEdges() == 0 {
		return exemplar{}, errors.New(errors.ErrCodeInvalidInput,
			"exemplar collision graph has no edges")
	}
	return exemplar{obj: obj, graph: g, types: obj.PartTypes()}, nil
}

// repairAndValidate runs the exemplar-trained repair loop on a materialized
// candidate and re-checks its recomputed contact graph against the grammar.
// Strict contact (epsilon 0) is used for the post-repair graph.
func (gen *Generator) repairAndValidate(solver *wiggle.Solver, obj *wfobject.Object, cand *candidate, model *grammar.Model) bool {
	if _, _, err := solver.Run(obj, cand.graph); err != nil {
		return false
	}
	rg, err := gen.det.ComputeCollisionGraph(obj, 0)
	if err != nil {
		return false
	}
	return model.Check(rg, cand.types)
}

// recombine cuts a random edge in each exemplar graph and bridges the kept
// components. Side one keeps the nodes reachable from the cut edge's first
// endpoint, side two the nodes reachable from the second endpoint of its own
// cut, so every draw yields a connected candidate.
func (gen *Generator) recombine(ex1, ex2 exemplar) (*candidate, error) {
	edges1 := ex1.graph.UniqueEdges()
	edges2 := ex2.graph.UniqueEdges()
	e1 := edges1[gen.rand.Intn(len(edges1))]
	e2 := edges2[gen.rand.Intn(len(edges2))]

	mask1 := ex1.graph.Component(e1.U, map[graph.Edge]struct{}{e1: {}})
	mask2 := ex2.graph.Component(e2.V, map[graph.Edge]struct{}{e2: {}})

	// Relabel kept nodes: side one first, then side two.
	id1 := relabel(mask1, 0)
	id2 := relabel(mask2, count(mask1))
	total := count(mask1) + count(mask2)

	var edges []graph.Edge
	edges = appendInduced(edges, edges1, mask1, id1)
	edges = appendInduced(edges, edges2, mask2, id2)
	edges = append(edges, orient(id1[e1.U], id2[e2.V]))

	g, err := graph.FromEdges(total, edges)
	if err != nil {
		return nil, err
	}

	types := make([]int, total)
	donors := make([]objgen.Donor, total)
	for old, nu := range id1 {
		types[nu] = ex1.types[old]
		donors[nu] = objgen.Donor{Object: ex1.obj, Part: int(old)}
	}
	for old, nu := range id2 {
		types[nu] = ex2.types[old]
		donors[nu] = objgen.Donor{Object: ex2.obj, Part: int(old)}
	}
	g.Types = types
	return &candidate{graph: g, types: types, donors: donors}, nil
}

// relabel assigns consecutive new ids, starting at base, to the set nodes of
// a component mask in ascending old-id order.
func relabel(mask []bool, base int) map[int32]int32 {
	ids := make(map[int32]int32)
	next := int32(base)
	for i, in := range mask {
		if in {
			ids[int32(i)] = next
			next++
		}
	}
	return ids
}

func count(mask []bool) int {
	n := 0
	for _, in := range mask {
		if in {
			n++
		}
	}
	return n
}

// appendInduced adds the edges whose endpoints both survive the mask,
// relabeled through ids.
func appendInduced(dst, edges []graph.Edge, mask []bool, ids map[int32]int32) []graph.Edge {
	for _, e := range edges {
		if mask[e.U] && mask[e.V] {
			dst = append(dst, orient(ids[e.U], ids[e.V]))
		}
	}
	return dst
}

func orient(u, v int32) graph.Edge {
	if v < u {
		u, v = v, u
	}
	return graph.Edge{U: u, V: v}
}
