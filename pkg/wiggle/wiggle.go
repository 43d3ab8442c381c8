// Package wiggle implements the iterative repair solver that corrects
// rigid-part poses until the contacts mandated by a collision graph hold.
//
// Init learns, from one or more exemplars, the expected relative rigid
// transform between the local frames of adjacent parts, keyed by the
// ordered pair of part types. FixRelativeTransformations then runs one
// repair pass over a target object: each graph edge's actual relative
// transform is compared against the best matching template, and parts that
// deviate beyond tolerance receive a corrective rigid transform.
//
// Pass structure follows the convergence contract: deviation evaluation is
// independent per edge and runs in parallel, corrections are applied only
// after the pass completes (one correction per part per pass, first edge
// wins), and the driving loop stops at the first zero-correction pass or
// after MaxPasses.
package wiggle

import (
	"runtime"
	"sync"

	"cogentcore.org/core/math32"

	"github.com/PeterZhouSZ/string2shape/pkg/errors"
	"github.com/PeterZhouSZ/string2shape/pkg/graph"
	"github.com/PeterZhouSZ/string2shape/pkg/wfobject"
)

// MaxPasses is the hard cap on repair passes.
const MaxPasses = 128

// State is the solver's lifecycle state.
type State int

const (
	// Ready means templates are loaded and no repair has run yet.
	Ready State = iota
	// Correcting means a repair loop is in progress.
	Correcting
	// Converged means a full pass produced zero corrections.
	Converged
	// Exhausted means MaxPasses ran without a zero-correction pass.
	Exhausted
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Correcting:
		return "correcting"
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// typePair is an ordered (source type, target type) key.
type typePair struct{ src, dst int }

// template is the expected pose of the target part's frame expressed in the
// source part's frame.
type template struct {
	pos  math32.Vector3
	quat math32.Quat
}

// Solver holds the learned templates and tolerances.
// A Solver must not be shared across concurrent repairs.
type Solver struct {
	templates map[typePair][]template
	posTol    float32
	angTol    float32
	workers   int
	state     State
}

// Option configures a Solver.
type Option func(*Solver)

// WithTolerance sets the positional and angular (radians) deviation
// tolerances above which a correction is applied.
func WithTolerance(pos, ang float32) Option {
	return func(s *Solver) { s.posTol, s.angTol = pos, ang }
}

// WithWorkers caps per-pass parallelism.
func WithWorkers(n int) Option {
	return func(s *Solver) { s.workers = n }
}

// NewSolver creates a solver with default tolerances.
func NewSolver(opts ...Option) *Solver {
	s := &Solver{
		templates: make(map[typePair][]template),
		posTol:    1e-3,
		angTol:    1e-2,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	return s
}

// State returns the solver's current lifecycle state.
func (s *Solver) State() State { return s.state }

// NumTemplates returns the number of (ordered) type pairs with at least one
// template.
func (s *Solver) NumTemplates() int { return len(s.templates) }

// Template returns the first learned relative pose for the ordered type
// pair (src,dst): the expected position and orientation of a dst-typed
// part's frame expressed in the frame of an adjacent src-typed part.
// ok is false when no exemplar edge with that type pair was seen.
func (s *Solver) Template(src, dst int) (pos math32.Vector3, quat math32.Quat, ok bool) {
	cands := s.templates[typePair{src: src, dst: dst}]
	if len(cands) == 0 {
		quat.SetIdentity()
		return pos, quat, false
	}
	return cands[0].pos, cands[0].quat, true
}

// Init records, for every edge of the exemplar graph, the relative rigid
// transform between the adjacent parts' frames, in both orientations.
// Callable multiple times to accumulate templates from several exemplars;
// templates only grow.
func (s *Solver) Init(exemplar *wfobject.Object, g *graph.Graph) error {
	if g.NumNodes() != exemplar.NumParts() {
		return errors.New(errors.ErrCodeInvalidGraph,
			"graph has %d nodes, exemplar has %d parts", g.NumNodes(), exemplar.NumParts())
	}
	types := exemplar.PartTypes()
	frames := partFrames(exemplar)
	for _, e := range g.UniqueEdges() {
		u, v := int(e.U), int(e.V)
		s.addTemplate(types[u], types[v], relativePose(frames[u], frames[v]))
		s.addTemplate(types[v], types[u], relativePose(frames[v], frames[u]))
	}
	if s.state == 0 && len(s.templates) > 0 {
		s.state = Ready
	}
	return nil
}

func (s *Solver) addTemplate(src, dst int, t template) {
	key := typePair{src: src, dst: dst}
	s.templates[key] = append(s.templates[key], t)
}

// frame is a part's rigid frame: orientation plus centroid origin.
type frame struct {
	quat math32.Quat
	pos  math32.Vector3
}

func partFrames(o *wfobject.Object) []frame {
	frames := make([]frame, o.NumParts())
	for i := range frames {
		frames[i] = frame{quat: o.Parts[i].Quat, pos: o.PartCentroid(i)}
	}
	return frames
}

// quatInverse returns the inverse of a unit quaternion (its conjugate).
func quatInverse(q math32.Quat) math32.Quat {
	return math32.Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// relativePose expresses frame b in frame a's coordinates.
func relativePose(a, b frame) template {
	inv := quatInverse(a.quat)
	return template{
		pos:  b.pos.Sub(a.pos).MulQuat(inv),
		quat: b.quat.Mul(inv),
	}
}

// quatAngle returns the rotation angle in radians between two unit
// quaternions.
func quatAngle(a, b math32.Quat) float32 {
	dot := a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
	dot = math32.Abs(dot)
	if dot > 1 {
		dot = 1
	}
	return 2 * math32.Acos(dot)
}

// deviation measures how far the actual relative pose is from the
// template.
func (s *Solver) deviation(actual, want template) (posDev, angDev float32) {
	return actual.pos.DistanceTo(want.pos), quatAngle(actual.quat, want.quat)
}

// bestTemplate returns the template for (src,dst) with the smallest
// deviation from actual, or false when no template exists for the pair.
func (s *Solver) bestTemplate(src, dst int, actual template) (template, bool) {
	cands := s.templates[typePair{src: src, dst: dst}]
	if len(cands) == 0 {
		return template{}, false
	}
	best := cands[0]
	bestScore := math32.Infinity
	for _, c := range cands {
		p, a := s.deviation(actual, c)
		score := p + a
		if score < bestScore {
			bestScore = score
			best = c
		}
	}
	return best, true
}

// correction is a queued rigid fix for one part.
type correction struct {
	part   int
	quat   math32.Quat
	pivot  math32.Vector3
	offset math32.Vector3
}

// FixRelativeTransformations runs one repair pass over the object and
// returns the number of edges that required a correction. Deviations are
// evaluated in parallel against the pre-pass poses; corrections are applied
// afterwards, at most one per part (the lowest-index deviating edge wins).
func (s *Solver) FixRelativeTransformations(o *wfobject.Object, g *graph.Graph) (int, error) {
	if g.NumNodes() != o.NumParts() {
		return 0, errors.New(errors.ErrCodeInvalidGraph,
			"graph has %d nodes, object has %d parts", g.NumNodes(), o.NumParts())
	}
	types := o.PartTypes()
	frames := partFrames(o)
	edges := g.UniqueEdges()

	pending := make([]*correction, len(edges))
	var wg sync.WaitGroup
	chunk := (len(edges) + s.workers - 1) / s.workers
	for w := 0; w < s.workers && w*chunk < len(edges); w++ {
		lo, hi := w*chunk, (w+1)*chunk
		if hi > len(edges) {
			hi = len(edges)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				pending[i] = s.evaluateEdge(edges[i], types, frames)
			}
		}(lo, hi)
	}
	wg.Wait()

	corrected := 0
	touched := make(map[int]bool)
	for _, c := range pending {
		if c == nil {
			continue
		}
		corrected++
		if touched[c.part] {
			continue
		}
		touched[c.part] = true
		o.TransformPart(c.part, c.quat, c.pivot, c.offset)
	}
	return corrected, nil
}

// evaluateEdge computes the correction that would realign edge e, or nil
// when the edge is within tolerance or has no template. The correction
// moves the higher-numbered part so that low node ids act as anchors.
func (s *Solver) evaluateEdge(e graph.Edge, types []int, frames []frame) *correction {
	u, v := int(e.U), int(e.V)
	actual := relativePose(frames[u], frames[v])
	want, ok := s.bestTemplate(types[u], types[v], actual)
	if !ok {
		return nil
	}
	posDev, angDev := s.deviation(actual, want)
	if posDev <= s.posTol && angDev <= s.angTol {
		return nil
	}

	// Target world pose for v derived from u's frame and the template.
	targetQuat := want.quat.Mul(frames[u].quat)
	targetPos := frames[u].pos.Add(want.pos.MulQuat(frames[u].quat))

	inv := quatInverse(frames[v].quat)
	dq := inv.Mul(targetQuat)
	dq.Normalize()
	return &correction{
		part:   v,
		quat:   dq,
		pivot:  frames[v].pos,
		offset: targetPos.Sub(frames[v].pos),
	}
}

// Run drives FixRelativeTransformations until a pass reports zero
// corrections or MaxPasses is reached. It returns the final state
// (Converged or Exhausted) and the number of passes executed.
func (s *Solver) Run(o *wfobject.Object, g *graph.Graph) (State, int, error) {
	s.state = Correcting
	for pass := 1; pass <= MaxPasses; pass++ {
		n, err := s.FixRelativeTransformations(o, g)
		if err != nil {
			return s.state, pass, err
		}
		if n == 0 {
			s.state = Converged
			return s.state, pass, nil
		}
	}
	s.state = Exhausted
	return s.state, MaxPasses, nil
}
