// Package grammar induces and validates the structural grammar of
// multi-part objects: the set of part-type pairs that are allowed to be
// adjacent. Rules are induced by scanning exemplar collision graphs and are
// closed under union across every exemplar supplied.
package grammar

import (
	"fmt"
	"sort"

	"github.com/PeterZhouSZ/string2shape/pkg/graph"
	"github.com/PeterZhouSZ/string2shape/pkg/wfobject"
)

// TypePair is an unordered pair of part types, stored with Src <= Dst.
type TypePair struct {
	Src, Dst int
}

// pairOf normalizes (a,b) into unordered form.
func pairOf(a, b int) TypePair {
	if b < a {
		a, b = b, a
	}
	return TypePair{Src: a, Dst: b}
}

// Model is the induced rule set. Rules only grow: repeated Init calls
// accumulate, never shrink. The zero value is an empty model that rejects
// every edge.
type Model struct {
	rules map[TypePair]struct{}
}

// NewModel returns an empty grammar model.
func NewModel() *Model {
	return &Model{rules: make(map[TypePair]struct{})}
}

// Init accumulates rules from one exemplar: for every edge (u,v) of g the
// unordered pair of the endpoint part types is added to the rule set.
// The node types are taken from the exemplar object, which interns them by
// material name, so rules induced from different files agree on what each
// type means. Callable multiple times with different exemplars.
func (m *Model) Init(exemplar *wfobject.Object, g *graph.Graph) error {
	if g.NumNodes() != exemplar.NumParts() {
		return fmt.Errorf("grammar: graph has %d nodes, object has %d parts",
			g.NumNodes(), exemplar.NumParts())
	}
	types := exemplar.PartTypes()
	if m.rules == nil {
		m.rules = make(map[TypePair]struct{})
	}
	for _, e := range g.UniqueEdges() {
		m.rules[pairOf(types[e.U], types[e.V])] = struct{}{}
	}
	return nil
}

// Check verifies that every edge of the candidate graph uses a permitted
// type combination, testing the unordered pair. It returns false on the
// first violation. Graphs with no nodes or no edges are trivially valid.
func (m *Model) Check(g *graph.Graph, nodeTypes []int) bool {
	for _, e := range g.UniqueEdges() {
		if int(e.U) >= len(nodeTypes) || int(e.V) >= len(nodeTypes) {
			return false
		}
		if _, ok := m.rules[pairOf(nodeTypes[e.U], nodeTypes[e.V])]; !ok {
			return false
		}
	}
	return true
}

// Allows reports whether the unordered type pair (a,b) is in the rule set.
func (m *Model) Allows(a, b int) bool {
	_, ok := m.rules[pairOf(a, b)]
	return ok
}

// NumRules returns the number of distinct unordered rules.
func (m *Model) NumRules() int { return len(m.rules) }

// Rules returns the rule set sorted by (Src,Dst), for logging and export.
func (m *Model) Rules() []TypePair {
	out := make([]TypePair, 0, len(m.rules))
	for p := range m.rules {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Src != out[j].Src {
			return out[i].Src < out[j].Src
		}
		return out[i].Dst < out[j].Dst
	})
	return out
}
