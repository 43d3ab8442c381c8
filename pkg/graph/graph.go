package graph

import (
	"errors"
	"sort"
)

var (
	// ErrAsymmetricMatrix is returned by FromAdjacencyMatrix when the input
	// matrix is not symmetric. Collision graphs are undirected, so every
	// stored pair must have its mirror.
	ErrAsymmetricMatrix = errors.New("adjacency matrix is not symmetric")

	// ErrNodeOutOfRange is returned when an edge endpoint is outside [0,N).
	ErrNodeOutOfRange = errors.New("edge endpoint out of range")

	// ErrNotConnected is returned by SpanningTree when the graph has more
	// than one component.
	ErrNotConnected = errors.New("graph is not connected")
)

// Edge is one undirected edge with U < V.
type Edge struct {
	U, V int32
}

// Graph is an undirected graph over dense node ids [0,N) stored in CSR
// form. intervals has N+1 entries; the neighbors of node u occupy
// adjVals[intervals[u]:intervals[u+1]], and adjKeys mirrors the source id
// for each slot so the three arrays can be consumed as flat buffers.
//
// Graph values are immutable after construction; all conversions return
// fresh slices. A Graph is safe for concurrent reads.
type Graph struct {
	intervals []int32
	adjKeys   []int32
	adjVals   []int32

	// Types optionally carries the part type of every node, indexed by
	// node id. It is populated by the collision detector so grammar
	// checks do not have to reach back into object geometry.
	Types []int
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int {
	if len(g.intervals) == 0 {
		return 0
	}
	return len(g.intervals) - 1
}

// NumEdges returns the number of undirected edges.
func (g *Graph) NumEdges() int { return len(g.adjVals) / 2 }

// Neighbors returns the neighbor ids of node u. The returned slice aliases
// internal storage and must not be modified.
func (g *Graph) Neighbors(u int32) []int32 {
	return g.adjVals[g.intervals[u]:g.intervals[u+1]]
}

// Degree returns the number of neighbors of node u.
func (g *Graph) Degree(u int32) int {
	return int(g.intervals[u+1] - g.intervals[u])
}

// HasEdge reports whether the undirected edge (u,v) is present.
func (g *Graph) HasEdge(u, v int32) bool {
	if u < 0 || v < 0 || int(u) >= g.NumNodes() || int(v) >= g.NumNodes() {
		return false
	}
	for _, w := range g.Neighbors(u) {
		if w == v {
			return true
		}
	}
	return false
}

// UniqueEdges returns every undirected edge once, with U < V, sorted by
// (U,V). The slice is freshly allocated.
func (g *Graph) UniqueEdges() []Edge {
	out := make([]Edge, 0, g.NumEdges())
	for u := int32(0); u < int32(g.NumNodes()); u++ {
		for _, v := range g.Neighbors(u) {
			if u < v {
				out = append(out, Edge{U: u, V: v})
			}
		}
	}
	return out
}

// fromPairs builds the CSR arrays from directed pairs via counting sort by
// source id. Pairs must already contain both directions of every edge.
func fromPairs(n int, keys, vals []int32) *Graph {
	intervals := make([]int32, n+1)
	for _, k := range keys {
		intervals[k+1]++
	}
	for i := 1; i <= n; i++ {
		intervals[i] += intervals[i-1]
	}
	outKeys := make([]int32, len(keys))
	outVals := make([]int32, len(vals))
	cursor := make([]int32, n)
	copy(cursor, intervals[:n])
	for i, k := range keys {
		slot := cursor[k]
		cursor[k]++
		outKeys[slot] = k
		outVals[slot] = vals[i]
	}
	// Sort each neighbor run for deterministic iteration order.
	for u := 0; u < n; u++ {
		run := outVals[intervals[u]:intervals[u+1]]
		sort.Slice(run, func(a, b int) bool { return run[a] < run[b] })
	}
	return &Graph{intervals: intervals, adjKeys: outKeys, adjVals: outVals}
}

// FromEdgeList builds a graph over nodeCount nodes from unsorted (key,val)
// pairs. When directed is false, a reverse pair is synthesized for any pair
// whose mirror is missing; duplicate pairs are collapsed.
func FromEdgeList(nodeCount int, directed bool, keys, vals []int32) (*Graph, error) {
	if len(keys) != len(vals) {
		return nil, errors.New("graph: endpoint arrays differ in length")
	}
	type pair struct{ k, v int32 }
	seen := make(map[pair]struct{}, len(keys)*2)
	outK := make([]int32, 0, len(keys)*2)
	outV := make([]int32, 0, len(keys)*2)
	add := func(k, v int32) error {
		if k < 0 || v < 0 || int(k) >= nodeCount || int(v) >= nodeCount {
			return ErrNodeOutOfRange
		}
		p := pair{k, v}
		if _, ok := seen[p]; ok {
			return nil
		}
		seen[p] = struct{}{}
		outK = append(outK, k)
		outV = append(outV, v)
		return nil
	}
	for i := range keys {
		if err := add(keys[i], vals[i]); err != nil {
			return nil, err
		}
		if !directed {
			if err := add(vals[i], keys[i]); err != nil {
				return nil, err
			}
		}
	}
	return fromPairs(nodeCount, outK, outV), nil
}

// FromEdges builds an undirected graph from unique edges.
func FromEdges(nodeCount int, edges []Edge) (*Graph, error) {
	keys := make([]int32, len(edges))
	vals := make([]int32, len(edges))
	for i, e := range edges {
		keys[i] = e.U
		vals[i] = e.V
	}
	return FromEdgeList(nodeCount, false, keys, vals)
}
