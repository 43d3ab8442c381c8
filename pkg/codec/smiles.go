// Package codec encodes collision graphs as line-oriented text.
//
// Two forms are produced. The structural form is a SMILES-like string: each
// node appears as a letter derived from its part type, tree edges follow
// writing order with branches in parentheses, and cycle-closing edges are
// written as matching ring-closure digits on both endpoints. The writing
// order is a randomized depth-first traversal, so one graph has many valid
// encodings; resampling with different seeds is how the dataset builder
// produces augmented training strings.
//
// The edge-list form is three newline-delimited lines per graph: the first
// endpoints of every edge, the second endpoints, and the edge type labels
// (-1 for unknown). GraphText bundles three such triples (exemplar A,
// exemplar B, target) for the materialization entry point.
package codec

import (
	"fmt"
	"strings"

	"github.com/PeterZhouSZ/string2shape/pkg/graph"
	"github.com/PeterZhouSZ/string2shape/pkg/rng"
)

// TypeSymbol returns the atom-like symbol for a part type: single letters
// A..Z for the first 26 types, bracketed numbers beyond that.
func TypeSymbol(t int) string {
	if t >= 0 && t < 26 {
		return string(rune('A' + t))
	}
	return fmt.Sprintf("[%d]", t)
}

// ringDigit formats a ring-closure number SMILES style: single digit for
// 1..9, %nn beyond.
func ringDigit(r int) string {
	if r < 10 {
		return fmt.Sprintf("%d", r)
	}
	return fmt.Sprintf("%%%d", r)
}

// EncodeStructure writes one randomized structural encoding of g and
// returns it together with the node visit order. Node types are taken from
// types (indexed by node id). The traversal starts at a random node and
// shuffles neighbor order with u, so identical seeds reproduce identical
// strings. Disconnected components are separated by '.'.
func EncodeStructure(g *graph.Graph, types []int, u *rng.Uniform) (string, []int32) {
	n := g.NumNodes()
	if n == 0 {
		return "", nil
	}

	visited := make([]bool, n)
	children := make([][]int32, n)
	ringsAt := make([][]int, n)
	var order []int32
	ringCounter := 0

	type backEdge struct{ u, v int32 }
	usedBack := make(map[graph.Edge]struct{})

	var dfs func(node, parent int32)
	dfs = func(node, parent int32) {
		visited[node] = true
		order = append(order, node)
		nbrs := g.Neighbors(node)
		perm := u.Perm(len(nbrs))
		for _, pi := range perm {
			next := nbrs[pi]
			if next == parent {
				continue
			}
			if visited[next] {
				e := graph.Edge{U: node, V: next}
				if next < node {
					e = graph.Edge{U: next, V: node}
				}
				if _, done := usedBack[e]; done {
					continue
				}
				usedBack[e] = struct{}{}
				ringCounter++
				ringsAt[node] = append(ringsAt[node], ringCounter)
				ringsAt[next] = append(ringsAt[next], ringCounter)
				continue
			}
			children[node] = append(children[node], next)
			dfs(next, node)
		}
	}

	var components []int32
	start := int32(u.Intn(n))
	components = append(components, start)
	dfs(start, -1)
	for i := int32(0); i < int32(n); i++ {
		if !visited[i] {
			components = append(components, i)
			dfs(i, -1)
		}
	}

	var sb strings.Builder
	var emit func(node int32)
	emit = func(node int32) {
		sb.WriteString(TypeSymbol(types[node]))
		for _, r := range ringsAt[node] {
			sb.WriteString(ringDigit(r))
		}
		kids := children[node]
		for i, c := range kids {
			if i < len(kids)-1 {
				sb.WriteByte('(')
				emit(c)
				sb.WriteByte(')')
			} else {
				emit(c)
			}
		}
	}
	for i, root := range components {
		if i > 0 {
			sb.WriteByte('.')
		}
		emit(root)
	}
	return sb.String(), order
}

// FormatNodeIDs renders a visit order as a node-id annotation line.
func FormatNodeIDs(order []int32) string {
	parts := make([]string, len(order))
	for i, id := range order {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, " ")
}
