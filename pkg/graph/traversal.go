package graph

// IsConnected reports whether every node is reachable from node 0.
// Graphs with zero nodes are vacuously connected.
func (g *Graph) IsConnected() bool {
	n := g.NumNodes()
	if n == 0 {
		return true
	}
	visited := make([]bool, n)
	queue := make([]int32, 0, n)
	visited[0] = true
	queue = append(queue, 0)
	reached := 1
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range g.Neighbors(u) {
			if !visited[v] {
				visited[v] = true
				reached++
				queue = append(queue, v)
			}
		}
	}
	return reached == n
}

// SpanningTree extracts a BFS spanning tree rooted at node 0 and returns
// its edges. Returns ErrNotConnected when some node is unreachable. The
// tree of a graph with N>0 nodes always has exactly N-1 edges.
func (g *Graph) SpanningTree() ([]Edge, error) {
	n := g.NumNodes()
	if n == 0 {
		return nil, nil
	}
	visited := make([]bool, n)
	tree := make([]Edge, 0, n-1)
	queue := make([]int32, 0, n)
	visited[0] = true
	queue = append(queue, 0)
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range g.Neighbors(u) {
			if !visited[v] {
				visited[v] = true
				e := Edge{U: u, V: v}
				if v < u {
					e = Edge{U: v, V: u}
				}
				tree = append(tree, e)
				queue = append(queue, v)
			}
		}
	}
	if len(tree) != n-1 {
		return nil, ErrNotConnected
	}
	return tree, nil
}

// VerifySpanningTree checks structural well-formedness of a spanning tree
// for this graph: exactly N-1 edges, acyclic, and touching every node.
// Used as a self-test after generation.
func (g *Graph) VerifySpanningTree(tree []Edge) bool {
	n := g.NumNodes()
	if n == 0 {
		return len(tree) == 0
	}
	if len(tree) != n-1 {
		return false
	}
	// Union-find: acyclicity plus full coverage implies a single tree.
	parent := make([]int32, n)
	for i := range parent {
		parent[i] = int32(i)
	}
	var find func(x int32) int32
	find = func(x int32) int32 {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, e := range tree {
		if e.U < 0 || e.V < 0 || int(e.U) >= n || int(e.V) >= n {
			return false
		}
		ru, rv := find(e.U), find(e.V)
		if ru == rv {
			return false // cycle
		}
		parent[ru] = rv
	}
	root := find(0)
	for i := int32(1); i < int32(n); i++ {
		if find(i) != root {
			return false
		}
	}
	return true
}

// Component returns the set of nodes reachable from start, as a boolean
// mask, while treating the edges in blocked as removed. Used by the
// variation generator to split an exemplar at a donor edge.
func (g *Graph) Component(start int32, blocked map[Edge]struct{}) []bool {
	n := g.NumNodes()
	mask := make([]bool, n)
	if n == 0 {
		return mask
	}
	mask[start] = true
	queue := []int32{start}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range g.Neighbors(u) {
			e := Edge{U: u, V: v}
			if v < u {
				e = Edge{U: v, V: u}
			}
			if _, cut := blocked[e]; cut {
				continue
			}
			if !mask[v] {
				mask[v] = true
				queue = append(queue, v)
			}
		}
	}
	return mask
}
