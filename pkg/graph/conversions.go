package graph

// FromAdjacencyMatrix builds a graph from a dense n×n symmetric 0/1 matrix
// in row-major order. Every nonzero entry (i,j) becomes a stored directed
// pair, so the symmetric closure invariant follows from the symmetry of the
// input. Returns ErrAsymmetricMatrix when matrix[i*n+j] != matrix[j*n+i].
func FromAdjacencyMatrix(matrix []int, n int) (*Graph, error) {
	if len(matrix) != n*n {
		return nil, ErrNodeOutOfRange
	}
	var keys, vals []int32
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if matrix[i*n+j] != matrix[j*n+i] {
				return nil, ErrAsymmetricMatrix
			}
			if matrix[i*n+j] != 0 {
				keys = append(keys, int32(i))
				vals = append(vals, int32(j))
			}
		}
	}
	return fromPairs(n, keys, vals), nil
}

// ToAdjacencyMatrix converts the graph to a dense row-major 0/1 matrix of
// size NumNodes()×NumNodes(). Round-trip law: for any symmetric 0/1 matrix
// M, ToAdjacencyMatrix(FromAdjacencyMatrix(M)) == M.
func (g *Graph) ToAdjacencyMatrix() ([]int, int) {
	n := g.NumNodes()
	m := make([]int, n*n)
	for i := range g.adjKeys {
		m[int(g.adjKeys[i])*n+int(g.adjVals[i])] = 1
	}
	return m, n
}

// ToEdgeList returns the stored directed pairs as parallel key/value
// arrays. Both directions of every undirected edge are present, matching
// the CSR contents exactly.
func (g *Graph) ToEdgeList() (keys, vals []int32) {
	keys = append([]int32(nil), g.adjKeys...)
	vals = append([]int32(nil), g.adjVals...)
	return keys, vals
}

// Intervals returns a copy of the CSR interval (offset) array, size N+1.
func (g *Graph) Intervals() []int32 {
	return append([]int32(nil), g.intervals...)
}
