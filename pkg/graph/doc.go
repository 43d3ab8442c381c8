// Package graph implements the compact collision-graph representation:
// a CSR-style adjacency structure (an interval array of size N+1 plus
// parallel endpoint arrays) with conversions to and from dense adjacency
// matrices and edge lists.
//
// # Invariants
//
// For every stored directed pair (u,v) the reverse pair (v,u) is also
// stored (symmetric closure), and node ids are dense in [0,N). Constructors
// either establish these invariants (FromEdgeList synthesizes missing
// mirrors in undirected mode) or reject inputs that violate them
// (FromAdjacencyMatrix requires a symmetric matrix).
//
// The structure-of-arrays layout keeps conversions pure and cheap: each of
// matrix↔CSR↔edge-list is independent per cell or edge, so a parallel
// backend can be swapped in behind the same interface.
package graph
