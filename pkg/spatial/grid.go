// Package spatial implements the uniform-grid broad-phase index used for
// part adjacency detection. Part bounding proxies are binned into a fixed
// 3D grid and sorted by cell, so candidate-pair enumeration only considers
// proxies that share a cell.
package spatial

import (
	"sort"

	"cogentcore.org/core/math32"
)

// Grid is a uniform 3D grid over part bounding boxes. Each proxy is
// registered in every cell its box overlaps; the items array is sorted by
// cell id with cellStart giving per-cell intervals (counting-sort layout).
//
// A Grid is immutable after Build and safe for concurrent queries.
type Grid struct {
	bounds   math32.Box3
	res      [3]int
	cellSize math32.Vector3

	cellStart []int32 // len numCells+1
	items     []int32 // proxy ids grouped by cell
}

// Build constructs a grid with the given resolution over the union of the
// proxy boxes. Resolutions below 1 are clamped to 1. Proxies with empty
// boxes are skipped.
func Build(boxes []math32.Box3, resX, resY, resZ int) *Grid {
	g := &Grid{res: [3]int{max(resX, 1), max(resY, 1), max(resZ, 1)}}
	g.bounds = math32.B3Empty()
	for _, b := range boxes {
		if !b.IsEmpty() {
			g.bounds.ExpandByBox(b)
		}
	}
	if g.bounds.IsEmpty() {
		g.cellStart = make([]int32, 2)
		return g
	}
	size := g.bounds.Size()
	g.cellSize = math32.Vec3(
		size.X/float32(g.res[0]),
		size.Y/float32(g.res[1]),
		size.Z/float32(g.res[2]),
	)

	numCells := g.res[0] * g.res[1] * g.res[2]
	type entry struct{ cell, item int32 }
	var entries []entry
	for id, b := range boxes {
		if b.IsEmpty() {
			continue
		}
		lo := g.cellCoords(b.Min)
		hi := g.cellCoords(b.Max)
		for z := lo[2]; z <= hi[2]; z++ {
			for y := lo[1]; y <= hi[1]; y++ {
				for x := lo[0]; x <= hi[0]; x++ {
					cell := int32((z*g.res[1]+y)*g.res[0] + x)
					entries = append(entries, entry{cell: cell, item: int32(id)})
				}
			}
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].cell != entries[j].cell {
			return entries[i].cell < entries[j].cell
		}
		return entries[i].item < entries[j].item
	})

	g.cellStart = make([]int32, numCells+1)
	g.items = make([]int32, len(entries))
	for i, e := range entries {
		g.items[i] = e.item
		g.cellStart[e.cell+1]++
	}
	for c := 1; c <= numCells; c++ {
		g.cellStart[c] += g.cellStart[c-1]
	}
	return g
}

// cellCoords clamps a point into grid coordinates.
func (g *Grid) cellCoords(p math32.Vector3) [3]int {
	rel := p.Sub(g.bounds.Min)
	var out [3]int
	dims := [3]float32{g.cellSize.X, g.cellSize.Y, g.cellSize.Z}
	vals := [3]float32{rel.X, rel.Y, rel.Z}
	for i := 0; i < 3; i++ {
		c := 0
		if dims[i] > 0 {
			c = int(math32.Floor(vals[i] / dims[i]))
		}
		out[i] = math32.Clamp(c, 0, g.res[i]-1)
	}
	return out
}

// Cell returns the proxy ids registered in cell c. The slice aliases
// internal storage.
func (g *Grid) Cell(c int) []int32 {
	return g.items[g.cellStart[c]:g.cellStart[c+1]]
}

// NumCells returns the total cell count.
func (g *Grid) NumCells() int { return len(g.cellStart) - 1 }

// CandidatePairs enumerates unordered proxy pairs that share at least one
// cell, deduplicated across cells. Pair order is unspecified; callers build
// edge sets, so discovery order does not matter.
func (g *Grid) CandidatePairs() [][2]int32 {
	seen := make(map[[2]int32]struct{})
	var out [][2]int32
	for c := 0; c < g.NumCells(); c++ {
		cell := g.Cell(c)
		for i := 0; i < len(cell); i++ {
			for j := i + 1; j < len(cell); j++ {
				a, b := cell[i], cell[j]
				if a == b {
					continue
				}
				if b < a {
					a, b = b, a
				}
				key := [2]int32{a, b}
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, key)
			}
		}
	}
	return out
}

// Verify checks the sort-by-cell construction: every registered proxy box
// must appear in each cell it overlaps, and every cell interval must be
// within bounds. Used by the grid diagnostic entry point.
func (g *Grid) Verify(boxes []math32.Box3) bool {
	if len(g.cellStart) == 0 || g.cellStart[0] != 0 {
		return false
	}
	for c := 1; c < len(g.cellStart); c++ {
		if g.cellStart[c] < g.cellStart[c-1] || int(g.cellStart[c]) > len(g.items) {
			return false
		}
	}
	for id, b := range boxes {
		if b.IsEmpty() {
			continue
		}
		lo := g.cellCoords(b.Min)
		hi := g.cellCoords(b.Max)
		for z := lo[2]; z <= hi[2]; z++ {
			for y := lo[1]; y <= hi[1]; y++ {
				for x := lo[0]; x <= hi[0]; x++ {
					cell := (z*g.res[1]+y)*g.res[0] + x
					if !containsID(g.Cell(cell), int32(id)) {
						return false
					}
				}
			}
		}
	}
	return true
}

func containsID(items []int32, id int32) bool {
	// Cells are small; linear scan beats binary search bookkeeping.
	for _, it := range items {
		if it == id {
			return true
		}
	}
	return false
}
