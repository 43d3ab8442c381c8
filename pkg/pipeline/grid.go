package pipeline

import (
	"context"

	"cogentcore.org/core/math32"

	"github.com/PeterZhouSZ/string2shape/pkg/spatial"
)

// GridStats summarizes a broad-phase grid build, for diagnostics.
type GridStats struct {
	Parts          int
	Cells          int
	CandidatePairs int
	Verified       bool
}

// BuildGrid builds the broad-phase grid over an object's part bounds and
// returns its statistics. Non-positive resolutions fall back to the
// configured ones. Developer-facing diagnostic, not part of the production
// contract.
func (r *Runner) BuildGrid(ctx context.Context, filename string, resX, resY, resZ int) (GridStats, error) {
	o, _, err := loadObject(filename)
	if err != nil {
		return GridStats{}, err
	}

	c := r.Config.Collision
	if resX < 1 {
		resX = c.ResX
	}
	if resY < 1 {
		resY = c.ResY
	}
	if resZ < 1 {
		resZ = c.ResZ
	}
	boxes := make([]math32.Box3, o.NumParts())
	for i := range boxes {
		boxes[i] = o.PartBounds(i)
	}
	grid := spatial.Build(boxes, resX, resY, resZ)

	stats := GridStats{
		Parts:          o.NumParts(),
		Cells:          grid.NumCells(),
		CandidatePairs: len(grid.CandidatePairs()),
		Verified:       grid.Verify(boxes),
	}
	r.Logger.Info("built broad-phase grid",
		"file", filename,
		"parts", stats.Parts,
		"cells", stats.Cells,
		"pairs", stats.CandidatePairs,
		"verified", stats.Verified)
	return stats, nil
}
