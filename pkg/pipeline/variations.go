package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/PeterZhouSZ/string2shape/pkg/observability"
	"github.com/PeterZhouSZ/string2shape/pkg/rng"
	"github.com/PeterZhouSZ/string2shape/pkg/variation"
)

// GenerateVariations runs the variation generator over two exemplar object
// files and returns the encoded description of the accepted variations.
// Generated object files are written next to the first exemplar.
func (r *Runner) GenerateVariations(ctx context.Context, fileA, fileB string) (string, error) {
	objA, _, err := loadObject(fileA)
	if err != nil {
		return "", err
	}
	objB, _, err := loadObject(fileB)
	if err != nil {
		return "", err
	}

	v := r.Config.Variation
	var u *rng.Uniform
	if v.Seed1 != 0 || v.Seed2 != 0 {
		u = rng.New(v.Seed1, v.Seed2)
	}
	gen := variation.NewGenerator(u, r.detector())

	start := time.Now()
	observability.Pipeline().OnVariationStart(ctx, fileA, fileB)
	res, err := gen.Generate(ctx, objA, objB, r.Config.Collision.VariationEpsilon, variation.Options{
		Count:                v.Count,
		MaxAttempts:          v.MaxAttempts,
		WriteVariationGraphs: v.WriteVariationGraphs,
		WriteVariations:      v.WriteVariations,
		FixVariation:         v.FixVariation,
		OutDir:               filepath.Dir(fileA),
	})
	accepted := 0
	if res != nil {
		accepted = len(res.Encoded)
	}
	observability.Pipeline().OnVariationComplete(ctx, accepted, time.Since(start), err)
	if err != nil {
		return "", err
	}

	r.Logger.Info("generated variations",
		"accepted", accepted,
		"attempts", res.Attempts,
		"written", len(res.Written),
		"duration", time.Since(start))

	text := res.Text()
	r.retain(text)
	return text, nil
}
