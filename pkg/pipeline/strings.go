package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/PeterZhouSZ/string2shape/pkg/cache"
	"github.com/PeterZhouSZ/string2shape/pkg/codec"
	"github.com/PeterZhouSZ/string2shape/pkg/observability"
)

// resamples is the number of additional stochastic encodings produced by
// ToCollisionStrings on top of the base one.
const resamples = 10

// ToCollisionString loads an object, computes its collision graph at the
// configured epsilon, and returns the first line of the encoded structure.
func (r *Runner) ToCollisionString(ctx context.Context, filename string) (string, error) {
	text, err := r.collisionStrings(ctx, filename, 1, false, false)
	if err != nil {
		return "", err
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	r.retain(text)
	return text, nil
}

// ToCollisionStrings returns up to eleven independently sampled encodings
// of the object's collision graph, one per line. With appendNodeIDs, one
// node-id annotation line per sample follows the structural lines. Returns
// empty text when the collision graph is not fully connected.
func (r *Runner) ToCollisionStrings(ctx context.Context, filename string, appendNodeIDs bool) (string, error) {
	text, err := r.collisionStrings(ctx, filename, 1+resamples, appendNodeIDs, true)
	if err != nil {
		return "", err
	}
	r.retain(text)
	return text, nil
}

// collisionStrings is the shared implementation: load, hash, consult the
// cache, compute, encode samples times, store.
func (r *Runner) collisionStrings(ctx context.Context, filename string, samples int, appendNodeIDs, requireConnected bool) (string, error) {
	o, data, err := loadObject(filename)
	if err != nil {
		return "", err
	}
	objHash := cache.Hash(data)

	c := r.Config.Collision
	key := r.Keyer.CollisionKey(objHash, cache.CollisionKeyOpts{
		Epsilon:       c.Epsilon,
		ResX:          c.ResX,
		ResY:          c.ResY,
		ResZ:          c.ResZ,
		Samples:       samples,
		AppendNodeIDs: appendNodeIDs,
	})
	if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "collision")
		return string(cached), nil
	}
	observability.Cache().OnCacheMiss(ctx, "collision")

	start := time.Now()
	observability.Pipeline().OnCollideStart(ctx, filename, c.Epsilon)
	g, err := r.detector().ComputeCollisionGraph(o, c.Epsilon)
	edges := 0
	if g != nil {
		edges = g.NumEdges()
	}
	observability.Pipeline().OnCollideComplete(ctx, filename, edges, time.Since(start), err)
	if err != nil {
		return "", err
	}
	r.Logger.Info("computed collision graph",
		"file", filename,
		"parts", o.NumParts(),
		"edges", g.NumEdges(),
		"duration", time.Since(start))

	if requireConnected && !g.IsConnected() {
		r.Logger.Warn("collision graph not connected, returning empty text", "file", filename)
		return "", nil
	}

	u := seededRNG(objHash)
	structs := make([]string, 0, samples)
	ids := make([]string, 0, samples)
	for i := 0; i < samples; i++ {
		s, order := codec.EncodeStructure(g, g.Types, u)
		structs = append(structs, s)
		ids = append(ids, codec.FormatNodeIDs(order))
	}
	lines := structs
	if appendNodeIDs {
		lines = append(lines, ids...)
	}
	text := strings.Join(lines, "\n")

	if err := r.Cache.Set(ctx, key, []byte(text), cache.TTLCollision); err == nil {
		observability.Cache().OnCacheSet(ctx, "collision", len(text))
	}
	return text, nil
}
