package cli

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/PeterZhouSZ/string2shape/pkg/observability"
)

// cacheProbe records whether the current command was served from cache.
type cacheProbe struct {
	observability.NoopCacheHooks
	hit atomic.Bool
}

func (p *cacheProbe) OnCacheHit(ctx context.Context, kind string) { p.hit.Store(true) }

// collideCommand creates the collide command, which prints the collision
// string encoding of an object file.
func (c *CLI) collideCommand() *cobra.Command {
	var (
		single  bool
		ids     bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "collide <object.obj>",
		Short: "Encode an object's collision graph as collision strings",
		Long: `Encode an object's collision graph as SMILES-like collision strings.

By default the command prints eleven independently sampled encodings, one
per line. Samples differ in traversal order but describe the same graph.
Objects whose collision graph is not fully connected produce no output.

With --single only the first encoding is printed, without the connectivity
requirement. With --ids each sample is followed by a line mapping string
positions back to part indices.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCollide(cmd.Context(), args[0], single, ids, noCache)
		},
	}

	cmd.Flags().BoolVar(&single, "single", false, "print only the first encoding")
	cmd.Flags().BoolVar(&ids, "ids", false, "append node-id annotation lines")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runCollide(ctx context.Context, file string, single, ids, noCache bool) error {
	r, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer r.Close()

	probe := &cacheProbe{}
	observability.SetCacheHooks(probe)
	defer observability.Reset()

	prog := newProgress(c.Logger)
	var text string
	if single {
		text, err = r.ToCollisionString(ctx, file)
	} else {
		text, err = r.ToCollisionStrings(ctx, file, ids)
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Encoded %s", file))

	if text == "" {
		printWarning("collision graph is not connected, nothing to encode")
		return nil
	}
	fmt.Println(text)
	if probe.hit.Load() {
		printDetail("served from cache")
	}
	return nil
}
