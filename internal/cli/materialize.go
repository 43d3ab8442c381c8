package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// materializeCommand creates the materialize command.
func (c *CLI) materializeCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "materialize <a.obj> <b.obj> <graph.txt> <out.obj>",
		Short: "Build an object from an encoded graph text and two exemplars",
		Long: `Build a new object from a nine-line encoded graph text.

The text names two exemplar edge lists with node annotations and a target
edge list. Target nodes borrow geometry from whichever exemplar part matches
their contact context, placed by the relative transformations observed in
the exemplars.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMaterialize(cmd.Context(), args[0], args[1], args[2], args[3], noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runMaterialize(ctx context.Context, fileA, fileB, graphFile, out string, noCache bool) error {
	text, err := os.ReadFile(graphFile)
	if err != nil {
		return fmt.Errorf("read graph text: %w", err)
	}

	r, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer r.Close()

	prog := newProgress(c.Logger)
	status, err := r.GraphTextToObject(ctx, fileA, fileB, string(text), out)
	if err != nil {
		return err
	}
	if status != 0 {
		printError("materialization failed")
		return fmt.Errorf("materialize: failed")
	}
	prog.done(fmt.Sprintf("Materialized %s", out))
	printFile(out)
	return nil
}
