package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PeterZhouSZ/string2shape/pkg/collision"
	"github.com/PeterZhouSZ/string2shape/pkg/config"
	"github.com/PeterZhouSZ/string2shape/pkg/viz"
	"github.com/PeterZhouSZ/string2shape/pkg/wfobject"
)

// graphCommand creates the graph command, which renders an object's
// collision graph as a diagram.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph <object.obj>",
		Short: "Render an object's collision graph as a diagram",
		Long: `Render an object's collision graph as a Graphviz diagram.

Nodes are part types, edges are detected contacts. The dot format prints to
stdout unless --output is given; svg and png require --output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), args[0], format, output, detailed)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg, png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout for dot if empty)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include part indices in node labels")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, file, format, output string, detailed bool) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	o, err := wfobject.Load(file)
	if err != nil {
		return err
	}
	det := collision.NewDetector(collision.WithResolution(
		cfg.Collision.ResX, cfg.Collision.ResY, cfg.Collision.ResZ))
	g, err := det.ComputeCollisionGraph(o, cfg.Collision.Epsilon)
	if err != nil {
		return err
	}

	dot := viz.ToDOT(g, o.PartTypes(), viz.Options{Detailed: detailed})

	var data []byte
	switch format {
	case "dot":
		if output == "" {
			fmt.Print(dot)
			return nil
		}
		data = []byte(dot)
	case "svg":
		data, err = viz.RenderSVG(ctx, dot)
	case "png":
		data, err = viz.RenderPNG(ctx, dot)
	default:
		return fmt.Errorf("unknown format %q (want dot, svg, or png)", format)
	}
	if err != nil {
		return err
	}
	if output == "" {
		return fmt.Errorf("--output is required for %s", format)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}
	printSuccess("Rendered collision graph")
	printFile(output)
	printGraphStats(o.NumParts(), g.NumEdges(), false)
	return nil
}
