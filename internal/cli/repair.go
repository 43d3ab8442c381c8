package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PeterZhouSZ/string2shape/pkg/errors"
	"github.com/PeterZhouSZ/string2shape/pkg/pipeline"
)

// repairCommand creates the repair command.
func (c *CLI) repairCommand() *cobra.Command {
	var (
		bypass  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "repair <a.obj> <b.obj> <target.obj> <out>",
		Short: "Repair a drifted object onto the contacts learned from two exemplars",
		Long: `Repair a drifted target object using contact templates from two exemplars.

The target is first validated against the grammar induced from the exemplars.
A grammar-valid target is repaired by iteratively snapping each contact pair
back onto its learned relative transformation, then re-validated with strict
contact detection. The repaired object is written into the target's directory
under the given output name.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRepair(cmd.Context(), args[0], args[1], args[2], args[3], bypass, noCache)
		},
	}

	cmd.Flags().BoolVar(&bypass, "bypass-validation", false, "write the result even when validation fails (for inspection)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runRepair(ctx context.Context, fileA, fileB, target, out string, bypass, noCache bool) error {
	r, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer r.Close()
	r.BypassValidation = bypass

	spin := newSpinner(ctx, fmt.Sprintf("repairing %s", target))
	spin.Start()
	status, err := r.Repair(ctx, fileA, fileB, target, out)
	spin.Stop()
	if err != nil {
		switch status {
		case pipeline.RepairInvalid:
			printWarning("%s", errors.UserMessage(err))
		default:
			printError("%s", errors.UserMessage(err))
		}
		return err
	}

	printSuccess("Repaired %s", target)
	return nil
}
