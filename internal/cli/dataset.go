package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PeterZhouSZ/string2shape/pkg/config"
	"github.com/PeterZhouSZ/string2shape/pkg/dataset"
)

// datasetCommand creates the dataset management command.
func (c *CLI) datasetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Build and inspect encoded-structure datasets",
	}

	cmd.AddCommand(c.datasetBuildCommand())
	cmd.AddCommand(c.datasetListCommand())

	return cmd
}

// datasetBuildCommand creates the "dataset build" subcommand.
func (c *CLI) datasetBuildCommand() *cobra.Command {
	var (
		ids     bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "build <dir>",
		Short: "Encode every object in a directory into the configured store",
		Long: `Encode every object file in a directory and append the results to the
configured dataset store (a JSONL file by default, MongoDB when configured).

Objects whose collision graph is not fully connected are skipped. Derived
collision-graph exports living next to their sources are never inputs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDatasetBuild(cmd.Context(), args[0], ids, noCache)
		},
	}

	cmd.Flags().BoolVar(&ids, "ids", false, "store node-id annotations alongside each encoding")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runDatasetBuild(ctx context.Context, dir string, ids, noCache bool) error {
	r, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer r.Close()

	store, err := newDatasetStore(ctx, r.Config.Dataset)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	files, err := dataset.Scan(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		printInfo("no object files under %s", dir)
		return nil
	}

	prog := newProgress(c.Logger)
	written, skipped := 0, 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		text, err := r.ToCollisionStrings(ctx, f, ids)
		if err != nil {
			c.Logger.Warn("skipping object", "file", f, "err", err)
			skipped++
			continue
		}
		if text == "" {
			c.Logger.Debug("skipping disconnected object", "file", f)
			skipped++
			continue
		}
		rec := dataset.NewRecord(f, text)
		if ids {
			// The annotation lines follow the structural ones.
			if lines := strings.Split(text, "\n"); len(lines)%2 == 0 {
				half := len(lines) / 2
				rec.Encoded = strings.Join(lines[:half], "\n")
				rec.NodeIDs = strings.Join(lines[half:], "\n")
			}
		}
		rec.Epsilon = r.Config.Collision.Epsilon
		if err := store.Put(ctx, rec); err != nil {
			return fmt.Errorf("store record for %s: %w", f, err)
		}
		written++
	}
	prog.done(fmt.Sprintf("Encoded %d objects", written))

	printSuccess("Wrote %d records", written)
	if skipped > 0 {
		printDetail("%d objects skipped", skipped)
	}
	return nil
}

// datasetListCommand creates the "dataset list" subcommand.
func (c *CLI) datasetListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <file.jsonl>",
		Short: "Print the records of a JSONL dataset file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := dataset.ReadAll(args[0])
			if err != nil {
				return err
			}
			for _, rec := range recs {
				first := rec.Encoded
				if i := strings.IndexByte(first, '\n'); i >= 0 {
					first = first[:i]
				}
				fmt.Printf("%s  %s  %s\n",
					StyleDim.Render(rec.CreatedAt.Format("2006-01-02 15:04")),
					StyleValue.Render(first),
					StyleDim.Render(rec.Source))
			}
			printDetail("%d records", len(recs))
			return nil
		},
	}
}

// newDatasetStore builds the configured dataset backend.
func newDatasetStore(ctx context.Context, cfg config.DatasetConfig) (dataset.Store, error) {
	switch cfg.Backend {
	case "mongo":
		return dataset.NewMongoStore(ctx, dataset.MongoOpts{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	default:
		return dataset.NewFileStore(cfg.Path)
	}
}
