package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/PeterZhouSZ/string2shape/pkg/observability"
)

// variationFeed forwards candidate events into the running TUI program.
type variationFeed struct {
	observability.NoopPipelineHooks
	program *tea.Program
}

func (h *variationFeed) OnVariationCandidate(ctx context.Context, attempt int, accepted bool) {
	h.program.Send(candidateMsg{attempt: attempt, accepted: accepted})
}

// variationsCommand creates the variations command.
func (c *CLI) variationsCommand() *cobra.Command {
	var (
		count       int
		maxAttempts int
		writeGraphs bool
		fix         bool
		seed1       uint32
		seed2       uint32
		plain       bool
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "variations <a.obj> <b.obj>",
		Short: "Generate grammar-constrained variations of two exemplar objects",
		Long: `Generate variations by recombining fragments of two exemplar objects.

Each accepted variation satisfies the contact grammar induced from the two
exemplars. Generated object files are written next to the first exemplar,
and the encoded string of every accepted variation is printed, one per line.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := variationOverrides{}
			if cmd.Flags().Changed("count") {
				o.count = &count
			}
			if cmd.Flags().Changed("max-attempts") {
				o.maxAttempts = &maxAttempts
			}
			if cmd.Flags().Changed("seed1") {
				o.seed1 = &seed1
			}
			if cmd.Flags().Changed("seed2") {
				o.seed2 = &seed2
			}
			o.writeGraphs = writeGraphs
			o.fix = fix
			return c.runVariations(cmd.Context(), args[0], args[1], o, plain, noCache)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of variations to accept")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "maximum recombination attempts (default 16x count)")
	cmd.Flags().BoolVar(&writeGraphs, "write-graphs", false, "also write edge-list graph files")
	cmd.Flags().BoolVar(&fix, "fix", false, "run the repair loop on each accepted variation")
	cmd.Flags().Uint32Var(&seed1, "seed1", 0, "first RNG seed (0 seeds from the clock)")
	cmd.Flags().Uint32Var(&seed2, "seed2", 0, "second RNG seed")
	cmd.Flags().BoolVar(&plain, "plain", false, "log progress instead of the interactive display")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// variationOverrides carries CLI flag values that replace config fields.
// Nil pointers mean the flag was not set.
type variationOverrides struct {
	count       *int
	maxAttempts *int
	seed1       *uint32
	seed2       *uint32
	writeGraphs bool
	fix         bool
}

func (c *CLI) runVariations(ctx context.Context, fileA, fileB string, o variationOverrides, plain, noCache bool) error {
	r, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer r.Close()

	v := &r.Config.Variation
	if o.count != nil {
		v.Count = *o.count
	}
	if o.maxAttempts != nil {
		v.MaxAttempts = *o.maxAttempts
	}
	if o.seed1 != nil {
		v.Seed1 = *o.seed1
	}
	if o.seed2 != nil {
		v.Seed2 = *o.seed2
	}
	v.WriteVariationGraphs = o.writeGraphs
	v.FixVariation = o.fix

	if plain {
		prog := newProgress(c.Logger)
		text, err := r.GenerateVariations(ctx, fileA, fileB)
		if err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Generated %d variations", countLines(text)))
		if text != "" {
			fmt.Println(text)
		}
		return nil
	}

	program := tea.NewProgram(newVariationModel(v.Count), tea.WithContext(ctx))
	observability.SetPipelineHooks(&variationFeed{program: program})
	defer observability.Reset()

	go func() {
		text, err := r.GenerateVariations(ctx, fileA, fileB)
		program.Send(variationDoneMsg{text: text, err: err})
	}()

	final, err := program.Run()
	if err != nil {
		return err
	}
	m := final.(variationModel)
	if m.err != nil {
		return m.err
	}

	if m.text != "" {
		fmt.Println(m.text)
	}
	printSuccess("Accepted %d variations in %d attempts", countLines(m.text), m.attempts)
	printDetail("objects written next to %s", fileA)
	return nil
}

// countLines counts non-empty lines in text.
func countLines(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Split(text, "\n"))
}
