package app

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hle-eval/hle/internal/config"
	"github.com/hle-eval/hle/internal/results"
)

// ResultsOptions holds options for the results command
type ResultsOptions struct {
	*GlobalOptions

	// Dir overrides the results directory
	Dir string
}

// NewResultsCommand creates the results command.
//
// The results command summarizes saved prediction results in a table.
//
// Usage:
//
//	hle results [--dir DIR]
func NewResultsCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &ResultsOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Summarize saved prediction results",
		Long: `Summarize the prediction results saved by 'hle predict'.

Shows one row per attempted question with the parsed answer and the
model's self-reported confidence, plus totals. Questions whose response
could not be parsed into an answer are counted separately.`,
		Example: `  # Summarize the default results directory
  hle results

  # Summarize a specific run
  hle results --dir runs/2026-08-29`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResults(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "",
		"results directory (default: "+config.DefaultResultsDirName+")")

	return cmd
}

// runResults executes the results command logic.
func runResults(opts *ResultsOptions) error {
	cfg, err := loadConfig(opts.GlobalOptions)
	if err != nil {
		return err
	}

	dir := cfg.Predict.ResultsDir
	if opts.Dir != "" {
		dir = opts.Dir
	}

	store, err := results.NewStore(dir)
	if err != nil {
		return err
	}

	all, err := store.LoadAll()
	if err != nil {
		return err
	}

	if len(all) == 0 {
		fmt.Printf("No results in %s.\n", dir)
		fmt.Println()
		fmt.Println("Run predictions with: hle predict")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "QUESTION\tANSWER\tCONFIDENCE")

	unparsed := 0
	for _, r := range all {
		answer := r.Parsed.Answer
		if answer == "" {
			answer = "(unparsed)"
			unparsed++
		}
		fmt.Fprintf(w, "%s\t%s\t%d%%\n", r.ID, truncate(answer, 60), r.Parsed.Confidence)
	}
	w.Flush()

	fmt.Println()
	fmt.Printf("%d results", len(all))
	if unparsed > 0 {
		fmt.Printf(", %d unparsed", unparsed)
	}
	fmt.Println()

	return nil
}

// truncate shortens s to at most n runes, appending an ellipsis when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
