package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hle-eval/hle/internal/api"
	"github.com/hle-eval/hle/internal/client"
	"github.com/hle-eval/hle/internal/config"
	"github.com/hle-eval/hle/internal/dataset"
	"github.com/hle-eval/hle/internal/predict"
	"github.com/hle-eval/hle/internal/results"
)

// PredictOptions holds options for the predict command
type PredictOptions struct {
	*GlobalOptions

	// URL is the engine API base URL from the optional positional
	// argument; empty means the configured default
	URL string

	// Dataset overrides the benchmark dataset identifier
	Dataset string

	// Temperature overrides the sampling temperature
	Temperature float64

	// Workers overrides the concurrent worker count
	Workers int

	// TestMode uses the built-in toy questions instead of the dataset
	TestMode bool

	// ResultsDir overrides the results directory
	ResultsDir string
}

// NewPredictCommand creates the predict command.
//
// The predict command runs benchmark predictions against a running
// inference engine. It accepts zero or one positional argument: the
// engine API base URL. With no argument the local default is used.
//
// Usage:
//
//	hle predict [URL]
//
// Examples:
//
//	# Predict against the local engine
//	hle predict
//
//	# Predict against a remote engine
//	hle predict http://10.0.0.5:9000/v1
func NewPredictCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &PredictOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "predict [URL]",
		Short: "Run benchmark predictions against the engine",
		Long: `Run benchmark predictions against a running inference engine.

Questions are loaded from the benchmark dataset (text-only; multimodal
questions are skipped) and attempted concurrently by a pool of workers.
Each worker streams a chat completion from the engine, accumulates the
answer and the reasoning output, parses the structured answer fields, and
saves one JSON file per question into the results directory.

Runs are resumable: questions that already have a result file are
skipped, so an interrupted run can simply be restarted.

The optional URL argument targets a specific engine endpoint and is used
exactly as given. Without it, the local default is used. An engine must
already be reachable there; start one with 'hle serve'.`,
		Example: `  # Predict against the local engine with defaults
  hle predict

  # Predict against a remote engine
  hle predict http://10.0.0.5:9000/v1

  # Smoke-test the pipeline with the built-in toy question
  hle predict --test

  # Lower the concurrency for a small deployment
  hle predict --workers 32`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.URL = args[0]
			}
			return runPredict(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Dataset, "dataset", "",
		"benchmark dataset identifier (default: "+config.DefaultDataset+")")
	cmd.Flags().Float64Var(&opts.Temperature, "temperature", -1,
		fmt.Sprintf("sampling temperature (default: %g)", config.DefaultTemperature))
	cmd.Flags().IntVar(&opts.Workers, "workers", 0,
		fmt.Sprintf("concurrent prediction workers (default: %d)", config.DefaultWorkers))
	cmd.Flags().BoolVar(&opts.TestMode, "test", false,
		"use built-in test questions instead of the dataset")
	cmd.Flags().StringVar(&opts.ResultsDir, "results", "",
		"results directory (default: "+config.DefaultResultsDirName+")")

	return cmd
}

// resolvePredictConfig merges flag overrides into the loaded
// configuration and resolves the target URL from the positional argument.
//
// URL resolution takes the argument verbatim when present, with no
// normalization or validation, and falls back to the configured default
// otherwise.
func resolvePredictConfig(cfg *config.Config, opts *PredictOptions) config.PredictConfig {
	resolved := cfg.Predict

	if opts.URL != "" {
		resolved.Endpoint = opts.URL
	}
	if opts.Dataset != "" {
		resolved.Dataset = opts.Dataset
	}
	if opts.Temperature >= 0 {
		resolved.Temperature = opts.Temperature
	}
	if opts.Workers > 0 {
		resolved.Workers = opts.Workers
	}
	if opts.ResultsDir != "" {
		resolved.ResultsDir = opts.ResultsDir
	}

	return resolved
}

// runPredict executes the predict command logic.
func runPredict(opts *PredictOptions) error {
	cfg, err := loadConfig(opts.GlobalOptions)
	if err != nil {
		return err
	}

	resolved := resolvePredictConfig(cfg, opts)

	fmt.Println("Running predictions:")
	fmt.Printf("  Endpoint:    %s\n", resolved.Endpoint)
	fmt.Printf("  Dataset:     %s\n", resolved.Dataset)
	fmt.Printf("  Model:       %s\n", resolved.Model)
	fmt.Printf("  Temperature: %g\n", resolved.Temperature)
	fmt.Printf("  Workers:     %d\n", resolved.Workers)
	fmt.Printf("  Results Dir: %s\n", resolved.ResultsDir)
	fmt.Println()

	// Cancel in-flight requests on Ctrl+C; completed questions are
	// already on disk and survive for the next run.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, cancelling run...")
		cancel()
	}()

	var questions []api.Question
	if opts.TestMode {
		questions = dataset.TestQuestions()
	} else {
		loader := dataset.NewLoader()
		questions, err = loader.LoadQuestions(ctx, resolved.Dataset)
		if err != nil {
			return fmt.Errorf("failed to load dataset: %w", err)
		}
	}

	store, err := results.NewStore(resolved.ResultsDir)
	if err != nil {
		return err
	}

	runner := predict.NewRunner(
		client.NewClient(resolved.Endpoint),
		store,
		resolved.Model,
		resolved.Temperature,
		resolved.Workers,
	)

	if err := runner.Run(ctx, questions); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("✓ Prediction run complete")
	fmt.Printf("Results saved in %s\n", store.Dir())
	return nil
}
