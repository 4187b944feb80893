// Package app provides the command-line interface implementation for hle.
//
// This package contains all CLI commands and their implementations,
// organized hierarchically with a root command and subcommands built on
// cobra.
package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hle-eval/hle/internal/config"
)

const (
	// cliName is the name of the CLI application
	cliName = "hle"

	// cliDescription is the short description shown in help text
	cliDescription = "hle - benchmark harness for reasoning models on vLLM"
)

// GlobalOptions holds options that are common to all commands
type GlobalOptions struct {
	// ConfigFile is an optional TOML configuration file overriding the
	// built-in defaults
	ConfigFile string

	// Verbose enables debug-level logging
	Verbose bool
}

// NewHLECommand creates the root hle command with all subcommands.
//
// The root command provides the main entry point for the CLI. It sets up
// global flags, initializes logging, and registers all subcommands.
func NewHLECommand() *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:   cliName,
		Short: cliDescription,
		Long: `hle runs benchmark predictions against a reasoning model served by vLLM.

The typical workflow is two sequential steps:

  1. 'hle serve' starts the inference engine with the fixed deployment
     configuration (model, tensor parallelism, memory budget, cache
     directory, reasoning parser).
  2. 'hle predict' loads the benchmark dataset and streams predictions
     from the running engine with many concurrent workers, saving one
     result file per question. Interrupted runs resume where they left
     off.

The two steps are independent: predict only assumes an engine is
reachable at the target URL, wherever it runs.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging(opts.Verbose)
		},
	}

	// Add global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "",
		"TOML config file overriding defaults (default: ~/.hle/config.toml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false,
		"verbose output")

	// Add subcommands
	cmd.AddCommand(
		NewServeCommand(opts),
		NewPredictCommand(opts),
		NewChatCommand(opts),
		NewResultsCommand(opts),
		NewVersionCommand(opts),
	)

	return cmd
}

// initLogging configures the global zerolog logger for console output.
func initLogging(verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}

// loadConfig resolves the application configuration for a command.
func loadConfig(opts *GlobalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// checkError prints an error and exits if err is not nil.
//
// This is a convenience function for fatal error handling in CLI commands.
func checkError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
