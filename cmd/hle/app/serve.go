package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hle-eval/hle/internal/config"
	"github.com/hle-eval/hle/internal/engine"
)

// ServeOptions holds options for the serve command
type ServeOptions struct {
	*GlobalOptions

	// Docker runs the engine in a container instead of a host process
	Docker bool

	// Image overrides the engine container image in docker mode
	Image string
}

// NewServeCommand creates the serve command.
//
// The serve command launches the vLLM inference engine with the fixed
// deployment configuration: the benchmark model, tensor parallelism
// across 8 accelerators, a 0.9 accelerator memory fraction, the artifact
// cache directory, and the reasoning-output parser.
//
// Usage:
//
//	hle serve [--docker] [--image IMAGE]
//
// Examples:
//
//	# Launch the engine as a host process (requires vllm on PATH)
//	hle serve
//
//	# Launch the engine in a Docker container
//	hle serve --docker
func NewServeCommand(globalOpts *GlobalOptions) *cobra.Command {
	opts := &ServeOptions{
		GlobalOptions: globalOpts,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Launch the inference engine",
		Long: `Launch the vLLM inference engine with the benchmark deployment configuration.

The resolved configuration is printed before launch. The engine owns its
own startup and failure behavior: any misconfiguration surfaces as the
engine's own startup failure, and its exit status becomes this command's
exit status. The engine listens on its conventional port (8000).

By default the engine runs as a host process, which requires the vllm
executable on PATH. With --docker the same command line runs inside a
container with port 8000 published and the artifact cache mounted as the
model cache.

Press Ctrl+C to stop the engine.`,
		Example: `  # Launch with defaults
  hle serve

  # Launch in Docker with a specific engine image
  hle serve --docker --image vllm/vllm-openai:v0.8.3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Docker, "docker", false,
		"run the engine in a Docker container")
	cmd.Flags().StringVar(&opts.Image, "image", "",
		"engine container image (docker mode only)")

	return cmd
}

// runServe executes the serve command logic.
//
// This function resolves the deployment parameters, prints them, ensures
// the artifact cache directory exists, and blocks on the engine until it
// exits or an interrupt arrives.
func runServe(opts *ServeOptions) error {
	cfg, err := loadConfig(opts.GlobalOptions)
	if err != nil {
		return err
	}

	params := engine.ServeParams{
		Model:                cfg.Serve.Model,
		TensorParallel:       cfg.Serve.TensorParallel,
		GPUMemoryUtilization: cfg.Serve.GPUMemoryUtilization,
		DownloadDir:          cfg.Serve.DownloadDir,
		ReasoningParser:      cfg.Serve.ReasoningParser,
	}

	fmt.Println("Starting inference engine:")
	fmt.Printf("  Model:                  %s\n", params.Model)
	fmt.Printf("  Tensor Parallel Size:   %d\n", params.TensorParallel)
	fmt.Printf("  GPU Memory Utilization: %g\n", params.GPUMemoryUtilization)
	fmt.Printf("  Download Dir:           %s\n", params.DownloadDir)
	fmt.Printf("  Reasoning Parser:       %s\n", params.ReasoningParser)
	fmt.Printf("  Command:                %s\n", strings.Join(params.CommandLine(), " "))
	fmt.Println()

	if err := config.EnsureDir(params.DownloadDir); err != nil {
		return err
	}

	// Cancel the engine context on Ctrl+C so shutdown propagates to the
	// process or container.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, stopping engine...")
		cancel()
	}()

	if opts.Docker {
		image := opts.Image
		if image == "" {
			image = cfg.Serve.DockerImage
		}

		eng, err := engine.NewDockerEngine(image)
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.Launch(ctx, params); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}

	if err := engine.Launch(ctx, params); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
