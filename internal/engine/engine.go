// Package engine launches the vLLM inference engine.
//
// The engine itself is an external collaborator: this package only
// assembles its command line from deployment parameters and supervises the
// resulting process (or container, see docker.go). Engine startup failures
// surface as the engine's own exit status; no validation or recovery is
// attempted here.
package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/rs/zerolog/log"
)

// vllmBinary is the engine executable looked up on PATH.
const vllmBinary = "vllm"

// ServeParams are the deployment parameters mapped onto the engine's
// command-line flags. Values are fixed before launch and never mutated.
type ServeParams struct {
	// Model is the model identifier passed as the serve target.
	Model string

	// TensorParallel is the tensor parallelism degree.
	TensorParallel int

	// GPUMemoryUtilization is the accelerator memory fraction in (0,1].
	GPUMemoryUtilization float64

	// DownloadDir is the artifact cache directory for model weights.
	DownloadDir string

	// ReasoningParser selects the engine-side reasoning-output parser.
	ReasoningParser string
}

// Args assembles the engine command-line arguments (without the binary
// name) from the parameters.
//
// The assembly is a pure function of the parameter values: identical
// parameters always yield an identical argument list.
func (p ServeParams) Args() []string {
	args := []string{
		"serve",
		p.Model,
		"--tensor-parallel-size", strconv.Itoa(p.TensorParallel),
		"--gpu-memory-utilization", strconv.FormatFloat(p.GPUMemoryUtilization, 'g', -1, 64),
		"--download-dir", p.DownloadDir,
	}
	if p.ReasoningParser != "" {
		args = append(args, "--reasoning-parser", p.ReasoningParser)
	}
	return args
}

// CommandLine returns the full command line as a single slice, binary
// name first. Useful for display before launch.
func (p ServeParams) CommandLine() []string {
	return append([]string{vllmBinary}, p.Args()...)
}

// Launch runs the engine in the foreground with stdio passed through.
//
// The call blocks until the engine exits or ctx is cancelled; the engine's
// exit status is returned as-is. The process is placed in the caller's
// terminal session, so engine logs stream directly to the operator.
func Launch(ctx context.Context, params ServeParams) error {
	cmd := exec.CommandContext(ctx, vllmBinary, params.Args()...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	log.Info().Str("binary", vllmBinary).Strs("args", params.Args()).Msg("Launching inference engine")

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("engine exited: %w", err)
	}
	return nil
}
