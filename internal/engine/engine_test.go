package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultParams() ServeParams {
	return ServeParams{
		Model:                "deepseek-ai/DeepSeek-R1",
		TensorParallel:       8,
		GPUMemoryUtilization: 0.9,
		DownloadDir:          "/data/models",
		ReasoningParser:      "deepseek_r1",
	}
}

func TestArgsContainsFixedDeployment(t *testing.T) {
	args := defaultParams().Args()

	assert.Equal(t, []string{
		"serve",
		"deepseek-ai/DeepSeek-R1",
		"--tensor-parallel-size", "8",
		"--gpu-memory-utilization", "0.9",
		"--download-dir", "/data/models",
		"--reasoning-parser", "deepseek_r1",
	}, args)
}

func TestArgsIdempotent(t *testing.T) {
	params := defaultParams()
	assert.Equal(t, params.Args(), params.Args())
	assert.Equal(t, params.CommandLine(), params.CommandLine())
}

func TestArgsOmitsEmptyReasoningParser(t *testing.T) {
	params := defaultParams()
	params.ReasoningParser = ""

	args := params.Args()
	assert.NotContains(t, args, "--reasoning-parser")
}

func TestCommandLineStartsWithBinary(t *testing.T) {
	cl := defaultParams().CommandLine()
	assert.Equal(t, "vllm", cl[0])
	assert.Equal(t, defaultParams().Args(), cl[1:])
}
