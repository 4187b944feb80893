package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "deepseek-ai/DeepSeek-R1", cfg.Serve.Model)
	assert.Equal(t, 8, cfg.Serve.TensorParallel)
	assert.Equal(t, 0.9, cfg.Serve.GPUMemoryUtilization)
	assert.Equal(t, "deepseek_r1", cfg.Serve.ReasoningParser)
	assert.NotEmpty(t, cfg.Serve.DownloadDir)

	assert.Equal(t, "cais/hle", cfg.Predict.Dataset)
	assert.Equal(t, "deepseek-ai/DeepSeek-R1", cfg.Predict.Model)
	assert.Equal(t, 0.6, cfg.Predict.Temperature)
	assert.Equal(t, 512, cfg.Predict.Workers)
	assert.Equal(t, "http://localhost:8000/v1", cfg.Predict.Endpoint)
	assert.Equal(t, "results", cfg.Predict.ResultsDir)
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[serve]
tensor_parallel = 4
download_dir = "/mnt/weights"

[predict]
workers = 64
endpoint = "http://gpu-node:8000/v1"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Overridden fields.
	assert.Equal(t, 4, cfg.Serve.TensorParallel)
	assert.Equal(t, "/mnt/weights", cfg.Serve.DownloadDir)
	assert.Equal(t, 64, cfg.Predict.Workers)
	assert.Equal(t, "http://gpu-node:8000/v1", cfg.Predict.Endpoint)

	// Untouched fields keep their defaults.
	assert.Equal(t, "deepseek-ai/DeepSeek-R1", cfg.Serve.Model)
	assert.Equal(t, 0.9, cfg.Serve.GPUMemoryUtilization)
	assert.Equal(t, 0.6, cfg.Predict.Temperature)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[serve\nbroken"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
