// Package config provides configuration management for the hle application.
//
// This package defines the fixed deployment defaults for the inference
// engine (model, parallelism, memory budget, cache directory) and the
// prediction run defaults (dataset, temperature, worker count, endpoint).
// Defaults can be overridden by an optional TOML file in the hle home
// directory; no environment variables are consulted.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultModel is the model identifier served by the engine.
	// Both the serve command and the prediction runner use this name.
	DefaultModel = "deepseek-ai/DeepSeek-R1"

	// DefaultTensorParallel is the tensor parallelism degree, matching
	// an 8-accelerator node.
	DefaultTensorParallel = 8

	// DefaultGPUMemoryUtilization is the fraction of accelerator memory
	// the engine may claim, in (0,1].
	DefaultGPUMemoryUtilization = 0.9

	// DefaultReasoningParser selects the engine-side parser that splits
	// reasoning output from the final answer.
	DefaultReasoningParser = "deepseek_r1"

	// DefaultEndpoint is the engine API base URL the prediction runner
	// targets when no URL argument is given. Port 8000 is the engine's
	// conventional default.
	DefaultEndpoint = "http://localhost:8000/v1"

	// DefaultDataset is the benchmark dataset identifier on the
	// Hugging Face hub.
	DefaultDataset = "cais/hle"

	// DefaultTemperature is the sampling temperature for prediction runs.
	DefaultTemperature = 0.6

	// DefaultWorkers is the number of concurrent prediction workers.
	DefaultWorkers = 512

	// DefaultDockerImage is the engine container image used by
	// docker-mode deployment.
	DefaultDockerImage = "vllm/vllm-openai:latest"

	// DefaultHomeDirName is the hle home directory name, created in the
	// user's home directory.
	DefaultHomeDirName = ".hle"

	// DefaultModelsDirName is the artifact cache subdirectory where the
	// engine downloads model weights.
	DefaultModelsDirName = "models"

	// DefaultResultsDirName is the directory where prediction results
	// are written, relative to the working directory.
	DefaultResultsDirName = "results"

	// ConfigFileName is the optional TOML override file inside the hle
	// home directory.
	ConfigFileName = "config.toml"
)

// Config holds the complete resolved application configuration.
//
// Values start from the package defaults and may be overridden by a TOML
// file. Once resolved, the configuration is read-only for the lifetime of
// the process.
type Config struct {
	// Serve holds the engine deployment configuration.
	Serve ServeConfig `toml:"serve"`

	// Predict holds the prediction run configuration.
	Predict PredictConfig `toml:"predict"`
}

// ServeConfig configures how the inference engine is launched.
type ServeConfig struct {
	// Model is the model identifier handed to the engine.
	Model string `toml:"model"`

	// TensorParallel is the tensor parallelism degree.
	TensorParallel int `toml:"tensor_parallel"`

	// GPUMemoryUtilization is the accelerator memory fraction in (0,1].
	GPUMemoryUtilization float64 `toml:"gpu_memory_utilization"`

	// DownloadDir is the artifact cache directory for model weights.
	DownloadDir string `toml:"download_dir"`

	// ReasoningParser is the engine reasoning-output parser name.
	ReasoningParser string `toml:"reasoning_parser"`

	// DockerImage is the container image for docker-mode deployment.
	DockerImage string `toml:"docker_image"`
}

// PredictConfig configures a prediction run.
type PredictConfig struct {
	// Dataset is the benchmark dataset identifier.
	Dataset string `toml:"dataset"`

	// Model is the model name sent in chat completion requests.
	Model string `toml:"model"`

	// Temperature is the sampling temperature.
	Temperature float64 `toml:"temperature"`

	// Workers is the number of concurrent prediction workers.
	Workers int `toml:"workers"`

	// Endpoint is the engine API base URL.
	Endpoint string `toml:"endpoint"`

	// ResultsDir is where per-question result files are written.
	ResultsDir string `toml:"results_dir"`
}

// HomeDir returns the hle home directory path (~/.hle).
//
// Falls back to a relative ".hle" when the user's home directory cannot
// be determined, so the application remains usable in minimal containers.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultHomeDirName
	}
	return filepath.Join(home, DefaultHomeDirName)
}

// NewDefaultConfig creates a configuration populated with the package
// defaults. The artifact cache lives under the hle home directory.
func NewDefaultConfig() *Config {
	return &Config{
		Serve: ServeConfig{
			Model:                DefaultModel,
			TensorParallel:       DefaultTensorParallel,
			GPUMemoryUtilization: DefaultGPUMemoryUtilization,
			DownloadDir:          filepath.Join(HomeDir(), DefaultModelsDirName),
			ReasoningParser:      DefaultReasoningParser,
			DockerImage:          DefaultDockerImage,
		},
		Predict: PredictConfig{
			Dataset:     DefaultDataset,
			Model:       DefaultModel,
			Temperature: DefaultTemperature,
			Workers:     DefaultWorkers,
			Endpoint:    DefaultEndpoint,
			ResultsDir:  DefaultResultsDirName,
		},
	}
}

// Load returns the resolved configuration.
//
// When path is empty, the default location (~/.hle/config.toml) is used
// if it exists; a missing default file is not an error. An explicitly
// given path must exist. TOML values override defaults field by field;
// fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	explicit := path != ""
	if path == "" {
		path = filepath.Join(HomeDir(), ConfigFileName)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
