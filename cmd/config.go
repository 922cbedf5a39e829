package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BenchConfig is the YAML form of the bench scheduler settings, for runs
// driven from a file instead of flags.
type BenchConfig struct {
	Scheduler         SchedulerConfig `yaml:"scheduler"`
	AllowedBatchSizes []int           `yaml:"allowed_batch_sizes"`
}

type SchedulerConfig struct {
	MaxBatchSize       int `yaml:"max_batch_size"`
	BatchTimeoutMs     int `yaml:"batch_timeout_ms"`
	MaxEnqueuedBatches int `yaml:"max_enqueued_batches"`
	NumBatchThreads    int `yaml:"num_batch_threads"`
}

// LoadBenchConfig reads and parses a bench configuration file.
func LoadBenchConfig(path string) (*BenchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bench config %s: %w", path, err)
	}
	var cfg BenchConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing bench config %s: %w", path, err)
	}
	return &cfg, nil
}
