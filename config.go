package stlin

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall configuration: external compiler settings and
// augmentation probabilities.
type Config struct {
	Name     string         `yaml:"name"`
	Compiler CompilerConfig `yaml:"compiler"`
	Augment  AugmentConfig  `yaml:"augment"`
}

// CompilerConfig configures the optional external-compiler validation stage.
type CompilerConfig struct {
	Enabled bool          `yaml:"enabled"`
	Path    string        `yaml:"path"`
	LibPath string        `yaml:"lib_path"`
	Timeout time.Duration `yaml:"timeout"`
}

// AugmentConfig holds the per-mutation probabilities used by augmentation.
// Zero values fall back to the rewriter defaults.
type AugmentConfig struct {
	SwapProb    float64 `yaml:"swap_prob"`
	InvertProb  float64 `yaml:"invert_prob"`
	RenameProb  float64 `yaml:"rename_prob"`
	ReorderProb float64 `yaml:"reorder_prob"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Name: "stlin",
		Compiler: CompilerConfig{
			Path:    "iec2c",
			Timeout: 10 * time.Second,
		},
	}
}

func parseConfigurationFile(configurationPath string) (Config, error) {
	config := DefaultConfig()

	// Read the configuration file
	f, err := os.Open(configurationPath)
	if err != nil {
		return config, err
	}
	defer f.Close()

	// Parse the configuration file
	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
