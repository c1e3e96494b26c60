// Package config loads qsipreflight settings from a YAML file and provides
// defaults for everything a run needs. Flags override file values, file
// values override defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mrsinham/qsipreflight/internal/bids"
)

// DefaultFileName is looked up in the working directory when no --config
// flag is given.
const DefaultFileName = "qsipreflight.yaml"

// Config represents the application configuration.
type Config struct {
	// DataRoot is the default BIDS root used when the CLI omits the
	// data-root argument.
	DataRoot string `yaml:"data_root"`

	// BZeroThreshold is the b-value (s/mm²) at or below which a volume
	// counts as unweighted.
	BZeroThreshold float64 `yaml:"b0_threshold"`

	// Workers is the number of parallel per-acquisition checks.
	// 0 means sequential.
	Workers int `yaml:"workers"`

	// Color enables styled verdict lines on the report.
	Color bool `yaml:"color"`

	// Source configures the pre-conversion DICOM tree check.
	Source SourceConfig `yaml:"source"`
}

// SourceConfig holds srccheck settings. The regexes are the series-name
// fallbacks the conversion toolchain uses when DICOM metadata does not
// reveal the phase-encoding direction.
type SourceConfig struct {
	MapAP string `yaml:"map_ap"`
	MapPA string `yaml:"map_pa"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataRoot:       ".",
		BZeroThreshold: bids.DefaultBZeroThreshold,
		Workers:        0,
		Color:          true,
		Source: SourceConfig{
			MapAP: `app|APA|AP\b`,
			MapPA: `apa|APP|PA\b`,
		},
	}
}

// Load reads a YAML config file over the defaults, so absent keys keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads DefaultFileName from the working directory when it
// exists, and silently falls back to Default otherwise.
func LoadDefault() (Config, error) {
	cfg, err := Load(DefaultFileName)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}
