// Package config provides YAML-backed run configuration for the
// reconstruction CLI, with defaults applied for everything left unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tomorecon/pkg/ordering"
	"tomorecon/pkg/recon"
)

// Config is the application configuration loaded from YAML.
type Config struct {
	// Algorithm selects the reconstruction variant: "ista" or "fista".
	Algorithm string `yaml:"algorithm"`

	// Reconstruction parameters.
	Recon struct {
		// Niter is the iteration budget.
		Niter int `yaml:"niter"`

		// Hyper is the Lipschitz-related step-scale constant L.
		Hyper float64 `yaml:"hyper"`

		// Init is the initialization policy: none, FDK, multigrid or image.
		Init string `yaml:"init"`

		// OrderStrategy orders the angle subsets: ordered, random or
		// angularDistance.
		OrderStrategy string `yaml:"orderStrategy"`

		// Seed fixes the random order strategy for reproducible runs.
		Seed int64 `yaml:"seed"`

		// TVIter is the denoiser inner-iteration budget (FISTA).
		TVIter int `yaml:"tviter"`

		// Lambda is the regularization strength.
		Lambda float64 `yaml:"lambda"`

		// BlockSize is the number of angles per gradient block; zero
		// selects one full-data block per pass.
		BlockSize int `yaml:"blockSize"`

		// NonNegativity clamps negative voxels after each block update.
		NonNegativity bool `yaml:"nonNegativity"`

		// QualityMetrics lists the metrics recorded per iteration.
		QualityMetrics []string `yaml:"qualityMetrics"`
	} `yaml:"recon"`

	// Scan parameters of the demo pipeline.
	Scan struct {
		// NVoxel is the cubic voxel count per axis of the phantom volume.
		NVoxel int `yaml:"nVoxel"`

		// Angles is the number of equally spaced acquisition angles.
		Angles int `yaml:"angles"`
	} `yaml:"scan"`

	// Output parameters.
	Output struct {
		// Volume is the path of the reconstructed raw volume.
		Volume string `yaml:"volume"`

		// Trace is the path of the quality-trace JSONL file.
		Trace string `yaml:"trace"`

		// Plot is the path of the quality plot image; empty disables it.
		Plot string `yaml:"plot"`

		// Verbose enables progress logging.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// Default returns a configuration with the documented defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.Algorithm = "fista"

	cfg.Recon.Niter = 20
	cfg.Recon.Hyper = 2.0e4
	cfg.Recon.Init = "none"
	cfg.Recon.OrderStrategy = "ordered"
	cfg.Recon.TVIter = 20
	cfg.Recon.Lambda = 0.1
	cfg.Recon.QualityMetrics = []string{"RMSE"}

	cfg.Scan.NVoxel = 32
	cfg.Scan.Angles = 60

	cfg.Output.Volume = "reconstruction.raw"
	cfg.Output.Trace = "trace.jsonl"
	cfg.Output.Plot = "trace.png"
	cfg.Output.Verbose = true

	return cfg
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file, creating directories as
// needed.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("config: create directory %s: %w", dir, err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// ReconOptions resolves the string-typed fields and builds the option set
// for the optimizer. Full validation happens in the optimizer constructor.
func (c *Config) ReconOptions() (recon.Options, error) {
	opts := recon.DefaultOptions()
	opts.Niter = c.Recon.Niter
	opts.Hyper = c.Recon.Hyper
	opts.Verbose = c.Output.Verbose
	opts.QualityMetrics = c.Recon.QualityMetrics
	opts.Seed = c.Recon.Seed
	opts.TVIter = c.Recon.TVIter
	opts.Lambda = c.Recon.Lambda
	opts.BlockSize = c.Recon.BlockSize
	opts.NonNegativity = c.Recon.NonNegativity

	init, err := recon.ParseInitPolicy(c.Recon.Init)
	if err != nil {
		return recon.Options{}, err
	}
	opts.Init = init

	strategy, err := ordering.ParseStrategy(c.Recon.OrderStrategy)
	if err != nil {
		return recon.Options{}, err
	}
	opts.OrderStrategy = strategy

	return opts, nil
}
