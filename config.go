package tplib

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the tuning parameters that shape candidate scoring and path
// construction. DefaultConfig returns the values this package was tuned
// against; callers typically start from it and override individual fields.
type Config struct {
	DistanceScale        float64  `yaml:"distance_scale" validate:"gt=0"`
	HeadingScale         float64  `yaml:"heading_scale" validate:"gt=0"`
	CutoffDistance       float64  `yaml:"cutoff_distance" validate:"gt=0"`
	HeadingCutoff        float64  `yaml:"heading_cutoff" validate:"gt=0"`
	ProbabilityThreshold float64  `yaml:"probability_threshold" validate:"gte=0,lte=1"`
	MaxCandidates        int      `yaml:"max_candidates" validate:"gt=0"`
	BeamWidth            int      `yaml:"beam_width" validate:"gt=0"`
	ResamplingDistance   *float64 `yaml:"resampling_distance,omitempty" validate:"omitempty,gt=0"`
}

// DefaultConfig returns the spec-mandated tuning defaults.
func DefaultConfig() Config {
	return Config{
		DistanceScale:        10.0,
		HeadingScale:         2.0,
		CutoffDistance:       50.0,
		HeadingCutoff:        5.0,
		ProbabilityThreshold: 0.25,
		MaxCandidates:        3,
		BeamWidth:            4,
	}
}

var structValidator = validator.New()

// Validate checks that every tuning parameter is within its documented
// range, returning an aggregate error describing every violation found.
func (c Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

// LoadConfig reads tuning parameters from a YAML file, filling in any
// field the file omits from DefaultConfig first. The core Match function
// never calls this itself; it exists so a caller assembling a CLI or
// service around this package has somewhere idiomatic to put a tuning file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "reading config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parsing config file")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
