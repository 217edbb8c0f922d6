// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config reads the tunable settings of a fit from YAML.
//
//	log: console
//	distance:
//	  step: 1.0e-4
//	  tolerance: 1.0e-9
//	  max_iterations: 60
//	  penalty: 10
//	losses: [linear, "huber:0.05"]
//	jacobian:
//	  method: central
//	  rel_step: 0
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sgostarter/i/l"
	"gopkg.in/yaml.v3"

	"github.com/curioloop/estimator/dataset"
	"github.com/curioloop/estimator/errs"
	"github.com/curioloop/estimator/estimator"
	"github.com/curioloop/estimator/loss"
	"github.com/curioloop/estimator/numdiff"
	"github.com/curioloop/estimator/odr"
)

// Log outputs.
const (
	LogNone    = "none"
	LogConsole = "console"
)

// Jacobian configures the finite difference Jacobian.
type Jacobian struct {
	Method  string  `yaml:"method"`
	RelStep float64 `yaml:"rel_step,omitempty"`
	AbsStep float64 `yaml:"abs_step,omitempty"`
}

// Config holds the settings of a fit.
type Config struct {
	Log      string      `yaml:"log"`
	Distance odr.Options `yaml:"distance"`
	// Losses of the data sets in the order they are added to the estimator.
	Losses   []string `yaml:"losses,omitempty"`
	Jacobian Jacobian `yaml:"jacobian"`
}

// Default returns the configuration used for omitted keys.
func Default() Config {
	return Config{
		Log:      LogNone,
		Distance: odr.DefaultOptions(),
		Jacobian: Jacobian{Method: numdiff.Forward.String()},
	}
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(b []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", errs.ErrParse, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load parses the file at path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}

// Marshal encodes c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch strings.ToLower(c.Log) {
	case LogNone, LogConsole, "":
	default:
		return fmt.Errorf("%w: log output '%s'", errs.ErrUnknownKey, c.Log)
	}
	if err := c.Distance.Check(); err != nil {
		return errs.Incompatible("distance: %v", err)
	}
	if _, err := c.ParseLosses(); err != nil {
		return err
	}
	_, err := c.DiffSpec()
	return err
}

// Logger returns the logger selected by Log.
func (c Config) Logger() l.Wrapper {
	if strings.ToLower(c.Log) == LogConsole {
		return l.NewConsoleLoggerWrapper()
	}
	return l.NewNopLoggerWrapper()
}

// ParseLosses parses Losses.
func (c Config) ParseLosses() ([]loss.Loss, error) {
	return loss.ParseAll(c.Losses)
}

// DiffSpec returns the finite difference settings without bounds.
func (c Config) DiffSpec() (numdiff.Spec, error) {
	m, err := numdiff.ParseMethod(c.Jacobian.Method)
	if err != nil {
		return numdiff.Spec{}, err
	}
	if c.Jacobian.RelStep < 0 {
		return numdiff.Spec{}, errs.Incompatible("negative relative step %g", c.Jacobian.RelStep)
	}
	return numdiff.Spec{Method: m, RelStep: c.Jacobian.RelStep, AbsStep: c.Jacobian.AbsStep}, nil
}

// DataSetOptions returns the options to construct data sets with.
func (c Config) DataSetOptions() []dataset.Option {
	return []dataset.Option{dataset.WithLogger(c.Logger()), dataset.WithDistanceOptions(c.Distance)}
}

// EstimatorOptions returns the options to construct an estimator with.
func (c Config) EstimatorOptions() []estimator.Option {
	return []estimator.Option{estimator.WithLogger(c.Logger())}
}
