// Package config holds the runtime settings of the strata CLI: where the
// definitions file lives, how to log, how to render output, and which
// observability hooks to enable.
//
// Example usage:
//
//	s := config.NewSettings()
//	s.OutputFormat = config.OutputYAML
//
//	if err := s.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ajitpratap0/strata/pkg/errors"
)

// DefaultDefinitionsFile is read when no file is given.
const DefaultDefinitionsFile = "evolve.yml"

// Output formats for rendered leaves.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Settings is the complete CLI configuration. Field names double as the
// viper keys the CLI binds flags and STRATA_* environment variables to.
type Settings struct {
	// DefinitionsFile is the path of the migration definitions document
	DefinitionsFile string `yaml:"definitions_file" mapstructure:"definitions_file" validate:"required"`
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"oneof=debug info warn error"`
	// LogEncoding is json or console
	LogEncoding string `yaml:"log_encoding" mapstructure:"log_encoding" validate:"oneof=json console"`
	// OutputFormat selects how resolved leaves are printed (json or yaml)
	OutputFormat string `yaml:"output_format" mapstructure:"output_format" validate:"oneof=json yaml"`
	// Workers bounds how many roots are flattened concurrently
	Workers int `yaml:"workers" mapstructure:"workers" validate:"min=0"`

	Tracing TracingSettings `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsSettings `yaml:"metrics" mapstructure:"metrics"`
}

// TracingSettings controls the OpenTelemetry exporter.
type TracingSettings struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// MetricsSettings controls the prometheus collector.
type MetricsSettings struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// NewSettings returns settings with defaults that work for a definitions
// file in the current directory.
func NewSettings() *Settings {
	return &Settings{
		DefinitionsFile: DefaultDefinitionsFile,
		LogLevel:        "info",
		LogEncoding:     "json",
		OutputFormat:    OutputJSON,
		Workers:         runtime.NumCPU(),
		Tracing: TracingSettings{
			Enabled:    false,
			SampleRate: 1.0,
		},
		Metrics: MetricsSettings{
			Enabled: false,
		},
	}
}

// Validate checks required fields and value ranges. The first violation is
// returned as a config error whose key detail is the settings key.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid settings")
	}
	fe := fieldErrs[0]
	// Namespace is "Settings.tracing.sample_rate"; drop the type name.
	_, key, _ := strings.Cut(fe.Namespace(), ".")
	return invalid(key, violation(fe))
}

// GetWorkers returns the number of workers, ensuring it's at least 1
func (s *Settings) GetWorkers() int {
	if s.Workers <= 0 {
		return runtime.NumCPU()
	}
	return s.Workers
}

var validate = newValidator()

// newValidator names fields by their settings key instead of the Go name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		return name
	})
	return v
}

func violation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be %s, got %q", alternatives(strings.Fields(fe.Param())), fe.Value())
	case "min":
		if fe.Param() == "0" && fe.Kind() == reflect.Int {
			return "cannot be negative"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// alternatives renders [a b c] as "a, b or c".
func alternatives(opts []string) string {
	if len(opts) < 2 {
		return strings.Join(opts, "")
	}
	return strings.Join(opts[:len(opts)-1], ", ") + " or " + opts[len(opts)-1]
}

func invalid(key, msg string) error {
	return errors.New(errors.ErrorTypeConfig, key+" "+msg).WithDetail(errors.DetailKey, key)
}
