package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/strata/pkg/errors"
)

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		key    string
	}{
		{"defaults", func(*Settings) {}, ""},
		{"yaml output", func(s *Settings) { s.OutputFormat = OutputYAML }, ""},
		{"missing file", func(s *Settings) { s.DefinitionsFile = "" }, "definitions_file"},
		{"bad level", func(s *Settings) { s.LogLevel = "trace" }, "log_level"},
		{"bad encoding", func(s *Settings) { s.LogEncoding = "logfmt" }, "log_encoding"},
		{"bad output", func(s *Settings) { s.OutputFormat = "toml" }, "output_format"},
		{"negative workers", func(s *Settings) { s.Workers = -1 }, "workers"},
		{"sample rate", func(s *Settings) { s.Tracing.SampleRate = 1.5 }, "tracing.sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSettings()
			tt.mutate(s)
			err := s.Validate()
			if tt.key == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

			var e *errors.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, tt.key, e.Detail(errors.DetailKey))
		})
	}
}

func TestSettings_ValidateMessages(t *testing.T) {
	s := NewSettings()
	s.LogLevel = "trace"
	assert.EqualError(t, s.Validate(), `config: log_level must be debug, info, warn or error, got "trace"`)

	s = NewSettings()
	s.Workers = -2
	assert.EqualError(t, s.Validate(), "config: workers cannot be negative")

	s = NewSettings()
	s.Tracing.SampleRate = -0.5
	assert.EqualError(t, s.Validate(), "config: tracing.sample_rate must be at least 0")

	s = NewSettings()
	s.DefinitionsFile = ""
	assert.EqualError(t, s.Validate(), "config: definitions_file is required")
}

func TestAlternatives(t *testing.T) {
	assert.Equal(t, "json", alternatives([]string{"json"}))
	assert.Equal(t, "json or yaml", alternatives([]string{"json", "yaml"}))
	assert.Equal(t, "a, b or c", alternatives([]string{"a", "b", "c"}))
}

func TestSettings_GetWorkers(t *testing.T) {
	s := NewSettings()
	s.Workers = 3
	assert.Equal(t, 3, s.GetWorkers())

	s.Workers = 0
	assert.Positive(t, s.GetWorkers())
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("STRATA_TEST_A", "alpha")
	t.Setenv("STRATA_TEST_EMPTY", "")

	tests := []struct {
		in, want string
	}{
		{"x: ${STRATA_TEST_A}", "x: alpha"},
		{"${STRATA_TEST_A}-${STRATA_TEST_A}", "alpha-alpha"},
		{"x: ${STRATA_TEST_UNSET}", "x: "},
		{"x: ${STRATA_TEST_UNSET:-fallback}", "x: fallback"},
		{"x: ${STRATA_TEST_EMPTY:-fallback}", "x: fallback"},
		{"x: ${STRATA_TEST_A:-fallback}", "x: alpha"},
		{"x: ${unclosed", "x: ${unclosed"},
		{"no refs", "no refs"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, substituteEnvVars(tt.in), tt.in)
	}
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strata.yaml")

	s := NewSettings()
	s.DefinitionsFile = "defs/evolve.yml"
	s.Workers = 2
	s.Metrics.Enabled = true
	require.NoError(t, Save(path, s))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strata.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, DefaultDefinitionsFile, s.DefinitionsFile)
	assert.Equal(t, OutputJSON, s.OutputFormat)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [1"), 0o600))
	_, err = Load(path)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	require.NoError(t, os.WriteFile(path, []byte("output_format: csv\n"), 0o600))
	_, err = Load(path)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}
