package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/strata/pkg/errors"
)

// Load reads a YAML settings file over the defaults. ${VAR} and
// ${VAR:-default} references are replaced from the environment first.
func Load(filePath string) (*Settings, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: path comes from the --config flag
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read config file").
			WithDetail(errors.DetailPath, filePath)
	}

	s := NewSettings()
	if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), s); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML").
			WithDetail(errors.DetailPath, filePath)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes settings as YAML.
func Save(filePath string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to marshal YAML")
	}

	if err := os.WriteFile(filePath, data, 0o600); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write config file").
			WithDetail(errors.DetailPath, filePath)
	}

	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// An unclosed reference is left as is.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		b.WriteString(lookupEnv(content[start+2 : end]))
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}

func lookupEnv(ref string) string {
	name, fallback, hasDefault := strings.Cut(ref, ":-")
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	if hasDefault {
		return fallback
	}
	return ""
}
