// Package render writes resolved leaves and inspection reports as JSON or
// YAML.
package render

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/dbms"
	"github.com/ajitpratap0/strata/pkg/definitions"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/json"
)

// Leaves writes leaves to w in format (config.OutputJSON or
// config.OutputYAML). Absent fields are null in JSON and omitted in YAML.
func Leaves(w io.Writer, format string, leaves []definitions.Resolved) error {
	return Slice(w, format, leaves)
}

// Reports writes DSN inspection reports to w in format.
func Reports(w io.Writer, format string, reports []dbms.Report) error {
	return Slice(w, format, reports)
}

// Slice writes items as a JSON array or a YAML sequence. A nil slice is
// written as an empty one.
func Slice[T any](w io.Writer, format string, items []T) error {
	switch format {
	case config.OutputJSON:
		return writeJSON(w, items)
	case config.OutputYAML:
		return writeYAML(w, items)
	default:
		return errors.New(errors.ErrorTypeConfig, "unsupported output format "+format).
			WithDetail("format", format)
	}
}

func writeJSON[T any](w io.Writer, items []T) error {
	enc := json.NewArrayEncoder(w, "  ")
	for i := range items {
		if err := enc.Encode(items[i]); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode item as JSON").
				WithDetail("index", i)
		}
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write JSON")
	}
	return nil
}

func writeYAML[T any](w io.Writer, items []T) error {
	if items == nil {
		items = []T{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(items); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode items as YAML")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write YAML")
	}
	return nil
}
