// Package strata resolves hierarchical migration definitions.
//
// A definitions file is a YAML sequence of trees. Every node wraps its
// fields in a MigrationDefinitions mapping and may carry Children. A child
// inherits every field it leaves unset from its ancestors, so a file can
// state a connection string or a Dbms once and vary only Locations or
// Command per tenant. Flattening the trees yields one fully resolved
// definition per leaf, in document order.
//
// # Merge rules
//
// Each field has a fixed policy:
//
//   - Scalars (Dbms, Command, TargetVersion, OutOfOrder, ...) are
//     replaced by the child when the child sets them, including to false,
//     0 or the empty string.
//   - Lists (Locations, Schemas, ...) are replaced as a whole; an empty
//     child list replaces a non-empty parent list.
//   - Placeholders is a dictionary: the child's keys are added to the
//     parent's and win on conflict.
//   - ConnectionStringTemplate is merged field by field with the same
//     rules.
//
// Unknown enum tokens (Dbms: Postgres) and unparsable numbers or booleans
// are treated as absent and inherited, with a warning logged.
//
// # Quick Start
//
//	leaves, err := loader.New(loader.WithWorkers(4)).Resolve(ctx, "evolve.yml")
//	if err != nil {
//	    return err
//	}
//	for _, leaf := range leaves {
//	    fmt.Println(leaf.Summary())
//	}
//
// Or from the command line:
//
//	strata flatten -f evolve.yml -o yaml
//	strata validate -f evolve.yml
//	strata inspect -f evolve.yml
//
// # Key Packages
//
//	pkg/document     - YAML to tagged value tree (anchors and merge keys included)
//	pkg/definitions  - Node model, decoding, merge table and flattening
//	pkg/optional     - Present-or-absent values
//	pkg/loader       - Read, parse and flatten a file with logging, spans and metrics
//	pkg/dbms         - Driver-level inspection of resolved connection strings
//	pkg/render       - JSON and YAML output
//	pkg/config       - CLI settings with ${VAR} substitution
//	pkg/errors       - Structured error types
//	pkg/logger       - Structured logging
//	pkg/metrics      - Prometheus collectors
//	internal/pipeline - Concurrent flattening of independent roots
//
// # Configuration
//
// The CLI reads settings from, in increasing precedence: defaults, a
// --config YAML file, STRATA_* environment variables (a .env file in the
// working directory is loaded first) and flags:
//
//	definitions_file: evolve.yml
//	log_level: info
//	output_format: json
//	workers: 4
//	tracing:
//	  enabled: false
//	  sample_rate: 1.0
//	metrics:
//	  enabled: false
package strata
