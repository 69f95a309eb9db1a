// Package config provides settings management for the strata CLI.
//
// # Key Features
//
// - Settings: one structure for every knob the CLI exposes
// - Environment variable substitution with ${VAR_NAME} and ${VAR_NAME:-default}
// - Defaults through NewSettings and range checks through Validate
//
// # Usage
//
// ## Loading a settings file
//
//	s, err := config.Load("strata.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// ## Environment Variable Substitution
//
//	definitions_file: ${STRATA_DEFINITIONS:-evolve.yml}
//	log_level: ${LOG_LEVEL}
//
// Unset variables without a default become empty strings.
//
// The CLI layers flags and STRATA_* environment variables over the file
// through viper, so a file is optional.
//
// # File layout
//
//	definitions_file: evolve.yml
//	log_level: info
//	log_encoding: json
//	output_format: json
//	workers: 4
//	tracing:
//	  enabled: false
//	  sample_rate: 1.0
//	metrics:
//	  enabled: true
package config
