// Package config provides configuration loading and the results path layout.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. A YAML file (microreport.yaml in the working directory, or -config)
//  3. Default values (lowest priority)
//
// The defaults reproduce the fixed naming convention, so a run needs no
// configuration at all.
//
// # Environment Variables
//
// All environment variables follow the pattern MICROREPORT_<SECTION>_<FIELD>:
//
//	MICROREPORT_INPUT_ROOT=/data/run42
//	MICROREPORT_INPUT_SAMPLE_PREFIX=barcode
//	MICROREPORT_LOGGING_LEVEL=debug
//	MICROREPORT_TELEMETRY_TRACING=true
//
// # Path Management
//
// Paths resolves the Results tree (Tables, Plots, staging area, manifest,
// metrics) relative to the input root:
//
//	paths, err := config.NewPaths(cfg)
//	err = paths.EnsureDirectories()
package config
