// Package app runs the report conversion pipeline.
//
// An Application is built from a loaded configuration and runs once:
//
//  1. Discover sample folders under the root
//  2. Load and parse each sample report
//  3. Extract microorganism and AMR marker records
//  4. Write the two tables and render the charts into a staging directory
//  5. Move the artifacts into Results/Tables and Results/Plots
//  6. Write the run manifest and metrics, flush the error log
//
// Per-sample problems are recorded as diagnostics and never stop the run.
// Only failures to produce the results tree or the tables are returned as
// errors.
package app
