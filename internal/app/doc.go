// Package app contains the core application logic. It layers the job file
// and command-line overrides into one job, builds the engine from the
// grammar files, and hands every generated batch to the configured sinks.
// It is decoupled from any specific entrypoint like a CLI.
package app
