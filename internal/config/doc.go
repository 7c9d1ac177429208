// Package config defines the job model for a generation run and loads it
// from HCL job files.
//
// A job names the grammar documents to parse, the generation request
// (count, seed, root, nesting limit, uniqueness override), pluralization
// overrides and the output sinks. Sink bodies are kept undecoded until the
// sink that owns them supplies its options struct.
package config
