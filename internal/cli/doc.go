// Package cli builds the command tree, validates user input and maps
// failures onto process exit codes. It translates flags into the
// application's internal configuration.
package cli
