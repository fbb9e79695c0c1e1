// Package cli defines the Cobra command tree for the envmint CLI. Each file
// in this package registers one top-level command (scan, recommend, generate,
// probe, etc.) with the root command. Command implementations delegate to
// internal packages for the work and only handle flag parsing, I/O
// formatting and user interaction.
package cli
