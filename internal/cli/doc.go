// Package cli defines the Cobra command tree for the appspace CLI. Each file
// in this package registers one top-level command (search, install, ext, etc.)
// with the root command. Command implementations delegate to internal packages
// for the acquisition logic and only handle flag parsing and output formatting.
package cli
