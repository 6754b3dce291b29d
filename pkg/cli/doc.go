// Package cli provides shared helpers for the embacle command-line
// interface: typed command errors, output formatting for audit and
// diagnostic listings, and signal handling for graceful shutdown.
//
// The helpers are intentionally small. Commands own their own flag
// definitions and wiring; this package only covers the pieces every
// subcommand repeats.
package cli
