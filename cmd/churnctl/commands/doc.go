// Package commands holds the churnctl subcommands. Each command loads
// the CSV given by --csv, runs one analysis over it, and prints the
// result as JSON.
package commands
