// Package logging builds the process slog logger from configuration and
// carries per-compile identifiers through contexts.
package logging
