// Package health reports whether the compiler's collaborators (schema
// catalog, probe database, history store) are usable. The serve command
// exposes it as /healthz and /readyz next to /metrics.
package health
