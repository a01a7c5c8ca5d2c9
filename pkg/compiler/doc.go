// Package compiler wires the parsers, the post-processor and the
// feasibility analyzer into a single Compile call.
//
// The remote parser is tried first. Any failure falls back to the local
// dictionary parser, so a compile never fails because the model is
// unreachable or replied with garbage.
package compiler
