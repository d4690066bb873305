// Package redact removes secrets from text before it is logged or printed.
//
// Two mechanisms are combined: literal scrubbing of secrets the process
// knows about (the CurseForge API key), and regex heuristics for common
// secret shapes that may be echoed back in upstream error bodies.
package redact
