// Package utils holds small helpers shared by the toonboard internals: the
// JSON-over-HTTP POST used by model providers and rune-safe string
// truncation for logs and diagnostics.
package utils
