// Package progress keeps aggregated scheduler counters (processes created
// and terminated, context switches, blocks, wake-ups, messages) for a single
// simulator session.
package progress
