// Package command parses single-letter simulator commands (C, F, K, E, Q,
// N, P, V, S, R, Y, I, T, H) and dispatches them to a Simulator.
package command
