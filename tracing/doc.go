// Package tracing wraps OpenTelemetry so that simulator operations can be
// recorded as spans without callers importing the upstream packages.
package tracing
