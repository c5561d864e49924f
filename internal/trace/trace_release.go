//go:build !dev

// Package trace wraps runtime/trace for development builds.
// Release builds get these no-ops.
package trace

import "context"

// EnvVar names the trace output file
const EnvVar = "AUTOCOMPLETE_TRACE"

// Init is a no-op in release builds
func Init() func() {
	return func() {}
}

// Region is a no-op in release builds
func Region(_ context.Context, _ string) func() {
	return func() {}
}

// Log is a no-op in release builds
func Log(_ context.Context, _, _ string) {
}

// IsEnabled is always false in release builds
func IsEnabled() bool {
	return false
}
