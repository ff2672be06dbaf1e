// Package analysis turns the district datasets into a streamed site
// feasibility report.
package analysis

import "errors"

var (
	// ErrConfiguration means the generation credential is missing or is a
	// placeholder. Nothing is sent to the backend.
	ErrConfiguration = errors.New("generation backend is not configured")

	// ErrBackend wraps any failure raised by the generation backend. The
	// report in progress is abandoned.
	ErrBackend = errors.New("generation backend failed")

	// ErrUnresolvable means a display name does not map to an analysable
	// district.
	ErrUnresolvable = errors.New("district is not available for analysis")
)
