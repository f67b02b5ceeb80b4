// Package throttle implements the fixed inter-request pacing of the fetch
// loop. The pause is a deliberate constant applied before every request,
// including the first of a session; it is not derived from server feedback
// and never adapts.
package throttle

import (
	"time"
)

// DefaultDelay is the pause applied before every gateway request.
const DefaultDelay = 2 * time.Second

// State is a snapshot of the pacer after its most recent wait.
type State struct {
	// WaitsCompleted is the number of pre-request pauses finished so far.
	WaitsCompleted int

	// LastWaitAt is when the most recent pause finished.
	LastWaitAt time.Time

	// TotalWaited is the cumulative time spent pausing.
	TotalWaited time.Duration
}

// Idle reports whether the pacer has not paced any request yet.
func (s State) Idle() bool {
	return s.WaitsCompleted == 0
}
