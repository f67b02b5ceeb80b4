package pagination

import "fmt"

// Inconsistency reasons reported by InconsistencyError.
const (
	// ReasonTotalDrift means the gateway reported a different collection
	// total than on the first page of the session.
	ReasonTotalDrift = "total_drift"

	// ReasonShortPage means a page carried fewer records than the gateway's
	// own total implies for its offset.
	ReasonShortPage = "short_page"
)

// InconsistencyError is a terminal pagination failure: the gateway's
// responses stopped agreeing with its own bookkeeping. Continuing would
// silently under-count, so the session fails instead.
type InconsistencyError struct {
	Endpoint string
	Reason   string
	Offset   int
	Expected int
	Got      int
}

// Error implements the error interface.
func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("pagination inconsistency on %s at offset %d: %s (expected %d, got %d)",
		e.Endpoint, e.Offset, e.Reason, e.Expected, e.Got)
}
