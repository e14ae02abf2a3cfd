package model

// ResponseStatus tags the outcome of one worker-chunk round trip. Timeouts
// and invalid responses are first-class values, not nulls: scoring treats
// both as zero evidence.
type ResponseStatus int

const (
	// StatusOK means the response passed structural validation.
	StatusOK ResponseStatus = iota
	// StatusTimeout means the worker did not answer before the deadline.
	StatusTimeout
	// StatusInvalid means the response was malformed, had the wrong
	// cardinality, or carried out-of-range scores.
	StatusInvalid
)

// String returns a log-friendly status name.
func (s ResponseStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTimeout:
		return "timeout"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ChunkResult is one worker's outcome for one dispatched chunk.
// Predictions is populated only when Status is StatusOK, in which case it
// holds exactly one prediction per hand in chunk order.
type ChunkResult struct {
	UID         int
	Chunk       int
	Status      ResponseStatus
	Predictions []Prediction
}
