package dispatch

import "errors"

// Sentinel kinds for response validation failures. These never leave the
// dispatcher as errors; they are folded into StatusInvalid outcomes and
// surface only in debug logs.
var (
	ErrCardinality = errors.New("prediction count does not match hand count")
	ErrOutOfRange  = errors.New("risk score outside [0,1]")
	ErrBadStatus   = errors.New("unexpected HTTP status")
)
