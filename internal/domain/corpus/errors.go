package corpus

import "errors"

// Sentinel kinds for corpus errors. ErrInsufficientData is recoverable and
// degrades the current cycle; ErrMissingDataset is a fatal startup error.
var (
	ErrInsufficientData = errors.New("insufficient labeled data")
	ErrMissingDataset   = errors.New("missing human dataset")
	ErrUnknownKind      = errors.New("unknown generation kind")
)
