package chunk

import (
	"errors"

	"github.com/okian/tellsight/internal/domain/corpus"
)

// IsInsufficientData reports whether a build failure was caused by the
// corpus running dry, the recoverable degradation case.
func IsInsufficientData(err error) bool {
	return errors.Is(err, corpus.ErrInsufficientData)
}
