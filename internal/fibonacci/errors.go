package fibonacci

import (
	"fmt"

	apperrors "github.com/agbru/labwork/internal/errors"
)

// OverflowError reports an index whose value does not fit the evaluator's
// integer type.
type OverflowError struct {
	// Index is the requested index.
	Index int
	// Limit is the largest index the evaluator can represent.
	Limit int
}

// Error returns a message naming the index and the representable limit.
func (e OverflowError) Error() string {
	return fmt.Sprintf("F(%d) overflows uint64 (largest representable index is %d)", e.Index, e.Limit)
}

// IndexLimitError reports an index beyond a configured cache bound.
type IndexLimitError struct {
	Index int
	Limit int
}

func (e IndexLimitError) Error() string {
	return fmt.Sprintf("index %d exceeds the evaluator limit of %d", e.Index, e.Limit)
}

// negativeIndexError is returned for any n < 0.
func negativeIndexError(n int) error {
	return apperrors.ValidationError{
		Field:   "n",
		Message: fmt.Sprintf("index must be non-negative, got %d", n),
	}
}
