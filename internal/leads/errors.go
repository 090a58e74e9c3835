package leads

import (
	"errors"
	"strings"

	"github.com/rpattn/leadcrm/pkg/validator"
)

var (
	// ErrInvalidStatus is returned for statuses outside the canonical set.
	ErrInvalidStatus = errors.New("invalid lead status")
	// ErrUnknownEmployee is returned when assigning to an employee id that
	// does not exist.
	ErrUnknownEmployee = errors.New("unknown employee")
)

// ValidationFailedError carries per-field messages for a rejected payload.
type ValidationFailedError struct {
	Result validator.ValidationResult
}

func (e *ValidationFailedError) Error() string {
	parts := make([]string, 0, len(e.Result.Errors))
	for _, fe := range e.Result.Errors {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
