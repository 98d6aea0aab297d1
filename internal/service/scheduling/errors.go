package scheduling

import (
	"fmt"

	"github.com/samuelvinay91/property-management-service-sub001/internal/domain"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// ConflictError carries the detected conflicts so the caller can display
// them. Retrying is a caller decision (it usually means picking a new
// time), so the engine never retries on its own.
type ConflictError struct {
	Conflicts []domain.Conflict
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 1 {
		return "1 scheduling conflict: " + e.Conflicts[0].Message
	}
	return fmt.Sprintf("%d scheduling conflicts", len(e.Conflicts))
}

// InvalidTransitionError reports a lifecycle operation attempted on a
// booking whose current status does not permit it.
type InvalidTransitionError struct {
	From domain.BookingStatus
	Op   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s booking in status %s", e.Op, e.From)
}
