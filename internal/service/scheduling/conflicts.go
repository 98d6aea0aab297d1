package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samuelvinay91/property-management-service-sub001/internal/domain"
	"github.com/samuelvinay91/property-management-service-sub001/internal/store"
)

// Candidate describes a prospective booking window to check for
// conflicts. ExcludeBookingID drops a known booking (typically the one
// being rescheduled) from both passes.
type Candidate struct {
	StartTime        time.Time
	EndTime          time.Time
	PropertyID       string
	AssigneeID       string
	ExcludeBookingID *uuid.UUID
}

// Only live bookings can conflict; cancelled, completed, no-show and
// rescheduled-away records never block a window.
var conflictStatuses = []domain.BookingStatus{
	domain.BookingStatusPending,
	domain.BookingStatusConfirmed,
}

// FindConflicts is the read-only pre-check. Its result can go stale
// between check and commit, so every write path re-runs the same check
// inside its transaction.
func (s *Service) FindConflicts(ctx context.Context, cand Candidate) ([]domain.Conflict, error) {
	if cand.PropertyID == "" {
		return nil, validationError("property_id is required")
	}
	if !cand.EndTime.After(cand.StartTime) {
		return nil, validationError("end_time must be after start_time")
	}
	return findConflicts(ctx, s.store, cand)
}

func findConflicts(ctx context.Context, q store.SchedulingTx, cand Candidate) ([]domain.Conflict, error) {
	from := cand.StartTime.UTC()
	to := cand.EndTime.UTC()

	var out []domain.Conflict

	overlapping, err := q.FindBookings(ctx, store.BookingFilter{
		PropertyID: cand.PropertyID,
		Statuses:   conflictStatuses,
		From:       &from,
		To:         &to,
		ExcludeID:  cand.ExcludeBookingID,
	})
	if err != nil {
		return nil, err
	}
	for _, b := range overlapping {
		out = append(out, domain.Conflict{
			Type:    domain.ConflictTypeTimeOverlap,
			Booking: b,
			Message: fmt.Sprintf("property %s already has a booking from %s to %s",
				b.PropertyID, b.StartTime.Format(time.RFC3339), b.EndTime.Format(time.RFC3339)),
		})
	}

	if cand.AssigneeID == "" {
		return out, nil
	}

	busy, err := q.FindBookings(ctx, store.BookingFilter{
		AssigneeID: cand.AssigneeID,
		Statuses:   conflictStatuses,
		From:       &from,
		To:         &to,
		ExcludeID:  cand.ExcludeBookingID,
	})
	if err != nil {
		return nil, err
	}
	for _, b := range busy {
		// Same-property overlaps were already reported above.
		if b.PropertyID == cand.PropertyID {
			continue
		}
		out = append(out, domain.Conflict{
			Type:    domain.ConflictTypeAssigneeUnavailable,
			Booking: b,
			Message: fmt.Sprintf("assignee %s is busy from %s to %s",
				b.AssigneeID, b.StartTime.Format(time.RFC3339), b.EndTime.Format(time.RFC3339)),
		})
	}

	return out, nil
}
