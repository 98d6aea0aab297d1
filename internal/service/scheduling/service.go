package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/samuelvinay91/property-management-service-sub001/internal/domain"
	"github.com/samuelvinay91/property-management-service-sub001/internal/notify"
	"github.com/samuelvinay91/property-management-service-sub001/internal/store"
)

// Service is the scheduling engine. Every lifecycle operation runs as one
// transactional unit: the conflict re-check, the booking write, and any
// capacity mutation commit or roll back together.
type Service struct {
	store    store.Store
	notifier notify.Notifier
	clock    Clock
}

func NewService(st store.Store, notifier notify.Notifier, clock Clock) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{store: st, notifier: notifier, clock: clock}
}

type ParticipantInput struct {
	PersonID string
	Name     string
	Role     domain.ParticipantRole
}

type CreateBookingInput struct {
	Category    domain.BookingCategory
	Priority    domain.BookingPriority
	StartTime   time.Time
	EndTime     time.Time
	PropertyID  string
	RequesterID string
	AssigneeID  string

	SlotID          *uuid.UUID
	ParentBookingID *uuid.UUID

	RequiresConfirmation bool
	AllowRescheduling    bool
	Notes                string

	Participants []ParticipantInput
}

// CreateBooking validates the window, re-checks conflicts inside the
// write transaction, persists the booking, and reserves slot capacity
// when a slot is linked. Any conflict or capacity failure aborts the
// whole unit.
func (s *Service) CreateBooking(ctx context.Context, in CreateBookingInput) (domain.Booking, error) {
	if in.PropertyID == "" {
		return domain.Booking{}, validationError("property_id is required")
	}
	if in.RequesterID == "" {
		return domain.Booking{}, validationError("requester_id is required")
	}

	start := in.StartTime.UTC()
	end := in.EndTime.UTC()
	if err := validateWindow(start, end, s.clock.Now()); err != nil {
		return domain.Booking{}, err
	}

	category := in.Category
	if category == "" {
		category = domain.BookingCategoryOther
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.BookingPriorityMedium
	}

	status := domain.BookingStatusConfirmed
	if in.RequiresConfirmation {
		status = domain.BookingStatusPending
	}

	var out domain.Booking
	err := s.store.InResourceTransaction(ctx, in.PropertyID, func(ctx context.Context, tx store.SchedulingTx) error {
		conflicts, err := findConflicts(ctx, tx, Candidate{
			StartTime:  start,
			EndTime:    end,
			PropertyID: in.PropertyID,
			AssigneeID: in.AssigneeID,
		})
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &ConflictError{Conflicts: conflicts}
		}

		if in.SlotID != nil {
			slot, err := tx.GetSlot(ctx, *in.SlotID)
			if err != nil {
				return err
			}
			if !slot.Reservable() {
				return validationError("slot is not bookable")
			}
			if !slot.AllowsCategory(category) {
				return validationError("slot does not allow this booking category")
			}
			if _, err := tx.ReserveSlot(ctx, *in.SlotID); err != nil {
				return err
			}
		}

		booking, err := tx.SaveBooking(ctx, domain.Booking{
			Category:             category,
			Status:               status,
			Priority:             priority,
			StartTime:            start,
			EndTime:              end,
			PropertyID:           in.PropertyID,
			RequesterID:          in.RequesterID,
			AssigneeID:           in.AssigneeID,
			SlotID:               in.SlotID,
			ParentBookingID:      in.ParentBookingID,
			RequiresConfirmation: in.RequiresConfirmation,
			AllowRescheduling:    in.AllowRescheduling,
			Notes:                in.Notes,
		})
		if err != nil {
			return err
		}

		if len(in.Participants) > 0 {
			participants := make([]domain.Participant, 0, len(in.Participants))
			for _, p := range in.Participants {
				role := p.Role
				if role == "" {
					role = domain.ParticipantRoleAttendee
				}
				participants = append(participants, domain.Participant{
					PersonID: p.PersonID,
					Name:     p.Name,
					Role:     role,
					Response: domain.ParticipantResponseInvited,
				})
			}
			if err := tx.ReplaceParticipants(ctx, booking.ID, participants); err != nil {
				return err
			}
		}

		out = booking
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}

	s.notifier.BookingCreated(ctx, out)
	return out, nil
}

// ConfirmBooking moves a PENDING booking to CONFIRMED. Capacity was
// already reserved at creation, so there is no capacity effect.
func (s *Service) ConfirmBooking(ctx context.Context, id uuid.UUID, confirmedBy string) (domain.Booking, error) {
	return s.transition(ctx, id, func(booking *domain.Booking, tx store.SchedulingTx) error {
		if booking.Status != domain.BookingStatusPending {
			return &InvalidTransitionError{From: booking.Status, Op: "confirm"}
		}
		now := s.clock.Now()
		booking.Status = domain.BookingStatusConfirmed
		booking.ConfirmedBy = confirmedBy
		booking.ConfirmedAt = &now
		return nil
	})
}

type CancelInput struct {
	Reason      string
	CancelledBy string
}

// CancelBooking moves a PENDING or CONFIRMED booking to CANCELLED and
// releases the linked slot's capacity.
func (s *Service) CancelBooking(ctx context.Context, id uuid.UUID, in CancelInput) (domain.Booking, error) {
	out, err := s.transition(ctx, id, func(booking *domain.Booking, tx store.SchedulingTx) error {
		switch booking.Status {
		case domain.BookingStatusPending, domain.BookingStatusConfirmed:
		default:
			return &InvalidTransitionError{From: booking.Status, Op: "cancel"}
		}

		now := s.clock.Now()
		booking.Status = domain.BookingStatusCancelled
		booking.CancelReason = in.Reason
		booking.CancelledBy = in.CancelledBy
		booking.CancelledAt = &now

		if booking.SlotID != nil {
			if _, err := tx.ReleaseSlot(ctx, *booking.SlotID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}

	s.notifier.BookingCancelled(ctx, out)
	return out, nil
}

// BulkResult is the per-item outcome of a bulk operation. Items are
// processed independently; one failure never aborts the batch.
type BulkResult struct {
	ID  uuid.UUID
	Err error
}

func (s *Service) CancelBookings(ctx context.Context, ids []uuid.UUID, in CancelInput) []BulkResult {
	out := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		_, err := s.CancelBooking(ctx, id, in)
		out = append(out, BulkResult{ID: id, Err: err})
	}
	return out
}

type RescheduleInput struct {
	StartTime time.Time
	EndTime   time.Time
}

// RescheduleBooking moves the booking to a new window. The slot linkage
// and its capacity reservation are kept as they are; only the window and
// status change.
func (s *Service) RescheduleBooking(ctx context.Context, id uuid.UUID, in RescheduleInput) (domain.Booking, error) {
	start := in.StartTime.UTC()
	end := in.EndTime.UTC()
	if err := validateWindow(start, end, s.clock.Now()); err != nil {
		return domain.Booking{}, err
	}

	out, err := s.transition(ctx, id, func(booking *domain.Booking, tx store.SchedulingTx) error {
		if booking.Status.Terminal() {
			return &InvalidTransitionError{From: booking.Status, Op: "reschedule"}
		}
		if !booking.AllowRescheduling {
			return validationError("booking does not allow rescheduling")
		}

		conflicts, err := findConflicts(ctx, tx, Candidate{
			StartTime:        start,
			EndTime:          end,
			PropertyID:       booking.PropertyID,
			AssigneeID:       booking.AssigneeID,
			ExcludeBookingID: &booking.ID,
		})
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &ConflictError{Conflicts: conflicts}
		}

		booking.StartTime = start
		booking.EndTime = end
		booking.Status = domain.BookingStatusRescheduled
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}

	s.notifier.BookingRescheduled(ctx, out)
	return out, nil
}

type CompleteInput struct {
	Notes    string
	Rating   *int
	Feedback string
}

// CompleteBooking moves a CONFIRMED booking to COMPLETED, recording
// completion notes and an optional 1-5 rating.
func (s *Service) CompleteBooking(ctx context.Context, id uuid.UUID, in CompleteInput) (domain.Booking, error) {
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return domain.Booking{}, validationError("rating must be between 1 and 5")
	}

	return s.transition(ctx, id, func(booking *domain.Booking, tx store.SchedulingTx) error {
		if booking.Status != domain.BookingStatusConfirmed {
			return &InvalidTransitionError{From: booking.Status, Op: "complete"}
		}
		now := s.clock.Now()
		booking.Status = domain.BookingStatusCompleted
		booking.CompletedAt = &now
		booking.CompletionNotes = in.Notes
		booking.Rating = in.Rating
		booking.Feedback = in.Feedback
		return nil
	})
}

// MarkNoShow moves a CONFIRMED booking to NO_SHOW.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	return s.transition(ctx, id, func(booking *domain.Booking, tx store.SchedulingTx) error {
		if booking.Status != domain.BookingStatusConfirmed {
			return &InvalidTransitionError{From: booking.Status, Op: "mark no-show"}
		}
		booking.Status = domain.BookingStatusNoShow
		return nil
	})
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

// transition loads the booking, locks its property, re-reads it inside
// the transaction, applies fn, and persists the result.
func (s *Service) transition(ctx context.Context, id uuid.UUID, fn func(booking *domain.Booking, tx store.SchedulingTx) error) (domain.Booking, error) {
	if id == uuid.Nil {
		return domain.Booking{}, validationError("booking_id is required")
	}

	current, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}

	var out domain.Booking
	err = s.store.InResourceTransaction(ctx, current.PropertyID, func(ctx context.Context, tx store.SchedulingTx) error {
		booking, err := tx.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(&booking, tx); err != nil {
			return err
		}
		saved, err := tx.SaveBooking(ctx, booking)
		if err != nil {
			return err
		}
		out = saved
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

func validateWindow(start, end, now time.Time) error {
	if !end.After(start) {
		return validationError("end_time must be after start_time")
	}
	if start.Before(now) {
		return validationError("cannot book in the past")
	}
	if d := end.Sub(start); d < domain.MinBookingDuration {
		return validationError("booking must be at least 15 minutes")
	} else if d > domain.MaxBookingDuration {
		return validationError("booking must be at most 24 hours")
	}
	return nil
}
