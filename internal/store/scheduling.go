package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/samuelvinay91/property-management-service-sub001/internal/domain"
)

// SlotFilter narrows FindSlots. Zero-valued fields are ignored.
type SlotFilter struct {
	ResourceID   string
	TemplateID   *uuid.UUID
	From         *time.Time
	To           *time.Time
	Status       *domain.SlotStatus
	BookableOnly bool
	// OpenOnly keeps only bookable slots with remaining capacity.
	OpenOnly bool
}

// BookingFilter narrows FindBookings. From/To select bookings whose
// window overlaps [From, To) under half-open semantics.
type BookingFilter struct {
	PropertyID string
	AssigneeID string
	Statuses   []domain.BookingStatus
	From       *time.Time
	To         *time.Time
	SlotID     *uuid.UUID
	ExcludeID  *uuid.UUID
}

// SchedulingTx is the set of operations available both directly (each
// call auto-commits) and inside a resource transaction.
type SchedulingTx interface {
	SaveSlot(ctx context.Context, slot domain.Slot) (domain.Slot, error)
	GetSlot(ctx context.Context, id uuid.UUID) (domain.Slot, error)
	FindSlots(ctx context.Context, f SlotFilter) ([]domain.Slot, error)
	// DeleteSlot removes a slot that has no associated bookings;
	// otherwise it fails with ErrSlotHasBookings.
	DeleteSlot(ctx context.Context, id uuid.UUID) error

	// ReserveSlot atomically increments the slot's booked count iff
	// booked_count < capacity at commit time, failing with
	// ErrCapacityExceeded otherwise. ReleaseSlot decrements, flooring
	// at zero. Both return the post-mutation snapshot.
	ReserveSlot(ctx context.Context, id uuid.UUID) (domain.Slot, error)
	ReleaseSlot(ctx context.Context, id uuid.UUID) (domain.Slot, error)

	SaveBooking(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	FindBookings(ctx context.Context, f BookingFilter) ([]domain.Booking, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error

	// ReplaceParticipants swaps the booking's participant set.
	// Participants are owned by the booking and removed with it.
	ReplaceParticipants(ctx context.Context, bookingID uuid.UUID, participants []domain.Participant) error

	GetTemplate(ctx context.Context, id uuid.UUID) (domain.AvailabilityTemplate, error)
	SaveTemplate(ctx context.Context, tpl domain.AvailabilityTemplate) (domain.AvailabilityTemplate, error)
}

// Store is the engine's persistence collaborator. InResourceTransaction
// runs fn atomically, serialized against other writers of the same
// resource; any returned error rolls the whole unit back.
type Store interface {
	SchedulingTx

	InResourceTransaction(ctx context.Context, resourceID string, fn func(ctx context.Context, tx SchedulingTx) error) error
}
