package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "AVAILABLE"
	SlotStatusBooked    SlotStatus = "BOOKED"
	SlotStatusBlocked   SlotStatus = "BLOCKED"
	SlotStatusTentative SlotStatus = "TENTATIVE"
)

// Slot is a concrete, capacity-bounded time window [StartTime, EndTime)
// tied to a resource. BookedCount is mutated only through the capacity
// reservation path, never assigned directly by callers.
type Slot struct {
	bun.BaseModel `bun:"table:slots"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	ResourceID   string    `bun:"resource_id,notnull"`
	ResourceType string    `bun:"resource_type,notnull"`

	StartTime time.Time `bun:"start_time,notnull"`
	EndTime   time.Time `bun:"end_time,notnull"`

	Capacity    int        `bun:"capacity,notnull"`
	BookedCount int        `bun:"booked_count,notnull"`
	Status      SlotStatus `bun:"status,notnull"`
	Bookable    bool       `bun:"bookable,notnull"`

	Categories []BookingCategory `bun:"categories,type:jsonb"`
	Cost       float64           `bun:"cost"`
	TemplateID *uuid.UUID        `bun:"template_id,type:uuid"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (s *Slot) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if s.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			s.ID = id
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		s.UpdatedAt = now
	}
	return nil
}

// HasCapacity reports whether one more reservation fits.
func (s *Slot) HasCapacity() bool {
	return s.BookedCount < s.Capacity
}

// Reservable reports whether a booking may reserve this slot at all,
// independent of remaining capacity.
func (s *Slot) Reservable() bool {
	return s.Bookable && s.Status != SlotStatusBlocked
}

// ApplyReserve increments the booked count and flips the status to BOOKED
// once the slot is full. The caller must have verified HasCapacity under
// the store's atomicity guarantee; ApplyReserve is the shared transition
// rule used by store implementations.
func (s *Slot) ApplyReserve() {
	s.BookedCount++
	if s.BookedCount >= s.Capacity {
		s.Status = SlotStatusBooked
	}
}

// ApplyRelease decrements the booked count, flooring at zero, and restores
// AVAILABLE from BOOKED when capacity frees up. A BLOCKED slot keeps its
// status.
func (s *Slot) ApplyRelease() {
	if s.BookedCount > 0 {
		s.BookedCount--
	}
	if s.Status == SlotStatusBooked && s.BookedCount < s.Capacity {
		s.Status = SlotStatusAvailable
	}
}

// AllowsCategory reports whether the slot accepts the given booking
// category. An empty category list means every category is allowed.
func (s *Slot) AllowsCategory(c BookingCategory) bool {
	if len(s.Categories) == 0 || c == "" {
		return true
	}
	for _, allowed := range s.Categories {
		if allowed == c {
			return true
		}
	}
	return false
}
