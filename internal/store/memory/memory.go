// Package memory provides an in-memory store.Store with the same
// transactional semantics as the postgres implementation: direct calls
// are atomic, and InResourceTransaction applies all-or-nothing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samuelvinay91/property-management-service-sub001/internal/domain"
	"github.com/samuelvinay91/property-management-service-sub001/internal/store"
)

type Store struct {
	mu    sync.Mutex
	state state
}

type state struct {
	slots        map[uuid.UUID]domain.Slot
	bookings     map[uuid.UUID]domain.Booking
	participants map[uuid.UUID][]domain.Participant
	templates    map[uuid.UUID]domain.AvailabilityTemplate
}

func NewStore() *Store {
	return &Store{
		state: state{
			slots:        make(map[uuid.UUID]domain.Slot),
			bookings:     make(map[uuid.UUID]domain.Booking),
			participants: make(map[uuid.UUID][]domain.Participant),
			templates:    make(map[uuid.UUID]domain.AvailabilityTemplate),
		},
	}
}

func (s *Store) InResourceTransaction(ctx context.Context, resourceID string, fn func(ctx context.Context, tx store.SchedulingTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Snapshot for rollback; the single mutex serializes all writers,
	// which is stricter than the per-resource advisory lock but has the
	// same observable behavior.
	snapshot := s.state.clone()
	if err := fn(ctx, &s.state); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *Store) SaveSlot(ctx context.Context, slot domain.Slot) (domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SaveSlot(ctx, slot)
}

func (s *Store) GetSlot(ctx context.Context, id uuid.UUID) (domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetSlot(ctx, id)
}

func (s *Store) FindSlots(ctx context.Context, f store.SlotFilter) ([]domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.FindSlots(ctx, f)
}

func (s *Store) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.DeleteSlot(ctx, id)
}

func (s *Store) ReserveSlot(ctx context.Context, id uuid.UUID) (domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ReserveSlot(ctx, id)
}

func (s *Store) ReleaseSlot(ctx context.Context, id uuid.UUID) (domain.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ReleaseSlot(ctx, id)
}

func (s *Store) SaveBooking(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SaveBooking(ctx, booking)
}

func (s *Store) GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetBooking(ctx, id)
}

func (s *Store) FindBookings(ctx context.Context, f store.BookingFilter) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.FindBookings(ctx, f)
}

func (s *Store) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.DeleteBooking(ctx, id)
}

func (s *Store) ReplaceParticipants(ctx context.Context, bookingID uuid.UUID, participants []domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ReplaceParticipants(ctx, bookingID, participants)
}

func (s *Store) GetTemplate(ctx context.Context, id uuid.UUID) (domain.AvailabilityTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetTemplate(ctx, id)
}

func (s *Store) SaveTemplate(ctx context.Context, tpl domain.AvailabilityTemplate) (domain.AvailabilityTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SaveTemplate(ctx, tpl)
}

func (st *state) clone() state {
	out := state{
		slots:        make(map[uuid.UUID]domain.Slot, len(st.slots)),
		bookings:     make(map[uuid.UUID]domain.Booking, len(st.bookings)),
		participants: make(map[uuid.UUID][]domain.Participant, len(st.participants)),
		templates:    make(map[uuid.UUID]domain.AvailabilityTemplate, len(st.templates)),
	}
	for id, s := range st.slots {
		out.slots[id] = s
	}
	for id, b := range st.bookings {
		out.bookings[id] = b
	}
	for id, ps := range st.participants {
		cp := make([]domain.Participant, len(ps))
		copy(cp, ps)
		out.participants[id] = cp
	}
	for id, t := range st.templates {
		out.templates[id] = t
	}
	return out
}

func (st *state) SaveSlot(ctx context.Context, slot domain.Slot) (domain.Slot, error) {
	now := time.Now().UTC()
	if slot.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Slot{}, err
		}
		slot.ID = id
		slot.CreatedAt = now
	} else if _, ok := st.slots[slot.ID]; !ok && slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now
	st.slots[slot.ID] = slot
	return slot, nil
}

func (st *state) GetSlot(ctx context.Context, id uuid.UUID) (domain.Slot, error) {
	slot, ok := st.slots[id]
	if !ok {
		return domain.Slot{}, store.ErrNotFound
	}
	return slot, nil
}

func (st *state) FindSlots(ctx context.Context, f store.SlotFilter) ([]domain.Slot, error) {
	var out []domain.Slot
	for _, s := range st.slots {
		if f.ResourceID != "" && s.ResourceID != f.ResourceID {
			continue
		}
		if f.TemplateID != nil && (s.TemplateID == nil || *s.TemplateID != *f.TemplateID) {
			continue
		}
		if f.From != nil && !s.EndTime.After(*f.From) {
			continue
		}
		if f.To != nil && !s.StartTime.Before(*f.To) {
			continue
		}
		if f.Status != nil && s.Status != *f.Status {
			continue
		}
		if (f.BookableOnly || f.OpenOnly) && !s.Bookable {
			continue
		}
		if f.OpenOnly && (!s.HasCapacity() || s.Status == domain.SlotStatusBlocked) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (st *state) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	if _, ok := st.slots[id]; !ok {
		return store.ErrNotFound
	}
	for _, b := range st.bookings {
		if b.SlotID != nil && *b.SlotID == id {
			return store.ErrSlotHasBookings
		}
	}
	delete(st.slots, id)
	return nil
}

func (st *state) ReserveSlot(ctx context.Context, id uuid.UUID) (domain.Slot, error) {
	slot, ok := st.slots[id]
	if !ok {
		return domain.Slot{}, store.ErrNotFound
	}
	if !slot.HasCapacity() {
		return domain.Slot{}, store.ErrCapacityExceeded
	}
	slot.ApplyReserve()
	slot.UpdatedAt = time.Now().UTC()
	st.slots[id] = slot
	return slot, nil
}

func (st *state) ReleaseSlot(ctx context.Context, id uuid.UUID) (domain.Slot, error) {
	slot, ok := st.slots[id]
	if !ok {
		return domain.Slot{}, store.ErrNotFound
	}
	slot.ApplyRelease()
	slot.UpdatedAt = time.Now().UTC()
	st.slots[id] = slot
	return slot, nil
}

func (st *state) SaveBooking(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	now := time.Now().UTC()
	if booking.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Booking{}, err
		}
		booking.ID = id
		booking.CreatedAt = now
	} else if _, ok := st.bookings[booking.ID]; !ok && booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now
	booking.Participants = nil
	st.bookings[booking.ID] = booking
	return booking, nil
}

func (st *state) GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	booking, ok := st.bookings[id]
	if !ok {
		return domain.Booking{}, store.ErrNotFound
	}
	booking.Participants = append([]domain.Participant(nil), st.participants[id]...)
	return booking, nil
}

func (st *state) FindBookings(ctx context.Context, f store.BookingFilter) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range st.bookings {
		if f.PropertyID != "" && b.PropertyID != f.PropertyID {
			continue
		}
		if f.AssigneeID != "" && b.AssigneeID != f.AssigneeID {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, b.Status) {
			continue
		}
		if f.From != nil && !b.EndTime.After(*f.From) {
			continue
		}
		if f.To != nil && !b.StartTime.Before(*f.To) {
			continue
		}
		if f.SlotID != nil && (b.SlotID == nil || *b.SlotID != *f.SlotID) {
			continue
		}
		if f.ExcludeID != nil && b.ID == *f.ExcludeID {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (st *state) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	if _, ok := st.bookings[id]; !ok {
		return store.ErrNotFound
	}
	delete(st.bookings, id)
	delete(st.participants, id)
	return nil
}

func (st *state) ReplaceParticipants(ctx context.Context, bookingID uuid.UUID, participants []domain.Participant) error {
	if _, ok := st.bookings[bookingID]; !ok {
		return store.ErrNotFound
	}
	now := time.Now().UTC()
	cp := make([]domain.Participant, 0, len(participants))
	for _, p := range participants {
		if p.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			p.ID = id
		}
		p.BookingID = bookingID
		if p.Response == "" {
			p.Response = domain.ParticipantResponseInvited
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
		cp = append(cp, p)
	}
	st.participants[bookingID] = cp
	return nil
}

func (st *state) GetTemplate(ctx context.Context, id uuid.UUID) (domain.AvailabilityTemplate, error) {
	tpl, ok := st.templates[id]
	if !ok {
		return domain.AvailabilityTemplate{}, store.ErrNotFound
	}
	return tpl, nil
}

func (st *state) SaveTemplate(ctx context.Context, tpl domain.AvailabilityTemplate) (domain.AvailabilityTemplate, error) {
	now := time.Now().UTC()
	if tpl.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.AvailabilityTemplate{}, err
		}
		tpl.ID = id
		tpl.CreatedAt = now
	} else if _, ok := st.templates[tpl.ID]; !ok && tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = now
	}
	tpl.UpdatedAt = now
	st.templates[tpl.ID] = tpl
	return tpl, nil
}

func containsStatus(list []domain.BookingStatus, s domain.BookingStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
