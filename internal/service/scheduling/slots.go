package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/samuelvinay91/property-management-service-sub001/internal/domain"
	"github.com/samuelvinay91/property-management-service-sub001/internal/store"
)

type GenerateSlotsInput struct {
	TemplateID uuid.UUID
	DateFrom   time.Time
	DateTo     time.Time
}

// GenerateSlots expands the template over the date range and persists the
// result in one transaction on the template's resource. Generation itself
// does not deduplicate against previously persisted slots; callers that
// re-generate a range should clear it first or accept duplicates.
func (s *Service) GenerateSlots(ctx context.Context, in GenerateSlotsInput) ([]domain.Slot, error) {
	if in.TemplateID == uuid.Nil {
		return nil, validationError("template_id is required")
	}
	if in.DateTo.Before(in.DateFrom) {
		return nil, validationError("date_from must not be after date_to")
	}

	tpl, err := s.store.GetTemplate(ctx, in.TemplateID)
	if err != nil {
		return nil, err
	}

	slots, err := domain.GenerateSlots(tpl, in.DateFrom, in.DateTo, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, nil
	}

	saved := make([]domain.Slot, 0, len(slots))
	err = s.store.InResourceTransaction(ctx, tpl.ResourceID, func(ctx context.Context, tx store.SchedulingTx) error {
		for _, slot := range slots {
			persisted, err := tx.SaveSlot(ctx, slot)
			if err != nil {
				return err
			}
			saved = append(saved, persisted)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// DeleteSlot removes a slot, refusing while any booking still references
// it.
func (s *Service) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return validationError("slot_id is required")
	}
	return s.store.DeleteSlot(ctx, id)
}

type SuggestInput struct {
	ResourceID  string
	From        time.Time
	To          time.Time
	Category    domain.BookingCategory
	Preferences domain.Preferences
}

// SuggestBookingTimes queries the open slots for the resource in the
// window and ranks them against the requester's preferences.
func (s *Service) SuggestBookingTimes(ctx context.Context, in SuggestInput) ([]domain.Suggestion, error) {
	if in.ResourceID == "" {
		return nil, validationError("resource_id is required")
	}
	if !in.To.After(in.From) {
		return nil, validationError("to must be after from")
	}

	from := in.From.UTC()
	now := s.clock.Now()
	if from.Before(now) {
		from = now
	}
	to := in.To.UTC()

	slots, err := s.store.FindSlots(ctx, store.SlotFilter{
		ResourceID: in.ResourceID,
		From:       &from,
		To:         &to,
		OpenOnly:   true,
	})
	if err != nil {
		return nil, err
	}

	candidates := slots[:0]
	for _, slot := range slots {
		if slot.StartTime.Before(from) {
			continue
		}
		if !slot.AllowsCategory(in.Category) {
			continue
		}
		candidates = append(candidates, slot)
	}

	return domain.RankSuggestions(candidates, in.Preferences), nil
}
