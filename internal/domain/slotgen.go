package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrTemplateNotActive is returned when slot generation is requested
// against a template that is not currently active.
var ErrTemplateNotActive = errors.New("template not active")

// GenerateSlots expands tpl over the inclusive calendar-day range
// [dateFrom, dateTo] into concrete slots. It is a pure function of its
// inputs: the same template and range always produce the same slots
// (IDs excluded; those are assigned on persist). now drives the
// active-template precondition, not the emitted windows.
//
// Per-day resolution precedence: special date, then holiday override,
// then the weekday schedule. Generation does not deduplicate against
// previously persisted slots; that is the caller's responsibility.
func GenerateSlots(tpl AvailabilityTemplate, dateFrom, dateTo, now time.Time) ([]Slot, error) {
	if !tpl.ActiveAt(now) {
		return nil, fmt.Errorf("template %s: %w (status %s)", tpl.ID, ErrTemplateNotActive, tpl.Status)
	}
	if dateTo.Before(dateFrom) {
		return nil, fmt.Errorf("date_from %s after date_to %s", dateFrom.Format(time.DateOnly), dateTo.Format(time.DateOnly))
	}

	loc, err := tpl.Location()
	if err != nil {
		return nil, fmt.Errorf("template %s: invalid timezone %q", tpl.ID, tpl.Timezone)
	}

	out := make([]Slot, 0, 32)
	first := DateOnly(dateFrom.In(loc))
	last := DateOnly(dateTo.In(loc))

	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		ranges, ok := tpl.resolveDay(day)
		if !ok {
			continue
		}
		for _, r := range ranges {
			out = append(out, tpl.emitRange(r, day)...)
		}
	}

	return out, nil
}

// resolveDay picks the time ranges that apply on the given calendar day,
// or reports the day unavailable.
func (t *AvailabilityTemplate) resolveDay(day time.Time) ([]TimeRange, bool) {
	for _, sd := range t.SpecialDates {
		if SameDate(day, sd.Date) {
			return sd.Ranges, len(sd.Ranges) > 0
		}
	}
	for _, h := range t.HolidayOverrides {
		if SameDate(day, h.Date) {
			if !h.Available {
				return nil, false
			}
			if len(h.Ranges) > 0 {
				return h.Ranges, true
			}
			// Available holiday without its own ranges keeps the
			// regular weekday schedule.
			break
		}
	}
	ds, ok := t.WeeklySchedule[day.Weekday()]
	if !ok || !ds.Available || len(ds.Ranges) == 0 {
		return nil, false
	}
	return ds.Ranges, true
}

// emitRange walks the range with a cursor, emitting slots of the resolved
// duration until the next slot would spill past the range end, advancing
// by duration plus break after each one.
func (t *AvailabilityTemplate) emitRange(r TimeRange, day time.Time) []Slot {
	dur := time.Duration(r.SlotDurationMin) * time.Minute
	if dur <= 0 {
		dur = time.Duration(t.DefaultSlotDurationMin) * time.Minute
	}
	if dur <= 0 {
		return nil
	}
	brk := time.Duration(r.BreakMin) * time.Minute
	if r.BreakMin == 0 {
		brk = time.Duration(t.DefaultBreakMin) * time.Minute
	}
	if brk < 0 {
		brk = 0
	}

	capacity := r.Capacity
	if capacity <= 0 {
		capacity = t.DefaultCapacity
	}
	if capacity <= 0 {
		capacity = 1
	}

	categories := r.Categories
	if len(categories) == 0 {
		categories = t.DefaultCategories
	}
	cost := r.Cost
	if cost == 0 {
		cost = t.DefaultCost
	}
	bookable := true
	if r.Bookable != nil {
		bookable = *r.Bookable
	}

	rangeEnd := r.End.On(day)
	templateID := t.ID

	var slots []Slot
	for cursor := r.Start.On(day); !cursor.Add(dur).After(rangeEnd); cursor = cursor.Add(dur + brk) {
		slots = append(slots, Slot{
			ResourceID:   t.ResourceID,
			ResourceType: t.ResourceType,
			StartTime:    cursor.UTC(),
			EndTime:      cursor.Add(dur).UTC(),
			Capacity:     capacity,
			BookedCount:  0,
			Status:       SlotStatusAvailable,
			Bookable:     bookable,
			Categories:   categories,
			Cost:         cost,
			TemplateID:   &templateID,
		})
	}
	return slots
}
