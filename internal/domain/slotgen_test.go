package domain

import (
	"errors"
	"testing"
	"time"
)

func activeTemplate() AvailabilityTemplate {
	return AvailabilityTemplate{
		ResourceID:             "prop-1",
		ResourceType:           "property",
		Name:                   "viewings",
		Timezone:               "UTC",
		Status:                 TemplateStatusActive,
		DefaultSlotDurationMin: 30,
		DefaultBreakMin:        0,
		DefaultCapacity:        1,
		WeeklySchedule:         WeeklySchedule{},
	}
}

func TestGenerateSlots_TuesdayScenario(t *testing.T) {
	tpl := activeTemplate()
	tpl.WeeklySchedule[time.Tuesday] = DaySchedule{
		Available: true,
		Ranges:    []TimeRange{{Start: MustClock("09:00"), End: MustClock("10:00")}},
	}

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// 2026-03-03 is a Tuesday.
	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	slots, err := GenerateSlots(tpl, from, to, now)
	if err != nil {
		t.Fatalf("GenerateSlots error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(slots))
	}

	wantStarts := []time.Time{
		time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 3, 9, 30, 0, 0, time.UTC),
	}
	for i, slot := range slots {
		if !slot.StartTime.Equal(wantStarts[i]) {
			t.Fatalf("slot[%d].StartTime = %v, want %v", i, slot.StartTime, wantStarts[i])
		}
		if !slot.EndTime.Equal(wantStarts[i].Add(30 * time.Minute)) {
			t.Fatalf("slot[%d].EndTime = %v, want %v", i, slot.EndTime, wantStarts[i].Add(30*time.Minute))
		}
		if slot.Capacity != 1 || slot.BookedCount != 0 {
			t.Fatalf("slot[%d] capacity = %d/%d, want 0/1", i, slot.BookedCount, slot.Capacity)
		}
		if slot.Status != SlotStatusAvailable {
			t.Fatalf("slot[%d].Status = %s, want %s", i, slot.Status, SlotStatusAvailable)
		}
		if slot.ResourceID != "prop-1" {
			t.Fatalf("slot[%d].ResourceID = %q, want %q", i, slot.ResourceID, "prop-1")
		}
	}
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	tpl := activeTemplate()
	tpl.WeeklySchedule[time.Monday] = DaySchedule{
		Available: true,
		Ranges: []TimeRange{
			{Start: MustClock("09:00"), End: MustClock("12:00")},
			{Start: MustClock("14:00"), End: MustClock("16:00"), SlotDurationMin: 60, BreakMin: 15},
		},
	}

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	first, err := GenerateSlots(tpl, from, to, now)
	if err != nil {
		t.Fatalf("GenerateSlots error: %v", err)
	}
	second, err := GenerateSlots(tpl, from, to, now)
	if err != nil {
		t.Fatalf("GenerateSlots error: %v", err)
	}

	if len(first) == 0 {
		t.Fatalf("expected slots")
	}
	if len(first) != len(second) {
		t.Fatalf("len mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].StartTime.Equal(second[i].StartTime) || !first[i].EndTime.Equal(second[i].EndTime) {
			t.Fatalf("slot[%d] differs: [%v,%v) vs [%v,%v)",
				i, first[i].StartTime, first[i].EndTime, second[i].StartTime, second[i].EndTime)
		}
	}
}

func TestGenerateSlots_HolidayPrecedence(t *testing.T) {
	tpl := activeTemplate()
	tpl.WeeklySchedule[time.Monday] = DaySchedule{
		Available: true,
		Ranges:    []TimeRange{{Start: MustClock("09:00"), End: MustClock("12:00")}},
	}
	// 2026-03-09 is the second Monday in the range.
	tpl.HolidayOverrides = []HolidayOverride{
		{Date: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), Name: "public holiday", Available: false},
	}

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	slots, err := GenerateSlots(tpl, from, to, now)
	if err != nil {
		t.Fatalf("GenerateSlots error: %v", err)
	}

	// Two Mondays in range, one suppressed: 6 slots instead of 12.
	if len(slots) != 6 {
		t.Fatalf("len(slots) = %d, want 6", len(slots))
	}
	holiday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	for _, slot := range slots {
		if SameDate(slot.StartTime, holiday) {
			t.Fatalf("slot generated on suppressed holiday: %v", slot.StartTime)
		}
	}
}

func TestGenerateSlots_HolidayWithOwnRanges(t *testing.T) {
	tpl := activeTemplate()
	tpl.WeeklySchedule[time.Monday] = DaySchedule{
		Available: true,
		Ranges:    []TimeRange{{Start: MustClock("09:00"), End: MustClock("12:00")}},
	}
	tpl.HolidayOverrides = []HolidayOverride{
		{
			Date:      time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
			Available: true,
			Ranges:    []TimeRange{{Start: MustClock("10:00"), End: MustClock("11:00")}},
		},
	}

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	slots, err := GenerateSlots(tpl, day, day, now)
	if err != nil {
		t.Fatalf("GenerateSlots error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(slots))
	}
	if got, want := slots[0].StartTime, time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("first slot start = %v, want %v", got, want)
	}
}

func TestGenerateSlots_SpecialDateBeatsHoliday(t *testing.T) {
	tpl := activeTemplate()
	tpl.WeeklySchedule[time.Monday] = DaySchedule{
		Available: true,
		Ranges:    []TimeRange{{Start: MustClock("09:00"), End: MustClock("12:00")}},
	}
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	tpl.HolidayOverrides = []HolidayOverride{{Date: day, Available: false}}
	tpl.SpecialDates = []SpecialDate{
		{
			Date:   day,
			Name:   "open house",
			Ranges: []TimeRange{{Start: MustClock("13:00"), End: MustClock("14:00"), Capacity: 5}},
		},
	}

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	slots, err := GenerateSlots(tpl, day, day, now)
	if err != nil {
		t.Fatalf("GenerateSlots error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(slots))
	}
	for _, slot := range slots {
		if slot.Capacity != 5 {
			t.Fatalf("capacity = %d, want 5", slot.Capacity)
		}
		if slot.StartTime.Hour() < 13 {
			t.Fatalf("slot start = %v, want special-date range", slot.StartTime)
		}
	}
}

func TestGenerateSlots_TemplateNotActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	t.Run("draft status", func(t *testing.T) {
		tpl := activeTemplate()
		tpl.Status = TemplateStatusDraft
		_, err := GenerateSlots(tpl, from, from, now)
		if !errors.Is(err, ErrTemplateNotActive) {
			t.Fatalf("error = %v, want ErrTemplateNotActive", err)
		}
	})

	t.Run("outside effective range", func(t *testing.T) {
		tpl := activeTemplate()
		effectiveTo := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)
		tpl.EffectiveTo = &effectiveTo
		_, err := GenerateSlots(tpl, from, from, now)
		if !errors.Is(err, ErrTemplateNotActive) {
			t.Fatalf("error = %v, want ErrTemplateNotActive", err)
		}
	})

	t.Run("inclusive effective boundary", func(t *testing.T) {
		tpl := activeTemplate()
		effectiveTo := now
		tpl.EffectiveTo = &effectiveTo
		if _, err := GenerateSlots(tpl, from, from, now); err != nil {
			t.Fatalf("GenerateSlots error: %v", err)
		}
	})
}

func TestGenerateSlots_EmptyRangeIsNotAnError(t *testing.T) {
	tpl := activeTemplate()
	tpl.WeeklySchedule[time.Monday] = DaySchedule{Available: false}

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// Monday only.
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	slots, err := GenerateSlots(tpl, day, day, now)
	if err != nil {
		t.Fatalf("GenerateSlots error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("len(slots) = %d, want 0", len(slots))
	}
}

func TestGenerateSlots_RangeFieldFallbacks(t *testing.T) {
	tpl := activeTemplate()
	tpl.DefaultSlotDurationMin = 60
	tpl.DefaultCapacity = 3
	tpl.DefaultCategories = []BookingCategory{BookingCategoryViewing}
	tpl.DefaultCost = 25
	notBookable := false
	tpl.WeeklySchedule[time.Wednesday] = DaySchedule{
		Available: true,
		Ranges: []TimeRange{
			{Start: MustClock("09:00"), End: MustClock("11:00")},
			{Start: MustClock("12:00"), End: MustClock("13:00"), Capacity: 1, Bookable: &notBookable},
		},
	}

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// 2026-03-04 is a Wednesday.
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	slots, err := GenerateSlots(tpl, day, day, now)
	if err != nil {
		t.Fatalf("GenerateSlots error: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("len(slots) = %d, want 3", len(slots))
	}

	first := slots[0]
	if first.Capacity != 3 {
		t.Fatalf("inherited capacity = %d, want 3", first.Capacity)
	}
	if len(first.Categories) != 1 || first.Categories[0] != BookingCategoryViewing {
		t.Fatalf("inherited categories = %v", first.Categories)
	}
	if first.Cost != 25 {
		t.Fatalf("inherited cost = %v, want 25", first.Cost)
	}
	if !first.Bookable {
		t.Fatalf("expected default bookable slot")
	}

	last := slots[2]
	if last.Capacity != 1 {
		t.Fatalf("range capacity = %d, want 1", last.Capacity)
	}
	if last.Bookable {
		t.Fatalf("expected range-level unbookable slot")
	}
	if last.TemplateID == nil {
		t.Fatalf("expected origin template reference")
	}
}

func TestGenerateSlots_InvertedRangeFails(t *testing.T) {
	tpl := activeTemplate()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	if _, err := GenerateSlots(tpl, from, to, now); err == nil {
		t.Fatalf("expected error for inverted date range")
	}
}
