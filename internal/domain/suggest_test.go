package domain

import (
	"testing"
	"time"
)

func suggestSlot(start time.Time, capacity, booked int) Slot {
	return Slot{
		StartTime:   start,
		EndTime:     start.Add(30 * time.Minute),
		Capacity:    capacity,
		BookedCount: booked,
		Status:      SlotStatusAvailable,
		Bookable:    true,
	}
}

func TestRankSuggestions_Scoring(t *testing.T) {
	// 2026-03-03 is a Tuesday, 2026-03-07 a Saturday.
	weekday10 := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	weekday6 := time.Date(2026, 3, 3, 6, 0, 0, 0, time.UTC)
	saturday10 := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

	t.Run("business hours bonus", func(t *testing.T) {
		got := RankSuggestions([]Slot{suggestSlot(weekday10, 1, 0)}, Preferences{})
		if got[0].Score != 120 {
			t.Fatalf("score = %d, want 120", got[0].Score)
		}
		if got[0].Reason != "highly recommended" {
			t.Fatalf("reason = %q, want %q", got[0].Reason, "highly recommended")
		}
	})

	t.Run("off hours", func(t *testing.T) {
		got := RankSuggestions([]Slot{suggestSlot(weekday6, 1, 0)}, Preferences{})
		if got[0].Score != 100 {
			t.Fatalf("score = %d, want 100", got[0].Score)
		}
		if got[0].Reason != "good option" {
			t.Fatalf("reason = %q, want %q", got[0].Reason, "good option")
		}
	})

	t.Run("capacity bonus", func(t *testing.T) {
		got := RankSuggestions([]Slot{suggestSlot(weekday10, 4, 0)}, Preferences{})
		// 100 base + 20 business hours + 5*4 capacity.
		if got[0].Score != 140 {
			t.Fatalf("score = %d, want 140", got[0].Score)
		}
	})

	t.Run("preferred range bonus", func(t *testing.T) {
		prefs := Preferences{PreferredTimeRanges: []HourRange{{StartHour: 9, EndHour: 11}}}
		got := RankSuggestions([]Slot{suggestSlot(weekday10, 1, 0)}, prefs)
		if got[0].Score != 150 {
			t.Fatalf("score = %d, want 150", got[0].Score)
		}
	})

	t.Run("weekend penalty", func(t *testing.T) {
		got := RankSuggestions([]Slot{suggestSlot(saturday10, 1, 0)}, Preferences{AvoidWeekends: true})
		// 100 + 20 - 20.
		if got[0].Score != 100 {
			t.Fatalf("score = %d, want 100", got[0].Score)
		}
	})

	t.Run("near full penalty", func(t *testing.T) {
		got := RankSuggestions([]Slot{suggestSlot(weekday10, 10, 9)}, Preferences{})
		// 100 + 20 + 50 capacity - 15 near-full.
		if got[0].Score != 155 {
			t.Fatalf("score = %d, want 155", got[0].Score)
		}
	})

	t.Run("exactly 80 percent is not penalized", func(t *testing.T) {
		got := RankSuggestions([]Slot{suggestSlot(weekday10, 10, 8)}, Preferences{})
		if got[0].Score != 170 {
			t.Fatalf("score = %d, want 170", got[0].Score)
		}
	})
}

func TestRankSuggestions_OrderingAndTies(t *testing.T) {
	early := suggestSlot(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), 1, 0)
	late := suggestSlot(time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC), 1, 0)
	offHours := suggestSlot(time.Date(2026, 3, 3, 6, 0, 0, 0, time.UTC), 1, 0)

	got := RankSuggestions([]Slot{late, offHours, early}, Preferences{})
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	// early and late tie at 120; ascending start time breaks the tie.
	if !got[0].Slot.StartTime.Equal(early.StartTime) {
		t.Fatalf("first = %v, want earliest of tied slots", got[0].Slot.StartTime)
	}
	if !got[1].Slot.StartTime.Equal(late.StartTime) {
		t.Fatalf("second = %v, want %v", got[1].Slot.StartTime, late.StartTime)
	}
	if !got[2].Slot.StartTime.Equal(offHours.StartTime) {
		t.Fatalf("third = %v, want lowest score last", got[2].Slot.StartTime)
	}
}

func TestRankSuggestions_Truncation(t *testing.T) {
	base := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	var candidates []Slot
	for i := 0; i < 15; i++ {
		candidates = append(candidates, suggestSlot(base.Add(time.Duration(i)*time.Hour), 1, 0))
	}

	got := RankSuggestions(candidates, Preferences{})
	if len(got) != DefaultMaxSuggestions {
		t.Fatalf("len = %d, want %d", len(got), DefaultMaxSuggestions)
	}

	got = RankSuggestions(candidates, Preferences{MaxSuggestions: 3})
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
}
