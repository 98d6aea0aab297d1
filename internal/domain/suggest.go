package domain

import "sort"

// HourRange is an inclusive range of local start hours, e.g. {9, 17}.
type HourRange struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

func (h HourRange) Contains(hour int) bool {
	return hour >= h.StartHour && hour <= h.EndHour
}

// Preferences steer suggestion scoring for a requester.
type Preferences struct {
	PreferredTimeRanges []HourRange `json:"preferred_time_ranges,omitempty"`
	AvoidWeekends       bool        `json:"avoid_weekends,omitempty"`
	MaxSuggestions      int         `json:"max_suggestions,omitempty"`
}

const DefaultMaxSuggestions = 10

type Suggestion struct {
	Slot   Slot
	Score  int
	Reason string
}

const (
	suggestionBaseScore       = 100
	businessHoursStart        = 9
	businessHoursEnd          = 17
	nearFullOccupancyFraction = 0.8
)

// RankSuggestions scores candidate slots against the requester's
// preferences and returns them ordered by descending score, ties broken
// by ascending start time. The result is truncated to MaxSuggestions
// (default 10).
func RankSuggestions(candidates []Slot, prefs Preferences) []Suggestion {
	out := make([]Suggestion, 0, len(candidates))
	for _, slot := range candidates {
		score := scoreSlot(slot, prefs)
		out = append(out, Suggestion{
			Slot:   slot,
			Score:  score,
			Reason: suggestionReason(score),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Slot.StartTime.Before(out[j].Slot.StartTime)
	})

	max := prefs.MaxSuggestions
	if max <= 0 {
		max = DefaultMaxSuggestions
	}
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func scoreSlot(slot Slot, prefs Preferences) int {
	score := suggestionBaseScore

	if slot.Capacity > 1 {
		score += 5 * slot.Capacity
	}

	hour := slot.StartTime.Hour()
	if hour >= businessHoursStart && hour <= businessHoursEnd {
		score += 20
	}

	for _, r := range prefs.PreferredTimeRanges {
		if r.Contains(hour) {
			score += 30
		}
	}

	if prefs.AvoidWeekends && IsWeekend(slot.StartTime) {
		score -= 20
	}

	if slot.Capacity > 0 && float64(slot.BookedCount)/float64(slot.Capacity) > nearFullOccupancyFraction {
		score -= 15
	}

	if score < 0 {
		score = 0
	}
	return score
}

func suggestionReason(score int) string {
	switch {
	case score >= 120:
		return "highly recommended"
	case score >= 100:
		return "good option"
	case score >= 80:
		return "alternative option"
	default:
		return "limited availability"
	}
}
