package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type TemplateStatus string

const (
	TemplateStatusDraft    TemplateStatus = "DRAFT"
	TemplateStatusActive   TemplateStatus = "ACTIVE"
	TemplateStatusInactive TemplateStatus = "INACTIVE"
)

// TimeRange is one bookable window within a day's schedule. Zero-valued
// optional fields (duration, break, capacity, categories, cost, bookable)
// fall back to the template defaults when slots are generated.
type TimeRange struct {
	Start           MinuteOfDay       `json:"start"`
	End             MinuteOfDay       `json:"end"`
	SlotDurationMin int               `json:"slot_duration_min,omitempty"`
	BreakMin        int               `json:"break_min,omitempty"`
	Capacity        int               `json:"capacity,omitempty"`
	Categories      []BookingCategory `json:"categories,omitempty"`
	Cost            float64           `json:"cost,omitempty"`
	Bookable        *bool             `json:"bookable,omitempty"`
}

// DaySchedule is the recurring schedule for a single weekday.
type DaySchedule struct {
	Available bool        `json:"available"`
	Ranges    []TimeRange `json:"ranges,omitempty"`
}

type WeeklySchedule map[time.Weekday]DaySchedule

// HolidayOverride replaces or suppresses the weekday schedule on one
// specific calendar date.
type HolidayOverride struct {
	Date      time.Time   `json:"date"`
	Name      string      `json:"name,omitempty"`
	Available bool        `json:"available"`
	Ranges    []TimeRange `json:"ranges,omitempty"`
}

// SpecialDate is a named day whose ranges take precedence over both the
// weekday schedule and any holiday override.
type SpecialDate struct {
	Date   time.Time   `json:"date"`
	Name   string      `json:"name,omitempty"`
	Ranges []TimeRange `json:"ranges,omitempty"`
}

type AvailabilityTemplate struct {
	bun.BaseModel `bun:"table:availability_templates"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	ResourceID   string    `bun:"resource_id,notnull"`
	ResourceType string    `bun:"resource_type,notnull"`
	Name         string    `bun:"name,notnull"`
	Timezone     string    `bun:"timezone,notnull"`

	WeeklySchedule   WeeklySchedule    `bun:"weekly_schedule,type:jsonb,notnull"`
	HolidayOverrides []HolidayOverride `bun:"holiday_overrides,type:jsonb"`
	SpecialDates     []SpecialDate     `bun:"special_dates,type:jsonb"`

	DefaultSlotDurationMin int               `bun:"default_slot_duration_min,notnull"`
	DefaultBreakMin        int               `bun:"default_break_min,notnull"`
	DefaultCapacity        int               `bun:"default_capacity,notnull"`
	DefaultCategories      []BookingCategory `bun:"default_categories,type:jsonb"`
	DefaultCost            float64           `bun:"default_cost"`

	EffectiveFrom *time.Time     `bun:"effective_from"`
	EffectiveTo   *time.Time     `bun:"effective_to"`
	Status        TemplateStatus `bun:"status,notnull"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (t *AvailabilityTemplate) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if t.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			t.ID = id
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.UpdatedAt.IsZero() {
			t.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		t.UpdatedAt = now
	}
	return nil
}

// ActiveAt reports whether the template may generate slots at the given
// instant: status ACTIVE and now within the inclusive effective range.
// A nil boundary leaves that side of the range open.
func (t *AvailabilityTemplate) ActiveAt(now time.Time) bool {
	if t.Status != TemplateStatusActive {
		return false
	}
	if t.EffectiveFrom != nil && now.Before(*t.EffectiveFrom) {
		return false
	}
	if t.EffectiveTo != nil && now.After(*t.EffectiveTo) {
		return false
	}
	return true
}

// Location resolves the template timezone, defaulting to UTC.
func (t *AvailabilityTemplate) Location() (*time.Location, error) {
	if t.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(t.Timezone)
}
