package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	BookingStatusPending     BookingStatus = "PENDING"
	BookingStatusConfirmed   BookingStatus = "CONFIRMED"
	BookingStatusCancelled   BookingStatus = "CANCELLED"
	BookingStatusCompleted   BookingStatus = "COMPLETED"
	BookingStatusNoShow      BookingStatus = "NO_SHOW"
	BookingStatusRescheduled BookingStatus = "RESCHEDULED"
)

// Terminal reports whether no further lifecycle transition may leave s.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusCancelled, BookingStatusCompleted, BookingStatusNoShow:
		return true
	}
	return false
}

type BookingCategory string

const (
	BookingCategoryViewing     BookingCategory = "VIEWING"
	BookingCategoryInspection  BookingCategory = "INSPECTION"
	BookingCategoryMaintenance BookingCategory = "MAINTENANCE"
	BookingCategoryMeeting     BookingCategory = "MEETING"
	BookingCategoryOther       BookingCategory = "OTHER"
)

type BookingPriority string

const (
	BookingPriorityLow    BookingPriority = "LOW"
	BookingPriorityMedium BookingPriority = "MEDIUM"
	BookingPriorityHigh   BookingPriority = "HIGH"
	BookingPriorityUrgent BookingPriority = "URGENT"
)

// Duration bounds enforced on booking windows unless policy overrides them.
const (
	MinBookingDuration = 15 * time.Minute
	MaxBookingDuration = 24 * time.Hour
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID       uuid.UUID       `bun:"id,pk,type:uuid"`
	Category BookingCategory `bun:"category,notnull"`
	Status   BookingStatus   `bun:"status,notnull"`
	Priority BookingPriority `bun:"priority,notnull"`

	StartTime time.Time `bun:"start_time,notnull"`
	EndTime   time.Time `bun:"end_time,notnull"`

	PropertyID  string `bun:"property_id,notnull"`
	RequesterID string `bun:"requester_id,notnull"`
	AssigneeID  string `bun:"assignee_id"`

	SlotID          *uuid.UUID `bun:"slot_id,type:uuid"`
	ParentBookingID *uuid.UUID `bun:"parent_booking_id,type:uuid"`

	RequiresConfirmation bool `bun:"requires_confirmation,notnull"`
	AllowRescheduling    bool `bun:"allow_rescheduling,notnull"`

	Notes string `bun:"notes"`

	ConfirmedBy string     `bun:"confirmed_by"`
	ConfirmedAt *time.Time `bun:"confirmed_at"`

	CancelledBy  string     `bun:"cancelled_by"`
	CancelledAt  *time.Time `bun:"cancelled_at"`
	CancelReason string     `bun:"cancel_reason"`

	CompletedAt     *time.Time `bun:"completed_at"`
	CompletionNotes string     `bun:"completion_notes"`
	Rating          *int       `bun:"rating"`
	Feedback        string     `bun:"feedback"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`

	Participants []Participant `bun:"rel:has-many,join:id=booking_id"`
}

func (b *Booking) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			b.ID = id
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		b.UpdatedAt = now
	}
	return nil
}

type ParticipantRole string

const (
	ParticipantRoleOrganizer ParticipantRole = "ORGANIZER"
	ParticipantRoleAttendee  ParticipantRole = "ATTENDEE"
	ParticipantRoleResource  ParticipantRole = "RESOURCE"
	ParticipantRoleObserver  ParticipantRole = "OBSERVER"
)

type ParticipantResponse string

const (
	ParticipantResponseInvited    ParticipantResponse = "INVITED"
	ParticipantResponseAccepted   ParticipantResponse = "ACCEPTED"
	ParticipantResponseDeclined   ParticipantResponse = "DECLINED"
	ParticipantResponseTentative  ParticipantResponse = "TENTATIVE"
	ParticipantResponseNoResponse ParticipantResponse = "NO_RESPONSE"
	ParticipantResponseAttended   ParticipantResponse = "ATTENDED"
	ParticipantResponseNoShow     ParticipantResponse = "NO_SHOW"
)

// Participant is owned by its booking and is removed with it.
type Participant struct {
	bun.BaseModel `bun:"table:booking_participants"`

	ID        uuid.UUID           `bun:"id,pk,type:uuid"`
	BookingID uuid.UUID           `bun:"booking_id,notnull,type:uuid"`
	PersonID  string              `bun:"person_id,notnull"`
	Name      string              `bun:"name"`
	Role      ParticipantRole     `bun:"role,notnull"`
	Response  ParticipantResponse `bun:"response,notnull"`
	CreatedAt time.Time           `bun:"created_at,notnull"`
	UpdatedAt time.Time           `bun:"updated_at,notnull"`
}

func (p *Participant) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if p.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			p.ID = id
		}
		if p.Response == "" {
			p.Response = ParticipantResponseInvited
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		p.UpdatedAt = now
	}
	return nil
}

type ConflictType string

const (
	ConflictTypeTimeOverlap         ConflictType = "TIME_OVERLAP"
	ConflictTypeAssigneeUnavailable ConflictType = "ASSIGNEE_UNAVAILABLE"
)

// Conflict is one detected clash between a candidate window and an
// existing booking.
type Conflict struct {
	Type    ConflictType
	Booking Booking
	Message string
}
