package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/samuelvinay91/property-management-service-sub001/internal/domain"
	"github.com/samuelvinay91/property-management-service-sub001/internal/service/scheduling"
	"github.com/samuelvinay91/property-management-service-sub001/internal/store"
)

// schedulingService is the slice of the engine the transport needs.
type schedulingService interface {
	GenerateSlots(ctx context.Context, in scheduling.GenerateSlotsInput) ([]domain.Slot, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) error
	FindConflicts(ctx context.Context, cand scheduling.Candidate) ([]domain.Conflict, error)
	CreateBooking(ctx context.Context, in scheduling.CreateBookingInput) (domain.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	ConfirmBooking(ctx context.Context, id uuid.UUID, confirmedBy string) (domain.Booking, error)
	CancelBooking(ctx context.Context, id uuid.UUID, in scheduling.CancelInput) (domain.Booking, error)
	CancelBookings(ctx context.Context, ids []uuid.UUID, in scheduling.CancelInput) []scheduling.BulkResult
	RescheduleBooking(ctx context.Context, id uuid.UUID, in scheduling.RescheduleInput) (domain.Booking, error)
	CompleteBooking(ctx context.Context, id uuid.UUID, in scheduling.CompleteInput) (domain.Booking, error)
	MarkNoShow(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	SuggestBookingTimes(ctx context.Context, in scheduling.SuggestInput) ([]domain.Suggestion, error)
}

type Handler struct {
	svc schedulingService
	log *slog.Logger
}

func NewHandler(svc schedulingService, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log.With(slog.String("component", "http"))}
}

func (h *Handler) Register(e *echo.Echo) {
	v1 := e.Group("/v1")

	v1.POST("/templates/:id/generate-slots", h.generateSlots)
	v1.DELETE("/slots/:id", h.deleteSlot)
	v1.POST("/conflicts/check", h.checkConflicts)
	v1.POST("/suggestions", h.suggest)

	v1.POST("/bookings", h.createBooking)
	v1.GET("/bookings/:id", h.getBooking)
	v1.POST("/bookings/cancel", h.cancelBookings)
	v1.POST("/bookings/:id/confirm", h.confirmBooking)
	v1.POST("/bookings/:id/cancel", h.cancelBooking)
	v1.POST("/bookings/:id/reschedule", h.rescheduleBooking)
	v1.POST("/bookings/:id/complete", h.completeBooking)
	v1.POST("/bookings/:id/no-show", h.markNoShow)
}

type generateSlotsRequest struct {
	DateFrom time.Time `json:"date_from"`
	DateTo   time.Time `json:"date_to"`
}

func (h *Handler) generateSlots(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid template id")
	}
	var req generateSlotsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	slots, err := h.svc.GenerateSlots(c.Request().Context(), scheduling.GenerateSlotsInput{
		TemplateID: id,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
	})
	if err != nil {
		return h.mapError(c, "generate slots", err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"slots": slots, "count": len(slots)})
}

func (h *Handler) deleteSlot(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid slot id")
	}
	if err := h.svc.DeleteSlot(c.Request().Context(), id); err != nil {
		return h.mapError(c, "delete slot", err)
	}
	return c.NoContent(http.StatusNoContent)
}

type conflictCheckRequest struct {
	StartTime        time.Time  `json:"start_time"`
	EndTime          time.Time  `json:"end_time"`
	PropertyID       string     `json:"property_id"`
	AssigneeID       string     `json:"assignee_id,omitempty"`
	ExcludeBookingID *uuid.UUID `json:"exclude_booking_id,omitempty"`
}

type conflictResponse struct {
	Type      string    `json:"type"`
	BookingID uuid.UUID `json:"booking_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Message   string    `json:"message"`
}

func (h *Handler) checkConflicts(c echo.Context) error {
	var req conflictCheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	conflicts, err := h.svc.FindConflicts(c.Request().Context(), scheduling.Candidate{
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		PropertyID:       req.PropertyID,
		AssigneeID:       req.AssigneeID,
		ExcludeBookingID: req.ExcludeBookingID,
	})
	if err != nil {
		return h.mapError(c, "check conflicts", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"conflicts": toConflictResponses(conflicts)})
}

type participantRequest struct {
	PersonID string `json:"person_id"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
}

type createBookingRequest struct {
	Category             string               `json:"category,omitempty"`
	Priority             string               `json:"priority,omitempty"`
	StartTime            time.Time            `json:"start_time"`
	EndTime              time.Time            `json:"end_time"`
	PropertyID           string               `json:"property_id"`
	RequesterID          string               `json:"requester_id"`
	AssigneeID           string               `json:"assignee_id,omitempty"`
	SlotID               *uuid.UUID           `json:"slot_id,omitempty"`
	ParentBookingID      *uuid.UUID           `json:"parent_booking_id,omitempty"`
	RequiresConfirmation bool                 `json:"requires_confirmation,omitempty"`
	AllowRescheduling    bool                 `json:"allow_rescheduling,omitempty"`
	Notes                string               `json:"notes,omitempty"`
	Participants         []participantRequest `json:"participants,omitempty"`
}

func (h *Handler) createBooking(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	participants := make([]scheduling.ParticipantInput, 0, len(req.Participants))
	for _, p := range req.Participants {
		participants = append(participants, scheduling.ParticipantInput{
			PersonID: p.PersonID,
			Name:     p.Name,
			Role:     domain.ParticipantRole(p.Role),
		})
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), scheduling.CreateBookingInput{
		Category:             domain.BookingCategory(req.Category),
		Priority:             domain.BookingPriority(req.Priority),
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		PropertyID:           req.PropertyID,
		RequesterID:          req.RequesterID,
		AssigneeID:           req.AssigneeID,
		SlotID:               req.SlotID,
		ParentBookingID:      req.ParentBookingID,
		RequiresConfirmation: req.RequiresConfirmation,
		AllowRescheduling:    req.AllowRescheduling,
		Notes:                req.Notes,
		Participants:         participants,
	})
	if err != nil {
		return h.mapError(c, "create booking", err)
	}

	h.log.Info("booking created",
		slog.String("booking_id", booking.ID.String()),
		slog.String("property_id", booking.PropertyID),
		slog.Time("start_time", booking.StartTime),
	)
	return c.JSON(http.StatusCreated, booking)
}

func (h *Handler) getBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	booking, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, "get booking", err)
	}
	return c.JSON(http.StatusOK, booking)
}

type confirmRequest struct {
	ConfirmedBy string `json:"confirmed_by"`
}

func (h *Handler) confirmBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	booking, err := h.svc.ConfirmBooking(c.Request().Context(), id, req.ConfirmedBy)
	if err != nil {
		return h.mapError(c, "confirm booking", err)
	}
	return c.JSON(http.StatusOK, booking)
}

type cancelRequest struct {
	Reason      string `json:"reason,omitempty"`
	CancelledBy string `json:"cancelled_by,omitempty"`
}

func (h *Handler) cancelBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	booking, err := h.svc.CancelBooking(c.Request().Context(), id, scheduling.CancelInput{
		Reason:      req.Reason,
		CancelledBy: req.CancelledBy,
	})
	if err != nil {
		return h.mapError(c, "cancel booking", err)
	}
	return c.JSON(http.StatusOK, booking)
}

type bulkCancelRequest struct {
	IDs         []uuid.UUID `json:"ids"`
	Reason      string      `json:"reason,omitempty"`
	CancelledBy string      `json:"cancelled_by,omitempty"`
}

type bulkCancelItem struct {
	ID    uuid.UUID `json:"id"`
	OK    bool      `json:"ok"`
	Error string    `json:"error,omitempty"`
}

func (h *Handler) cancelBookings(c echo.Context) error {
	var req bulkCancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.IDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "ids is required")
	}

	results := h.svc.CancelBookings(c.Request().Context(), req.IDs, scheduling.CancelInput{
		Reason:      req.Reason,
		CancelledBy: req.CancelledBy,
	})

	items := make([]bulkCancelItem, 0, len(results))
	for _, r := range results {
		item := bulkCancelItem{ID: r.ID, OK: r.Err == nil}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusMultiStatus, map[string]any{"results": items})
}

type rescheduleRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (h *Handler) rescheduleBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	booking, err := h.svc.RescheduleBooking(c.Request().Context(), id, scheduling.RescheduleInput{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return h.mapError(c, "reschedule booking", err)
	}
	return c.JSON(http.StatusOK, booking)
}

type completeRequest struct {
	Notes    string `json:"notes,omitempty"`
	Rating   *int   `json:"rating,omitempty"`
	Feedback string `json:"feedback,omitempty"`
}

func (h *Handler) completeBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	var req completeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	booking, err := h.svc.CompleteBooking(c.Request().Context(), id, scheduling.CompleteInput{
		Notes:    req.Notes,
		Rating:   req.Rating,
		Feedback: req.Feedback,
	})
	if err != nil {
		return h.mapError(c, "complete booking", err)
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *Handler) markNoShow(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	booking, err := h.svc.MarkNoShow(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, "mark no-show", err)
	}
	return c.JSON(http.StatusOK, booking)
}

type suggestRequest struct {
	ResourceID  string             `json:"resource_id"`
	From        time.Time          `json:"from"`
	To          time.Time          `json:"to"`
	Category    string             `json:"category,omitempty"`
	Preferences domain.Preferences `json:"preferences"`
}

func (h *Handler) suggest(c echo.Context) error {
	var req suggestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	suggestions, err := h.svc.SuggestBookingTimes(c.Request().Context(), scheduling.SuggestInput{
		ResourceID:  req.ResourceID,
		From:        req.From,
		To:          req.To,
		Category:    domain.BookingCategory(req.Category),
		Preferences: req.Preferences,
	})
	if err != nil {
		return h.mapError(c, "suggest booking times", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"suggestions": suggestions})
}

func toConflictResponses(conflicts []domain.Conflict) []conflictResponse {
	out := make([]conflictResponse, 0, len(conflicts))
	for _, cf := range conflicts {
		out = append(out, conflictResponse{
			Type:      string(cf.Type),
			BookingID: cf.Booking.ID,
			StartTime: cf.Booking.StartTime,
			EndTime:   cf.Booking.EndTime,
			Message:   cf.Message,
		})
	}
	return out
}

// mapError translates engine errors into HTTP status codes. Unknown
// errors are logged and reported as a plain 500.
func (h *Handler) mapError(c echo.Context, op string, err error) error {
	var vErr *scheduling.ValidationError
	if errors.As(err, &vErr) {
		return echo.NewHTTPError(http.StatusBadRequest, vErr.Error())
	}

	var cErr *scheduling.ConflictError
	if errors.As(err, &cErr) {
		return echo.NewHTTPError(http.StatusConflict, map[string]any{
			"message":   cErr.Error(),
			"conflicts": toConflictResponses(cErr.Conflicts),
		})
	}

	var tErr *scheduling.InvalidTransitionError
	if errors.As(err, &tErr) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, tErr.Error())
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrCapacityExceeded):
		return echo.NewHTTPError(http.StatusConflict, "slot is fully booked")
	case errors.Is(err, store.ErrSlotHasBookings):
		return echo.NewHTTPError(http.StatusConflict, "slot has bookings")
	case errors.Is(err, domain.ErrTemplateNotActive):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "template is not active")
	}

	h.log.Error(op+" failed", slog.Any("err", err))
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
