package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/samuelvinay91/property-management-service-sub001/internal/domain"
)

// Task types consumed by the notification worker.
const (
	TaskBookingCreated     = "booking:created"
	TaskBookingCancelled   = "booking:cancelled"
	TaskBookingRescheduled = "booking:rescheduled"
)

const notificationQueue = "notifications"

// BookingEvent is the task payload for all booking lifecycle tasks.
type BookingEvent struct {
	BookingID   string    `json:"booking_id"`
	PropertyID  string    `json:"property_id"`
	RequesterID string    `json:"requester_id"`
	AssigneeID  string    `json:"assignee_id,omitempty"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// QueueNotifier enqueues booking events as asynq tasks for asynchronous
// delivery (email, SMS, webhooks) by a separate worker. Enqueue errors
// are logged and swallowed; a lost notification never fails a booking.
type QueueNotifier struct {
	client *asynq.Client
	log    *slog.Logger
}

func NewQueueNotifier(redisAddr string, log *slog.Logger) *QueueNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &QueueNotifier{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
		log:    log.With(slog.String("component", "notify.queue")),
	}
}

func (n *QueueNotifier) Close() error {
	return n.client.Close()
}

func (n *QueueNotifier) BookingCreated(ctx context.Context, booking domain.Booking) {
	n.enqueue(ctx, TaskBookingCreated, booking)
}

func (n *QueueNotifier) BookingCancelled(ctx context.Context, booking domain.Booking) {
	n.enqueue(ctx, TaskBookingCancelled, booking)
}

func (n *QueueNotifier) BookingRescheduled(ctx context.Context, booking domain.Booking) {
	n.enqueue(ctx, TaskBookingRescheduled, booking)
}

func (n *QueueNotifier) enqueue(ctx context.Context, taskType string, booking domain.Booking) {
	payload, err := json.Marshal(BookingEvent{
		BookingID:   booking.ID.String(),
		PropertyID:  booking.PropertyID,
		RequesterID: booking.RequesterID,
		AssigneeID:  booking.AssigneeID,
		Category:    string(booking.Category),
		Status:      string(booking.Status),
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
	})
	if err != nil {
		n.log.ErrorContext(ctx, "notification payload marshal failed",
			slog.Any("err", err), slog.String("task", taskType))
		return
	}

	task := asynq.NewTask(taskType, payload, asynq.Queue(notificationQueue), asynq.MaxRetry(5))
	if _, err := n.client.EnqueueContext(ctx, task); err != nil {
		n.log.WarnContext(ctx, "notification enqueue failed",
			slog.Any("err", err),
			slog.String("task", taskType),
			slog.String("booking_id", booking.ID.String()),
		)
	}
}
