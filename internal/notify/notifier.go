// Package notify delivers booking lifecycle events to interested
// collaborators. Delivery is fire-and-forget: failures are logged and
// never abort the booking operation that triggered them.
package notify

import (
	"context"
	"log/slog"

	"github.com/samuelvinay91/property-management-service-sub001/internal/domain"
)

type Notifier interface {
	BookingCreated(ctx context.Context, booking domain.Booking)
	BookingCancelled(ctx context.Context, booking domain.Booking)
	BookingRescheduled(ctx context.Context, booking domain.Booking)
}

// Nop discards all events. Useful default for tests.
type Nop struct{}

func (Nop) BookingCreated(context.Context, domain.Booking)     {}
func (Nop) BookingCancelled(context.Context, domain.Booking)   {}
func (Nop) BookingRescheduled(context.Context, domain.Booking) {}

// LogNotifier writes each event to the structured log. It stands in for
// a real dispatcher in deployments without a queue.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log.With(slog.String("component", "notify"))}
}

func (n *LogNotifier) BookingCreated(ctx context.Context, booking domain.Booking) {
	n.logEvent(ctx, "booking created", booking)
}

func (n *LogNotifier) BookingCancelled(ctx context.Context, booking domain.Booking) {
	n.logEvent(ctx, "booking cancelled", booking)
}

func (n *LogNotifier) BookingRescheduled(ctx context.Context, booking domain.Booking) {
	n.logEvent(ctx, "booking rescheduled", booking)
}

func (n *LogNotifier) logEvent(ctx context.Context, msg string, booking domain.Booking) {
	n.log.InfoContext(ctx, msg,
		slog.String("booking_id", booking.ID.String()),
		slog.String("property_id", booking.PropertyID),
		slog.String("status", string(booking.Status)),
		slog.Time("start_time", booking.StartTime),
		slog.Time("end_time", booking.EndTime),
	)
}
