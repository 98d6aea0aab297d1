package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/samuelvinay91/property-management-service-sub001/internal/domain"
	"github.com/samuelvinay91/property-management-service-sub001/internal/store"
)

// SchedulingRepo implements store.Store on postgres via bun. Direct calls
// auto-commit; InResourceTransaction wraps a bun transaction and takes a
// per-resource advisory lock so concurrent writers of the same resource
// serialize.
type SchedulingRepo struct {
	view
	db *bun.DB
}

func NewSchedulingRepo(db *bun.DB) *SchedulingRepo {
	return &SchedulingRepo{view: view{db: db}, db: db}
}

func (r *SchedulingRepo) InResourceTransaction(ctx context.Context, resourceID string, fn func(ctx context.Context, tx store.SchedulingTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockResource(ctx, tx, resourceID); err != nil {
			return err
		}
		return fn(ctx, view{db: tx})
	})
}

func lockResource(ctx context.Context, tx bun.Tx, resourceID string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", resourceID).Exec(ctx)
	return err
}

// view carries the query set shared by the repo and its transactions.
// bun.DB and bun.Tx both satisfy bun.IDB.
type view struct {
	db bun.IDB
}

func (v view) SaveSlot(ctx context.Context, slot domain.Slot) (domain.Slot, error) {
	if slot.ID == uuid.Nil {
		if _, err := v.db.NewInsert().Model(&slot).Exec(ctx); err != nil {
			return domain.Slot{}, err
		}
		return slot, nil
	}

	res, err := v.db.NewUpdate().Model(&slot).WherePK().Exec(ctx)
	if err != nil {
		return domain.Slot{}, err
	}
	if err := requireAffected(res); err != nil {
		return domain.Slot{}, err
	}
	return slot, nil
}

func (v view) GetSlot(ctx context.Context, id uuid.UUID) (domain.Slot, error) {
	var slot domain.Slot
	err := v.db.NewSelect().Model(&slot).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Slot{}, store.ErrNotFound
		}
		return domain.Slot{}, err
	}
	return slot, nil
}

func (v view) FindSlots(ctx context.Context, f store.SlotFilter) ([]domain.Slot, error) {
	var rows []domain.Slot
	q := v.db.NewSelect().Model(&rows)

	if f.ResourceID != "" {
		q = q.Where("resource_id = ?", f.ResourceID)
	}
	if f.TemplateID != nil {
		q = q.Where("template_id = ?", *f.TemplateID)
	}
	if f.From != nil {
		q = q.Where("end_time > ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("start_time < ?", *f.To)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.BookableOnly || f.OpenOnly {
		q = q.Where("bookable = TRUE")
	}
	if f.OpenOnly {
		q = q.Where("booked_count < capacity").Where("status <> ?", domain.SlotStatusBlocked)
	}

	if err := q.OrderExpr("start_time ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (v view) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	linked, err := v.db.NewSelect().
		Model((*domain.Booking)(nil)).
		Where("slot_id = ?", id).
		Exists(ctx)
	if err != nil {
		return err
	}
	if linked {
		return store.ErrSlotHasBookings
	}

	res, err := v.db.NewDelete().
		Model((*domain.Slot)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (v view) ReserveSlot(ctx context.Context, id uuid.UUID) (domain.Slot, error) {
	var slot domain.Slot
	res, err := v.db.NewUpdate().
		Model(&slot).
		Set("booked_count = booked_count + 1").
		Set("status = CASE WHEN booked_count + 1 >= capacity THEN ? ELSE status END", domain.SlotStatusBooked).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("booked_count < capacity").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return domain.Slot{}, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Slot{}, err
	}
	if affected == 0 {
		// Distinguish a lost capacity race from a missing slot.
		if _, err := v.GetSlot(ctx, id); err != nil {
			return domain.Slot{}, err
		}
		return domain.Slot{}, store.ErrCapacityExceeded
	}
	return slot, nil
}

func (v view) ReleaseSlot(ctx context.Context, id uuid.UUID) (domain.Slot, error) {
	var slot domain.Slot
	res, err := v.db.NewUpdate().
		Model(&slot).
		Set("booked_count = GREATEST(booked_count - 1, 0)").
		Set("status = CASE WHEN status = ? AND booked_count - 1 < capacity THEN ? ELSE status END",
			domain.SlotStatusBooked, domain.SlotStatusAvailable).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return domain.Slot{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Slot{}, err
	}
	if affected == 0 {
		return domain.Slot{}, store.ErrNotFound
	}
	return slot, nil
}

func (v view) SaveBooking(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	if booking.ID == uuid.Nil {
		if _, err := v.db.NewInsert().Model(&booking).Exec(ctx); err != nil {
			return domain.Booking{}, err
		}
		return booking, nil
	}

	res, err := v.db.NewUpdate().Model(&booking).WherePK().Exec(ctx)
	if err != nil {
		return domain.Booking{}, err
	}
	if err := requireAffected(res); err != nil {
		return domain.Booking{}, err
	}
	return booking, nil
}

func (v view) GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	var booking domain.Booking
	err := v.db.NewSelect().
		Model(&booking).
		Relation("Participants").
		Where("booking.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, store.ErrNotFound
		}
		return domain.Booking{}, err
	}
	return booking, nil
}

func (v view) FindBookings(ctx context.Context, f store.BookingFilter) ([]domain.Booking, error) {
	var rows []domain.Booking
	q := v.db.NewSelect().Model(&rows)

	if f.PropertyID != "" {
		q = q.Where("property_id = ?", f.PropertyID)
	}
	if f.AssigneeID != "" {
		q = q.Where("assignee_id = ?", f.AssigneeID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN (?)", bun.In(f.Statuses))
	}
	if f.From != nil {
		q = q.Where("end_time > ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("start_time < ?", *f.To)
	}
	if f.SlotID != nil {
		q = q.Where("slot_id = ?", *f.SlotID)
	}
	if f.ExcludeID != nil {
		q = q.Where("id <> ?", *f.ExcludeID)
	}

	if err := q.OrderExpr("start_time ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (v view) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	// Participants are owned by the booking.
	_, err := v.db.NewDelete().
		Model((*domain.Participant)(nil)).
		Where("booking_id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	res, err := v.db.NewDelete().
		Model((*domain.Booking)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (v view) ReplaceParticipants(ctx context.Context, bookingID uuid.UUID, participants []domain.Participant) error {
	_, err := v.db.NewDelete().
		Model((*domain.Participant)(nil)).
		Where("booking_id = ?", bookingID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if len(participants) == 0 {
		return nil
	}

	for i := range participants {
		participants[i].BookingID = bookingID
	}
	_, err = v.db.NewInsert().Model(&participants).Exec(ctx)
	return err
}

func (v view) GetTemplate(ctx context.Context, id uuid.UUID) (domain.AvailabilityTemplate, error) {
	var tpl domain.AvailabilityTemplate
	err := v.db.NewSelect().Model(&tpl).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AvailabilityTemplate{}, store.ErrNotFound
		}
		return domain.AvailabilityTemplate{}, err
	}
	return tpl, nil
}

func (v view) SaveTemplate(ctx context.Context, tpl domain.AvailabilityTemplate) (domain.AvailabilityTemplate, error) {
	if tpl.ID == uuid.Nil {
		if _, err := v.db.NewInsert().Model(&tpl).Exec(ctx); err != nil {
			return domain.AvailabilityTemplate{}, err
		}
		return tpl, nil
	}

	res, err := v.db.NewUpdate().Model(&tpl).WherePK().Exec(ctx)
	if err != nil {
		return domain.AvailabilityTemplate{}, err
	}
	if err := requireAffected(res); err != nil {
		return domain.AvailabilityTemplate{}, err
	}
	return tpl, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
