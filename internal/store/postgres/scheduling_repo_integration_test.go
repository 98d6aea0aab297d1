package postgres

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"github.com/samuelvinay91/property-management-service-sub001/internal/domain"
	"github.com/samuelvinay91/property-management-service-sub001/internal/store"
)

func TestPostgresIntegration_SlotCapacityAndBookingQueries(t *testing.T) {
	databaseURL := strings.TrimSpace(os.Getenv("BOOKING_TEST_DATABASE_URL"))
	if databaseURL == "" {
		t.Skip("BOOKING_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := Open(ctx, databaseURL, PoolConfig{MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close(db)
	})

	schema := "booking_test_" + randomHex(t, 8)
	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cleanupCancel()
		_, _ = db.NewRaw("DROP SCHEMA IF EXISTS " + schema + " CASCADE").Exec(cleanupCtx)
	})

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewRaw("CREATE SCHEMA " + schema).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewRaw("SET LOCAL search_path TO " + schema).Exec(ctx); err != nil {
			return err
		}
		if err := applyMigrations(ctx, tx); err != nil {
			return err
		}

		v := view{db: tx}
		start := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)

		slot, err := v.SaveSlot(ctx, domain.Slot{
			ResourceID:   "prop-1",
			ResourceType: "PROPERTY",
			StartTime:    start,
			EndTime:      start.Add(30 * time.Minute),
			Capacity:     2,
			Status:       domain.SlotStatusAvailable,
			Bookable:     true,
			CreatedAt:    start,
			UpdatedAt:    start,
		})
		if err != nil {
			return err
		}

		reserved, err := v.ReserveSlot(ctx, slot.ID)
		if err != nil {
			return err
		}
		if reserved.BookedCount != 1 || reserved.Status != domain.SlotStatusAvailable {
			return fmt.Errorf("after first reserve: count=%d status=%s", reserved.BookedCount, reserved.Status)
		}

		reserved, err = v.ReserveSlot(ctx, slot.ID)
		if err != nil {
			return err
		}
		if reserved.BookedCount != 2 || reserved.Status != domain.SlotStatusBooked {
			return fmt.Errorf("after second reserve: count=%d status=%s", reserved.BookedCount, reserved.Status)
		}

		if _, err := v.ReserveSlot(ctx, slot.ID); !errors.Is(err, store.ErrCapacityExceeded) {
			return fmt.Errorf("over-capacity reserve err = %v, want %v", err, store.ErrCapacityExceeded)
		}

		released, err := v.ReleaseSlot(ctx, slot.ID)
		if err != nil {
			return err
		}
		if released.BookedCount != 1 || released.Status != domain.SlotStatusAvailable {
			return fmt.Errorf("after release: count=%d status=%s", released.BookedCount, released.Status)
		}

		booking, err := v.SaveBooking(ctx, domain.Booking{
			Category:    domain.BookingCategoryViewing,
			Status:      domain.BookingStatusConfirmed,
			Priority:    domain.BookingPriorityMedium,
			StartTime:   start,
			EndTime:     start.Add(30 * time.Minute),
			PropertyID:  "prop-1",
			RequesterID: "tenant-1",
			SlotID:      &slot.ID,
			CreatedAt:   start,
			UpdatedAt:   start,
		})
		if err != nil {
			return err
		}

		if err := v.DeleteSlot(ctx, slot.ID); !errors.Is(err, store.ErrSlotHasBookings) {
			return fmt.Errorf("delete linked slot err = %v, want %v", err, store.ErrSlotHasBookings)
		}

		overlapFrom := start.Add(15 * time.Minute)
		overlapTo := start.Add(45 * time.Minute)
		rows, err := v.FindBookings(ctx, store.BookingFilter{
			PropertyID: "prop-1",
			Statuses:   []domain.BookingStatus{domain.BookingStatusConfirmed},
			From:       &overlapFrom,
			To:         &overlapTo,
		})
		if err != nil {
			return err
		}
		if len(rows) != 1 || rows[0].ID != booking.ID {
			return fmt.Errorf("overlap query returned %d rows", len(rows))
		}

		adjacentFrom := start.Add(30 * time.Minute)
		adjacentTo := start.Add(time.Hour)
		rows, err = v.FindBookings(ctx, store.BookingFilter{
			PropertyID: "prop-1",
			From:       &adjacentFrom,
			To:         &adjacentTo,
		})
		if err != nil {
			return err
		}
		if len(rows) != 0 {
			return fmt.Errorf("adjacent window returned %d rows, want 0", len(rows))
		}

		err = v.ReplaceParticipants(ctx, booking.ID, []domain.Participant{
			{PersonID: "agent-1", Role: domain.ParticipantRoleOrganizer},
		})
		if err != nil {
			return err
		}
		got, err := v.GetBooking(ctx, booking.ID)
		if err != nil {
			return err
		}
		if len(got.Participants) != 1 || got.Participants[0].PersonID != "agent-1" {
			return fmt.Errorf("participants not loaded: %+v", got.Participants)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("tx error: %v", err)
	}
}

func randomHex(t *testing.T, bytesLen int) string {
	t.Helper()
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read error: %v", err)
	}
	return hex.EncodeToString(b)
}

type rawExecutor interface {
	NewRaw(query string, args ...any) *bun.RawQuery
}

// applyMigrations runs the Up sections of the SQL files under migrations/
// in lexical order against the current search_path.
func applyMigrations(ctx context.Context, exec rawExecutor) error {
	dir, err := migrationsDir()
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		upSQL, err := extractGooseUp(string(b))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		for _, stmt := range splitSQLStatements(upSQL) {
			if _, err := exec.NewRaw(stmt).Exec(ctx); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return nil
}

func migrationsDir() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("runtime.Caller failed")
	}
	base := filepath.Dir(file)
	return filepath.Clean(filepath.Join(base, "..", "..", "..", "migrations")), nil
}

func extractGooseUp(sql string) (string, error) {
	upMarker := "-- +goose Up"
	downMarker := "-- +goose Down"

	upIdx := strings.Index(sql, upMarker)
	if upIdx < 0 {
		return "", fmt.Errorf("missing goose up marker")
	}
	afterUp := strings.TrimLeft(sql[upIdx+len(upMarker):], "\r\n")

	downIdx := strings.Index(afterUp, downMarker)
	if downIdx < 0 {
		return strings.TrimSpace(afterUp), nil
	}
	return strings.TrimSpace(afterUp[:downIdx]), nil
}

func splitSQLStatements(sql string) []string {
	parts := strings.Split(sql, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
