package store

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrCapacityExceeded = errors.New("slot capacity exceeded")
	ErrSlotHasBookings  = errors.New("slot has bookings")
)
