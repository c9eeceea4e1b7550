package repositories

import "errors"

var (
	// ErrSlotUnavailable indicates the backing store cannot be reached.
	ErrSlotUnavailable = errors.New("catalog slot unavailable")
)
