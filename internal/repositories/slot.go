// Package repositories provides persistence for the catalog slot: a single
// named key holding the full serialized video array. All catalog mutations
// are whole-array read-modify-write operations against one slot.
package repositories

import "context"

// Slot stores one opaque payload under a fixed key.
type Slot interface {
	// Load returns the stored payload. The boolean reports whether the slot
	// has ever been written; a missing slot is not an error.
	Load(ctx context.Context) ([]byte, bool, error)
	// Save replaces the stored payload.
	Save(ctx context.Context, data []byte) error
}
