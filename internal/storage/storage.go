package storage

import (
	"context"
	"io"
)

// AssetStorage persists uploaded file bytes under a generated name and
// returns the location the asset can be served from.
type AssetStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}
