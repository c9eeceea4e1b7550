package app

import (
	"context"
	"fmt"
	"time"

	"github.com/campaignvideos/backend/internal/catalog"
	"github.com/campaignvideos/backend/internal/config"
	"github.com/campaignvideos/backend/internal/db"
	"github.com/campaignvideos/backend/internal/handlers"
	"github.com/campaignvideos/backend/internal/middleware"
	"github.com/campaignvideos/backend/internal/repositories"
	"github.com/campaignvideos/backend/internal/storage"
	"github.com/campaignvideos/backend/internal/submissions"
	"github.com/campaignvideos/backend/internal/uploads"
)

// openSlot constructs the catalog slot for the configured backend. The
// returned cleanup releases whatever the backend holds open.
func openSlot(ctx context.Context, cfg config.Config) (repositories.Slot, func(), error) {
	switch cfg.CatalogBackend {
	case config.CatalogBackendFile:
		return repositories.NewFileSlot(cfg.CatalogPath), func() {}, nil

	case config.CatalogBackendSQLite:
		slot, err := repositories.OpenSQLiteSlot(cfg.CatalogPath, cfg.CatalogKey)
		if err != nil {
			return nil, nil, err
		}
		return slot, func() { slot.Close() }, nil

	case config.CatalogBackendPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		slot := repositories.NewPostgresSlot(pool, cfg.CatalogKey)
		if err := slot.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return slot, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown catalog backend %q", cfg.CatalogBackend)
	}
}

// openStorage constructs the asset storage for the configured backend. The
// local storage handle is returned separately when active so the janitor and
// static file serving can use it.
func openStorage(ctx context.Context, cfg config.Config) (storage.AssetStorage, *storage.LocalStorage, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendLocal:
		local := storage.NewLocalStorage(cfg.UploadDir)
		return local, local, nil

	case config.StorageBackendS3:
		st, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return nil, nil, err
		}
		return st, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(cfg config.Config, store *catalog.Store, assets storage.AssetStorage, local *storage.LocalStorage) handlers.Dependencies {
	uploader := uploads.NewService(assets, cfg.UploadDebug)
	orchestrator := &submissions.Orchestrator{Uploader: uploader, Catalog: store}
	limiter := middleware.NewIPRateLimiter(cfg.UploadRatePerMinute, time.Minute, cfg.UploadRateBurst, 10*time.Minute)

	deps := handlers.Dependencies{
		Uploads:       uploader,
		Catalog:       store,
		Submissions:   orchestrator,
		Renderer:      catalog.NewRenderer("/uploads"),
		UploadLimiter: limiter,
	}
	if local != nil {
		deps.UploadDir = local.Dir()
	}
	return deps
}
