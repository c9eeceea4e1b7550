// Package janitor prunes uploaded files that no catalog record references
// any more, on a cron schedule. Deleted records otherwise leave their assets
// behind forever.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/campaignvideos/backend/internal/catalog"
	"github.com/campaignvideos/backend/internal/models"
	"github.com/campaignvideos/backend/internal/storage"
)

// CatalogReader is the subset of the store the janitor needs.
type CatalogReader interface {
	GetAll(ctx context.Context) ([]models.VideoRecord, error)
}

// Janitor sweeps the local upload directory for orphaned assets.
type Janitor struct {
	Catalog CatalogReader
	Storage *storage.LocalStorage
	// MinAge protects freshly uploaded files whose catalog record has not
	// been written yet.
	MinAge time.Duration
	Logger *slog.Logger

	cron *cron.Cron
	now  func() time.Time
}

// New constructs a janitor over the given catalog and local storage.
func New(cat CatalogReader, st *storage.LocalStorage, minAge time.Duration, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	if minAge <= 0 {
		minAge = 24 * time.Hour
	}
	return &Janitor{
		Catalog: cat,
		Storage: st,
		MinAge:  minAge,
		Logger:  logger,
		now:     time.Now,
	}
}

// Start schedules sweeps using a standard five-field cron spec.
func (j *Janitor) Start(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		removed, err := j.Sweep(context.Background())
		if err != nil {
			j.Logger.Error("upload sweep failed", "error", err)
			return
		}
		j.Logger.Info("upload sweep completed", "removed", removed)
	})
	if err != nil {
		return err
	}
	c.Start()
	j.cron = c
	return nil
}

// Stop halts the schedule, letting a running sweep finish.
func (j *Janitor) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
	}
}

// Sweep removes stored files that are old enough and not referenced by any
// record, counting removals. The .webm sibling of a referenced .mp4 is
// treated as referenced too, matching the renderer's fallback source.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	records, err := j.Catalog.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	referenced := make(map[string]struct{})
	for _, record := range records {
		if record.FileName != "" {
			referenced[record.FileName] = struct{}{}
			referenced[catalog.WebmSibling(record.FileName)] = struct{}{}
		}
		if record.ThumbnailName != "" {
			referenced[record.ThumbnailName] = struct{}{}
		}
	}

	files, err := j.Storage.List()
	if err != nil {
		return 0, err
	}

	cutoff := j.now().Add(-j.MinAge)
	removed := 0
	for _, file := range files {
		if _, ok := referenced[file.Name]; ok {
			continue
		}
		if file.ModTime.After(cutoff) {
			continue
		}
		if err := j.Storage.Remove(file.Name); err != nil {
			j.Logger.Warn("remove orphaned upload", "name", file.Name, "error", err)
			continue
		}
		j.Logger.Info("removed orphaned upload", "name", file.Name)
		removed++
	}
	return removed, nil
}
