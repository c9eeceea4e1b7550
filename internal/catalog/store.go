// Package catalog manages the video catalog: an ordered list of records
// persisted as one JSON array under a single named slot. Every mutation is a
// whole-array read-modify-write, mirroring the storage model the site has
// always used; a store-level mutex serializes writers within this process.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/campaignvideos/backend/internal/logging"
	"github.com/campaignvideos/backend/internal/models"
	"github.com/campaignvideos/backend/internal/repositories"
)

// ErrInvalidJSON indicates an import payload that does not parse as a record array.
var ErrInvalidJSON = errors.New("invalid catalog JSON")

// Store exposes catalog CRUD over a persistence slot.
type Store struct {
	slot repositories.Slot
	mu   sync.Mutex

	NowFunc func() time.Time
	IDFunc  func() int64
}

// NewStore constructs a catalog store over the given slot.
func NewStore(slot repositories.Slot) *Store {
	return &Store{slot: slot}
}

// GetAll returns the full catalog in insertion order. A slot that was never
// written, or whose contents do not parse, reads as an empty catalog.
func (s *Store) GetAll(ctx context.Context) ([]models.VideoRecord, error) {
	return s.load(ctx)
}

// GetByCategory returns records matching the category, preserving order.
func (s *Store) GetByCategory(ctx context.Context, category string) ([]models.VideoRecord, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var filtered []models.VideoRecord
	for _, record := range records {
		if record.Category == category {
			filtered = append(filtered, record)
		}
	}
	return filtered, nil
}

// Add assigns a fresh id and creation timestamp, appends the record, and
// persists the catalog. The completed record is returned.
func (s *Store) Add(ctx context.Context, record models.VideoRecord) (models.VideoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return models.VideoRecord{}, err
	}

	record.ID = s.nextID(records)
	record.DateAdded = s.now().Format(time.RFC3339)

	records = append(records, record)
	if err := s.persist(ctx, records); err != nil {
		return models.VideoRecord{}, err
	}
	return record, nil
}

// Update merges the patch into the record with the given id and persists.
// A nil record is returned, without error, when the id does not exist; the
// catalog is left untouched in that case.
func (s *Store) Update(ctx context.Context, id int64, patch Patch) (*models.VideoRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ID != id {
			continue
		}
		patch.apply(&records[i])
		if err := s.persist(ctx, records); err != nil {
			return nil, err
		}
		updated := records[i]
		return &updated, nil
	}
	return nil, nil
}

// Delete removes the record with the given id. Deleting an id that does not
// exist is not an error and leaves the catalog unchanged on disk apart from
// a rewrite of the same contents.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := records[:0]
	for _, record := range records {
		if record.ID != id {
			kept = append(kept, record)
		}
	}
	return s.persist(ctx, kept)
}

// ImportAll replaces the whole catalog with the parsed payload. When the
// payload does not parse, the existing catalog is left untouched.
func (s *Store) ImportAll(ctx context.Context, jsonText []byte) error {
	var records []models.VideoRecord
	if err := json.Unmarshal(jsonText, &records); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, records)
}

// ExportAll serializes the catalog as pretty-printed JSON for external backup.
func (s *Store) ExportAll(ctx context.Context) ([]byte, error) {
	records, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.VideoRecord{}
	}
	return json.MarshalIndent(records, "", "  ")
}

// Stats counts records in total and grouped by type and category.
func (s *Store) Stats(ctx context.Context) (models.CatalogStats, error) {
	records, err := s.load(ctx)
	if err != nil {
		return models.CatalogStats{}, err
	}

	stats := models.CatalogStats{
		Total:      len(records),
		ByType:     make(map[string]int),
		ByCategory: make(map[string]int),
	}
	for _, record := range records {
		stats.ByType[record.Type]++
		stats.ByCategory[record.Category]++
	}
	return stats, nil
}

func (s *Store) load(ctx context.Context) ([]models.VideoRecord, error) {
	data, ok, err := s.slot.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var records []models.VideoRecord
	if err := json.Unmarshal(data, &records); err != nil {
		// Corrupt slot contents degrade to an empty catalog, never a crash.
		logging.FromContext(ctx).Warn("catalog slot contains invalid JSON, treating as empty", "error", err)
		return nil, nil
	}
	return records, nil
}

func (s *Store) persist(ctx context.Context, records []models.VideoRecord) error {
	if records == nil {
		records = []models.VideoRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return s.slot.Save(ctx, data)
}

func (s *Store) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc()
	}
	return time.Now().UTC()
}

// nextID produces a time-based id, bumped past any existing id so that two
// adds inside the same millisecond stay unique.
func (s *Store) nextID(records []models.VideoRecord) int64 {
	candidate := s.now().UnixMilli()
	if s.IDFunc != nil {
		candidate = s.IDFunc()
	}
	for _, record := range records {
		if record.ID >= candidate {
			candidate = record.ID + 1
		}
	}
	return candidate
}

// Patch describes a shallow merge into an existing record: nil fields are
// retained, non-nil fields overwrite.
type Patch struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Category      *string `json:"category"`
	Type          *string `json:"type"`
	YouTubeID     *string `json:"youtubeId"`
	VimeoID       *string `json:"vimeoId"`
	FileName      *string `json:"fileName"`
	ThumbnailName *string `json:"thumbnailName"`
	IsManual      *bool   `json:"isManual"`
}

func (p Patch) apply(record *models.VideoRecord) {
	if p.Title != nil {
		record.Title = *p.Title
	}
	if p.Description != nil {
		record.Description = *p.Description
	}
	if p.Category != nil {
		record.Category = *p.Category
	}
	if p.Type != nil {
		record.Type = *p.Type
	}
	if p.YouTubeID != nil {
		record.YouTubeID = *p.YouTubeID
	}
	if p.VimeoID != nil {
		record.VimeoID = *p.VimeoID
	}
	if p.FileName != nil {
		record.FileName = *p.FileName
	}
	if p.ThumbnailName != nil {
		record.ThumbnailName = *p.ThumbnailName
	}
	if p.IsManual != nil {
		record.IsManual = *p.IsManual
	}
}
