package catalog

import (
	"context"
	"time"

	"github.com/campaignvideos/backend/internal/models"
)

// sampleRecords is the placeholder content installed on first use so the site
// is never empty before the campaign team adds real videos.
func sampleRecords(now time.Time) []models.VideoRecord {
	dateAdded := now.Format(time.RFC3339)
	return []models.VideoRecord{
		{
			ID:          1,
			Title:       "A Vision for Our City",
			Description: "Learn about the campaign's comprehensive plan to revitalize the city and bring real change to every neighborhood.",
			Category:    models.CategoryFeatured,
			Type:        models.TypeYouTube,
			YouTubeID:   "dQw4w9WgXcQ",
			DateAdded:   dateAdded,
		},
		{
			ID:          2,
			Title:       "Economic Development Plan",
			Description: "Discover how the candidate's business experience will create jobs and opportunities for all residents.",
			Category:    models.CategoryFeatured,
			Type:        models.TypeVimeo,
			VimeoID:     "123456789",
			DateAdded:   dateAdded,
		},
		{
			ID:          3,
			Title:       "Meet the Candidate - 60 Second Introduction",
			Description: "A quick introduction to the candidate and the campaign for mayor.",
			Category:    models.CategoryShorts,
			Type:        models.TypeYouTube,
			YouTubeID:   "dQw4w9WgXcQ",
			DateAdded:   dateAdded,
		},
	}
}

// Seed installs the sample records when the slot has never been written.
// Existing data, including an explicitly emptied catalog, is never overwritten.
func (s *Store) Seed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok, err := s.slot.Load(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return s.persist(ctx, sampleRecords(s.now()))
}
