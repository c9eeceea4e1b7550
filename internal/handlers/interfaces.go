package handlers

import (
	"context"

	"github.com/campaignvideos/backend/internal/catalog"
	"github.com/campaignvideos/backend/internal/models"
	"github.com/campaignvideos/backend/internal/submissions"
	"github.com/campaignvideos/backend/internal/uploads"
)

// UploadService validates and stores one submitted file per call.
type UploadService interface {
	Process(ctx context.Context, up uploads.Upload) (models.UploadResult, error)
}

// CatalogStore captures the catalog operations required by the HTTP handlers.
type CatalogStore interface {
	GetAll(ctx context.Context) ([]models.VideoRecord, error)
	GetByCategory(ctx context.Context, category string) ([]models.VideoRecord, error)
	Update(ctx context.Context, id int64, patch catalog.Patch) (*models.VideoRecord, error)
	Delete(ctx context.Context, id int64) error
	ImportAll(ctx context.Context, jsonText []byte) error
	ExportAll(ctx context.Context) ([]byte, error)
	Stats(ctx context.Context) (models.CatalogStats, error)
}

// SubmissionOrchestrator runs the add-video workflow for one form submission.
type SubmissionOrchestrator interface {
	Submit(ctx context.Context, sub submissions.Submission) (models.VideoRecord, error)
}

// FragmentRenderer produces embeddable HTML for sets of records.
type FragmentRenderer interface {
	RenderAll(records []models.VideoRecord) string
	RenderAdminList(records []models.VideoRecord) string
}
