// Package submissions turns a submitted admin form into a persisted catalog
// record, running any required file uploads first.
package submissions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/campaignvideos/backend/internal/logging"
	"github.com/campaignvideos/backend/internal/models"
	"github.com/campaignvideos/backend/internal/uploads"
)

// ErrValidation indicates a submission missing required fields.
var ErrValidation = errors.New("invalid submission")

// Uploader stores a submitted file and reports the generated name.
type Uploader interface {
	Process(ctx context.Context, up uploads.Upload) (models.UploadResult, error)
}

// Catalog is the subset of the store the orchestrator needs.
type Catalog interface {
	Add(ctx context.Context, record models.VideoRecord) (models.VideoRecord, error)
}

// FilePart is one file attached to the submission.
type FilePart struct {
	FileName string
	MIMEType string
	Size     int64
	Content  io.Reader
}

// Submission carries the form fields with an explicit type discriminator,
// decoupled from any UI selector state.
type Submission struct {
	Title       string
	Description string
	Category    string
	Type        string

	YouTubeID string
	VimeoID   string

	VideoFile     *FilePart
	ThumbnailFile *FilePart
}

// Orchestrator coordinates uploads and the catalog append for one submission.
type Orchestrator struct {
	Uploader Uploader
	Catalog  Catalog

	NowFunc func() time.Time
}

// Submit validates the submission, performs the uploads the chosen type
// requires (video first, then thumbnail, strictly sequential), and appends
// the completed record. Any upload failure aborts the whole submission; no
// partial record is ever persisted.
func (o *Orchestrator) Submit(ctx context.Context, sub Submission) (models.VideoRecord, error) {
	logger := logging.FromContext(ctx)

	record, err := o.buildRecord(sub)
	if err != nil {
		return models.VideoRecord{}, err
	}

	if sub.Type == models.TypeLocal {
		if sub.VideoFile != nil {
			result, err := o.Uploader.Process(ctx, uploads.Upload{
				FileName: sub.VideoFile.FileName,
				MIMEType: sub.VideoFile.MIMEType,
				Size:     sub.VideoFile.Size,
				Content:  sub.VideoFile.Content,
			})
			if err != nil {
				logger.Warn("submission aborted, video upload failed", "error", err)
				return models.VideoRecord{}, fmt.Errorf("upload video: %w", err)
			}
			record.FileName = result.FileName
		} else {
			// Manual fallback: the file will be placed by hand later.
			record.FileName = fmt.Sprintf("manual_%d.mp4", o.now().UnixMilli())
			record.IsManual = true
		}

		if sub.ThumbnailFile != nil {
			result, err := o.Uploader.Process(ctx, uploads.Upload{
				FileName: sub.ThumbnailFile.FileName,
				MIMEType: sub.ThumbnailFile.MIMEType,
				Size:     sub.ThumbnailFile.Size,
				Content:  sub.ThumbnailFile.Content,
			})
			if err != nil {
				logger.Warn("submission aborted, thumbnail upload failed", "error", err)
				return models.VideoRecord{}, fmt.Errorf("upload thumbnail: %w", err)
			}
			record.ThumbnailName = result.FileName
		}
	}

	added, err := o.Catalog.Add(ctx, record)
	if err != nil {
		return models.VideoRecord{}, fmt.Errorf("append catalog record: %w", err)
	}

	logger.Info("submission accepted", "id", added.ID, "type", added.Type, "category", added.Category)
	return added, nil
}

func (o *Orchestrator) buildRecord(sub Submission) (models.VideoRecord, error) {
	record := models.VideoRecord{
		Title:       strings.TrimSpace(sub.Title),
		Description: strings.TrimSpace(sub.Description),
		Category:    strings.TrimSpace(sub.Category),
		Type:        sub.Type,
	}

	if record.Title == "" || record.Description == "" {
		return models.VideoRecord{}, fmt.Errorf("%w: title and description are required", ErrValidation)
	}

	switch sub.Type {
	case models.TypeYouTube:
		record.YouTubeID = strings.TrimSpace(sub.YouTubeID)
		if record.YouTubeID == "" {
			return models.VideoRecord{}, fmt.Errorf("%w: youtubeId is required for youtube videos", ErrValidation)
		}
	case models.TypeVimeo:
		record.VimeoID = strings.TrimSpace(sub.VimeoID)
		if record.VimeoID == "" {
			return models.VideoRecord{}, fmt.Errorf("%w: vimeoId is required for vimeo videos", ErrValidation)
		}
	case models.TypeLocal:
	default:
		return models.VideoRecord{}, fmt.Errorf("%w: unknown video type %q", ErrValidation, sub.Type)
	}

	return record, nil
}

func (o *Orchestrator) now() time.Time {
	if o.NowFunc != nil {
		return o.NowFunc()
	}
	return time.Now().UTC()
}
