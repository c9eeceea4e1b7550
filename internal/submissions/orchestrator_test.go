package submissions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/campaignvideos/backend/internal/models"
	"github.com/campaignvideos/backend/internal/uploads"
)

type uploaderStub struct {
	names []string
	calls []string
	errAt int // 1-based call index that fails; 0 means never
}

func (u *uploaderStub) Process(ctx context.Context, up uploads.Upload) (models.UploadResult, error) {
	u.calls = append(u.calls, up.FileName)
	if u.errAt == len(u.calls) {
		err := uploads.ErrInvalidType
		return models.UploadResult{Success: false, Message: err.Error()}, err
	}
	name := u.names[len(u.calls)-1]
	return models.UploadResult{Success: true, FileName: name}, nil
}

type catalogStub struct {
	added  []models.VideoRecord
	addErr error
}

func (c *catalogStub) Add(ctx context.Context, record models.VideoRecord) (models.VideoRecord, error) {
	if c.addErr != nil {
		return models.VideoRecord{}, c.addErr
	}
	record.ID = int64(len(c.added) + 1)
	record.DateAdded = "2024-06-01T12:00:00Z"
	c.added = append(c.added, record)
	return record, nil
}

func filePart(name, mimeType string) *FilePart {
	return &FilePart{
		FileName: name,
		MIMEType: mimeType,
		Size:     4,
		Content:  strings.NewReader("data"),
	}
}

func TestSubmitYouTube(t *testing.T) {
	cat := &catalogStub{}
	o := &Orchestrator{Uploader: &uploaderStub{}, Catalog: cat}

	record, err := o.Submit(context.Background(), Submission{
		Title:       "T",
		Description: "D",
		Category:    "featured",
		Type:        models.TypeYouTube,
		YouTubeID:   "abc123",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if record.YouTubeID != "abc123" || record.Type != models.TypeYouTube {
		t.Fatalf("unexpected record: %+v", record)
	}
	if len(cat.added) != 1 {
		t.Fatalf("expected 1 record added, got %d", len(cat.added))
	}
}

func TestSubmitVimeo(t *testing.T) {
	cat := &catalogStub{}
	o := &Orchestrator{Uploader: &uploaderStub{}, Catalog: cat}

	record, err := o.Submit(context.Background(), Submission{
		Title:       "T",
		Description: "D",
		Type:        models.TypeVimeo,
		VimeoID:     "  987  ",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if record.VimeoID != "987" {
		t.Fatalf("expected trimmed vimeo id, got %q", record.VimeoID)
	}
}

func TestSubmitLocalUploadsSequentially(t *testing.T) {
	up := &uploaderStub{names: []string{"1_a.mp4", "2_b.jpg"}}
	cat := &catalogStub{}
	o := &Orchestrator{Uploader: up, Catalog: cat}

	record, err := o.Submit(context.Background(), Submission{
		Title:         "T",
		Description:   "D",
		Type:          models.TypeLocal,
		VideoFile:     filePart("clip.mp4", "video/mp4"),
		ThumbnailFile: filePart("poster.jpg", "image/jpeg"),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if len(up.calls) != 2 || up.calls[0] != "clip.mp4" || up.calls[1] != "poster.jpg" {
		t.Fatalf("expected video before thumbnail, got calls %v", up.calls)
	}
	if record.FileName != "1_a.mp4" || record.ThumbnailName != "2_b.jpg" {
		t.Fatalf("unexpected stored names: %+v", record)
	}
	if record.IsManual {
		t.Fatal("uploaded record must not be flagged manual")
	}
}

func TestSubmitLocalVideoUploadFailureAborts(t *testing.T) {
	up := &uploaderStub{errAt: 1}
	cat := &catalogStub{}
	o := &Orchestrator{Uploader: up, Catalog: cat}

	_, err := o.Submit(context.Background(), Submission{
		Title:         "T",
		Description:   "D",
		Type:          models.TypeLocal,
		VideoFile:     filePart("clip.bin", "application/octet-stream"),
		ThumbnailFile: filePart("poster.jpg", "image/jpeg"),
	})
	if !errors.Is(err, uploads.ErrInvalidType) {
		t.Fatalf("expected upload error to propagate, got %v", err)
	}
	if len(up.calls) != 1 {
		t.Fatalf("expected no thumbnail upload after video failure, got %v", up.calls)
	}
	if len(cat.added) != 0 {
		t.Fatal("no record may be persisted on upload failure")
	}
}

func TestSubmitLocalThumbnailUploadFailureAborts(t *testing.T) {
	up := &uploaderStub{names: []string{"1_a.mp4", ""}, errAt: 2}
	cat := &catalogStub{}
	o := &Orchestrator{Uploader: up, Catalog: cat}

	_, err := o.Submit(context.Background(), Submission{
		Title:         "T",
		Description:   "D",
		Type:          models.TypeLocal,
		VideoFile:     filePart("clip.mp4", "video/mp4"),
		ThumbnailFile: filePart("huge.png", "image/png"),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(cat.added) != 0 {
		t.Fatal("no record may be persisted when the thumbnail upload fails")
	}
}

func TestSubmitLocalManualFallback(t *testing.T) {
	cat := &catalogStub{}
	o := &Orchestrator{
		Uploader: &uploaderStub{},
		Catalog:  cat,
		NowFunc: func() time.Time {
			return time.UnixMilli(1717243200000).UTC()
		},
	}

	record, err := o.Submit(context.Background(), Submission{
		Title:       "T",
		Description: "D",
		Type:        models.TypeLocal,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if record.FileName != "manual_1717243200000.mp4" {
		t.Fatalf("unexpected manual filename: %q", record.FileName)
	}
	if !record.IsManual {
		t.Fatal("expected manual flag set")
	}
}

func TestSubmitValidation(t *testing.T) {
	o := &Orchestrator{Uploader: &uploaderStub{}, Catalog: &catalogStub{}}

	cases := []struct {
		name string
		sub  Submission
	}{
		{"missingTitle", Submission{Description: "D", Type: models.TypeYouTube, YouTubeID: "x"}},
		{"missingDescription", Submission{Title: "T", Type: models.TypeYouTube, YouTubeID: "x"}},
		{"missingYouTubeID", Submission{Title: "T", Description: "D", Type: models.TypeYouTube}},
		{"missingVimeoID", Submission{Title: "T", Description: "D", Type: models.TypeVimeo}},
		{"unknownType", Submission{Title: "T", Description: "D", Type: "dailymotion"}},
		{"emptyType", Submission{Title: "T", Description: "D"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := o.Submit(context.Background(), tc.sub); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}
