package uploads

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campaignvideos/backend/internal/logging"
	"github.com/campaignvideos/backend/internal/models"
	"github.com/campaignvideos/backend/internal/storage"
)

// Size caps, inclusive: a file exactly at the cap passes.
const (
	MaxVideoBytes = 50 * 1024 * 1024
	MaxImageBytes = 5 * 1024 * 1024
)

var allowedVideoTypes = map[string]struct{}{
	"video/mp4":       {},
	"video/webm":      {},
	"video/quicktime": {},
	"video/x-msvideo": {},
	"video/avi":       {},
}

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// Classify maps a MIME type onto the coarse video/image tag. The boolean
// reports whether the type is allowed at all.
func Classify(mimeType string) (string, bool) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if _, ok := allowedVideoTypes[mimeType]; ok {
		return models.FileTypeVideo, true
	}
	if _, ok := allowedImageTypes[mimeType]; ok {
		return models.FileTypeImage, true
	}
	return "", false
}

// Upload describes one submitted file: the client-reported name, MIME type
// and size, plus a reader over the transient upload bytes.
type Upload struct {
	FileName string
	MIMEType string
	Size     int64
	Content  io.Reader
}

// Service validates uploads and persists accepted files under generated names.
type Service struct {
	Storage storage.AssetStorage
	// Debug enables per-step pipeline logging.
	Debug bool

	NowFunc   func() time.Time
	TokenFunc func() string
}

// NewService constructs an upload service writing to the provided storage.
func NewService(st storage.AssetStorage, debug bool) *Service {
	return &Service{Storage: st, Debug: debug}
}

// Process runs the validation pipeline and stores the file. The pipeline
// short-circuits on the first failure: presence, MIME type, size, storage.
// The returned UploadResult is always populated so handlers can serialize it
// directly; the error carries the sentinel for status-code mapping.
func (s *Service) Process(ctx context.Context, up Upload) (models.UploadResult, error) {
	logger := logging.FromContext(ctx)

	if up.Content == nil || strings.TrimSpace(up.FileName) == "" {
		err := fmt.Errorf("%w: no file selected", ErrNoFile)
		return failure(err), err
	}

	kind, ok := Classify(up.MIMEType)
	if !ok {
		if s.Debug {
			logger.Debug("upload rejected by type check", "mimeType", up.MIMEType, "fileName", up.FileName)
		}
		return failure(ErrInvalidType), ErrInvalidType
	}

	limit := int64(MaxImageBytes)
	limitLabel := "5MB"
	if kind == models.FileTypeVideo {
		limit = MaxVideoBytes
		limitLabel = "50MB"
	}
	if up.Size > limit {
		err := fmt.Errorf("%s %w, maximum size is %s", kind, ErrFileTooLarge, limitLabel)
		if s.Debug {
			logger.Debug("upload rejected by size check", "size", up.Size, "limit", limit, "fileName", up.FileName)
		}
		return failure(err), err
	}

	name := s.generateName(up.FileName)
	if s.Debug {
		logger.Debug("storing upload", "fileName", up.FileName, "storedName", name, "kind", kind, "size", up.Size)
	}

	if _, err := s.Storage.Save(ctx, name, up.Content); err != nil {
		logger.Error("store upload", "storedName", name, "error", err)
		wrapped := fmt.Errorf("%w: %v", ErrStorageWrite, err)
		return failure(wrapped), wrapped
	}

	logger.Info("upload stored", "storedName", name, "kind", kind, "size", up.Size)

	return models.UploadResult{
		Success:  true,
		Message:  "File uploaded successfully",
		FileName: name,
		FileType: kind,
		FileSize: up.Size,
	}, nil
}

// generateName builds a collision-resistant stored name of the form
// <unixSeconds>_<token><origExt>. The extension is taken verbatim from the
// submitted name, case preserved; the token makes same-second uploads safe.
func (s *Service) generateName(original string) string {
	now := time.Now
	if s.NowFunc != nil {
		now = s.NowFunc
	}
	token := s.TokenFunc
	if token == nil {
		token = defaultToken
	}

	ext := filepath.Ext(original)
	return fmt.Sprintf("%d_%s%s", now().Unix(), token(), ext)
}

func defaultToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func failure(err error) models.UploadResult {
	return models.UploadResult{Success: false, Message: err.Error()}
}
