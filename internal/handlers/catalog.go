package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/campaignvideos/backend/internal/catalog"
	"github.com/campaignvideos/backend/internal/logging"
	"github.com/campaignvideos/backend/internal/models"
	"github.com/campaignvideos/backend/internal/submissions"
	"github.com/campaignvideos/backend/internal/uploads"
)

// maxImportBody bounds catalog import payloads.
const maxImportBody = 8 << 20

// CatalogHandler implements the catalog CRUD and import/export endpoints.
type CatalogHandler struct {
	Catalog     CatalogStore
	Submissions SubmissionOrchestrator
	Limiter     RateLimiter
}

// List handles GET /api/v1/videos, optionally filtered by ?category=.
func (h CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Catalog == nil {
		logger.Error("catalog store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "catalog unavailable"})
		return
	}

	var (
		records []models.VideoRecord
		err     error
	)
	if category := r.URL.Query().Get("category"); category != "" {
		records, err = h.Catalog.GetByCategory(ctx, category)
	} else {
		records, err = h.Catalog.GetAll(ctx)
	}
	if err != nil {
		logger.Error("list catalog", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to read catalog"})
		return
	}
	if records == nil {
		records = []models.VideoRecord{}
	}

	respondJSON(ctx, w, http.StatusOK, videoListResponse{Videos: records})
}

// Submit handles POST /api/v1/videos: a multipart form submission carrying
// the record fields plus optional videoFile/thumbnailFile parts.
func (h CatalogHandler) Submit(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
	case http.MethodGet:
		h.List(w, r)
		return
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Submissions == nil {
		logger.Error("submission orchestrator unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "submissions unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "submit") {
		logger.Warn("submission rate limited", "remote_addr", r.RemoteAddr)
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many submissions, please try again later"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		logger.Warn("invalid submission form", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	sub := submissions.Submission{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Type:        r.FormValue("type"),
		YouTubeID:   r.FormValue("youtubeId"),
		VimeoID:     r.FormValue("vimeoId"),
	}

	videoPart, err := formFilePart(r, "videoFile")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": uploads.MapFormError(err).Error()})
		return
	}
	if videoPart != nil {
		defer videoPart.close()
		sub.VideoFile = &videoPart.FilePart
	}

	thumbPart, err := formFilePart(r, "thumbnailFile")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": uploads.MapFormError(err).Error()})
		return
	}
	if thumbPart != nil {
		defer thumbPart.close()
		sub.ThumbnailFile = &thumbPart.FilePart
	}

	record, err := h.Submissions.Submit(ctx, sub)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, submissions.ErrValidation), errors.Is(err, uploads.ErrNoFile):
			status = http.StatusBadRequest
		case errors.Is(err, uploads.ErrInvalidType):
			status = http.StatusUnsupportedMediaType
		case errors.Is(err, uploads.ErrFileTooLarge):
			status = http.StatusRequestEntityTooLarge
		}
		logger.Warn("submission failed", "error", err, "status", status)
		respondJSON(ctx, w, status, map[string]string{"error": err.Error()})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, videoResponse{Video: record})
}

// Detail handles PATCH/PUT and DELETE on /api/v1/videos/{id}.
func (h CatalogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Catalog == nil {
		logger.Error("catalog store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "catalog unavailable"})
		return
	}

	idText := strings.TrimPrefix(r.URL.Path, "/api/v1/videos/")
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid video id"})
		return
	}

	switch r.Method {
	case http.MethodPatch, http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h CatalogHandler) update(w http.ResponseWriter, r *http.Request, id int64) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var patch catalog.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		logger.Warn("invalid update payload", "error", err, "id", id)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	record, err := h.Catalog.Update(ctx, id, patch)
	if err != nil {
		logger.Error("update record", "error", err, "id", id)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to update record"})
		return
	}
	if record == nil {
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, videoResponse{Video: *record})
}

func (h CatalogHandler) delete(w http.ResponseWriter, r *http.Request, id int64) {
	ctx := r.Context()

	if err := h.Catalog.Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Error("delete record", "error", err, "id", id)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to delete record"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/v1/videos/export, serving the backup download.
func (h CatalogHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	data, err := h.Catalog.ExportAll(ctx)
	if err != nil {
		logger.Error("export catalog", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to export catalog"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="campaign-videos-backup.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Import handles POST /api/v1/videos/import, replacing the whole catalog.
func (h CatalogHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBody))
	if err != nil {
		logger.Warn("read import payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
		return
	}

	if err := h.Catalog.ImportAll(ctx, body); err != nil {
		if errors.Is(err, catalog.ErrInvalidJSON) {
			logger.Warn("import rejected", "error", err)
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		logger.Error("import catalog", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to import catalog"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "imported"})
}

// Stats handles GET /api/v1/videos/stats.
func (h CatalogHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	stats, err := h.Catalog.Stats(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("catalog stats", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to compute stats"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, stats)
}

type videoListResponse struct {
	Videos []models.VideoRecord `json:"videos"`
}

type videoResponse struct {
	Video models.VideoRecord `json:"video"`
}

type closableFilePart struct {
	submissions.FilePart
	file io.Closer
}

func (p *closableFilePart) close() {
	if p.file != nil {
		p.file.Close()
	}
}

// formFilePart extracts an optional file part from the parsed form. A missing
// part is not an error; zero-size parts are treated as absent, matching how
// browsers submit empty file inputs.
func formFilePart(r *http.Request, field string) (*closableFilePart, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}

	header := r.MultipartForm.File[field][0]
	if header.Size == 0 {
		return nil, nil
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}

	return &closableFilePart{
		FilePart: submissions.FilePart{
			FileName: header.Filename,
			MIMEType: header.Header.Get("Content-Type"),
			Size:     header.Size,
			Content:  file,
		},
		file: file,
	}, nil
}
