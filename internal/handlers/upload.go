package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/campaignvideos/backend/internal/logging"
	"github.com/campaignvideos/backend/internal/models"
	"github.com/campaignvideos/backend/internal/uploads"
)

// maxUploadBody caps the whole multipart request. The per-kind size checks
// happen in the upload service; this only bounds memory and bandwidth.
const maxUploadBody = 64 << 20

// UploadHandler implements the file-upload endpoints. Both routes share one
// implementation; the legacy route differs only in always answering 200 with
// the outcome carried in the JSON body, which the original site's JavaScript
// depends on.
type UploadHandler struct {
	Uploads UploadService
	Limiter RateLimiter
}

// Handle implements POST /api/v1/uploads with conventional status codes.
func (h UploadHandler) Handle(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, false)
}

// HandleLegacy implements POST /upload-handler.php, always answering 200.
func (h UploadHandler) HandleLegacy(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, true)
}

func (h UploadHandler) serve(w http.ResponseWriter, r *http.Request, legacy bool) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if r.Method != http.MethodPost {
		if legacy {
			respondJSON(ctx, w, http.StatusOK, models.UploadResult{Message: "Invalid request method"})
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if h.Uploads == nil {
		logger.Error("upload service unavailable")
		h.respond(ctx, w, legacy, http.StatusInternalServerError, models.UploadResult{Message: "upload service unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "upload") {
		logger.Warn("upload rate limited", "remote_addr", r.RemoteAddr)
		h.respond(ctx, w, legacy, http.StatusTooManyRequests, models.UploadResult{Message: "too many uploads, please try again later"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

	file, header, err := r.FormFile("file")
	if err != nil {
		mapped := uploads.MapFormError(err)
		logger.Warn("upload missing file", "error", err)
		h.respond(ctx, w, legacy, http.StatusBadRequest, models.UploadResult{Message: mapped.Error()})
		return
	}
	defer file.Close()

	result, err := h.Uploads.Process(ctx, uploads.Upload{
		FileName: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		h.respond(ctx, w, legacy, uploadErrorStatus(err), result)
		return
	}

	respondJSON(ctx, w, http.StatusOK, result)
}

// respond collapses the status to 200 on the legacy route; the body already
// carries success/failure.
func (h UploadHandler) respond(ctx context.Context, w http.ResponseWriter, legacy bool, status int, result models.UploadResult) {
	if legacy {
		status = http.StatusOK
	}
	respondJSON(ctx, w, status, result)
}

func uploadErrorStatus(err error) int {
	switch {
	case errors.Is(err, uploads.ErrNoFile):
		return http.StatusBadRequest
	case errors.Is(err, uploads.ErrInvalidType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, uploads.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
