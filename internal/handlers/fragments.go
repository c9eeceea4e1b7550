package handlers

import (
	"net/http"

	"github.com/campaignvideos/backend/internal/logging"
	"github.com/campaignvideos/backend/internal/models"
)

// FragmentHandler serves rendered HTML fragments the site embeds into its
// video containers.
type FragmentHandler struct {
	Catalog  CatalogStore
	Renderer FragmentRenderer
}

// Handle implements GET /api/v1/videos/html. Query parameters: ?category=
// filters the set, ?view=admin selects the admin-list rendering.
func (h FragmentHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Catalog == nil || h.Renderer == nil {
		logger.Error("fragment dependencies unavailable", "hasCatalog", h.Catalog != nil, "hasRenderer", h.Renderer != nil)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
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
		logger.Error("load records for fragment", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var markup string
	if r.URL.Query().Get("view") == "admin" {
		markup = h.Renderer.RenderAdminList(records)
	} else {
		markup = h.Renderer.RenderAll(records)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(markup))
}
