package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	upload := UploadHandler{Uploads: deps.Uploads, Limiter: deps.UploadLimiter}
	cat := CatalogHandler{Catalog: deps.Catalog, Submissions: deps.Submissions, Limiter: deps.UploadLimiter}
	fragments := FragmentHandler{Catalog: deps.Catalog, Renderer: deps.Renderer}

	mux.HandleFunc("/healthz", health.Handle)

	// Legacy path the original site's JavaScript posts to.
	mux.HandleFunc("/upload-handler.php", upload.HandleLegacy)
	mux.HandleFunc("/api/v1/uploads", upload.Handle)

	mux.HandleFunc("/api/v1/videos", cat.Submit)
	mux.HandleFunc("/api/v1/videos/", cat.Detail)
	mux.HandleFunc("/api/v1/videos/export", cat.Export)
	mux.HandleFunc("/api/v1/videos/import", cat.Import)
	mux.HandleFunc("/api/v1/videos/stats", cat.Stats)
	mux.HandleFunc("/api/v1/videos/html", fragments.Handle)

	if deps.UploadDir != "" {
		fileServer := http.FileServer(http.Dir(deps.UploadDir))
		mux.Handle("/uploads/", http.StripPrefix("/uploads/", fileServer))
	}
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Uploads       UploadService
	Catalog       CatalogStore
	Submissions   SubmissionOrchestrator
	Renderer      FragmentRenderer
	UploadLimiter RateLimiter
	// UploadDir enables static serving of stored assets when the local
	// storage backend is active.
	UploadDir string
}
