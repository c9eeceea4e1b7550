package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/campaignvideos/backend/internal/catalog"
	"github.com/campaignvideos/backend/internal/models"
	"github.com/campaignvideos/backend/internal/submissions"
)

type memSlot struct {
	data []byte
	ok   bool
}

func (s *memSlot) Load(ctx context.Context) ([]byte, bool, error) {
	return s.data, s.ok, nil
}

func (s *memSlot) Save(ctx context.Context, data []byte) error {
	s.data = append([]byte(nil), data...)
	s.ok = true
	return nil
}

func seededStore(t *testing.T, records []models.VideoRecord) *catalog.Store {
	t.Helper()

	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal seed records: %v", err)
	}
	store := catalog.NewStore(&memSlot{data: data, ok: true})
	base := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	store.NowFunc = func() time.Time { return base }
	return store
}

func catalogRecords() []models.VideoRecord {
	return []models.VideoRecord{
		{
			ID:          1,
			Title:       "City Hall Update",
			Description: "Monthly update",
			Category:    models.CategoryFeatured,
			Type:        models.TypeYouTube,
			YouTubeID:   "abc123",
			DateAdded:   "2024-05-01T00:00:00Z",
		},
		{
			ID:          2,
			Title:       "Quick Intro",
			Description: "Short form",
			Category:    models.CategoryShorts,
			Type:        models.TypeLocal,
			FileName:    "1717243200_aaaa1111.mp4",
			DateAdded:   "2024-05-02T00:00:00Z",
		},
	}
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []models.VideoRecord {
	t.Helper()
	var body struct {
		Videos []models.VideoRecord `json:"videos"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return body.Videos
}

func TestCatalogList(t *testing.T) {
	handler := CatalogHandler{Catalog: seededStore(t, catalogRecords())}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d", rec.Code)
	}
	videos := decodeList(t, rec)
	if len(videos) != 2 {
		t.Fatalf("expected 2 records, got %d", len(videos))
	}
	if videos[0].Title != "City Hall Update" || videos[1].Title != "Quick Intro" {
		t.Fatalf("unexpected order: %v", videos)
	}
}

func TestCatalogListByCategory(t *testing.T) {
	handler := CatalogHandler{Catalog: seededStore(t, catalogRecords())}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos?category=shorts", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	videos := decodeList(t, rec)
	if len(videos) != 1 || videos[0].Category != models.CategoryShorts {
		t.Fatalf("unexpected filtered result: %v", videos)
	}
}

func TestCatalogListEmpty(t *testing.T) {
	handler := CatalogHandler{Catalog: catalog.NewStore(&memSlot{})}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); !strings.Contains(body, `"videos":[]`) {
		t.Fatalf("expected empty array, got %s", body)
	}
}

func TestCatalogUpdate(t *testing.T) {
	store := seededStore(t, catalogRecords())
	handler := CatalogHandler{Catalog: store}

	payload := `{"title":"Renamed Update"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/videos/1", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.Detail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Video models.VideoRecord `json:"video"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Video.Title != "Renamed Update" {
		t.Fatalf("expected renamed record, got %+v", body.Video)
	}
	if body.Video.YouTubeID != "abc123" {
		t.Fatal("expected untouched fields preserved")
	}

	records, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if records[0].Title != "Renamed Update" {
		t.Fatal("expected update persisted")
	}
}

func TestCatalogUpdateNotFound(t *testing.T) {
	handler := CatalogHandler{Catalog: seededStore(t, catalogRecords())}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/videos/999", strings.NewReader(`{"title":"x"}`))
	rec := httptest.NewRecorder()

	handler.Detail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d", rec.Code)
	}
}

func TestCatalogDetailBadID(t *testing.T) {
	handler := CatalogHandler{Catalog: seededStore(t, catalogRecords())}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/videos/not-a-number", nil)
	rec := httptest.NewRecorder()

	handler.Detail(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d", rec.Code)
	}
}

func TestCatalogDelete(t *testing.T) {
	store := seededStore(t, catalogRecords())
	handler := CatalogHandler{Catalog: store}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/videos/1", nil)
	rec := httptest.NewRecorder()

	handler.Detail(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d", rec.Code)
	}

	records, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(records) != 1 || records[0].ID != 2 {
		t.Fatalf("expected record 1 removed, got %v", records)
	}
}

func TestCatalogExport(t *testing.T) {
	handler := CatalogHandler{Catalog: seededStore(t, catalogRecords())}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/export", nil)
	rec := httptest.NewRecorder()

	handler.Export(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="campaign-videos-backup.json"` {
		t.Fatalf("unexpected disposition: %q", got)
	}

	var exported []models.VideoRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &exported); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if len(exported) != 2 {
		t.Fatalf("expected 2 exported records, got %d", len(exported))
	}
}

func TestCatalogImport(t *testing.T) {
	store := seededStore(t, catalogRecords())
	handler := CatalogHandler{Catalog: store}

	payload := `[{"id":10,"title":"Imported","description":"d","category":"featured","type":"youtube","youtubeId":"zzz","dateAdded":"2024-06-01T00:00:00Z"}]`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/import", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.Import(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d body %s", rec.Code, rec.Body.String())
	}

	records, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(records) != 1 || records[0].Title != "Imported" {
		t.Fatalf("expected replaced catalog, got %v", records)
	}
}

func TestCatalogImportRejectsMalformedJSON(t *testing.T) {
	store := seededStore(t, catalogRecords())
	handler := CatalogHandler{Catalog: store}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/import", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	handler.Import(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d", rec.Code)
	}

	records, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(records) != 2 {
		t.Fatal("expected catalog untouched after rejected import")
	}
}

func TestCatalogStats(t *testing.T) {
	handler := CatalogHandler{Catalog: seededStore(t, catalogRecords())}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/stats", nil)
	rec := httptest.NewRecorder()

	handler.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d", rec.Code)
	}

	var stats models.CatalogStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 2 {
		t.Fatalf("unexpected total: %d", stats.Total)
	}
	if stats.ByType[models.TypeYouTube] != 1 || stats.ByCategory[models.CategoryShorts] != 1 {
		t.Fatalf("unexpected breakdown: %+v", stats)
	}
}

func submissionForm(t *testing.T, fields map[string]string, files map[string][2]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	for field, file := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file[0]))
		header.Set("Content-Type", file[1])
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part %s: %v", field, err)
		}
		if _, err := part.Write([]byte("file-bytes")); err != nil {
			t.Fatalf("write part %s: %v", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func newSubmitHandler(t *testing.T) (CatalogHandler, *catalog.Store, *assetStorageStub) {
	t.Helper()

	store := seededStore(t, nil)
	st := newAssetStorageStub()
	orchestrator := &submissions.Orchestrator{
		Uploader: newUploadService(st),
		Catalog:  store,
	}
	return CatalogHandler{Catalog: store, Submissions: orchestrator}, store, st
}

func TestSubmitYouTubeRecord(t *testing.T) {
	handler, store, _ := newSubmitHandler(t)

	body, contentType := submissionForm(t, map[string]string{
		"title":       "Town Hall Recap",
		"description": "Highlights from the town hall",
		"category":    "featured",
		"type":        "youtube",
		"youtubeId":   "dQw4w9WgXcQ",
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Video models.VideoRecord `json:"video"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Video.ID == 0 || resp.Video.YouTubeID != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected record: %+v", resp.Video)
	}

	records, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(records))
	}
}

func TestSubmitLocalRecordWithFiles(t *testing.T) {
	handler, store, st := newSubmitHandler(t)

	body, contentType := submissionForm(t, map[string]string{
		"title":       "Ribbon Cutting",
		"description": "New community center opening",
		"category":    "featured",
		"type":        "local",
	}, map[string][2]string{
		"videoFile":     {"ribbon.mp4", "video/mp4"},
		"thumbnailFile": {"ribbon.jpg", "image/jpeg"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d body %s", rec.Code, rec.Body.String())
	}

	records, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(records))
	}
	record := records[0]
	if !strings.HasSuffix(record.FileName, ".mp4") || !strings.HasSuffix(record.ThumbnailName, ".jpg") {
		t.Fatalf("unexpected stored names: %+v", record)
	}
	if record.IsManual {
		t.Fatal("uploaded submission must not be marked manual")
	}
	if len(st.saved) != 2 {
		t.Fatalf("expected 2 stored assets, got %d", len(st.saved))
	}
}

func TestSubmitRejectsBadThumbnailWithoutRecord(t *testing.T) {
	handler, store, st := newSubmitHandler(t)

	body, contentType := submissionForm(t, map[string]string{
		"title":       "Broken Upload",
		"description": "Thumbnail is not an image",
		"category":    "featured",
		"type":        "local",
	}, map[string][2]string{
		"videoFile":     {"clip.mp4", "video/mp4"},
		"thumbnailFile": {"notes.txt", "text/plain"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("unexpected status: got %d body %s", rec.Code, rec.Body.String())
	}

	records, err := store.GetAll(context.Background())
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(records) != 0 {
		t.Fatal("no record may be created when an upload fails")
	}
	if len(st.saved) != 1 {
		t.Fatalf("only the video upload should have landed, got %d assets", len(st.saved))
	}
}

func TestSubmitValidationFailure(t *testing.T) {
	handler, _, _ := newSubmitHandler(t)

	body, contentType := submissionForm(t, map[string]string{
		"title":       "",
		"description": "missing title",
		"category":    "featured",
		"type":        "youtube",
		"youtubeId":   "abc",
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d", rec.Code)
	}
}

func TestSubmitRateLimited(t *testing.T) {
	handler, _, _ := newSubmitHandler(t)
	handler.Limiter = &limiterStub{allow: false}

	body, contentType := submissionForm(t, map[string]string{"title": "x"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: got %d", rec.Code)
	}
}

func TestFragmentHandlerRendersCards(t *testing.T) {
	handler := FragmentHandler{
		Catalog:  seededStore(t, catalogRecords()),
		Renderer: catalog.NewRenderer("/uploads"),
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/html", nil)
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Fatalf("unexpected content type: %q", got)
	}
	markup := rec.Body.String()
	if !strings.Contains(markup, "youtube.com/embed/abc123") {
		t.Fatalf("expected youtube embed in markup: %s", markup)
	}
	if !strings.Contains(markup, "/uploads/1717243200_aaaa1111.mp4") {
		t.Fatalf("expected local video source in markup: %s", markup)
	}
}

func TestFragmentHandlerAdminView(t *testing.T) {
	handler := FragmentHandler{
		Catalog:  seededStore(t, catalogRecords()),
		Renderer: catalog.NewRenderer("/uploads"),
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/html?view=admin", nil)
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	markup := rec.Body.String()
	if !strings.Contains(markup, "YOUTUBE") {
		t.Fatalf("expected admin list markup: %s", markup)
	}
	if !strings.Contains(markup, `data-action="delete"`) {
		t.Fatalf("expected admin actions: %s", markup)
	}
}

func TestFragmentHandlerEmptyCategory(t *testing.T) {
	handler := FragmentHandler{
		Catalog:  seededStore(t, catalogRecords()),
		Renderer: catalog.NewRenderer("/uploads"),
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/html?category=nonexistent", nil)
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if !strings.Contains(rec.Body.String(), "No videos available in this category.") {
		t.Fatalf("expected placeholder, got %s", rec.Body.String())
	}
}
