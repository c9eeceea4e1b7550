package models

// Video type discriminators. Exactly one of YouTubeID, VimeoID, or FileName
// is populated on a record, selected by Type.
const (
	TypeYouTube = "youtube"
	TypeVimeo   = "vimeo"
	TypeLocal   = "local"
)

// Well-known categories. The vocabulary is open; these are the two the
// campaign site renders into dedicated containers.
const (
	CategoryFeatured = "featured"
	CategoryShorts   = "shorts"
)

// VideoRecord is one catalog entry describing a video's metadata and embed
// source. The JSON field names match the persisted catalog format.
type VideoRecord struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Type          string `json:"type"`
	YouTubeID     string `json:"youtubeId,omitempty"`
	VimeoID       string `json:"vimeoId,omitempty"`
	FileName      string `json:"fileName,omitempty"`
	ThumbnailName string `json:"thumbnailName,omitempty"`
	DateAdded     string `json:"dateAdded"`
	IsManual      bool   `json:"isManual,omitempty"`
}

// UploadResult is the response value produced by the upload service. It is
// returned to callers and never persisted.
type UploadResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType,omitempty"`
	FileSize int64  `json:"fileSize,omitempty"`
}

// Coarse file type tags reported by the upload service.
const (
	FileTypeVideo = "video"
	FileTypeImage = "image"
)

// CatalogStats summarises the catalog for the admin dashboard.
type CatalogStats struct {
	Total      int            `json:"total"`
	ByType     map[string]int `json:"byType"`
	ByCategory map[string]int `json:"byCategory"`
}
