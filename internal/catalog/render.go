package catalog

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/campaignvideos/backend/internal/models"
)

// EmptyPlaceholder is the markup shown when a rendered set has no records.
const EmptyPlaceholder = `<p style="text-align: center; color: #666; padding: 2rem;">No videos available in this category.</p>`

// AdminEmptyPlaceholder is the admin-list equivalent.
const AdminEmptyPlaceholder = `<div style="padding: 2rem; text-align: center; color: #666;">No videos added yet</div>`

var platformIcons = map[string]string{
	models.TypeYouTube: "\U0001F4FA",
	models.TypeVimeo:   "\U0001F3AC",
	models.TypeLocal:   "\U0001F4BE",
}

var platformNames = map[string]string{
	models.TypeYouTube: "YouTube",
	models.TypeVimeo:   "Vimeo",
	models.TypeLocal:   "Local Video",
}

const fragmentTemplates = `{{define "youtube"}}<iframe src="https://www.youtube.com/embed/{{.YouTubeID}}" title="{{.Title}}" allowfullscreen></iframe>{{end}}
{{define "vimeo"}}<iframe src="https://player.vimeo.com/video/{{.VimeoID}}" title="{{.Title}}" allowfullscreen></iframe>{{end}}
{{define "local"}}<video controls{{if .ThumbnailName}} poster="{{uploadPath .ThumbnailName}}"{{end}}>
    <source src="{{uploadPath .FileName}}" type="video/mp4">
    <source src="{{uploadPath (webmSibling .FileName)}}" type="video/webm">
    Your browser does not support the video tag.
</video>{{end}}
{{define "card"}}<div class="video-card" data-video-id="{{.ID}}">
    <div class="video-wrapper">{{.Embed}}</div>
    <div class="video-info">
        <h3 class="video-title">{{.Title}}</h3>
        <p class="video-description">{{.Description}}</p>
        <span class="video-platform">{{.Icon}} {{.Platform}}</span>
    </div>
</div>{{end}}
{{define "adminItem"}}<div class="video-item" data-video-id="{{.ID}}">
    <div class="video-thumbnail">{{.Icon}}</div>
    <div class="video-info">
        <h3>{{.Title}}</h3>
        <p>{{.Description}}</p>
        <span class="video-platform">{{upper .Type}} &bull; {{upper .Category}}</span>
    </div>
    <div class="video-actions">
        <button class="btn btn-small btn-edit" data-action="edit">Edit</button>
        <button class="btn btn-small btn-delete" data-action="delete">Delete</button>
    </div>
</div>{{end}}`

// Renderer turns catalog records into embeddable HTML fragments. Rendering is
// a pure transformation of a record; nothing here touches the store.
type Renderer struct {
	uploadBase string
	tmpl       *template.Template
}

// NewRenderer constructs a renderer whose local-video sources resolve under
// uploadBase (typically "/uploads").
func NewRenderer(uploadBase string) *Renderer {
	r := &Renderer{uploadBase: strings.TrimSuffix(uploadBase, "/")}

	funcs := template.FuncMap{
		"uploadPath":  r.uploadPath,
		"webmSibling": WebmSibling,
		"upper":       strings.ToUpper,
	}

	r.tmpl = template.Must(template.New("catalog").Funcs(funcs).Parse(fragmentTemplates))
	return r
}

func (r *Renderer) uploadPath(name string) string {
	return r.uploadBase + "/" + name
}

// WebmSibling guesses a .webm alternative next to an .mp4 asset. Best-effort:
// nothing verifies the sibling exists, the player falls through if it does not.
func WebmSibling(name string) string {
	if strings.HasSuffix(name, ".mp4") {
		return strings.TrimSuffix(name, ".mp4") + ".webm"
	}
	return name
}

type cardView struct {
	models.VideoRecord
	Embed    template.HTML
	Icon     string
	Platform string
}

// Render produces the public video-card fragment for one record, dispatching
// on the record's type.
func (r *Renderer) Render(record models.VideoRecord) (string, error) {
	embed, err := r.renderEmbed(record)
	if err != nil {
		return "", err
	}
	return r.execute("card", cardView{
		VideoRecord: record,
		Embed:       template.HTML(embed),
		Icon:        platformIcons[record.Type],
		Platform:    platformNames[record.Type],
	})
}

// RenderAdminItem produces the admin-list row fragment for one record.
func (r *Renderer) RenderAdminItem(record models.VideoRecord) (string, error) {
	if _, ok := platformNames[record.Type]; !ok {
		return "", fmt.Errorf("unknown video type %q", record.Type)
	}
	return r.execute("adminItem", cardView{
		VideoRecord: record,
		Icon:        platformIcons[record.Type],
	})
}

func (r *Renderer) renderEmbed(record models.VideoRecord) (string, error) {
	switch record.Type {
	case models.TypeYouTube, models.TypeVimeo, models.TypeLocal:
		return r.execute(record.Type, record)
	default:
		return "", fmt.Errorf("unknown video type %q", record.Type)
	}
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var sb strings.Builder
	if err := r.tmpl.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render %s fragment: %w", name, err)
	}
	return sb.String(), nil
}

// RenderAll concatenates card fragments for the records, substituting the
// empty placeholder when there is nothing to show. Records with an unknown
// type are skipped rather than failing the whole fragment.
func (r *Renderer) RenderAll(records []models.VideoRecord) string {
	var sb strings.Builder
	for _, record := range records {
		fragment, err := r.Render(record)
		if err != nil {
			continue
		}
		sb.WriteString(fragment)
	}
	if sb.Len() == 0 {
		return EmptyPlaceholder
	}
	return sb.String()
}

// RenderAdminList concatenates admin rows, with its own empty placeholder.
func (r *Renderer) RenderAdminList(records []models.VideoRecord) string {
	var sb strings.Builder
	for _, record := range records {
		fragment, err := r.RenderAdminItem(record)
		if err != nil {
			continue
		}
		sb.WriteString(fragment)
	}
	if sb.Len() == 0 {
		return AdminEmptyPlaceholder
	}
	return sb.String()
}
