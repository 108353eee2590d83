package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// Project lifecycle states.
const (
	StatusDraft      = "draft"
	StatusGenerating = "generating"
	StatusEditing    = "editing"
	StatusFinalized  = "finalized"
	StatusTranslated = "translated"
)

// Project types.
const (
	ProjectTypeBlog    = "blog"
	ProjectTypePresell = "presell"
)

// Brand is a client brand with the context fed into generation prompts.
type Brand struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	WebsiteURL     string    `json:"website_url,omitempty"`
	BrandContext   string    `json:"brand_context,omitempty"`
	Products       string    `json:"products,omitempty"`
	ToneOfVoice    string    `json:"tone_of_voice,omitempty"`
	TargetAudience string    `json:"target_audience,omitempty"`
	ImageStyle     string    `json:"image_style,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Template is a reusable HTML structure for generated content.
type Template struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"` // blog | presell
	SourceType    string    `json:"source_type,omitempty"`
	SourceURL     string    `json:"source_url,omitempty"`
	HTMLStructure string    `json:"html_structure"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Keyword is one researched or imported keyword.
type Keyword struct {
	ID         string    `json:"id"`
	Brand      string    `json:"brand,omitempty"` // brand slug
	Keyword    string    `json:"keyword"`
	Volume     int       `json:"volume,omitempty"`
	Difficulty int       `json:"difficulty,omitempty"`
	Source     string    `json:"source,omitempty"` // ahrefs_import | ai_suggestion
	Country    string    `json:"country,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProjectImage is one generated image attached to a project.
type ProjectImage struct {
	URL    string `json:"url"`
	Alt    string `json:"alt"`
	Prompt string `json:"prompt,omitempty"`
}

// Project is one piece of content through its whole lifecycle.
type Project struct {
	ID                 string            `json:"id"`
	Type               string            `json:"type"` // blog | presell
	Title              string            `json:"title"`
	Status             string            `json:"status"`
	Language           string            `json:"language"`
	Topic              string            `json:"topic,omitempty"`
	Keywords           []string          `json:"keywords,omitempty"`
	TemplateID         string            `json:"template_id,omitempty"`
	BrandID            string            `json:"brand_id,omitempty"`
	AIPrompt           string            `json:"ai_prompt,omitempty"`
	ContentHTML        string            `json:"content_html,omitempty"`
	TranslatedVersions map[string]string `json:"translated_versions,omitempty"`
	Images             []ProjectImage    `json:"images,omitempty"`
	SEOTitle           string            `json:"seo_title,omitempty"`
	SEODescription     string            `json:"seo_description,omitempty"`
	// Incomplete marks content whose generation stream ended abruptly.
	Incomplete bool      `json:"incomplete,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Stats are dashboard counts.
type Stats struct {
	Brands           int            `json:"brands"`
	Templates        int            `json:"templates"`
	Keywords         int            `json:"keywords"`
	Projects         int            `json:"projects"`
	ProjectsByStatus map[string]int `json:"projects_by_status"`
}
