package models

import "time"

// Content types supported by the dashboard.
const (
	ContentTypeScript = "script"
	ContentTypeHook   = "hook"
	ContentTypePost   = "post"
	ContentTypeVideo  = "video"
	ContentTypeOther  = "other"
)

// ValidContentType reports whether t is a known content type.
func ValidContentType(t string) bool {
	switch t {
	case ContentTypeScript, ContentTypeHook, ContentTypePost, ContentTypeVideo, ContentTypeOther:
		return true
	}
	return false
}

// ContentPack is a unit of generated or authored content. Status mirrors the
// current state of whichever approval workflow governs the pack.
type ContentPack struct {
	ID                string                 `json:"id"`
	BusinessProfileID string                 `json:"business_profile_id"`
	CreatedBy         string                 `json:"created_by"`
	Title             string                 `json:"title"`
	Description       *string                `json:"description,omitempty"`
	ContentType       string                 `json:"content_type"`
	ContentData       map[string]interface{} `json:"content_data"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
	Status            string                 `json:"status"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         *time.Time             `json:"updated_at,omitempty"`
	ApprovedAt        *time.Time             `json:"approved_at,omitempty"`
	ApprovedBy        *string                `json:"approved_by,omitempty"`
}

// ContentPackUpdate carries the fields a draft pack may change.
type ContentPackUpdate struct {
	Title       *string                `json:"title,omitempty"`
	Description *string                `json:"description,omitempty"`
	ContentData map[string]interface{} `json:"content_data,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
