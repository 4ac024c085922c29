package exporters

import (
	"encoding/json"
	"fmt"
	"time"

	"engineBack/internal/models"
)

// JSONExporter emits the full content pack as indented JSON.
type JSONExporter struct{}

type jsonEnvelope struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	ContentType string         `json:"contentType"`
	ContentData map[string]any `json:"contentData"`
	Metadata    map[string]any `json:"metadata"`
	Status      string         `json:"status"`
	ApprovedAt  *time.Time     `json:"approvedAt"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (JSONExporter) Format() string      { return "json" }
func (JSONExporter) ContentType() string { return "application/json" }

func (JSONExporter) FileName(pack *models.ContentPack) string {
	return safeFileName(pack.Title) + ".json"
}

func (JSONExporter) Render(pack *models.ContentPack) ([]byte, error) {
	out, err := json.MarshalIndent(jsonEnvelope{
		ID:          pack.ID,
		Title:       pack.Title,
		Description: pack.Description,
		ContentType: pack.ContentType,
		ContentData: pack.ContentData,
		Metadata:    pack.Metadata,
		Status:      pack.Status,
		ApprovedAt:  pack.ApprovedAt,
		CreatedAt:   pack.CreatedAt,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json export: %w", err)
	}
	return out, nil
}
