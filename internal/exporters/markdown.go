package exporters

import (
	"encoding/json"
	"fmt"
	"strings"

	"engineBack/internal/models"
)

// MarkdownExporter renders the pack as a human-readable document. Packs that
// carry plain text under the "content" key render it directly; anything else
// falls back to a fenced JSON block.
type MarkdownExporter struct{}

func (MarkdownExporter) Format() string      { return "markdown" }
func (MarkdownExporter) ContentType() string { return "text/markdown" }

func (MarkdownExporter) FileName(pack *models.ContentPack) string {
	return safeFileName(pack.Title) + ".md"
}

func (MarkdownExporter) Render(pack *models.ContentPack) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", pack.Title)
	if pack.Description != nil && *pack.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", *pack.Description)
	}

	fmt.Fprintf(&b, "**Type:** %s\n", pack.ContentType)
	fmt.Fprintf(&b, "**Status:** %s\n", pack.Status)
	if pack.ApprovedAt != nil {
		fmt.Fprintf(&b, "**Approved:** %s\n", pack.ApprovedAt.Format("2006-01-02"))
	}
	b.WriteString("\n---\n\n")

	if content, ok := pack.ContentData["content"].(string); ok && content != "" {
		fmt.Fprintf(&b, "%s\n\n", content)
	} else {
		data, err := json.MarshalIndent(pack.ContentData, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("render markdown export: %w", err)
		}
		fmt.Fprintf(&b, "```json\n%s\n```\n", data)
	}

	if len(pack.Metadata) > 0 {
		meta, err := json.MarshalIndent(pack.Metadata, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("render markdown export: %w", err)
		}
		fmt.Fprintf(&b, "\n---\n\n## Metadata\n\n```json\n%s\n```\n", meta)
	}

	return []byte(b.String()), nil
}
