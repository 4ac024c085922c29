package exporters

import (
	"fmt"
	"regexp"

	"engineBack/internal/models"
)

// Exporter renders an approved content pack into one output format.
type Exporter interface {
	Format() string
	ContentType() string
	FileName(pack *models.ContentPack) string
	Render(pack *models.ContentPack) ([]byte, error)
}

// ForFormat returns the exporter for a format name.
func ForFormat(format string) (Exporter, error) {
	switch format {
	case "json":
		return JSONExporter{}, nil
	case "markdown", "md":
		return MarkdownExporter{}, nil
	}
	return nil, fmt.Errorf("unsupported export format: %s", format)
}

var fileNameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9]`)

// safeFileName collapses anything outside [a-zA-Z0-9] to underscores.
func safeFileName(title string) string {
	return fileNameUnsafe.ReplaceAllString(title, "_")
}
