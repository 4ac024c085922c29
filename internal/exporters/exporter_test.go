package exporters

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"engineBack/internal/models"
)

func samplePack() *models.ContentPack {
	description := "A quick look at worker pools"
	approvedAt := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	return &models.ContentPack{
		ID:                "pack-1",
		BusinessProfileID: "profile-1",
		CreatedBy:         "user-1",
		Title:             "Worker Pools: a Field Guide!",
		Description:       &description,
		ContentType:       "post",
		ContentData:       map[string]any{"content": "Bounded concurrency with goroutines."},
		Metadata:          map[string]any{"category": "tutorial"},
		Status:            "approved",
		CreatedAt:         time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC),
		ApprovedAt:        &approvedAt,
	}
}

func TestForFormat(t *testing.T) {
	for _, format := range []string{"json", "markdown", "md"} {
		if _, err := ForFormat(format); err != nil {
			t.Errorf("ForFormat(%q): %v", format, err)
		}
	}
	if _, err := ForFormat("pdf"); err == nil {
		t.Error("unsupported format should error")
	}
}

func TestFileNameSanitization(t *testing.T) {
	pack := samplePack()

	if got := (JSONExporter{}).FileName(pack); got != "Worker_Pools__a_Field_Guide_.json" {
		t.Errorf("json filename = %q", got)
	}
	if got := (MarkdownExporter{}).FileName(pack); got != "Worker_Pools__a_Field_Guide_.md" {
		t.Errorf("markdown filename = %q", got)
	}
}

func TestJSONRender(t *testing.T) {
	body, err := (JSONExporter{}).Render(samplePack())
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("render is not valid json: %v", err)
	}
	if decoded["id"] != "pack-1" || decoded["status"] != "approved" {
		t.Errorf("unexpected envelope: %v", decoded)
	}
	contentData, ok := decoded["contentData"].(map[string]any)
	if !ok || contentData["content"] != "Bounded concurrency with goroutines." {
		t.Errorf("content data missing: %v", decoded["contentData"])
	}
}

func TestMarkdownRenderPlainContent(t *testing.T) {
	body, err := (MarkdownExporter{}).Render(samplePack())
	if err != nil {
		t.Fatal(err)
	}
	md := string(body)

	for _, want := range []string{
		"# Worker Pools: a Field Guide!",
		"A quick look at worker pools",
		"**Type:** post",
		"**Status:** approved",
		"**Approved:** 2025-03-10",
		"Bounded concurrency with goroutines.",
		"## Metadata",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownRenderStructuredContentFallsBackToJSON(t *testing.T) {
	pack := samplePack()
	pack.ContentData = map[string]any{"intro": "Welcome", "outro": "Bye"}
	pack.Metadata = map[string]any{}

	body, err := (MarkdownExporter{}).Render(pack)
	if err != nil {
		t.Fatal(err)
	}
	md := string(body)
	if !strings.Contains(md, "```json") {
		t.Errorf("structured content should render as fenced json:\n%s", md)
	}
	if strings.Contains(md, "## Metadata") {
		t.Errorf("empty metadata should omit the metadata section:\n%s", md)
	}
}
