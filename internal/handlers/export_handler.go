package handlers

import (
	"fmt"
	"net/http"

	"engineBack/internal/exporters"
	"engineBack/internal/services"
)

type ExportHandler struct {
	Packs *services.ContentPackService
	Store *exporters.S3Store
}

// ExportPack renders an approved pack in the requested ?format= and either
// streams it as a download or, with ?store=s3, uploads the artifact and
// returns its URL.
func (h *ExportHandler) ExportPack(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	exporter, err := exporters.ForFormat(format)
	if err != nil {
		clientError(w, err.Error())
		return
	}

	packID := r.URL.Query().Get(":id")
	profileID := r.URL.Query().Get("business_profile_id")
	pack, err := h.Packs.PrepareForExport(r.Context(), packID, profileID, 0)
	if err != nil {
		respondError(w, err)
		return
	}

	body, err := exporter.Render(pack)
	if err != nil {
		respondError(w, err)
		return
	}
	fileName := exporter.FileName(pack)

	if r.URL.Query().Get("store") == "s3" {
		if h.Store == nil {
			clientError(w, "artifact storage is not configured")
			return
		}
		url, err := h.Store.Put(r.Context(), claims.OrganizationID, fileName, exporter.ContentType(), body)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url, "filename": fileName})
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
