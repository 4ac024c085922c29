package handlers

import (
	"encoding/json"
	"net/http"

	"engineBack/internal/models"
	"engineBack/internal/services"
)

type ContentPackHandler struct {
	Service *services.ContentPackService
}

type createPackRequest struct {
	BusinessProfileID string                 `json:"business_profile_id"`
	Title             string                 `json:"title"`
	Description       *string                `json:"description,omitempty"`
	ContentType       string                 `json:"content_type"`
	ContentData       map[string]interface{} `json:"content_data,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

func (h *ContentPackHandler) CreatePack(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var req createPackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		clientError(w, "invalid request body")
		return
	}
	if req.BusinessProfileID == "" {
		clientError(w, "business_profile_id is required")
		return
	}

	pack, err := h.Service.Create(r.Context(), req.BusinessProfileID, claims.UserID,
		req.Title, req.ContentType, req.ContentData, req.Metadata, req.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pack)
}

func (h *ContentPackHandler) GetPacksByProfile(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	profileID := r.URL.Query().Get(":profile_id")
	status := r.URL.Query().Get("status")
	packs, err := h.Service.ListForProfile(r.Context(), profileID, status)
	if err != nil {
		respondError(w, err)
		return
	}
	if packs == nil {
		packs = []models.ContentPack{}
	}
	writeJSON(w, http.StatusOK, packs)
}

func (h *ContentPackHandler) GetPackByID(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	pack, err := h.Service.Get(r.Context(), r.URL.Query().Get(":id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if pack == nil {
		respondError(w, models.ErrPackNotFound)
		return
	}
	writeJSON(w, http.StatusOK, pack)
}

func (h *ContentPackHandler) UpdatePack(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	var upd models.ContentPackUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		clientError(w, "invalid request body")
		return
	}

	pack, err := h.Service.Update(r.Context(), r.URL.Query().Get(":id"), upd)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pack)
}

func (h *ContentPackHandler) DeletePack(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	if err := h.Service.Delete(r.Context(), r.URL.Query().Get(":id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
