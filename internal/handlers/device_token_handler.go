package handlers

import (
	"encoding/json"
	"net/http"

	"engineBack/internal/repositories"
)

type DeviceTokenHandler struct {
	Repo *repositories.DeviceTokenRepository
}

type deviceTokenRequest struct {
	Token string `json:"token"`
}

func (h *DeviceTokenHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var req deviceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		clientError(w, "token is required")
		return
	}

	if err := h.Repo.Upsert(r.Context(), claims.UserID, req.Token); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *DeviceTokenHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	token := r.URL.Query().Get(":token")
	if token == "" {
		clientError(w, "token is required")
		return
	}
	if err := h.Repo.Delete(r.Context(), token); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
