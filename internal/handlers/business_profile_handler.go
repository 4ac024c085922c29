package handlers

import (
	"encoding/json"
	"net/http"

	"engineBack/internal/models"
	"engineBack/internal/services"
)

type BusinessProfileHandler struct {
	Service *services.BusinessProfileService
}

func (h *BusinessProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var profile models.BusinessProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		clientError(w, "invalid request body")
		return
	}
	profile.OrganizationID = claims.OrganizationID

	created, err := h.Service.Create(r.Context(), &profile)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *BusinessProfileHandler) GetProfiles(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	activeOnly := r.URL.Query().Get("active") != "false"
	profiles, err := h.Service.ListByOrganization(r.Context(), claims.OrganizationID, activeOnly)
	if err != nil {
		respondError(w, err)
		return
	}
	if profiles == nil {
		profiles = []models.BusinessProfile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (h *BusinessProfileHandler) GetProfileByID(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	profile, err := h.Service.GetByID(r.Context(), r.URL.Query().Get(":id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if profile == nil || profile.OrganizationID != claims.OrganizationID {
		respondError(w, models.ErrProfileNotFound)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *BusinessProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var profile models.BusinessProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		clientError(w, "invalid request body")
		return
	}
	profile.ID = r.URL.Query().Get(":id")

	current, err := h.Service.GetByID(r.Context(), profile.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	if current == nil || current.OrganizationID != claims.OrganizationID {
		respondError(w, models.ErrProfileNotFound)
		return
	}

	updated, err := h.Service.Update(r.Context(), &profile)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *BusinessProfileHandler) DeactivateProfile(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	profileID := r.URL.Query().Get(":id")
	current, err := h.Service.GetByID(r.Context(), profileID)
	if err != nil {
		respondError(w, err)
		return
	}
	if current == nil || current.OrganizationID != claims.OrganizationID {
		respondError(w, models.ErrProfileNotFound)
		return
	}

	if err := h.Service.Deactivate(r.Context(), profileID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
