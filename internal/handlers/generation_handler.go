package handlers

import (
	"encoding/json"
	"net/http"

	"engineBack/internal/services"
)

type GenerationHandler struct {
	Service *services.ContentGenerationService
}

// GeneratePack runs an AI generation through the budget gate and stores the
// result as a draft content pack.
func (h *GenerationHandler) GeneratePack(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var req services.ContentGenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		clientError(w, "invalid request body")
		return
	}
	if req.BusinessProfileID == "" {
		clientError(w, "business_profile_id is required")
		return
	}
	if req.Prompt == "" {
		clientError(w, "prompt is required")
		return
	}
	req.UserID = claims.UserID

	pack, result, err := h.Service.Generate(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"content_pack": pack,
		"usage":        result.Usage,
	})
}
