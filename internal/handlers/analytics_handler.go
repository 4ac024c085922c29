package handlers

import (
	"net/http"
	"time"

	"engineBack/internal/services"
)

type AnalyticsHandler struct {
	Service *services.AnalyticsService
}

// GetProfileAnalytics serves the combined pack and budget analytics for a
// profile, windowed by optional ?start=&end= dates (YYYY-MM-DD).
func (h *AnalyticsHandler) GetProfileAnalytics(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	var start, end *time.Time
	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			clientError(w, "invalid start date")
			return
		}
		start = &t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			clientError(w, "invalid end date")
			return
		}
		end = &t
	}

	analytics, err := h.Service.ProfileAnalytics(r.Context(), r.URL.Query().Get(":profile_id"), start, end)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}
