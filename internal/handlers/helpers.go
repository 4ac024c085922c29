package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"engineBack/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps domain errors onto HTTP statuses. Anything unrecognized
// is a 500 with a generic body; the caller logs the real error.
func respondError(w http.ResponseWriter, err error) {
	var invalidTransition *models.InvalidTransitionError
	var budgetExceeded *models.BudgetExceededError
	var approvalRequired *models.ApprovalRequiredError
	var upstream *models.UpstreamError

	switch {
	case errors.Is(err, models.ErrNoRecord),
		errors.Is(err, models.ErrProfileNotFound),
		errors.Is(err, models.ErrPackNotFound),
		errors.Is(err, models.ErrWorkflowNotFound),
		errors.Is(err, models.ErrTemplateNotFound),
		errors.Is(err, models.ErrLedgerNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrProviderDisabled):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrPackNotEditable),
		errors.Is(err, models.ErrPackNotDeletable),
		errors.Is(err, models.ErrStepAlreadyResolved),
		errors.Is(err, models.ErrStaleWorkflow):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrApproverNotEligible):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.As(err, &invalidTransition):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.As(err, &budgetExceeded):
		writeJSON(w, http.StatusPaymentRequired, errorResponse{Error: err.Error()})
	case errors.As(err, &approvalRequired):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.As(err, &upstream):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func clientError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

// requireClaims returns the authenticated identity or writes a 401.
func requireClaims(w http.ResponseWriter, r *http.Request) *models.Claims {
	claims := models.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return nil
	}
	return claims
}
