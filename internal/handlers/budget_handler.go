package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"engineBack/internal/models"
	"engineBack/internal/services"
)

type BudgetHandler struct {
	Budget   *services.BudgetService
	Forecast *services.BudgetForecastService
}

// GetLedger returns the profile's ledger for ?year=&month= or, absent both,
// the current month. A missing ledger is a 404; an unconfigured budget is a
// legitimate state the client distinguishes from a configured one.
func (h *BudgetHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	profileID := r.URL.Query().Get(":profile_id")
	yearStr := r.URL.Query().Get("year")
	monthStr := r.URL.Query().Get("month")

	var ledger *models.BudgetLedger
	var err error
	if yearStr != "" && monthStr != "" {
		year, errY := strconv.Atoi(yearStr)
		month, errM := strconv.Atoi(monthStr)
		if errY != nil || errM != nil || month < 1 || month > 12 {
			clientError(w, "invalid year or month")
			return
		}
		ledger, err = h.Budget.LedgerForMonth(r.Context(), profileID, year, time.Month(month))
	} else {
		ledger, err = h.Budget.CurrentMonthLedger(r.Context(), profileID)
	}
	if err != nil {
		respondError(w, err)
		return
	}
	if ledger == nil {
		respondError(w, models.ErrLedgerNotFound)
		return
	}
	writeJSON(w, http.StatusOK, ledger)
}

type createLedgerRequest struct {
	OrganizationID string  `json:"organization_id"`
	Year           int     `json:"year"`
	Month          int     `json:"month"`
	MonthlyCap     float64 `json:"monthly_cap"`
	Currency       string  `json:"currency,omitempty"`
}

func (h *BudgetHandler) CreateLedger(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var req createLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		clientError(w, "invalid request body")
		return
	}
	if req.Month < 1 || req.Month > 12 {
		clientError(w, "invalid month")
		return
	}

	ledger, err := h.Budget.CreateLedger(r.Context(), r.URL.Query().Get(":profile_id"),
		claims.OrganizationID, req.Year, time.Month(req.Month), req.MonthlyCap, req.Currency)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ledger)
}

// CheckBudget answers whether a prospective cost fits in the current month.
func (h *BudgetHandler) CheckBudget(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	cost, err := strconv.ParseFloat(r.URL.Query().Get("cost"), 64)
	if err != nil || cost < 0 {
		clientError(w, "invalid cost")
		return
	}

	check, err := h.Budget.CheckAvailability(r.Context(), r.URL.Query().Get(":profile_id"), cost)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

type recordTransactionRequest struct {
	Amount      float64                `json:"amount"`
	Description string                 `json:"description"`
	Category    *string                `json:"category,omitempty"`
	Provider    *string                `json:"provider,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

func (h *BudgetHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var req recordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		clientError(w, "invalid request body")
		return
	}

	txn, err := h.Budget.RecordTransaction(r.Context(), r.URL.Query().Get(":ledger_id"),
		req.Amount, req.Description, claims.UserID, req.Category, req.Provider, req.Metadata)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

func (h *BudgetHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	txns, err := h.Budget.ListTransactions(r.Context(), r.URL.Query().Get(":ledger_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if txns == nil {
		txns = []models.BudgetTransaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

// GetForecast projects the current month and recommends a next-month cap.
// Profiles without a current ledger get an empty 200 body distinguishable
// from a configured forecast.
func (h *BudgetHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	forecast, err := h.Forecast.CalculateForecast(r.Context(), r.URL.Query().Get(":profile_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if forecast == nil {
		writeJSON(w, http.StatusOK, map[string]any{"forecast": nil})
		return
	}
	writeJSON(w, http.StatusOK, forecast)
}

func (h *BudgetHandler) GetSpendingTrends(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	months := 6
	if v := r.URL.Query().Get("months"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			clientError(w, "invalid months")
			return
		}
		months = parsed
	}

	trends, err := h.Forecast.SpendingTrends(r.Context(), r.URL.Query().Get(":profile_id"), months)
	if err != nil {
		respondError(w, err)
		return
	}
	if trends == nil {
		trends = []models.SpendingTrend{}
	}
	writeJSON(w, http.StatusOK, trends)
}
