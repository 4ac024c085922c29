package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"engineBack/internal/models"
	"engineBack/internal/services"
)

type ApprovalHandler struct {
	Approvals *services.ApprovalService
	Custom    *services.CustomApprovalService
}

type reviewRequest struct {
	Notes *string `json:"notes,omitempty"`
}

func (h *ApprovalHandler) SubmitForApproval(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	workflow, err := h.Approvals.SubmitForApproval(r.Context(), r.URL.Query().Get(":id"), claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workflow)
}

func (h *ApprovalHandler) ApprovePack(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var req reviewRequest
	json.NewDecoder(r.Body).Decode(&req)

	workflow, err := h.Approvals.ApproveContentPack(r.Context(), r.URL.Query().Get(":id"), claims.UserID, req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workflow)
}

func (h *ApprovalHandler) RejectPack(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var req reviewRequest
	json.NewDecoder(r.Body).Decode(&req)

	workflow, err := h.Approvals.RejectContentPack(r.Context(), r.URL.Query().Get(":id"), claims.UserID, req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workflow)
}

func (h *ApprovalHandler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	workflow, err := h.Approvals.GetWorkflow(r.Context(), r.URL.Query().Get(":id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if workflow == nil {
		respondError(w, models.ErrWorkflowNotFound)
		return
	}
	writeJSON(w, http.StatusOK, workflow)
}

type initializeWorkflowRequest struct {
	TemplateID string `json:"template_id,omitempty"`
}

// InitializeCustomWorkflow submits a pack through a multi-step template. An
// empty template_id selects the organization's default template.
func (h *ApprovalHandler) InitializeCustomWorkflow(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var req initializeWorkflowRequest
	json.NewDecoder(r.Body).Decode(&req)

	template, err := h.Custom.GetTemplate(r.Context(), claims.OrganizationID, req.TemplateID)
	if err != nil {
		respondError(w, err)
		return
	}
	if template == nil {
		respondError(w, models.ErrTemplateNotFound)
		return
	}

	workflow, err := h.Custom.Initialize(r.Context(), r.URL.Query().Get(":id"), template, claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workflow)
}

func (h *ApprovalHandler) ApproveStep(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	stepIndex, err := strconv.Atoi(r.URL.Query().Get(":step_index"))
	if err != nil {
		clientError(w, "invalid step index")
		return
	}
	var req reviewRequest
	json.NewDecoder(r.Body).Decode(&req)

	approval, err := h.Custom.ApproveStep(r.Context(), r.URL.Query().Get(":id"), stepIndex, claims.UserID, req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, approval)
}

func (h *ApprovalHandler) RejectStep(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	stepIndex, err := strconv.Atoi(r.URL.Query().Get(":step_index"))
	if err != nil {
		clientError(w, "invalid step index")
		return
	}
	var req reviewRequest
	json.NewDecoder(r.Body).Decode(&req)

	approval, err := h.Custom.RejectStep(r.Context(), r.URL.Query().Get(":id"), stepIndex, claims.UserID, req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, approval)
}

func (h *ApprovalHandler) GetStepApprovals(w http.ResponseWriter, r *http.Request) {
	if requireClaims(w, r) == nil {
		return
	}

	approvals, err := h.Custom.GetStepApprovals(r.Context(), r.URL.Query().Get(":id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if approvals == nil {
		approvals = []models.WorkflowStepApproval{}
	}
	writeJSON(w, http.StatusOK, approvals)
}
