package handlers

import (
	"encoding/json"
	"net/http"

	"engineBack/internal/models"
	"engineBack/internal/repositories"
)

type WorkflowTemplateHandler struct {
	Repo *repositories.ApprovalRepository
}

func (h *WorkflowTemplateHandler) GetTemplates(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	templates, err := h.Repo.ListTemplates(r.Context(), claims.OrganizationID)
	if err != nil {
		respondError(w, err)
		return
	}
	if templates == nil {
		templates = []models.ApprovalWorkflowTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *WorkflowTemplateHandler) GetTemplateByID(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	template, err := h.Repo.GetTemplate(r.Context(), claims.OrganizationID, r.URL.Query().Get(":id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if template == nil {
		respondError(w, models.ErrTemplateNotFound)
		return
	}
	writeJSON(w, http.StatusOK, template)
}

func (h *WorkflowTemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var template models.ApprovalWorkflowTemplate
	if err := json.NewDecoder(r.Body).Decode(&template); err != nil {
		clientError(w, "invalid request body")
		return
	}
	if template.Name == "" {
		clientError(w, "template name is required")
		return
	}
	if len(template.Steps) == 0 {
		clientError(w, "template must define at least one step")
		return
	}
	for i, step := range template.Steps {
		if step.StepIndex != i {
			clientError(w, "step indexes must be contiguous from zero")
			return
		}
		if len(step.ApproverIDs) == 0 {
			clientError(w, "every step needs at least one approver")
			return
		}
	}
	template.OrganizationID = claims.OrganizationID
	template.IsActive = true

	if err := h.Repo.CreateTemplate(r.Context(), &template); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, template)
}
