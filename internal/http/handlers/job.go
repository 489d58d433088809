package handlers

import (
	"encoding/json"
	"net/http"

	"snapfind/internal/app"
	"snapfind/internal/http/middleware"
	"snapfind/internal/http/response"

	jobdomain "snapfind/internal/domain/job"
)

type JobHandler struct {
	jobs *app.JobService
	sla  *app.SLAService
}

func NewJobHandler(jobs *app.JobService, sla *app.SLAService) *JobHandler {
	return &JobHandler{jobs: jobs, sla: sla}
}

type createJobRequest struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	RejectionRules json.RawMessage `json:"rejection_rules,omitempty"`
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	companyID, ok := middleware.CompanyIDFromContext(r.Context())
	if !ok {
		response.Error(w, errCompanyRequired())
		return
	}
	var req createJobRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.jobs.Create(r.Context(), jobdomain.Job{
		CompanyID:      companyID,
		RecruiterID:    userID,
		Title:          req.Title,
		Description:    req.Description,
		RejectionRules: req.RejectionRules,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	j, err := h.jobs.Get(r.Context(), jobID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, j)
}

func (h *JobHandler) Health(w http.ResponseWriter, r *http.Request) {
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	health, err := h.sla.JobHealth(r.Context(), jobID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"job_id": jobID, "health": health})
}
