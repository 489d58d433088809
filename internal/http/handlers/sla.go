package handlers

import (
	"net/http"

	"snapfind/internal/app"
	"snapfind/internal/http/middleware"
	"snapfind/internal/http/response"
)

type SLAHandler struct {
	sla *app.SLAService
}

func NewSLAHandler(sla *app.SLAService) *SLAHandler {
	return &SLAHandler{sla: sla}
}

func (h *SLAHandler) CheckBreaches(w http.ResponseWriter, r *http.Request) {
	companyID, ok := middleware.CompanyIDFromContext(r.Context())
	if !ok {
		response.Error(w, errCompanyRequired())
		return
	}
	breaches, err := h.sla.CheckBreaches(r.Context(), companyID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, breaches)
}

type thresholdRequest struct {
	StageName string `json:"stage_name"`
	Days      int    `json:"days"`
}

func (h *SLAHandler) SetThreshold(w http.ResponseWriter, r *http.Request) {
	companyID, ok := middleware.CompanyIDFromContext(r.Context())
	if !ok {
		response.Error(w, errCompanyRequired())
		return
	}
	var req thresholdRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.sla.SetThreshold(r.Context(), companyID, req.StageName, req.Days)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *SLAHandler) ListThresholds(w http.ResponseWriter, r *http.Request) {
	companyID, ok := middleware.CompanyIDFromContext(r.Context())
	if !ok {
		response.Error(w, errCompanyRequired())
		return
	}
	thresholds, err := h.sla.ListThresholds(r.Context(), companyID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, thresholds)
}
