package handlers

import (
	"net/http"
	"time"

	"snapfind/internal/app"
	"snapfind/internal/common"
	"snapfind/internal/domain/rules"
	"snapfind/internal/http/middleware"
	"snapfind/internal/http/response"
)

type EnrollmentHandler struct {
	enrollments *app.EnrollmentService
	transitions *app.TransitionService
	limiter     middleware.Limiter
}

func NewEnrollmentHandler(enrollments *app.EnrollmentService, transitions *app.TransitionService, limiter middleware.Limiter) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, transitions: transitions, limiter: limiter}
}

type enrollRequest struct {
	CandidateID string           `json:"candidate_id"`
	Attributes  rules.Attributes `json:"attributes"`
}

func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req enrollRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	candidateID, err := common.ParseUUID(req.CandidateID)
	if err != nil {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"candidate_id": "invalid uuid"}))
		return
	}
	result, err := h.enrollments.Enroll(r.Context(), jobID, candidateID, req.Attributes)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, result)
}

type changeStageRequest struct {
	NewStageID      string `json:"new_stage_id"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	Comment         string `json:"comment,omitempty"`
}

func (h *EnrollmentHandler) ChangeStage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	enrollmentID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	if h.limiter != nil {
		key := "stage-change:" + userID.String()
		if !h.limiter.Allow(key, 60, time.Minute) {
			response.Error(w, common.NewError(common.CodeRateLimited, "stage change rate limit exceeded", nil))
			return
		}
	}
	var req changeStageRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	newStageID, err := common.ParseUUID(req.NewStageID)
	if err != nil {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"new_stage_id": "invalid uuid"}))
		return
	}
	enrollment, activity, err := h.transitions.ChangeStage(r.Context(), app.ChangeStageParams{
		EnrollmentID:    enrollmentID,
		NewStageID:      newStageID,
		RejectionReason: req.RejectionReason,
		Comment:         req.Comment,
		MovedBy:         userID,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"enrollment": enrollment, "activity": activity})
}

func (h *EnrollmentHandler) History(w http.ResponseWriter, r *http.Request) {
	enrollmentID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	entries, err := h.enrollments.History(r.Context(), enrollmentID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, entries)
}

func (h *EnrollmentHandler) Activities(w http.ResponseWriter, r *http.Request) {
	candidateID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	activities, err := h.enrollments.Activities(r.Context(), candidateID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, activities)
}
