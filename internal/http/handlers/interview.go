package handlers

import (
	"net/http"

	"snapfind/internal/app"
	"snapfind/internal/common"
	"snapfind/internal/domain/interview"
	"snapfind/internal/http/middleware"
	"snapfind/internal/http/response"
)

type InterviewHandler struct {
	interviews interview.Repository
	advance    *app.AdvanceService
}

func NewInterviewHandler(interviews interview.Repository, advance *app.AdvanceService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews, advance: advance}
}

type createInterviewRequest struct {
	EnrollmentID string   `json:"enrollment_id"`
	JobID        string   `json:"job_id"`
	PanelistIDs  []string `json:"panelist_ids"`
}

func (h *InterviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req createInterviewRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	enrollmentID, err := common.ParseUUID(req.EnrollmentID)
	if err != nil {
		response.Error(w, common.NewValidationError("invalid interview", map[string]string{"enrollment_id": "invalid uuid"}))
		return
	}
	jobID, err := common.ParseUUID(req.JobID)
	if err != nil {
		response.Error(w, common.NewValidationError("invalid interview", map[string]string{"job_id": "invalid uuid"}))
		return
	}
	if len(req.PanelistIDs) == 0 {
		response.Error(w, common.NewValidationError("invalid interview", map[string]string{"panelist_ids": "at least one panelist is required"}))
		return
	}
	panelists := make([]common.UUID, 0, len(req.PanelistIDs))
	for _, raw := range req.PanelistIDs {
		id, err := common.ParseUUID(raw)
		if err != nil {
			response.Error(w, common.NewValidationError("invalid interview", map[string]string{"panelist_ids": "list contains an invalid uuid"}))
			return
		}
		panelists = append(panelists, id)
	}
	created, err := h.interviews.Create(r.Context(), interview.Interview{
		EnrollmentID: enrollmentID,
		JobID:        jobID,
		ScheduledBy:  userID,
		PanelistIDs:  panelists,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

type feedbackRequest struct {
	Recommendation string `json:"recommendation"`
	Notes          string `json:"notes,omitempty"`
}

func (h *InterviewHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	interviewID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	outcome, err := h.advance.SubmitFeedback(r.Context(), interviewID, userID, interview.NormalizeRecommendation(req.Recommendation), req.Notes)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"outcome": outcome})
}
