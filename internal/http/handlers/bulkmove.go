package handlers

import (
	"net/http"
	"time"

	"snapfind/internal/app"
	"snapfind/internal/common"
	"snapfind/internal/domain/candidate"
	"snapfind/internal/http/middleware"
	"snapfind/internal/http/response"
)

type BulkMoveHandler struct {
	bulkMoves *app.BulkMoveService
	limiter   middleware.Limiter
}

func NewBulkMoveHandler(bulkMoves *app.BulkMoveService, limiter middleware.Limiter) *BulkMoveHandler {
	return &BulkMoveHandler{bulkMoves: bulkMoves, limiter: limiter}
}

type bulkMoveRequest struct {
	CandidateIDs    []string `json:"candidate_ids"`
	TargetStageID   string   `json:"target_stage_id"`
	JobID           string   `json:"job_id"`
	Comment         string   `json:"comment,omitempty"`
	RejectionReason string   `json:"rejection_reason,omitempty"`
}

// BulkMove maps the three outcomes to distinct statuses: 200 when every
// candidate moved, 207 on partial success, 422 when every candidate failed.
func (h *BulkMoveHandler) BulkMove(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	if h.limiter != nil {
		key := "bulk-move:" + userID.String()
		if !h.limiter.Allow(key, 10, time.Minute) {
			response.Error(w, common.NewError(common.CodeRateLimited, "bulk move rate limit exceeded", nil))
			return
		}
	}
	var req bulkMoveRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	jobID, err := common.ParseUUID(req.JobID)
	if err != nil {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"job_id": "invalid uuid"}))
		return
	}
	targetStageID, err := common.ParseUUID(req.TargetStageID)
	if err != nil {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"target_stage_id": "invalid uuid"}))
		return
	}
	candidateIDs := make([]common.UUID, 0, len(req.CandidateIDs))
	for _, raw := range req.CandidateIDs {
		id, err := common.ParseUUID(raw)
		if err != nil {
			response.Error(w, common.NewValidationError("invalid request", map[string]string{"candidate_ids": "list contains an invalid uuid"}))
			return
		}
		candidateIDs = append(candidateIDs, id)
	}

	result, err := h.bulkMoves.BulkMove(r.Context(), app.BulkMoveParams{
		CandidateIDs:    candidateIDs,
		TargetStageID:   targetStageID,
		JobID:           jobID,
		MovedBy:         userID,
		Comment:         req.Comment,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	switch result.Outcome() {
	case candidate.BulkAllMoved:
		response.JSON(w, http.StatusOK, result)
	case candidate.BulkPartial:
		response.JSON(w, http.StatusMultiStatus, result)
	default:
		response.JSON(w, http.StatusUnprocessableEntity, result)
	}
}
