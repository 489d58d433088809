package handlers

import (
	"net/http"

	"snapfind/internal/app"
	"snapfind/internal/common"
	"snapfind/internal/domain/pipeline"
	"snapfind/internal/http/middleware"
	"snapfind/internal/http/response"
)

type PipelineHandler struct {
	pipelines *app.PipelineService
}

func NewPipelineHandler(pipelines *app.PipelineService) *PipelineHandler {
	return &PipelineHandler{pipelines: pipelines}
}

func (h *PipelineHandler) ListStages(w http.ResponseWriter, r *http.Request) {
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	stages, err := h.pipelines.ListStages(r.Context(), jobID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, stages)
}

type insertStageRequest struct {
	Name     string             `json:"name"`
	Position int                `json:"position"`
	Role     pipeline.StageRole `json:"role"`
	ParentID string             `json:"parent_id,omitempty"`
}

func (h *PipelineHandler) InsertStage(w http.ResponseWriter, r *http.Request) {
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req insertStageRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	var parentID *common.UUID
	if req.ParentID != "" {
		parsed, err := common.ParseUUID(req.ParentID)
		if err != nil {
			response.Error(w, common.NewValidationError("invalid stage", map[string]string{"parent_id": "invalid uuid"}))
			return
		}
		parentID = &parsed
	}
	created, err := h.pipelines.InsertStage(r.Context(), jobID, req.Name, req.Position, req.Role, parentID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

type reorderStageRequest struct {
	Position int `json:"position"`
}

func (h *PipelineHandler) ReorderStage(w http.ResponseWriter, r *http.Request) {
	stageID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req reorderStageRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := h.pipelines.ReorderStage(r.Context(), stageID, req.Position); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "reordered"})
}

type renameStageRequest struct {
	Name string `json:"name"`
}

func (h *PipelineHandler) RenameStage(w http.ResponseWriter, r *http.Request) {
	stageID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req renameStageRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.pipelines.RenameStage(r.Context(), stageID, req.Name)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *PipelineHandler) DeleteStage(w http.ResponseWriter, r *http.Request) {
	stageID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.pipelines.DeleteStage(r.Context(), stageID); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusNoContent, nil)
}

type importTemplateRequest struct {
	SourceJobID string `json:"source_job_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *PipelineHandler) ImportTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req importTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	sourceJobID, err := common.ParseUUID(req.SourceJobID)
	if err != nil {
		response.Error(w, common.NewValidationError("invalid template", map[string]string{"source_job_id": "invalid uuid"}))
		return
	}
	template, err := h.pipelines.ImportFromJob(r.Context(), sourceJobID, req.Name, req.Description, userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, template)
}

func (h *PipelineHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	template, err := h.pipelines.GetTemplate(r.Context(), templateID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, template)
}

type updateTemplateRequest struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Stages      []pipeline.TemplateStage `json:"stages"`
}

func (h *PipelineHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req updateTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.pipelines.UpdateTemplate(r.Context(), pipeline.Template{
		ID:          templateID,
		Name:        req.Name,
		Description: req.Description,
		Stages:      req.Stages,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

type applyTemplateRequest struct {
	JobID string `json:"job_id"`
}

func (h *PipelineHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req applyTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	jobID, err := common.ParseUUID(req.JobID)
	if err != nil {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"job_id": "invalid uuid"}))
		return
	}
	stages, err := h.pipelines.ApplyTemplate(r.Context(), templateID, jobID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, stages)
}
