package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-adp-api/internal/dto"
	"github.com/noah-isme/sma-adp-api/internal/scheduler"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
	"github.com/noah-isme/sma-adp-api/pkg/response"
)

// schedulerOrchestrator is the subset of *scheduler.Orchestrator the handler
// calls.
type schedulerOrchestrator interface {
	Generate(ctx context.Context, departmentID string, numVariants int) (scheduler.GenerationResult, error)
	Approve(ctx context.Context, timetableID string) error
}

// SchedulerHandler exposes the timetable generator's two operations:
// generate a fresh set of draft variants, and approve one of them.
type SchedulerHandler struct {
	orchestrator schedulerOrchestrator
	validate     *validator.Validate
}

// NewSchedulerHandler constructs the handler. validate may be nil, in which
// case a default validator is created.
func NewSchedulerHandler(orchestrator schedulerOrchestrator, validate *validator.Validate) *SchedulerHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &SchedulerHandler{orchestrator: orchestrator, validate: validate}
}

// Generate godoc
// @Summary Generate draft timetable variants for a department
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRequest true "Generate payload"
// @Success 200 {object} response.Envelope
// @Router /departments/{id}/generate [post]
func (h *SchedulerHandler) Generate(c *gin.Context) {
	req := dto.GenerateRequest{DepartmentID: c.Param("id")}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	req.DepartmentID = c.Param("id")
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}

	result, err := h.orchestrator.Generate(c.Request.Context(), req.DepartmentID, req.NumVariants)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.GenerateResponse{Status: result.Status, Messages: result.Messages, TimetableIDs: result.TimetableIDs}
	status := http.StatusOK
	if resp.Status == scheduler.StatusError || resp.Status == scheduler.StatusInfeasible {
		status = http.StatusUnprocessableEntity
	}
	response.JSON(c, status, resp, nil)
}

// Approve godoc
// @Summary Publish a draft timetable and discard its siblings
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.ApproveRequest true "Approve payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/approve [post]
func (h *SchedulerHandler) Approve(c *gin.Context) {
	req := dto.ApproveRequest{TimetableID: c.Param("id")}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approve payload"))
		return
	}

	if err := h.orchestrator.Approve(c.Request.Context(), req.TimetableID); err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"timetableId": req.TimetableID, "status": "published"}, nil)
}
