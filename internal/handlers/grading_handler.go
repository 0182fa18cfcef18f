package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/examination-service/internal/services"
	"github.com/SAP-F-2025/examination-service/internal/utils"
)

type GradingHandler struct {
	BaseHandler
	service services.GradingService
}

func NewGradingHandler(service services.GradingService, logger utils.Logger) *GradingHandler {
	return &GradingHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListPending
// @Summary Submissions awaiting manual review
// @Tags grading
// @Produce json
// @Success 200 {array} services.PendingSubmission
// @Failure 403 {object} ErrorResponse
// @Router /grading/pending [get]
func (h *GradingHandler) ListPending(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	pending, err := h.service.ListPending(c.Request.Context(), requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pending)
}

// GradeSubmission overwrites the marks of a submission and completes it
// @Summary Grade a submission
// @Tags grading
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param request body services.GradeRequest true "Final marks"
// @Success 200 {object} models.Submission
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /grading/submissions/{id} [put]
func (h *GradingHandler) GradeSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	var req services.GradeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	submission, err := h.service.Grade(c.Request.Context(), id, &req, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Submission graded", "submission_id", id, "marks", submission.Marks)
	c.JSON(http.StatusOK, submission)
}
