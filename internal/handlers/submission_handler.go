package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/examination-service/internal/services"
	"github.com/SAP-F-2025/examination-service/internal/utils"
)

type SubmissionHandler struct {
	BaseHandler
	service services.SubmissionService
}

func NewSubmissionHandler(service services.SubmissionService, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetMyResults lists the caller's own submissions
// @Summary My results
// @Tags submissions
// @Produce json
// @Success 200 {array} services.StudentResult
// @Router /submissions/me [get]
func (h *SubmissionHandler) GetMyResults(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	results, err := h.service.ListMine(c.Request.Context(), requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetSubmission returns one submission together with its exam
// @Summary Review a submission
// @Tags submissions
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} services.SubmissionReview
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	review, err := h.service.Review(c.Request.Context(), id, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}
