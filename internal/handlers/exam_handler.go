package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/examination-service/internal/repositories"
	"github.com/SAP-F-2025/examination-service/internal/services"
	"github.com/SAP-F-2025/examination-service/internal/utils"
)

type ExamHandler struct {
	BaseHandler
	examService       services.ExamService
	submissionService services.SubmissionService
	exportService     services.ExportService
}

func NewExamHandler(
	examService services.ExamService,
	submissionService services.SubmissionService,
	exportService services.ExportService,
	logger utils.Logger,
) *ExamHandler {
	return &ExamHandler{
		BaseHandler:       NewBaseHandler(logger),
		examService:       examService,
		submissionService: submissionService,
		exportService:     exportService,
	}
}

// ===== COMPOSITION =====

// ComposeExam builds an exam from hand-picked or randomly drawn questions
// @Summary Compose an exam
// @Description selection_mode "manual" embeds question_ids in order; "auto" draws count questions matching filters.
// @Tags exams
// @Accept json
// @Produce json
// @Param request body services.ComposeExamRequest true "Exam composition request"
// @Success 201 {object} models.Exam
// @Failure 400 {object} ErrorResponse "Validation failed or not enough questions"
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /exams [post]
func (h *ExamHandler) ComposeExam(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	var req services.ComposeExamRequest
	if !h.bindJSON(c, &req) {
		return
	}

	exam, err := h.examService.Compose(c.Request.Context(), &req, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Exam composed", "exam_id", exam.ID, "selection_mode", req.SelectionMode, "total_marks", exam.TotalMarks)
	c.JSON(http.StatusCreated, exam)
}

// ===== READS =====

// GetExam returns the exam as the caller may see it
// @Summary Get an exam
// @Description Students receive the questions without answers, shuffled when the exam randomizes.
// @Tags exams
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {object} models.Exam
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id} [get]
func (h *ExamHandler) GetExam(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	exam, err := h.examService.View(c.Request.Context(), id, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// ListExams
// @Summary List exams
// @Tags exams
// @Produce json
// @Param category query string false "Category"
// @Param is_published query bool false "Publish flag (ignored for students)"
// @Param date_from query string false "RFC3339"
// @Param date_to query string false "RFC3339"
// @Param page query int false "Page" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} services.ExamListResponse
// @Router /exams [get]
func (h *ExamHandler) ListExams(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	limit, offset := h.parsePage(c)
	filters := repositories.ExamFilters{
		IsPublished: h.parseBoolQueryPtr(c, "is_published"),
		Limit:       limit,
		Offset:      offset,
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
	}
	if category := c.Query("category"); category != "" {
		filters.Category = &category
	}
	if creator := c.Query("created_by"); creator != "" {
		filters.CreatedBy = &creator
	}
	for param, target := range map[string]**time.Time{"date_from": &filters.DateFrom, "date_to": &filters.DateTo} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid " + param,
				Details: err.Error(),
			})
			return
		}
		*target = &t
	}

	resp, err := h.examService.List(c.Request.Context(), filters, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ===== UPDATES =====

// UpdateExam changes exam metadata; embedded questions and total marks stay fixed
// @Summary Update exam metadata
// @Tags exams
// @Accept json
// @Produce json
// @Param id path uint true "Exam ID"
// @Param request body services.UpdateExamRequest true "Changed fields"
// @Success 200 {object} models.Exam
// @Router /exams/{id} [put]
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	var req services.UpdateExamRequest
	if !h.bindJSON(c, &req) {
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), id, &req, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// DeleteExam
// @Summary Delete an exam
// @Description Submissions are kept and reported as orphaned.
// @Tags exams
// @Param id path uint true "Exam ID"
// @Success 200 {object} SuccessResponse
// @Router /exams/{id} [delete]
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	if err := h.examService.Delete(c.Request.Context(), id, requester); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Exam deleted", "exam_id", id)
	c.JSON(http.StatusOK, SuccessResponse{
		Message:   "Exam deleted successfully",
		Timestamp: time.Now(),
	})
}

// ===== SUBMISSIONS AND RESULTS =====

// SubmitExam grades the caller's answers
// @Summary Submit answers
// @Description Objective questions are graded at once; free-text answers leave the submission pending.
// @Tags exams
// @Accept json
// @Produce json
// @Param id path uint true "Exam ID"
// @Param request body services.SubmitRequest true "Answers"
// @Success 201 {object} models.Submission
// @Failure 400 {object} ErrorResponse "Validation failed or already submitted"
// @Failure 403 {object} ErrorResponse "Students only"
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id}/submissions [post]
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	var req services.SubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), examID, &req, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Exam submitted", "exam_id", examID, "submission_id", submission.ID, "status", submission.Status)
	c.JSON(http.StatusCreated, submission)
}

// GetExamResults
// @Summary Results of one exam
// @Tags exams
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {object} services.ExamResultsResponse
// @Router /exams/{id}/results [get]
func (h *ExamHandler) GetExamResults(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	results, err := h.submissionService.ListByExam(c.Request.Context(), examID, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// ExportExamResults streams the result table as a file
// @Summary Export exam results
// @Tags exams
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Exam ID"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse "Unknown exam or no submissions"
// @Router /exams/{id}/export [get]
func (h *ExamHandler) ExportExamResults(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	format := services.ExportFormat(c.DefaultQuery("format", string(services.ExportCSV)))
	file, err := h.exportService.ExportResults(c.Request.Context(), examID, format, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Results exported", "exam_id", examID, "format", format, "bytes", len(file.Data))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
