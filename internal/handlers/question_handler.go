package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/examination-service/internal/models"
	"github.com/SAP-F-2025/examination-service/internal/repositories"
	"github.com/SAP-F-2025/examination-service/internal/services"
	"github.com/SAP-F-2025/examination-service/internal/utils"
)

type QuestionHandler struct {
	BaseHandler
	service services.QuestionService
}

func NewQuestionHandler(service services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateQuestion adds a question to the bank
// @Summary Create a question
// @Tags questions
// @Accept json
// @Produce json
// @Param request body services.CreateQuestionRequest true "Question"
// @Success 201 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	var req services.CreateQuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	question, err := h.service.Create(c.Request.Context(), &req, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Question created", "question_id", question.ID)
	c.JSON(http.StatusCreated, question)
}

// GetQuestion
// @Summary Get a question by id
// @Tags questions
// @Produce json
// @Param id path uint true "Question ID"
// @Success 200 {object} models.Question
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	question, err := h.service.GetByID(c.Request.Context(), id, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// UpdateQuestion
// @Summary Update a question
// @Description Existing exams keep their own snapshot of the question.
// @Tags questions
// @Accept json
// @Produce json
// @Param id path uint true "Question ID"
// @Param request body services.UpdateQuestionRequest true "Changed fields"
// @Success 200 {object} models.Question
// @Router /questions/{id} [put]
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	var req services.UpdateQuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	question, err := h.service.Update(c.Request.Context(), id, &req, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion
// @Summary Delete a question
// @Tags questions
// @Param id path uint true "Question ID"
// @Success 200 {object} SuccessResponse
// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, requester); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Question deleted", "question_id", id)
	c.JSON(http.StatusOK, SuccessResponse{
		Message:   "Question deleted successfully",
		Timestamp: time.Now(),
	})
}

// ListQuestions
// @Summary List questions
// @Tags questions
// @Produce json
// @Param kind query string false "multiple_choice, boolean or free_text"
// @Param difficulty query string false "easy, medium or hard"
// @Param topic query string false "Topic substring"
// @Param page query int false "Page" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} services.QuestionListResponse
// @Router /questions [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	limit, offset := h.parsePage(c)
	filters := repositories.QuestionFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if kind := c.Query("kind"); kind != "" {
		k := models.QuestionKind(kind)
		filters.Kind = &k
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		d := models.DifficultyLevel(difficulty)
		filters.Difficulty = &d
	}
	if topic := c.Query("topic"); topic != "" {
		filters.Topic = &topic
	}
	if creator := c.Query("created_by"); creator != "" {
		filters.CreatedBy = &creator
	}

	resp, err := h.service.List(c.Request.Context(), filters, requester)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
