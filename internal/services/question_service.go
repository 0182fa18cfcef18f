package services

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/examination-service/internal/models"
	"github.com/SAP-F-2025/examination-service/internal/repositories"
	"github.com/SAP-F-2025/examination-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, requester Requester) (*models.Question, error) {
	s.logger.Info("Creating question", "kind", req.Kind, "topic", req.Topic, "creator_id", requester.UserID)

	if err := requirePrivileged(requester, "question", "create"); err != nil {
		return nil, err
	}
	if errs := s.validator.GetBusinessValidator().ValidateQuestionCreate(req); len(errs) > 0 {
		return nil, errs
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}

	question := &models.Question{
		Kind:          req.Kind,
		Text:          strings.TrimSpace(req.Text),
		Options:       questionOptions(req.Kind, req.Options),
		CorrectAnswer: datatypes.JSON(slices.Clone(req.CorrectAnswer)),
		Topic:         strings.TrimSpace(req.Topic),
		Difficulty:    difficulty,
		Explanation:   req.Explanation,
		CreatedBy:     requester.UserID,
	}

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, NewInternalError("failed to create question", err)
	}

	s.logger.Info("Question created", "question_id", question.ID)
	return question, nil
}

func (s *questionService) GetByID(ctx context.Context, id uint, requester Requester) (*models.Question, error) {
	if err := requirePrivileged(requester, "question", "view"); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		return nil, lookupError("failed to get question", err, ErrQuestionNotFound)
	}
	return question, nil
}

// Update edits the bank record only; exams keep their embedded copies.
func (s *questionService) Update(ctx context.Context, id uint, req *UpdateQuestionRequest, requester Requester) (*models.Question, error) {
	s.logger.Info("Updating question", "question_id", id, "requester", requester.UserID)

	if err := requirePrivileged(requester, "question", "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		return nil, lookupError("failed to get question", err, ErrQuestionNotFound)
	}
	if err := requireOwnerOrAdmin(requester, question.CreatedBy, "question", "update"); err != nil {
		return nil, err
	}

	if req.Kind != nil {
		question.Kind = *req.Kind
	}
	if req.Text != nil {
		question.Text = strings.TrimSpace(*req.Text)
	}
	if req.Options != nil {
		question.Options = req.Options
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = datatypes.JSON(slices.Clone(req.CorrectAnswer))
	}
	if req.Topic != nil {
		question.Topic = strings.TrimSpace(*req.Topic)
	}
	if req.Difficulty != nil {
		question.Difficulty = *req.Difficulty
	}
	if req.Explanation != nil {
		question.Explanation = req.Explanation
	}

	if errs := validator.ValidateQuestionContent(question.Kind, question.Options, []byte(question.CorrectAnswer)); len(errs) > 0 {
		return nil, errs
	}
	question.Options = questionOptions(question.Kind, question.Options)

	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return nil, lookupError("failed to update question", err, ErrQuestionNotFound)
	}

	return question, nil
}

// Delete removes the bank record; exams keep their embedded copies.
func (s *questionService) Delete(ctx context.Context, id uint, requester Requester) error {
	s.logger.Info("Deleting question", "question_id", id, "requester", requester.UserID)

	if err := requirePrivileged(requester, "question", "delete"); err != nil {
		return err
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		return lookupError("failed to get question", err, ErrQuestionNotFound)
	}
	if err := requireOwnerOrAdmin(requester, question.CreatedBy, "question", "delete"); err != nil {
		return err
	}

	if err := s.repo.Question().Delete(ctx, nil, id); err != nil {
		return lookupError("failed to delete question", err, ErrQuestionNotFound)
	}
	return nil
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters, requester Requester) (*QuestionListResponse, error) {
	if err := requirePrivileged(requester, "question", "list"); err != nil {
		return nil, err
	}

	filters.Limit, filters.Offset = normalizePagination(filters.Limit, filters.Offset)

	questions, total, err := s.repo.Question().List(ctx, nil, filters)
	if err != nil {
		return nil, NewInternalError("failed to list questions", err)
	}

	return &QuestionListResponse{
		Questions: questions,
		Total:     total,
		Page:      pageOf(filters.Limit, filters.Offset),
		Size:      filters.Limit,
	}, nil
}

// questionOptions stores boolean defaults and never returns nil
func questionOptions(kind models.QuestionKind, options []string) datatypes.JSONSlice[string] {
	if kind == models.Boolean && len(options) == 0 {
		return slices.Clone(models.DefaultBooleanOptions)
	}
	if options == nil {
		return datatypes.JSONSlice[string]{}
	}
	return slices.Clone(options)
}
