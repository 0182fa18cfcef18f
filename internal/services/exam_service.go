package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/examination-service/internal/events"
	"github.com/SAP-F-2025/examination-service/internal/models"
	"github.com/SAP-F-2025/examination-service/internal/repositories"
	"github.com/SAP-F-2025/examination-service/internal/validator"
)

type examService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	random    RandomSource
}

func NewExamService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, random RandomSource) ExamService {
	if random == nil {
		random = NewRandomSource()
	}
	return &examService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		random:    random,
	}
}

// ===== COMPOSITION =====

func (s *examService) Compose(ctx context.Context, req *ComposeExamRequest, requester Requester) (*models.Exam, error) {
	s.logger.Info("Composing exam",
		"title", req.Title,
		"selection_mode", req.SelectionMode,
		"requester", requester.UserID)

	if err := requirePrivileged(requester, "exam", "compose"); err != nil {
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidateExamCompose(req); len(errs) > 0 {
		return nil, errs
	}

	var (
		selected []*models.Question
		err      error
	)
	switch req.SelectionMode {
	case models.SelectionManual:
		selected, err = s.selectManual(ctx, req.QuestionIDs)
	case models.SelectionAuto:
		selected, err = s.selectAuto(ctx, req.Filters, req.Count)
	}
	if err != nil {
		return nil, err
	}

	if req.PassMarks > len(selected) {
		return nil, NewValidationError("pass_marks", fmt.Sprintf("cannot exceed total marks (%d)", len(selected)), req.PassMarks)
	}

	embedded := make([]models.EmbeddedQuestion, 0, len(selected))
	for _, q := range selected {
		embedded = append(embedded, embedQuestion(q))
	}

	randomize := req.SelectionMode == models.SelectionAuto
	if req.RandomizeQuestions != nil {
		randomize = *req.RandomizeQuestions
	}
	published := true
	if req.IsPublished != nil {
		published = *req.IsPublished
	}

	exam := &models.Exam{
		Title:              strings.TrimSpace(req.Title),
		Date:               *req.Date,
		Duration:           req.Duration,
		Category:           strings.TrimSpace(req.Category),
		CreatedBy:          requester.UserID,
		Questions:          embedded,
		TotalMarks:         len(embedded),
		PassMarks:          req.PassMarks,
		RandomizeQuestions: randomize,
		IsPublished:        published,
	}

	if err := s.repo.Exam().Create(ctx, nil, exam); err != nil {
		return nil, NewInternalError("failed to create exam", err)
	}

	s.logger.Info("Exam composed",
		"exam_id", exam.ID,
		"questions", len(embedded),
		"selection_mode", req.SelectionMode)

	publishEvent(ctx, s.publisher, s.logger, events.ExamComposed, events.ExamComposedData{
		ExamID:        exam.ID,
		Title:         exam.Title,
		CreatedBy:     exam.CreatedBy,
		SelectionMode: string(req.SelectionMode),
		TotalMarks:    exam.TotalMarks,
	})

	return exam, nil
}

// selectManual keeps the caller's order; repeated ids collapse to their first occurrence
func (s *examService) selectManual(ctx context.Context, requested []uint) ([]*models.Question, error) {
	ids := make([]uint, 0, len(requested))
	seen := make(map[uint]bool, len(requested))
	for _, id := range requested {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	found, err := s.repo.Question().GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, NewInternalError("failed to load questions", err)
	}

	byID := make(map[uint]*models.Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}

	ordered := make([]*models.Question, 0, len(ids))
	var missing []uint
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		ordered = append(ordered, q)
	}
	if len(missing) > 0 {
		return nil, missingIDsError(missing)
	}

	return ordered, nil
}

// selectAuto draws count questions uniformly without replacement from the filtered pool
func (s *examService) selectAuto(ctx context.Context, filter validator.QuestionPoolFilterRequest, count int) ([]*models.Question, error) {
	pool, err := s.repo.Question().Find(ctx, nil, repositories.QuestionPoolFilter{
		Topic:      strings.TrimSpace(filter.Topic),
		Difficulty: filter.Difficulty,
	})
	if err != nil {
		return nil, NewInternalError("failed to load question pool", err)
	}

	if len(pool) < count {
		s.logger.Warn("Question pool too small",
			"topic", filter.Topic,
			"difficulty", filter.Difficulty,
			"available", len(pool),
			"requested", count)
		return nil, &InsufficientPoolError{Available: len(pool), Requested: count}
	}

	picked := make([]*models.Question, 0, count)
	for _, i := range sampleIndexes(s.random, len(pool), count) {
		picked = append(picked, pool[i])
	}
	return picked, nil
}

// embedQuestion copies a question by value under a fresh synthetic id
func embedQuestion(q *models.Question) models.EmbeddedQuestion {
	options := slices.Clone([]string(q.Options))
	if q.Kind == models.Boolean && len(options) == 0 {
		options = slices.Clone(models.DefaultBooleanOptions)
	}
	if options == nil {
		options = []string{}
	}

	embedded := models.EmbeddedQuestion{
		ID:               uuid.NewString(),
		SourceQuestionID: q.ID,
		Kind:             q.Kind,
		Text:             q.Text,
		Options:          options,
		Topic:            q.Topic,
		Difficulty:       q.Difficulty,
	}
	if len(q.CorrectAnswer) > 0 {
		embedded.CorrectAnswer = slices.Clone([]byte(q.CorrectAnswer))
	}
	if q.Explanation != nil {
		explanation := *q.Explanation
		embedded.Explanation = &explanation
	}
	return embedded
}

// ===== VIEW =====

// ViewExam filters an exam for the given role. Privileged roles get the exam
// as stored. Everyone else gets a deep copy without correct answers or
// explanations, reshuffled when the exam asks for it. exam is never mutated.
func ViewExam(exam *models.Exam, role models.UserRole, rnd RandomSource) *models.Exam {
	if exam == nil || role.IsPrivileged() {
		return exam
	}

	out := exam.Clone()
	for i := range out.Questions {
		out.Questions[i].CorrectAnswer = nil
		out.Questions[i].Explanation = nil
	}

	if out.RandomizeQuestions && rnd != nil {
		rnd.Shuffle(len(out.Questions), func(i, j int) {
			out.Questions[i], out.Questions[j] = out.Questions[j], out.Questions[i]
		})
	}
	return out
}

func (s *examService) View(ctx context.Context, id uint, requester Requester) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, nil, id)
	if err != nil {
		return nil, lookupError("failed to get exam", err, ErrExamNotFound)
	}

	if !exam.IsPublished && !requester.IsPrivileged() {
		return nil, ErrExamNotFound
	}

	return ViewExam(exam, requester.Role, s.random), nil
}

func (s *examService) List(ctx context.Context, filters repositories.ExamFilters, requester Requester) (*ExamListResponse, error) {
	filters.Limit, filters.Offset = normalizePagination(filters.Limit, filters.Offset)

	if !requester.IsPrivileged() {
		published := true
		filters.IsPublished = &published
		filters.CreatedBy = nil
	}

	exams, total, err := s.repo.Exam().List(ctx, nil, filters)
	if err != nil {
		return nil, NewInternalError("failed to list exams", err)
	}

	for i, exam := range exams {
		exams[i] = ViewExam(exam, requester.Role, s.random)
	}

	return &ExamListResponse{
		Exams: exams,
		Total: total,
		Page:  pageOf(filters.Limit, filters.Offset),
		Size:  filters.Limit,
	}, nil
}

// ===== METADATA =====

func (s *examService) Update(ctx context.Context, id uint, req *UpdateExamRequest, requester Requester) (*models.Exam, error) {
	s.logger.Info("Updating exam", "exam_id", id, "requester", requester.UserID)

	if err := requirePrivileged(requester, "exam", "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exam, err := s.repo.Exam().GetByID(ctx, nil, id)
	if err != nil {
		return nil, lookupError("failed to get exam", err, ErrExamNotFound)
	}
	if err := requireOwnerOrAdmin(requester, exam.CreatedBy, "exam", "update"); err != nil {
		return nil, err
	}

	if req.Title != nil {
		exam.Title = strings.TrimSpace(*req.Title)
	}
	if req.Date != nil {
		exam.Date = *req.Date
	}
	if req.Duration != nil {
		exam.Duration = *req.Duration
	}
	if req.Category != nil {
		exam.Category = strings.TrimSpace(*req.Category)
	}
	if req.PassMarks != nil {
		if *req.PassMarks > exam.TotalMarks {
			return nil, NewValidationError("pass_marks", fmt.Sprintf("cannot exceed total marks (%d)", exam.TotalMarks), *req.PassMarks)
		}
		exam.PassMarks = *req.PassMarks
	}
	if req.RandomizeQuestions != nil {
		exam.RandomizeQuestions = *req.RandomizeQuestions
	}
	if req.IsPublished != nil {
		exam.IsPublished = *req.IsPublished
	}

	if err := s.repo.Exam().UpdateMetadata(ctx, nil, exam); err != nil {
		return nil, lookupError("failed to update exam", err, ErrExamNotFound)
	}

	return exam, nil
}

// Delete soft-deletes the exam. Its submissions are kept and become orphaned.
func (s *examService) Delete(ctx context.Context, id uint, requester Requester) error {
	s.logger.Info("Deleting exam", "exam_id", id, "requester", requester.UserID)

	if err := requirePrivileged(requester, "exam", "delete"); err != nil {
		return err
	}

	exam, err := s.repo.Exam().GetByID(ctx, nil, id)
	if err != nil {
		return lookupError("failed to get exam", err, ErrExamNotFound)
	}
	if err := requireOwnerOrAdmin(requester, exam.CreatedBy, "exam", "delete"); err != nil {
		return err
	}

	if err := s.repo.Exam().Delete(ctx, nil, id); err != nil {
		return lookupError("failed to delete exam", err, ErrExamNotFound)
	}

	publishEvent(ctx, s.publisher, s.logger, events.ExamDeleted, events.ExamDeletedData{
		ExamID:    id,
		DeletedBy: requester.UserID,
	})

	return nil
}
