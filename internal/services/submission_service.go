package services

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/SAP-F-2025/examination-service/internal/events"
	"github.com/SAP-F-2025/examination-service/internal/models"
	"github.com/SAP-F-2025/examination-service/internal/repositories"
	"github.com/SAP-F-2025/examination-service/internal/validator"
)

type submissionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	now       func() time.Time
}

func NewSubmissionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) SubmissionService {
	return &submissionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		now:       time.Now,
	}
}

// Submit grades the answers and stores one submission per (exam, student).
// Concurrent duplicates are settled by the storage unique index.
func (s *submissionService) Submit(ctx context.Context, examID uint, req *SubmitRequest, requester Requester) (*models.Submission, error) {
	s.logger.Info("Submitting exam", "exam_id", examID, "student_id", requester.UserID)

	if requester.Role != models.RoleStudent {
		return nil, NewPermissionError(requester.UserID, "submission", "create", "student role required")
	}
	if req == nil || req.Answers == nil {
		return nil, NewValidationError("answers", "answers are required", nil)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exam, err := s.repo.Exam().GetByID(ctx, nil, examID)
	if err != nil {
		return nil, lookupError("failed to get exam", err, ErrExamNotFound)
	}
	if !exam.IsPublished {
		return nil, ErrExamNotFound
	}

	answers := make([]models.SubmittedAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, models.SubmittedAnswer{
			QuestionID: a.QuestionID,
			Answer:     slices.Clone(a.Answer),
		})
	}

	marks, status := GradeAnswers(exam, answers)

	submission := &models.Submission{
		ExamID:      examID,
		StudentID:   requester.UserID,
		Answers:     answers,
		Marks:       marks,
		Status:      status,
		SubmittedAt: s.now().UTC(),
	}

	if err := s.repo.Submission().Create(ctx, nil, submission); err != nil {
		if repositories.IsDuplicateKey(err) {
			s.logger.Warn("Duplicate submission rejected", "exam_id", examID, "student_id", requester.UserID)
			return nil, ErrDuplicateSubmission
		}
		return nil, NewInternalError("failed to create submission", err)
	}

	s.logger.Info("Submission graded",
		"submission_id", submission.ID,
		"marks", marks,
		"status", status)

	publishEvent(ctx, s.publisher, s.logger, events.SubmissionCreated, events.SubmissionCreatedData{
		SubmissionID: submission.ID,
		ExamID:       examID,
		StudentID:    submission.StudentID,
		Marks:        marks,
		Status:       string(status),
	})

	return submission, nil
}

// Review returns a submission with its exam to the owner or a privileged user
func (s *submissionService) Review(ctx context.Context, id uint, requester Requester) (*SubmissionReview, error) {
	submission, err := s.repo.Submission().GetByID(ctx, nil, id)
	if err != nil {
		return nil, lookupError("failed to get submission", err, ErrSubmissionNotFound)
	}

	if !requester.IsPrivileged() && submission.StudentID != requester.UserID {
		return nil, NewPermissionError(requester.UserID, "submission", "view", "not the owner of this submission")
	}

	review := &SubmissionReview{Submission: submission}

	exam, err := s.repo.Exam().GetByID(ctx, nil, submission.ExamID)
	switch {
	case err == nil:
		review.Exam = exam
	case repositories.IsNotFound(err):
		review.Orphaned = true
	default:
		return nil, NewInternalError("failed to get exam", err)
	}

	return review, nil
}

func (s *submissionService) ListMine(ctx context.Context, requester Requester) ([]*StudentResult, error) {
	studentID := requester.UserID
	submissions, err := s.repo.Submission().List(ctx, nil, repositories.SubmissionFilters{
		StudentID: &studentID,
		SortBy:    "submitted_at",
		SortOrder: "desc",
	})
	if err != nil {
		return nil, NewInternalError("failed to list submissions", err)
	}

	exams, err := loadExams(ctx, s.repo, submissions)
	if err != nil {
		return nil, NewInternalError("failed to load exams", err)
	}

	results := make([]*StudentResult, 0, len(submissions))
	for _, sub := range submissions {
		result := &StudentResult{Submission: sub}
		if exam, ok := exams[sub.ExamID]; ok {
			date := exam.Date
			result.ExamTitle = exam.Title
			result.ExamDate = &date
			result.Duration = exam.Duration
			result.TotalMarks = exam.TotalMarks
		} else {
			result.Orphaned = true
		}
		results = append(results, result)
	}

	return results, nil
}

func (s *submissionService) ListByExam(ctx context.Context, examID uint, requester Requester) (*ExamResultsResponse, error) {
	if err := requirePrivileged(requester, "exam results", "view"); err != nil {
		return nil, err
	}

	exam, err := s.repo.Exam().GetByID(ctx, nil, examID)
	if err != nil {
		return nil, lookupError("failed to get exam", err, ErrExamNotFound)
	}

	submissions, err := s.repo.Submission().List(ctx, nil, repositories.SubmissionFilters{
		ExamID:    &examID,
		SortBy:    "submitted_at",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, NewInternalError("failed to list submissions", err)
	}

	users, err := loadStudents(ctx, s.repo, submissions)
	if err != nil {
		return nil, NewInternalError("failed to load students", err)
	}

	results := make([]*ExamResult, 0, len(submissions))
	for _, sub := range submissions {
		name, email, rollNo := studentDisplay(users, sub.StudentID)
		results = append(results, &ExamResult{
			Submission:   sub,
			StudentName:  name,
			StudentEmail: email,
			RollNo:       rollNo,
			Percentage:   percentage(sub.Marks, exam.TotalMarks),
		})
	}

	return &ExamResultsResponse{
		ExamID:     exam.ID,
		ExamTitle:  exam.Title,
		TotalMarks: exam.TotalMarks,
		PassMarks:  exam.PassMarks,
		Results:    results,
	}, nil
}
