package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/examination-service/internal/events"
	"github.com/SAP-F-2025/examination-service/internal/models"
	"github.com/SAP-F-2025/examination-service/internal/repositories"
	"github.com/SAP-F-2025/examination-service/internal/validator"
)

type gradingService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	now       func() time.Time
}

func NewGradingService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) GradingService {
	return &gradingService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		now:       time.Now,
	}
}

// ListPending returns every submission awaiting manual review with the exam
// title and student display fields attached.
func (s *gradingService) ListPending(ctx context.Context, requester Requester) ([]*PendingSubmission, error) {
	if err := requirePrivileged(requester, "pending submissions", "list"); err != nil {
		return nil, err
	}

	status := models.GradingPendingManualReview
	submissions, err := s.repo.Submission().List(ctx, nil, repositories.SubmissionFilters{
		Status:    &status,
		SortBy:    "submitted_at",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, NewInternalError("failed to list pending submissions", err)
	}

	exams, err := loadExams(ctx, s.repo, submissions)
	if err != nil {
		return nil, NewInternalError("failed to load exams", err)
	}
	users, err := loadStudents(ctx, s.repo, submissions)
	if err != nil {
		return nil, NewInternalError("failed to load students", err)
	}

	pending := make([]*PendingSubmission, 0, len(submissions))
	for _, sub := range submissions {
		name, email, rollNo := studentDisplay(users, sub.StudentID)
		item := &PendingSubmission{
			Submission:   sub,
			StudentName:  name,
			StudentEmail: email,
			RollNo:       rollNo,
		}
		if exam, ok := exams[sub.ExamID]; ok {
			item.ExamTitle = exam.Title
		} else {
			item.Orphaned = true
		}
		pending = append(pending, item)
	}

	return pending, nil
}

// Grade overwrites the submission's marks with the grader's final figure and
// marks it complete. The figure is not checked against the exam.
func (s *gradingService) Grade(ctx context.Context, submissionID uint, req *GradeRequest, requester Requester) (*models.Submission, error) {
	s.logger.Info("Grading submission",
		"submission_id", submissionID,
		"grader_id", requester.UserID)

	if err := requirePrivileged(requester, "submission", "grade"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var graded *models.Submission
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		submission, err := tx.Submission().GetByID(ctx, nil, submissionID)
		if err != nil {
			return err
		}

		gradedAt := s.now().UTC()
		update := repositories.GradeUpdate{
			Marks:    *req.FinalMarks,
			GradedBy: requester.UserID,
			GradedAt: gradedAt,
		}
		if err := tx.Submission().UpdateGrade(ctx, nil, submissionID, update); err != nil {
			return err
		}

		submission.Marks = update.Marks
		submission.Status = models.GradingComplete
		submission.GradedBy = &update.GradedBy
		submission.GradedAt = &gradedAt
		graded = submission
		return nil
	})
	if err != nil {
		return nil, lookupError("failed to grade submission", err, ErrSubmissionNotFound)
	}

	s.logger.Info("Submission graded manually",
		"submission_id", submissionID,
		"marks", graded.Marks)

	publishEvent(ctx, s.publisher, s.logger, events.SubmissionGraded, events.SubmissionGradedData{
		SubmissionID: graded.ID,
		ExamID:       graded.ExamID,
		StudentID:    graded.StudentID,
		Marks:        graded.Marks,
		GradedBy:     requester.UserID,
	})

	return graded, nil
}
