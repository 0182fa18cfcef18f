package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/examination-service/internal/models"
	"github.com/SAP-F-2025/examination-service/internal/repositories"
)

var submissionSortColumns = map[string]bool{
	"created_at":   true,
	"submitted_at": true,
	"id":           true,
	"marks":        true,
	"status":       true,
}

// SubmissionPostgreSQL is not cached: grading must always see committed state.
type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (s *SubmissionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

// Create inserts the submission. The unique index on (exam_id, student_id)
// decides concurrent duplicates; the loser gets ErrDuplicateKey.
func (s *SubmissionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	if err := s.getDB(tx).WithContext(ctx).Create(submission).Error; err != nil {
		return fmt.Errorf("failed to create submission: %w", translateError(err))
	}
	return nil
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.getDB(tx).WithContext(ctx).First(&submission, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get submission %d: %w", id, translateError(err))
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]*models.Submission, error) {
	query := s.getDB(tx).WithContext(ctx).Model(&models.Submission{})

	if filters.ExamID != nil {
		query = query.Where("exam_id = ?", *filters.ExamID)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "submitted_at"
	}
	query = applyPaginationAndSort(query, submissionSortColumns, sortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var submissions []*models.Submission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

func (s *SubmissionPostgreSQL) UpdateGrade(ctx context.Context, tx *gorm.DB, id uint, update repositories.GradeUpdate) error {
	result := s.getDB(tx).WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"marks":     update.Marks,
			"status":    models.GradingComplete,
			"graded_by": update.GradedBy,
			"graded_at": update.GradedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to grade submission: %w", translateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to grade submission %d: %w", id, repositories.ErrNotFound)
	}
	return nil
}
