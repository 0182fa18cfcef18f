package repositories

import (
	"context"

	"github.com/SAP-F-2025/examination-service/internal/models"
	"gorm.io/gorm"
)

type SubmissionRepository interface {
	// Create returns ErrDuplicateKey when the (exam, student) pair already has a submission
	Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error)
	List(ctx context.Context, tx *gorm.DB, filters SubmissionFilters) ([]*models.Submission, error)
	UpdateGrade(ctx context.Context, tx *gorm.DB, id uint, update GradeUpdate) error
}
