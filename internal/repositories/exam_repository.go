package repositories

import (
	"context"

	"github.com/SAP-F-2025/examination-service/internal/models"
	"gorm.io/gorm"
)

type ExamRepository interface {
	Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)
	// GetByIDs skips ids that no longer exist
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Exam, error)
	List(ctx context.Context, tx *gorm.DB, filters ExamFilters) ([]*models.Exam, int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)

	// UpdateMetadata writes title, date, duration, category, pass marks and flags.
	// Embedded questions and total marks are never written after creation.
	UpdateMetadata(ctx context.Context, tx *gorm.DB, exam *models.Exam) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}
