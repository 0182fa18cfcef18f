package repositories

import (
	"context"

	"github.com/SAP-F-2025/examination-service/internal/models"
	"gorm.io/gorm"
)

// QuestionRepository is the question store consumed by the exam composer
type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// GetByIDs returns the questions that exist, in no particular order
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error)

	// Find returns every question matching the pool filter
	Find(ctx context.Context, tx *gorm.DB, filter QuestionPoolFilter) ([]*models.Question, error)

	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)
}
