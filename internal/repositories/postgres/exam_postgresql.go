package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/examination-service/internal/cache"
	"github.com/SAP-F-2025/examination-service/internal/models"
	"github.com/SAP-F-2025/examination-service/internal/repositories"
)

var examSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"id":         true,
	"title":      true,
	"date":       true,
}

type ExamPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewExamPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ExamRepository {
	return &ExamPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (e *ExamPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

func (e *ExamPostgreSQL) Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	if err := e.getDB(tx).WithContext(ctx).Create(exam).Error; err != nil {
		return fmt.Errorf("failed to create exam: %w", translateError(err))
	}
	return nil
}

// GetByID retrieves an exam with caching. Soft-deleted exams are not found.
func (e *ExamPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	var exam models.Exam

	err := e.cacheManager.Exam.CacheOrExecute(ctx, cache.ExamKey(id), &exam, cache.ExamCacheConfig.TTL, func() (any, error) {
		var dbExam models.Exam
		if err := e.getDB(tx).WithContext(ctx).First(&dbExam, id).Error; err != nil {
			return nil, translateError(err)
		}
		return &dbExam, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get exam %d: %w", id, err)
	}

	return &exam, nil
}

func (e *ExamPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Exam, error) {
	if len(ids) == 0 {
		return []*models.Exam{}, nil
	}

	var exams []*models.Exam
	if err := e.getDB(tx).WithContext(ctx).Where("id IN ?", ids).Find(&exams).Error; err != nil {
		return nil, fmt.Errorf("failed to get exams by ids: %w", translateError(err))
	}
	return exams, nil
}

func (e *ExamPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	query := e.getDB(tx).WithContext(ctx).Model(&models.Exam{})

	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.IsPublished != nil {
		query = query.Where("is_published = ?", *filters.IsPublished)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.DateFrom != nil {
		query = query.Where("date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count exams: %w", err)
	}

	var exams []*models.Exam
	query = applyPaginationAndSort(query, examSortColumns, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&exams).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list exams: %w", err)
	}

	return exams, total, nil
}

func (e *ExamPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := e.getDB(tx).WithContext(ctx).Model(&models.Exam{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count exams: %w", err)
	}
	return count, nil
}

func (e *ExamPostgreSQL) UpdateMetadata(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	result := e.getDB(tx).WithContext(ctx).
		Model(&models.Exam{}).
		Where("id = ?", exam.ID).
		Select("title", "date", "duration", "category", "pass_marks", "randomize_questions", "is_published").
		Updates(exam)
	if result.Error != nil {
		return fmt.Errorf("failed to update exam: %w", translateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update exam %d: %w", exam.ID, repositories.ErrNotFound)
	}

	cache.InvalidateExamCache(ctx, e.cacheManager, exam.ID)
	return nil
}

// Delete soft-deletes the exam; its submissions are left in place and become orphaned
func (e *ExamPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := e.getDB(tx).WithContext(ctx).Delete(&models.Exam{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete exam: %w", translateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete exam %d: %w", id, repositories.ErrNotFound)
	}

	cache.InvalidateExamCache(ctx, e.cacheManager, id)
	return nil
}
