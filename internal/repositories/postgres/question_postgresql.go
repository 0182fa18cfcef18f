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

var questionSortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"id":         true,
	"topic":      true,
	"difficulty": true,
	"kind":       true,
}

type QuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if err := q.getDB(tx).WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", translateError(err))
	}
	return nil
}

// GetByID retrieves a question by ID with caching
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question

	err := q.cacheManager.Question.CacheOrExecute(ctx, cache.QuestionKey(id), &question, cache.QuestionCacheConfig.TTL, func() (any, error) {
		var dbQuestion models.Question
		if err := q.getDB(tx).WithContext(ctx).First(&dbQuestion, id).Error; err != nil {
			return nil, translateError(err)
		}
		return &dbQuestion, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get question %d: %w", id, err)
	}

	return &question, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	result := q.getDB(tx).WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", question.ID).
		Select("kind", "text", "options", "correct_answer", "topic", "difficulty", "explanation").
		Updates(question)
	if result.Error != nil {
		return fmt.Errorf("failed to update question: %w", translateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update question %d: %w", question.ID, repositories.ErrNotFound)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.ID)
	return nil
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := q.getDB(tx).WithContext(ctx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete question: %w", translateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete question %d: %w", id, repositories.ErrNotFound)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, id)
	return nil
}

func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	if len(ids) == 0 {
		return []*models.Question{}, nil
	}

	var questions []*models.Question
	if err := q.getDB(tx).WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions by ids: %w", translateError(err))
	}
	return questions, nil
}

// Find returns the whole candidate pool; sampling happens in the service
func (q *QuestionPostgreSQL) Find(ctx context.Context, tx *gorm.DB, filter repositories.QuestionPoolFilter) ([]*models.Question, error) {
	query := q.getDB(tx).WithContext(ctx).Model(&models.Question{})
	if filter.Topic != "" {
		query = query.Where("topic ILIKE ?", likePattern(filter.Topic))
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}

	var questions []*models.Question
	if err := query.Order("id ASC").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to find question pool: %w", translateError(err))
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	query := q.getDB(tx).WithContext(ctx).Model(&models.Question{})

	if filters.Kind != nil {
		query = query.Where("kind = ?", *filters.Kind)
	}
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.Topic != nil && *filters.Topic != "" {
		query = query.Where("topic ILIKE ?", likePattern(*filters.Topic))
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	var questions []*models.Question
	query = applyPaginationAndSort(query, questionSortColumns, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	return questions, total, nil
}
