package repositories

import (
	"context"

	"github.com/SAP-F-2025/examination-service/internal/models"
)

// UserRepository interface for user lookups (the identity provider owns user data)
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByIDs skips users that cannot be resolved
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
}
