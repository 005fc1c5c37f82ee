package repositories

import (
	"context"

	"catalog/internal/models"
)

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	// Create assigns an ID to category. A taken name yields ErrDuplicate.
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, id string, upd models.CategoryUpdate) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}
