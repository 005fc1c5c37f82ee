package repositories

import (
	"context"

	"catalog/internal/models"
)

// ProductRepository defines the interface for product data access. Every
// returned product has its category reference resolved to the category name.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Search(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	// GetLowStock returns products whose stock, or the stock of any variant, is below threshold.
	GetLowStock(ctx context.Context, threshold int) ([]models.Product, error)
	// Create assigns ID and timestamps to product.
	Create(ctx context.Context, product *models.Product) error
	// Update applies upd to the product with the given id and returns the updated product.
	Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}
