package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"

	"catalog/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// preloaded returns a query that loads the category and the ordered variants.
func (r *GORMProductRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Category").
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("position") })
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, r.preloaded(ctx))
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var rec productRecord
	if err := r.preloaded(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	product := rec.toModel()
	return &product, nil
}

// Search retrieves the products matching every non-empty field of filter.
func (r *GORMProductRepository) Search(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	q := r.preloaded(ctx)
	if filter.Query != "" {
		q = q.Where(`folded_name LIKE ? ESCAPE '\'`, "%"+escapeLike(foldName(filter.Query))+"%")
	}
	if filter.CategoryID != "" {
		if !primitive.IsValidObjectID(filter.CategoryID) {
			return []models.Product{}, nil
		}
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	return r.find(ctx, q)
}

// GetLowStock retrieves products whose stock or any variant stock is below threshold.
func (r *GORMProductRepository) GetLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	lowVariants := r.db.Model(&variantRecord{}).Select("product_id").Where("stock < ?", threshold)
	return r.find(ctx, r.preloaded(ctx).Where("stock < ? OR id IN (?)", threshold, lowVariants))
}

func (r *GORMProductRepository) find(ctx context.Context, q *gorm.DB) ([]models.Product, error) {
	var records []productRecord
	if err := q.Order("created_at").Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	products := make([]models.Product, 0, len(records))
	for _, rec := range records {
		p := rec.toModel()
		products = append(products, p)
	}
	return products, nil
}

// Create creates a new product and its variants in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	id := primitive.NewObjectID().Hex()
	rec := productRecord{
		ID:          id,
		Name:        product.Name,
		FoldedName:  foldName(product.Name),
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		CategoryID:  product.Category.ID,
		Variants:    variantRecords(id, product.Variants),
		Discount:    product.Discount,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	product.ID = rec.ID
	product.CreatedAt = rec.CreatedAt.UTC()
	product.UpdatedAt = rec.UpdatedAt.UTC()
	return nil
}

// Update applies upd to an existing product. A non-nil upd.Variants replaces
// the stored variants in the same transaction.
func (r *GORMProductRepository) Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":        upd.Name,
			"folded_name": foldName(upd.Name),
			"price":       upd.Price,
			"category_id": upd.CategoryID,
			"updated_at":  tx.NowFunc(),
		}
		if upd.Description != nil {
			updates["description"] = *upd.Description
		}
		if upd.Stock != nil {
			updates["stock"] = *upd.Stock
		}
		if upd.Discount != nil {
			updates["discount"] = *upd.Discount
		}

		res := tx.Model(&productRecord{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update product %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}

		if upd.Variants == nil {
			return nil
		}
		if err := tx.Where("product_id = ?", id).Delete(&variantRecord{}).Error; err != nil {
			return fmt.Errorf("failed to replace variants of product %s: %w", id, err)
		}
		if len(upd.Variants) == 0 {
			return nil
		}
		variants := variantRecords(id, upd.Variants)
		if err := tx.Create(&variants).Error; err != nil {
			return fmt.Errorf("failed to replace variants of product %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete deletes a product and its variants by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&productRecord{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		if err := tx.Where("product_id = ?", id).Delete(&variantRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete variants of product %s: %w", id, err)
		}
		return nil
	})
}

// foldName lower-cases s with Unicode rules. SQL LOWER() is ASCII-only on
// SQLite, so names are folded here on write and the query on read.
func foldName(s string) string {
	return strings.ToLower(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern escaped with '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
