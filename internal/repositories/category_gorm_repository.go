package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"

	"catalog/internal/models"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// GetAll retrieves all categories from the database.
func (r *GORMCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	var records []categoryRecord
	if err := r.db.WithContext(ctx).Order("name").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get all categories: %w", err)
	}
	categories := make([]models.Category, 0, len(records))
	for _, rec := range records {
		categories = append(categories, rec.toModel())
	}
	return categories, nil
}

// GetByID retrieves a single category by its ID from the database.
func (r *GORMCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	return r.first(ctx, "ID "+id, "id = ?", id)
}

// GetByName retrieves a single category by its exact name.
func (r *GORMCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return r.first(ctx, "name "+name, "name = ?", name)
}

func (r *GORMCategoryRepository) first(ctx context.Context, what, query string, arg string) (*models.Category, error) {
	var rec categoryRecord
	if err := r.db.WithContext(ctx).First(&rec, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category with %s: %w", what, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category by %s: %w", what, err)
	}
	category := rec.toModel()
	return &category, nil
}

// Create creates a new category in the database.
func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	rec := categoryRecord{
		ID:          primitive.NewObjectID().Hex(),
		Name:        category.Name,
		Description: category.Description,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("category name %s: %w", category.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	category.ID = rec.ID
	return nil
}

// Update modifies an existing category and returns the stored result.
func (r *GORMCategoryRepository) Update(ctx context.Context, id string, upd models.CategoryUpdate) (*models.Category, error) {
	updates := map[string]interface{}{"name": upd.Name}
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}
	res := r.db.WithContext(ctx).Model(&categoryRecord{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("category name %s: %w", upd.Name, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to update category %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("category with ID %s: %w", id, ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

// Delete deletes a category by its ID. Products referencing it are left untouched.
func (r *GORMCategoryRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&categoryRecord{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete category %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("category with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
