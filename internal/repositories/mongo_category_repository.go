package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"catalog/internal/models"
)

// MongoCategoryRepository is a MongoDB implementation of CategoryRepository.
type MongoCategoryRepository struct {
	coll *mongo.Collection
}

// NewMongoCategoryRepository creates a new instance of MongoCategoryRepository.
func NewMongoCategoryRepository(coll *mongo.Collection) *MongoCategoryRepository {
	return &MongoCategoryRepository{coll: coll}
}

// GetAll retrieves all categories.
func (r *MongoCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to get all categories: %w", err)
	}
	var docs []categoryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	categories := make([]models.Category, 0, len(docs))
	for _, d := range docs {
		categories = append(categories, d.toModel())
	}
	return categories, nil
}

// GetByID retrieves a single category by its ID.
func (r *MongoCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, fmt.Errorf("category with ID %s: %w", id, ErrNotFound)
	}
	return r.findOne(ctx, bson.M{"_id": oid}, "ID "+id)
}

// GetByName retrieves a single category by its exact name.
func (r *MongoCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return r.findOne(ctx, bson.M{"name": name}, "name "+name)
}

func (r *MongoCategoryRepository) findOne(ctx context.Context, filter bson.M, what string) (*models.Category, error) {
	var doc categoryDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("category with %s: %w", what, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category by %s: %w", what, err)
	}
	category := doc.toModel()
	return &category, nil
}

// Create inserts a new category and sets its ID.
func (r *MongoCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	doc := categoryDocument{ID: primitive.NewObjectID(), Name: category.Name, Description: category.Description}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("category name %s: %w", category.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	category.ID = doc.ID.Hex()
	return nil
}

// Update modifies a category and returns the stored result.
func (r *MongoCategoryRepository) Update(ctx context.Context, id string, upd models.CategoryUpdate) (*models.Category, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, fmt.Errorf("category with ID %s: %w", id, ErrNotFound)
	}
	set := bson.M{"name": upd.Name}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}

	var doc categoryDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, fmt.Errorf("category with ID %s: %w", id, ErrNotFound)
		case mongo.IsDuplicateKeyError(err):
			return nil, fmt.Errorf("category name %s: %w", upd.Name, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to update category %s: %w", id, err)
	}
	category := doc.toModel()
	return &category, nil
}

// Delete removes a category by its ID. Products referencing it are left untouched.
func (r *MongoCategoryRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return fmt.Errorf("category with ID %s: %w", id, ErrNotFound)
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete category %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("category with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
