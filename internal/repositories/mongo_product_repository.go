package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"catalog/internal/models"
)

// MongoProductRepository is a MongoDB implementation of ProductRepository.
// Category names are resolved with a second query on the categories collection.
type MongoProductRepository struct {
	coll       *mongo.Collection
	categories *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(coll, categories *mongo.Collection) *MongoProductRepository {
	return &MongoProductRepository{coll: coll, categories: categories}
}

// GetAll retrieves all products.
func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, bson.M{})
}

// GetByID retrieves a single product by its ID.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	var doc productDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return r.populateOne(ctx, doc)
}

// Search retrieves the products matching every non-empty field of filter.
func (r *MongoProductRepository) Search(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query, ok := searchFilter(filter)
	if !ok {
		return []models.Product{}, nil
	}
	return r.find(ctx, query)
}

// GetLowStock retrieves products whose stock or any variant stock is below threshold.
func (r *MongoProductRepository) GetLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	return r.find(ctx, lowStockFilter(threshold))
}

// Create inserts a new product and sets its ID and timestamps.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	categoryID, ok := objectID(product.Category.ID)
	if !ok {
		return fmt.Errorf("invalid category ID %q", product.Category.ID)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := productDocument{
		ID:          primitive.NewObjectID(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		Category:    categoryID,
		Variants:    variantDocuments(product.Variants),
		Discount:    product.Discount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	product.ID = doc.ID.Hex()
	product.CreatedAt = now
	product.UpdatedAt = now
	return nil
}

// Update applies upd to a product and returns the stored, populated result.
func (r *MongoProductRepository) Update(ctx context.Context, id string, upd models.ProductUpdate) (*models.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	set, err := updateDocument(upd, time.Now().UTC().Truncate(time.Millisecond))
	if err != nil {
		return nil, err
	}

	var doc productDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return r.populateOne(ctx, doc)
}

// Delete removes a product by its ID.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *MongoProductRepository) find(ctx context.Context, filter bson.M) ([]models.Product, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return r.populate(ctx, docs)
}

func (r *MongoProductRepository) populateOne(ctx context.Context, doc productDocument) (*models.Product, error) {
	products, err := r.populate(ctx, []productDocument{doc})
	if err != nil {
		return nil, err
	}
	return &products[0], nil
}

// populate converts docs and fills in category names with one $in query.
func (r *MongoProductRepository) populate(ctx context.Context, docs []productDocument) ([]models.Product, error) {
	products := make([]models.Product, 0, len(docs))
	if len(docs) == 0 {
		return products, nil
	}

	seen := make(map[primitive.ObjectID]struct{}, len(docs))
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		if _, ok := seen[d.Category]; !ok {
			seen[d.Category] = struct{}{}
			ids = append(ids, d.Category)
		}
	}

	cur, err := r.categories.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product categories: %w", err)
	}
	var cats []categoryDocument
	if err := cur.All(ctx, &cats); err != nil {
		return nil, fmt.Errorf("failed to decode product categories: %w", err)
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID.Hex()] = c.Name
	}

	for _, d := range docs {
		p := d.toModel()
		p.Category.Name = names[p.Category.ID]
		products = append(products, p)
	}
	return products, nil
}

// searchFilter builds the query for a product search. ok is false when the
// filter can match nothing, which is the case for a malformed category id.
func searchFilter(filter models.ProductFilter) (bson.M, bool) {
	query := bson.M{}
	if filter.Query != "" {
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(filter.Query), "$options": "i"}
	}
	if filter.CategoryID != "" {
		oid, ok := objectID(filter.CategoryID)
		if !ok {
			return nil, false
		}
		query["category"] = oid
	}
	return query, true
}

func lowStockFilter(threshold int) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"stock": bson.M{"$lt": threshold}},
		bson.M{"variants.stock": bson.M{"$lt": threshold}},
	}}
}

func updateDocument(upd models.ProductUpdate, now time.Time) (bson.M, error) {
	categoryID, ok := objectID(upd.CategoryID)
	if !ok {
		return nil, fmt.Errorf("invalid category ID %q", upd.CategoryID)
	}
	set := bson.M{
		"name":      upd.Name,
		"price":     upd.Price,
		"category":  categoryID,
		"updatedAt": now,
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Stock != nil {
		set["stock"] = *upd.Stock
	}
	if upd.Discount != nil {
		set["discount"] = *upd.Discount
	}
	if upd.Variants != nil {
		set["variants"] = variantDocuments(upd.Variants)
	}
	return set, nil
}
