package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"catalog/internal/models"
	"catalog/pkg/config"
)

const (
	categoriesCollection = "categories"
	productsCollection   = "products"
)

type categoryDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
}

type variantDocument struct {
	Color string  `bson:"color,omitempty"`
	Size  string  `bson:"size,omitempty"`
	Price float64 `bson:"price"`
	Stock int     `bson:"stock"`
}

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	Price       float64            `bson:"price"`
	Stock       int                `bson:"stock"`
	Category    primitive.ObjectID `bson:"category"`
	Variants    []variantDocument  `bson:"variants"`
	Discount    float64            `bson:"discount"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// OpenMongo connects to MongoDB, pings the primary and ensures the catalog indexes.
func OpenMongo(ctx context.Context, cfg config.DBConfig) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	store, err := NewMongoStore(connectCtx, client.Database(cfg.Name))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	store.close = client.Disconnect
	return store, nil
}

// NewMongoStore builds a Store over an already connected database.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*Store, error) {
	if err := ensureMongoIndexes(ctx, db); err != nil {
		return nil, err
	}
	categories := db.Collection(categoriesCollection)
	products := db.Collection(productsCollection)
	return &Store{
		Categories: NewMongoCategoryRepository(categories),
		Products:   NewMongoProductRepository(products, categories),
		ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
	}, nil
}

// ensureMongoIndexes creates the unique category name index that backs the
// name check done before every category insert, plus the product lookup indexes.
func ensureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(categoriesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("name_unique"),
	})
	if err != nil {
		return fmt.Errorf("create categories index: %w", err)
	}
	_, err = db.Collection(productsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "stock", Value: 1}}},
		{Keys: bson.D{{Key: "variants.stock", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create products indexes: %w", err)
	}
	return nil
}

// objectID parses a hex id. ok is false for ids that cannot exist in the store.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func (d categoryDocument) toModel() models.Category {
	return models.Category{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
	}
}

func (d productDocument) toModel() models.Product {
	variants := make([]models.Variant, 0, len(d.Variants))
	for _, v := range d.Variants {
		variants = append(variants, models.Variant{Color: v.Color, Size: v.Size, Price: v.Price, Stock: v.Stock})
	}
	return models.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Stock:       d.Stock,
		Category:    models.CategoryRef{ID: d.Category.Hex()},
		Variants:    variants,
		Discount:    d.Discount,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func variantDocuments(variants []models.Variant) []variantDocument {
	docs := make([]variantDocument, 0, len(variants))
	for _, v := range variants {
		docs = append(docs, variantDocument{Color: v.Color, Size: v.Size, Price: v.Price, Stock: v.Stock})
	}
	return docs
}
