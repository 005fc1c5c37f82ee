package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog/internal/models"
	"catalog/pkg/config"
)

type categoryRecord struct {
	ID          string `gorm:"primaryKey;size:24"`
	Name        string `gorm:"uniqueIndex;not null"`
	Description string
}

func (categoryRecord) TableName() string { return "categories" }

type productRecord struct {
	ID          string `gorm:"primaryKey;size:24"`
	Name        string `gorm:"not null"`
	FoldedName  string `gorm:"index"` // lower-cased Name, compared by Search
	Description string
	Price       float64
	Stock       int             `gorm:"index"`
	CategoryID  string          `gorm:"size:24;index"`
	Category    *categoryRecord `gorm:"foreignKey:CategoryID"`
	Variants    []variantRecord `gorm:"foreignKey:ProductID"`
	Discount    float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (productRecord) TableName() string { return "products" }

// variantRecord keeps the embedded variants of a product in their original order.
type variantRecord struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID string `gorm:"size:24;index"`
	Position  int
	Color     string
	Size      string
	Price     float64
	Stock     int `gorm:"index"`
}

func (variantRecord) TableName() string { return "product_variants" }

// OpenGORM opens the relational store selected by cfg.Driver and migrates its schema.
func OpenGORM(ctx context.Context, cfg config.DBConfig) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported relational driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
		// Deleting a category must leave its products in place.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.Driver, err)
	}

	store, err := NewGORMStore(db)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	store.close = func(context.Context) error { return sqlDB.Close() }
	return store, nil
}

// NewGORMStore migrates the catalog schema on db and builds a Store over it.
func NewGORMStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&categoryRecord{}, &productRecord{}, &variantRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return &Store{
		Categories: NewGORMCategoryRepository(db),
		Products:   NewGORMProductRepository(db),
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}, nil
}

func (r categoryRecord) toModel() models.Category {
	return models.Category{ID: r.ID, Name: r.Name, Description: r.Description}
}

func (r productRecord) toModel() models.Product {
	p := models.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Category:    models.CategoryRef{ID: r.CategoryID},
		Variants:    make([]models.Variant, 0, len(r.Variants)),
		Discount:    r.Discount,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.Category != nil {
		p.Category.Name = r.Category.Name
	}
	for _, v := range r.Variants {
		p.Variants = append(p.Variants, models.Variant{Color: v.Color, Size: v.Size, Price: v.Price, Stock: v.Stock})
	}
	return p
}

func variantRecords(productID string, variants []models.Variant) []variantRecord {
	records := make([]variantRecord, 0, len(variants))
	for i, v := range variants {
		records = append(records, variantRecord{
			ProductID: productID,
			Position:  i,
			Color:     v.Color,
			Size:      v.Size,
			Price:     v.Price,
			Stock:     v.Stock,
		})
	}
	return records
}
