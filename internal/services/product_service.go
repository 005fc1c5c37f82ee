package services

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/validation"
	"catalog/pkg/logger"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
	validate   *validation.Validator
	publisher  EventPublisher
	log        *logger.Logger
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(repo repositories.ProductRepository, categories repositories.CategoryRepository, publisher EventPublisher, log *logger.Logger) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		validate:   validation.New(),
		publisher:  publisher,
		log:        log,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) (_ []models.Product, err error) {
	ctx, span := startSpan(ctx, "ProductService.GetAllProducts")
	defer func() { endSpan(span, err) }()

	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (_ *models.Product, err error) {
	ctx, span := startSpan(ctx, "ProductService.GetProductByID", attribute.String("product.id", id))
	defer func() { endSpan(span, err) }()

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound(err, MsgProductNotFound)
		}
		return nil, err
	}
	return product, nil
}

// SearchProducts retrieves the products whose name contains filter.Query and
// that belong to filter.CategoryID. Empty fields do not filter.
func (s *ProductService) SearchProducts(ctx context.Context, filter models.ProductFilter) (_ []models.Product, err error) {
	ctx, span := startSpan(ctx, "ProductService.SearchProducts",
		attribute.String("search.q", filter.Query),
		attribute.String("search.category", filter.CategoryID))
	defer func() { endSpan(span, err) }()

	return s.repo.Search(ctx, filter)
}

// GetLowStockProducts retrieves products with stock, or any variant stock,
// below models.LowStockThreshold.
func (s *ProductService) GetLowStockProducts(ctx context.Context) (_ []models.Product, err error) {
	ctx, span := startSpan(ctx, "ProductService.GetLowStockProducts")
	defer func() { endSpan(span, err) }()

	return s.repo.GetLowStock(ctx, models.LowStockThreshold)
}

// CreateProduct validates in, checks that its category exists and stores it.
func (s *ProductService) CreateProduct(ctx context.Context, in models.ProductInput) (_ *models.Product, err error) {
	ctx, span := startSpan(ctx, "ProductService.CreateProduct")
	defer func() { endSpan(span, err) }()

	if err := checkValidation(s.log, s.validate.Product(&in)); err != nil {
		return nil, err
	}
	category, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:     in.Name,
		Price:    *in.Price,
		Category: models.CategoryRef{ID: category.ID, Name: category.Name},
		Variants: toVariants(in.Variants),
	}
	if product.Variants == nil {
		product.Variants = []models.Variant{}
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.Discount != nil {
		product.Discount = *in.Discount
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.log.Info().Str("id", product.ID).Str("category", category.ID).Msg("product created")
	s.publishWrite(ctx, EventProductCreated, product)
	return product, nil
}

// UpdateProduct validates in, checks that its category exists and applies it
// to the product with the given ID. Absent optional fields keep their stored
// values; a present variants array replaces the stored one.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in models.ProductInput) (_ *models.Product, err error) {
	ctx, span := startSpan(ctx, "ProductService.UpdateProduct", attribute.String("product.id", id))
	defer func() { endSpan(span, err) }()

	if err := checkValidation(s.log, s.validate.Product(&in)); err != nil {
		return nil, err
	}
	if _, err := s.resolveCategory(ctx, in.Category); err != nil {
		return nil, err
	}

	product, err := s.repo.Update(ctx, id, models.ProductUpdate{
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		Stock:       in.Stock,
		CategoryID:  in.Category,
		Variants:    toVariants(in.Variants),
		Discount:    in.Discount,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound(err, MsgProductNotFound)
		}
		return nil, err
	}

	s.log.Info().Str("id", product.ID).Msg("product updated")
	s.publishWrite(ctx, EventProductUpdated, product)
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (err error) {
	ctx, span := startSpan(ctx, "ProductService.DeleteProduct", attribute.String("product.id", id))
	defer func() { endSpan(span, err) }()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound(err, MsgProductNotFound)
		}
		return err
	}

	s.log.Info().Str("id", id).Msg("product deleted")
	publish(ctx, s.publisher, s.log, EventProductDeleted, deletedPayload{ID: id})
	return nil
}

func (s *ProductService) resolveCategory(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound(err, MsgCategoryNotFound)
		}
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	return category, nil
}

func (s *ProductService) publishWrite(ctx context.Context, routingKey string, product *models.Product) {
	publish(ctx, s.publisher, s.log, routingKey, product)
	if product.IsLowStock() {
		publish(ctx, s.publisher, s.log, EventProductLowStock, product)
	}
}

// toVariants applies the variant defaults. A nil input stays nil.
func toVariants(in []models.VariantInput) []models.Variant {
	if in == nil {
		return nil
	}
	out := make([]models.Variant, 0, len(in))
	for _, v := range in {
		variant := models.Variant{Price: *v.Price}
		if v.Color != nil {
			variant.Color = *v.Color
		}
		if v.Size != nil {
			variant.Size = *v.Size
		}
		if v.Stock != nil {
			variant.Stock = *v.Stock
		}
		out = append(out, variant)
	}
	return out
}
