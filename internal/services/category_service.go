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

// CategoryService handles business logic related to categories.
type CategoryService struct {
	repo      repositories.CategoryRepository
	validate  *validation.Validator
	publisher EventPublisher
	log       *logger.Logger
}

// NewCategoryService creates a new CategoryService. publisher may be nil.
func NewCategoryService(repo repositories.CategoryRepository, publisher EventPublisher, log *logger.Logger) *CategoryService {
	return &CategoryService{
		repo:      repo,
		validate:  validation.New(),
		publisher: publisher,
		log:       log,
	}
}

// GetAllCategories retrieves all categories.
func (s *CategoryService) GetAllCategories(ctx context.Context) (_ []models.Category, err error) {
	ctx, span := startSpan(ctx, "CategoryService.GetAllCategories")
	defer func() { endSpan(span, err) }()

	categories, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategoryByID retrieves a single category by its ID.
func (s *CategoryService) GetCategoryByID(ctx context.Context, id string) (_ *models.Category, err error) {
	ctx, span := startSpan(ctx, "CategoryService.GetCategoryByID", attribute.String("category.id", id))
	defer func() { endSpan(span, err) }()

	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound(err, MsgCategoryNotFound)
		}
		return nil, err
	}
	return category, nil
}

// CreateCategory validates in, checks that its name is free and stores it.
func (s *CategoryService) CreateCategory(ctx context.Context, in models.CategoryInput) (_ *models.Category, err error) {
	ctx, span := startSpan(ctx, "CategoryService.CreateCategory")
	defer func() { endSpan(span, err) }()

	if err := s.check(s.validate.Category(&in)); err != nil {
		return nil, err
	}

	_, err = s.repo.GetByName(ctx, in.Name)
	switch {
	case err == nil:
		return nil, conflict(nil, MsgCategoryExists)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("check category name: %w", err)
	}

	category := &models.Category{Name: in.Name}
	if in.Description != nil {
		category.Description = *in.Description
	}
	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, conflict(err, MsgCategoryExists)
		}
		return nil, err
	}

	s.log.Info().Str("id", category.ID).Str("name", category.Name).Msg("category created")
	publish(ctx, s.publisher, s.log, EventCategoryCreated, category)
	return category, nil
}

// UpdateCategory validates in and applies it to the category with the given ID.
// An absent description keeps the stored one.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, in models.CategoryInput) (_ *models.Category, err error) {
	ctx, span := startSpan(ctx, "CategoryService.UpdateCategory", attribute.String("category.id", id))
	defer func() { endSpan(span, err) }()

	if err := s.check(s.validate.Category(&in)); err != nil {
		return nil, err
	}

	category, err := s.repo.Update(ctx, id, models.CategoryUpdate{Name: in.Name, Description: in.Description})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, notFound(err, MsgCategoryNotFound)
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, conflict(err, MsgCategoryExists)
		}
		return nil, err
	}

	s.log.Info().Str("id", category.ID).Msg("category updated")
	publish(ctx, s.publisher, s.log, EventCategoryUpdated, category)
	return category, nil
}

// DeleteCategory deletes a category by its ID. Products referencing it are kept.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) (err error) {
	ctx, span := startSpan(ctx, "CategoryService.DeleteCategory", attribute.String("category.id", id))
	defer func() { endSpan(span, err) }()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound(err, MsgCategoryNotFound)
		}
		return err
	}

	s.log.Info().Str("id", id).Msg("category deleted")
	publish(ctx, s.publisher, s.log, EventCategoryDeleted, deletedPayload{ID: id})
	return nil
}

func (s *CategoryService) check(err error) error {
	return checkValidation(s.log, err)
}

// checkValidation turns a validator failure into a KindValidation error
// carrying the first violation.
func checkValidation(log *logger.Logger, err error) error {
	if err == nil {
		return nil
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		log.Debug().Msg(verr.Joined())
		return validationError(err, verr.First())
	}
	return validationError(err, MsgValidationFallback)
}
