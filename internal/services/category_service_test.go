package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/logger"
)

const categoryID = "65a1f0c2e4b0a1b2c3d4e5f6"

func ptr[T any](v T) *T { return &v }

func requireKind(t *testing.T, err error, kind services.Kind, message string) {
	t.Helper()
	serr, ok := services.AsError(err)
	require.True(t, ok, "expected *services.Error, got %v", err)
	assert.Equal(t, kind, serr.Kind)
	assert.Equal(t, message, serr.Message)
}

func TestCategoryService_CreateCategory(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCategoryRepository)
	pub := new(MockPublisher)
	service := services.NewCategoryService(mockRepo, pub, logger.Nop())

	mockRepo.On("GetByName", mock.Anything, "Shirts").Return(nil, fmt.Errorf("category with name Shirts: %w", repositories.ErrNotFound)).Once()
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Category) bool {
		return c.Name == "Shirts" && c.Description == "Tops"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Category).ID = categoryID
	}).Return(nil).Once()
	pub.On("Publish", mock.Anything, services.EventCategoryCreated, mock.Anything).Return(nil).Once()

	category, err := service.CreateCategory(ctx, models.CategoryInput{Name: " Shirts ", Description: ptr("Tops ")})

	require.NoError(t, err)
	assert.Equal(t, &models.Category{ID: categoryID, Name: "Shirts", Description: "Tops"}, category)
	mockRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestCategoryService_CreateCategory_ValidationPrecedesStorage(t *testing.T) {
	mockRepo := new(MockCategoryRepository)
	service := services.NewCategoryService(mockRepo, nil, logger.Nop())

	_, err := service.CreateCategory(context.Background(), models.CategoryInput{Name: "  "})

	requireKind(t, err, services.KindValidation, `"name" is required`)
	mockRepo.AssertNotCalled(t, "GetByName", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCategoryService_CreateCategory_NameTaken(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCategoryRepository)
	pub := new(MockPublisher)
	service := services.NewCategoryService(mockRepo, pub, logger.Nop())

	mockRepo.On("GetByName", mock.Anything, "Shirts").Return(&models.Category{ID: categoryID, Name: "Shirts"}, nil).Once()

	_, err := service.CreateCategory(ctx, models.CategoryInput{Name: "Shirts"})

	requireKind(t, err, services.KindConflict, services.MsgCategoryExists)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestCategoryService_CreateCategory_DuplicateAtWrite(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCategoryRepository)
	service := services.NewCategoryService(mockRepo, nil, logger.Nop())

	mockRepo.On("GetByName", mock.Anything, "Shirts").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("category name Shirts: %w", repositories.ErrDuplicate)).Once()

	_, err := service.CreateCategory(ctx, models.CategoryInput{Name: "Shirts"})

	requireKind(t, err, services.KindConflict, services.MsgCategoryExists)
	mockRepo.AssertExpectations(t)
}

func TestCategoryService_CreateCategory_GatewayFailure(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCategoryRepository)
	service := services.NewCategoryService(mockRepo, nil, logger.Nop())

	mockRepo.On("GetByName", mock.Anything, "Shirts").Return(nil, errors.New("connection reset")).Once()

	_, err := service.CreateCategory(ctx, models.CategoryInput{Name: "Shirts"})

	require.Error(t, err)
	_, ok := services.AsError(err)
	assert.False(t, ok, "gateway failures are not client errors")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCategoryService_CreateCategory_PublishFailureIsIgnored(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCategoryRepository)
	pub := new(MockPublisher)
	service := services.NewCategoryService(mockRepo, pub, logger.Nop())

	mockRepo.On("GetByName", mock.Anything, "Shirts").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	pub.On("Publish", mock.Anything, services.EventCategoryCreated, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := service.CreateCategory(ctx, models.CategoryInput{Name: "Shirts"})

	assert.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestCategoryService_UpdateCategory(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCategoryRepository)
	service := services.NewCategoryService(mockRepo, nil, logger.Nop())

	updated := &models.Category{ID: categoryID, Name: "Tops", Description: "kept"}
	mockRepo.On("Update", mock.Anything, categoryID, models.CategoryUpdate{Name: "Tops"}).Return(updated, nil).Once()

	category, err := service.UpdateCategory(ctx, categoryID, models.CategoryInput{Name: "Tops"})

	require.NoError(t, err)
	assert.Equal(t, updated, category)
	mockRepo.AssertExpectations(t)
}

func TestCategoryService_UpdateCategory_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		mockRepo := new(MockCategoryRepository)
		service := services.NewCategoryService(mockRepo, nil, logger.Nop())
		mockRepo.On("Update", mock.Anything, categoryID, mock.Anything).Return(nil, repositories.ErrNotFound).Once()

		_, err := service.UpdateCategory(ctx, categoryID, models.CategoryInput{Name: "Tops"})
		requireKind(t, err, services.KindNotFound, services.MsgCategoryNotFound)
	})

	t.Run("renamed onto existing", func(t *testing.T) {
		mockRepo := new(MockCategoryRepository)
		service := services.NewCategoryService(mockRepo, nil, logger.Nop())
		mockRepo.On("Update", mock.Anything, categoryID, mock.Anything).Return(nil, repositories.ErrDuplicate).Once()

		_, err := service.UpdateCategory(ctx, categoryID, models.CategoryInput{Name: "Shoes"})
		requireKind(t, err, services.KindConflict, services.MsgCategoryExists)
	})

	t.Run("invalid body", func(t *testing.T) {
		mockRepo := new(MockCategoryRepository)
		service := services.NewCategoryService(mockRepo, nil, logger.Nop())

		_, err := service.UpdateCategory(ctx, categoryID, models.CategoryInput{})
		requireKind(t, err, services.KindValidation, `"name" is required`)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCategoryService_GetCategoryByID(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCategoryRepository)
	service := services.NewCategoryService(mockRepo, nil, logger.Nop())

	expected := &models.Category{ID: categoryID, Name: "Shirts"}
	mockRepo.On("GetByID", mock.Anything, categoryID).Return(expected, nil).Once()
	category, err := service.GetCategoryByID(ctx, categoryID)
	assert.NoError(t, err)
	assert.Equal(t, expected, category)

	mockRepo.On("GetByID", mock.Anything, "99").Return(nil, repositories.ErrNotFound).Once()
	_, err = service.GetCategoryByID(ctx, "99")
	requireKind(t, err, services.KindNotFound, services.MsgCategoryNotFound)
	mockRepo.AssertExpectations(t)
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCategoryRepository)
	pub := new(MockPublisher)
	service := services.NewCategoryService(mockRepo, pub, logger.Nop())

	mockRepo.On("Delete", mock.Anything, categoryID).Return(nil).Once()
	pub.On("Publish", mock.Anything, services.EventCategoryDeleted, mock.Anything).Return(nil).Once()
	assert.NoError(t, service.DeleteCategory(ctx, categoryID))

	mockRepo.On("Delete", mock.Anything, "99").Return(repositories.ErrNotFound).Once()
	requireKind(t, service.DeleteCategory(ctx, "99"), services.KindNotFound, services.MsgCategoryNotFound)

	mockRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
}
