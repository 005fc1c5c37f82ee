package handlers

import (
	"github.com/gofiber/fiber/v2"

	"catalog/internal/models"
	"catalog/internal/services"
	"catalog/pkg/logger"
	"catalog/pkg/response"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	service *services.CategoryService
	log     *logger.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service *services.CategoryService, log *logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the category routes with the Fiber app.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router) {
	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleGetCategories)
	categoryRoutes.Post("/", h.HandleCreateCategory)
	categoryRoutes.Get("/:id", h.HandleGetCategoryByID)
	categoryRoutes.Put("/:id", h.HandleUpdateCategory)
	categoryRoutes.Delete("/:id", h.HandleDeleteCategory)
}

// HandleGetCategories godoc
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200  {object}  response.Envelope{data=[]models.Category}
// @Failure      500  {object}  response.Envelope
// @Router       /api/categories [get]
func (h *CategoryHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.GetAllCategories(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "Error getting categories", err)
	}
	return response.Success(c, fiber.StatusOK, categories)
}

// HandleGetCategoryByID godoc
// @Summary      Get a category
// @Tags         categories
// @Produce      json
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  response.Envelope{data=models.Category}
// @Failure      404  {object}  response.Envelope
// @Failure      500  {object}  response.Envelope
// @Router       /api/categories/{id} [get]
func (h *CategoryHandler) HandleGetCategoryByID(c *fiber.Ctx) error {
	category, err := h.service.GetCategoryByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "Error getting category", err)
	}
	return response.Success(c, fiber.StatusOK, category)
}

// HandleCreateCategory godoc
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        body  body      models.CategoryInput  true  "Category"
// @Success      201   {object}  response.Envelope{data=models.Category}
// @Failure      400   {object}  response.Envelope
// @Failure      500   {object}  response.Envelope
// @Router       /api/categories [post]
func (h *CategoryHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var in models.CategoryInput
	if err := parseBody(c, &in); err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}
	category, err := h.service.CreateCategory(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, "Error creating category", err)
	}
	return response.Success(c, fiber.StatusCreated, category)
}

// HandleUpdateCategory godoc
// @Summary      Update a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Category ID"
// @Param        body  body      models.CategoryInput  true  "Category"
// @Success      200   {object}  response.Envelope{data=models.Category}
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Failure      500   {object}  response.Envelope
// @Router       /api/categories/{id} [put]
func (h *CategoryHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	var in models.CategoryInput
	if err := parseBody(c, &in); err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}
	category, err := h.service.UpdateCategory(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, "Error updating category", err)
	}
	return response.Success(c, fiber.StatusOK, category)
}

// HandleDeleteCategory godoc
// @Summary      Delete a category
// @Description  Products referencing the category are kept.
// @Tags         categories
// @Produce      json
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Failure      500  {object}  response.Envelope
// @Router       /api/categories/{id} [delete]
func (h *CategoryHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.service.DeleteCategory(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, "Error deleting category", err)
	}
	return response.Success(c, fiber.StatusOK, message{Message: services.MsgCategoryDeleted})
}
