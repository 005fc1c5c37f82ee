package handlers

import (
	"github.com/gofiber/fiber/v2"

	"catalog/internal/models"
	"catalog/internal/services"
	"catalog/pkg/logger"
	"catalog/pkg/response"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	log     *logger.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
// The fixed paths come before /:id so they are not taken for an id.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/search", h.HandleSearchProducts)
	productRoutes.Get("/low-stock", h.HandleGetLowStockProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Success      200  {object}  response.Envelope{data=[]models.Product}
// @Failure      500  {object}  response.Envelope
// @Router       /api/products [get]
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "Error getting products", err)
	}
	return response.Success(c, fiber.StatusOK, products)
}

// HandleSearchProducts godoc
// @Summary      Search products
// @Description  Case-insensitive substring match on the name, optionally within one category.
// @Tags         products
// @Produce      json
// @Param        q         query     string  false  "Part of the product name"
// @Param        category  query     string  false  "Category ID"
// @Success      200       {object}  response.Envelope{data=[]models.Product}
// @Failure      500       {object}  response.Envelope
// @Router       /api/products/search [get]
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	filter := models.ProductFilter{
		Query:      c.Query("q"),
		CategoryID: c.Query("category"),
	}
	products, err := h.service.SearchProducts(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.log, "Error searching products", err)
	}
	return response.Success(c, fiber.StatusOK, products)
}

// HandleGetLowStockProducts godoc
// @Summary      List low-stock products
// @Description  Products whose stock, or the stock of any variant, is below 10.
// @Tags         products
// @Produce      json
// @Success      200  {object}  response.Envelope{data=[]models.Product}
// @Failure      500  {object}  response.Envelope
// @Router       /api/products/low-stock [get]
func (h *ProductHandler) HandleGetLowStockProducts(c *fiber.Ctx) error {
	products, err := h.service.GetLowStockProducts(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "Error getting low-stock products", err)
	}
	return response.Success(c, fiber.StatusOK, products)
}

// HandleGetProductByID godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Envelope{data=models.Product}
// @Failure      404  {object}  response.Envelope
// @Failure      500  {object}  response.Envelope
// @Router       /api/products/{id} [get]
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "Error getting product", err)
	}
	return response.Success(c, fiber.StatusOK, product)
}

// HandleCreateProduct godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body      models.ProductInput  true  "Product"
// @Success      201   {object}  response.Envelope{data=models.Product}
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Failure      500   {object}  response.Envelope
// @Router       /api/products [post]
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var in models.ProductInput
	if err := parseBody(c, &in); err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}
	product, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, "Error creating product", err)
	}
	return response.Success(c, fiber.StatusCreated, product)
}

// HandleUpdateProduct godoc
// @Summary      Update a product
// @Description  Absent optional fields keep their values; a variants array replaces the stored one.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Product ID"
// @Param        body  body      models.ProductInput  true  "Product"
// @Success      200   {object}  response.Envelope{data=models.Product}
// @Failure      400   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Failure      500   {object}  response.Envelope
// @Router       /api/products/{id} [put]
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var in models.ProductInput
	if err := parseBody(c, &in); err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}
	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, "Error updating product", err)
	}
	return response.Success(c, fiber.StatusOK, product)
}

// HandleDeleteProduct godoc
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Failure      500  {object}  response.Envelope
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, "Error deleting product", err)
	}
	return response.Success(c, fiber.StatusOK, message{Message: services.MsgProductDeleted})
}
