package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/middlewares"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/safatanc/gsalt-giftcard/internal/app/pkg"
	"github.com/safatanc/gsalt-giftcard/internal/app/services"
)

type ProductHandler struct {
	productService   *services.ProductService
	apiKeyMiddleware *middlewares.APIKeyMiddleware
}

func NewProductHandler(productService *services.ProductService, apiKeyMiddleware *middlewares.APIKeyMiddleware) *ProductHandler {
	return &ProductHandler{
		productService:   productService,
		apiKeyMiddleware: apiKeyMiddleware,
	}
}

func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productGroup := router.Group("/products")

	productGroup.Get("/", h.GetProducts)
	productGroup.Get("/:id", h.GetProduct)
	productGroup.Post("/", h.apiKeyMiddleware.RequireAPIKey, h.CreateProduct)
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req models.ProductCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	product, err := h.productService.CreateProduct(c.UserContext(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.CreatedResponse(c, product)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.productService.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, product)
}

func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.productService.GetProducts(c.UserContext(), pkg.PaginationFromQuery(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, products)
}
