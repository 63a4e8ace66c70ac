package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/middlewares"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/safatanc/gsalt-giftcard/internal/app/pkg"
	"github.com/safatanc/gsalt-giftcard/internal/app/services"
)

type SaleHandler struct {
	saleService      *services.SaleService
	invoiceService   *services.InvoiceService
	apiKeyMiddleware *middlewares.APIKeyMiddleware
}

func NewSaleHandler(saleService *services.SaleService, invoiceService *services.InvoiceService, apiKeyMiddleware *middlewares.APIKeyMiddleware) *SaleHandler {
	return &SaleHandler{
		saleService:      saleService,
		invoiceService:   invoiceService,
		apiKeyMiddleware: apiKeyMiddleware,
	}
}

func (h *SaleHandler) RegisterRoutes(router fiber.Router) {
	requireKey := h.apiKeyMiddleware.RequireAPIKey

	saleGroup := router.Group("/sales")
	saleGroup.Post("/", requireKey, h.CreateSale)
	saleGroup.Get("/:id", h.GetSale)
	saleGroup.Post("/:id/confirm", requireKey, h.ConfirmSale)
	saleGroup.Post("/:id/process", requireKey, h.ProcessSale)
	saleGroup.Post("/:id/cancel", requireKey, h.CancelSale)
	saleGroup.Post("/:id/invoice", requireKey, h.CreateInvoice)

	invoiceGroup := router.Group("/invoices")
	invoiceGroup.Get("/:id", h.GetInvoice)
	invoiceGroup.Post("/:id/post", requireKey, h.PostInvoice)
	invoiceGroup.Post("/:id/pay", requireKey, h.PayInvoice)
}

func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req models.SaleCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	sale, err := h.saleService.CreateSale(c.UserContext(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.CreatedResponse(c, sale)
}

func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	sale, err := h.saleService.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, sale)
}

func (h *SaleHandler) ConfirmSale(c *fiber.Ctx) error {
	sale, err := h.saleService.ConfirmSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, sale)
}

func (h *SaleHandler) ProcessSale(c *fiber.Ctx) error {
	sale, err := h.saleService.ProcessSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, sale)
}

func (h *SaleHandler) CancelSale(c *fiber.Ctx) error {
	sale, err := h.saleService.CancelSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, sale)
}

func (h *SaleHandler) CreateInvoice(c *fiber.Ctx) error {
	invoice, err := h.saleService.CreateInvoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.CreatedResponse(c, invoice)
}

func (h *SaleHandler) GetInvoice(c *fiber.Ctx) error {
	invoice, err := h.invoiceService.GetInvoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, invoice)
}

func (h *SaleHandler) PostInvoice(c *fiber.Ctx) error {
	invoice, err := h.invoiceService.PostInvoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, invoice)
}

func (h *SaleHandler) PayInvoice(c *fiber.Ctx) error {
	invoice, err := h.invoiceService.PayInvoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, invoice)
}
