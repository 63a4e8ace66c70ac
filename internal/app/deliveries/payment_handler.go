package deliveries

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/middlewares"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/safatanc/gsalt-giftcard/internal/app/pkg"
	"github.com/safatanc/gsalt-giftcard/internal/app/services"
)

type PaymentHandler struct {
	paymentService   *services.PaymentService
	apiKeyMiddleware *middlewares.APIKeyMiddleware
}

func NewPaymentHandler(paymentService *services.PaymentService, apiKeyMiddleware *middlewares.APIKeyMiddleware) *PaymentHandler {
	return &PaymentHandler{
		paymentService:   paymentService,
		apiKeyMiddleware: apiKeyMiddleware,
	}
}

func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	requireKey := h.apiKeyMiddleware.RequireAPIKey

	gatewayGroup := router.Group("/payment-gateways")
	gatewayGroup.Post("/", requireKey, h.CreateGateway)
	gatewayGroup.Get("/:id", h.GetGateway)
	gatewayGroup.Get("/:id/methods", h.GetMethods)

	transactionGroup := router.Group("/payment-transactions")
	transactionGroup.Post("/", requireKey, h.CreateTransaction)
	transactionGroup.Get("/:id", h.GetTransaction)
	transactionGroup.Post("/:id/authorize", requireKey, h.step(h.paymentService.Authorize))
	transactionGroup.Post("/:id/capture", requireKey, h.step(h.paymentService.Capture))
	transactionGroup.Post("/:id/settle", requireKey, h.step(h.paymentService.Settle))
	transactionGroup.Post("/:id/post", requireKey, h.step(h.paymentService.Post))
	transactionGroup.Post("/:id/cancel", requireKey, h.step(h.paymentService.Cancel))
}

func (h *PaymentHandler) CreateGateway(c *fiber.Ctx) error {
	var req models.PaymentGatewayCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	gateway, err := h.paymentService.CreateGateway(c.UserContext(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.CreatedResponse(c, gateway)
}

func (h *PaymentHandler) GetGateway(c *fiber.Ctx) error {
	gateway, err := h.paymentService.GetGateway(c.UserContext(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, gateway)
}

func (h *PaymentHandler) GetMethods(c *fiber.Ctx) error {
	methods, err := h.paymentService.GetMethods(c.UserContext(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, methods)
}

func (h *PaymentHandler) CreateTransaction(c *fiber.Ctx) error {
	var req models.PaymentTransactionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	transaction, err := h.paymentService.CreateTransaction(c.UserContext(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.CreatedResponse(c, transaction)
}

func (h *PaymentHandler) GetTransaction(c *fiber.Ctx) error {
	transaction, err := h.paymentService.GetTransaction(c.UserContext(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, transaction)
}

func (h *PaymentHandler) step(run func(ctx context.Context, transactionID string) (*models.PaymentTransaction, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		transaction, err := run(c.UserContext(), c.Params("id"))
		if err != nil {
			return pkg.ErrorResponse(c, err)
		}

		return pkg.SuccessResponse(c, transaction)
	}
}
