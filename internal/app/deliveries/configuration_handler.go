package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/middlewares"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/safatanc/gsalt-giftcard/internal/app/pkg"
	"github.com/safatanc/gsalt-giftcard/internal/app/services"
)

// ConfigurationHandler serves the gift card configuration together with
// the reference data it points at.
type ConfigurationHandler struct {
	configService    *services.ConfigurationService
	accountService   *services.AccountService
	currencyService  *services.CurrencyService
	auditService     *services.AuditService
	apiKeyMiddleware *middlewares.APIKeyMiddleware
}

func NewConfigurationHandler(
	configService *services.ConfigurationService,
	accountService *services.AccountService,
	currencyService *services.CurrencyService,
	auditService *services.AuditService,
	apiKeyMiddleware *middlewares.APIKeyMiddleware,
) *ConfigurationHandler {
	return &ConfigurationHandler{
		configService:    configService,
		accountService:   accountService,
		currencyService:  currencyService,
		auditService:     auditService,
		apiKeyMiddleware: apiKeyMiddleware,
	}
}

func (h *ConfigurationHandler) RegisterRoutes(router fiber.Router) {
	requireKey := h.apiKeyMiddleware.RequireAPIKey

	router.Get("/configuration", h.GetConfiguration)
	router.Put("/configuration", requireKey, h.UpdateConfiguration)

	router.Get("/accounts", h.GetAccounts)
	router.Get("/accounts/:code", h.GetAccount)
	router.Post("/accounts", requireKey, h.CreateAccount)

	router.Get("/currencies", h.GetCurrencies)
	router.Post("/currencies", requireKey, h.CreateCurrency)

	router.Get("/audit-logs", requireKey, h.GetAuditLogs)
}

func (h *ConfigurationHandler) GetConfiguration(c *fiber.Ctx) error {
	config, err := h.configService.GetConfiguration(c.UserContext())
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, config)
}

func (h *ConfigurationHandler) UpdateConfiguration(c *fiber.Ctx) error {
	var req models.ConfigurationUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	config, err := h.configService.UpdateConfiguration(c.UserContext(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, config)
}

func (h *ConfigurationHandler) CreateAccount(c *fiber.Ctx) error {
	var req models.AccountCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	account, err := h.accountService.CreateAccount(c.UserContext(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.CreatedResponse(c, account)
}

func (h *ConfigurationHandler) GetAccount(c *fiber.Ctx) error {
	account, err := h.accountService.GetAccount(c.UserContext(), c.Params("code"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, account)
}

func (h *ConfigurationHandler) GetAccounts(c *fiber.Ctx) error {
	accounts, err := h.accountService.GetAccounts(c.UserContext())
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, accounts)
}

func (h *ConfigurationHandler) CreateCurrency(c *fiber.Ctx) error {
	var req models.CurrencyCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	currency, err := h.currencyService.CreateCurrency(c.UserContext(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.CreatedResponse(c, currency)
}

func (h *ConfigurationHandler) GetCurrencies(c *fiber.Ctx) error {
	currencies, err := h.currencyService.GetCurrencies(c.UserContext())
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, currencies)
}

func (h *ConfigurationHandler) GetAuditLogs(c *fiber.Ctx) error {
	logs, err := h.auditService.GetAuditLogs(pkg.PaginationFromQuery(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, logs)
}
