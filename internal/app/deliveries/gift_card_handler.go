package deliveries

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/middlewares"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/safatanc/gsalt-giftcard/internal/app/pkg"
	"github.com/safatanc/gsalt-giftcard/internal/app/services"
	"github.com/safatanc/gsalt-giftcard/internal/infrastructures"
)

type GiftCardHandler struct {
	giftCardService  *services.GiftCardService
	validator        *infrastructures.Validator
	apiKeyMiddleware *middlewares.APIKeyMiddleware
}

func NewGiftCardHandler(giftCardService *services.GiftCardService, validator *infrastructures.Validator, apiKeyMiddleware *middlewares.APIKeyMiddleware) *GiftCardHandler {
	return &GiftCardHandler{
		giftCardService:  giftCardService,
		validator:        validator,
		apiKeyMiddleware: apiKeyMiddleware,
	}
}

func (h *GiftCardHandler) RegisterRoutes(router fiber.Router) {
	giftCardGroup := router.Group("/gift-cards")
	requireKey := h.apiKeyMiddleware.RequireAPIKey

	giftCardGroup.Get("/", h.GetGiftCards)
	giftCardGroup.Get("/number/:number", h.GetGiftCardByNumber)
	giftCardGroup.Get("/:id", h.GetGiftCard)
	giftCardGroup.Get("/:id/history", h.GetStateHistory)

	giftCardGroup.Post("/", requireKey, h.CreateGiftCard)
	giftCardGroup.Patch("/:id", requireKey, h.UpdateGiftCard)
	giftCardGroup.Delete("/:id", requireKey, h.DeleteGiftCard)
	giftCardGroup.Post("/:id/copy", requireKey, h.CopyGiftCard)

	// Bulk actions go first so "actions" is never read as an id
	giftCardGroup.Post("/actions/activate", requireKey, h.bulk(h.giftCardService.Activate))
	giftCardGroup.Post("/actions/cancel", requireKey, h.bulk(h.giftCardService.Cancel))
	giftCardGroup.Post("/actions/draft", requireKey, h.bulk(h.giftCardService.Draft))

	giftCardGroup.Post("/:id/activate", requireKey, h.single(h.giftCardService.Activate))
	giftCardGroup.Post("/:id/cancel", requireKey, h.single(h.giftCardService.Cancel))
	giftCardGroup.Post("/:id/draft", requireKey, h.single(h.giftCardService.Draft))
}

func (h *GiftCardHandler) CreateGiftCard(c *fiber.Ctx) error {
	var req models.GiftCardCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	giftCard, err := h.giftCardService.CreateGiftCard(c.UserContext(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.CreatedResponse(c, giftCard)
}

func (h *GiftCardHandler) GetGiftCard(c *fiber.Ctx) error {
	giftCard, err := h.giftCardService.GetGiftCard(c.UserContext(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, giftCard)
}

func (h *GiftCardHandler) GetGiftCardByNumber(c *fiber.Ctx) error {
	giftCard, err := h.giftCardService.GetGiftCardByNumber(c.UserContext(), c.Params("number"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, giftCard)
}

func (h *GiftCardHandler) GetGiftCards(c *fiber.Ctx) error {
	var state *models.GiftCardState
	if s := c.Query("state"); s != "" {
		giftCardState := models.GiftCardState(s)
		state = &giftCardState
	}

	giftCards, err := h.giftCardService.GetGiftCards(c.UserContext(), pkg.PaginationFromQuery(c), state)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, giftCards)
}

func (h *GiftCardHandler) UpdateGiftCard(c *fiber.Ctx) error {
	var req models.GiftCardUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	giftCard, err := h.giftCardService.UpdateGiftCard(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, giftCard)
}

func (h *GiftCardHandler) DeleteGiftCard(c *fiber.Ctx) error {
	if err := h.giftCardService.DeleteGiftCard(c.UserContext(), c.Params("id")); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse[any](c, nil)
}

func (h *GiftCardHandler) CopyGiftCard(c *fiber.Ctx) error {
	giftCard, err := h.giftCardService.CopyGiftCard(c.UserContext(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.CreatedResponse(c, giftCard)
}

func (h *GiftCardHandler) GetStateHistory(c *fiber.Ctx) error {
	history, err := h.giftCardService.GetStateHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, history)
}

type transitionFunc func(ctx context.Context, ids []string) ([]*models.GiftCard, error)

func (h *GiftCardHandler) single(transition transitionFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		giftCards, err := transition(c.UserContext(), []string{c.Params("id")})
		if err != nil {
			return pkg.ErrorResponse(c, err)
		}

		return pkg.SuccessResponse(c, giftCards[0])
	}
}

func (h *GiftCardHandler) bulk(transition transitionFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.BulkActionRequest
		if err := c.BodyParser(&req); err != nil {
			return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
		}
		if err := h.validator.Validate(&req); err != nil {
			return pkg.ErrorResponse(c, err)
		}

		giftCards, err := transition(c.UserContext(), req.IDs)
		if err != nil {
			return pkg.ErrorResponse(c, err)
		}

		return pkg.SuccessResponse(c, giftCards)
	}
}
