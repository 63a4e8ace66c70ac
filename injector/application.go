package injector

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/gsalt-giftcard/internal/app/deliveries"
	"github.com/safatanc/gsalt-giftcard/internal/app/middlewares"
)

// Application represents the main application container for gsalt-giftcard
type Application struct {
	HealthHandler        *deliveries.HealthHandler
	GiftCardHandler      *deliveries.GiftCardHandler
	PaymentHandler       *deliveries.PaymentHandler
	ProductHandler       *deliveries.ProductHandler
	SaleHandler          *deliveries.SaleHandler
	ConfigurationHandler *deliveries.ConfigurationHandler
	RateLimitMiddleware  *middlewares.RateLimitMiddleware
	APIKeyMiddleware     *middlewares.APIKeyMiddleware
}

// RegisterRoutes registers all application routes using a Fiber router
func (app *Application) RegisterRoutes(router fiber.Router) {
	app.HealthHandler.RegisterRoutes(router)

	router.Use(app.APIKeyMiddleware.Identify)
	router.Use(app.RateLimitMiddleware.LimitByClient(middlewares.PublicAPILimit))

	app.GiftCardHandler.RegisterRoutes(router)
	app.PaymentHandler.RegisterRoutes(router)
	app.ProductHandler.RegisterRoutes(router)
	app.SaleHandler.RegisterRoutes(router)
	app.ConfigurationHandler.RegisterRoutes(router)
}
