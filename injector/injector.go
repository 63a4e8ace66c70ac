//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"
	"github.com/safatanc/gsalt-giftcard/internal/app/deliveries"
	"github.com/safatanc/gsalt-giftcard/internal/app/middlewares"
	"github.com/safatanc/gsalt-giftcard/internal/app/services"
	"github.com/safatanc/gsalt-giftcard/internal/infrastructures"
)

var infrastructureSet = wire.NewSet(
	infrastructures.NewDatabase,
	infrastructures.NewRedisClient,
	infrastructures.NewValidator,
	wire.Value(middlewares.KeyPrefix("gsalt-giftcard")),
	wire.Bind(new(middlewares.RateLimiter), new(*middlewares.RedisRateLimiter)),
	middlewares.NewRedisRateLimiter,
)

var serviceSet = wire.NewSet(
	services.NewAuditService,
	services.NewAccountService,
	services.NewCurrencyService,
	services.NewConfigurationService,
	services.NewLedgerService,
	services.NewSequenceGenerator,
	services.NewOutboxMailQueue,
	wire.Bind(new(services.MailQueue), new(*services.OutboxMailQueue)),
	services.NewGiftCardReportService,
	wire.Bind(new(services.ReportRenderer), new(*services.GiftCardReportService)),
	services.NewMailService,
	services.NewGiftCardService,
	services.NewPaymentService,
	services.NewProductService,
	services.NewIssuanceService,
	services.NewSaleService,
	services.NewInvoiceService,
)

var middlewareSet = wire.NewSet(
	middlewares.NewAPIKeyMiddleware,
	middlewares.NewRateLimitMiddleware,
)

var handlerSet = wire.NewSet(
	deliveries.NewHealthHandler,
	deliveries.NewGiftCardHandler,
	deliveries.NewPaymentHandler,
	deliveries.NewProductHandler,
	deliveries.NewSaleHandler,
	deliveries.NewConfigurationHandler,
	wire.Struct(new(Application), "*"),
)

// InitializeApplication initializes the application with all its dependencies
func InitializeApplication() (*Application, error) {
	wire.Build(
		infrastructureSet,
		serviceSet,
		middlewareSet,
		handlerSet,
	)
	return &Application{}, nil
}
