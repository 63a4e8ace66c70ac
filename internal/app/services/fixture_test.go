package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/safatanc/gsalt-giftcard/internal/infrastructures"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const liabilityAccount = "2100"

type fixture struct {
	db            *gorm.DB
	validator     *infrastructures.Validator
	audit         *AuditService
	ledger        *LedgerService
	currencies    *CurrencyService
	config        *ConfigurationService
	mail          *MailService
	giftCards     *GiftCardService
	payments      *PaymentService
	products      *ProductService
	issuance      *IssuanceService
	sales         *SaleService
	invoices      *InvoiceService
	selfGatewayID string
}

type fixtureOption func(*fixtureOptions)

type fixtureOptions struct {
	renderer         ReportRenderer
	sequence         SequenceGenerator
	withoutLiability bool
	creationMethod   models.GiftCardCreationMethod
}

func withRenderer(renderer ReportRenderer) fixtureOption {
	return func(o *fixtureOptions) { o.renderer = renderer }
}

func withSequence(sequence SequenceGenerator) fixtureOption {
	return func(o *fixtureOptions) { o.sequence = sequence }
}

func withoutLiabilityAccount() fixtureOption {
	return func(o *fixtureOptions) { o.withoutLiability = true }
}

func withCreationMethod(method models.GiftCardCreationMethod) fixtureOption {
	return func(o *fixtureOptions) { o.creationMethod = method }
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:giftcard_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := infrastructures.OpenDatabase(dsn)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	options := fixtureOptions{
		renderer:       NewGiftCardReportService(),
		sequence:       NewDatabaseSequence(),
		creationMethod: models.GiftCardCreationOnOrder,
	}
	for _, opt := range opts {
		opt(&options)
	}

	db := openTestDB(t)
	validator := infrastructures.NewValidator()

	f := &fixture{db: db, validator: validator}
	f.audit = NewAuditService(db)
	f.ledger = NewLedgerService(db)
	f.currencies = NewCurrencyService(db, validator)
	f.config = NewConfigurationService(db, validator)
	f.mail = NewMailService(NewOutboxMailQueue(), options.renderer)
	f.giftCards = NewGiftCardService(db, validator, f.ledger, f.currencies, f.config, options.sequence, f.mail, f.audit)
	f.payments = NewPaymentService(db, validator, f.currencies, f.giftCards)
	f.products = NewProductService(db, validator)
	f.issuance = NewIssuanceService(f.config, f.currencies, f.products, f.giftCards)
	f.sales = NewSaleService(db, validator, f.currencies, f.products, f.config, f.issuance)
	f.invoices = NewInvoiceService(db, f.currencies, f.config, f.issuance)

	ctx := context.Background()
	require.NoError(t, db.Create(&models.Currency{Code: "USD", Name: "US Dollar", Symbol: "$", Digits: 2}).Error)
	require.NoError(t, db.Create(&models.Currency{Code: "IDR", Name: "Rupiah", Symbol: "Rp", Digits: 0}).Error)
	require.NoError(t, db.Create(&models.Account{Code: liabilityAccount, Name: "Gift Card Liability", Kind: models.AccountKindRevenue}).Error)

	update := &models.ConfigurationUpdateRequest{GiftCardCreationMethod: &options.creationMethod}
	if !options.withoutLiability {
		account := liabilityAccount
		update.LiabilityAccountCode = &account
	}
	_, err := f.config.UpdateConfiguration(ctx, update)
	require.NoError(t, err)

	gateway, err := f.payments.CreateGateway(ctx, &models.PaymentGatewayCreateRequest{
		Name:     "Store",
		Provider: models.PaymentProviderSelf,
		Method:   models.PaymentMethodManual,
	})
	require.NoError(t, err)
	f.selfGatewayID = gateway.ID.String()

	return f
}

func ptr[T any](v T) *T {
	return &v
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// createCard creates a draft USD card.
func (f *fixture) createCard(t *testing.T, amount string, recipientEmail *string) *models.GiftCard {
	t.Helper()
	card, err := f.giftCards.CreateGiftCard(context.Background(), &models.GiftCardCreateRequest{
		Amount:         dec(amount),
		Currency:       "USD",
		RecipientEmail: recipientEmail,
	})
	require.NoError(t, err)
	return card
}

// activeCard creates and activates a USD card.
func (f *fixture) activeCard(t *testing.T, amount string) *models.GiftCard {
	t.Helper()
	card := f.createCard(t, amount, nil)
	cards, err := f.giftCards.Activate(context.Background(), []string{card.ID.String()})
	require.NoError(t, err)
	return cards[0]
}

func (f *fixture) reload(t *testing.T, card *models.GiftCard) *models.GiftCard {
	t.Helper()
	reloaded, err := f.giftCards.GetGiftCard(context.Background(), card.ID.String())
	require.NoError(t, err)
	return reloaded
}

// giftCardPayment creates a draft gift card transaction on the self gateway.
func (f *fixture) giftCardPayment(t *testing.T, card *models.GiftCard, amount string) *models.PaymentTransaction {
	t.Helper()
	transaction, err := f.payments.CreateTransaction(context.Background(), &models.PaymentTransactionCreateRequest{
		GatewayID:  f.selfGatewayID,
		Method:     models.PaymentMethodGiftCard,
		Amount:     dec(amount),
		Currency:   card.CurrencyCode,
		GiftCardID: ptr(card.ID.String()),
	})
	require.NoError(t, err)
	return transaction
}

func assertAmount(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func (f *fixture) countMails(t *testing.T, card *models.GiftCard) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.MailMessage{}).Where("reference_id = ?", card.ID).Count(&count).Error)
	return count
}
