package services

import (
	"context"

	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// IssuanceService turns paid-for gift card sale lines into active cards.
type IssuanceService struct {
	configService   *ConfigurationService
	currencyService *CurrencyService
	productService  *ProductService
	giftCardService *GiftCardService
}

func NewIssuanceService(
	configService *ConfigurationService,
	currencyService *CurrencyService,
	productService *ProductService,
	giftCardService *GiftCardService,
) *IssuanceService {
	return &IssuanceService{
		configService:   configService,
		currencyService: currencyService,
		productService:  productService,
		giftCardService: giftCardService,
	}
}

// CreateGiftCards issues the cards a sale line is still owed under the
// configured creation method and activates them. Calling it again for the
// same line only issues what is missing.
func (s *IssuanceService) CreateGiftCards(ctx context.Context, tx *gorm.DB, sale *models.Sale, line *models.SaleLine) ([]*models.GiftCard, error) {
	details, ok := line.GiftCardDetails()
	if !ok {
		return nil, nil
	}

	if _, err := s.configService.LiabilityAccount(tx); err != nil {
		return nil, err
	}

	config, err := s.configService.Load(tx)
	if err != nil {
		return nil, err
	}

	var created int64
	if err := tx.Unscoped().Model(&models.GiftCard{}).Where("sale_line_id = ?", line.ID).Count(&created).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count issued gift cards")
	}

	owed := line.Quantity
	if config.GiftCardCreationMethod == models.GiftCardCreationOnInvoicePaid {
		owed, err = s.paidQuantity(tx, line)
		if err != nil {
			return nil, err
		}
	}

	quantity := owed.IntPart() - created
	if quantity < 1 {
		return nil, nil
	}

	if line.ProductID == nil {
		return nil, errors.NewBadRequestError("Gift card line has no product")
	}
	product, err := s.productService.Find(tx, *line.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.AcceptsAmount(line.UnitPrice) {
		return nil, errors.NewRangeError(sale.CurrencyCode, product.GcMin, product.GcMax)
	}

	currency, err := s.currencyService.Find(tx, sale.CurrencyCode)
	if err != nil {
		return nil, err
	}

	originType := models.OriginTypeSale
	cards := make([]*models.GiftCard, 0, quantity)
	for i := int64(0); i < quantity; i++ {
		card := &models.GiftCard{
			CurrencyCode:  sale.CurrencyCode,
			Amount:        currency.Round(line.UnitPrice),
			OriginType:    &originType,
			OriginID:      &sale.ID,
			SaleLineID:    &line.ID,
			RecipientName: details.RecipientName,
			Message:       details.Message,
		}
		if product.EmailsRecipient() {
			card.RecipientEmail = details.RecipientEmail
		}

		if err := s.giftCardService.CreateInTx(tx, card); err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := s.giftCardService.TransitionInTx(ctx, tx, cards, TransitionActivate); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"sale_id":      sale.ID,
		"sale_line_id": line.ID,
		"count":        len(cards),
		"method":       config.GiftCardCreationMethod,
	}).Info("gift cards issued")

	return cards, nil
}

// paidQuantity sums the gift card invoice lines of line on paid invoices.
func (s *IssuanceService) paidQuantity(tx *gorm.DB, line *models.SaleLine) (decimal.Decimal, error) {
	var invoiceLines []models.InvoiceLine
	err := tx.Joins("JOIN invoices ON invoices.id = invoice_lines.invoice_id").
		Where("invoice_lines.sale_line_id = ? AND invoice_lines.type = ? AND invoices.state = ?", line.ID, models.LineTypeGiftCard, models.InvoiceStatePaid).
		Find(&invoiceLines).Error
	if err != nil {
		return decimal.Zero, errors.NewInternalServerError(err, "Failed to get paid invoice lines")
	}

	paid := decimal.Zero
	for _, invoiceLine := range invoiceLines {
		paid = paid.Add(invoiceLine.Quantity)
	}
	return paid, nil
}
