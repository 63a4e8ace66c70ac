package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceService struct {
	db              *gorm.DB
	currencyService *CurrencyService
	configService   *ConfigurationService
	issuanceService *IssuanceService
}

func NewInvoiceService(
	db *gorm.DB,
	currencyService *CurrencyService,
	configService *ConfigurationService,
	issuanceService *IssuanceService,
) *InvoiceService {
	return &InvoiceService{
		db:              db,
		currencyService: currencyService,
		configService:   configService,
		issuanceService: issuanceService,
	}
}

func computeInvoiceAmounts(invoice *models.Invoice, currency *models.Currency) {
	untaxed := decimal.Zero
	for i := range invoice.Lines {
		line := &invoice.Lines[i]
		line.Amount = lineAmount(currency, line.Quantity, line.UnitPrice)
		untaxed = untaxed.Add(line.Amount)
	}
	invoice.UntaxedAmount = untaxed
	invoice.TotalAmount = untaxed
}

func (s *InvoiceService) findInvoice(tx *gorm.DB, id uuid.UUID, lock bool) (*models.Invoice, error) {
	query := tx
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var invoice models.Invoice
	if err := query.Where("id = ?", id).First(&invoice).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Invoice not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get invoice")
	}

	if err := tx.Where("invoice_id = ?", invoice.ID).Order("created_at ASC").Find(&invoice.Lines).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get invoice lines")
	}

	currency, err := s.currencyService.Find(tx, invoice.CurrencyCode)
	if err != nil {
		return nil, err
	}
	computeInvoiceAmounts(&invoice, currency)

	return &invoice, nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	id, err := uuid.Parse(invoiceID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid invoice ID format")
	}
	return s.findInvoice(s.db.WithContext(ctx), id, false)
}

func (s *InvoiceService) PostInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	return s.changeState(ctx, invoiceID, func(tx *gorm.DB, invoice *models.Invoice) error {
		if invoice.State != models.InvoiceStateDraft {
			return errors.NewStateError(fmt.Sprintf("Cannot post invoice in state %s", invoice.State))
		}
		invoice.State = models.InvoiceStatePosted
		return tx.Model(invoice).Update("state", invoice.State).Error
	})
}

// PayInvoice marks a posted invoice paid. When gift cards are issued on
// payment, the cards for its gift card lines are created in the same
// transaction.
func (s *InvoiceService) PayInvoice(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	return s.changeState(ctx, invoiceID, func(tx *gorm.DB, invoice *models.Invoice) error {
		if invoice.State != models.InvoiceStatePosted {
			return errors.NewStateError(fmt.Sprintf("Cannot pay invoice in state %s", invoice.State))
		}

		now := time.Now()
		invoice.State = models.InvoiceStatePaid
		invoice.PaidAt = &now
		err := tx.Model(invoice).Updates(map[string]interface{}{
			"state":   invoice.State,
			"paid_at": invoice.PaidAt,
		}).Error
		if err != nil {
			return err
		}

		config, err := s.configService.Load(tx)
		if err != nil {
			return err
		}
		if config.GiftCardCreationMethod != models.GiftCardCreationOnInvoicePaid {
			return nil
		}
		return s.issueForInvoice(ctx, tx, invoice)
	})
}

func (s *InvoiceService) issueForInvoice(ctx context.Context, tx *gorm.DB, invoice *models.Invoice) error {
	if invoice.SaleID == nil {
		return nil
	}

	var sale models.Sale
	if err := tx.Where("id = ?", *invoice.SaleID).First(&sale).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to get invoiced sale")
	}

	for _, invoiceLine := range invoice.Lines {
		if invoiceLine.Type != models.LineTypeGiftCard || invoiceLine.SaleLineID == nil {
			continue
		}

		var saleLine models.SaleLine
		if err := tx.Where("id = ?", *invoiceLine.SaleLineID).First(&saleLine).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to get invoiced sale line")
		}

		cards, err := s.issuanceService.CreateGiftCards(ctx, tx, &sale, &saleLine)
		if err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"invoice_id":   invoice.ID,
			"sale_line_id": saleLine.ID,
			"issued":       len(cards),
		}).Debug("invoice payment processed gift card line")
	}
	return nil
}

func (s *InvoiceService) changeState(ctx context.Context, invoiceID string, change func(tx *gorm.DB, invoice *models.Invoice) error) (*models.Invoice, error) {
	id, err := uuid.Parse(invoiceID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid invoice ID format")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.findInvoice(tx, id, true)
		if err != nil {
			return err
		}
		if err := change(tx, invoice); err != nil {
			if _, ok := err.(*errors.AppError); ok {
				return err
			}
			return errors.NewInternalServerError(err, "Failed to update invoice")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetInvoice(ctx, invoiceID)
}
