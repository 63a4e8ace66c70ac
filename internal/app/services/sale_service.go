package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/safatanc/gsalt-giftcard/internal/infrastructures"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SaleService struct {
	db              *gorm.DB
	validator       *infrastructures.Validator
	currencyService *CurrencyService
	productService  *ProductService
	configService   *ConfigurationService
	issuanceService *IssuanceService
}

func NewSaleService(
	db *gorm.DB,
	validator *infrastructures.Validator,
	currencyService *CurrencyService,
	productService *ProductService,
	configService *ConfigurationService,
	issuanceService *IssuanceService,
) *SaleService {
	return &SaleService{
		db:              db,
		validator:       validator,
		currencyService: currencyService,
		productService:  productService,
		configService:   configService,
		issuanceService: issuanceService,
	}
}

// lineAmount is the rounded extended price of a line.
func lineAmount(currency *models.Currency, quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return currency.Round(quantity.Mul(unitPrice))
}

// computeSaleAmounts fills line amounts and sale totals. Gift card lines
// count towards both the untaxed and the total amount.
func computeSaleAmounts(sale *models.Sale, currency *models.Currency) {
	untaxed := decimal.Zero
	for i := range sale.Lines {
		line := &sale.Lines[i]
		line.Amount = lineAmount(currency, line.Quantity, line.UnitPrice)
		untaxed = untaxed.Add(line.Amount)
	}
	sale.UntaxedAmount = untaxed
	sale.TotalAmount = untaxed
}

func (s *SaleService) CreateSale(ctx context.Context, req *models.SaleCreateRequest) (*models.Sale, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	sale := &models.Sale{
		Reference:    req.Reference,
		PartyName:    req.PartyName,
		PartyEmail:   req.PartyEmail,
		CurrencyCode: req.Currency,
		State:        models.SaleStateDraft,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currency, err := s.currencyService.Find(tx, req.Currency)
		if err != nil {
			return err
		}

		for i, lineReq := range req.Lines {
			line := models.SaleLine{
				Sequence:    i + 1,
				Type:        lineReq.Type,
				Description: lineReq.Description,
				Quantity:    lineReq.Quantity,
				UnitPrice:   currency.Round(lineReq.UnitPrice),
			}

			if lineReq.ProductID != nil {
				productID, err := uuid.Parse(*lineReq.ProductID)
				if err != nil {
					return errors.NewBadRequestError("Invalid product ID format")
				}
				product, err := s.productService.Find(tx, productID)
				if err != nil {
					return err
				}
				if lineReq.Type == models.LineTypeGiftCard && !product.IsGiftCard {
					return errors.NewBadRequestError(fmt.Sprintf("Product %s is not a gift card", product.Name))
				}
				line.ProductID = &product.ID
				if line.Description == "" {
					line.Description = product.Name
				}
			}

			if lineReq.Type == models.LineTypeGiftCard {
				line.GiftCard = models.GiftCardLineDetails{
					RecipientEmail: lineReq.RecipientEmail,
					RecipientName:  lineReq.RecipientName,
					Message:        lineReq.Message,
				}
			}

			sale.Lines = append(sale.Lines, line)
		}

		if err := tx.Create(sale).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to create sale")
		}

		computeSaleAmounts(sale, currency)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sale, nil
}

func (s *SaleService) findSale(tx *gorm.DB, id uuid.UUID, lock bool) (*models.Sale, error) {
	query := tx
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var sale models.Sale
	if err := query.Where("id = ?", id).First(&sale).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Sale not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get sale")
	}

	if err := tx.Preload("GiftCards").Where("sale_id = ?", sale.ID).Order("sequence ASC").Find(&sale.Lines).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get sale lines")
	}

	currency, err := s.currencyService.Find(tx, sale.CurrencyCode)
	if err != nil {
		return nil, err
	}
	computeSaleAmounts(&sale, currency)

	return &sale, nil
}

func (s *SaleService) GetSale(ctx context.Context, saleID string) (*models.Sale, error) {
	id, err := uuid.Parse(saleID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid sale ID format")
	}
	return s.findSale(s.db.WithContext(ctx), id, false)
}

func (s *SaleService) ConfirmSale(ctx context.Context, saleID string) (*models.Sale, error) {
	return s.changeState(ctx, saleID, func(tx *gorm.DB, sale *models.Sale) error {
		if sale.State != models.SaleStateDraft {
			return errors.NewStateError(fmt.Sprintf("Cannot confirm sale in state %s", sale.State))
		}
		sale.State = models.SaleStateConfirmed
		return nil
	})
}

// ProcessSale moves a confirmed sale to processing and runs gift card
// issuance for its lines. Processing an already processing sale only
// issues cards that are still missing.
func (s *SaleService) ProcessSale(ctx context.Context, saleID string) (*models.Sale, error) {
	return s.changeState(ctx, saleID, func(tx *gorm.DB, sale *models.Sale) error {
		if sale.State != models.SaleStateConfirmed && sale.State != models.SaleStateProcessing {
			return errors.NewStateError(fmt.Sprintf("Cannot process sale in state %s", sale.State))
		}
		sale.State = models.SaleStateProcessing

		for i := range sale.Lines {
			if _, err := s.issuanceService.CreateGiftCards(ctx, tx, sale, &sale.Lines[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SaleService) CancelSale(ctx context.Context, saleID string) (*models.Sale, error) {
	return s.changeState(ctx, saleID, func(tx *gorm.DB, sale *models.Sale) error {
		if sale.State != models.SaleStateDraft && sale.State != models.SaleStateConfirmed {
			return errors.NewStateError(fmt.Sprintf("Cannot cancel sale in state %s", sale.State))
		}
		sale.State = models.SaleStateCanceled
		return nil
	})
}

func (s *SaleService) changeState(ctx context.Context, saleID string, change func(tx *gorm.DB, sale *models.Sale) error) (*models.Sale, error) {
	id, err := uuid.Parse(saleID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid sale ID format")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := s.findSale(tx, id, true)
		if err != nil {
			return err
		}
		if err := change(tx, sale); err != nil {
			return err
		}
		if err := tx.Model(sale).Update("state", sale.State).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to update sale")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetSale(ctx, saleID)
}

// CreateInvoice invoices every sale line not yet on a live invoice. Gift
// card lines are booked on the configured liability account.
func (s *SaleService) CreateInvoice(ctx context.Context, saleID string) (*models.Invoice, error) {
	id, err := uuid.Parse(saleID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid sale ID format")
	}

	var invoice *models.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := s.findSale(tx, id, true)
		if err != nil {
			return err
		}
		if sale.State != models.SaleStateConfirmed && sale.State != models.SaleStateProcessing {
			return errors.NewStateError(fmt.Sprintf("Cannot invoice sale in state %s", sale.State))
		}

		lines, err := s.invoiceLines(tx, sale)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return errors.NewBadRequestError("Sale has nothing left to invoice")
		}

		invoice = &models.Invoice{
			SaleID:       &sale.ID,
			CurrencyCode: sale.CurrencyCode,
			State:        models.InvoiceStateDraft,
			Lines:        lines,
		}
		if err := tx.Create(invoice).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to create invoice")
		}

		currency, err := s.currencyService.Find(tx, invoice.CurrencyCode)
		if err != nil {
			return err
		}
		computeInvoiceAmounts(invoice, currency)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return invoice, nil
}

func (s *SaleService) invoiceLines(tx *gorm.DB, sale *models.Sale) ([]models.InvoiceLine, error) {
	var invoiced []uuid.UUID
	err := tx.Model(&models.InvoiceLine{}).
		Joins("JOIN invoices ON invoices.id = invoice_lines.invoice_id").
		Where("invoices.sale_id = ? AND invoices.state <> ?", sale.ID, models.InvoiceStateCanceled).
		Pluck("invoice_lines.sale_line_id", &invoiced).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get invoiced lines")
	}

	done := make(map[uuid.UUID]bool, len(invoiced))
	for _, id := range invoiced {
		done[id] = true
	}

	var lines []models.InvoiceLine
	for i := range sale.Lines {
		saleLine := &sale.Lines[i]
		if done[saleLine.ID] {
			continue
		}

		line := models.InvoiceLine{
			SaleLineID:  &saleLine.ID,
			Type:        saleLine.Type,
			Description: saleLine.Description,
			Quantity:    saleLine.Quantity,
			UnitPrice:   saleLine.UnitPrice,
		}

		if details, ok := saleLine.GiftCardDetails(); ok {
			account, err := s.configService.LiabilityAccount(tx)
			if err != nil {
				return nil, err
			}
			line.AccountCode = &account
			line.Message = details.Message
		}

		lines = append(lines, line)
	}
	return lines, nil
}
