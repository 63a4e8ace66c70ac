package services

import (
	"context"
	"fmt"

	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/safatanc/gsalt-giftcard/internal/infrastructures"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CurrencyService struct {
	db        *gorm.DB
	validator *infrastructures.Validator
}

func NewCurrencyService(db *gorm.DB, validator *infrastructures.Validator) *CurrencyService {
	return &CurrencyService{
		db:        db,
		validator: validator,
	}
}

func (s *CurrencyService) CreateCurrency(ctx context.Context, req *models.CurrencyCreateRequest) (*models.Currency, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var existing models.Currency
	if err := s.db.WithContext(ctx).Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return nil, errors.NewBadRequestError("Currency already exists")
	}

	currency := &models.Currency{
		Code:   req.Code,
		Name:   req.Name,
		Symbol: req.Symbol,
		Digits: models.DefaultCurrencyDigits,
	}
	if req.Digits != nil {
		currency.Digits = *req.Digits
	}

	if err := s.db.WithContext(ctx).Create(currency).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create currency")
	}

	return currency, nil
}

// Find loads a currency inside tx; an unknown code is a bad request.
func (s *CurrencyService) Find(tx *gorm.DB, code string) (*models.Currency, error) {
	var currency models.Currency
	if err := tx.Where("code = ?", code).First(&currency).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewBadRequestError(fmt.Sprintf("Unknown currency %s", code))
		}
		return nil, errors.NewInternalServerError(err, "Failed to get currency")
	}
	return &currency, nil
}

func (s *CurrencyService) GetCurrencies(ctx context.Context) ([]models.Currency, error) {
	var currencies []models.Currency
	if err := s.db.WithContext(ctx).Order("code ASC").Find(&currencies).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get currencies")
	}
	return currencies, nil
}

// requirePositiveAmount rejects an amount that is not positive once rounded to
// the currency precision.
func requirePositiveAmount(subject, currencyCode string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.NewBadRequestError(fmt.Sprintf("%s amount must be greater than zero in %s", subject, currencyCode))
	}
	return nil
}
