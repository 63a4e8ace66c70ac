package services

import (
	"context"

	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/safatanc/gsalt-giftcard/internal/infrastructures"
	"gorm.io/gorm"
)

// AccountService manages the chart of accounts referenced by the gift card
// configuration and by invoice lines.
type AccountService struct {
	db        *gorm.DB
	validator *infrastructures.Validator
}

func NewAccountService(db *gorm.DB, validator *infrastructures.Validator) *AccountService {
	return &AccountService{
		db:        db,
		validator: validator,
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, req *models.AccountCreateRequest) (*models.Account, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var existing models.Account
	err := s.db.WithContext(ctx).Where("code = ?", req.Code).First(&existing).Error
	if err == nil {
		return nil, errors.NewBadRequestError("Account already exists")
	}

	account := &models.Account{
		Code: req.Code,
		Name: req.Name,
		Kind: req.Kind,
	}

	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create account")
	}

	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, code string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Account not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get account")
	}

	return &account, nil
}

func (s *AccountService) GetAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.WithContext(ctx).Order("code ASC").Find(&accounts).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get accounts")
	}
	return accounts, nil
}
