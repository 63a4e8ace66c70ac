package services

import (
	"context"
	"fmt"

	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/safatanc/gsalt-giftcard/internal/infrastructures"
	"gorm.io/gorm"
)

const defaultMailFrom = "no-reply@gsalt.id"

type ConfigurationService struct {
	db        *gorm.DB
	validator *infrastructures.Validator
}

func NewConfigurationService(db *gorm.DB, validator *infrastructures.Validator) *ConfigurationService {
	return &ConfigurationService{
		db:        db,
		validator: validator,
	}
}

// Load returns the configuration singleton, creating it together with the
// default number sequence on first use.
func (s *ConfigurationService) Load(tx *gorm.DB) (*models.Configuration, error) {
	config := models.Configuration{
		ID:                     models.ConfigurationID,
		NumberSequence:         models.DefaultNumberSequence,
		GiftCardCreationMethod: models.GiftCardCreationOnOrder,
		MailFrom:               defaultMailFrom,
	}
	if err := tx.Where("id = ?", models.ConfigurationID).FirstOrCreate(&config).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to load gift card configuration")
	}

	sequence := models.Sequence{Name: models.DefaultNumberSequence}
	if err := tx.Where("name = ?", sequence.Name).
		Attrs(models.Sequence{Prefix: "GC", Padding: 8, NumberNext: 1}).
		FirstOrCreate(&sequence).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to load gift card number sequence")
	}

	return &config, nil
}

func (s *ConfigurationService) GetConfiguration(ctx context.Context) (*models.Configuration, error) {
	return s.Load(s.db.WithContext(ctx))
}

// LiabilityAccount returns the configured liability account code or a
// configuration error when none is set.
func (s *ConfigurationService) LiabilityAccount(tx *gorm.DB) (string, error) {
	config, err := s.Load(tx)
	if err != nil {
		return "", err
	}
	if !config.HasLiabilityAccount() {
		return "", errors.NewConfigurationError("Liability Account is missing from Gift Card Configuration")
	}
	return *config.LiabilityAccountCode, nil
}

func (s *ConfigurationService) UpdateConfiguration(ctx context.Context, req *models.ConfigurationUpdateRequest) (*models.Configuration, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var config *models.Configuration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		config, err = s.Load(tx)
		if err != nil {
			return err
		}

		if req.LiabilityAccountCode != nil {
			var account models.Account
			if err := tx.Where("code = ?", *req.LiabilityAccountCode).First(&account).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return errors.NewBadRequestError(fmt.Sprintf("Account %s not found", *req.LiabilityAccountCode))
				}
				return errors.NewInternalServerError(err, "Failed to get account")
			}
			if account.Kind != models.AccountKindRevenue {
				return errors.NewBadRequestError("Liability account must be a revenue account")
			}
			config.LiabilityAccountCode = &account.Code
		}

		if req.NumberSequence != nil {
			if _, err := loadSequence(tx, *req.NumberSequence, false); err != nil {
				return err
			}
			config.NumberSequence = *req.NumberSequence
		}

		if req.GiftCardCreationMethod != nil {
			config.GiftCardCreationMethod = *req.GiftCardCreationMethod
		}

		if req.MailFrom != nil {
			config.MailFrom = *req.MailFrom
		}

		if err := tx.Save(config).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to update gift card configuration")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return config, nil
}
