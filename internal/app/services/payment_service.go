package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/safatanc/gsalt-giftcard/internal/infrastructures"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentService struct {
	db              *gorm.DB
	validator       *infrastructures.Validator
	currencyService *CurrencyService
	giftCardService *GiftCardService
}

func NewPaymentService(db *gorm.DB, validator *infrastructures.Validator, currencyService *CurrencyService, giftCardService *GiftCardService) *PaymentService {
	return &PaymentService{
		db:              db,
		validator:       validator,
		currencyService: currencyService,
		giftCardService: giftCardService,
	}
}

func (s *PaymentService) CreateGateway(ctx context.Context, req *models.PaymentGatewayCreateRequest) (*models.PaymentGateway, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	gateway := &models.PaymentGateway{
		Name:     req.Name,
		Provider: req.Provider,
		Method:   req.Method,
	}
	if err := s.db.WithContext(ctx).Create(gateway).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create payment gateway")
	}

	return gateway, nil
}

func (s *PaymentService) findGateway(tx *gorm.DB, id uuid.UUID) (*models.PaymentGateway, error) {
	var gateway models.PaymentGateway
	if err := tx.Where("id = ?", id).First(&gateway).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Payment gateway not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get payment gateway")
	}
	return &gateway, nil
}

func (s *PaymentService) GetGateway(ctx context.Context, gatewayID string) (*models.PaymentGateway, error) {
	id, err := uuid.Parse(gatewayID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid payment gateway ID format")
	}
	return s.findGateway(s.db.WithContext(ctx), id)
}

// GetMethods lists the payment methods a gateway accepts.
func (s *PaymentService) GetMethods(ctx context.Context, gatewayID string) ([]models.PaymentMethod, error) {
	gateway, err := s.GetGateway(ctx, gatewayID)
	if err != nil {
		return nil, err
	}
	return gateway.Methods(), nil
}

func (s *PaymentService) CreateTransaction(ctx context.Context, req *models.PaymentTransactionCreateRequest) (*models.PaymentTransaction, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	gatewayID, err := uuid.Parse(req.GatewayID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid payment gateway ID format")
	}

	transaction := &models.PaymentTransaction{
		GatewayID:    gatewayID,
		Method:       req.Method,
		CurrencyCode: req.Currency,
		State:        models.PaymentTransactionStateDraft,
		Description:  req.Description,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		gateway, err := s.findGateway(tx, gatewayID)
		if err != nil {
			return err
		}
		if !gateway.Supports(req.Method) {
			return errors.NewBadRequestError(fmt.Sprintf("Payment gateway %s does not support %s payments", gateway.Name, req.Method))
		}

		currency, err := s.currencyService.Find(tx, req.Currency)
		if err != nil {
			return err
		}
		transaction.Amount = currency.Round(req.Amount)
		if err := requirePositiveAmount("Payment", currency.Code, transaction.Amount); err != nil {
			return err
		}

		if req.Method == models.PaymentMethodGiftCard {
			if req.GiftCardID == nil {
				return errors.NewBadRequestError("Gift card is required for gift card payments")
			}
			giftCardID, err := uuid.Parse(*req.GiftCardID)
			if err != nil {
				return errors.NewBadRequestError("Invalid gift card ID format")
			}
			card, err := s.giftCardService.LockGiftCard(tx, giftCardID)
			if err != nil {
				return err
			}
			if card.State != models.GiftCardStateActive {
				return errors.NewStateError(fmt.Sprintf("Gift card %s is not active", cardLabel(card)))
			}
			if card.CurrencyCode != transaction.CurrencyCode {
				return errors.NewBadRequestError(fmt.Sprintf("Gift card %s is in %s, not %s", cardLabel(card), card.CurrencyCode, transaction.CurrencyCode))
			}
			transaction.GiftCardID = &card.ID
		}

		if err := tx.Create(transaction).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to create payment transaction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

func (s *PaymentService) GetTransaction(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	id, err := uuid.Parse(transactionID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid payment transaction ID format")
	}

	var transaction models.PaymentTransaction
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&transaction).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Payment transaction not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get payment transaction")
	}
	return &transaction, nil
}

// Authorize places a hold for the transaction amount.
func (s *PaymentService) Authorize(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	return s.process(ctx, transactionID, func(tx *gorm.DB, transaction *models.PaymentTransaction, gateway *models.PaymentGateway) error {
		if err := requireTransactionState(transaction, "authorize", models.PaymentTransactionStateDraft); err != nil {
			return err
		}
		if transaction.Method == models.PaymentMethodGiftCard {
			return s.authorizeGiftCard(ctx, tx, transaction)
		}
		if err := requireSelfProvider(gateway); err != nil {
			return err
		}
		return s.setState(tx, transaction, models.PaymentTransactionStateAuthorized)
	})
}

// Capture charges the transaction amount directly and posts it.
func (s *PaymentService) Capture(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	return s.process(ctx, transactionID, func(tx *gorm.DB, transaction *models.PaymentTransaction, gateway *models.PaymentGateway) error {
		if err := requireTransactionState(transaction, "capture", models.PaymentTransactionStateDraft); err != nil {
			return err
		}
		if transaction.Method == models.PaymentMethodGiftCard {
			return s.captureGiftCard(ctx, tx, transaction)
		}
		if err := requireSelfProvider(gateway); err != nil {
			return err
		}
		if err := s.setState(tx, transaction, models.PaymentTransactionStateCompleted); err != nil {
			return err
		}
		return s.post(ctx, tx, transaction)
	})
}

// Settle turns an authorized hold into a captured amount and posts it.
func (s *PaymentService) Settle(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	return s.process(ctx, transactionID, func(tx *gorm.DB, transaction *models.PaymentTransaction, gateway *models.PaymentGateway) error {
		if err := requireTransactionState(transaction, "settle", models.PaymentTransactionStateAuthorized); err != nil {
			return err
		}
		if transaction.Method == models.PaymentMethodGiftCard {
			return s.settleGiftCard(ctx, tx, transaction)
		}
		if err := requireSelfProvider(gateway); err != nil {
			return err
		}
		if err := s.setState(tx, transaction, models.PaymentTransactionStateCompleted); err != nil {
			return err
		}
		return s.post(ctx, tx, transaction)
	})
}

// Post finalizes a completed transaction.
func (s *PaymentService) Post(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	return s.process(ctx, transactionID, func(tx *gorm.DB, transaction *models.PaymentTransaction, gateway *models.PaymentGateway) error {
		if err := requireTransactionState(transaction, "post", models.PaymentTransactionStateCompleted); err != nil {
			return err
		}
		return s.post(ctx, tx, transaction)
	})
}

// Cancel voids a draft transaction or releases an authorized hold.
func (s *PaymentService) Cancel(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	return s.process(ctx, transactionID, func(tx *gorm.DB, transaction *models.PaymentTransaction, gateway *models.PaymentGateway) error {
		if err := requireTransactionState(transaction, "cancel", models.PaymentTransactionStateDraft, models.PaymentTransactionStateAuthorized); err != nil {
			return err
		}
		return s.setState(tx, transaction, models.PaymentTransactionStateCanceled)
	})
}

type transactionStep func(tx *gorm.DB, transaction *models.PaymentTransaction, gateway *models.PaymentGateway) error

func (s *PaymentService) process(ctx context.Context, transactionID string, step transactionStep) (*models.PaymentTransaction, error) {
	id, err := uuid.Parse(transactionID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid payment transaction ID format")
	}

	var transaction models.PaymentTransaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&transaction).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.NewNotFoundError("Payment transaction not found")
			}
			return errors.NewInternalServerError(err, "Failed to get payment transaction")
		}

		gateway, err := s.findGateway(tx, transaction.GatewayID)
		if err != nil {
			return err
		}
		return step(tx, &transaction, gateway)
	})
	if err != nil {
		return nil, err
	}

	return &transaction, nil
}

func requireTransactionState(transaction *models.PaymentTransaction, action string, allowed ...models.PaymentTransactionState) error {
	for _, state := range allowed {
		if transaction.State == state {
			return nil
		}
	}
	return errors.NewStateError(fmt.Sprintf("Cannot %s payment transaction in state %s", action, transaction.State))
}

func requireSelfProvider(gateway *models.PaymentGateway) error {
	if gateway.Provider != models.PaymentProviderSelf {
		return errors.NewBadRequestError(fmt.Sprintf("Payment provider %s is not available", gateway.Provider))
	}
	return nil
}

func (s *PaymentService) setState(tx *gorm.DB, transaction *models.PaymentTransaction, state models.PaymentTransactionState) error {
	transaction.State = state
	if err := tx.Save(transaction).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to update payment transaction")
	}
	return nil
}

// redeemableCard locks the card behind a gift card transaction and fills
// its balances.
func (s *PaymentService) redeemableCard(tx *gorm.DB, transaction *models.PaymentTransaction, states ...models.GiftCardState) (*models.GiftCard, error) {
	if transaction.GiftCardID == nil {
		return nil, errors.NewBadRequestError("Gift card is required for gift card payments")
	}

	card, err := s.giftCardService.LockGiftCard(tx, *transaction.GiftCardID)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(states, card.State) {
		return nil, errors.NewStateError(fmt.Sprintf("Gift card %s cannot be redeemed in state %s", cardLabel(card), card.State))
	}

	if err := s.giftCardService.ledgerService.Fill(tx, card); err != nil {
		return nil, err
	}
	return card, nil
}

func ensureCovers(card *models.GiftCard, available, amount decimal.Decimal) error {
	if available.LessThan(amount) {
		return errors.NewInsufficientFundsError(card.DisplayNumber())
	}
	return nil
}

func (s *PaymentService) authorizeGiftCard(ctx context.Context, tx *gorm.DB, transaction *models.PaymentTransaction) error {
	card, err := s.redeemableCard(tx, transaction, models.GiftCardStateActive)
	if err != nil {
		return err
	}
	if err := ensureCovers(card, card.AmountAvailable, transaction.Amount); err != nil {
		return err
	}

	return s.setState(tx, transaction, models.PaymentTransactionStateAuthorized)
}

func (s *PaymentService) captureGiftCard(ctx context.Context, tx *gorm.DB, transaction *models.PaymentTransaction) error {
	card, err := s.redeemableCard(tx, transaction, models.GiftCardStateActive)
	if err != nil {
		return err
	}
	if err := ensureCovers(card, card.AmountAvailable, transaction.Amount); err != nil {
		return err
	}

	if err := s.setState(tx, transaction, models.PaymentTransactionStateCompleted); err != nil {
		return err
	}
	return s.post(ctx, tx, transaction)
}

// settleGiftCard checks against everything not yet captured, since the
// hold being settled is already part of the authorized amount.
func (s *PaymentService) settleGiftCard(ctx context.Context, tx *gorm.DB, transaction *models.PaymentTransaction) error {
	card, err := s.redeemableCard(tx, transaction, models.GiftCardStateActive, models.GiftCardStateUsed)
	if err != nil {
		return err
	}
	if err := ensureCovers(card, card.Amount.Sub(card.AmountCaptured), transaction.Amount); err != nil {
		return err
	}

	if err := s.setState(tx, transaction, models.PaymentTransactionStateCompleted); err != nil {
		return err
	}
	return s.post(ctx, tx, transaction)
}

func (s *PaymentService) post(ctx context.Context, tx *gorm.DB, transaction *models.PaymentTransaction) error {
	now := time.Now()
	transaction.PostedAt = &now
	if err := s.setState(tx, transaction, models.PaymentTransactionStatePosted); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"transaction_id": transaction.ID,
		"method":         transaction.Method,
		"amount":         transaction.Amount.String(),
	}).Info("payment transaction posted")

	if transaction.GiftCardID == nil {
		return nil
	}

	card, err := s.giftCardService.LockGiftCard(tx, *transaction.GiftCardID)
	if err != nil {
		return err
	}
	return s.giftCardService.MarkUsedIfDepleted(ctx, tx, card)
}
