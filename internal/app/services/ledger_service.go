package services

import (
	"github.com/google/uuid"
	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerAmounts are the balances derived from the transactions of one card.
type LedgerAmounts struct {
	Authorized decimal.Decimal
	Captured   decimal.Decimal
	Available  decimal.Decimal
}

// SumAmounts folds a card's transactions into its derived balances.
// Authorized holds and captured amounts both reduce the available amount;
// transactions in any other state do not count.
func SumAmounts(amount decimal.Decimal, transactions []models.PaymentTransaction) LedgerAmounts {
	authorized := decimal.Zero
	captured := decimal.Zero

	for _, transaction := range transactions {
		switch transaction.State {
		case models.PaymentTransactionStateAuthorized:
			authorized = authorized.Add(transaction.Amount)
		case models.PaymentTransactionStateCompleted, models.PaymentTransactionStatePosted:
			captured = captured.Add(transaction.Amount)
		}
	}

	return LedgerAmounts{
		Authorized: authorized,
		Captured:   captured,
		Available:  amount.Sub(authorized).Sub(captured),
	}
}

type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{
		db: db,
	}
}

// Transactions lists the payment transactions drawn against a card.
func (s *LedgerService) Transactions(tx *gorm.DB, giftCardID uuid.UUID) ([]models.PaymentTransaction, error) {
	var transactions []models.PaymentTransaction
	if err := tx.Where("gift_card_id = ?", giftCardID).Order("created_at ASC").Find(&transactions).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get gift card transactions")
	}
	return transactions, nil
}

// Amounts recomputes the derived balances of card from the database.
func (s *LedgerService) Amounts(tx *gorm.DB, card *models.GiftCard) (LedgerAmounts, error) {
	if tx == nil {
		tx = s.db
	}

	transactions, err := s.Transactions(tx, card.ID)
	if err != nil {
		return LedgerAmounts{}, err
	}

	return SumAmounts(card.Amount, transactions), nil
}

// Fill sets the derived amount fields on card.
func (s *LedgerService) Fill(tx *gorm.DB, card *models.GiftCard) error {
	amounts, err := s.Amounts(tx, card)
	if err != nil {
		return err
	}

	card.AmountAuthorized = amounts.Authorized
	card.AmountCaptured = amounts.Captured
	card.AmountAvailable = amounts.Available
	return nil
}
