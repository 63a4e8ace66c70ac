package services

import (
	"context"
	"testing"

	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/stretchr/testify/require"
)

func TestSumAmounts(t *testing.T) {
	tx := func(state models.PaymentTransactionState, amount string) models.PaymentTransaction {
		return models.PaymentTransaction{State: state, Amount: dec(amount)}
	}

	tests := []struct {
		name         string
		transactions []models.PaymentTransaction
		authorized   string
		captured     string
		available    string
	}{
		{
			name:      "no transactions",
			available: "150",
		},
		{
			name: "holds and captures both reduce availability",
			transactions: []models.PaymentTransaction{
				tx(models.PaymentTransactionStateAuthorized, "20"),
				tx(models.PaymentTransactionStateCompleted, "30"),
				tx(models.PaymentTransactionStatePosted, "40.5"),
			},
			authorized: "20",
			captured:   "70.5",
			available:  "59.5",
		},
		{
			name: "draft failed and canceled are ignored",
			transactions: []models.PaymentTransaction{
				tx(models.PaymentTransactionStateDraft, "10"),
				tx(models.PaymentTransactionStateFailed, "10"),
				tx(models.PaymentTransactionStateCanceled, "10"),
			},
			available: "150",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amounts := SumAmounts(dec("150"), tt.transactions)

			assertAmount(t, orZero(tt.authorized), amounts.Authorized)
			assertAmount(t, orZero(tt.captured), amounts.Captured)
			assertAmount(t, tt.available, amounts.Available)
			assertAmount(t, "150", amounts.Available.Add(amounts.Authorized).Add(amounts.Captured))
		})
	}
}

func orZero(value string) string {
	if value == "" {
		return "0"
	}
	return value
}

func TestLedgerService_FillReadsStoredTransactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	card := f.activeCard(t, "100")

	hold := f.giftCardPayment(t, card, "25")
	_, err := f.payments.Authorize(ctx, hold.ID.String())
	require.NoError(t, err)
	f.giftCardPayment(t, card, "10")

	require.NoError(t, f.ledger.Fill(nil, card))

	assertAmount(t, "25", card.AmountAuthorized)
	assertAmount(t, "0", card.AmountCaptured)
	assertAmount(t, "75", card.AmountAvailable)
}
