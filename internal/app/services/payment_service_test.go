package services

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertBalances(t *testing.T, card *models.GiftCard, authorized, captured, available string) {
	t.Helper()
	assertAmount(t, authorized, card.AmountAuthorized)
	assertAmount(t, captured, card.AmountCaptured)
	assertAmount(t, available, card.AmountAvailable)
	assertAmount(t, card.Amount.String(), card.AmountAvailable.Add(card.AmountAuthorized).Add(card.AmountCaptured))
}

func TestPaymentService_AuthorizeUntilExhausted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	card := f.activeCard(t, "150")

	first := f.giftCardPayment(t, card, "50")
	authorized, err := f.payments.Authorize(ctx, first.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentTransactionStateAuthorized, authorized.State)
	card = f.reload(t, card)
	assertBalances(t, card, "50", "0", "100")
	assert.Equal(t, models.GiftCardStateActive, card.State)

	second := f.giftCardPayment(t, card, "100")
	_, err = f.payments.Authorize(ctx, second.ID.String())
	require.NoError(t, err)
	card = f.reload(t, card)
	assertBalances(t, card, "150", "0", "0")
	assert.Equal(t, models.GiftCardStateActive, card.State, "holds alone never use up a card")

	third := f.giftCardPayment(t, card, "1")
	_, err = f.payments.Authorize(ctx, third.ID.String())
	require.ErrorIs(t, err, errors.ErrInsufficientFunds)

	var fundsErr *errors.InsufficientFundsError
	require.True(t, stderrors.As(err, &fundsErr))
	assert.Equal(t, *card.Number, fundsErr.CardNumber)
	assert.Contains(t, fundsErr.Error(), *card.Number)

	rejected, err := f.payments.GetTransaction(ctx, third.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentTransactionStateDraft, rejected.State)
	card = f.reload(t, card)
	assertBalances(t, card, "150", "0", "0")
	assert.Equal(t, models.GiftCardStateActive, card.State)
}

func TestPaymentService_CaptureUsesUpCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	card := f.activeCard(t, "200")

	first := f.giftCardPayment(t, card, "100")
	captured, err := f.payments.Capture(ctx, first.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentTransactionStatePosted, captured.State)
	assert.NotNil(t, captured.PostedAt)
	card = f.reload(t, card)
	assertBalances(t, card, "0", "100", "100")
	assert.Equal(t, models.GiftCardStateActive, card.State)

	second := f.giftCardPayment(t, card, "100")
	_, err = f.payments.Capture(ctx, second.ID.String())
	require.NoError(t, err)
	card = f.reload(t, card)
	assertBalances(t, card, "0", "200", "0")
	assert.Equal(t, models.GiftCardStateUsed, card.State)

	history, err := f.giftCards.GetStateHistory(ctx, card.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "use", history[len(history)-1].Transition)
}

func TestPaymentService_CaptureBeyondAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	card := f.activeCard(t, "30")

	payment := f.giftCardPayment(t, card, "30.01")
	_, err := f.payments.Capture(ctx, payment.ID.String())
	require.ErrorIs(t, err, errors.ErrInsufficientFunds)

	card = f.reload(t, card)
	assertBalances(t, card, "0", "0", "30")
	assert.Equal(t, models.GiftCardStateActive, card.State)
}

func TestPaymentService_SettleAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	card := f.activeCard(t, "200")

	first := f.giftCardPayment(t, card, "100")
	_, err := f.payments.Authorize(ctx, first.ID.String())
	require.NoError(t, err)
	assertBalances(t, f.reload(t, card), "100", "0", "100")

	second := f.giftCardPayment(t, card, "50")
	_, err = f.payments.Authorize(ctx, second.ID.String())
	require.NoError(t, err)
	assertBalances(t, f.reload(t, card), "150", "0", "50")

	settled, err := f.payments.Settle(ctx, second.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentTransactionStatePosted, settled.State)
	card = f.reload(t, card)
	assertBalances(t, card, "100", "50", "50")
	assert.Equal(t, models.GiftCardStateActive, card.State)
}

func TestPaymentService_SettlingLastHoldUsesUpCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	card := f.activeCard(t, "80")

	payment := f.giftCardPayment(t, card, "80")
	_, err := f.payments.Authorize(ctx, payment.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.GiftCardStateActive, f.reload(t, card).State)

	_, err = f.payments.Settle(ctx, payment.ID.String())
	require.NoError(t, err)

	card = f.reload(t, card)
	assertBalances(t, card, "0", "80", "0")
	assert.Equal(t, models.GiftCardStateUsed, card.State)
}

func TestPaymentService_CancelReleasesHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	card := f.activeCard(t, "50")

	payment := f.giftCardPayment(t, card, "20")
	_, err := f.payments.Authorize(ctx, payment.ID.String())
	require.NoError(t, err)

	canceled, err := f.payments.Cancel(ctx, payment.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentTransactionStateCanceled, canceled.State)
	assertBalances(t, f.reload(t, card), "0", "0", "50")

	_, err = f.payments.Settle(ctx, payment.ID.String())
	assert.ErrorIs(t, err, errors.ErrState)
}

func TestPaymentService_TransactionStateGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	card := f.activeCard(t, "50")
	payment := f.giftCardPayment(t, card, "10")

	_, err := f.payments.Settle(ctx, payment.ID.String())
	assert.ErrorIs(t, err, errors.ErrState, "only authorized transactions settle")

	_, err = f.payments.Post(ctx, payment.ID.String())
	assert.ErrorIs(t, err, errors.ErrState, "only completed transactions post")

	_, err = f.payments.Capture(ctx, payment.ID.String())
	require.NoError(t, err)

	_, err = f.payments.Cancel(ctx, payment.ID.String())
	assert.ErrorIs(t, err, errors.ErrState, "posted transactions cannot be canceled")
}

func TestPaymentService_CardMustBeActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	card := f.activeCard(t, "50")
	payment := f.giftCardPayment(t, card, "10")

	_, err := f.giftCards.Cancel(ctx, []string{card.ID.String()})
	require.NoError(t, err)

	_, err = f.payments.Authorize(ctx, payment.ID.String())
	assert.ErrorIs(t, err, errors.ErrState)

	draft := f.createCard(t, "50", nil)
	_, err = f.payments.CreateTransaction(ctx, &models.PaymentTransactionCreateRequest{
		GatewayID:  f.selfGatewayID,
		Method:     models.PaymentMethodGiftCard,
		Amount:     dec("10"),
		Currency:   "USD",
		GiftCardID: ptr(draft.ID.String()),
	})
	assert.ErrorIs(t, err, errors.ErrState)
}

func TestPaymentService_CreateTransactionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	card := f.activeCard(t, "50")

	t.Run("currency mismatch", func(t *testing.T) {
		_, err := f.payments.CreateTransaction(ctx, &models.PaymentTransactionCreateRequest{
			GatewayID:  f.selfGatewayID,
			Method:     models.PaymentMethodGiftCard,
			Amount:     dec("10"),
			Currency:   "IDR",
			GiftCardID: ptr(card.ID.String()),
		})
		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.StatusCode)
	})

	t.Run("gift card required", func(t *testing.T) {
		_, err := f.payments.CreateTransaction(ctx, &models.PaymentTransactionCreateRequest{
			GatewayID: f.selfGatewayID,
			Method:    models.PaymentMethodGiftCard,
			Amount:    dec("10"),
			Currency:  "USD",
		})
		require.Error(t, err)
	})

	t.Run("amount that rounds to zero", func(t *testing.T) {
		_, err := f.payments.CreateTransaction(ctx, &models.PaymentTransactionCreateRequest{
			GatewayID:  f.selfGatewayID,
			Method:     models.PaymentMethodGiftCard,
			Amount:     dec("0.004"),
			Currency:   "USD",
			GiftCardID: ptr(card.ID.String()),
		})
		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.StatusCode)

		var count int64
		require.NoError(t, f.db.Model(&models.PaymentTransaction{}).Where("gift_card_id = ?", card.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("external gateway does not take gift cards", func(t *testing.T) {
		gateway, err := f.payments.CreateGateway(ctx, &models.PaymentGatewayCreateRequest{
			Name:     "Stripe",
			Provider: models.PaymentProviderStripe,
			Method:   models.PaymentMethodCreditCard,
		})
		require.NoError(t, err)

		_, err = f.payments.CreateTransaction(ctx, &models.PaymentTransactionCreateRequest{
			GatewayID:  gateway.ID.String(),
			Method:     models.PaymentMethodGiftCard,
			Amount:     dec("10"),
			Currency:   "USD",
			GiftCardID: ptr(card.ID.String()),
		})
		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.StatusCode)
	})
}

func TestPaymentService_ManualPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	payment, err := f.payments.CreateTransaction(ctx, &models.PaymentTransactionCreateRequest{
		GatewayID: f.selfGatewayID,
		Method:    models.PaymentMethodManual,
		Amount:    dec("12.345"),
		Currency:  "USD",
	})
	require.NoError(t, err)
	assertAmount(t, "12.35", payment.Amount)

	captured, err := f.payments.Capture(ctx, payment.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentTransactionStatePosted, captured.State)
}

func TestPaymentService_GetMethods(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	methods, err := f.payments.GetMethods(ctx, f.selfGatewayID)
	require.NoError(t, err)
	assert.Equal(t, []models.PaymentMethod{models.PaymentMethodManual, models.PaymentMethodGiftCard}, methods)

	giftCardGateway, err := f.payments.CreateGateway(ctx, &models.PaymentGatewayCreateRequest{
		Name:     "Gift cards",
		Provider: models.PaymentProviderSelf,
		Method:   models.PaymentMethodGiftCard,
	})
	require.NoError(t, err)
	methods, err = f.payments.GetMethods(ctx, giftCardGateway.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []models.PaymentMethod{models.PaymentMethodGiftCard}, methods)

	stripe, err := f.payments.CreateGateway(ctx, &models.PaymentGatewayCreateRequest{
		Name:     "Stripe",
		Provider: models.PaymentProviderStripe,
		Method:   models.PaymentMethodCreditCard,
	})
	require.NoError(t, err)
	methods, err = f.payments.GetMethods(ctx, stripe.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []models.PaymentMethod{models.PaymentMethodCreditCard}, methods)
}
