package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentGateway_Methods(t *testing.T) {
	tests := []struct {
		name    string
		gateway PaymentGateway
		want    []PaymentMethod
	}{
		{
			name:    "self provider adds gift card",
			gateway: PaymentGateway{Provider: PaymentProviderSelf, Method: PaymentMethodManual},
			want:    []PaymentMethod{PaymentMethodManual, PaymentMethodGiftCard},
		},
		{
			name:    "gift card is never listed twice",
			gateway: PaymentGateway{Provider: PaymentProviderSelf, Method: PaymentMethodGiftCard},
			want:    []PaymentMethod{PaymentMethodGiftCard},
		},
		{
			name:    "external provider",
			gateway: PaymentGateway{Provider: PaymentProviderStripe, Method: PaymentMethodCreditCard},
			want:    []PaymentMethod{PaymentMethodCreditCard},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.gateway.Methods())
		})
	}

	stripe := PaymentGateway{Provider: PaymentProviderStripe, Method: PaymentMethodCreditCard}
	assert.False(t, stripe.Supports(PaymentMethodGiftCard))
}

func TestProduct_AcceptsAmount(t *testing.T) {
	product := Product{IsGiftCard: true, GcMin: decimal.NewFromInt(100), GcMax: decimal.NewFromInt(500)}

	assert.False(t, product.AcceptsAmount(decimal.NewFromInt(50)))
	assert.True(t, product.AcceptsAmount(decimal.NewFromInt(100)))
	assert.True(t, product.AcceptsAmount(decimal.NewFromInt(500)))
	assert.False(t, product.AcceptsAmount(decimal.RequireFromString("500.01")))

	product.AllowOpenAmount = true
	assert.True(t, product.AcceptsAmount(decimal.NewFromInt(50)))
}

func TestProduct_EmailsRecipient(t *testing.T) {
	assert.True(t, (&Product{GiftCardDeliveryMode: GiftCardDeliveryVirtual}).EmailsRecipient())
	assert.True(t, (&Product{GiftCardDeliveryMode: GiftCardDeliveryCombined}).EmailsRecipient())
	assert.False(t, (&Product{GiftCardDeliveryMode: GiftCardDeliveryPhysical}).EmailsRecipient())
}

func TestSaleLine_GiftCardDetails(t *testing.T) {
	message := "Cheers"
	line := SaleLine{Type: LineTypeGiftCard, GiftCard: GiftCardLineDetails{Message: &message}}

	details, ok := line.GiftCardDetails()
	assert.True(t, ok)
	assert.Equal(t, "Cheers", *details.Message)

	line.Type = LineTypeLine
	_, ok = line.GiftCardDetails()
	assert.False(t, ok)
}

func TestSequence_Format(t *testing.T) {
	assert.Equal(t, "GC00000012", (&Sequence{Prefix: "GC", Padding: 8}).Format(12))
	assert.Equal(t, "7", (&Sequence{}).Format(7))
}
