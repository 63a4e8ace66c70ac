package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentProvider string

const (
	// PaymentProviderSelf is the internal provider; it settles manual and
	// gift card payments without an external processor.
	PaymentProviderSelf   PaymentProvider = "self"
	PaymentProviderStripe PaymentProvider = "stripe"
)

type PaymentMethod string

const (
	PaymentMethodManual     PaymentMethod = "manual"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodGiftCard   PaymentMethod = "gift_card"
)

type PaymentGateway struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Provider  PaymentProvider `gorm:"type:varchar(50);not null" json:"provider"`
	Method    PaymentMethod   `gorm:"type:varchar(50);not null" json:"method"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (g *PaymentGateway) BeforeCreate(tx *gorm.DB) error {
	ensureID(&g.ID)
	return nil
}

// Methods lists the payment methods the gateway accepts. Gift cards are only
// offered by the internal provider.
func (g *PaymentGateway) Methods() []PaymentMethod {
	var methods []PaymentMethod
	if g.Method != "" {
		methods = append(methods, g.Method)
	}
	if g.Provider != PaymentProviderSelf {
		return methods
	}
	for _, method := range methods {
		if method == PaymentMethodGiftCard {
			return methods
		}
	}
	return append(methods, PaymentMethodGiftCard)
}

func (g *PaymentGateway) Supports(method PaymentMethod) bool {
	for _, m := range g.Methods() {
		if m == method {
			return true
		}
	}
	return false
}

type PaymentGatewayCreateRequest struct {
	Name     string          `json:"name" validate:"required,max=255"`
	Provider PaymentProvider `json:"provider" validate:"required,oneof=self stripe"`
	Method   PaymentMethod   `json:"method" validate:"required,oneof=manual credit_card gift_card"`
}
