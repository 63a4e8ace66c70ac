package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentTransactionState string

const (
	PaymentTransactionStateDraft      PaymentTransactionState = "draft"
	PaymentTransactionStateAuthorized PaymentTransactionState = "authorized"
	PaymentTransactionStateCompleted  PaymentTransactionState = "completed"
	PaymentTransactionStatePosted     PaymentTransactionState = "posted"
	PaymentTransactionStateFailed     PaymentTransactionState = "failed"
	PaymentTransactionStateCanceled   PaymentTransactionState = "canceled"
)

type PaymentTransaction struct {
	ID                uuid.UUID               `json:"id" gorm:"type:uuid;primaryKey"`
	GatewayID         uuid.UUID               `json:"gateway_id" gorm:"type:uuid;not null;index"`
	Method            PaymentMethod           `json:"method" gorm:"type:varchar(50);not null"`
	Amount            decimal.Decimal         `json:"amount" gorm:"type:decimal(18,4);not null"`
	CurrencyCode      string                  `json:"currency" gorm:"type:varchar(3);not null"`
	State             PaymentTransactionState `json:"state" gorm:"type:varchar(20);not null;index"`
	GiftCardID        *uuid.UUID              `json:"gift_card_id,omitempty" gorm:"type:uuid;index"`
	Description       *string                 `json:"description,omitempty" gorm:"type:text"`
	ProviderReference *string                 `json:"provider_reference,omitempty" gorm:"type:varchar(255)"`
	CreatedAt         time.Time               `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time               `json:"updated_at" gorm:"autoUpdateTime"`
	PostedAt          *time.Time              `json:"posted_at,omitempty"`
}

func (t *PaymentTransaction) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

type PaymentTransactionCreateRequest struct {
	GatewayID   string          `json:"gateway_id" validate:"required,uuid"`
	Method      PaymentMethod   `json:"method" validate:"required,oneof=manual credit_card gift_card"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Currency    string          `json:"currency" validate:"required,len=3"`
	GiftCardID  *string         `json:"gift_card_id,omitempty" validate:"required_if=Method gift_card,omitempty,uuid"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=1000"`
}
