package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GiftCardState string

const (
	GiftCardStateDraft    GiftCardState = "draft"
	GiftCardStateActive   GiftCardState = "active"
	GiftCardStateCanceled GiftCardState = "canceled"
	GiftCardStateUsed     GiftCardState = "used"
)

const OriginTypeSale = "sale"

type GiftCard struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Number         *string         `gorm:"type:varchar(64);uniqueIndex" json:"number"`
	CurrencyCode   string          `gorm:"type:varchar(3);not null" json:"currency"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	State          GiftCardState   `gorm:"type:varchar(16);not null;index" json:"state"`
	OriginType     *string         `gorm:"type:varchar(50)" json:"origin_type,omitempty"`
	OriginID       *uuid.UUID      `gorm:"type:uuid" json:"origin_id,omitempty"`
	SaleLineID     *uuid.UUID      `gorm:"type:uuid;index" json:"sale_line_id,omitempty"`
	RecipientEmail *string         `gorm:"type:varchar(255)" json:"recipient_email,omitempty"`
	RecipientName  *string         `gorm:"type:varchar(255)" json:"recipient_name,omitempty"`
	Message        *string         `gorm:"type:text" json:"message,omitempty"`
	Comment        *string         `gorm:"type:text" json:"comment,omitempty"`
	IsEmailSent    bool            `gorm:"not null" json:"is_email_sent"`

	// Derived from payment transactions on every read, never stored.
	AmountAuthorized decimal.Decimal `gorm:"-" json:"amount_authorized"`
	AmountCaptured   decimal.Decimal `gorm:"-" json:"amount_captured"`
	AmountAvailable  decimal.Decimal `gorm:"-" json:"amount_available"`

	PaymentTransactions []PaymentTransaction `gorm:"foreignKey:GiftCardID" json:"payment_transactions,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (g *GiftCard) BeforeCreate(tx *gorm.DB) error {
	ensureID(&g.ID)
	return nil
}

// DisplayNumber returns the card number, or an empty string while unassigned.
func (g *GiftCard) DisplayNumber() string {
	if g.Number == nil {
		return ""
	}
	return *g.Number
}

func (g *GiftCard) HasRecipientEmail() bool {
	return g.RecipientEmail != nil && *g.RecipientEmail != ""
}

type GiftCardCreateRequest struct {
	Amount         decimal.Decimal `json:"amount" validate:"gt=0"`
	Currency       string          `json:"currency" validate:"required,len=3"`
	RecipientEmail *string         `json:"recipient_email,omitempty" validate:"omitempty,email"`
	RecipientName  *string         `json:"recipient_name,omitempty" validate:"omitempty,max=255"`
	Message        *string         `json:"message,omitempty" validate:"omitempty,max=2000"`
	Comment        *string         `json:"comment,omitempty" validate:"omitempty,max=2000"`
	OriginType     *string         `json:"origin_type,omitempty" validate:"omitempty,max=50"`
	OriginID       *string         `json:"origin_id,omitempty" validate:"omitempty,uuid"`
}

type GiftCardUpdateRequest struct {
	Amount         *decimal.Decimal `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Currency       *string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	RecipientEmail *string          `json:"recipient_email,omitempty" validate:"omitempty,email"`
	RecipientName  *string          `json:"recipient_name,omitempty" validate:"omitempty,max=255"`
	Message        *string          `json:"message,omitempty" validate:"omitempty,max=2000"`
	Comment        *string          `json:"comment,omitempty" validate:"omitempty,max=2000"`
}
