package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleState string

const (
	SaleStateDraft      SaleState = "draft"
	SaleStateConfirmed  SaleState = "confirmed"
	SaleStateProcessing SaleState = "processing"
	SaleStateDone       SaleState = "done"
	SaleStateCanceled   SaleState = "canceled"
)

type LineType string

const (
	LineTypeLine     LineType = "line"
	LineTypeGiftCard LineType = "gift_card"
)

type Sale struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Reference    *string    `gorm:"type:varchar(64)" json:"reference,omitempty"`
	PartyName    string     `gorm:"type:varchar(255);not null" json:"party_name"`
	PartyEmail   *string    `gorm:"type:varchar(255)" json:"party_email,omitempty"`
	CurrencyCode string     `gorm:"type:varchar(3);not null" json:"currency"`
	State        SaleState  `gorm:"type:varchar(20);not null;index" json:"state"`
	Lines        []SaleLine `gorm:"foreignKey:SaleID" json:"lines"`

	UntaxedAmount decimal.Decimal `gorm:"-" json:"untaxed_amount"`
	TotalAmount   decimal.Decimal `gorm:"-" json:"total_amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// GiftCardLineDetails holds the personalization a gift card line carries
// over to the cards it issues.
type GiftCardLineDetails struct {
	RecipientEmail *string `gorm:"type:varchar(255)" json:"recipient_email,omitempty"`
	RecipientName  *string `gorm:"type:varchar(255)" json:"recipient_name,omitempty"`
	Message        *string `gorm:"type:text" json:"message,omitempty"`
}

type SaleLine struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"sale_id"`
	Sequence    int                 `gorm:"not null" json:"sequence"`
	Type        LineType            `gorm:"type:varchar(20);not null" json:"type"`
	ProductID   *uuid.UUID          `gorm:"type:uuid" json:"product_id,omitempty"`
	Description string              `gorm:"type:text" json:"description"`
	Quantity    decimal.Decimal     `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice   decimal.Decimal     `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	GiftCard    GiftCardLineDetails `gorm:"embedded;embeddedPrefix:gc_" json:"gift_card"`
	GiftCards   []GiftCard          `gorm:"foreignKey:SaleLineID" json:"gift_cards,omitempty"`

	Amount decimal.Decimal `gorm:"-" json:"amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l *SaleLine) BeforeCreate(tx *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

// GiftCardDetails returns the gift card component of the line; ok is false
// for lines that do not sell gift cards.
func (l *SaleLine) GiftCardDetails() (details *GiftCardLineDetails, ok bool) {
	if l.Type != LineTypeGiftCard {
		return nil, false
	}
	return &l.GiftCard, true
}

type SaleCreateRequest struct {
	Reference  *string                 `json:"reference,omitempty" validate:"omitempty,max=64"`
	PartyName  string                  `json:"party_name" validate:"required,max=255"`
	PartyEmail *string                 `json:"party_email,omitempty" validate:"omitempty,email"`
	Currency   string                  `json:"currency" validate:"required,len=3"`
	Lines      []SaleLineCreateRequest `json:"lines" validate:"required,min=1,dive"`
}

type SaleLineCreateRequest struct {
	Type           LineType        `json:"type" validate:"required,oneof=line gift_card"`
	ProductID      *string         `json:"product_id,omitempty" validate:"required_if=Type gift_card,omitempty,uuid"`
	Description    string          `json:"description" validate:"max=1000"`
	Quantity       decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice      decimal.Decimal `json:"unit_price" validate:"gte=0"`
	RecipientEmail *string         `json:"recipient_email,omitempty" validate:"omitempty,email"`
	RecipientName  *string         `json:"recipient_name,omitempty" validate:"omitempty,max=255"`
	Message        *string         `json:"message,omitempty" validate:"omitempty,max=2000"`
}
