package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GiftCardDeliveryMode string

const (
	GiftCardDeliveryVirtual  GiftCardDeliveryMode = "virtual"
	GiftCardDeliveryPhysical GiftCardDeliveryMode = "physical"
	GiftCardDeliveryCombined GiftCardDeliveryMode = "combined"
)

type Product struct {
	ID                   uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	Code                 *string              `gorm:"type:varchar(64);uniqueIndex" json:"code,omitempty"`
	Name                 string               `gorm:"type:varchar(255);not null" json:"name"`
	ListPrice            decimal.Decimal      `gorm:"type:decimal(18,4);not null" json:"list_price"`
	IsGiftCard           bool                 `gorm:"not null" json:"is_gift_card"`
	GiftCardDeliveryMode GiftCardDeliveryMode `gorm:"type:varchar(20)" json:"gift_card_delivery_mode,omitempty"`
	AllowOpenAmount      bool                 `gorm:"not null" json:"allow_open_amount"`
	GcMin                decimal.Decimal      `gorm:"type:decimal(18,4);not null" json:"gc_min"`
	GcMax                decimal.Decimal      `gorm:"type:decimal(18,4);not null" json:"gc_max"`
	CreatedAt            time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// AcceptsAmount reports whether a gift card of the given face value may be
// issued for this product.
func (p *Product) AcceptsAmount(amount decimal.Decimal) bool {
	if p.AllowOpenAmount {
		return true
	}
	return amount.GreaterThanOrEqual(p.GcMin) && amount.LessThanOrEqual(p.GcMax)
}

// EmailsRecipient reports whether issued cards are delivered by email.
func (p *Product) EmailsRecipient() bool {
	return p.GiftCardDeliveryMode == GiftCardDeliveryVirtual || p.GiftCardDeliveryMode == GiftCardDeliveryCombined
}

type ProductCreateRequest struct {
	Code                 *string              `json:"code,omitempty" validate:"omitempty,max=64"`
	Name                 string               `json:"name" validate:"required,max=255"`
	ListPrice            decimal.Decimal      `json:"list_price" validate:"gte=0"`
	IsGiftCard           bool                 `json:"is_gift_card"`
	GiftCardDeliveryMode GiftCardDeliveryMode `json:"gift_card_delivery_mode,omitempty" validate:"required_if=IsGiftCard true,omitempty,oneof=virtual physical combined"`
	AllowOpenAmount      bool                 `json:"allow_open_amount"`
	GcMin                decimal.Decimal      `json:"gc_min" validate:"gte=0"`
	GcMax                decimal.Decimal      `json:"gc_max" validate:"gte=0"`
}
