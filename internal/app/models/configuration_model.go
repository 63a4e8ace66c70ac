package models

import "time"

type GiftCardCreationMethod string

const (
	// Cards are issued when the sale is processed.
	GiftCardCreationOnOrder GiftCardCreationMethod = "order"
	// Cards are issued as invoices covering the line are paid.
	GiftCardCreationOnInvoicePaid GiftCardCreationMethod = "invoice"
)

const (
	ConfigurationID       uint   = 1
	DefaultNumberSequence string = "gift_card"
)

// Configuration is a singleton row holding the gift card settings.
type Configuration struct {
	ID                     uint                   `gorm:"primaryKey" json:"-"`
	LiabilityAccountCode   *string                `gorm:"type:varchar(32)" json:"liability_account"`
	NumberSequence         string                 `gorm:"type:varchar(64);not null" json:"number_sequence"`
	GiftCardCreationMethod GiftCardCreationMethod `gorm:"type:varchar(20);not null" json:"gift_card_creation_method"`
	MailFrom               string                 `gorm:"type:varchar(255)" json:"mail_from"`
	UpdatedAt              time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Configuration) HasLiabilityAccount() bool {
	return c.LiabilityAccountCode != nil && *c.LiabilityAccountCode != ""
}

type ConfigurationUpdateRequest struct {
	LiabilityAccountCode   *string                 `json:"liability_account,omitempty" validate:"omitempty,max=32"`
	NumberSequence         *string                 `json:"number_sequence,omitempty" validate:"omitempty,max=64"`
	GiftCardCreationMethod *GiftCardCreationMethod `json:"gift_card_creation_method,omitempty" validate:"omitempty,oneof=order invoice"`
	MailFrom               *string                 `json:"mail_from,omitempty" validate:"omitempty,email"`
}
