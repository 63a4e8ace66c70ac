package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Currency struct {
	Code      string    `gorm:"type:varchar(3);primaryKey" json:"code"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Symbol    string    `gorm:"type:varchar(10)" json:"symbol"`
	Digits    int       `gorm:"not null" json:"digits"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Round rounds amount to the currency precision.
func (c *Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(int32(c.Digits))
}

// DefaultCurrencyDigits applies when a currency is created without digits.
const DefaultCurrencyDigits = 2

type CurrencyCreateRequest struct {
	Code   string `json:"code" validate:"required,len=3"`
	Name   string `json:"name" validate:"required,max=100"`
	Symbol string `json:"symbol" validate:"omitempty,max=10"`
	Digits *int   `json:"digits,omitempty" validate:"omitempty,min=0,max=6"`
}
