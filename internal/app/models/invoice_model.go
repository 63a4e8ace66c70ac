package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceState string

const (
	InvoiceStateDraft    InvoiceState = "draft"
	InvoiceStatePosted   InvoiceState = "posted"
	InvoiceStatePaid     InvoiceState = "paid"
	InvoiceStateCanceled InvoiceState = "canceled"
)

type Invoice struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID       *uuid.UUID    `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	CurrencyCode string        `gorm:"type:varchar(3);not null" json:"currency"`
	State        InvoiceState  `gorm:"type:varchar(20);not null;index" json:"state"`
	Lines        []InvoiceLine `gorm:"foreignKey:InvoiceID" json:"lines"`

	UntaxedAmount decimal.Decimal `gorm:"-" json:"untaxed_amount"`
	TotalAmount   decimal.Decimal `gorm:"-" json:"total_amount"`

	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

type InvoiceLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	SaleLineID  *uuid.UUID      `gorm:"type:uuid;index" json:"sale_line_id,omitempty"`
	Type        LineType        `gorm:"type:varchar(20);not null" json:"type"`
	AccountCode *string         `gorm:"type:varchar(32)" json:"account,omitempty"`
	Description string          `gorm:"type:text" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	Message     *string         `gorm:"type:text" json:"message,omitempty"`

	Amount decimal.Decimal `gorm:"-" json:"amount"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (l *InvoiceLine) BeforeCreate(tx *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
