package models

import "time"

type AccountKind string

const (
	AccountKindRevenue    AccountKind = "revenue"
	AccountKindExpense    AccountKind = "expense"
	AccountKindReceivable AccountKind = "receivable"
	AccountKindPayable    AccountKind = "payable"
	AccountKindOther      AccountKind = "other"
)

// Account is a chart-of-accounts entry referenced by invoice lines.
type Account struct {
	Code      string      `gorm:"type:varchar(32);primaryKey" json:"code"`
	Name      string      `gorm:"type:varchar(255);not null" json:"name"`
	Kind      AccountKind `gorm:"type:varchar(20);not null" json:"kind"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type AccountCreateRequest struct {
	Code string      `json:"code" validate:"required,max=32"`
	Name string      `json:"name" validate:"required,max=255"`
	Kind AccountKind `json:"kind" validate:"required,oneof=revenue expense receivable payable other"`
}
