package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

// AuditLog represents a record of changes made to any entity in the system
type AuditLog struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	TableName string         `json:"table_name" gorm:"type:varchar(50);not null"`
	RecordID  uuid.UUID      `json:"record_id" gorm:"type:uuid;not null;index"`
	Action    AuditAction    `json:"action" gorm:"type:varchar(20);not null"`
	OldData   datatypes.JSON `json:"old_data,omitempty"`
	NewData   datatypes.JSON `json:"new_data,omitempty"`
	ChangedAt time.Time      `json:"changed_at" gorm:"not null"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// GiftCardStateHistory records every state transition of a gift card
type GiftCardStateHistory struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	GiftCardID uuid.UUID      `json:"gift_card_id" gorm:"type:uuid;not null;index"`
	FromState  GiftCardState  `json:"from_state" gorm:"type:varchar(16);not null"`
	ToState    GiftCardState  `json:"to_state" gorm:"type:varchar(16);not null"`
	Transition string         `json:"transition" gorm:"type:varchar(32);not null"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at" gorm:"not null"`
}

func (h *GiftCardStateHistory) BeforeCreate(tx *gorm.DB) error {
	ensureID(&h.ID)
	return nil
}
