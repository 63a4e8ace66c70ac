package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MailState string

const (
	MailStateQueued MailState = "queued"
	MailStateSent   MailState = "sent"
	MailStateFailed MailState = "failed"
)

// MailMessage is an outbox row; a delivery worker picks up queued rows.
type MailMessage struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FromAddress    string         `gorm:"type:varchar(255);not null" json:"from"`
	ToAddress      string         `gorm:"type:varchar(255);not null" json:"to"`
	Subject        string         `gorm:"type:varchar(255);not null" json:"subject"`
	HTMLBody       string         `gorm:"type:text;not null" json:"html_body"`
	AttachmentName *string        `gorm:"type:varchar(255)" json:"attachment_name,omitempty"`
	AttachmentType *string        `gorm:"type:varchar(100)" json:"attachment_type,omitempty"`
	Attachment     []byte         `json:"-"`
	Headers        datatypes.JSON `json:"headers,omitempty"`
	State          MailState      `gorm:"type:varchar(20);not null;index" json:"state"`
	ReferenceID    *uuid.UUID     `gorm:"type:uuid;index" json:"reference_id,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	SentAt         *time.Time     `json:"sent_at,omitempty"`
}

func (MailMessage) TableName() string {
	return "mail_queue"
}

func (m *MailMessage) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
