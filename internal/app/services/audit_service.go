package services

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{
		db: db,
	}
}

func marshalJSON(value interface{}) (datatypes.JSON, error) {
	if value == nil {
		return nil, nil
	}
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(jsonBytes), nil
}

// LogAudit creates an audit log entry inside the caller's transaction
func (s *AuditService) LogAudit(tx *gorm.DB, tableName string, recordID uuid.UUID, action models.AuditAction, oldData, newData interface{}) error {
	oldJSON, err := marshalJSON(oldData)
	if err != nil {
		return fmt.Errorf("failed to marshal old data: %w", err)
	}
	newJSON, err := marshalJSON(newData)
	if err != nil {
		return fmt.Errorf("failed to marshal new data: %w", err)
	}

	auditLog := &models.AuditLog{
		TableName: tableName,
		RecordID:  recordID,
		Action:    action,
		OldData:   oldJSON,
		NewData:   newJSON,
		ChangedAt: time.Now(),
	}

	if err := tx.Create(auditLog).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to create audit log")
	}

	return nil
}

// LogGiftCardStateChange records a gift card transition
func (s *AuditService) LogGiftCardStateChange(
	tx *gorm.DB,
	giftCardID uuid.UUID,
	fromState, toState models.GiftCardState,
	transition string,
	metadata map[string]interface{},
) error {
	metadataJSON, err := marshalJSON(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	history := &models.GiftCardStateHistory{
		GiftCardID: giftCardID,
		FromState:  fromState,
		ToState:    toState,
		Transition: transition,
		Metadata:   metadataJSON,
		CreatedAt:  time.Now(),
	}

	if err := tx.Create(history).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to create gift card state history")
	}

	return nil
}

// GetGiftCardStateHistory retrieves the state history for a gift card, oldest first
func (s *AuditService) GetGiftCardStateHistory(giftCardID uuid.UUID) ([]models.GiftCardStateHistory, error) {
	var history []models.GiftCardStateHistory
	if err := s.db.Where("gift_card_id = ?", giftCardID).
		Order("created_at ASC").
		Find(&history).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get gift card state history")
	}

	return history, nil
}

// GetAuditLogs retrieves audit logs with pagination
func (s *AuditService) GetAuditLogs(pagination *models.PaginationRequest) (*models.Pagination[[]models.AuditLog], error) {
	normalizePagination(pagination)

	var totalItems int64
	if err := s.db.Model(&models.AuditLog{}).Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count audit logs")
	}

	var logs []models.AuditLog
	order := orderBy(pagination, clause.OrderByColumn{Column: clause.Column{Name: "changed_at"}, Desc: true},
		"changed_at", "table_name", "action")
	if err := s.db.Order(order).
		Limit(pagination.Limit).
		Offset((pagination.Page - 1) * pagination.Limit).
		Find(&logs).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get audit logs")
	}

	return paginate(pagination, totalItems, logs), nil
}

func normalizePagination(pagination *models.PaginationRequest) {
	if pagination.Limit <= 0 {
		pagination.Limit = 10
	}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}
}

// orderBy applies order_field when it names one of fields and order when it
// is asc or desc; anything else keeps the fallback ordering.
func orderBy(pagination *models.PaginationRequest, fallback clause.OrderByColumn, fields ...string) clause.OrderByColumn {
	order := fallback
	if slices.Contains(fields, pagination.OrderField) {
		order.Column = clause.Column{Name: pagination.OrderField}
	}
	switch strings.ToLower(pagination.Order) {
	case "asc":
		order.Desc = false
	case "desc":
		order.Desc = true
	}
	return order
}

func paginate[T any](pagination *models.PaginationRequest, totalItems int64, items []T) *models.Pagination[[]T] {
	totalPages := int((totalItems + int64(pagination.Limit) - 1) / int64(pagination.Limit))

	return &models.Pagination[[]T]{
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		TotalPages: totalPages,
		TotalItems: int(totalItems),
		HasNext:    pagination.Page < totalPages,
		HasPrev:    pagination.Page > 1,
		Items:      items,
	}
}
