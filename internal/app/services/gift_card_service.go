package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/safatanc/gsalt-giftcard/internal/infrastructures"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GiftCardService struct {
	db              *gorm.DB
	validator       *infrastructures.Validator
	ledgerService   *LedgerService
	currencyService *CurrencyService
	configService   *ConfigurationService
	sequence        SequenceGenerator
	mailService     *MailService
	auditService    *AuditService
	workflow        *GiftCardWorkflow
}

func NewGiftCardService(
	db *gorm.DB,
	validator *infrastructures.Validator,
	ledgerService *LedgerService,
	currencyService *CurrencyService,
	configService *ConfigurationService,
	sequence SequenceGenerator,
	mailService *MailService,
	auditService *AuditService,
) *GiftCardService {
	s := &GiftCardService{
		db:              db,
		validator:       validator,
		ledgerService:   ledgerService,
		currencyService: currencyService,
		configService:   configService,
		sequence:        sequence,
		mailService:     mailService,
		auditService:    auditService,
		workflow:        NewGiftCardWorkflow(auditService),
	}

	s.workflow.OnEnter(models.GiftCardStateActive, s.assignNumber, s.sendIssuanceEmail)

	return s
}

func saveGiftCard(tx *gorm.DB, card *models.GiftCard) error {
	if err := tx.Omit(clause.Associations).Save(card).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to save gift card")
	}
	return nil
}

func parseIDs(ids []string) ([]uuid.UUID, error) {
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		parsedID, err := uuid.Parse(id)
		if err != nil {
			return nil, errors.NewBadRequestError("Invalid gift card ID format")
		}
		parsed = append(parsed, parsedID)
	}
	return parsed, nil
}

func (s *GiftCardService) CreateGiftCard(ctx context.Context, req *models.GiftCardCreateRequest) (*models.GiftCard, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	card := &models.GiftCard{
		CurrencyCode:   req.Currency,
		State:          models.GiftCardStateDraft,
		OriginType:     req.OriginType,
		RecipientEmail: req.RecipientEmail,
		RecipientName:  req.RecipientName,
		Message:        req.Message,
		Comment:        req.Comment,
	}

	if req.OriginID != nil {
		originID, err := uuid.Parse(*req.OriginID)
		if err != nil {
			return nil, errors.NewBadRequestError("Invalid origin ID format")
		}
		card.OriginID = &originID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currency, err := s.currencyService.Find(tx, req.Currency)
		if err != nil {
			return err
		}
		card.Amount = currency.Round(req.Amount)

		return s.CreateInTx(tx, card)
	})
	if err != nil {
		return nil, err
	}

	card.AmountAvailable = card.Amount
	return card, nil
}

// CreateInTx inserts a draft card and records the creation.
func (s *GiftCardService) CreateInTx(tx *gorm.DB, card *models.GiftCard) error {
	card.State = models.GiftCardStateDraft
	card.Number = nil
	card.IsEmailSent = false

	if err := requirePositiveAmount("Gift card", card.CurrencyCode, card.Amount); err != nil {
		return err
	}
	if err := tx.Omit(clause.Associations).Create(card).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to create gift card")
	}

	return s.auditService.LogAudit(tx, "gift_cards", card.ID, models.AuditActionCreate, nil, card)
}

func (s *GiftCardService) findGiftCard(tx *gorm.DB, query string, args ...interface{}) (*models.GiftCard, error) {
	var card models.GiftCard
	err := tx.Preload("PaymentTransactions", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Where(query, args...).First(&card).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Gift card not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get gift card")
	}

	amounts := SumAmounts(card.Amount, card.PaymentTransactions)
	card.AmountAuthorized = amounts.Authorized
	card.AmountCaptured = amounts.Captured
	card.AmountAvailable = amounts.Available

	return &card, nil
}

func (s *GiftCardService) GetGiftCard(ctx context.Context, giftCardID string) (*models.GiftCard, error) {
	id, err := uuid.Parse(giftCardID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid gift card ID format")
	}

	return s.findGiftCard(s.db.WithContext(ctx), "id = ?", id)
}

func (s *GiftCardService) GetGiftCardByNumber(ctx context.Context, number string) (*models.GiftCard, error) {
	return s.findGiftCard(s.db.WithContext(ctx), "number = ?", number)
}

func (s *GiftCardService) GetGiftCards(ctx context.Context, pagination *models.PaginationRequest, state *models.GiftCardState) (*models.Pagination[[]models.GiftCard], error) {
	normalizePagination(pagination)
	db := s.db.WithContext(ctx)

	countQuery := db.Model(&models.GiftCard{})
	if state != nil {
		countQuery = countQuery.Where("state = ?", *state)
	}

	var totalItems int64
	if err := countQuery.Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count gift cards")
	}

	order := orderBy(pagination, clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true},
		"created_at", "updated_at", "number", "amount", "state")
	query := db.Order(order)
	if state != nil {
		query = query.Where("state = ?", *state)
	}

	var cards []models.GiftCard
	if err := query.Limit(pagination.Limit).Offset((pagination.Page - 1) * pagination.Limit).Find(&cards).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get gift cards")
	}

	if err := s.fillAmounts(db, cards); err != nil {
		return nil, err
	}

	return paginate(pagination, totalItems, cards), nil
}

// fillAmounts loads the transactions of all cards in one query and folds
// them per card.
func (s *GiftCardService) fillAmounts(tx *gorm.DB, cards []models.GiftCard) error {
	if len(cards) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(cards))
	for i := range cards {
		ids[i] = cards[i].ID
	}

	var transactions []models.PaymentTransaction
	if err := tx.Where("gift_card_id IN ?", ids).Find(&transactions).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to get gift card transactions")
	}

	byCard := make(map[uuid.UUID][]models.PaymentTransaction, len(cards))
	for _, transaction := range transactions {
		byCard[*transaction.GiftCardID] = append(byCard[*transaction.GiftCardID], transaction)
	}

	for i := range cards {
		amounts := SumAmounts(cards[i].Amount, byCard[cards[i].ID])
		cards[i].AmountAuthorized = amounts.Authorized
		cards[i].AmountCaptured = amounts.Captured
		cards[i].AmountAvailable = amounts.Available
	}
	return nil
}

// LockGiftCard loads a card with a row lock held until tx ends.
func (s *GiftCardService) LockGiftCard(tx *gorm.DB, id uuid.UUID) (*models.GiftCard, error) {
	var card models.GiftCard
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&card).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Gift card not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get gift card")
	}
	return &card, nil
}

func (s *GiftCardService) lockGiftCards(tx *gorm.DB, ids []uuid.UUID) ([]*models.GiftCard, error) {
	var cards []*models.GiftCard
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id IN ?", ids).Order("created_at ASC").Find(&cards).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get gift cards")
	}

	found := make(map[uuid.UUID]bool, len(cards))
	for _, card := range cards {
		found[card.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, errors.NewNotFoundError(fmt.Sprintf("Gift card %s not found", id))
		}
	}
	return cards, nil
}

func (s *GiftCardService) UpdateGiftCard(ctx context.Context, giftCardID string, req *models.GiftCardUpdateRequest) (*models.GiftCard, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(giftCardID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid gift card ID format")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := s.LockGiftCard(tx, id)
		if err != nil {
			return err
		}
		if card.State != models.GiftCardStateDraft {
			return errors.NewStateError(fmt.Sprintf("Gift card %s can only be modified in draft state", cardLabel(card)))
		}
		before := *card

		if req.Currency != nil {
			card.CurrencyCode = *req.Currency
		}
		currency, err := s.currencyService.Find(tx, card.CurrencyCode)
		if err != nil {
			return err
		}
		if req.Amount != nil {
			card.Amount = *req.Amount
		}
		card.Amount = currency.Round(card.Amount)
		if err := requirePositiveAmount("Gift card", card.CurrencyCode, card.Amount); err != nil {
			return err
		}

		if req.RecipientEmail != nil {
			card.RecipientEmail = req.RecipientEmail
		}
		if req.RecipientName != nil {
			card.RecipientName = req.RecipientName
		}
		if req.Message != nil {
			card.Message = req.Message
		}
		if req.Comment != nil {
			card.Comment = req.Comment
		}

		if err := saveGiftCard(tx, card); err != nil {
			return err
		}
		return s.auditService.LogAudit(tx, "gift_cards", card.ID, models.AuditActionUpdate, before, card)
	})
	if err != nil {
		return nil, err
	}

	return s.GetGiftCard(ctx, giftCardID)
}

// DeleteGiftCard removes a card; active cards cannot be deleted.
func (s *GiftCardService) DeleteGiftCard(ctx context.Context, giftCardID string) error {
	id, err := uuid.Parse(giftCardID)
	if err != nil {
		return errors.NewBadRequestError("Invalid gift card ID format")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := s.LockGiftCard(tx, id)
		if err != nil {
			return err
		}
		if card.State == models.GiftCardStateActive {
			return errors.NewStateError(fmt.Sprintf("Active gift card %s cannot be deleted", cardLabel(card)))
		}

		if err := tx.Delete(card).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to delete gift card")
		}
		return s.auditService.LogAudit(tx, "gift_cards", card.ID, models.AuditActionDelete, card, nil)
	})
}

// CopyGiftCard creates a fresh draft card with the face value and
// personalization of an existing one.
func (s *GiftCardService) CopyGiftCard(ctx context.Context, giftCardID string) (*models.GiftCard, error) {
	id, err := uuid.Parse(giftCardID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid gift card ID format")
	}

	var duplicate *models.GiftCard
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		original, err := s.findGiftCard(tx, "id = ?", id)
		if err != nil {
			return err
		}

		duplicate = &models.GiftCard{
			CurrencyCode:   original.CurrencyCode,
			Amount:         original.Amount,
			OriginType:     original.OriginType,
			OriginID:       original.OriginID,
			RecipientEmail: original.RecipientEmail,
			RecipientName:  original.RecipientName,
			Message:        original.Message,
			Comment:        original.Comment,
		}
		return s.CreateInTx(tx, duplicate)
	})
	if err != nil {
		return nil, err
	}

	duplicate.AmountAvailable = duplicate.Amount
	return duplicate, nil
}

func (s *GiftCardService) Activate(ctx context.Context, ids []string) ([]*models.GiftCard, error) {
	return s.transition(ctx, ids, TransitionActivate)
}

func (s *GiftCardService) Cancel(ctx context.Context, ids []string) ([]*models.GiftCard, error) {
	return s.transition(ctx, ids, TransitionCancel)
}

func (s *GiftCardService) Draft(ctx context.Context, ids []string) ([]*models.GiftCard, error) {
	return s.transition(ctx, ids, TransitionDraft)
}

func (s *GiftCardService) transition(ctx context.Context, ids []string, t GiftCardTransition) ([]*models.GiftCard, error) {
	parsed, err := parseIDs(ids)
	if err != nil {
		return nil, err
	}

	var cards []*models.GiftCard
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cards, err = s.lockGiftCards(tx, parsed)
		if err != nil {
			return err
		}
		if err := s.TransitionInTx(ctx, tx, cards, t); err != nil {
			return err
		}
		for _, card := range cards {
			if err := s.ledgerService.Fill(tx, card); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cards, nil
}

// TransitionInTx applies t to every card or fails on the first card whose
// state forbids it.
func (s *GiftCardService) TransitionInTx(ctx context.Context, tx *gorm.DB, cards []*models.GiftCard, t GiftCardTransition) error {
	for _, card := range cards {
		if err := s.workflow.Apply(ctx, tx, card, t); err != nil {
			return err
		}
	}
	return nil
}

// MarkUsedIfDepleted moves an active card to used once nothing is left
// available on it.
func (s *GiftCardService) MarkUsedIfDepleted(ctx context.Context, tx *gorm.DB, card *models.GiftCard) error {
	if err := s.ledgerService.Fill(tx, card); err != nil {
		return err
	}

	if card.State != models.GiftCardStateActive || !card.AmountAvailable.IsZero() {
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"gift_card_id": card.ID,
		"number":       card.DisplayNumber(),
	}).Info("gift card fully redeemed")

	return s.workflow.Apply(ctx, tx, card, TransitionUse)
}

func (s *GiftCardService) GetStateHistory(ctx context.Context, giftCardID string) ([]models.GiftCardStateHistory, error) {
	id, err := uuid.Parse(giftCardID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid gift card ID format")
	}

	if _, err := s.findGiftCard(s.db.WithContext(ctx), "id = ?", id); err != nil {
		return nil, err
	}

	return s.auditService.GetGiftCardStateHistory(id)
}

// assignNumber draws a number on first activation only.
func (s *GiftCardService) assignNumber(ctx context.Context, tx *gorm.DB, card *models.GiftCard) error {
	if card.Number != nil {
		return nil
	}

	config, err := s.configService.Load(tx)
	if err != nil {
		return err
	}

	number, err := s.sequence.Next(ctx, tx, config.NumberSequence)
	if err != nil {
		return err
	}
	card.Number = &number
	return nil
}

// sendIssuanceEmail queues the recipient email once per card.
func (s *GiftCardService) sendIssuanceEmail(ctx context.Context, tx *gorm.DB, card *models.GiftCard) error {
	if card.IsEmailSent || !card.HasRecipientEmail() {
		return nil
	}

	config, err := s.configService.Load(tx)
	if err != nil {
		return err
	}

	sent, err := s.mailService.SendGiftCardEmail(ctx, tx, card, config.MailFrom)
	if err != nil {
		return err
	}
	card.IsEmailSent = sent
	return nil
}
