package services

import (
	"context"
	"fmt"

	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"gorm.io/gorm"
)

// GiftCardTransition is one edge of the gift card state machine.
type GiftCardTransition struct {
	Name string
	From []models.GiftCardState
	To   models.GiftCardState
}

var (
	TransitionActivate = GiftCardTransition{
		Name: "activate",
		From: []models.GiftCardState{models.GiftCardStateDraft},
		To:   models.GiftCardStateActive,
	}
	TransitionCancel = GiftCardTransition{
		Name: "cancel",
		From: []models.GiftCardState{models.GiftCardStateDraft, models.GiftCardStateActive},
		To:   models.GiftCardStateCanceled,
	}
	TransitionDraft = GiftCardTransition{
		Name: "draft",
		From: []models.GiftCardState{models.GiftCardStateCanceled},
		To:   models.GiftCardStateDraft,
	}
	// TransitionUse is fired by the payment flow, never by users.
	TransitionUse = GiftCardTransition{
		Name: "use",
		From: []models.GiftCardState{models.GiftCardStateActive},
		To:   models.GiftCardStateUsed,
	}
)

func (t GiftCardTransition) Allows(state models.GiftCardState) bool {
	for _, from := range t.From {
		if from == state {
			return true
		}
	}
	return false
}

// TransitionHook runs after a card entered a state and before it is saved.
type TransitionHook func(ctx context.Context, tx *gorm.DB, card *models.GiftCard) error

// GiftCardWorkflow applies transitions and runs the hooks registered for
// the target state.
type GiftCardWorkflow struct {
	hooks map[models.GiftCardState][]TransitionHook
	audit *AuditService
}

func NewGiftCardWorkflow(audit *AuditService) *GiftCardWorkflow {
	return &GiftCardWorkflow{
		hooks: make(map[models.GiftCardState][]TransitionHook),
		audit: audit,
	}
}

// OnEnter registers hooks for state, run in registration order.
func (w *GiftCardWorkflow) OnEnter(state models.GiftCardState, hooks ...TransitionHook) {
	w.hooks[state] = append(w.hooks[state], hooks...)
}

// Apply moves card along transition t, runs the hooks and persists the
// card. A card whose state does not allow t yields a StateError.
func (w *GiftCardWorkflow) Apply(ctx context.Context, tx *gorm.DB, card *models.GiftCard, t GiftCardTransition) error {
	if !t.Allows(card.State) {
		return errors.NewStateError(fmt.Sprintf("Cannot %s gift card %s in state %s", t.Name, cardLabel(card), card.State))
	}

	from := card.State
	card.State = t.To

	for _, hook := range w.hooks[t.To] {
		if err := hook(ctx, tx, card); err != nil {
			card.State = from
			return err
		}
	}

	if err := saveGiftCard(tx, card); err != nil {
		return err
	}

	var metadata map[string]interface{}
	if card.Number != nil {
		metadata = map[string]interface{}{"number": *card.Number}
	}
	return w.audit.LogGiftCardStateChange(tx, card.ID, from, t.To, t.Name, metadata)
}

func cardLabel(card *models.GiftCard) string {
	if card.Number != nil {
		return *card.Number
	}
	return card.ID.String()
}
