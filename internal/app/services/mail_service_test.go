package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(ctx context.Context, card *models.GiftCard) (*Report, error) {
	args := m.Called(ctx, card)
	report, _ := args.Get(0).(*Report)
	return report, args.Error(1)
}

func TestMailService_AbandonsEmailAfterTwoFailedRenders(t *testing.T) {
	renderer := new(mockRenderer)
	renderer.On("Render", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("renderer offline")).Twice()

	f := newFixture(t, withRenderer(renderer))
	card := f.createCard(t, "25", ptr("friend@example.com"))

	cards, err := f.giftCards.Activate(context.Background(), []string{card.ID.String()})
	require.NoError(t, err, "a failed render never blocks activation")

	assert.Equal(t, models.GiftCardStateActive, cards[0].State)
	assert.False(t, cards[0].IsEmailSent)
	assert.False(t, f.reload(t, card).IsEmailSent)
	assert.Equal(t, int64(0), f.countMails(t, card))
	renderer.AssertNumberOfCalls(t, "Render", 2)
}

func TestMailService_RetriesRenderOnce(t *testing.T) {
	renderer := new(mockRenderer)
	renderer.On("Render", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("timeout")).Once()
	renderer.On("Render", mock.Anything, mock.Anything).Return(&Report{
		Format:      "pdf",
		Content:     []byte("%PDF-1.4"),
		PrintFormat: "pdf",
		Name:        "Gift Card",
	}, nil).Once()

	f := newFixture(t, withRenderer(renderer))
	card := f.createCard(t, "25", ptr("friend@example.com"))

	cards, err := f.giftCards.Activate(context.Background(), []string{card.ID.String()})
	require.NoError(t, err)
	assert.True(t, cards[0].IsEmailSent)

	var message models.MailMessage
	require.NoError(t, f.db.Where("reference_id = ?", card.ID).First(&message).Error)
	assert.Equal(t, "Gift Card.pdf", *message.AttachmentName)
	assert.Equal(t, "application/pdf", *message.AttachmentType)
	assert.Equal(t, []byte("%PDF-1.4"), message.Attachment)
	assert.JSONEq(t, fmt.Sprintf(`{"X-Gift-Card": %q}`, *cards[0].Number), string(message.Headers))
	renderer.AssertExpectations(t)
}

func TestMailService_SkipsCardsWithoutRecipient(t *testing.T) {
	renderer := new(mockRenderer)
	f := newFixture(t, withRenderer(renderer))
	card := f.createCard(t, "25", nil)

	sent, err := f.mail.SendGiftCardEmail(context.Background(), f.db, card, defaultMailFrom)
	require.NoError(t, err)
	assert.False(t, sent)
	renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
}

func TestGiftCardReportService_Render(t *testing.T) {
	card := &models.GiftCard{
		Number:        ptr("GC00000042"),
		CurrencyCode:  "USD",
		Amount:        dec("50"),
		RecipientName: ptr("<Friend>"),
	}

	report, err := NewGiftCardReportService().Render(context.Background(), card)
	require.NoError(t, err)

	assert.Equal(t, "html", report.Format)
	assert.Contains(t, string(report.Content), "GC00000042")
	assert.Contains(t, string(report.Content), "USD 50.00")
	assert.Contains(t, string(report.Content), "&lt;Friend&gt;")
}
