package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MailQueue accepts outgoing messages for later delivery.
type MailQueue interface {
	Enqueue(tx *gorm.DB, message *models.MailMessage) error
}

// OutboxMailQueue stores messages in the mail_queue table so they commit
// together with the change that produced them.
type OutboxMailQueue struct{}

func NewOutboxMailQueue() *OutboxMailQueue {
	return &OutboxMailQueue{}
}

func (q *OutboxMailQueue) Enqueue(tx *gorm.DB, message *models.MailMessage) error {
	message.State = models.MailStateQueued
	if err := tx.Create(message).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to queue email")
	}
	return nil
}

var giftCardEmailTemplate = template.Must(template.New("gift_card_email").Parse(`<p>Hello {{if .RecipientName}}{{.RecipientName}}{{else}}there{{end}},</p>
<p>You have received a gift card worth {{.Currency}} {{.Amount}}.</p>
<p>Your gift card number is <strong>{{.Number}}</strong>.</p>
{{if .Message}}<blockquote>{{.Message}}</blockquote>{{end}}
<p>The printable card is attached to this email.</p>
`))

// reportAttempts is the number of times a report render is tried before the
// email is dropped.
const reportAttempts = 2

type MailService struct {
	queue    MailQueue
	renderer ReportRenderer
}

func NewMailService(queue MailQueue, renderer ReportRenderer) *MailService {
	return &MailService{
		queue:    queue,
		renderer: renderer,
	}
}

// SendGiftCardEmail queues the issuance email for card. It reports false
// without an error when the card has no recipient or when the attached
// report could not be rendered; only queueing failures are returned.
func (s *MailService) SendGiftCardEmail(ctx context.Context, tx *gorm.DB, card *models.GiftCard, from string) (bool, error) {
	if !card.HasRecipientEmail() {
		return false, nil
	}

	log := logrus.WithFields(logrus.Fields{
		"gift_card_id": card.ID,
		"number":       card.DisplayNumber(),
	})

	attempt := 0
	report, err := backoff.RetryWithData[*Report](func() (*Report, error) {
		attempt++
		report, err := s.renderer.Render(ctx, card)
		if err != nil {
			log.WithError(err).Warnf("gift card report render failed (attempt %d/%d)", attempt, reportAttempts)
		}
		return report, err
	}, backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, reportAttempts-1), ctx))
	if err != nil {
		log.WithError(err).Error("abandoning gift card email, report could not be rendered")
		return false, nil
	}

	body, err := renderGiftCardEmail(card)
	if err != nil {
		log.WithError(err).Error("abandoning gift card email, body could not be rendered")
		return false, nil
	}

	attachmentName := fmt.Sprintf("%s.%s", report.Name, report.Format)
	attachmentType := contentType(report.Format)
	headers, err := marshalJSON(map[string]string{"X-Gift-Card": card.DisplayNumber()})
	if err != nil {
		return false, fmt.Errorf("failed to marshal mail headers: %w", err)
	}

	message := &models.MailMessage{
		FromAddress:    from,
		ToAddress:      *card.RecipientEmail,
		Subject:        "Gift Card",
		HTMLBody:       body,
		AttachmentName: &attachmentName,
		AttachmentType: &attachmentType,
		Attachment:     report.Content,
		Headers:        headers,
		ReferenceID:    &card.ID,
	}
	if err := s.queue.Enqueue(tx, message); err != nil {
		return false, err
	}

	log.WithField("recipient", message.ToAddress).Info("gift card email queued")
	return true, nil
}

func renderGiftCardEmail(card *models.GiftCard) (string, error) {
	data := giftCardReportData{
		Number:   card.DisplayNumber(),
		Currency: card.CurrencyCode,
		Amount:   card.Amount.StringFixed(2),
	}
	if card.RecipientName != nil {
		data.RecipientName = *card.RecipientName
	}
	if card.Message != nil {
		data.Message = *card.Message
	}

	var buf bytes.Buffer
	if err := giftCardEmailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func contentType(format string) string {
	switch strings.ToLower(format) {
	case "pdf":
		return "application/pdf"
	case "html":
		return "text/html"
	case "odt":
		return "application/vnd.oasis.opendocument.text"
	default:
		return "application/octet-stream"
	}
}
