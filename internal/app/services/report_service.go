package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/safatanc/gsalt-giftcard/internal/app/models"
)

// Report is a rendered document ready to be attached to an email.
type Report struct {
	Format      string
	Content     []byte
	PrintFormat string
	Name        string
}

// ReportRenderer renders the printable document for a gift card.
type ReportRenderer interface {
	Render(ctx context.Context, card *models.GiftCard) (*Report, error)
}

var giftCardReportTemplate = template.Must(template.New("gift_card_report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Gift Card {{.Number}}</title></head>
<body>
<h1>Gift Card</h1>
<table>
<tr><th>Number</th><td>{{.Number}}</td></tr>
<tr><th>Value</th><td>{{.Currency}} {{.Amount}}</td></tr>
{{if .RecipientName}}<tr><th>To</th><td>{{.RecipientName}}</td></tr>{{end}}
</table>
{{if .Message}}<p>{{.Message}}</p>{{end}}
</body>
</html>
`))

type giftCardReportData struct {
	Number        string
	Currency      string
	Amount        string
	RecipientName string
	Message       string
}

// GiftCardReportService renders gift cards as standalone HTML documents.
type GiftCardReportService struct{}

func NewGiftCardReportService() *GiftCardReportService {
	return &GiftCardReportService{}
}

func (s *GiftCardReportService) Render(ctx context.Context, card *models.GiftCard) (*Report, error) {
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
	if err := giftCardReportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render gift card report: %w", err)
	}

	return &Report{
		Format:      "html",
		Content:     buf.Bytes(),
		PrintFormat: "html",
		Name:        "Gift Card",
	}, nil
}
