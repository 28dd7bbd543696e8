// internal/pkg/email/service.go

// Package email sends transactional mail over SMTP. The only message
// the storefront sends today is the order confirmation, optionally
// with the PDF invoice attached.
package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service handles outbound email
type Service struct {
	config *config.Config
}

// NewService creates a new email service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// Message is one outbound email
type Message struct {
	To             []string
	Subject        string
	HTMLContent    string
	Attachment     []byte
	AttachmentName string
}

// SendOrderConfirmation emails the buyer their order summary, with the
// invoice PDF attached when one was generated.
func (s *Service) SendOrderConfirmation(o *order.Order, recipientEmail string, invoicePDF []byte) error {
	html, err := s.renderOrderConfirmation(o)
	if err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	msg := &Message{
		To:          []string{recipientEmail},
		Subject:     fmt.Sprintf("Order confirmation %s", o.OrderNumber),
		HTMLContent: html,
	}
	if len(invoicePDF) > 0 {
		msg.Attachment = invoicePDF
		msg.AttachmentName = fmt.Sprintf("invoice-%s.pdf", o.OrderNumber)
	}

	if err := s.send(msg); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"order_number": o.OrderNumber,
		"recipient":    recipientEmail,
	}).Info("Order confirmation sent")
	return nil
}

func (s *Service) renderOrderConfirmation(o *order.Order) (string, error) {
	tmpl := template.Must(template.New("confirmation").
		Funcs(template.FuncMap{"dollars": formatCents}).
		Parse(confirmationTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, o); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

const confirmationTemplate = `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Thank you for your order!</h2>
  <p>Your order <strong>{{.OrderNumber}}</strong> has been received.</p>
  {{if eq .Status "pending_approval"}}
  <p><em>This order is awaiting purchasing approval and will be processed once approved.</em></p>
  {{end}}
  <table cellpadding="6" style="border-collapse: collapse; width: 100%;">
    <tr style="background: #f4f4f4;"><th align="left">Item</th><th align="right">Qty</th><th align="right">Price</th><th align="right">Total</th></tr>
    {{range .Items}}
    <tr>
      <td>{{.Name}}</td>
      <td align="right">{{.Quantity}}</td>
      <td align="right">{{dollars .UnitPrice}}</td>
      <td align="right">{{dollars .Total}}</td>
    </tr>
    {{end}}
  </table>
  <table cellpadding="4" align="right">
    <tr><td>Subtotal:</td><td align="right">{{dollars .Subtotal}}</td></tr>
    {{if gt .DiscountAmount 0}}<tr><td>Discount:</td><td align="right">-{{dollars .DiscountAmount}}</td></tr>{{end}}
    <tr><td>Shipping:</td><td align="right">{{dollars .ShippingAmount}}</td></tr>
    <tr><td>Tax:</td><td align="right">{{dollars .TaxAmount}}</td></tr>
    {{if gt .GovernmentSavings 0}}<tr><td>Government savings:</td><td align="right">{{dollars .GovernmentSavings}}</td></tr>{{end}}
    <tr><td><strong>Total:</strong></td><td align="right"><strong>{{dollars .TotalAmount}}</strong></td></tr>
  </table>
</body>
</html>
`
