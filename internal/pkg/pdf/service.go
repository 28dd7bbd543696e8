// internal/pkg/pdf/service.go

// Package pdf renders PDF invoices for orders through wkhtmltopdf.
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// invoiceData is what the invoice template renders
type invoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	DueDate       string
	CompanyName   string
	Order         *order.Order
}

// GenerateInvoice renders a PDF invoice for an order. Net-terms orders
// get a 30-day due date; card orders are due on receipt.
func (s *Service) GenerateInvoice(o *order.Order) ([]byte, error) {
	now := time.Now().UTC()
	due := "Due on receipt"
	if o.PaymentMethod == "net_terms" {
		due = now.AddDate(0, 0, 30).Format("January 2, 2006")
	}

	data := invoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%s", o.OrderNumber),
		InvoiceDate:   now.Format("January 2, 2006"),
		DueDate:       due,
		CompanyName:   s.config.App.Name,
		Order:         o,
	}

	html, err := s.renderHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(html)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return pdfg.Bytes(), nil
}

func (s *Service) renderHTML(data invoiceData) (string, error) {
	tmpl := template.Must(template.New("invoice").
		Funcs(template.FuncMap{
			"dollars": func(cents int64) string {
				return fmt.Sprintf("$%.2f", float64(cents)/100)
			},
		}).
		Parse(invoiceTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

const invoiceTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; }
        .invoice-title { font-size: 28px; font-weight: bold; color: #2563eb; }
        .addresses { width: 100%; margin-bottom: 30px; }
        .addresses td { vertical-align: top; width: 50%; }
        .section-title { font-size: 16px; font-weight: bold; margin-bottom: 10px; color: #374151; }
        .items { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
        .items th, .items td { border: 1px solid #ddd; padding: 10px 8px; text-align: left; }
        .items th { background-color: #f8f9fa; }
        .num { text-align: right; }
        .totals { float: right; width: 300px; border-collapse: collapse; }
        .totals td { padding: 8px; border-bottom: 1px solid #eee; }
        .total-row td { font-size: 18px; font-weight: bold; border-top: 2px solid #333; }
        .badge { display: inline-block; padding: 4px 8px; border-radius: 4px; font-size: 12px; font-weight: bold; text-transform: uppercase; background-color: #f3f4f6; }
    </style>
</head>
<body>
    <div class="header">
        <div class="invoice-title">INVOICE</div>
        <p><strong>{{.CompanyName}}</strong></p>
        <p>Invoice #: {{.InvoiceNumber}} &middot; Order #: {{.Order.OrderNumber}}</p>
        <p>Invoice date: {{.InvoiceDate}} &middot; Due: {{.DueDate}}</p>
        <p>Payment: <span class="badge">{{.Order.PaymentStatus}}</span>
           {{if .Order.GovernmentBuyer}} &middot; Government purchase{{if .Order.AgencyName}} ({{.Order.AgencyName}}){{end}}{{end}}
           {{if .Order.PurchaseOrder}} &middot; PO {{.Order.PurchaseOrder}}{{end}}</p>
    </div>

    <table class="addresses">
        <tr>
            <td>
                <div class="section-title">Bill To</div>
                <p>{{.Order.BillingAddress.FirstName}} {{.Order.BillingAddress.LastName}}</p>
                {{if .Order.BillingAddress.Company}}<p>{{.Order.BillingAddress.Company}}</p>{{end}}
                <p>{{.Order.BillingAddress.AddressLine1}}</p>
                {{if .Order.BillingAddress.AddressLine2}}<p>{{.Order.BillingAddress.AddressLine2}}</p>{{end}}
                <p>{{.Order.BillingAddress.City}}, {{.Order.BillingAddress.State}} {{.Order.BillingAddress.PostalCode}}</p>
            </td>
            <td>
                <div class="section-title">Ship To</div>
                <p>{{.Order.ShippingAddress.FirstName}} {{.Order.ShippingAddress.LastName}}</p>
                {{if .Order.ShippingAddress.Company}}<p>{{.Order.ShippingAddress.Company}}</p>{{end}}
                <p>{{.Order.ShippingAddress.AddressLine1}}</p>
                {{if .Order.ShippingAddress.AddressLine2}}<p>{{.Order.ShippingAddress.AddressLine2}}</p>{{end}}
                <p>{{.Order.ShippingAddress.City}}, {{.Order.ShippingAddress.State}} {{.Order.ShippingAddress.PostalCode}}</p>
            </td>
        </tr>
    </table>

    <table class="items">
        <thead>
            <tr><th>Item</th><th>SKU</th><th class="num">Qty</th><th class="num">Unit Price</th><th class="num">Total</th></tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td>{{.Name}}</td>
                <td>{{.SKU}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{dollars .UnitPrice}}</td>
                <td class="num">{{dollars .Total}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <table class="totals">
        <tr><td>Subtotal</td><td class="num">{{dollars .Order.Subtotal}}</td></tr>
        {{if gt .Order.DiscountAmount 0}}<tr><td>Discount</td><td class="num">-{{dollars .Order.DiscountAmount}}</td></tr>{{end}}
        <tr><td>Shipping</td><td class="num">{{dollars .Order.ShippingAmount}}</td></tr>
        <tr><td>Tax</td><td class="num">{{dollars .Order.TaxAmount}}</td></tr>
        {{if gt .Order.GovernmentSavings 0}}<tr><td>Government savings</td><td class="num">{{dollars .Order.GovernmentSavings}}</td></tr>{{end}}
        <tr class="total-row"><td>Total</td><td class="num">{{dollars .Order.TotalAmount}}</td></tr>
    </table>
</body>
</html>
`
