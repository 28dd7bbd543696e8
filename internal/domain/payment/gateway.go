// internal/domain/payment/gateway.go

// Package payment integrates the card payment gateway. Orders are paid
// through payment intents: an intent is created for the checkout total,
// its client secret is handed to the frontend for card collection, and
// the gateway reports the outcome back through a signed webhook.
package payment

import "context"

// Intent is the gateway-agnostic view of a payment intent
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// CreateIntentInput carries what the gateway needs to open an intent
type CreateIntentInput struct {
	Amount   int64
	Currency string
	SaveCard bool
	Metadata map[string]string
}

// Gateway abstracts the payment provider
type Gateway interface {
	CreateIntent(ctx context.Context, in CreateIntentInput) (*Intent, error)
	AttachOrder(ctx context.Context, intentID string, orderID uint, orderNumber string) error
	Confirm(ctx context.Context, intentID string) (*Intent, error)
	GetIntent(ctx context.Context, intentID string) (*Intent, error)
	CancelIntent(ctx context.Context, intentID string) error
}
