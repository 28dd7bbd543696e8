// internal/domain/payment/stripe.go
package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/your-org/storefront-backend/internal/config"
)

// StripeGateway implements Gateway on top of Stripe payment intents
type StripeGateway struct {
	currency string
}

// NewStripeGateway configures the global Stripe client key
func NewStripeGateway(cfg *config.Config) (*StripeGateway, error) {
	if cfg.External.Stripe.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is not configured")
	}
	stripe.Key = cfg.External.Stripe.SecretKey
	return &StripeGateway{
		currency: strings.ToLower(cfg.Commerce.Currency),
	}, nil
}

// CreateIntent opens a payment intent for the given amount
func (g *StripeGateway) CreateIntent(ctx context.Context, in CreateIntentInput) (*Intent, error) {
	currency := in.Currency
	if currency == "" {
		currency = g.currency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(in.Amount),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if in.SaveCard {
		params.SetupFutureUsage = stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession))
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"intent_id": intent.ID,
		"amount":    intent.Amount,
	}).Info("Payment intent created")

	return fromStripeIntent(intent), nil
}

// AttachOrder tags the intent with the order it pays for, so webhook
// events can be routed back to the order.
func (g *StripeGateway) AttachOrder(ctx context.Context, intentID string, orderID uint, orderNumber string) error {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddMetadata("order_id", fmt.Sprintf("%d", orderID))
	params.AddMetadata("order_number", orderNumber)

	if _, err := paymentintent.Update(intentID, params); err != nil {
		return fmt.Errorf("failed to attach order to payment intent: %w", err)
	}
	return nil
}

// Confirm asks the gateway to confirm the intent. Intents that still
// require buyer action come back unconfirmed, not as an error; the
// frontend finishes those with the client secret.
func (g *StripeGateway) Confirm(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx

	intent, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment intent: %w", err)
	}
	return fromStripeIntent(intent), nil
}

// GetIntent fetches the current state of an intent
func (g *StripeGateway) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := paymentintent.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}
	return fromStripeIntent(intent), nil
}

// CancelIntent voids an unconfirmed intent
func (g *StripeGateway) CancelIntent(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	if _, err := paymentintent.Cancel(intentID, params); err != nil {
		return fmt.Errorf("failed to cancel payment intent: %w", err)
	}
	return nil
}

func fromStripeIntent(intent *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount,
		Currency:     string(intent.Currency),
		Status:       string(intent.Status),
	}
}
