// internal/domain/payment/service.go
package payment

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

// OrderRecorder is the slice of the order service webhook handling needs
type OrderRecorder interface {
	MarkPaid(orderID uint, intentID string) error
	MarkPaymentFailed(orderID uint, intentID, reason string) error
	GetOrderByPaymentIntent(intentID string) (*order.Order, error)
}

// Service handles gateway configuration and webhook events
type Service struct {
	config *config.Config
	orders OrderRecorder
}

// NewService creates a new payment service
func NewService(cfg *config.Config, orders OrderRecorder) *Service {
	return &Service{
		config: cfg,
		orders: orders,
	}
}

// ClientConfig is the frontend-safe gateway configuration
type ClientConfig struct {
	PublishableKey string `json:"publishable_key"`
	Currency       string `json:"currency"`
}

// GetClientConfig returns the publishable key for frontend card collection
func (s *Service) GetClientConfig() ClientConfig {
	return ClientConfig{
		PublishableKey: s.config.External.Stripe.PublishableKey,
		Currency:       s.config.Commerce.Currency,
	}
}

// HandleWebhook verifies a gateway webhook and applies the payment
// outcome to the referenced order.
func (s *Service) HandleWebhook(payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.config.External.Stripe.WebhookSecret)
	if err != nil {
		return fmt.Errorf("invalid webhook signature: %w", err)
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
	default:
		logrus.WithField("event_type", event.Type).Debug("Ignoring webhook event")
		return nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("failed to decode payment intent event: %w", err)
	}

	return s.applyIntentEvent(string(event.Type), &intent)
}

// applyIntentEvent routes a payment intent outcome to its order. The
// order is resolved from intent metadata, falling back to the intent
// reference recorded on the order at placement.
func (s *Service) applyIntentEvent(eventType string, intent *stripe.PaymentIntent) error {
	orderID, err := orderIDFromMetadata(intent.Metadata)
	if err != nil {
		o, lookupErr := s.orders.GetOrderByPaymentIntent(intent.ID)
		if lookupErr != nil {
			// Intents created before the order exists carry no order
			// reference yet; the confirm step settles those.
			logrus.WithField("intent_id", intent.ID).Warn("Webhook intent has no order reference")
			return nil
		}
		orderID = o.ID
	}

	switch eventType {
	case "payment_intent.succeeded":
		if err := s.orders.MarkPaid(orderID, intent.ID); err != nil {
			return fmt.Errorf("failed to mark order paid: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"order_id":  orderID,
			"intent_id": intent.ID,
		}).Info("Order payment succeeded")
	case "payment_intent.payment_failed":
		reason := "payment declined"
		if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
			reason = intent.LastPaymentError.Msg
		}
		if err := s.orders.MarkPaymentFailed(orderID, intent.ID, reason); err != nil {
			return fmt.Errorf("failed to mark payment failed: %w", err)
		}
		logrus.WithFields(logrus.Fields{
			"order_id":  orderID,
			"intent_id": intent.ID,
			"reason":    reason,
		}).Warn("Order payment failed")
	}

	return nil
}

func orderIDFromMetadata(metadata map[string]string) (uint, error) {
	raw, ok := metadata["order_id"]
	if !ok || raw == "" {
		return 0, fmt.Errorf("no order_id in metadata")
	}
	var id uint
	if _, err := fmt.Sscanf(raw, "%d", &id); err != nil {
		return 0, fmt.Errorf("malformed order_id %q", raw)
	}
	return id, nil
}
