package payment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

type fakeRecorder struct {
	paidOrderID   uint
	paidIntentID  string
	failedOrderID uint
	failedReason  string
	byIntent      map[string]*order.Order
}

func (f *fakeRecorder) MarkPaid(orderID uint, intentID string) error {
	f.paidOrderID = orderID
	f.paidIntentID = intentID
	return nil
}

func (f *fakeRecorder) MarkPaymentFailed(orderID uint, _ string, reason string) error {
	f.failedOrderID = orderID
	f.failedReason = reason
	return nil
}

func (f *fakeRecorder) GetOrderByPaymentIntent(intentID string) (*order.Order, error) {
	o, ok := f.byIntent[intentID]
	if !ok {
		return nil, fmt.Errorf("order not found for payment intent")
	}
	return o, nil
}

func newTestService(recorder *fakeRecorder) *Service {
	cfg := &config.Config{}
	cfg.Commerce.Currency = "USD"
	return NewService(cfg, recorder)
}

func TestApplyIntentEvent_SucceededMarksOrderPaid(t *testing.T) {
	recorder := &fakeRecorder{}
	svc := newTestService(recorder)

	intent := &stripe.PaymentIntent{
		ID:       "pi_abc",
		Metadata: map[string]string{"order_id": "17"},
	}

	err := svc.applyIntentEvent("payment_intent.succeeded", intent)

	require.NoError(t, err)
	assert.Equal(t, uint(17), recorder.paidOrderID)
	assert.Equal(t, "pi_abc", recorder.paidIntentID)
}

func TestApplyIntentEvent_FallsBackToIntentLookup(t *testing.T) {
	recorder := &fakeRecorder{
		byIntent: map[string]*order.Order{
			"pi_abc": {ID: 23, OrderNumber: "ORD-20260829-00002"},
		},
	}
	svc := newTestService(recorder)

	// no order_id metadata on the intent
	intent := &stripe.PaymentIntent{ID: "pi_abc"}

	err := svc.applyIntentEvent("payment_intent.succeeded", intent)

	require.NoError(t, err)
	assert.Equal(t, uint(23), recorder.paidOrderID)
}

func TestApplyIntentEvent_UnmatchedIntentIgnored(t *testing.T) {
	recorder := &fakeRecorder{}
	svc := newTestService(recorder)

	intent := &stripe.PaymentIntent{ID: "pi_unknown"}

	err := svc.applyIntentEvent("payment_intent.succeeded", intent)

	require.NoError(t, err)
	assert.Equal(t, uint(0), recorder.paidOrderID)
}

func TestApplyIntentEvent_FailureRecordsReason(t *testing.T) {
	recorder := &fakeRecorder{}
	svc := newTestService(recorder)

	intent := &stripe.PaymentIntent{
		ID:       "pi_abc",
		Metadata: map[string]string{"order_id": "17"},
		LastPaymentError: &stripe.Error{
			Msg: "Your card was declined.",
		},
	}

	err := svc.applyIntentEvent("payment_intent.payment_failed", intent)

	require.NoError(t, err)
	assert.Equal(t, uint(17), recorder.failedOrderID)
	assert.Equal(t, "Your card was declined.", recorder.failedReason)
}
