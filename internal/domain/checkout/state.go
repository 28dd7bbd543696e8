// internal/domain/checkout/state.go

// Package checkout orchestrates the multi-step checkout flow: a linear
// wizard over shipping address, delivery option, government purchase
// declaration, payment method and review, followed by the order
// placement pipeline against the payment gateway.
package checkout

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/account"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
)

// Step is a checkout wizard step
type Step string

const (
	StepShipping   Step = "shipping"
	StepDelivery   Step = "delivery"
	StepGovernment Step = "government"
	StepPayment    Step = "payment"
	StepReview     Step = "review"
	StepSubmitted  Step = "submitted"
)

// Payment methods
const (
	PaymentMethodCard     = "card"
	PaymentMethodNetTerms = "net_terms"
)

// StepsFor returns the wizard steps in order for an account type.
// Accounts that natively buy at government pricing skip the
// self-declaration step.
func StepsFor(accountType account.Type) []Step {
	if accountType.GovernmentPriced() {
		return []Step{StepShipping, StepDelivery, StepPayment, StepReview, StepSubmitted}
	}
	return []Step{StepShipping, StepDelivery, StepGovernment, StepPayment, StepReview, StepSubmitted}
}

// NextStep returns the step after current for the account type
func NextStep(current Step, accountType account.Type) (Step, bool) {
	steps := StepsFor(accountType)
	for i, s := range steps {
		if s == current && i+1 < len(steps) {
			return steps[i+1], true
		}
	}
	return current, false
}

// PrevStep returns the step before current for the account type
func PrevStep(current Step, accountType account.Type) (Step, bool) {
	steps := StepsFor(accountType)
	for i, s := range steps {
		if s == current && i > 0 {
			return steps[i-1], true
		}
	}
	return current, false
}

// Session is the server-held checkout state for one buyer. It lives in
// redis for the configured TTL and is discarded on submission.
type Session struct {
	UserID uint `json:"user_id"`
	Step   Step `json:"step"`

	ShippingAddressID uint `json:"shipping_address_id,omitempty"`
	BillingAddressID  uint `json:"billing_address_id,omitempty"`

	// Rates are re-fetched whenever the address changes; the cheapest
	// is auto-selected.
	Rates        []shipping.RateOption `json:"rates,omitempty"`
	SelectedRate *shipping.RateOption  `json:"selected_rate,omitempty"`
	RatesFetched bool                  `json:"rates_fetched"`

	GovernmentBuyer    bool   `json:"government_buyer"`
	AgencyName         string `json:"agency_name,omitempty"`
	AgencyContactEmail string `json:"agency_contact_email,omitempty"`
	PurchaseOrder      string `json:"purchase_order,omitempty"`

	PaymentMethod string `json:"payment_method,omitempty"`
	SaveCard      bool   `json:"save_card"`

	// Intent creation is guarded by ClientSecret presence so it happens
	// at most once per checkout session.
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	ClientSecret    string `json:"client_secret,omitempty"`

	CouponCode     string `json:"coupon_code,omitempty"`
	CouponDiscount int64  `json:"coupon_discount"`

	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanProceed reports whether the session may advance past its current
// step, with a buyer-facing reason when it may not.
func (s *Session) CanProceed() (bool, string) {
	switch s.Step {
	case StepShipping:
		if s.ShippingAddressID == 0 {
			return false, "select or enter a shipping address"
		}
	case StepDelivery:
		if s.SelectedRate == nil {
			return false, "choose a shipping option"
		}
	case StepGovernment:
		if s.GovernmentBuyer {
			if s.AgencyName == "" {
				return false, "agency name is required for government purchases"
			}
			if s.AgencyContactEmail == "" {
				return false, "agency contact email is required for government purchases"
			}
		}
	case StepPayment:
		if s.PaymentMethod == "" {
			return false, "choose a payment method"
		}
		if s.PaymentMethod == PaymentMethodCard && s.ClientSecret == "" {
			return false, "payment form is not ready"
		}
	case StepReview:
		// no additional gate
	case StepSubmitted:
		return false, "checkout already submitted"
	}
	return true, ""
}

// ResetShipping clears rate state after an address change; quotes for
// the old destination must not survive.
func (s *Session) ResetShipping() {
	s.Rates = nil
	s.SelectedRate = nil
	s.RatesFetched = false
}
