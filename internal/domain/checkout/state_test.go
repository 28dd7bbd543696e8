// internal/domain/checkout/state_test.go
package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/storefront-backend/internal/domain/account"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
)

func TestStepsFor_GovernmentAccountsSkipDeclaration(t *testing.T) {
	b2c := StepsFor(account.TypeB2C)
	assert.Contains(t, b2c, StepGovernment)

	gsa := StepsFor(account.TypeGSA)
	assert.NotContains(t, gsa, StepGovernment)

	gov := StepsFor(account.TypeGovernment)
	assert.NotContains(t, gov, StepGovernment)
}

func TestNextStep(t *testing.T) {
	next, ok := NextStep(StepShipping, account.TypeB2C)
	assert.True(t, ok)
	assert.Equal(t, StepDelivery, next)

	// GSA accounts go straight from delivery to payment
	next, ok = NextStep(StepDelivery, account.TypeGSA)
	assert.True(t, ok)
	assert.Equal(t, StepPayment, next)

	next, ok = NextStep(StepDelivery, account.TypeB2C)
	assert.True(t, ok)
	assert.Equal(t, StepGovernment, next)

	_, ok = NextStep(StepSubmitted, account.TypeB2C)
	assert.False(t, ok)
}

func TestPrevStep(t *testing.T) {
	prev, ok := PrevStep(StepPayment, account.TypeGSA)
	assert.True(t, ok)
	assert.Equal(t, StepDelivery, prev)

	_, ok = PrevStep(StepShipping, account.TypeB2C)
	assert.False(t, ok)
}

func TestCanProceed_ShippingRequiresAddress(t *testing.T) {
	s := &Session{Step: StepShipping}

	ok, reason := s.CanProceed()
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	s.ShippingAddressID = 12
	ok, _ = s.CanProceed()
	assert.True(t, ok)
}

func TestCanProceed_DeliveryRequiresSelectedRate(t *testing.T) {
	s := &Session{Step: StepDelivery, ShippingAddressID: 12}

	ok, _ := s.CanProceed()
	assert.False(t, ok)

	s.SelectedRate = &shipping.RateOption{Carrier: "USPS", ServiceCode: "ground", Cost: 1500}
	ok, _ = s.CanProceed()
	assert.True(t, ok)
}

func TestCanProceed_GovernmentToggleRequiresAgencyDetails(t *testing.T) {
	s := &Session{Step: StepGovernment}

	// Toggle off is always satisfiable
	ok, _ := s.CanProceed()
	assert.True(t, ok)

	s.GovernmentBuyer = true
	ok, reason := s.CanProceed()
	assert.False(t, ok)
	assert.Contains(t, reason, "agency name")

	s.AgencyName = "Department of the Interior"
	ok, reason = s.CanProceed()
	assert.False(t, ok)
	assert.Contains(t, reason, "contact email")

	s.AgencyContactEmail = "buyer@doi.gov"
	ok, _ = s.CanProceed()
	assert.True(t, ok)
}

func TestCanProceed_CardPaymentRequiresClientSecret(t *testing.T) {
	s := &Session{Step: StepPayment, PaymentMethod: PaymentMethodCard}

	ok, _ := s.CanProceed()
	assert.False(t, ok)

	s.ClientSecret = "pi_123_secret_456"
	ok, _ = s.CanProceed()
	assert.True(t, ok)
}

func TestCanProceed_NetTermsNeedNoIntent(t *testing.T) {
	s := &Session{Step: StepPayment, PaymentMethod: PaymentMethodNetTerms}

	ok, _ := s.CanProceed()
	assert.True(t, ok)
}

func TestCanProceed_SubmittedIsTerminal(t *testing.T) {
	s := &Session{Step: StepSubmitted}

	ok, _ := s.CanProceed()
	assert.False(t, ok)
}

func TestResetShipping(t *testing.T) {
	s := &Session{
		Rates:        []shipping.RateOption{{Carrier: "USPS", Cost: 1500}},
		SelectedRate: &shipping.RateOption{Carrier: "USPS", Cost: 1500},
		RatesFetched: true,
	}

	s.ResetShipping()

	assert.Nil(t, s.Rates)
	assert.Nil(t, s.SelectedRate)
	assert.False(t, s.RatesFetched)
}
