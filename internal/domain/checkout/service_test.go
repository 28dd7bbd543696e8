// internal/domain/checkout/service_test.go
package checkout

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/account"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
)

// In-memory collaborator fakes.

type memorySessionStore struct {
	sessions map[uint]*Session
	deleted  []uint
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: map[uint]*Session{}}
}

func (m *memorySessionStore) Get(_ context.Context, userID uint) (*Session, error) {
	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memorySessionStore) Save(_ context.Context, session *Session) error {
	copied := *session
	m.sessions[session.UserID] = &copied
	return nil
}

func (m *memorySessionStore) Delete(_ context.Context, userID uint) error {
	delete(m.sessions, userID)
	m.deleted = append(m.deleted, userID)
	return nil
}

type fakeCarts struct {
	response *cart.Response
	err      error
}

func (f *fakeCarts) GetCart(userID *uint, _ string) (*cart.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type fakeAccounts struct {
	user *account.User
}

func (f *fakeAccounts) GetUser(uint) (*account.User, error) {
	return f.user, nil
}

type fakeAddresses struct {
	addresses map[uint]*account.Address
	defaultID uint
}

func (f *fakeAddresses) GetAddress(_, addressID uint) (*account.Address, error) {
	a, ok := f.addresses[addressID]
	if !ok {
		return nil, fmt.Errorf("address not found")
	}
	return a, nil
}

func (f *fakeAddresses) GetDefaultAddress(uint, string) (*account.Address, error) {
	a, ok := f.addresses[f.defaultID]
	if !ok {
		return nil, fmt.Errorf("no default address")
	}
	return a, nil
}

type fakeCoupons struct {
	validation *coupon.Validation
}

func (f *fakeCoupons) Validate(code string, _ int64) (*coupon.Validation, error) {
	return f.validation, nil
}

type fakeOrders struct {
	created        *order.CreateInput
	createErr      error
	failedOrderID  uint
	failedReason   string
	intentOrderID  uint
	attachedIntent string
}

func (f *fakeOrders) Create(in *order.CreateInput) (*order.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = in
	return &order.Order{
		ID:          42,
		OrderNumber: "ORD-20260829-00001",
		UserID:      in.UserID,
		TotalAmount: in.TotalAmount,
	}, nil
}

func (f *fakeOrders) AttachPaymentIntent(orderID uint, intentID string) error {
	f.intentOrderID = orderID
	f.attachedIntent = intentID
	return nil
}

func (f *fakeOrders) MarkPaymentFailed(orderID uint, _ string, reason string) error {
	f.failedOrderID = orderID
	f.failedReason = reason
	return nil
}

type fakeRates struct {
	rates []shipping.RateOption
	err   error
	calls int
}

func (f *fakeRates) GetRates(context.Context, *shipping.RateRequest) ([]shipping.RateOption, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]shipping.RateOption, len(f.rates))
	copy(out, f.rates)
	shipping.SortCheapestFirst(out)
	return out, nil
}

type fakeGateway struct {
	createCalls     int
	attachedOrder   uint
	confirmErr      error
	attachErr       error
	intentStatus    string
	getErr          error
	cancelledIntent string
}

func (f *fakeGateway) CreateIntent(_ context.Context, in payment.CreateIntentInput) (*payment.Intent, error) {
	f.createCalls++
	return &payment.Intent{
		ID:           "pi_test_123",
		ClientSecret: "pi_test_123_secret",
		Amount:       in.Amount,
	}, nil
}

func (f *fakeGateway) AttachOrder(_ context.Context, _ string, orderID uint, _ string) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	f.attachedOrder = orderID
	return nil
}

func (f *fakeGateway) Confirm(context.Context, string) (*payment.Intent, error) {
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return &payment.Intent{ID: "pi_test_123", ClientSecret: "pi_test_123_secret", Status: "succeeded"}, nil
}

func (f *fakeGateway) GetIntent(context.Context, string) (*payment.Intent, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	status := f.intentStatus
	if status == "" {
		status = "requires_payment_method"
	}
	return &payment.Intent{ID: "pi_test_123", ClientSecret: "pi_test_123_secret", Status: status}, nil
}

func (f *fakeGateway) CancelIntent(_ context.Context, intentID string) error {
	f.cancelledIntent = intentID
	return nil
}

// Fixture helpers.

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Commerce.Currency = "USD"
	cfg.Commerce.TaxRate = 0.08
	cfg.Commerce.FallbackShippingCost = 1500
	cfg.Commerce.B2BApprovalThreshold = 500000
	cfg.Commerce.B2BHardOrderLimit = 2500000
	return cfg
}

func testCart() *cart.Response {
	return &cart.Response{
		Items: []cart.ItemResponse{
			{
				ProductID: 1,
				Quantity:  2,
				Product: &catalog.Product{
					ID: 1, SKU: "WIDGET-1", Name: "Widget",
					Price: 10000, RequiresShipping: true, Weight: 500,
				},
				UnitPrices: pricing.UnitPrices{Base: 10000, Sale: 9000, Wholesale: 7000, GSA: 8000},
			},
		},
	}
}

type fixture struct {
	svc      *Service
	store    *memorySessionStore
	orders   *fakeOrders
	gateway  *fakeGateway
	rates    *fakeRates
	accounts *fakeAccounts
}

func newFixture(user *account.User) *fixture {
	store := newMemorySessionStore()
	orders := &fakeOrders{}
	gateway := &fakeGateway{}
	rates := &fakeRates{rates: []shipping.RateOption{
		{Carrier: "FedEx", ServiceCode: "overnight", Cost: 3900},
		{Carrier: "USPS", ServiceCode: "ground", Cost: 1500},
	}}
	accounts := &fakeAccounts{user: user}
	addresses := &fakeAddresses{addresses: map[uint]*account.Address{
		7: {ID: 7, UserID: user.ID, AddressLine1: "1 Main St", City: "Austin", State: "TX", PostalCode: "78701", Country: "US"},
	}}

	svc := NewService(
		testConfig(),
		store,
		&fakeCarts{response: testCart()},
		accounts,
		addresses,
		&fakeCoupons{validation: &coupon.Validation{Valid: true, Code: "SAVE20", Discount: 2000}},
		orders,
		rates,
		gateway,
	)
	return &fixture{svc: svc, store: store, orders: orders, gateway: gateway, rates: rates, accounts: accounts}
}

func b2cUser() *account.User {
	return &account.User{ID: 9, AccountType: account.TypeB2C}
}

func reviewSession(userID uint) *Session {
	return &Session{
		UserID:            userID,
		Step:              StepReview,
		ShippingAddressID: 7,
		SelectedRate:      &shipping.RateOption{Carrier: "USPS", ServiceCode: "ground", Cost: 1500},
		PaymentMethod:     PaymentMethodCard,
		PaymentIntentID:   "pi_test_123",
		ClientSecret:      "pi_test_123_secret",
	}
}

// Tests.

func TestStart_CreatesSessionAtShippingStep(t *testing.T) {
	f := newFixture(b2cUser())

	summary, err := f.svc.Start(context.Background(), 9)

	require.NoError(t, err)
	assert.Equal(t, StepShipping, summary.Session.Step)
	// 2 × sale price 90.00, tax 8%, fallback shipping
	assert.Equal(t, int64(18000), summary.Totals.Subtotal)
	assert.Equal(t, int64(1440), summary.Totals.Tax)
	assert.Equal(t, int64(1500), summary.Totals.Shipping)
}

func TestSetShippingAddress_ChangeResetsRates(t *testing.T) {
	f := newFixture(b2cUser())
	f.store.sessions[9] = &Session{
		UserID:            9,
		Step:              StepShipping,
		ShippingAddressID: 7,
		Rates:             []shipping.RateOption{{Carrier: "USPS", Cost: 1500}},
		SelectedRate:      &shipping.RateOption{Carrier: "USPS", Cost: 1500},
		RatesFetched:      true,
	}
	// second saved address
	f.svc.addresses.(*fakeAddresses).addresses[8] = &account.Address{
		ID: 8, UserID: 9, AddressLine1: "2 Oak Ave", City: "Dallas", State: "TX", PostalCode: "75201", Country: "US",
	}

	summary, err := f.svc.SetShippingAddress(context.Background(), 9, 8, 0)

	require.NoError(t, err)
	assert.Nil(t, summary.Session.SelectedRate)
	assert.Empty(t, summary.Session.Rates)
	assert.Equal(t, uint(8), summary.Session.ShippingAddressID)
	assert.Equal(t, uint(8), summary.Session.BillingAddressID)
}

func TestFetchRates_AutoSelectsCheapest(t *testing.T) {
	f := newFixture(b2cUser())
	f.store.sessions[9] = &Session{UserID: 9, Step: StepDelivery, ShippingAddressID: 7}

	summary, err := f.svc.FetchRates(context.Background(), 9)

	require.NoError(t, err)
	require.Len(t, summary.Session.Rates, 2)
	require.NotNil(t, summary.Session.SelectedRate)
	assert.Equal(t, "ground", summary.Session.SelectedRate.ServiceCode)
	assert.Equal(t, int64(1500), summary.Totals.Shipping)
}

func TestFetchRates_FailureBlocksDeliveryGate(t *testing.T) {
	f := newFixture(b2cUser())
	f.rates.err = fmt.Errorf("carrier API unavailable")
	f.store.sessions[9] = &Session{UserID: 9, Step: StepDelivery, ShippingAddressID: 7}

	_, err := f.svc.FetchRates(context.Background(), 9)

	require.Error(t, err)
	session := f.store.sessions[9]
	assert.Nil(t, session.SelectedRate)
	ok, _ := session.CanProceed()
	assert.False(t, ok)
}

func TestEnsurePaymentIntent_CreatedAtMostOnce(t *testing.T) {
	f := newFixture(b2cUser())
	f.store.sessions[9] = &Session{
		UserID:            9,
		Step:              StepPayment,
		ShippingAddressID: 7,
		SelectedRate:      &shipping.RateOption{Carrier: "USPS", ServiceCode: "ground", Cost: 1500},
		PaymentMethod:     PaymentMethodCard,
	}

	first, err := f.svc.EnsurePaymentIntent(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "pi_test_123", first.Session.PaymentIntentID)

	second, err := f.svc.EnsurePaymentIntent(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, first.Session.ClientSecret, second.Session.ClientSecret)
	assert.Equal(t, 1, f.gateway.createCalls)
}

func TestStart_PreselectsDefaultAddress(t *testing.T) {
	f := newFixture(b2cUser())
	f.svc.addresses.(*fakeAddresses).defaultID = 7

	summary, err := f.svc.Start(context.Background(), 9)

	require.NoError(t, err)
	assert.Equal(t, uint(7), summary.Session.ShippingAddressID)
	assert.Equal(t, uint(7), summary.Session.BillingAddressID)
}

func TestEnsurePaymentIntent_RecreatesCanceledIntent(t *testing.T) {
	f := newFixture(b2cUser())
	f.gateway.intentStatus = "canceled"
	f.store.sessions[9] = &Session{
		UserID:            9,
		Step:              StepPayment,
		ShippingAddressID: 7,
		SelectedRate:      &shipping.RateOption{Carrier: "USPS", ServiceCode: "ground", Cost: 1500},
		PaymentMethod:     PaymentMethodCard,
		PaymentIntentID:   "pi_stale",
		ClientSecret:      "pi_stale_secret",
	}

	summary, err := f.svc.EnsurePaymentIntent(context.Background(), 9)

	require.NoError(t, err)
	assert.Equal(t, 1, f.gateway.createCalls)
	assert.Equal(t, "pi_test_123", summary.Session.PaymentIntentID)
}

func TestSetGovernmentDeclaration_RejectedForGSAAccounts(t *testing.T) {
	f := newFixture(&account.User{ID: 9, AccountType: account.TypeGSA})
	f.store.sessions[9] = &Session{UserID: 9, Step: StepDelivery, ShippingAddressID: 7}

	_, err := f.svc.SetGovernmentDeclaration(context.Background(), 9, &GovernmentDeclaration{GovernmentBuyer: true})

	assert.Error(t, err)
}

func TestSetPaymentMethod_NetTermsRestrictedToBusinessAccounts(t *testing.T) {
	f := newFixture(b2cUser())
	f.store.sessions[9] = &Session{UserID: 9, Step: StepPayment, ShippingAddressID: 7}

	_, err := f.svc.SetPaymentMethod(context.Background(), 9, PaymentMethodNetTerms, false)
	assert.Error(t, err)

	_, err = f.svc.SetPaymentMethod(context.Background(), 9, PaymentMethodCard, false)
	assert.NoError(t, err)
}

func TestAdvance_BlockedWithoutAddress(t *testing.T) {
	f := newFixture(b2cUser())
	f.store.sessions[9] = &Session{UserID: 9, Step: StepShipping}

	_, err := f.svc.Advance(context.Background(), 9)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "shipping address")
}

func TestPlaceOrder_CardHappyPath(t *testing.T) {
	f := newFixture(b2cUser())
	f.store.sessions[9] = reviewSession(9)

	result, err := f.svc.PlaceOrder(context.Background(), 9)

	require.NoError(t, err)
	require.NotNil(t, result.Order)
	assert.False(t, result.PaymentFailed)
	assert.Equal(t, "ORD-20260829-00001", result.Order.OrderNumber)

	// intent was attached to the created order before confirmation,
	// and the intent reference was recorded on the order row
	assert.Equal(t, uint(42), f.gateway.attachedOrder)
	assert.Equal(t, uint(42), f.orders.intentOrderID)
	assert.Equal(t, "pi_test_123", f.orders.attachedIntent)

	// order lines carry the tier-resolved unit price
	require.Len(t, f.orders.created.Items, 1)
	assert.Equal(t, int64(9000), f.orders.created.Items[0].UnitPrice)
	assert.Equal(t, "sale", f.orders.created.Items[0].PriceTier)

	// session is discarded after submission
	assert.Contains(t, f.store.deleted, uint(9))
}

func TestPlaceOrder_ConfirmFailureMarksOrderNotRolledBack(t *testing.T) {
	f := newFixture(b2cUser())
	f.gateway.confirmErr = fmt.Errorf("card declined")
	f.store.sessions[9] = reviewSession(9)

	result, err := f.svc.PlaceOrder(context.Background(), 9)

	require.NoError(t, err)
	require.NotNil(t, result.Order)
	assert.True(t, result.PaymentFailed)
	assert.Contains(t, result.PaymentError, "card declined")

	// compensating action ran against the created order
	assert.Equal(t, uint(42), f.orders.failedOrderID)
	assert.Contains(t, f.orders.failedReason, "card declined")
}

func TestPlaceOrder_NetTermsSkipsGateway(t *testing.T) {
	f := newFixture(&account.User{ID: 9, AccountType: account.TypeB2B})
	session := reviewSession(9)
	session.PaymentMethod = PaymentMethodNetTerms
	session.PaymentIntentID = ""
	session.ClientSecret = ""
	f.store.sessions[9] = session

	result, err := f.svc.PlaceOrder(context.Background(), 9)

	require.NoError(t, err)
	assert.False(t, result.PaymentFailed)
	assert.Equal(t, uint(0), f.gateway.attachedOrder)
}

func TestPlaceOrder_NetTermsCancelsStaleIntent(t *testing.T) {
	f := newFixture(&account.User{ID: 9, AccountType: account.TypeB2B})
	session := reviewSession(9)
	session.PaymentMethod = PaymentMethodNetTerms
	f.store.sessions[9] = session

	result, err := f.svc.PlaceOrder(context.Background(), 9)

	require.NoError(t, err)
	assert.False(t, result.PaymentFailed)
	// the card intent opened earlier in the session is voided
	assert.Equal(t, "pi_test_123", f.gateway.cancelledIntent)
	assert.Equal(t, uint(0), f.gateway.attachedOrder)
}

func TestPlaceOrder_RequiresReviewStep(t *testing.T) {
	f := newFixture(b2cUser())
	session := reviewSession(9)
	session.Step = StepPayment
	f.store.sessions[9] = session

	_, err := f.svc.PlaceOrder(context.Background(), 9)

	assert.Error(t, err)
}

func TestPlaceOrder_HardLimitBlocksPlacement(t *testing.T) {
	user := &account.User{ID: 9, AccountType: account.TypeB2B, HardOrderLimit: 10000}
	f := newFixture(user)
	f.store.sessions[9] = reviewSession(9)

	_, err := f.svc.PlaceOrder(context.Background(), 9)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "hard order limit")
	assert.Nil(t, f.orders.created)
}

func TestPlaceOrder_ApprovalThresholdIsAdvisory(t *testing.T) {
	user := &account.User{ID: 9, AccountType: account.TypeB2B, ApprovalThreshold: 10000}
	f := newFixture(user)
	f.store.sessions[9] = reviewSession(9)

	result, err := f.svc.PlaceOrder(context.Background(), 9)

	// B2B at 2 × wholesale 70.00 exceeds the 100.00 threshold but still places
	require.NoError(t, err)
	require.NotNil(t, result.Order)
	assert.True(t, f.orders.created.RequiresApproval)
}

func TestApplyCoupon_StoresDiscountAndRecomputes(t *testing.T) {
	f := newFixture(b2cUser())
	f.store.sessions[9] = reviewSession(9)

	summary, validation, err := f.svc.ApplyCoupon(context.Background(), 9, "SAVE20")

	require.NoError(t, err)
	assert.True(t, validation.Valid)
	assert.Equal(t, int64(2000), summary.Session.CouponDiscount)
	assert.Equal(t, int64(2000), summary.Totals.Discount)
	// tax is assessed on the undiscounted subtotal
	assert.Equal(t, int64(1440), summary.Totals.Tax)
	assert.Equal(t, int64(18000-2000+1500+1440), summary.Totals.Total)
}

func TestGetSummary_GovernmentToggleSurfacesSavings(t *testing.T) {
	f := newFixture(b2cUser())
	session := reviewSession(9)
	session.GovernmentBuyer = true
	session.AgencyName = "GSA Region 7"
	session.AgencyContactEmail = "buyer@gsa.gov"
	f.store.sessions[9] = session

	summary, err := f.svc.GetSummary(context.Background(), 9)

	require.NoError(t, err)
	// 2 × GSA 80.00 vs 2 × sale 90.00
	assert.Equal(t, int64(16000), summary.Totals.Subtotal)
	assert.Equal(t, int64(2000), summary.Totals.GovernmentSavings)
	assert.Equal(t, int64(0), summary.Totals.Tax)
	assert.True(t, summary.Totals.GovernmentPricing)
}
