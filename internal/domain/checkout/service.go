// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/account"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/shipping"
)

// Collaborator interfaces, satisfied by the concrete domain services.

// CartProvider supplies the buyer's cart contents
type CartProvider interface {
	GetCart(userID *uint, sessionID string) (*cart.Response, error)
}

// AccountProvider supplies the buyer's account
type AccountProvider interface {
	GetUser(userID uint) (*account.User, error)
}

// AddressProvider supplies the buyer's saved addresses
type AddressProvider interface {
	GetAddress(userID, addressID uint) (*account.Address, error)
	GetDefaultAddress(userID uint, addressType string) (*account.Address, error)
}

// CouponValidator validates discount codes against a subtotal
type CouponValidator interface {
	Validate(code string, subtotal int64) (*coupon.Validation, error)
}

// OrderCreator persists orders and records payment outcomes
type OrderCreator interface {
	Create(in *order.CreateInput) (*order.Order, error)
	AttachPaymentIntent(orderID uint, intentID string) error
	MarkPaymentFailed(orderID uint, intentID, reason string) error
}

// Service sequences the checkout wizard and the order placement
// pipeline: create order, attach payment intent, confirm payment.
type Service struct {
	config    *config.Config
	store     SessionStore
	carts     CartProvider
	accounts  AccountProvider
	addresses AddressProvider
	coupons   CouponValidator
	orders    OrderCreator
	rates     shipping.Provider
	gateway   payment.Gateway
}

// NewService creates a new checkout service
func NewService(
	cfg *config.Config,
	store SessionStore,
	carts CartProvider,
	accounts AccountProvider,
	addresses AddressProvider,
	coupons CouponValidator,
	orders OrderCreator,
	rates shipping.Provider,
	gateway payment.Gateway,
) *Service {
	return &Service{
		config:    cfg,
		store:     store,
		carts:     carts,
		accounts:  accounts,
		addresses: addresses,
		coupons:   coupons,
		orders:    orders,
		rates:     rates,
		gateway:   gateway,
	}
}

// Summary is the buyer-facing checkout state with live totals
type Summary struct {
	Session *Session       `json:"session"`
	Totals  pricing.Totals `json:"totals"`
	Steps   []Step         `json:"steps"`

	// B2B advisories. ApprovalRequired is informational; HardLimitExceeded
	// disables order placement.
	ApprovalRequired  bool   `json:"approval_required,omitempty"`
	HardLimitExceeded bool   `json:"hard_limit_exceeded,omitempty"`
	LimitMessage      string `json:"limit_message,omitempty"`
}

// Start opens a checkout session for the buyer, or resumes an
// in-progress one. The cart must not be empty.
func (s *Service) Start(ctx context.Context, userID uint) (*Summary, error) {
	user, err := s.accounts.GetUser(userID)
	if err != nil {
		return nil, err
	}

	cartResp, err := s.carts.GetCart(&userID, "")
	if err != nil {
		return nil, err
	}
	if len(cartResp.Items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	session, err := s.store.Get(ctx, userID)
	if err == ErrSessionNotFound {
		session = &Session{
			UserID: userID,
			Step:   StepShipping,
		}
		// Preselect the buyer's default address; the shipping step still
		// lets them pick another.
		if addr, err := s.addresses.GetDefaultAddress(userID, "shipping"); err == nil && addr != nil {
			session.ShippingAddressID = addr.ID
			session.BillingAddressID = addr.ID
		}
		if err := s.store.Save(ctx, session); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return s.buildSummary(session, user, cartResp)
}

// GetSummary returns the current session with recomputed totals
func (s *Service) GetSummary(ctx context.Context, userID uint) (*Summary, error) {
	session, user, cartResp, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildSummary(session, user, cartResp)
}

// SetShippingAddress selects the destination. Any previously fetched
// rates are discarded and must be re-fetched for the new address.
func (s *Service) SetShippingAddress(ctx context.Context, userID, addressID uint, billingAddressID uint) (*Summary, error) {
	session, user, cartResp, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.addresses.GetAddress(userID, addressID); err != nil {
		return nil, err
	}
	if billingAddressID != 0 && billingAddressID != addressID {
		if _, err := s.addresses.GetAddress(userID, billingAddressID); err != nil {
			return nil, err
		}
	}

	if session.ShippingAddressID != addressID {
		session.ResetShipping()
	}
	session.ShippingAddressID = addressID
	if billingAddressID != 0 {
		session.BillingAddressID = billingAddressID
	} else {
		session.BillingAddressID = addressID
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.buildSummary(session, user, cartResp)
}

// FetchRates quotes carrier rates for the selected address and
// auto-selects the cheapest option.
func (s *Service) FetchRates(ctx context.Context, userID uint) (*Summary, error) {
	session, user, cartResp, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.ShippingAddressID == 0 {
		return nil, fmt.Errorf("select a shipping address first")
	}

	addr, err := s.addresses.GetAddress(userID, session.ShippingAddressID)
	if err != nil {
		return nil, err
	}

	req := &shipping.RateRequest{
		ToAddress: shipping.Destination{
			AddressLine1: addr.AddressLine1,
			AddressLine2: addr.AddressLine2,
			City:         addr.City,
			State:        addr.State,
			PostalCode:   addr.PostalCode,
			Country:      addr.Country,
		},
	}
	for _, item := range cartResp.Items {
		req.Items = append(req.Items, shipping.RateItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
		if item.Product != nil && item.Product.RequiresShipping {
			req.TotalWeight += item.Product.Weight * float64(item.Quantity)
		}
	}

	rates, err := s.rates.GetRates(ctx, req)
	if err != nil {
		// Leave the session without rates; the delivery gate stays closed
		session.ResetShipping()
		session.RatesFetched = false
		if saveErr := s.store.Save(ctx, session); saveErr != nil {
			return nil, saveErr
		}
		return nil, fmt.Errorf("failed to fetch shipping rates: %w", err)
	}

	session.Rates = rates
	session.RatesFetched = true
	if len(rates) > 0 {
		selected := rates[0]
		session.SelectedRate = &selected
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.buildSummary(session, user, cartResp)
}

// SelectRate picks a specific rate option from the fetched list
func (s *Service) SelectRate(ctx context.Context, userID uint, serviceCode string) (*Summary, error) {
	session, user, cartResp, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	var found *shipping.RateOption
	for i := range session.Rates {
		if session.Rates[i].ServiceCode == serviceCode {
			found = &session.Rates[i]
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("unknown shipping option %q", serviceCode)
	}
	session.SelectedRate = found

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.buildSummary(session, user, cartResp)
}

// GovernmentDeclaration is the self-declared government purchase input
type GovernmentDeclaration struct {
	GovernmentBuyer    bool   `json:"government_buyer"`
	AgencyName         string `json:"agency_name"`
	AgencyContactEmail string `json:"agency_contact_email"`
	PurchaseOrder      string `json:"purchase_order"`
}

// SetGovernmentDeclaration records the government purchase toggle.
// Accounts already on government pricing do not use this step.
func (s *Service) SetGovernmentDeclaration(ctx context.Context, userID uint, decl *GovernmentDeclaration) (*Summary, error) {
	session, user, cartResp, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.AccountType.GovernmentPriced() {
		return nil, fmt.Errorf("account already receives government pricing")
	}

	session.GovernmentBuyer = decl.GovernmentBuyer
	if decl.GovernmentBuyer {
		session.AgencyName = decl.AgencyName
		session.AgencyContactEmail = decl.AgencyContactEmail
		session.PurchaseOrder = decl.PurchaseOrder
	} else {
		session.AgencyName = ""
		session.AgencyContactEmail = ""
		session.PurchaseOrder = ""
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.buildSummary(session, user, cartResp)
}

// SetPaymentMethod chooses card or net terms. Net terms are limited to
// business and government accounts.
func (s *Service) SetPaymentMethod(ctx context.Context, userID uint, method string, saveCard bool) (*Summary, error) {
	session, user, cartResp, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch method {
	case PaymentMethodCard:
	case PaymentMethodNetTerms:
		if !user.AccountType.WholesalePriced() && !user.AccountType.GovernmentPriced() {
			return nil, fmt.Errorf("net terms are only available to business and government accounts")
		}
	default:
		return nil, fmt.Errorf("unsupported payment method %q", method)
	}

	session.PaymentMethod = method
	session.SaveCard = saveCard

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.buildSummary(session, user, cartResp)
}

// ApplyCoupon validates a code against the current subtotal and stores
// the resulting discount on the session.
func (s *Service) ApplyCoupon(ctx context.Context, userID uint, code string) (*Summary, *coupon.Validation, error) {
	session, user, cartResp, err := s.load(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	totals := s.computeTotals(session, user, cartResp)
	validation, err := s.coupons.Validate(code, totals.Subtotal)
	if err != nil {
		return nil, nil, err
	}

	if validation.Valid {
		session.CouponCode = validation.Code
		session.CouponDiscount = validation.Discount
	} else {
		session.CouponCode = ""
		session.CouponDiscount = 0
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, nil, err
	}

	summary, err := s.buildSummary(session, user, cartResp)
	if err != nil {
		return nil, nil, err
	}
	return summary, validation, nil
}

// RemoveCoupon clears any applied coupon
func (s *Service) RemoveCoupon(ctx context.Context, userID uint) (*Summary, error) {
	session, user, cartResp, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	session.CouponCode = ""
	session.CouponDiscount = 0

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.buildSummary(session, user, cartResp)
}

// EnsurePaymentIntent lazily creates the payment intent for the card
// branch, sized to the current total. An existing client secret means
// the intent was already created for this session and is reused.
func (s *Service) EnsurePaymentIntent(ctx context.Context, userID uint) (*Summary, error) {
	session, user, cartResp, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if session.PaymentMethod != PaymentMethodCard {
		return nil, fmt.Errorf("payment intent only applies to card payments")
	}
	if session.ClientSecret != "" {
		// Sessions outlive intents sometimes; reuse only while the
		// gateway still considers the intent open.
		intent, err := s.gateway.GetIntent(ctx, session.PaymentIntentID)
		if err == nil && intent.Status != "canceled" {
			return s.buildSummary(session, user, cartResp)
		}
		session.PaymentIntentID = ""
		session.ClientSecret = ""
	}

	totals := s.computeTotals(session, user, cartResp)
	intent, err := s.gateway.CreateIntent(ctx, payment.CreateIntentInput{
		Amount:   totals.Total,
		SaveCard: session.SaveCard,
		Metadata: map[string]string{
			"user_id": fmt.Sprintf("%d", userID),
		},
	})
	if err != nil {
		return nil, err
	}

	session.PaymentIntentID = intent.ID
	session.ClientSecret = intent.ClientSecret

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.buildSummary(session, user, cartResp)
}

// Advance moves the wizard to the next step if the current step's gate
// is satisfied.
func (s *Service) Advance(ctx context.Context, userID uint) (*Summary, error) {
	session, user, cartResp, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if ok, reason := session.CanProceed(); !ok {
		return nil, fmt.Errorf("cannot continue: %s", reason)
	}

	next, ok := NextStep(session.Step, user.AccountType)
	if !ok {
		return nil, fmt.Errorf("no further step after %s", session.Step)
	}
	if next == StepSubmitted {
		return nil, fmt.Errorf("use place order to submit")
	}
	session.Step = next

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.buildSummary(session, user, cartResp)
}

// Back moves the wizard to the previous step
func (s *Service) Back(ctx context.Context, userID uint) (*Summary, error) {
	session, user, cartResp, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	prev, ok := PrevStep(session.Step, user.AccountType)
	if !ok {
		return nil, fmt.Errorf("already at the first step")
	}
	session.Step = prev

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.buildSummary(session, user, cartResp)
}

// PlaceOrderResult is the typed outcome of the placement pipeline.
// PaymentFailed means the order exists but its payment was declined;
// the buyer may retry payment against the same order.
type PlaceOrderResult struct {
	Order         *order.Order `json:"order"`
	PaymentFailed bool         `json:"payment_failed"`
	PaymentError  string       `json:"payment_error,omitempty"`
	ClientSecret  string       `json:"client_secret,omitempty"`
}

// PlaceOrder runs the placement pipeline from the review step:
//  1. create the order (order number assigned, inventory reserved)
//  2. card branch: attach the intent to the order, then confirm
//  3. on a synchronous gateway error, mark the order payment-failed
//     and surface the error; the order is never rolled back.
func (s *Service) PlaceOrder(ctx context.Context, userID uint) (*PlaceOrderResult, error) {
	session, user, cartResp, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if session.Step != StepReview {
		return nil, fmt.Errorf("checkout is not at the review step")
	}

	totals := s.computeTotals(session, user, cartResp)

	if limit := user.EffectiveHardOrderLimit(s.config.Commerce.B2BHardOrderLimit); limit > 0 && totals.Total > limit {
		return nil, fmt.Errorf("order total $%.2f exceeds your hard order limit of $%.2f",
			float64(totals.Total)/100, float64(limit)/100)
	}

	requiresApproval := false
	if threshold := user.EffectiveApprovalThreshold(s.config.Commerce.B2BApprovalThreshold); threshold > 0 && totals.Total > threshold {
		requiresApproval = true
	}

	in, err := s.buildCreateInput(session, user, cartResp, totals)
	if err != nil {
		return nil, err
	}
	in.RequiresApproval = requiresApproval

	o, err := s.orders.Create(in)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	result := &PlaceOrderResult{Order: o}

	if session.PaymentMethod == PaymentMethodCard {
		if err := s.gateway.AttachOrder(ctx, session.PaymentIntentID, o.ID, o.OrderNumber); err != nil {
			s.failPayment(o.ID, session.PaymentIntentID, err)
			result.PaymentFailed = true
			result.PaymentError = err.Error()
			return result, nil
		}

		// Mirror the intent reference onto the order so webhook events
		// can be matched without relying on gateway metadata alone.
		if err := s.orders.AttachPaymentIntent(o.ID, session.PaymentIntentID); err != nil {
			logrus.WithError(err).WithField("order_id", o.ID).
				Warn("Failed to record payment intent on order")
		}

		intent, err := s.gateway.Confirm(ctx, session.PaymentIntentID)
		if err != nil {
			s.failPayment(o.ID, session.PaymentIntentID, err)
			result.PaymentFailed = true
			result.PaymentError = err.Error()
			return result, nil
		}
		// Intents still requiring buyer action finish in the frontend
		// against the client secret; the webhook settles the outcome.
		result.ClientSecret = intent.ClientSecret
	} else if session.PaymentIntentID != "" {
		// The buyer switched away from card after an intent was opened;
		// void it so it cannot be confirmed against this order later.
		if err := s.gateway.CancelIntent(ctx, session.PaymentIntentID); err != nil {
			logrus.WithError(err).WithField("intent_id", session.PaymentIntentID).
				Warn("Failed to cancel unused payment intent")
		}
	}

	session.Step = StepSubmitted
	if err := s.store.Delete(ctx, userID); err != nil {
		logrus.WithError(err).Warn("Failed to discard checkout session after submission")
	}

	logrus.WithFields(logrus.Fields{
		"order_number":      o.OrderNumber,
		"user_id":           userID,
		"payment_method":    session.PaymentMethod,
		"requires_approval": requiresApproval,
	}).Info("Order placed")

	return result, nil
}

// failPayment applies the compensating action of the placement
// pipeline; the order stays on the books flagged payment-failed.
func (s *Service) failPayment(orderID uint, intentID string, cause error) {
	if err := s.orders.MarkPaymentFailed(orderID, intentID, cause.Error()); err != nil {
		logrus.WithError(err).WithField("order_id", orderID).
			Error("Failed to mark order payment-failed")
	}
}

func (s *Service) load(ctx context.Context, userID uint) (*Session, *account.User, *cart.Response, error) {
	session, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}

	user, err := s.accounts.GetUser(userID)
	if err != nil {
		return nil, nil, nil, err
	}

	cartResp, err := s.carts.GetCart(&userID, "")
	if err != nil {
		return nil, nil, nil, err
	}
	if len(cartResp.Items) == 0 {
		return nil, nil, nil, fmt.Errorf("cart is empty")
	}

	return session, user, cartResp, nil
}

// computeTotals rebuilds the full pricing input from live state. Totals
// are never cached across steps.
func (s *Service) computeTotals(session *Session, user *account.User, cartResp *cart.Response) pricing.Totals {
	lines := make([]pricing.Line, 0, len(cartResp.Items))
	for _, item := range cartResp.Items {
		lines = append(lines, pricing.Line{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Prices:    item.UnitPrices,
		})
	}

	shippingCost := pricing.NoShippingRate
	if session.SelectedRate != nil {
		shippingCost = session.SelectedRate.Cost
	}

	return pricing.ComputeTotals(pricing.Input{
		Lines:                 lines,
		AccountType:           user.AccountType,
		GovernmentBuyer:       session.GovernmentBuyer,
		ShippingCost:          shippingCost,
		CouponDiscount:        session.CouponDiscount,
		FreeShippingThreshold: s.config.Commerce.FreeShippingThreshold,
		FallbackShippingCost:  s.config.Commerce.FallbackShippingCost,
		TaxRate:               s.config.Commerce.TaxRate,
	})
}

func (s *Service) buildSummary(session *Session, user *account.User, cartResp *cart.Response) (*Summary, error) {
	totals := s.computeTotals(session, user, cartResp)

	summary := &Summary{
		Session: session,
		Totals:  totals,
		Steps:   StepsFor(user.AccountType),
	}

	if limit := user.EffectiveHardOrderLimit(s.config.Commerce.B2BHardOrderLimit); limit > 0 && totals.Total > limit {
		summary.HardLimitExceeded = true
		summary.LimitMessage = fmt.Sprintf("order total exceeds your hard order limit of $%.2f", float64(limit)/100)
	} else if threshold := user.EffectiveApprovalThreshold(s.config.Commerce.B2BApprovalThreshold); threshold > 0 && totals.Total > threshold {
		summary.ApprovalRequired = true
		summary.LimitMessage = fmt.Sprintf("orders over $%.2f require purchasing approval", float64(threshold)/100)
	}

	return summary, nil
}

func (s *Service) buildCreateInput(session *Session, user *account.User, cartResp *cart.Response, totals pricing.Totals) (*order.CreateInput, error) {
	shippingAddr, err := s.addresses.GetAddress(user.ID, session.ShippingAddressID)
	if err != nil {
		return nil, err
	}
	billingAddr := shippingAddr
	if session.BillingAddressID != 0 && session.BillingAddressID != session.ShippingAddressID {
		billingAddr, err = s.addresses.GetAddress(user.ID, session.BillingAddressID)
		if err != nil {
			return nil, err
		}
	}

	in := &order.CreateInput{
		UserID:            user.ID,
		AccountType:       user.AccountType,
		GovernmentBuyer:   session.GovernmentBuyer,
		AgencyName:        session.AgencyName,
		PurchaseOrder:     session.PurchaseOrder,
		Subtotal:          totals.Subtotal,
		DiscountAmount:    totals.Discount,
		ShippingAmount:    totals.Shipping,
		TaxAmount:         totals.Tax,
		TotalAmount:       totals.Total,
		GovernmentSavings: totals.GovernmentSavings,
		CouponCode:        session.CouponCode,
		PaymentMethod:     session.PaymentMethod,
		ShippingAddress:   snapshotAddress(shippingAddr),
		BillingAddress:    snapshotAddress(billingAddr),
		Notes:             session.Notes,
	}
	if session.SelectedRate != nil {
		in.ShippingCarrier = session.SelectedRate.Carrier
		in.ShippingService = session.SelectedRate.ServiceCode
	}

	for _, item := range cartResp.Items {
		if item.Product == nil {
			return nil, fmt.Errorf("product %d is no longer available", item.ProductID)
		}
		unitPrice := pricing.UnitPrice(item.UnitPrices, user.AccountType, session.GovernmentBuyer)
		in.Items = append(in.Items, order.ItemInput{
			ProductID: item.ProductID,
			SKU:       item.Product.SKU,
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
			PriceTier: pricing.PriceTier(item.UnitPrices, user.AccountType, session.GovernmentBuyer),
			Total:     unitPrice * int64(item.Quantity),
		})
	}

	return in, nil
}

func snapshotAddress(a *account.Address) order.Address {
	return order.Address{
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Company:      a.Company,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
		Phone:        a.Phone,
	}
}
