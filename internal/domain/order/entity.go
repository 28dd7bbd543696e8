// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/account"
	"gorm.io/gorm"
)

// Status represents order lifecycle states
type Status string

const (
	StatusPending         Status = "pending"
	StatusPendingApproval Status = "pending_approval"
	StatusConfirmed       Status = "confirmed"
	StatusProcessing      Status = "processing"
	StatusShipped         Status = "shipped"
	StatusDelivered       Status = "delivered"
	StatusCancelled       Status = "cancelled"
	StatusRefunded        Status = "refunded"
)

// PaymentStatus represents payment states
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// validTransitions is the allowed status state machine
var validTransitions = map[Status][]Status{
	StatusPending:         {StatusPendingApproval, StatusConfirmed, StatusCancelled},
	StatusPendingApproval: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:       {StatusProcessing, StatusCancelled},
	StatusProcessing:      {StatusShipped, StatusCancelled},
	StatusShipped:         {StatusDelivered},
	StatusDelivered:       {StatusRefunded},
	StatusCancelled:       {},
	StatusRefunded:        {},
}

// CanTransitionTo reports whether moving from s to target is allowed
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Order represents a placed order. All money fields are integer cents.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`

	// Pricing context captured at placement time
	AccountType     account.Type `gorm:"not null;size:20" json:"account_type"`
	GovernmentBuyer bool         `gorm:"default:false" json:"government_buyer"`
	AgencyName      string       `gorm:"size:255" json:"agency_name,omitempty"`
	PurchaseOrder   string       `gorm:"size:100" json:"purchase_order,omitempty"`

	Status        Status        `gorm:"not null;default:'pending';size:30" json:"status"`
	PaymentStatus PaymentStatus `gorm:"not null;default:'pending';size:20" json:"payment_status"`

	Currency          string `gorm:"size:3;default:'USD'" json:"currency"`
	Subtotal          int64  `gorm:"not null" json:"subtotal"`
	DiscountAmount    int64  `gorm:"default:0" json:"discount_amount"`
	ShippingAmount    int64  `gorm:"default:0" json:"shipping_amount"`
	TaxAmount         int64  `gorm:"default:0" json:"tax_amount"`
	TotalAmount       int64  `gorm:"not null" json:"total_amount"`
	GovernmentSavings int64  `gorm:"default:0" json:"government_savings,omitempty"`

	CouponCode string `gorm:"size:50" json:"coupon_code,omitempty"`

	// Selected carrier service
	ShippingCarrier string `gorm:"size:50" json:"shipping_carrier,omitempty"`
	ShippingService string `gorm:"size:50" json:"shipping_service,omitempty"`

	PaymentIntentID string `gorm:"size:255;index" json:"payment_intent_id,omitempty"`
	PaymentMethod   string `gorm:"size:50" json:"payment_method,omitempty"`

	// Address snapshots
	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	BillingAddress  Address `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	ShippedAt   *time.Time     `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Items         []Item          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	Payments      []Payment       `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"payments,omitempty"`
	StatusHistory []StatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// Address is an immutable address snapshot embedded in the order
type Address struct {
	FirstName    string `gorm:"size:100" json:"first_name"`
	LastName     string `gorm:"size:100" json:"last_name"`
	Company      string `gorm:"size:100" json:"company,omitempty"`
	AddressLine1 string `gorm:"size:255" json:"address_line1"`
	AddressLine2 string `gorm:"size:255" json:"address_line2,omitempty"`
	City         string `gorm:"size:100" json:"city"`
	State        string `gorm:"size:100" json:"state"`
	PostalCode   string `gorm:"size:20" json:"postal_code"`
	Country      string `gorm:"size:2" json:"country"`
	Phone        string `gorm:"size:20" json:"phone,omitempty"`
}

// Item is an order line with the unit price and tier frozen at placement
type Item struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OrderID   uint   `gorm:"not null;index" json:"order_id"`
	ProductID uint   `gorm:"not null" json:"product_id"`
	SKU       string `gorm:"size:100" json:"sku"`
	Name      string `gorm:"size:255" json:"name"`
	Quantity  int    `gorm:"not null" json:"quantity"`
	UnitPrice int64  `gorm:"not null" json:"unit_price"`
	PriceTier string `gorm:"size:20" json:"price_tier"` // base, sale, wholesale, gsa
	Total     int64  `gorm:"not null" json:"total"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payment is a payment attempt record against an order
type Payment struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	OrderID         uint          `gorm:"not null;index" json:"order_id"`
	Amount          int64         `gorm:"not null" json:"amount"`
	Currency        string        `gorm:"size:3;default:'USD'" json:"currency"`
	Status          PaymentStatus `gorm:"not null;size:20" json:"status"`
	Method          string        `gorm:"size:50" json:"method"`
	PaymentIntentID string        `gorm:"size:255" json:"payment_intent_id,omitempty"`
	FailureReason   string        `gorm:"size:500" json:"failure_reason,omitempty"`
	ProcessedAt     *time.Time    `json:"processed_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// StatusHistory records each status change for auditing
type StatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Status    Status    `gorm:"not null;size:30" json:"status"`
	Comment   string    `gorm:"size:500" json:"comment,omitempty"`
	CreatedBy *uint     `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string         { return "orders" }
func (Item) TableName() string          { return "order_items" }
func (Payment) TableName() string       { return "order_payments" }
func (StatusHistory) TableName() string { return "order_status_history" }
