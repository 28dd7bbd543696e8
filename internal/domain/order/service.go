// internal/domain/order/service.go
package order

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/account"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// Service handles order persistence and lifecycle
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ItemInput is one order line, priced upstream
type ItemInput struct {
	ProductID uint
	SKU       string
	Name      string
	Quantity  int
	UnitPrice int64
	PriceTier string
	Total     int64
}

// CreateInput carries everything needed to persist an order
type CreateInput struct {
	UserID          uint
	AccountType     account.Type
	GovernmentBuyer bool
	AgencyName      string
	PurchaseOrder   string

	Items []ItemInput

	Subtotal          int64
	DiscountAmount    int64
	ShippingAmount    int64
	TaxAmount         int64
	TotalAmount       int64
	GovernmentSavings int64
	CouponCode        string

	ShippingCarrier string
	ShippingService string
	PaymentMethod   string

	ShippingAddress Address
	BillingAddress  Address
	Notes           string

	// RequiresApproval places the order in pending_approval instead of
	// pending, for B2B orders over the account's approval threshold.
	RequiresApproval bool
}

// Create persists an order, decrements inventory and clears the user's
// cart, all in one transaction.
func (s *Service) Create(in *CreateInput) (*Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}

	var created *Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderNumber, err := s.generateOrderNumber(tx)
		if err != nil {
			return fmt.Errorf("failed to generate order number: %w", err)
		}

		status := StatusPending
		comment := "Order created"
		if in.RequiresApproval {
			status = StatusPendingApproval
			comment = "Order awaiting purchasing approval"
		}

		o := &Order{
			OrderNumber:       orderNumber,
			UserID:            in.UserID,
			AccountType:       in.AccountType,
			GovernmentBuyer:   in.GovernmentBuyer,
			AgencyName:        in.AgencyName,
			PurchaseOrder:     in.PurchaseOrder,
			Status:            status,
			PaymentStatus:     PaymentStatusPending,
			Currency:          s.config.Commerce.Currency,
			Subtotal:          in.Subtotal,
			DiscountAmount:    in.DiscountAmount,
			ShippingAmount:    in.ShippingAmount,
			TaxAmount:         in.TaxAmount,
			TotalAmount:       in.TotalAmount,
			GovernmentSavings: in.GovernmentSavings,
			CouponCode:        in.CouponCode,
			ShippingCarrier:   in.ShippingCarrier,
			ShippingService:   in.ShippingService,
			PaymentMethod:     in.PaymentMethod,
			ShippingAddress:   in.ShippingAddress,
			BillingAddress:    in.BillingAddress,
			Notes:             in.Notes,
		}

		for _, item := range in.Items {
			o.Items = append(o.Items, Item{
				ProductID: item.ProductID,
				SKU:       item.SKU,
				Name:      item.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				PriceTier: item.PriceTier,
				Total:     item.Total,
			})
		}

		if err := tx.Create(o).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, item := range in.Items {
			result := tx.Model(&catalog.Product{}).
				Where("id = ? AND (track_quantity = ? OR quantity >= ?)", item.ProductID, false, item.Quantity).
				Update("quantity", gorm.Expr("quantity - ?", item.Quantity))
			if result.Error != nil {
				return fmt.Errorf("failed to reserve inventory: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("insufficient inventory for product %d", item.ProductID)
			}
		}

		if err := tx.Create(&StatusHistory{
			OrderID: o.ID,
			Status:  status,
			Comment: comment,
		}).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		// Clear the user's cart so a refresh cannot resubmit the same lines
		if err := tx.Exec("DELETE FROM cart_items WHERE user_id = ?", in.UserID).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_number": created.OrderNumber,
		"user_id":      created.UserID,
		"account_type": created.AccountType,
		"total":        created.TotalAmount,
	}).Info("Order created")

	return created, nil
}

// AttachPaymentIntent stores the gateway intent reference on the order
func (s *Service) AttachPaymentIntent(orderID uint, intentID string) error {
	return s.db.Model(&Order{}).
		Where("id = ?", orderID).
		Update("payment_intent_id", intentID).Error
}

// MarkPaid records a successful payment and confirms the order.
// Orders awaiting B2B approval keep their status and only the payment
// side advances.
func (s *Service) MarkPaid(orderID uint, intentID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var o Order
		if err := tx.First(&o, orderID).Error; err != nil {
			return fmt.Errorf("order not found: %w", err)
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{"payment_status": PaymentStatusPaid}
		if o.Status == StatusPending {
			updates["status"] = StatusConfirmed
		}
		if err := tx.Model(&o).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		if err := tx.Create(&Payment{
			OrderID:         o.ID,
			Amount:          o.TotalAmount,
			Currency:        o.Currency,
			Status:          PaymentStatusPaid,
			Method:          o.PaymentMethod,
			PaymentIntentID: intentID,
			ProcessedAt:     &now,
		}).Error; err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		if o.Status == StatusPending {
			if err := tx.Create(&StatusHistory{
				OrderID: o.ID,
				Status:  StatusConfirmed,
				Comment: "Payment received",
			}).Error; err != nil {
				return fmt.Errorf("failed to record status history: %w", err)
			}
		}
		return nil
	})
}

// MarkPaymentFailed records a failed payment attempt. The order stays
// open so the buyer can retry with another payment method.
func (s *Service) MarkPaymentFailed(orderID uint, intentID, reason string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var o Order
		if err := tx.First(&o, orderID).Error; err != nil {
			return fmt.Errorf("order not found: %w", err)
		}

		if err := tx.Model(&o).Update("payment_status", PaymentStatusFailed).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		now := time.Now().UTC()
		if err := tx.Create(&Payment{
			OrderID:         o.ID,
			Amount:          o.TotalAmount,
			Currency:        o.Currency,
			Status:          PaymentStatusFailed,
			Method:          o.PaymentMethod,
			PaymentIntentID: intentID,
			FailureReason:   reason,
			ProcessedAt:     &now,
		}).Error; err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		return nil
	})
}

// UpdateStatus moves an order through the status state machine
func (s *Service) UpdateStatus(orderID uint, target Status, comment string, actorID *uint) (*Order, error) {
	var o Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&o, orderID).Error; err != nil {
			return fmt.Errorf("order not found: %w", err)
		}

		if !o.Status.CanTransitionTo(target) {
			return fmt.Errorf("invalid status transition from %s to %s", o.Status, target)
		}

		updates := map[string]interface{}{"status": target}
		now := time.Now().UTC()
		switch target {
		case StatusShipped:
			updates["shipped_at"] = &now
		case StatusDelivered:
			updates["delivered_at"] = &now
		}
		if err := tx.Model(&o).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}

		if err := tx.Create(&StatusHistory{
			OrderID:   o.ID,
			Status:    target,
			Comment:   comment,
			CreatedBy: actorID,
		}).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		o.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrder retrieves an order owned by the user
func (s *Service) GetOrder(userID, orderID uint) (*Order, error) {
	var o Order
	err := s.db.Preload("Items").Preload("Payments").Preload("StatusHistory").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// GetOrderByNumber retrieves an order by its public number
func (s *Service) GetOrderByNumber(userID uint, orderNumber string) (*Order, error) {
	var o Order
	err := s.db.Preload("Items").Preload("StatusHistory").
		Where("order_number = ? AND user_id = ?", orderNumber, userID).
		First(&o).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// GetOrderByPaymentIntent looks up an order from a gateway intent ID,
// used by webhook handling.
func (s *Service) GetOrderByPaymentIntent(intentID string) (*Order, error) {
	var o Order
	err := s.db.Where("payment_intent_id = ?", intentID).First(&o).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("order not found for payment intent")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// ListOrders returns the user's orders newest first
func (s *Service) ListOrders(userID uint, page, limit int) ([]Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := s.db.Model(&Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// CancelOrder cancels an order that has not shipped and restores inventory
func (s *Service) CancelOrder(userID, orderID uint, reason string) (*Order, error) {
	var o Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Where("id = ? AND user_id = ?", orderID, userID).First(&o).Error; err != nil {
			return fmt.Errorf("order not found")
		}

		if !o.Status.CanTransitionTo(StatusCancelled) {
			return fmt.Errorf("order in status %s cannot be cancelled", o.Status)
		}

		if err := tx.Model(&o).Update("status", StatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}

		for _, item := range o.Items {
			if err := tx.Model(&catalog.Product{}).
				Where("id = ? AND track_quantity = ?", item.ProductID, true).
				Update("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error; err != nil {
				return fmt.Errorf("failed to restore inventory: %w", err)
			}
		}

		if err := tx.Create(&StatusHistory{
			OrderID:   o.ID,
			Status:    StatusCancelled,
			Comment:   reason,
			CreatedBy: &userID,
		}).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		o.Status = StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// generateOrderNumber builds ORD-YYYYMMDD-NNNNN from the day's order count
func (s *Service) generateOrderNumber(tx *gorm.DB) (string, error) {
	today := time.Now().UTC().Format("20060102")

	var count int64
	err := tx.Model(&Order{}).
		Where("order_number LIKE ?", fmt.Sprintf("ORD-%s-%%", today)).
		Count(&count).Error
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("ORD-%s-%05d", today, count+1), nil
}
