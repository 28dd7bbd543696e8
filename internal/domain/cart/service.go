// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"gorm.io/gorm"
)

// Service handles cart business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// ItemResponse is one cart line with product details attached
type ItemResponse struct {
	ProductID  uint               `json:"product_id"`
	Quantity   int                `json:"quantity"`
	Product    *catalog.Product   `json:"product,omitempty"`
	UnitPrices pricing.UnitPrices `json:"unit_prices"`
	AddedAt    time.Time          `json:"added_at"`
}

// Response is a cart with its lines
type Response struct {
	SessionID string         `json:"session_id,omitempty"`
	UserID    *uint          `json:"user_id,omitempty"`
	Items     []ItemResponse `json:"items"`
	ItemCount int            `json:"item_count"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// AddRequest represents an add-to-cart request
type AddRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateRequest represents a cart line update; quantity 0 removes the line
type UpdateRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// GetCart retrieves the cart for a user or guest session
func (s *Service) GetCart(userID *uint, sessionID string) (*Response, error) {
	var items []ItemResponse
	var updatedAt time.Time

	if userID != nil {
		var dbItems []CartItem
		if err := s.db.Where("user_id = ?", *userID).Order("created_at").Find(&dbItems).Error; err != nil {
			return nil, fmt.Errorf("failed to retrieve cart: %w", err)
		}
		items = make([]ItemResponse, len(dbItems))
		for i, item := range dbItems {
			items[i] = ItemResponse{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				AddedAt:   item.CreatedAt,
			}
			if item.UpdatedAt.After(updatedAt) {
				updatedAt = item.UpdatedAt
			}
		}
	} else {
		sessionCart, err := s.getGuestCart(sessionID)
		if err != nil {
			return nil, err
		}
		items = make([]ItemResponse, len(sessionCart.Items))
		for i, item := range sessionCart.Items {
			items[i] = ItemResponse{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				AddedAt:   item.AddedAt,
			}
		}
		updatedAt = sessionCart.UpdatedAt
	}

	if err := s.loadProductDetails(items); err != nil {
		return nil, err
	}

	count := 0
	for _, item := range items {
		count += item.Quantity
	}

	return &Response{
		SessionID: sessionID,
		UserID:    userID,
		Items:     items,
		ItemCount: count,
		UpdatedAt: updatedAt,
	}, nil
}

// AddItem adds a product to the cart
func (s *Service) AddItem(userID *uint, sessionID string, req *AddRequest) (*Response, error) {
	var product catalog.Product
	if err := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&product).Error; err != nil {
		return nil, fmt.Errorf("product not found or inactive")
	}

	if product.TrackQuantity && product.Quantity < req.Quantity {
		return nil, fmt.Errorf("insufficient inventory, available: %d", product.Quantity)
	}

	if userID != nil {
		if err := s.addToUserCart(*userID, &product, req.Quantity); err != nil {
			return nil, err
		}
	} else {
		if err := s.addToGuestCart(sessionID, &product, req.Quantity); err != nil {
			return nil, err
		}
	}

	return s.GetCart(userID, sessionID)
}

// UpdateItem changes a cart line quantity; zero removes the line
func (s *Service) UpdateItem(userID *uint, sessionID string, productID uint, req *UpdateRequest) (*Response, error) {
	if req.Quantity > 0 {
		var product catalog.Product
		if err := s.db.First(&product, productID).Error; err != nil {
			return nil, fmt.Errorf("product not found")
		}
		if product.TrackQuantity && product.Quantity < req.Quantity {
			return nil, fmt.Errorf("insufficient inventory, available: %d", product.Quantity)
		}
	}

	if userID != nil {
		if err := s.updateUserCartItem(*userID, productID, req.Quantity); err != nil {
			return nil, err
		}
	} else {
		if err := s.updateGuestCartItem(sessionID, productID, req.Quantity); err != nil {
			return nil, err
		}
	}

	return s.GetCart(userID, sessionID)
}

// RemoveItem removes a line from the cart
func (s *Service) RemoveItem(userID *uint, sessionID string, productID uint) (*Response, error) {
	return s.UpdateItem(userID, sessionID, productID, &UpdateRequest{Quantity: 0})
}

// ClearCart removes all lines
func (s *Service) ClearCart(userID *uint, sessionID string) error {
	if userID != nil {
		return s.db.Where("user_id = ?", *userID).Delete(&CartItem{}).Error
	}
	ctx := context.Background()
	return s.redisClient.Del(ctx, guestCartKey(sessionID)).Err()
}

// MergeGuestCartToUser folds a guest cart into the user's cart at login
func (s *Service) MergeGuestCartToUser(userID uint, sessionID string) error {
	guestCart, err := s.getGuestCart(sessionID)
	if err != nil || len(guestCart.Items) == 0 {
		return nil
	}

	for _, guestItem := range guestCart.Items {
		var existing CartItem
		result := s.db.Where("user_id = ? AND product_id = ?", userID, guestItem.ProductID).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			s.db.Create(&CartItem{
				UserID:    &userID,
				ProductID: guestItem.ProductID,
				Quantity:  guestItem.Quantity,
			})
		} else if result.Error == nil {
			existing.Quantity += guestItem.Quantity
			s.db.Save(&existing)
		}
	}

	return s.ClearCart(nil, sessionID)
}

// Private helpers

func (s *Service) addToUserCart(userID uint, product *catalog.Product, quantity int) error {
	var existing CartItem
	result := s.db.Where("user_id = ? AND product_id = ?", userID, product.ID).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		return s.db.Create(&CartItem{
			UserID:    &userID,
			ProductID: product.ID,
			Quantity:  quantity,
		}).Error
	}
	if result.Error != nil {
		return fmt.Errorf("failed to look up cart item: %w", result.Error)
	}

	newQuantity := existing.Quantity + quantity
	if product.TrackQuantity && product.Quantity < newQuantity {
		return fmt.Errorf("insufficient inventory for total quantity, available: %d", product.Quantity)
	}
	existing.Quantity = newQuantity
	return s.db.Save(&existing).Error
}

func (s *Service) addToGuestCart(sessionID string, product *catalog.Product, quantity int) error {
	sessionCart, err := s.getGuestCart(sessionID)
	if err != nil {
		return err
	}

	found := false
	for i := range sessionCart.Items {
		if sessionCart.Items[i].ProductID == product.ID {
			newQuantity := sessionCart.Items[i].Quantity + quantity
			if product.TrackQuantity && product.Quantity < newQuantity {
				return fmt.Errorf("insufficient inventory for total quantity, available: %d", product.Quantity)
			}
			sessionCart.Items[i].Quantity = newQuantity
			found = true
			break
		}
	}

	if !found {
		sessionCart.Items = append(sessionCart.Items, SessionCartItem{
			ProductID: product.ID,
			Quantity:  quantity,
			AddedAt:   time.Now().UTC(),
		})
	}

	sessionCart.UpdatedAt = time.Now().UTC()
	return s.saveGuestCart(sessionID, sessionCart)
}

func (s *Service) updateUserCartItem(userID, productID uint, quantity int) error {
	if quantity == 0 {
		return s.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&CartItem{}).Error
	}
	return s.db.Model(&CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity).Error
}

func (s *Service) updateGuestCartItem(sessionID string, productID uint, quantity int) error {
	sessionCart, err := s.getGuestCart(sessionID)
	if err != nil {
		return err
	}

	found := false
	for i := range sessionCart.Items {
		if sessionCart.Items[i].ProductID == productID {
			if quantity == 0 {
				sessionCart.Items = append(sessionCart.Items[:i], sessionCart.Items[i+1:]...)
			} else {
				sessionCart.Items[i].Quantity = quantity
			}
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("item not found in cart")
	}

	sessionCart.UpdatedAt = time.Now().UTC()
	return s.saveGuestCart(sessionID, sessionCart)
}

func guestCartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func (s *Service) getGuestCart(sessionID string) (*SessionCart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for guest cart")
	}

	ctx := context.Background()
	data, err := s.redisClient.Get(ctx, guestCartKey(sessionID)).Result()
	if err == redis.Nil {
		now := time.Now().UTC()
		return &SessionCart{
			SessionID: sessionID,
			Items:     []SessionCartItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	var sessionCart SessionCart
	if err := json.Unmarshal([]byte(data), &sessionCart); err != nil {
		return nil, err
	}
	return &sessionCart, nil
}

func (s *Service) saveGuestCart(sessionID string, sessionCart *SessionCart) error {
	ctx := context.Background()
	data, err := json.Marshal(sessionCart)
	if err != nil {
		return err
	}
	return s.redisClient.Set(ctx, guestCartKey(sessionID), data, 24*time.Hour).Err()
}

func (s *Service) loadProductDetails(items []ItemResponse) error {
	for i := range items {
		var product catalog.Product
		err := s.db.Preload("Category").Where("id = ?", items[i].ProductID).First(&product).Error
		if err != nil {
			continue // stale line, product may have been removed
		}
		items[i].Product = &product
		items[i].UnitPrices = pricing.UnitPrices{
			Base:      product.Price,
			Sale:      product.SalePrice,
			Wholesale: product.WholesalePrice,
			GSA:       product.GSAPrice,
		}
	}
	return nil
}
