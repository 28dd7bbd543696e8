// internal/domain/coupon/service.go
package coupon

import (
	"fmt"
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles coupon validation
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new coupon service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ValidationRequest represents a coupon validation request
type ValidationRequest struct {
	Code     string `json:"code" binding:"required"`
	Subtotal int64  `json:"subtotal" binding:"min=0"`
}

// Validation represents a coupon validation result
type Validation struct {
	Valid    bool   `json:"valid"`
	Code     string `json:"code"`
	Discount int64  `json:"discount,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Validate checks a coupon code against the current subtotal.
// Business rejections come back as an invalid Validation, not an error;
// errors are reserved for storage failures.
func (s *Service) Validate(code string, subtotal int64) (*Validation, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	var c Coupon
	err := s.db.Where("code = ?", normalized).First(&c).Error
	if err == gorm.ErrRecordNotFound {
		return &Validation{Valid: false, Code: normalized, Message: "invalid coupon code"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up coupon: %w", err)
	}

	if !c.IsActive {
		return &Validation{Valid: false, Code: normalized, Message: "coupon is no longer active"}, nil
	}
	if c.Expired(time.Now().UTC()) {
		return &Validation{Valid: false, Code: normalized, Message: "coupon has expired"}, nil
	}
	if subtotal < c.MinOrderAmount {
		return &Validation{
			Valid:   false,
			Code:    normalized,
			Message: fmt.Sprintf("minimum order amount of $%.2f required", float64(c.MinOrderAmount)/100),
		}, nil
	}

	return &Validation{
		Valid:    true,
		Code:     normalized,
		Discount: c.DiscountAmount,
	}, nil
}
