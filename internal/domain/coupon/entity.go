// internal/domain/coupon/entity.go
package coupon

import (
	"time"

	"gorm.io/gorm"
)

// Coupon represents a flat-amount discount code.
// Amounts are integer cents.
type Coupon struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Code           string         `gorm:"uniqueIndex;not null;size:50" json:"code"`
	DiscountAmount int64          `gorm:"not null" json:"discount_amount"`
	MinOrderAmount int64          `gorm:"default:0" json:"min_order_amount"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Coupon) TableName() string {
	return "coupons"
}

// Expired reports whether the coupon is past its expiry
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}
