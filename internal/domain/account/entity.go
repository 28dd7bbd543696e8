// internal/domain/account/entity.go
package account

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Type represents the pricing tier an account belongs to
type Type string

const (
	TypeB2C         Type = "b2c"
	TypeB2B         Type = "b2b"
	TypeGSA         Type = "gsa"
	TypeGovernment  Type = "government"
	TypeVolumeBuyer Type = "volume_buyer"
)

// Valid reports whether t is a known account type
func (t Type) Valid() bool {
	switch t {
	case TypeB2C, TypeB2B, TypeGSA, TypeGovernment, TypeVolumeBuyer:
		return true
	}
	return false
}

// WholesalePriced reports whether the account buys at the wholesale tier.
// Volume buyers get wholesale pricing but remain taxable.
func (t Type) WholesalePriced() bool {
	return t == TypeB2B || t == TypeVolumeBuyer
}

// GovernmentPriced reports whether the account natively buys at government pricing
func (t Type) GovernmentPriced() bool {
	return t == TypeGSA || t == TypeGovernment
}

// TaxExempt reports whether the account is exempt from sales tax
func (t Type) TaxExempt() bool {
	return t == TypeB2B || t == TypeGSA || t == TypeGovernment
}

// User represents a storefront account
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Email         string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password      string         `gorm:"not null;size:255" json:"-"`
	FirstName     string         `gorm:"size:100" json:"first_name"`
	LastName      string         `gorm:"size:100" json:"last_name"`
	Phone         string         `gorm:"size:20" json:"phone"`
	AccountType   Type           `gorm:"not null;default:'b2c';size:20" json:"account_type"`
	CompanyName   string         `gorm:"size:255" json:"company_name"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	IsAdmin       bool           `gorm:"default:false" json:"is_admin"`
	EmailVerified bool           `gorm:"default:false" json:"email_verified"`
	LastLoginAt   *time.Time     `json:"last_login_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// GSA contract holders
	GSAContractNumber string `gorm:"size:50" json:"gsa_contract_number,omitempty"`

	// B2B terms, in cents. Zero means the default from config applies.
	CreditLimit       int64 `gorm:"default:0" json:"credit_limit,omitempty"`
	ApprovalThreshold int64 `gorm:"default:0" json:"approval_threshold,omitempty"`
	HardOrderLimit    int64 `gorm:"default:0" json:"hard_order_limit,omitempty"`

	Addresses []Address `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"addresses,omitempty"`
}

// Address represents a saved shipping or billing address
type Address struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Type         string    `gorm:"size:20;default:'shipping'" json:"type"` // shipping, billing
	FirstName    string    `gorm:"size:100" json:"first_name"`
	LastName     string    `gorm:"size:100" json:"last_name"`
	Company      string    `gorm:"size:100" json:"company"`
	AddressLine1 string    `gorm:"size:255;not null" json:"address_line1"`
	AddressLine2 string    `gorm:"size:255" json:"address_line2"`
	City         string    `gorm:"size:100;not null" json:"city"`
	State        string    `gorm:"size:100" json:"state"`
	PostalCode   string    `gorm:"size:20" json:"postal_code"`
	Country      string    `gorm:"size:2;not null;default:'US'" json:"country"`
	Phone        string    `gorm:"size:20" json:"phone"`
	IsDefault    bool      `gorm:"default:false" json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName overrides
func (User) TableName() string    { return "users" }
func (Address) TableName() string { return "addresses" }

// BeforeCreate normalizes the email before user creation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = strings.ToLower(u.Email)
	if u.AccountType == "" {
		u.AccountType = TypeB2C
	}
	return nil
}

// GetFullName returns the user's full name
func (u *User) GetFullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// EffectiveHardOrderLimit returns the account's hard order limit,
// falling back to defaultLimit when none is set on the account.
// Only B2B-tier accounts carry a hard limit.
func (u *User) EffectiveHardOrderLimit(defaultLimit int64) int64 {
	if !u.AccountType.WholesalePriced() {
		return 0
	}
	if u.HardOrderLimit > 0 {
		return u.HardOrderLimit
	}
	return defaultLimit
}

// EffectiveApprovalThreshold returns the soft approval threshold for B2B orders
func (u *User) EffectiveApprovalThreshold(defaultThreshold int64) int64 {
	if !u.AccountType.WholesalePriced() {
		return 0
	}
	if u.ApprovalThreshold > 0 {
		return u.ApprovalThreshold
	}
	return defaultThreshold
}
