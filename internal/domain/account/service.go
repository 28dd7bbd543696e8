// internal/domain/account/service.go
package account

import (
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles account business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
}

// NewService creates a new account service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
	}
}

// RegisterRequest represents account registration data
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Phone       string `json:"phone"`
	AccountType Type   `json:"account_type"`
	CompanyName string `json:"company_name"`

	// Required when registering a GSA account
	GSAContractNumber string `json:"gsa_contract_number"`
}

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
}

// Register creates a new account
func (s *Service) Register(req *RegisterRequest) (*User, error) {
	accountType := req.AccountType
	if accountType == "" {
		accountType = TypeB2C
	}
	if !accountType.Valid() {
		return nil, fmt.Errorf("unknown account type: %s", accountType)
	}
	if accountType == TypeGSA && req.GSAContractNumber == "" {
		return nil, fmt.Errorf("GSA accounts require a contract number")
	}
	if accountType.WholesalePriced() && req.CompanyName == "" {
		return nil, fmt.Errorf("business accounts require a company name")
	}

	var existing User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("email is already registered")
	} else if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	hashed, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := User{
		Email:             req.Email,
		Password:          hashed,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Phone:             req.Phone,
		AccountType:       accountType,
		CompanyName:       req.CompanyName,
		GSAContractNumber: req.GSAContractNumber,
		IsActive:          true,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return &user, nil
}

// Authenticate verifies credentials and returns the account
func (s *Service) Authenticate(email, password string) (*User, error) {
	var user User
	if err := s.db.Where("email = ? AND is_active = ?", email, true).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("invalid email or password")
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := s.passwordManager.VerifyPassword(password, user.Password); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	now := time.Now().UTC()
	s.db.Model(&user).Update("last_login_at", now)
	user.LastLoginAt = &now

	return &user, nil
}

// GetUser retrieves an account by ID
func (s *Service) GetUser(userID uint) (*User, error) {
	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("account not found")
		}
		return nil, fmt.Errorf("failed to retrieve account: %w", err)
	}
	return &user, nil
}

// UpdateProfile updates mutable profile fields
func (s *Service) UpdateProfile(userID uint, req *UpdateProfileRequest) (*User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.CompanyName != "" {
		updates["company_name"] = req.CompanyName
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return user, nil
}
