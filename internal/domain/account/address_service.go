// internal/domain/account/address_service.go
package account

import (
	"fmt"

	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// AddressService handles saved address management
type AddressService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAddressService creates a new address service
func NewAddressService(db *gorm.DB, cfg *config.Config) *AddressService {
	return &AddressService{
		db:     db,
		config: cfg,
	}
}

// AddressRequest represents address create/update data
type AddressRequest struct {
	Type         string `json:"type"`
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	Company      string `json:"company"`
	AddressLine1 string `json:"address_line1" binding:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code" binding:"required"`
	Country      string `json:"country" binding:"required,len=2"`
	Phone        string `json:"phone"`
	IsDefault    bool   `json:"is_default"`
}

// ListAddresses returns all addresses for a user
func (s *AddressService) ListAddresses(userID uint) ([]Address, error) {
	var addresses []Address
	if err := s.db.Where("user_id = ?", userID).Order("is_default DESC, created_at DESC").Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// GetAddress retrieves one address owned by the user
func (s *AddressService) GetAddress(userID, addressID uint) (*Address, error) {
	var address Address
	if err := s.db.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("address not found")
		}
		return nil, fmt.Errorf("failed to retrieve address: %w", err)
	}
	return &address, nil
}

// GetDefaultAddress retrieves the user's default address of the given type
func (s *AddressService) GetDefaultAddress(userID uint, addressType string) (*Address, error) {
	var address Address
	err := s.db.Where("user_id = ? AND type = ? AND is_default = ?", userID, addressType, true).
		First(&address).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("no default %s address", addressType)
		}
		return nil, fmt.Errorf("failed to retrieve default address: %w", err)
	}
	return &address, nil
}

// CreateAddress saves a new address
func (s *AddressService) CreateAddress(userID uint, req *AddressRequest) (*Address, error) {
	addressType := req.Type
	if addressType == "" {
		addressType = "shipping"
	}
	if addressType != "shipping" && addressType != "billing" {
		return nil, fmt.Errorf("invalid address type: %s", addressType)
	}

	address := Address{
		UserID:       userID,
		Type:         addressType,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Company:      req.Company,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		Phone:        req.Phone,
		IsDefault:    req.IsDefault,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := tx.Model(&Address{}).
				Where("user_id = ? AND type = ?", userID, addressType).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	return &address, nil
}

// UpdateAddress updates an existing address owned by the user
func (s *AddressService) UpdateAddress(userID, addressID uint, req *AddressRequest) (*Address, error) {
	address, err := s.GetAddress(userID, addressID)
	if err != nil {
		return nil, err
	}

	address.FirstName = req.FirstName
	address.LastName = req.LastName
	address.Company = req.Company
	address.AddressLine1 = req.AddressLine1
	address.AddressLine2 = req.AddressLine2
	address.City = req.City
	address.State = req.State
	address.PostalCode = req.PostalCode
	address.Country = req.Country
	address.Phone = req.Phone

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault && !address.IsDefault {
			if err := tx.Model(&Address{}).
				Where("user_id = ? AND type = ?", userID, address.Type).
				Update("is_default", false).Error; err != nil {
				return err
			}
			address.IsDefault = true
		}
		return tx.Save(address).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}

	return address, nil
}

// DeleteAddress removes an address owned by the user
func (s *AddressService) DeleteAddress(userID, addressID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", addressID, userID).Delete(&Address{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("address not found")
	}
	return nil
}
