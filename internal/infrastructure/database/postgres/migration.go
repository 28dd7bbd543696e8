// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/account"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	logrus.Info("Running database auto-migrations")

	// Dependency order matters: orders reference users and products
	models := []interface{}{
		&account.User{},
		&account.Address{},

		&catalog.Category{},
		&catalog.Product{},

		&cart.CartItem{},

		&coupon.Coupon{},

		&order.Order{},
		&order.Item{},
		&order.Payment{},
		&order.StatusHistory{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	logrus.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_account_type ON users(account_type)",

		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",

		"CREATE INDEX IF NOT EXISTS idx_cart_items_user_product ON cart_items(user_id, product_id)",

		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)",
		"CREATE INDEX IF NOT EXISTS idx_order_payments_intent ON order_payments(payment_intent_id)",
	}

	for _, idx := range indexes {
		if err := m.db.Exec(idx).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// SeedData inserts development fixtures: one account per pricing tier,
// a small tiered catalog and a couple of coupons. Idempotent.
func (m *Migration) SeedData() error {
	var userCount int64
	m.db.Model(&account.User{}).Count(&userCount)
	if userCount > 0 {
		return nil
	}

	logrus.Info("Seeding development data")

	hash := func(pw string) string {
		h, _ := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		return string(h)
	}

	users := []account.User{
		{Email: "admin@storefront.local", Password: hash("Admin123!"), FirstName: "Site", LastName: "Admin", AccountType: account.TypeB2C, IsAdmin: true, IsActive: true, EmailVerified: true},
		{Email: "retail@storefront.local", Password: hash("Retail123!"), FirstName: "Rita", LastName: "Retail", AccountType: account.TypeB2C, IsActive: true, EmailVerified: true},
		{Email: "buyer@acme.example", Password: hash("Acme1234!"), FirstName: "Bob", LastName: "Buyer", AccountType: account.TypeB2B, CompanyName: "Acme Industrial", ApprovalThreshold: 200000, HardOrderLimit: 1000000, IsActive: true, EmailVerified: true},
		{Email: "contracts@gsa.example", Password: hash("Gsa12345!"), FirstName: "Grace", LastName: "Santos", AccountType: account.TypeGSA, CompanyName: "GSA Region 7", GSAContractNumber: "GS-07F-0001X", IsActive: true, EmailVerified: true},
		{Email: "purchasing@city.example", Password: hash("City1234!"), FirstName: "Gary", LastName: "Vance", AccountType: account.TypeGovernment, CompanyName: "City of Springfield", IsActive: true, EmailVerified: true},
		{Email: "bulk@reseller.example", Password: hash("Bulk1234!"), FirstName: "Vera", LastName: "Volume", AccountType: account.TypeVolumeBuyer, CompanyName: "Bulk Reseller LLC", IsActive: true, EmailVerified: true},
	}
	if err := m.db.Create(&users).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	categories := []catalog.Category{
		{Name: "Office Furniture", Slug: "office-furniture", IsActive: true},
		{Name: "Technology", Slug: "technology", IsActive: true},
	}
	if err := m.db.Create(&categories).Error; err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	products := []catalog.Product{
		{
			SKU: "DESK-STD-01", Name: "Standing Desk", Slug: "standing-desk",
			Description: "Height-adjustable standing desk",
			Price:       10000, SalePrice: 9000, WholesalePrice: 7000, GSAPrice: 8000,
			CategoryID: categories[0].ID, Weight: 28000,
			IsActive: true, RequiresShipping: true, TrackQuantity: true, Quantity: 120,
		},
		{
			SKU: "CHAIR-ERG-02", Name: "Ergonomic Task Chair", Slug: "ergonomic-task-chair",
			Description: "Mesh-back task chair with lumbar support",
			Price:       25000, WholesalePrice: 18000, GSAPrice: 21000,
			CategoryID: categories[0].ID, Weight: 14000,
			IsActive: true, RequiresShipping: true, TrackQuantity: true, Quantity: 200,
		},
		{
			SKU: "MON-27-4K", Name: "27-inch 4K Monitor", Slug: "27-inch-4k-monitor",
			Description: "27-inch IPS display, 4K UHD",
			Price:       45000, SalePrice: 39900,
			CategoryID: categories[1].ID, Weight: 6200,
			IsActive: true, RequiresShipping: true, TrackQuantity: true, Quantity: 80,
		},
		{
			SKU: "LIC-SUITE-1Y", Name: "Productivity Suite License (1yr)", Slug: "productivity-suite-license",
			Description: "Annual license, delivered electronically",
			Price:       12000, WholesalePrice: 9600, GSAPrice: 10800,
			CategoryID: categories[1].ID,
			IsActive:   true, RequiresShipping: false, TrackQuantity: false,
		},
	}
	if err := m.db.Create(&products).Error; err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	expiry := time.Now().UTC().AddDate(1, 0, 0)
	coupons := []coupon.Coupon{
		{Code: "SAVE20", DiscountAmount: 2000, MinOrderAmount: 5000, IsActive: true, ExpiresAt: &expiry},
		{Code: "WELCOME10", DiscountAmount: 1000, IsActive: true},
		{Code: "EXPIRED5", DiscountAmount: 500, IsActive: true, ExpiresAt: ptrTime(time.Now().UTC().AddDate(0, -1, 0))},
	}
	if err := m.db.Create(&coupons).Error; err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	return nil
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
