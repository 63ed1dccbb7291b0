package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// TestJWTSecret signs every token minted by TestConfig
const TestJWTSecret = "railtrace-test-secret"

// DefaultPassword is the password of every fixture account
const DefaultPassword = "correct-horse-battery"

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// TestConfig returns a configuration suitable for unit and integration tests
func TestConfig() *config.Config {
	return &config.Config{
		GoEnv:              "test",
		Port:               "0",
		LogLevel:           "disabled",
		CORSAllowedOrigins: []string{"*"},
		JWTSecret:          TestJWTSecret,
		JWTIssuer:          "railtrace",
		TokenTTL:           time.Hour,
		AWSRegion:          "ap-south-1",
		LoginMaxAttempts:   5,
		LoginWindow:        15 * time.Minute,
		AIRequestTimeout:   5 * time.Second,
		QRImageSize:        128,
		MaxOrderQuantity:   500,
	}
}

// NewTestDB opens an in-memory SQLite database with every model migrated.
// A single connection keeps the in-memory schema shared by all queries.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// HashPassword hashes with the minimum bcrypt cost to keep tests fast
func HashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	return string(hash)
}

// CreateVendor inserts a vendor with DefaultPassword
func CreateVendor(t *testing.T, db *gorm.DB, vendorID string) models.Vendor {
	t.Helper()
	email := gofakeit.Email()
	phone := gofakeit.Phone()
	address := gofakeit.Address().Address
	vendor := models.Vendor{
		VendorID:     vendorID,
		VendorName:   gofakeit.Company(),
		PasswordHash: HashPassword(t, DefaultPassword),
		Email:        &email,
		Phone:        &phone,
		Address:      &address,
	}
	mustCreate(t, db, &vendor)
	return vendor
}

// CreateWorker inserts a worker with DefaultPassword
func CreateWorker(t *testing.T, db *gorm.DB, workerID string) models.Worker {
	t.Helper()
	phone := gofakeit.Phone()
	worker := models.Worker{
		WorkerID:     workerID,
		WorkerName:   gofakeit.Name(),
		PasswordHash: HashPassword(t, DefaultPassword),
		Phone:        &phone,
	}
	mustCreate(t, db, &worker)
	return worker
}

// CreateOfficer inserts an officer with DefaultPassword
func CreateOfficer(t *testing.T, db *gorm.DB, officerID string) models.Officer {
	t.Helper()
	designation := gofakeit.JobTitle()
	officer := models.Officer{
		OfficerID:    officerID,
		OfficerName:  gofakeit.Name(),
		PasswordHash: HashPassword(t, DefaultPassword),
		Designation:  &designation,
	}
	mustCreate(t, db, &officer)
	return officer
}

// CreateOrder inserts a pending order for the vendor
func CreateOrder(t *testing.T, db *gorm.DB, vendorID, orderID, orderType string, quantity int) models.Order {
	t.Helper()
	order := models.Order{
		OrderID:       orderID,
		VendorID:      vendorID,
		ComponentType: gofakeit.RandomString([]string{"elastic rail clip", "liner", "rail pad", "sleeper"}),
		Quantity:      quantity,
		OrderType:     orderType,
		Status:        models.OrderStatusPending,
	}
	mustCreate(t, db, &order)
	return order
}

// CreateFittingChain inserts a lot, a batch and one fitting for an existing order
func CreateFittingChain(t *testing.T, db *gorm.DB, order models.Order, lotNumber int) (models.Lot, models.Batch, models.Fitting) {
	t.Helper()
	lot := models.Lot{
		LotID:     models.LotIDFor(order.VendorID, lotNumber),
		VendorID:  order.VendorID,
		LotNumber: lotNumber,
		OrderID:   &order.OrderID,
	}
	mustCreate(t, db, &lot)

	batch := models.Batch{
		BatchID:     models.BatchIDFor(lot.LotID, 1),
		LotID:       lot.LotID,
		OrderID:     order.OrderID,
		BatchNumber: 1,
	}
	mustCreate(t, db, &batch)

	fitting := models.Fitting{
		FittingID:  models.FittingIDFor(batch.BatchID, 1),
		ItemNumber: 1,
		BatchID:    batch.BatchID,
		Status:     models.FittingStatusNew,
	}
	mustCreate(t, db, &fitting)
	return lot, batch, fitting
}

// UniqueID returns a prefixed id unique within a test run
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s%s", prefix, gofakeit.LetterN(8))
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("Failed to create fixture %T: %v", value, err)
	}
}
