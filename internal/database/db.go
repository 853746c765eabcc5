package database

import (
	"github.com/maxwelmichira/timberflow/internal/model"
	"github.com/maxwelmichira/timberflow/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Product{},
		&model.InventoryItem{},
		&model.StockMovement{},
		&model.Customer{},
		&model.Sale{},
		&model.SaleItem{},
		&model.Payment{},
		&model.Supplier{},
		&model.TreePurchase{},
		&model.ProcessingBatch{},
		&model.ProcessedProduct{},
		&model.Expense{},
		&model.Revenue{},
		&model.AuditLog{},
	)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to auto-migrate models")
	}

	return db, nil
}
