package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProcessingBatch status constants
const (
	BatchInProgress = "in_progress"
	BatchCompleted  = "completed"
	BatchCancelled  = "cancelled"
)

// Quality grade constants shared by processed products and tree purchases
const (
	GradePremium  = "A"
	GradeStandard = "B"
	GradeEconomy  = "C"
)

// ProcessingBatch converts purchased trees into finished products
type ProcessingBatch struct {
	ID                  uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BatchNumber         string             `gorm:"type:varchar(50);uniqueIndex;not null" json:"batch_number"`
	TreePurchaseID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"tree_purchase_id"`
	TreePurchase        *TreePurchase      `gorm:"foreignKey:TreePurchaseID" json:"tree_purchase,omitempty"`
	ProcessingDate      time.Time          `gorm:"type:date;not null" json:"processing_date"`
	ProcessedByID       *uuid.UUID         `gorm:"type:uuid" json:"processed_by"`
	ProcessedBy         *User              `gorm:"foreignKey:ProcessedByID" json:"-"`
	LaborCost           decimal.Decimal    `gorm:"type:decimal(10,2);not null;default:0" json:"labor_cost"`
	EquipmentCost       decimal.Decimal    `gorm:"type:decimal(10,2);not null;default:0" json:"equipment_cost"`
	OtherCosts          decimal.Decimal    `gorm:"type:decimal(10,2);not null;default:0" json:"other_costs"`
	TotalProcessingCost decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"total_processing_cost"` // labor + equipment + other
	Status              string             `gorm:"type:varchar(15);not null;default:'in_progress';index" json:"status"`
	Notes               string             `gorm:"type:text" json:"notes"`
	ProcessedProducts   []ProcessedProduct `gorm:"foreignKey:ProcessingBatchID" json:"processed_products,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// ProcessedProduct is one product line produced by a processing batch
type ProcessedProduct struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProcessingBatchID uuid.UUID `gorm:"type:uuid;not null;index" json:"processing_batch_id"`
	ProductID         uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product           *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	QuantityProduced  int       `gorm:"type:int;not null" json:"quantity_produced"`
	QualityGrade      string    `gorm:"type:varchar(1);not null;default:'B'" json:"quality_grade"`
	StorageLocation   string    `gorm:"type:varchar(100)" json:"storage_location"`
	Notes             string    `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
}
