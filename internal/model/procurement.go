package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tree species constants
const (
	SpeciesPine       = "pine"
	SpeciesCypress    = "cypress"
	SpeciesCedar      = "cedar"
	SpeciesEucalyptus = "eucalyptus"
	SpeciesMahogany   = "mahogany"
	SpeciesOak        = "oak"
	SpeciesTeak       = "teak"
	SpeciesOther      = "other"
)

// Supplier represents a timber supplier
type Supplier struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name            string         `gorm:"type:varchar(200);not null" json:"name"`
	ContactPerson   string         `gorm:"type:varchar(100)" json:"contact_person"`
	Phone           string         `gorm:"type:varchar(15);not null" json:"phone"`
	Email           string         `gorm:"type:varchar(255)" json:"email"`
	PhysicalAddress string         `gorm:"type:text" json:"physical_address"`
	Rating          int            `gorm:"type:int;not null;default:3" json:"rating"` // 1..5
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	Notes           string         `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TreePurchase records a purchase of raw trees from a supplier
type TreePurchase struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SupplierID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier        *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	PurchaseDate    time.Time       `gorm:"type:date;not null;index" json:"purchase_date"`
	InvoiceNumber   string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"invoice_number"`
	TreeSpecies     string          `gorm:"type:varchar(20);not null;index" json:"tree_species"`
	Quantity        int             `gorm:"type:int;not null" json:"quantity"` // number of trees
	UnitCost        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_cost"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_cost"` // quantity * unit_cost
	AverageDiameter decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"average_diameter"` // inches
	AverageLength   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"average_length"`   // feet
	QualityGrade    string          `gorm:"type:varchar(1);not null;default:'B'" json:"quality_grade"`
	DeliveryDate    *time.Time      `gorm:"type:date" json:"delivery_date"`
	PaymentStatus   string          `gorm:"type:varchar(10);not null;default:'pending';index" json:"payment_status"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedByID     *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedBy       *User           `gorm:"foreignKey:CreatedByID" json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
