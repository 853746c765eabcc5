package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product category constants
const (
	CategoryPoles     = "poles"
	CategoryOffcuts   = "offcuts"
	CategoryFirewood  = "firewood"
	CategoryFurniture = "furniture"
)

// Unit of measure constants
const (
	UnitPieces      = "pieces"
	UnitBundles     = "bundles"
	UnitCubicMeters = "cubic_meters"
	UnitSets        = "sets"
)

// Product represents a finished timber product available for sale
type Product struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string          `gorm:"type:varchar(200);not null" json:"name"` // e.g., Round Pole 4 inch, Dining Chair
	Category     string          `gorm:"type:varchar(20);not null;index" json:"category"`
	Unit         string          `gorm:"type:varchar(20);not null;default:'pieces'" json:"unit"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"selling_price"`
	Description  string          `gorm:"type:text" json:"description"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}
