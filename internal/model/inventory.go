package model

import (
	"time"

	"github.com/google/uuid"
)

// Movement type constants — the type encodes the sign, quantity is always positive
const (
	MovementIn         = "in"
	MovementOut        = "out"
	MovementAdjustment = "adjustment"
)

// Movement reason constants
const (
	ReasonProcessing = "processing"
	ReasonSale       = "sale"
	ReasonDamage     = "damage"
	ReasonReturn     = "return"
	ReasonAdjustment = "adjustment"
)

// InventoryItem tracks the current stock level for one product.
// QuantityInStock is a denormalized projection of the movement ledger;
// both are written inside the same transaction.
type InventoryItem struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"product_id"`
	Product         *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	QuantityInStock int       `gorm:"type:int;not null;default:0;check:quantity_in_stock >= 0" json:"quantity_in_stock"`
	ReorderLevel    int       `gorm:"type:int;not null;default:10" json:"reorder_level"`
	LastUpdated     time.Time `gorm:"autoUpdateTime" json:"last_updated"`
	CreatedAt       time.Time `json:"created_at"`
}

// IsLowStock reports whether the item is at or below its reorder level
func (i InventoryItem) IsLowStock() bool {
	return i.QuantityInStock <= i.ReorderLevel
}

// StockMovement is one append-only ledger entry. Records are never edited
// or deleted; the signed sum of movements for an item must equal its
// cached QuantityInStock.
type StockMovement struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InventoryItemID uuid.UUID      `gorm:"type:uuid;not null;index" json:"inventory_item_id"`
	InventoryItem   *InventoryItem `gorm:"foreignKey:InventoryItemID" json:"-"`
	MovementType    string         `gorm:"type:varchar(15);not null;index" json:"movement_type"` // in, out, adjustment
	Reason          string         `gorm:"type:varchar(15);not null;index" json:"reason"`
	Quantity        int            `gorm:"type:int;not null" json:"quantity"`       // always > 0
	Reference       string         `gorm:"type:varchar(100)" json:"reference"`      // e.g., batch number or sale invoice
	Notes           string         `gorm:"type:text" json:"notes"`
	CreatedByID     *uuid.UUID     `gorm:"type:uuid" json:"created_by"`
	CreatedBy       *User          `gorm:"foreignKey:CreatedByID" json:"-"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
}

// SignedQuantity returns the quantity with the sign implied by the movement type.
// Adjustments, once stored, always carry type in or out; a bare adjustment
// record counts as an increase.
func (m StockMovement) SignedQuantity() int {
	if m.MovementType == MovementOut {
		return -m.Quantity
	}
	return m.Quantity
}
