package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment method constants
const (
	PaymentCash   = "cash"
	PaymentMpesa  = "mpesa"
	PaymentBank   = "bank"
	PaymentCredit = "credit"
)

// Payment status constants
const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// Customer represents a buyer of timber products
type Customer struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(200);not null" json:"name"`
	Phone     string         `gorm:"type:varchar(15);not null" json:"phone"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	Address   string         `gorm:"type:text" json:"address"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Sale is the aggregate root for a sales transaction. TotalAmount and
// AmountPaid are projections of the SaleItem and Payment ledgers and are
// only ever updated inside the same transaction as the child insert.
type Sale struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index" json:"customer_id"`
	Customer      *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	SaleDate      time.Time       `gorm:"type:date;not null;index" json:"sale_date"`
	InvoiceNumber string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"invoice_number"`
	PaymentMethod string          `gorm:"type:varchar(10);not null;default:'cash'" json:"payment_method"`
	PaymentStatus string          `gorm:"type:varchar(10);not null;default:'pending';index" json:"payment_status"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amount_paid"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedByID   *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedBy     *User           `gorm:"foreignKey:CreatedByID" json:"-"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID" json:"items,omitempty"`
	Payments      []Payment       `gorm:"foreignKey:SaleID" json:"payments,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Balance returns the outstanding amount on the sale
func (s Sale) Balance() decimal.Decimal {
	return s.TotalAmount.Sub(s.AmountPaid)
}

// SaleItem is one line of a sale. TotalPrice = Quantity * UnitPrice.
type SaleItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SaleID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null;index" json:"inventory_item_id"`
	InventoryItem   *InventoryItem  `gorm:"foreignKey:InventoryItemID" json:"inventory_item,omitempty"`
	Quantity        int             `gorm:"type:int;not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Payment is one append-only payment ledger entry against a sale.
// Payments are never edited or deleted.
type Payment struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SaleID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"` // always > 0
	Method       string          `gorm:"type:varchar(10);not null;default:'cash'" json:"method"`
	PaymentDate  time.Time       `gorm:"type:date;not null" json:"payment_date"`
	Reference    string          `gorm:"type:varchar(100)" json:"reference"`
	ReceivedByID *uuid.UUID      `gorm:"type:uuid" json:"received_by"`
	ReceivedBy   *User           `gorm:"foreignKey:ReceivedByID" json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
}

// DerivePaymentStatus maps an (amountPaid, totalAmount) pair to a payment
// status. Pure function: re-deriving from the same pair always yields the
// same status. Overpayment counts as paid.
func DerivePaymentStatus(amountPaid, totalAmount decimal.Decimal) string {
	switch {
	case amountPaid.LessThanOrEqual(decimal.Zero):
		return PaymentStatusPending
	case amountPaid.GreaterThanOrEqual(totalAmount):
		return PaymentStatusPaid
	default:
		return PaymentStatusPartial
	}
}
