package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense category constants
const (
	ExpenseProcurement = "procurement"
	ExpenseProcessing  = "processing"
	ExpenseSalaries    = "salaries"
	ExpenseTransport   = "transport"
	ExpenseEquipment   = "equipment"
	ExpenseUtilities   = "utilities"
	ExpenseMaintenance = "maintenance"
	ExpenseOther       = "other"
)

// Revenue source constants
const (
	RevenueSales = "sales"
	RevenueOther = "other"
)

// Expense represents money spent by the business
type Expense struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Category    string          `gorm:"type:varchar(20);not null;index" json:"category"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	ExpenseDate time.Time       `gorm:"type:date;not null;index" json:"expense_date"`
	Reference   string          `gorm:"type:varchar(100)" json:"reference"`
	Notes       string          `gorm:"type:text" json:"notes"`
	CreatedByID *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedBy   *User           `gorm:"foreignKey:CreatedByID" json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Revenue represents money earned by the business
type Revenue struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Source      string          `gorm:"type:varchar(20);not null;default:'sales';index" json:"source"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	RevenueDate time.Time       `gorm:"type:date;not null;index" json:"revenue_date"`
	Reference   string          `gorm:"type:varchar(100)" json:"reference"`
	Notes       string          `gorm:"type:text" json:"notes"`
	CreatedByID *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedBy   *User           `gorm:"foreignKey:CreatedByID" json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
}
