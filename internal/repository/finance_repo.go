package repository

import (
	"context"

	"github.com/maxwelmichira/timberflow/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpenseFilter narrows expense listings
type ExpenseFilter struct {
	Category string
	Search   string // description or reference
	Page     int
	Limit    int
}

// RevenueFilter narrows revenue listings
type RevenueFilter struct {
	Source string
	Search string
	Page   int
	Limit  int
}

type FinanceRepository interface {
	CreateExpense(ctx context.Context, expense *model.Expense) error
	UpdateExpense(ctx context.Context, expense *model.Expense) error
	DeleteExpense(ctx context.Context, id uuid.UUID) error
	FindExpenseByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]model.Expense, int64, error)
	SumExpenses(ctx context.Context) (decimal.Decimal, error)

	CreateRevenue(ctx context.Context, revenue *model.Revenue) error
	FindRevenueByID(ctx context.Context, id uuid.UUID) (*model.Revenue, error)
	ListRevenues(ctx context.Context, filter RevenueFilter) ([]model.Revenue, int64, error)
	SumRevenues(ctx context.Context) (decimal.Decimal, error)
}

type financeRepository struct {
	db *gorm.DB
}

func NewFinanceRepository(db *gorm.DB) FinanceRepository {
	return &financeRepository{db: db}
}

func (r *financeRepository) CreateExpense(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Create(expense).Error
}

func (r *financeRepository) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Save(expense).Error
}

func (r *financeRepository) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Expense{}).Error
}

func (r *financeRepository) FindExpenseByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	if err := GetDB(ctx, r.db).First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *financeRepository) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]model.Expense, int64, error) {
	var expenses []model.Expense
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Expense{})
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		db = db.Where("description ILIKE ? OR reference ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.Order("expense_date DESC, created_at DESC").
		Offset(offset).Limit(filter.Limit).Find(&expenses).Error; err != nil {
		return nil, 0, err
	}

	return expenses, total, nil
}

func (r *financeRepository) SumExpenses(ctx context.Context) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := GetDB(ctx, r.db).Model(&model.Expense{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (r *financeRepository) CreateRevenue(ctx context.Context, revenue *model.Revenue) error {
	return GetDB(ctx, r.db).Create(revenue).Error
}

func (r *financeRepository) FindRevenueByID(ctx context.Context, id uuid.UUID) (*model.Revenue, error) {
	var revenue model.Revenue
	if err := GetDB(ctx, r.db).First(&revenue, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &revenue, nil
}

func (r *financeRepository) ListRevenues(ctx context.Context, filter RevenueFilter) ([]model.Revenue, int64, error) {
	var revenues []model.Revenue
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Revenue{})
	if filter.Source != "" {
		db = db.Where("source = ?", filter.Source)
	}
	if filter.Search != "" {
		db = db.Where("description ILIKE ? OR reference ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.Order("revenue_date DESC").
		Offset(offset).Limit(filter.Limit).Find(&revenues).Error; err != nil {
		return nil, 0, err
	}

	return revenues, total, nil
}

func (r *financeRepository) SumRevenues(ctx context.Context) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := GetDB(ctx, r.db).Model(&model.Revenue{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}
