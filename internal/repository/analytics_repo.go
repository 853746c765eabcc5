package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MonthlyTotal is one month bucket of a financial series
type MonthlyTotal struct {
	Month string          `gorm:"column:month" json:"month"` // YYYY-MM
	Total decimal.Decimal `gorm:"column:total" json:"total"`
}

// ProductSalesTotal ranks one product by accumulated sale items
type ProductSalesTotal struct {
	ProductName  string          `gorm:"column:product_name" json:"product_name"`
	Unit         string          `gorm:"column:unit" json:"unit"`
	UnitsSold    int64           `gorm:"column:units_sold" json:"units_sold"`
	TotalRevenue decimal.Decimal `gorm:"column:total_revenue" json:"total_revenue"`
}

// RecentSalesTotal aggregates sales inside a time window
type RecentSalesTotal struct {
	Total decimal.Decimal `gorm:"column:total"`
	Count int64           `gorm:"column:count"`
}

type AnalyticsRepository interface {
	MonthlyRevenue(ctx context.Context) ([]MonthlyTotal, error)
	MonthlyExpenses(ctx context.Context) ([]MonthlyTotal, error)
	TopProductsBySales(ctx context.Context, orderBy string, limit int) ([]ProductSalesTotal, error)
	SalesSince(ctx context.Context, since time.Time) (RecentSalesTotal, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) MonthlyRevenue(ctx context.Context) ([]MonthlyTotal, error) {
	var rows []MonthlyTotal
	query := `
		SELECT TO_CHAR(DATE_TRUNC('month', revenue_date), 'YYYY-MM') AS month,
		       COALESCE(SUM(amount), 0) AS total
		FROM revenues
		GROUP BY DATE_TRUNC('month', revenue_date)
		ORDER BY month
	`
	if err := GetDB(ctx, r.db).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *analyticsRepository) MonthlyExpenses(ctx context.Context) ([]MonthlyTotal, error) {
	var rows []MonthlyTotal
	query := `
		SELECT TO_CHAR(DATE_TRUNC('month', expense_date), 'YYYY-MM') AS month,
		       COALESCE(SUM(amount), 0) AS total
		FROM expenses
		GROUP BY DATE_TRUNC('month', expense_date)
		ORDER BY month
	`
	if err := GetDB(ctx, r.db).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *analyticsRepository) TopProductsBySales(ctx context.Context, orderBy string, limit int) ([]ProductSalesTotal, error) {
	order := "total_revenue DESC"
	if orderBy == "volume" {
		order = "units_sold DESC"
	}

	var rows []ProductSalesTotal
	if err := GetDB(ctx, r.db).Table("sale_items").
		Select("products.name as product_name, products.unit as unit, COALESCE(SUM(sale_items.quantity), 0) as units_sold, COALESCE(SUM(sale_items.total_price), 0) as total_revenue").
		Joins("JOIN inventory_items ON inventory_items.id = sale_items.inventory_item_id").
		Joins("JOIN products ON products.id = inventory_items.product_id").
		Group("products.name, products.unit").
		Order(order).
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *analyticsRepository) SalesSince(ctx context.Context, since time.Time) (RecentSalesTotal, error) {
	var row RecentSalesTotal
	if err := GetDB(ctx, r.db).Table("sales").
		Select("COALESCE(SUM(total_amount), 0) as total, COUNT(*) as count").
		Where("sale_date >= ?", since).
		Scan(&row).Error; err != nil {
		return RecentSalesTotal{}, err
	}
	return row, nil
}
