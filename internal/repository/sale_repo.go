package repository

import (
	"context"
	"time"

	"github.com/maxwelmichira/timberflow/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleFilter narrows sale listings
type SaleFilter struct {
	PaymentStatus string
	PaymentMethod string
	CustomerID    *uuid.UUID
	Search        string // invoice number or customer name
	Page          int
	Limit         int
}

// SaleStats aggregates sale totals for the statistics endpoint
type SaleStats struct {
	TotalSales     int64
	TotalRevenue   decimal.Decimal
	TotalCollected decimal.Decimal
	PendingPayment int64
}

type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	// FindByIDForUpdate locks the sale row while its projections
	// (total_amount, amount_paid, payment_status) are recalculated.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	Update(ctx context.Context, sale *model.Sale) error
	List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error)
	CreateItem(ctx context.Context, item *model.SaleItem) error
	SumItemTotals(ctx context.Context, saleID uuid.UUID) (decimal.Decimal, error)
	CountByDate(ctx context.Context, date time.Time) (int64, error)
	Stats(ctx context.Context) (SaleStats, error)

	CreatePayment(ctx context.Context, payment *model.Payment) error
	SumPayments(ctx context.Context, saleID uuid.UUID) (decimal.Decimal, error)
	ListPayments(ctx context.Context, saleID uuid.UUID) ([]model.Payment, error)
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *model.Sale) error {
	return GetDB(ctx, r.db).Create(sale).Error
}

func (r *saleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := GetDB(ctx, r.db).
		Preload("Customer").
		Preload("Items").
		Preload("Items.InventoryItem").
		Preload("Items.InventoryItem.Product").
		Preload("Payments").
		First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) Update(ctx context.Context, sale *model.Sale) error {
	return GetDB(ctx, r.db).Save(sale).Error
}

func (r *saleRepository) List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Sale{})
	if filter.PaymentStatus != "" {
		db = db.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.PaymentMethod != "" {
		db = db.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Search != "" {
		db = db.Joins("LEFT JOIN customers ON customers.id = sales.customer_id").
			Where("sales.invoice_number ILIKE ? OR customers.name ILIKE ?",
				"%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.Preload("Customer").
		Order("sale_date DESC, created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&sales).Error; err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}

func (r *saleRepository) CreateItem(ctx context.Context, item *model.SaleItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *saleRepository) SumItemTotals(ctx context.Context, saleID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := GetDB(ctx, r.db).Model(&model.SaleItem{}).
		Select("COALESCE(SUM(total_price), 0) as total").
		Where("sale_id = ?", saleID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (r *saleRepository) CountByDate(ctx context.Context, date time.Time) (int64, error) {
	var count int64
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	if err := GetDB(ctx, r.db).Model(&model.Sale{}).
		Where("created_at >= ? AND created_at < ?", dayStart, dayStart.AddDate(0, 0, 1)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *saleRepository) Stats(ctx context.Context) (SaleStats, error) {
	var row struct {
		TotalSales     int64
		TotalRevenue   decimal.Decimal
		TotalCollected decimal.Decimal
		PendingPayment int64
	}
	query := `
		SELECT
			COUNT(*) AS total_sales,
			COALESCE(SUM(total_amount), 0) AS total_revenue,
			COALESCE(SUM(amount_paid), 0) AS total_collected,
			COUNT(*) FILTER (WHERE payment_status = 'pending') AS pending_payment
		FROM sales
	`
	if err := GetDB(ctx, r.db).Raw(query).Scan(&row).Error; err != nil {
		return SaleStats{}, err
	}
	return SaleStats{
		TotalSales:     row.TotalSales,
		TotalRevenue:   row.TotalRevenue,
		TotalCollected: row.TotalCollected,
		PendingPayment: row.PendingPayment,
	}, nil
}

func (r *saleRepository) CreatePayment(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *saleRepository) SumPayments(ctx context.Context, saleID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := GetDB(ctx, r.db).Model(&model.Payment{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("sale_id = ?", saleID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (r *saleRepository) ListPayments(ctx context.Context, saleID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	if err := GetDB(ctx, r.db).
		Where("sale_id = ?", saleID).
		Order("created_at").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
