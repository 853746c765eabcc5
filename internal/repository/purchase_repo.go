package repository

import (
	"context"

	"github.com/maxwelmichira/timberflow/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseFilter narrows tree purchase listings
type PurchaseFilter struct {
	SupplierID    *uuid.UUID
	TreeSpecies   string
	QualityGrade  string
	PaymentStatus string
	Search        string // invoice number
	Page          int
	Limit         int
}

// PurchaseGroupTotal is one row of the procurement summary,
// grouped either by supplier or by species.
type PurchaseGroupTotal struct {
	Label      string          `gorm:"column:label" json:"label"`
	TotalSpent decimal.Decimal `gorm:"column:total_spent" json:"total_spent"`
	TotalTrees int64           `gorm:"column:total_trees" json:"total_trees"`
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.TreePurchase) error
	Update(ctx context.Context, purchase *model.TreePurchase) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TreePurchase, error)
	List(ctx context.Context, filter PurchaseFilter) ([]model.TreePurchase, int64, error)
	TotalsBySupplier(ctx context.Context) ([]PurchaseGroupTotal, error)
	TotalsBySpecies(ctx context.Context) ([]PurchaseGroupTotal, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *model.TreePurchase) error {
	return GetDB(ctx, r.db).Create(purchase).Error
}

func (r *purchaseRepository) Update(ctx context.Context, purchase *model.TreePurchase) error {
	return GetDB(ctx, r.db).Save(purchase).Error
}

func (r *purchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TreePurchase, error) {
	var purchase model.TreePurchase
	if err := GetDB(ctx, r.db).Preload("Supplier").First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) List(ctx context.Context, filter PurchaseFilter) ([]model.TreePurchase, int64, error) {
	var purchases []model.TreePurchase
	var total int64

	db := GetDB(ctx, r.db).Model(&model.TreePurchase{})
	if filter.SupplierID != nil {
		db = db.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.TreeSpecies != "" {
		db = db.Where("tree_species = ?", filter.TreeSpecies)
	}
	if filter.QualityGrade != "" {
		db = db.Where("quality_grade = ?", filter.QualityGrade)
	}
	if filter.PaymentStatus != "" {
		db = db.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.Search != "" {
		db = db.Where("invoice_number ILIKE ?", "%"+filter.Search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.Preload("Supplier").
		Order("purchase_date DESC, created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&purchases).Error; err != nil {
		return nil, 0, err
	}

	return purchases, total, nil
}

func (r *purchaseRepository) TotalsBySupplier(ctx context.Context) ([]PurchaseGroupTotal, error) {
	var rows []PurchaseGroupTotal
	if err := GetDB(ctx, r.db).Table("tree_purchases").
		Select("suppliers.name as label, COALESCE(SUM(tree_purchases.total_cost), 0) as total_spent, COALESCE(SUM(tree_purchases.quantity), 0) as total_trees").
		Joins("JOIN suppliers ON suppliers.id = tree_purchases.supplier_id").
		Group("suppliers.name").
		Order("total_spent DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *purchaseRepository) TotalsBySpecies(ctx context.Context) ([]PurchaseGroupTotal, error) {
	var rows []PurchaseGroupTotal
	if err := GetDB(ctx, r.db).Table("tree_purchases").
		Select("tree_species as label, COALESCE(SUM(total_cost), 0) as total_spent, COALESCE(SUM(quantity), 0) as total_trees").
		Group("tree_species").
		Order("total_spent DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
