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

// BatchFilter narrows processing batch listings
type BatchFilter struct {
	Status      string
	TreeSpecies string
	Search      string // batch number or purchase invoice
	Page        int
	Limit       int
}

// BatchStats aggregates batch counts and cost per status
type BatchStats struct {
	TotalBatches        int64           `json:"total_batches"`
	InProgress          int64           `json:"in_progress"`
	Completed           int64           `json:"completed"`
	TotalProcessingCost decimal.Decimal `json:"total_processing_cost"`
}

type BatchRepository interface {
	Create(ctx context.Context, batch *model.ProcessingBatch) error
	Update(ctx context.Context, batch *model.ProcessingBatch) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProcessingBatch, error)
	// FindByIDForUpdate locks the batch row so two concurrent completions
	// cannot both pass the status check.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ProcessingBatch, error)
	List(ctx context.Context, filter BatchFilter) ([]model.ProcessingBatch, int64, error)
	CountByDate(ctx context.Context, date time.Time) (int64, error)
	CreateProduct(ctx context.Context, product *model.ProcessedProduct) error
	ListProducts(ctx context.Context, batchID uuid.UUID) ([]model.ProcessedProduct, error)
	Stats(ctx context.Context) (BatchStats, error)
}

type batchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &batchRepository{db: db}
}

func (r *batchRepository) Create(ctx context.Context, batch *model.ProcessingBatch) error {
	return GetDB(ctx, r.db).Create(batch).Error
}

func (r *batchRepository) Update(ctx context.Context, batch *model.ProcessingBatch) error {
	return GetDB(ctx, r.db).Save(batch).Error
}

func (r *batchRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProcessingBatch, error) {
	var batch model.ProcessingBatch
	if err := GetDB(ctx, r.db).
		Preload("TreePurchase").
		Preload("TreePurchase.Supplier").
		Preload("ProcessedProducts").
		Preload("ProcessedProducts.Product").
		First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ProcessingBatch, error) {
	var batch model.ProcessingBatch
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepository) List(ctx context.Context, filter BatchFilter) ([]model.ProcessingBatch, int64, error) {
	var batches []model.ProcessingBatch
	var total int64

	db := GetDB(ctx, r.db).Model(&model.ProcessingBatch{}).
		Joins("JOIN tree_purchases ON tree_purchases.id = processing_batches.tree_purchase_id")
	if filter.Status != "" {
		db = db.Where("processing_batches.status = ?", filter.Status)
	}
	if filter.TreeSpecies != "" {
		db = db.Where("tree_purchases.tree_species = ?", filter.TreeSpecies)
	}
	if filter.Search != "" {
		db = db.Where("processing_batches.batch_number ILIKE ? OR tree_purchases.invoice_number ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.Preload("TreePurchase").
		Preload("TreePurchase.Supplier").
		Preload("ProcessedProducts").
		Preload("ProcessedProducts.Product").
		Order("processing_batches.processing_date DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&batches).Error; err != nil {
		return nil, 0, err
	}

	return batches, total, nil
}

func (r *batchRepository) CountByDate(ctx context.Context, date time.Time) (int64, error) {
	var count int64
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	if err := GetDB(ctx, r.db).Model(&model.ProcessingBatch{}).
		Where("created_at >= ? AND created_at < ?", dayStart, dayStart.AddDate(0, 0, 1)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *batchRepository) CreateProduct(ctx context.Context, product *model.ProcessedProduct) error {
	return GetDB(ctx, r.db).Create(product).Error
}

func (r *batchRepository) ListProducts(ctx context.Context, batchID uuid.UUID) ([]model.ProcessedProduct, error) {
	var products []model.ProcessedProduct
	if err := GetDB(ctx, r.db).Preload("Product").
		Where("processing_batch_id = ?", batchID).
		Order("created_at").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *batchRepository) Stats(ctx context.Context) (BatchStats, error) {
	var row struct {
		TotalBatches        int64
		InProgress          int64
		Completed           int64
		TotalProcessingCost decimal.Decimal
	}
	query := `
		SELECT
			COUNT(*) AS total_batches,
			COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COALESCE(SUM(total_processing_cost), 0) AS total_processing_cost
		FROM processing_batches
	`
	if err := GetDB(ctx, r.db).Raw(query).Scan(&row).Error; err != nil {
		return BatchStats{}, err
	}
	return BatchStats{
		TotalBatches:        row.TotalBatches,
		InProgress:          row.InProgress,
		Completed:           row.Completed,
		TotalProcessingCost: row.TotalProcessingCost,
	}, nil
}
