package repository

import (
	"context"

	"github.com/maxwelmichira/timberflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryFilter narrows inventory item listings
type InventoryFilter struct {
	Category string // product category
	Search   string // product name
	OrderBy  string // quantity_in_stock, last_updated
	Page     int
	Limit    int
}

// MovementFilter narrows stock movement listings
type MovementFilter struct {
	InventoryItemID *uuid.UUID
	MovementType    string
	Reason          string
	Page            int
	Limit           int
}

// ItemBalance pairs an inventory item with the signed sum of its ledger,
// used by reconciliation.
type ItemBalance struct {
	InventoryItemID uuid.UUID
	CachedQuantity  int
	LedgerQuantity  int
}

type InventoryRepository interface {
	CreateItem(ctx context.Context, item *model.InventoryItem) error
	UpdateItem(ctx context.Context, item *model.InventoryItem) error
	FindItemByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	// FindItemByIDForUpdate takes a row-level lock so concurrent
	// check-then-decrement sequences serialize (SELECT ... FOR UPDATE).
	FindItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	FindItemByProductForUpdate(ctx context.Context, productID uuid.UUID) (*model.InventoryItem, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	ListItems(ctx context.Context, filter InventoryFilter) ([]model.InventoryItem, int64, error)
	ListLowStock(ctx context.Context) ([]model.InventoryItem, error)

	CreateMovement(ctx context.Context, movement *model.StockMovement) error
	ListMovements(ctx context.Context, filter MovementFilter) ([]model.StockMovement, int64, error)
	// LedgerBalances returns, per inventory item, the cached quantity next to
	// the signed movement sum recomputed from the ledger.
	LedgerBalances(ctx context.Context) ([]ItemBalance, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) CreateItem(ctx context.Context, item *model.InventoryItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *inventoryRepository) UpdateItem(ctx context.Context, item *model.InventoryItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *inventoryRepository) FindItemByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := GetDB(ctx, r.db).Preload("Product").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) FindItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) FindItemByProductForUpdate(ctx context.Context, productID uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return GetDB(ctx, r.db).Model(&model.InventoryItem{}).
		Where("id = ?", id).Update("quantity_in_stock", quantity).Error
}

func (r *inventoryRepository) ListItems(ctx context.Context, filter InventoryFilter) ([]model.InventoryItem, int64, error) {
	var items []model.InventoryItem
	var total int64

	db := GetDB(ctx, r.db).Model(&model.InventoryItem{}).
		Joins("JOIN products ON products.id = inventory_items.product_id")
	if filter.Category != "" {
		db = db.Where("products.category = ?", filter.Category)
	}
	if filter.Search != "" {
		db = db.Where("products.name ILIKE ?", "%"+filter.Search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "products.category, products.name"
	switch filter.OrderBy {
	case "quantity_in_stock":
		order = "inventory_items.quantity_in_stock"
	case "last_updated":
		order = "inventory_items.last_updated DESC"
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.Preload("Product").Order(order).Offset(offset).Limit(filter.Limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *inventoryRepository) ListLowStock(ctx context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	if err := GetDB(ctx, r.db).Preload("Product").
		Where("quantity_in_stock <= reorder_level").
		Order("quantity_in_stock").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *inventoryRepository) CreateMovement(ctx context.Context, movement *model.StockMovement) error {
	return GetDB(ctx, r.db).Create(movement).Error
}

func (r *inventoryRepository) ListMovements(ctx context.Context, filter MovementFilter) ([]model.StockMovement, int64, error) {
	var movements []model.StockMovement
	var total int64

	db := GetDB(ctx, r.db).Model(&model.StockMovement{})
	if filter.InventoryItemID != nil {
		db = db.Where("inventory_item_id = ?", *filter.InventoryItemID)
	}
	if filter.MovementType != "" {
		db = db.Where("movement_type = ?", filter.MovementType)
	}
	if filter.Reason != "" {
		db = db.Where("reason = ?", filter.Reason)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.Preload("InventoryItem").Preload("InventoryItem.Product").
		Order("created_at DESC").Offset(offset).Limit(filter.Limit).
		Find(&movements).Error; err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}

func (r *inventoryRepository) LedgerBalances(ctx context.Context) ([]ItemBalance, error) {
	var rows []struct {
		InventoryItemID uuid.UUID `gorm:"column:inventory_item_id"`
		CachedQuantity  int       `gorm:"column:cached_quantity"`
		LedgerQuantity  int       `gorm:"column:ledger_quantity"`
	}

	query := `
		SELECT
			i.id AS inventory_item_id,
			i.quantity_in_stock AS cached_quantity,
			COALESCE(SUM(CASE WHEN m.movement_type = 'out' THEN -m.quantity ELSE m.quantity END), 0) AS ledger_quantity
		FROM inventory_items i
		LEFT JOIN stock_movements m ON m.inventory_item_id = i.id
		GROUP BY i.id, i.quantity_in_stock
	`
	if err := GetDB(ctx, r.db).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}

	balances := make([]ItemBalance, 0, len(rows))
	for _, row := range rows {
		balances = append(balances, ItemBalance{
			InventoryItemID: row.InventoryItemID,
			CachedQuantity:  row.CachedQuantity,
			LedgerQuantity:  row.LedgerQuantity,
		})
	}
	return balances, nil
}
