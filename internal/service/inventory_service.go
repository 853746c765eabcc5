package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/maxwelmichira/timberflow/internal/model"
	"github.com/maxwelmichira/timberflow/internal/repository"
	ws "github.com/maxwelmichira/timberflow/internal/websocket"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type AdjustStockRequest struct {
	Quantity int    `json:"quantity" binding:"required"` // signed: positive adds, negative removes
	Reason   string `json:"reason" binding:"omitempty,oneof=damage return adjustment"`
	Notes    string `json:"notes"`
}

type InventoryListFilter struct {
	Category string
	Search   string
	OrderBy  string
	Page     int
	Limit    int
}

type MovementListFilter struct {
	InventoryItemID string
	MovementType    string
	Reason          string
	Page            int
	Limit           int
}

type InventoryItemResponse struct {
	ID              string `json:"id"`
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	ProductCategory string `json:"product_category"`
	ProductUnit     string `json:"product_unit"`
	QuantityInStock int    `json:"quantity_in_stock"`
	ReorderLevel    int    `json:"reorder_level"`
	IsLowStock      bool   `json:"is_low_stock"`
	LastUpdated     string `json:"last_updated"`
}

type MovementResponse struct {
	ID              string `json:"id"`
	InventoryItemID string `json:"inventory_item_id"`
	ProductName     string `json:"product_name"`
	MovementType    string `json:"movement_type"`
	Reason          string `json:"reason"`
	Quantity        int    `json:"quantity"`
	Reference       string `json:"reference"`
	Notes           string `json:"notes"`
	CreatedAt       string `json:"created_at"`
}

// ReconciliationRow compares the cached stock level of one item against the
// signed sum of its movement ledger.
type ReconciliationRow struct {
	InventoryItemID string `json:"inventory_item_id"`
	CachedQuantity  int    `json:"cached_quantity"`
	LedgerQuantity  int    `json:"ledger_quantity"`
	Drift           int    `json:"drift"` // cached - ledger, zero when in sync
}

type ReconciliationReport struct {
	ItemsChecked int                 `json:"items_checked"`
	ItemsDrifted int                 `json:"items_drifted"`
	Rows         []ReconciliationRow `json:"rows"`
}

// MovementParams describes one ledger entry to apply. Quantity is always
// positive; MovementType carries the sign.
type MovementParams struct {
	InventoryItemID uuid.UUID
	MovementType    string // in, out
	Reason          string
	Quantity        int
	Reference       string
	Notes           string
	CreatedBy       *uuid.UUID
}

// StockUpdate reports the outcome of an applied movement, used for
// websocket notifications after the owning transaction commits.
type StockUpdate struct {
	InventoryItemID string `json:"inventory_item_id"`
	ProductID       string `json:"product_id"`
	MovementType    string `json:"movement_type"`
	Reason          string `json:"reason"`
	Quantity        int    `json:"quantity"`
	NewQuantity     int    `json:"new_quantity"`
	LowStock        bool   `json:"low_stock"`
	Reference       string `json:"reference"`
}

// --- Interface ---

type InventoryService interface {
	ListItems(ctx context.Context, filter InventoryListFilter) ([]InventoryItemResponse, int64, error)
	GetItem(ctx context.Context, id string) (InventoryItemResponse, []MovementResponse, error)
	AdjustStock(ctx context.Context, userID string, itemID string, req AdjustStockRequest) (InventoryItemResponse, error)
	ListMovements(ctx context.Context, filter MovementListFilter) ([]MovementResponse, int64, error)
	LowStock(ctx context.Context) ([]InventoryItemResponse, error)
	Reconcile(ctx context.Context) (ReconciliationReport, error)

	// ApplyMovement writes one ledger entry and the matching stock level
	// update. It must be called with a transaction context obtained from
	// TransactionManager.RunInTx; it never opens a transaction itself.
	ApplyMovement(ctx context.Context, params MovementParams) (StockUpdate, error)
	// EnsureItem returns the locked inventory item for a product, creating
	// it lazily on first stock-in. Transaction context required.
	EnsureItem(ctx context.Context, productID uuid.UUID) (*model.InventoryItem, error)
	// Publish broadcasts stock updates to websocket subscribers. Call after
	// the owning transaction has committed.
	Publish(updates ...StockUpdate)
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	hub           *ws.Hub
}

func NewInventoryService(
	inventoryRepo repository.InventoryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
		hub:           hub,
	}
}

// --- Implementation ---

func toItemResponse(item model.InventoryItem) InventoryItemResponse {
	res := InventoryItemResponse{
		ID:              item.ID.String(),
		ProductID:       item.ProductID.String(),
		QuantityInStock: item.QuantityInStock,
		ReorderLevel:    item.ReorderLevel,
		IsLowStock:      item.IsLowStock(),
		LastUpdated:     item.LastUpdated.Format("2006-01-02T15:04:05Z07:00"),
	}
	if item.Product != nil {
		res.ProductName = item.Product.Name
		res.ProductCategory = item.Product.Category
		res.ProductUnit = item.Product.Unit
	}
	return res
}

func toMovementResponse(m model.StockMovement) MovementResponse {
	res := MovementResponse{
		ID:              m.ID.String(),
		InventoryItemID: m.InventoryItemID.String(),
		MovementType:    m.MovementType,
		Reason:          m.Reason,
		Quantity:        m.Quantity,
		Reference:       m.Reference,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if m.InventoryItem != nil && m.InventoryItem.Product != nil {
		res.ProductName = m.InventoryItem.Product.Name
	}
	return res
}

func (s *inventoryService) ListItems(ctx context.Context, filter InventoryListFilter) ([]InventoryItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	items, total, err := s.inventoryRepo.ListItems(ctx, repository.InventoryFilter{
		Category: filter.Category,
		Search:   filter.Search,
		OrderBy:  filter.OrderBy,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list inventory items: %w", err)
	}

	res := make([]InventoryItemResponse, 0, len(items))
	for _, item := range items {
		res = append(res, toItemResponse(item))
	}
	return res, total, nil
}

func (s *inventoryService) GetItem(ctx context.Context, id string) (InventoryItemResponse, []MovementResponse, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return InventoryItemResponse{}, nil, fmt.Errorf("invalid inventory item id: %w", err)
	}

	item, err := s.inventoryRepo.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InventoryItemResponse{}, nil, ErrNotFound
		}
		return InventoryItemResponse{}, nil, fmt.Errorf("failed to load inventory item: %w", err)
	}

	movements, _, err := s.inventoryRepo.ListMovements(ctx, repository.MovementFilter{
		InventoryItemID: &itemID,
		Page:            1,
		Limit:           100,
	})
	if err != nil {
		return InventoryItemResponse{}, nil, fmt.Errorf("failed to load movements: %w", err)
	}

	movementRes := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		movementRes = append(movementRes, toMovementResponse(m))
	}
	return toItemResponse(*item), movementRes, nil
}

func (s *inventoryService) AdjustStock(ctx context.Context, userID string, itemID string, req AdjustStockRequest) (InventoryItemResponse, error) {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return InventoryItemResponse{}, fmt.Errorf("invalid inventory item id: %w", err)
	}
	if req.Quantity == 0 {
		return InventoryItemResponse{}, ErrInvalidQuantity
	}

	reason := req.Reason
	if reason == "" {
		reason = model.ReasonAdjustment
	}

	movementType := model.MovementIn
	quantity := req.Quantity
	if quantity < 0 {
		movementType = model.MovementOut
		quantity = -quantity
	}

	var uid *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		uid = &parsed
	}

	var update StockUpdate
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		update, err = s.ApplyMovement(txCtx, MovementParams{
			InventoryItemID: id,
			MovementType:    movementType,
			Reason:          reason,
			Quantity:        quantity,
			Notes:           req.Notes,
			CreatedBy:       uid,
		})
		if err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"quantity": req.Quantity,
			"reason":   reason,
			"notes":    req.Notes,
		})
		audit := &model.AuditLog{
			UserID:   uid,
			Action:   model.ActionAdjustStock,
			EntityID: id.String(),
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return InventoryItemResponse{}, err
	}

	s.Publish(update)

	item, err := s.inventoryRepo.FindItemByID(ctx, id)
	if err != nil {
		return InventoryItemResponse{}, fmt.Errorf("failed to reload inventory item: %w", err)
	}
	return toItemResponse(*item), nil
}

func (s *inventoryService) ListMovements(ctx context.Context, filter MovementListFilter) ([]MovementResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.MovementFilter{
		MovementType: filter.MovementType,
		Reason:       filter.Reason,
		Page:         filter.Page,
		Limit:        filter.Limit,
	}
	if filter.InventoryItemID != "" {
		id, err := uuid.Parse(filter.InventoryItemID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid inventory item id: %w", err)
		}
		repoFilter.InventoryItemID = &id
	}

	movements, total, err := s.inventoryRepo.ListMovements(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movements: %w", err)
	}

	res := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		res = append(res, toMovementResponse(m))
	}
	return res, total, nil
}

func (s *inventoryService) LowStock(ctx context.Context) ([]InventoryItemResponse, error) {
	items, err := s.inventoryRepo.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock items: %w", err)
	}

	res := make([]InventoryItemResponse, 0, len(items))
	for _, item := range items {
		res = append(res, toItemResponse(item))
	}
	return res, nil
}

func (s *inventoryService) Reconcile(ctx context.Context) (ReconciliationReport, error) {
	balances, err := s.inventoryRepo.LedgerBalances(ctx)
	if err != nil {
		return ReconciliationReport{}, fmt.Errorf("failed to compute ledger balances: %w", err)
	}

	report := ReconciliationReport{ItemsChecked: len(balances)}
	for _, b := range balances {
		row := ReconciliationRow{
			InventoryItemID: b.InventoryItemID.String(),
			CachedQuantity:  b.CachedQuantity,
			LedgerQuantity:  b.LedgerQuantity,
			Drift:           b.CachedQuantity - b.LedgerQuantity,
		}
		if row.Drift != 0 {
			report.ItemsDrifted++
		}
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

func (s *inventoryService) ApplyMovement(ctx context.Context, params MovementParams) (StockUpdate, error) {
	if params.Quantity <= 0 {
		return StockUpdate{}, ErrInvalidQuantity
	}
	if params.MovementType != model.MovementIn && params.MovementType != model.MovementOut {
		return StockUpdate{}, fmt.Errorf("unknown movement type: %s", params.MovementType)
	}

	item, err := s.inventoryRepo.FindItemByIDForUpdate(ctx, params.InventoryItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StockUpdate{}, ErrNotFound
		}
		return StockUpdate{}, fmt.Errorf("failed to lock inventory item: %w", err)
	}

	newQuantity := item.QuantityInStock + params.Quantity
	if params.MovementType == model.MovementOut {
		if item.QuantityInStock < params.Quantity {
			return StockUpdate{}, ErrInsufficientStock
		}
		newQuantity = item.QuantityInStock - params.Quantity
	}

	// Cached level and ledger entry commit or roll back together.
	if err := s.inventoryRepo.UpdateQuantity(ctx, item.ID, newQuantity); err != nil {
		return StockUpdate{}, fmt.Errorf("failed to update stock level: %w", err)
	}

	movement := &model.StockMovement{
		InventoryItemID: item.ID,
		MovementType:    params.MovementType,
		Reason:          params.Reason,
		Quantity:        params.Quantity,
		Reference:       params.Reference,
		Notes:           params.Notes,
		CreatedByID:     params.CreatedBy,
	}
	if err := s.inventoryRepo.CreateMovement(ctx, movement); err != nil {
		return StockUpdate{}, fmt.Errorf("failed to record stock movement: %w", err)
	}

	return StockUpdate{
		InventoryItemID: item.ID.String(),
		ProductID:       item.ProductID.String(),
		MovementType:    params.MovementType,
		Reason:          params.Reason,
		Quantity:        params.Quantity,
		NewQuantity:     newQuantity,
		LowStock:        newQuantity <= item.ReorderLevel,
		Reference:       params.Reference,
	}, nil
}

func (s *inventoryService) EnsureItem(ctx context.Context, productID uuid.UUID) (*model.InventoryItem, error) {
	item, err := s.inventoryRepo.FindItemByProductForUpdate(ctx, productID)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to lock inventory item: %w", err)
	}

	item = &model.InventoryItem{
		ProductID:       productID,
		QuantityInStock: 0,
		ReorderLevel:    10,
	}
	if createErr := s.inventoryRepo.CreateItem(ctx, item); createErr != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", createErr)
	}
	return item, nil
}

func (s *inventoryService) Publish(updates ...StockUpdate) {
	if s.hub == nil {
		return
	}
	for _, update := range updates {
		event := "stock_updated"
		if update.LowStock {
			event = "stock_low"
		}
		payload, err := json.Marshal(ws.Event{Event: event, Data: update})
		if err != nil {
			continue
		}
		s.hub.Broadcast <- payload
	}
}
