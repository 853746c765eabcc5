package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/maxwelmichira/timberflow/internal/model"
	"github.com/maxwelmichira/timberflow/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateBatchRequest struct {
	TreePurchaseID string `json:"tree_purchase_id" binding:"required,uuid"`
	ProcessingDate string `json:"processing_date" binding:"omitempty,datetime=2006-01-02"`
	LaborCost      string `json:"labor_cost" binding:"omitempty"`
	EquipmentCost  string `json:"equipment_cost" binding:"omitempty"`
	OtherCosts     string `json:"other_costs" binding:"omitempty"`
	Notes          string `json:"notes"`
}

type AddProcessedProductRequest struct {
	ProductID        string `json:"product_id" binding:"required,uuid"`
	QuantityProduced int    `json:"quantity_produced" binding:"required,gt=0"`
	QualityGrade     string `json:"quality_grade" binding:"omitempty,oneof=A B C"`
	StorageLocation  string `json:"storage_location" binding:"omitempty,max=100"`
	Notes            string `json:"notes"`
}

type BatchListFilter struct {
	Status      string
	TreeSpecies string
	Search      string
	Page        int
	Limit       int
}

// BatchYieldLine allocates the batch's combined cost (raw trees plus
// processing) across produced units, proportional to quantity.
type BatchYieldLine struct {
	ProductID        string `json:"product_id"`
	ProductName      string `json:"product_name"`
	QuantityProduced int    `json:"quantity_produced"`
	QualityGrade     string `json:"quality_grade"`
	AllocatedCost    string `json:"allocated_cost"`
	CostPerUnit      string `json:"cost_per_unit"`
}

type BatchYieldReport struct {
	BatchNumber    string           `json:"batch_number"`
	TreesProcessed int              `json:"trees_processed"`
	UnitsProduced  int              `json:"units_produced"`
	PurchaseCost   string           `json:"purchase_cost"`
	ProcessingCost string           `json:"processing_cost"`
	TotalCost      string           `json:"total_cost"`
	Lines          []BatchYieldLine `json:"lines"`
}

type ProcessingService interface {
	CreateBatch(ctx context.Context, userID string, req CreateBatchRequest) (*model.ProcessingBatch, error)
	AddProduct(ctx context.Context, userID string, batchID string, req AddProcessedProductRequest) (*model.ProcessedProduct, error)
	// CompleteBatch transitions an open batch to completed and stocks in
	// every produced line atomically.
	CompleteBatch(ctx context.Context, userID string, batchID string) (*model.ProcessingBatch, error)
	CancelBatch(ctx context.Context, userID string, batchID string) (*model.ProcessingBatch, error)
	GetBatch(ctx context.Context, id string) (*model.ProcessingBatch, error)
	ListBatches(ctx context.Context, filter BatchListFilter) ([]model.ProcessingBatch, int64, error)
	YieldReport(ctx context.Context, batchID string) (BatchYieldReport, error)
	Stats(ctx context.Context) (repository.BatchStats, error)
}

type processingService struct {
	batchRepo    repository.BatchRepository
	purchaseRepo repository.PurchaseRepository
	productRepo  repository.ProductRepository
	auditRepo    repository.AuditRepository
	inventorySvc InventoryService
	txManager    repository.TransactionManager
}

func NewProcessingService(
	batchRepo repository.BatchRepository,
	purchaseRepo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
	auditRepo repository.AuditRepository,
	inventorySvc InventoryService,
	txManager repository.TransactionManager,
) ProcessingService {
	return &processingService{
		batchRepo:    batchRepo,
		purchaseRepo: purchaseRepo,
		productRepo:  productRepo,
		auditRepo:    auditRepo,
		inventorySvc: inventorySvc,
		txManager:    txManager,
	}
}

func parseCost(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	cost, err := decimal.NewFromString(raw)
	if err != nil || cost.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return cost, nil
}

func (s *processingService) CreateBatch(ctx context.Context, userID string, req CreateBatchRequest) (*model.ProcessingBatch, error) {
	purchaseID, err := uuid.Parse(req.TreePurchaseID)
	if err != nil {
		return nil, fmt.Errorf("invalid tree purchase id: %w", err)
	}
	if _, err := s.purchaseRepo.FindByID(ctx, purchaseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load tree purchase: %w", err)
	}

	processingDate := time.Now()
	if req.ProcessingDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ProcessingDate)
		if err != nil {
			return nil, fmt.Errorf("invalid processing date: %w", err)
		}
		processingDate = parsed
	}

	laborCost, err := parseCost(req.LaborCost)
	if err != nil {
		return nil, err
	}
	equipmentCost, err := parseCost(req.EquipmentCost)
	if err != nil {
		return nil, err
	}
	otherCosts, err := parseCost(req.OtherCosts)
	if err != nil {
		return nil, err
	}

	uid := parseUserID(userID)

	var batch *model.ProcessingBatch
	runOnce := func() error {
		return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			seq, err := s.batchRepo.CountByDate(txCtx, time.Now())
			if err != nil {
				return fmt.Errorf("failed to derive batch sequence: %w", err)
			}

			batch = &model.ProcessingBatch{
				BatchNumber:         fmt.Sprintf("BATCH-%s-%04d", time.Now().Format("20060102"), seq+1),
				TreePurchaseID:      purchaseID,
				ProcessingDate:      processingDate,
				ProcessedByID:       uid,
				LaborCost:           laborCost,
				EquipmentCost:       equipmentCost,
				OtherCosts:          otherCosts,
				TotalProcessingCost: laborCost.Add(equipmentCost).Add(otherCosts),
				Status:              model.BatchInProgress,
				Notes:               req.Notes,
			}
			if err := s.batchRepo.Create(txCtx, batch); err != nil {
				return fmt.Errorf("failed to create processing batch: %w", err)
			}
			return nil
		})
	}

	err = runOnce()
	if isDuplicateKey(err) {
		// same-day batches race on the derived sequence, retry re-derives it
		err = runOnce()
	}
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *processingService) AddProduct(ctx context.Context, userID string, batchID string, req AddProcessedProductRequest) (*model.ProcessedProduct, error) {
	id, err := uuid.Parse(batchID)
	if err != nil {
		return nil, fmt.Errorf("invalid batch id: %w", err)
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}

	grade := req.QualityGrade
	if grade == "" {
		grade = model.GradeStandard
	}

	// Status check and insert share a transaction under the batch row lock,
	// so a line cannot slip in while a concurrent completion is committing.
	var product *model.ProcessedProduct
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		batch, err := s.batchRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock batch: %w", err)
		}
		if batch.Status != model.BatchInProgress {
			return ErrBatchNotOpen
		}

		if _, err := s.productRepo.FindByID(txCtx, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load product: %w", err)
		}

		product = &model.ProcessedProduct{
			ProcessingBatchID: id,
			ProductID:         productID,
			QuantityProduced:  req.QuantityProduced,
			QualityGrade:      grade,
			StorageLocation:   req.StorageLocation,
			Notes:             req.Notes,
		}
		if err := s.batchRepo.CreateProduct(txCtx, product); err != nil {
			return fmt.Errorf("failed to add processed product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *processingService) CompleteBatch(ctx context.Context, userID string, batchID string) (*model.ProcessingBatch, error) {
	id, err := uuid.Parse(batchID)
	if err != nil {
		return nil, fmt.Errorf("invalid batch id: %w", err)
	}
	uid := parseUserID(userID)

	var updates []StockUpdate
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		batch, err := s.batchRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock batch: %w", err)
		}
		if batch.Status != model.BatchInProgress {
			return ErrBatchNotOpen
		}

		products, err := s.batchRepo.ListProducts(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to load processed products: %w", err)
		}
		if len(products) == 0 {
			return ErrBatchEmpty
		}

		// Either every line stocks in or none do.
		for _, p := range products {
			item, err := s.inventorySvc.EnsureItem(txCtx, p.ProductID)
			if err != nil {
				return err
			}
			update, err := s.inventorySvc.ApplyMovement(txCtx, MovementParams{
				InventoryItemID: item.ID,
				MovementType:    model.MovementIn,
				Reason:          model.ReasonProcessing,
				Quantity:        p.QuantityProduced,
				Reference:       batch.BatchNumber,
				CreatedBy:       uid,
			})
			if err != nil {
				return err
			}
			updates = append(updates, update)
		}

		batch.Status = model.BatchCompleted
		if err := s.batchRepo.Update(txCtx, batch); err != nil {
			return fmt.Errorf("failed to complete batch: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"batch_number": batch.BatchNumber,
			"lines":        len(products),
		})
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionCompleteBatch,
			EntityID:   batch.ID.String(),
			EntityName: batch.BatchNumber,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return nil, err
	}

	s.inventorySvc.Publish(updates...)
	return s.batchRepo.FindByID(ctx, id)
}

func (s *processingService) CancelBatch(ctx context.Context, userID string, batchID string) (*model.ProcessingBatch, error) {
	id, err := uuid.Parse(batchID)
	if err != nil {
		return nil, fmt.Errorf("invalid batch id: %w", err)
	}

	var batch *model.ProcessingBatch
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		batch, err = s.batchRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock batch: %w", err)
		}
		if batch.Status != model.BatchInProgress {
			return ErrBatchNotOpen
		}
		batch.Status = model.BatchCancelled
		return s.batchRepo.Update(txCtx, batch)
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *processingService) GetBatch(ctx context.Context, id string) (*model.ProcessingBatch, error) {
	batchID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid batch id: %w", err)
	}
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}
	return batch, nil
}

func (s *processingService) ListBatches(ctx context.Context, filter BatchListFilter) ([]model.ProcessingBatch, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.batchRepo.List(ctx, repository.BatchFilter{
		Status:      filter.Status,
		TreeSpecies: filter.TreeSpecies,
		Search:      filter.Search,
		Page:        filter.Page,
		Limit:       filter.Limit,
	})
}

func (s *processingService) YieldReport(ctx context.Context, batchID string) (BatchYieldReport, error) {
	batch, err := s.GetBatch(ctx, batchID)
	if err != nil {
		return BatchYieldReport{}, err
	}

	purchaseCost := decimal.Zero
	treesProcessed := 0
	if batch.TreePurchase != nil {
		purchaseCost = batch.TreePurchase.TotalCost
		treesProcessed = batch.TreePurchase.Quantity
	}
	totalCost := purchaseCost.Add(batch.TotalProcessingCost)

	unitsProduced := 0
	for _, p := range batch.ProcessedProducts {
		unitsProduced += p.QuantityProduced
	}

	report := BatchYieldReport{
		BatchNumber:    batch.BatchNumber,
		TreesProcessed: treesProcessed,
		UnitsProduced:  unitsProduced,
		PurchaseCost:   purchaseCost.StringFixed(2),
		ProcessingCost: batch.TotalProcessingCost.StringFixed(2),
		TotalCost:      totalCost.StringFixed(2),
	}

	if unitsProduced == 0 {
		return report, nil
	}

	totalUnits := decimal.NewFromInt(int64(unitsProduced))
	for _, p := range batch.ProcessedProducts {
		qty := decimal.NewFromInt(int64(p.QuantityProduced))
		allocated := totalCost.Mul(qty).Div(totalUnits)
		line := BatchYieldLine{
			ProductID:        p.ProductID.String(),
			QuantityProduced: p.QuantityProduced,
			QualityGrade:     p.QualityGrade,
			AllocatedCost:    allocated.StringFixed(2),
			CostPerUnit:      allocated.Div(qty).StringFixed(2),
		}
		if p.Product != nil {
			line.ProductName = p.Product.Name
		}
		report.Lines = append(report.Lines, line)
	}
	return report, nil
}

func (s *processingService) Stats(ctx context.Context) (repository.BatchStats, error) {
	return s.batchRepo.Stats(ctx)
}
