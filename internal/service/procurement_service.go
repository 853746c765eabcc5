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

type SupplierRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	ContactPerson   string `json:"contact_person" binding:"omitempty,max=100"`
	Phone           string `json:"phone" binding:"required,max=15"`
	Email           string `json:"email" binding:"omitempty,email"`
	PhysicalAddress string `json:"physical_address"`
	Rating          *int   `json:"rating" binding:"omitempty,min=1,max=5"`
	Notes           string `json:"notes"`
}

type CreatePurchaseRequest struct {
	SupplierID      string `json:"supplier_id" binding:"required,uuid"`
	PurchaseDate    string `json:"purchase_date" binding:"omitempty,datetime=2006-01-02"`
	TreeSpecies     string `json:"tree_species" binding:"required,oneof=pine cypress cedar eucalyptus mahogany oak teak other"`
	Quantity        int    `json:"quantity" binding:"required,gt=0"`
	UnitCost        string `json:"unit_cost" binding:"required"`
	AverageDiameter string `json:"average_diameter" binding:"omitempty"`
	AverageLength   string `json:"average_length" binding:"omitempty"`
	QualityGrade    string `json:"quality_grade" binding:"omitempty,oneof=A B C"`
	DeliveryDate    string `json:"delivery_date" binding:"omitempty,datetime=2006-01-02"`
	Notes           string `json:"notes"`
}

type UpdatePurchaseStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required,oneof=pending partial paid"`
}

type PurchaseListFilter struct {
	SupplierID    string
	TreeSpecies   string
	QualityGrade  string
	PaymentStatus string
	Search        string
	Page          int
	Limit         int
}

// PurchaseSummary groups procurement spend by supplier and by species.
type PurchaseSummary struct {
	BySupplier []repository.PurchaseGroupTotal `json:"by_supplier"`
	BySpecies  []repository.PurchaseGroupTotal `json:"by_species"`
}

type ProcurementService interface {
	CreateSupplier(ctx context.Context, req SupplierRequest) (*model.Supplier, error)
	UpdateSupplier(ctx context.Context, id string, req SupplierRequest) (*model.Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error
	GetSupplier(ctx context.Context, id string) (*model.Supplier, error)
	ListSuppliers(ctx context.Context, search string, activeOnly bool, page, limit int) ([]model.Supplier, int64, error)

	CreatePurchase(ctx context.Context, userID string, req CreatePurchaseRequest) (*model.TreePurchase, error)
	UpdatePurchaseStatus(ctx context.Context, purchaseID string, req UpdatePurchaseStatusRequest) (*model.TreePurchase, error)
	GetPurchase(ctx context.Context, id string) (*model.TreePurchase, error)
	ListPurchases(ctx context.Context, filter PurchaseListFilter) ([]model.TreePurchase, int64, error)
	Summary(ctx context.Context) (PurchaseSummary, error)
}

type procurementService struct {
	supplierRepo repository.SupplierRepository
	purchaseRepo repository.PurchaseRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewProcurementService(
	supplierRepo repository.SupplierRepository,
	purchaseRepo repository.PurchaseRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ProcurementService {
	return &procurementService{
		supplierRepo: supplierRepo,
		purchaseRepo: purchaseRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

// --- Suppliers ---

func (s *procurementService) CreateSupplier(ctx context.Context, req SupplierRequest) (*model.Supplier, error) {
	rating := 3
	if req.Rating != nil {
		rating = *req.Rating
	}
	supplier := &model.Supplier{
		Name:            req.Name,
		ContactPerson:   req.ContactPerson,
		Phone:           req.Phone,
		Email:           req.Email,
		PhysicalAddress: req.PhysicalAddress,
		Rating:          rating,
		IsActive:        true,
		Notes:           req.Notes,
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return supplier, nil
}

func (s *procurementService) UpdateSupplier(ctx context.Context, id string, req SupplierRequest) (*model.Supplier, error) {
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid supplier id: %w", err)
	}
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load supplier: %w", err)
	}

	supplier.Name = req.Name
	supplier.ContactPerson = req.ContactPerson
	supplier.Phone = req.Phone
	supplier.Email = req.Email
	supplier.PhysicalAddress = req.PhysicalAddress
	supplier.Notes = req.Notes
	if req.Rating != nil {
		supplier.Rating = *req.Rating
	}
	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	return supplier, nil
}

func (s *procurementService) DeleteSupplier(ctx context.Context, id string) error {
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid supplier id: %w", err)
	}
	if _, err := s.supplierRepo.FindByID(ctx, supplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load supplier: %w", err)
	}
	return s.supplierRepo.Delete(ctx, supplierID)
}

func (s *procurementService) GetSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid supplier id: %w", err)
	}
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load supplier: %w", err)
	}
	return supplier, nil
}

func (s *procurementService) ListSuppliers(ctx context.Context, search string, activeOnly bool, page, limit int) ([]model.Supplier, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.supplierRepo.List(ctx, search, activeOnly, page, limit)
}

// --- Tree purchases ---

func (s *procurementService) CreatePurchase(ctx context.Context, userID string, req CreatePurchaseRequest) (*model.TreePurchase, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("invalid supplier id: %w", err)
	}
	if _, err := s.supplierRepo.FindByID(ctx, supplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load supplier: %w", err)
	}

	unitCost, err := decimal.NewFromString(req.UnitCost)
	if err != nil || !unitCost.IsPositive() {
		return nil, ErrInvalidAmount
	}
	avgDiameter, err := parseCost(req.AverageDiameter)
	if err != nil {
		return nil, err
	}
	avgLength, err := parseCost(req.AverageLength)
	if err != nil {
		return nil, err
	}

	purchaseDate := time.Now()
	if req.PurchaseDate != "" {
		parsed, err := time.Parse("2006-01-02", req.PurchaseDate)
		if err != nil {
			return nil, fmt.Errorf("invalid purchase date: %w", err)
		}
		purchaseDate = parsed
	}
	var deliveryDate *time.Time
	if req.DeliveryDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DeliveryDate)
		if err != nil {
			return nil, fmt.Errorf("invalid delivery date: %w", err)
		}
		deliveryDate = &parsed
	}

	grade := req.QualityGrade
	if grade == "" {
		grade = model.GradeStandard
	}
	uid := parseUserID(userID)

	var purchase *model.TreePurchase
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase = &model.TreePurchase{
			SupplierID:      supplierID,
			PurchaseDate:    purchaseDate,
			InvoiceNumber:   fmt.Sprintf("TP-%s-%s", time.Now().Format("20060102"), uuid.NewString()[:8]),
			TreeSpecies:     req.TreeSpecies,
			Quantity:        req.Quantity,
			UnitCost:        unitCost,
			TotalCost:       unitCost.Mul(decimal.NewFromInt(int64(req.Quantity))),
			AverageDiameter: avgDiameter,
			AverageLength:   avgLength,
			QualityGrade:    grade,
			DeliveryDate:    deliveryDate,
			PaymentStatus:   model.PaymentStatusPending,
			Notes:           req.Notes,
			CreatedByID:     uid,
		}
		if err := s.purchaseRepo.Create(txCtx, purchase); err != nil {
			return fmt.Errorf("failed to create tree purchase: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"tree_species": req.TreeSpecies,
			"quantity":     req.Quantity,
			"total_cost":   purchase.TotalCost.StringFixed(2),
		})
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionCreatePurchase,
			EntityID:   purchase.ID.String(),
			EntityName: purchase.InvoiceNumber,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

func (s *procurementService) UpdatePurchaseStatus(ctx context.Context, purchaseID string, req UpdatePurchaseStatusRequest) (*model.TreePurchase, error) {
	id, err := uuid.Parse(purchaseID)
	if err != nil {
		return nil, fmt.Errorf("invalid purchase id: %w", err)
	}
	purchase, err := s.purchaseRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load tree purchase: %w", err)
	}

	purchase.PaymentStatus = req.PaymentStatus
	if err := s.purchaseRepo.Update(ctx, purchase); err != nil {
		return nil, fmt.Errorf("failed to update tree purchase: %w", err)
	}
	return purchase, nil
}

func (s *procurementService) GetPurchase(ctx context.Context, id string) (*model.TreePurchase, error) {
	purchaseID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid purchase id: %w", err)
	}
	purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load tree purchase: %w", err)
	}
	return purchase, nil
}

func (s *procurementService) ListPurchases(ctx context.Context, filter PurchaseListFilter) ([]model.TreePurchase, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.PurchaseFilter{
		TreeSpecies:   filter.TreeSpecies,
		QualityGrade:  filter.QualityGrade,
		PaymentStatus: filter.PaymentStatus,
		Search:        filter.Search,
		Page:          filter.Page,
		Limit:         filter.Limit,
	}
	if filter.SupplierID != "" {
		id, err := uuid.Parse(filter.SupplierID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid supplier id: %w", err)
		}
		repoFilter.SupplierID = &id
	}
	return s.purchaseRepo.List(ctx, repoFilter)
}

func (s *procurementService) Summary(ctx context.Context) (PurchaseSummary, error) {
	bySupplier, err := s.purchaseRepo.TotalsBySupplier(ctx)
	if err != nil {
		return PurchaseSummary{}, fmt.Errorf("failed to summarize by supplier: %w", err)
	}
	bySpecies, err := s.purchaseRepo.TotalsBySpecies(ctx)
	if err != nil {
		return PurchaseSummary{}, fmt.Errorf("failed to summarize by species: %w", err)
	}
	return PurchaseSummary{BySupplier: bySupplier, BySpecies: bySpecies}, nil
}
