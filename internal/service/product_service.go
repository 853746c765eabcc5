package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/maxwelmichira/timberflow/internal/model"
	"github.com/maxwelmichira/timberflow/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRequest struct {
	Name         string `json:"name" binding:"required,max=200"`
	Category     string `json:"category" binding:"required,oneof=poles offcuts firewood furniture"`
	Unit         string `json:"unit" binding:"omitempty,oneof=pieces bundles cubic_meters sets"`
	SellingPrice string `json:"selling_price" binding:"required"`
	Description  string `json:"description"`
	ReorderLevel *int   `json:"reorder_level" binding:"omitempty,gte=0"`
}

type ProductListFilter struct {
	Category   string
	Search     string
	ActiveOnly bool
	Page       int
	Limit      int
}

type ProductService interface {
	Create(ctx context.Context, userID string, req ProductRequest) (*model.Product, error)
	Update(ctx context.Context, userID string, id string, req ProductRequest) (*model.Product, error)
	Delete(ctx context.Context, userID string, id string) error
	Get(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, filter ProductListFilter) ([]model.Product, int64, error)
	ListByCategory(ctx context.Context) (map[string][]model.Product, error)
}

type productService struct {
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
}

func NewProductService(
	productRepo repository.ProductRepository,
	inventoryRepo repository.InventoryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ProductService {
	return &productService{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
	}
}

func parseUserID(userID string) *uuid.UUID {
	if parsed, err := uuid.Parse(userID); err == nil {
		return &parsed
	}
	return nil
}

func (s *productService) Create(ctx context.Context, userID string, req ProductRequest) (*model.Product, error) {
	price, err := decimal.NewFromString(req.SellingPrice)
	if err != nil || price.IsNegative() {
		return nil, ErrInvalidAmount
	}

	unit := req.Unit
	if unit == "" {
		unit = model.UnitPieces
	}
	reorderLevel := 10
	if req.ReorderLevel != nil {
		reorderLevel = *req.ReorderLevel
	}
	uid := parseUserID(userID)

	product := &model.Product{
		Name:         req.Name,
		Category:     req.Category,
		Unit:         unit,
		SellingPrice: price,
		Description:  req.Description,
		IsActive:     true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Create(txCtx, product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		// Every product tracks stock from day one, starting empty.
		item := &model.InventoryItem{
			ProductID:       product.ID,
			QuantityInStock: 0,
			ReorderLevel:    reorderLevel,
		}
		if err := s.inventoryRepo.CreateItem(txCtx, item); err != nil {
			return fmt.Errorf("failed to create inventory item: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"category":      product.Category,
			"selling_price": price.StringFixed(2),
			"reorder_level": reorderLevel,
		})
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionCreateProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, userID string, id string, req ProductRequest) (*model.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}

	price, err := decimal.NewFromString(req.SellingPrice)
	if err != nil || price.IsNegative() {
		return nil, ErrInvalidAmount
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	product.Name = req.Name
	product.Category = req.Category
	if req.Unit != "" {
		product.Unit = req.Unit
	}
	product.SellingPrice = price
	product.Description = req.Description

	uid := parseUserID(userID)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		if req.ReorderLevel != nil {
			item, err := s.inventoryRepo.FindItemByProductForUpdate(txCtx, product.ID)
			if err == nil {
				item.ReorderLevel = *req.ReorderLevel
				if err := s.inventoryRepo.UpdateItem(txCtx, item); err != nil {
					return fmt.Errorf("failed to update reorder level: %w", err)
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to load inventory item: %w", err)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"selling_price": price.StringFixed(2),
		})
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionUpdateProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, userID string, id string) error {
	productID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid product id: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load product: %w", err)
	}

	uid := parseUserID(userID)
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Delete(txCtx, productID); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionDeleteProduct,
			EntityID:   productID.String(),
			EntityName: product.Name,
		}
		return s.auditRepo.Log(txCtx, audit)
	})
}

func (s *productService) Get(ctx context.Context, id string) (*model.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, filter ProductListFilter) ([]model.Product, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.productRepo.List(ctx, repository.ProductFilter{
		Category:   filter.Category,
		Search:     filter.Search,
		ActiveOnly: filter.ActiveOnly,
		Page:       filter.Page,
		Limit:      filter.Limit,
	})
}

// ListByCategory groups all active products by category for catalogue views.
func (s *productService) ListByCategory(ctx context.Context) (map[string][]model.Product, error) {
	grouped := make(map[string][]model.Product)

	page := 1
	for {
		products, total, err := s.productRepo.List(ctx, repository.ProductFilter{
			ActiveOnly: true,
			Page:       page,
			Limit:      500,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list products: %w", err)
		}
		for _, p := range products {
			grouped[p.Category] = append(grouped[p.Category], p)
		}
		if int64(page*500) >= total {
			break
		}
		page++
	}

	return grouped, nil
}
