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

// --- DTOs ---

type CustomerRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Phone   string `json:"phone" binding:"required,max=15"`
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"address"`
}

type CreateSaleRequest struct {
	CustomerID    string               `json:"customer_id" binding:"omitempty,uuid"`
	SaleDate      string               `json:"sale_date" binding:"omitempty,datetime=2006-01-02"`
	PaymentMethod string               `json:"payment_method" binding:"omitempty,oneof=cash mpesa bank credit"`
	Notes         string               `json:"notes"`
	Items         []AddSaleItemRequest `json:"items" binding:"omitempty,dive"`
}

type AddSaleItemRequest struct {
	InventoryItemID string `json:"inventory_item_id" binding:"required,uuid"`
	Quantity        int    `json:"quantity" binding:"required,gt=0"`
	UnitPrice       string `json:"unit_price" binding:"omitempty"` // defaults to the product selling price
}

type RecordPaymentRequest struct {
	Amount      string `json:"amount" binding:"required"`
	Method      string `json:"method" binding:"omitempty,oneof=cash mpesa bank credit"`
	PaymentDate string `json:"payment_date" binding:"omitempty,datetime=2006-01-02"`
	Reference   string `json:"reference" binding:"omitempty,max=100"`
}

type SaleListFilter struct {
	PaymentStatus string
	PaymentMethod string
	CustomerID    string
	Search        string
	Page          int
	Limit         int
}

type SaleItemResponse struct {
	ID              string `json:"id"`
	InventoryItemID string `json:"inventory_item_id"`
	ProductName     string `json:"product_name"`
	Quantity        int    `json:"quantity"`
	UnitPrice       string `json:"unit_price"`
	TotalPrice      string `json:"total_price"`
}

type PaymentResponse struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Method      string `json:"method"`
	PaymentDate string `json:"payment_date"`
	Reference   string `json:"reference"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	CustomerID    string             `json:"customer_id,omitempty"`
	CustomerName  string             `json:"customer_name,omitempty"`
	SaleDate      string             `json:"sale_date"`
	PaymentMethod string             `json:"payment_method"`
	PaymentStatus string             `json:"payment_status"`
	TotalAmount   string             `json:"total_amount"`
	AmountPaid    string             `json:"amount_paid"`
	Balance       string             `json:"balance"`
	Notes         string             `json:"notes,omitempty"`
	Items         []SaleItemResponse `json:"items,omitempty"`
	Payments      []PaymentResponse  `json:"payments,omitempty"`
	CreatedAt     string             `json:"created_at"`
}

type SaleStatsResponse struct {
	TotalSales     int64  `json:"total_sales"`
	TotalRevenue   string `json:"total_revenue"`
	TotalCollected string `json:"total_collected"`
	Outstanding    string `json:"outstanding"`
	PendingPayment int64  `json:"pending_payment"`
}

// --- Interface ---

type SalesService interface {
	CreateCustomer(ctx context.Context, req CustomerRequest) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id string, req CustomerRequest) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	ListCustomers(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error)

	CreateSale(ctx context.Context, userID string, req CreateSaleRequest) (SaleResponse, error)
	AddItem(ctx context.Context, userID string, saleID string, req AddSaleItemRequest) (SaleResponse, error)
	RecordPayment(ctx context.Context, userID string, saleID string, req RecordPaymentRequest) (SaleResponse, error)
	GetSale(ctx context.Context, id string) (SaleResponse, error)
	ListSales(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error)
	Stats(ctx context.Context) (SaleStatsResponse, error)
}

type salesService struct {
	saleRepo      repository.SaleRepository
	customerRepo  repository.CustomerRepository
	inventoryRepo repository.InventoryRepository
	auditRepo     repository.AuditRepository
	inventorySvc  InventoryService
	txManager     repository.TransactionManager
}

func NewSalesService(
	saleRepo repository.SaleRepository,
	customerRepo repository.CustomerRepository,
	inventoryRepo repository.InventoryRepository,
	auditRepo repository.AuditRepository,
	inventorySvc InventoryService,
	txManager repository.TransactionManager,
) SalesService {
	return &salesService{
		saleRepo:      saleRepo,
		customerRepo:  customerRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
		inventorySvc:  inventorySvc,
		txManager:     txManager,
	}
}

// --- Customers ---

func (s *salesService) CreateCustomer(ctx context.Context, req CustomerRequest) (*model.Customer, error) {
	customer := &model.Customer{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		IsActive: true,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (s *salesService) UpdateCustomer(ctx context.Context, id string, req CustomerRequest) (*model.Customer, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Address = req.Address
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

func (s *salesService) DeleteCustomer(ctx context.Context, id string) error {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid customer id: %w", err)
	}
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load customer: %w", err)
	}
	return s.customerRepo.Delete(ctx, customerID)
}

func (s *salesService) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	return customer, nil
}

func (s *salesService) ListCustomers(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.customerRepo.List(ctx, search, page, limit)
}

// --- Sales ---

func toSaleItemResponse(item model.SaleItem) SaleItemResponse {
	res := SaleItemResponse{
		ID:              item.ID.String(),
		InventoryItemID: item.InventoryItemID.String(),
		Quantity:        item.Quantity,
		UnitPrice:       item.UnitPrice.StringFixed(2),
		TotalPrice:      item.TotalPrice.StringFixed(2),
	}
	if item.InventoryItem != nil && item.InventoryItem.Product != nil {
		res.ProductName = item.InventoryItem.Product.Name
	}
	return res
}

func toSaleResponse(sale model.Sale) SaleResponse {
	res := SaleResponse{
		ID:            sale.ID.String(),
		InvoiceNumber: sale.InvoiceNumber,
		SaleDate:      sale.SaleDate.Format("2006-01-02"),
		PaymentMethod: sale.PaymentMethod,
		PaymentStatus: sale.PaymentStatus,
		TotalAmount:   sale.TotalAmount.StringFixed(2),
		AmountPaid:    sale.AmountPaid.StringFixed(2),
		Balance:       sale.Balance().StringFixed(2),
		Notes:         sale.Notes,
		CreatedAt:     sale.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if sale.CustomerID != nil {
		res.CustomerID = sale.CustomerID.String()
	}
	if sale.Customer != nil {
		res.CustomerName = sale.Customer.Name
	}
	for _, item := range sale.Items {
		res.Items = append(res.Items, toSaleItemResponse(item))
	}
	for _, p := range sale.Payments {
		res.Payments = append(res.Payments, PaymentResponse{
			ID:          p.ID.String(),
			Amount:      p.Amount.StringFixed(2),
			Method:      p.Method,
			PaymentDate: p.PaymentDate.Format("2006-01-02"),
			Reference:   p.Reference,
		})
	}
	return res
}

func (s *salesService) CreateSale(ctx context.Context, userID string, req CreateSaleRequest) (SaleResponse, error) {
	saleDate := time.Now()
	if req.SaleDate != "" {
		parsed, err := time.Parse("2006-01-02", req.SaleDate)
		if err != nil {
			return SaleResponse{}, fmt.Errorf("invalid sale date: %w", err)
		}
		saleDate = parsed
	}

	method := req.PaymentMethod
	if method == "" {
		method = model.PaymentCash
	}

	var customerID *uuid.UUID
	if req.CustomerID != "" {
		parsed, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return SaleResponse{}, fmt.Errorf("invalid customer id: %w", err)
		}
		if _, err := s.customerRepo.FindByID(ctx, parsed); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return SaleResponse{}, ErrNotFound
			}
			return SaleResponse{}, fmt.Errorf("failed to load customer: %w", err)
		}
		customerID = &parsed
	}

	var uid *uuid.UUID
	if parsed, err := uuid.Parse(userID); err == nil {
		uid = &parsed
	}

	var sale *model.Sale
	var updates []StockUpdate
	runOnce := func() error {
		updates = updates[:0]
		return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			seq, err := s.saleRepo.CountByDate(txCtx, time.Now())
			if err != nil {
				return fmt.Errorf("failed to derive invoice sequence: %w", err)
			}

			sale = &model.Sale{
				CustomerID:    customerID,
				SaleDate:      saleDate,
				InvoiceNumber: fmt.Sprintf("INV-%s-%05d", time.Now().Format("20060102"), seq+1),
				PaymentMethod: method,
				PaymentStatus: model.PaymentStatusPending,
				TotalAmount:   decimal.Zero,
				AmountPaid:    decimal.Zero,
				Notes:         req.Notes,
				CreatedByID:   uid,
			}
			if err := s.saleRepo.Create(txCtx, sale); err != nil {
				return fmt.Errorf("failed to create sale: %w", err)
			}

			for _, itemReq := range req.Items {
				update, err := s.addItemInTx(txCtx, sale, itemReq, uid)
				if err != nil {
					return err
				}
				updates = append(updates, update)
			}

			details, _ := json.Marshal(map[string]interface{}{
				"invoice_number": sale.InvoiceNumber,
				"payment_method": method,
				"items":          len(req.Items),
			})
			audit := &model.AuditLog{
				UserID:     uid,
				Action:     model.ActionCreateSale,
				EntityID:   sale.ID.String(),
				EntityName: sale.InvoiceNumber,
				Details:    string(details),
			}
			return s.auditRepo.Log(txCtx, audit)
		})
	}

	err := runOnce()
	if isDuplicateKey(err) {
		// Two same-day sales can derive the same invoice sequence. The unique
		// index rejects the second; one retry re-derives the number.
		err = runOnce()
	}
	if err != nil {
		return SaleResponse{}, err
	}

	s.inventorySvc.Publish(updates...)
	return s.GetSale(ctx, sale.ID.String())
}

// addItemInTx appends one line to the sale and decrements stock. The sale
// row must already be locked by the caller's transaction; the stock check
// and decrement happen under the inventory item's own row lock.
func (s *salesService) addItemInTx(txCtx context.Context, sale *model.Sale, req AddSaleItemRequest, uid *uuid.UUID) (StockUpdate, error) {
	itemID, err := uuid.Parse(req.InventoryItemID)
	if err != nil {
		return StockUpdate{}, fmt.Errorf("invalid inventory item id: %w", err)
	}
	if req.Quantity <= 0 {
		return StockUpdate{}, ErrInvalidQuantity
	}

	var unitPrice decimal.Decimal
	if req.UnitPrice != "" {
		unitPrice, err = decimal.NewFromString(req.UnitPrice)
		if err != nil || unitPrice.IsNegative() {
			return StockUpdate{}, ErrInvalidAmount
		}
	} else {
		invItem, err := s.inventoryRepo.FindItemByID(txCtx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return StockUpdate{}, ErrNotFound
			}
			return StockUpdate{}, fmt.Errorf("failed to load inventory item: %w", err)
		}
		if invItem.Product == nil {
			return StockUpdate{}, ErrNotFound
		}
		unitPrice = invItem.Product.SellingPrice
	}

	update, err := s.inventorySvc.ApplyMovement(txCtx, MovementParams{
		InventoryItemID: itemID,
		MovementType:    model.MovementOut,
		Reason:          model.ReasonSale,
		Quantity:        req.Quantity,
		Reference:       sale.InvoiceNumber,
		CreatedBy:       uid,
	})
	if err != nil {
		return StockUpdate{}, err
	}

	saleItem := &model.SaleItem{
		SaleID:          sale.ID,
		InventoryItemID: itemID,
		Quantity:        req.Quantity,
		UnitPrice:       unitPrice,
		TotalPrice:      unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))),
	}
	if err := s.saleRepo.CreateItem(txCtx, saleItem); err != nil {
		return StockUpdate{}, fmt.Errorf("failed to create sale item: %w", err)
	}

	// Full recompute from the item ledger, never an increment.
	total, err := s.saleRepo.SumItemTotals(txCtx, sale.ID)
	if err != nil {
		return StockUpdate{}, fmt.Errorf("failed to recompute sale total: %w", err)
	}
	sale.TotalAmount = total
	sale.PaymentStatus = model.DerivePaymentStatus(sale.AmountPaid, sale.TotalAmount)
	if err := s.saleRepo.Update(txCtx, sale); err != nil {
		return StockUpdate{}, fmt.Errorf("failed to update sale totals: %w", err)
	}

	return update, nil
}

func (s *salesService) AddItem(ctx context.Context, userID string, saleID string, req AddSaleItemRequest) (SaleResponse, error) {
	id, err := uuid.Parse(saleID)
	if err != nil {
		return SaleResponse{}, fmt.Errorf("invalid sale id: %w", err)
	}

	var uid *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		uid = &parsed
	}

	var update StockUpdate
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		sale, err := s.saleRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock sale: %w", err)
		}

		update, err = s.addItemInTx(txCtx, sale, req, uid)
		if err != nil {
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"inventory_item_id": req.InventoryItemID,
			"quantity":          req.Quantity,
		})
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionAddSaleItem,
			EntityID:   sale.ID.String(),
			EntityName: sale.InvoiceNumber,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return SaleResponse{}, err
	}

	s.inventorySvc.Publish(update)
	return s.GetSale(ctx, saleID)
}

func (s *salesService) RecordPayment(ctx context.Context, userID string, saleID string, req RecordPaymentRequest) (SaleResponse, error) {
	id, err := uuid.Parse(saleID)
	if err != nil {
		return SaleResponse{}, fmt.Errorf("invalid sale id: %w", err)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return SaleResponse{}, ErrInvalidAmount
	}

	method := req.Method
	if method == "" {
		method = model.PaymentCash
	}

	paymentDate := time.Now()
	if req.PaymentDate != "" {
		parsed, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			return SaleResponse{}, fmt.Errorf("invalid payment date: %w", err)
		}
		paymentDate = parsed
	}

	var uid *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		uid = &parsed
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		sale, err := s.saleRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock sale: %w", err)
		}

		payment := &model.Payment{
			SaleID:       sale.ID,
			Amount:       amount,
			Method:       method,
			PaymentDate:  paymentDate,
			Reference:    req.Reference,
			ReceivedByID: uid,
		}
		if err := s.saleRepo.CreatePayment(txCtx, payment); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		// amount_paid is always the full sum of the payment ledger.
		paid, err := s.saleRepo.SumPayments(txCtx, sale.ID)
		if err != nil {
			return fmt.Errorf("failed to recompute amount paid: %w", err)
		}
		sale.AmountPaid = paid
		sale.PaymentStatus = model.DerivePaymentStatus(sale.AmountPaid, sale.TotalAmount)
		if err := s.saleRepo.Update(txCtx, sale); err != nil {
			return fmt.Errorf("failed to update sale payment state: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"amount":         amount.StringFixed(2),
			"method":         method,
			"payment_status": sale.PaymentStatus,
		})
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionRecordPayment,
			EntityID:   sale.ID.String(),
			EntityName: sale.InvoiceNumber,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return SaleResponse{}, err
	}

	return s.GetSale(ctx, saleID)
}

func (s *salesService) GetSale(ctx context.Context, id string) (SaleResponse, error) {
	saleID, err := uuid.Parse(id)
	if err != nil {
		return SaleResponse{}, fmt.Errorf("invalid sale id: %w", err)
	}
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SaleResponse{}, ErrNotFound
		}
		return SaleResponse{}, fmt.Errorf("failed to load sale: %w", err)
	}
	return toSaleResponse(*sale), nil
}

func (s *salesService) ListSales(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.SaleFilter{
		PaymentStatus: filter.PaymentStatus,
		PaymentMethod: filter.PaymentMethod,
		Search:        filter.Search,
		Page:          filter.Page,
		Limit:         filter.Limit,
	}
	if filter.CustomerID != "" {
		id, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid customer id: %w", err)
		}
		repoFilter.CustomerID = &id
	}

	sales, total, err := s.saleRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sales: %w", err)
	}

	res := make([]SaleResponse, 0, len(sales))
	for _, sale := range sales {
		res = append(res, toSaleResponse(sale))
	}
	return res, total, nil
}

func (s *salesService) Stats(ctx context.Context) (SaleStatsResponse, error) {
	stats, err := s.saleRepo.Stats(ctx)
	if err != nil {
		return SaleStatsResponse{}, fmt.Errorf("failed to load sale statistics: %w", err)
	}
	return SaleStatsResponse{
		TotalSales:     stats.TotalSales,
		TotalRevenue:   stats.TotalRevenue.StringFixed(2),
		TotalCollected: stats.TotalCollected.StringFixed(2),
		Outstanding:    stats.TotalRevenue.Sub(stats.TotalCollected).StringFixed(2),
		PendingPayment: stats.PendingPayment,
	}, nil
}
