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

type ExpenseRequest struct {
	Category    string `json:"category" binding:"required,oneof=procurement processing salaries transport equipment utilities maintenance other"`
	Description string `json:"description" binding:"required,max=255"`
	Amount      string `json:"amount" binding:"required"`
	ExpenseDate string `json:"expense_date" binding:"omitempty,datetime=2006-01-02"`
	Reference   string `json:"reference" binding:"omitempty,max=100"`
	Notes       string `json:"notes"`
}

type RevenueRequest struct {
	Source      string `json:"source" binding:"omitempty,oneof=sales other"`
	Description string `json:"description" binding:"required,max=255"`
	Amount      string `json:"amount" binding:"required"`
	RevenueDate string `json:"revenue_date" binding:"omitempty,datetime=2006-01-02"`
	Reference   string `json:"reference" binding:"omitempty,max=100"`
	Notes       string `json:"notes"`
}

type ExpenseListFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

type RevenueListFilter struct {
	Source string
	Search string
	Page   int
	Limit  int
}

// FinancialSummary is the profit and loss overview.
type FinancialSummary struct {
	TotalRevenue  string `json:"total_revenue"`
	TotalExpenses string `json:"total_expenses"`
	NetProfit     string `json:"net_profit"`
}

type FinanceService interface {
	CreateExpense(ctx context.Context, userID string, req ExpenseRequest) (*model.Expense, error)
	UpdateExpense(ctx context.Context, id string, req ExpenseRequest) (*model.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	ListExpenses(ctx context.Context, filter ExpenseListFilter) ([]model.Expense, int64, error)

	CreateRevenue(ctx context.Context, userID string, req RevenueRequest) (*model.Revenue, error)
	ListRevenues(ctx context.Context, filter RevenueListFilter) ([]model.Revenue, int64, error)

	Summary(ctx context.Context) (FinancialSummary, error)
}

type financeService struct {
	financeRepo repository.FinanceRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewFinanceService(
	financeRepo repository.FinanceRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) FinanceService {
	return &financeService{
		financeRepo: financeRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

func parseDateOrNow(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", raw)
}

func (s *financeService) CreateExpense(ctx context.Context, userID string, req ExpenseRequest) (*model.Expense, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	expenseDate, err := parseDateOrNow(req.ExpenseDate)
	if err != nil {
		return nil, fmt.Errorf("invalid expense date: %w", err)
	}
	uid := parseUserID(userID)

	expense := &model.Expense{
		Category:    req.Category,
		Description: req.Description,
		Amount:      amount,
		ExpenseDate: expenseDate,
		Reference:   req.Reference,
		Notes:       req.Notes,
		CreatedByID: uid,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.financeRepo.CreateExpense(txCtx, expense); err != nil {
			return fmt.Errorf("failed to create expense: %w", err)
		}
		details, _ := json.Marshal(map[string]interface{}{
			"category": req.Category,
			"amount":   amount.StringFixed(2),
		})
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionCreateExpense,
			EntityID:   expense.ID.String(),
			EntityName: expense.Description,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *financeService) UpdateExpense(ctx context.Context, id string, req ExpenseRequest) (*model.Expense, error) {
	expenseID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid expense id: %w", err)
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	expense, err := s.financeRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load expense: %w", err)
	}

	expense.Category = req.Category
	expense.Description = req.Description
	expense.Amount = amount
	expense.Reference = req.Reference
	expense.Notes = req.Notes
	if req.ExpenseDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ExpenseDate)
		if err != nil {
			return nil, fmt.Errorf("invalid expense date: %w", err)
		}
		expense.ExpenseDate = parsed
	}
	if err := s.financeRepo.UpdateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return expense, nil
}

func (s *financeService) DeleteExpense(ctx context.Context, id string) error {
	expenseID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid expense id: %w", err)
	}
	if _, err := s.financeRepo.FindExpenseByID(ctx, expenseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load expense: %w", err)
	}
	return s.financeRepo.DeleteExpense(ctx, expenseID)
}

func (s *financeService) ListExpenses(ctx context.Context, filter ExpenseListFilter) ([]model.Expense, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.financeRepo.ListExpenses(ctx, repository.ExpenseFilter{
		Category: filter.Category,
		Search:   filter.Search,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
}

func (s *financeService) CreateRevenue(ctx context.Context, userID string, req RevenueRequest) (*model.Revenue, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	revenueDate, err := parseDateOrNow(req.RevenueDate)
	if err != nil {
		return nil, fmt.Errorf("invalid revenue date: %w", err)
	}

	source := req.Source
	if source == "" {
		source = model.RevenueSales
	}
	uid := parseUserID(userID)

	revenue := &model.Revenue{
		Source:      source,
		Description: req.Description,
		Amount:      amount,
		RevenueDate: revenueDate,
		Reference:   req.Reference,
		Notes:       req.Notes,
		CreatedByID: uid,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.financeRepo.CreateRevenue(txCtx, revenue); err != nil {
			return fmt.Errorf("failed to create revenue: %w", err)
		}
		details, _ := json.Marshal(map[string]interface{}{
			"source": source,
			"amount": amount.StringFixed(2),
		})
		audit := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionCreateRevenue,
			EntityID:   revenue.ID.String(),
			EntityName: revenue.Description,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return nil, err
	}
	return revenue, nil
}

func (s *financeService) ListRevenues(ctx context.Context, filter RevenueListFilter) ([]model.Revenue, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.financeRepo.ListRevenues(ctx, repository.RevenueFilter{
		Source: filter.Source,
		Search: filter.Search,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
}

func (s *financeService) Summary(ctx context.Context) (FinancialSummary, error) {
	totalRevenue, err := s.financeRepo.SumRevenues(ctx)
	if err != nil {
		return FinancialSummary{}, fmt.Errorf("failed to sum revenues: %w", err)
	}
	totalExpenses, err := s.financeRepo.SumExpenses(ctx)
	if err != nil {
		return FinancialSummary{}, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return FinancialSummary{
		TotalRevenue:  totalRevenue.StringFixed(2),
		TotalExpenses: totalExpenses.StringFixed(2),
		NetProfit:     totalRevenue.Sub(totalExpenses).StringFixed(2),
	}, nil
}
