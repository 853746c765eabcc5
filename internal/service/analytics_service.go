package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/maxwelmichira/timberflow/internal/repository"

	"github.com/shopspring/decimal"
)

type DashboardResponse struct {
	SalesToday     string `json:"sales_today"`
	SalesThisWeek  string `json:"sales_this_week"`
	SalesThisMonth string `json:"sales_this_month"`
	TotalSales     int64  `json:"total_sales"`
	Outstanding    string `json:"outstanding"`
	LowStockItems  int    `json:"low_stock_items"`
	OpenBatches    int64  `json:"open_batches"`
	NetProfit      string `json:"net_profit"`
}

// MonthlyFinancialRow is one month of the revenue vs expenses series.
type MonthlyFinancialRow struct {
	Month    string `json:"month"`
	Revenue  string `json:"revenue"`
	Expenses string `json:"expenses"`
	Profit   string `json:"profit"`
}

type TopProductRow struct {
	ProductName  string `json:"product_name"`
	Unit         string `json:"unit"`
	UnitsSold    int64  `json:"units_sold"`
	TotalRevenue string `json:"total_revenue"`
}

// ValuationRow prices the current stock of one inventory item at its
// product's selling price.
type ValuationRow struct {
	ProductName     string `json:"product_name"`
	Category        string `json:"category"`
	Unit            string `json:"unit"`
	QuantityInStock int    `json:"quantity_in_stock"`
	IsLowStock      bool   `json:"is_low_stock"`
	SellingPrice    string `json:"selling_price"`
	EstimatedValue  string `json:"estimated_value"`
}

type ValuationReport struct {
	Items               []ValuationRow `json:"items"`
	TotalEstimatedValue string         `json:"total_estimated_value"`
}

type AnalyticsService interface {
	Dashboard(ctx context.Context) (DashboardResponse, error)
	MonthlyFinancials(ctx context.Context) ([]MonthlyFinancialRow, error)
	TopProducts(ctx context.Context, orderBy string, limit int) ([]TopProductRow, error)
	InventoryValuation(ctx context.Context) (ValuationReport, error)
	ExportSalesCSV(ctx context.Context, w io.Writer) error
	ExportMovementsCSV(ctx context.Context, w io.Writer) error
}

type analyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	saleRepo      repository.SaleRepository
	financeRepo   repository.FinanceRepository
	inventoryRepo repository.InventoryRepository
	batchRepo     repository.BatchRepository
}

func NewAnalyticsService(
	analyticsRepo repository.AnalyticsRepository,
	saleRepo repository.SaleRepository,
	financeRepo repository.FinanceRepository,
	inventoryRepo repository.InventoryRepository,
	batchRepo repository.BatchRepository,
) AnalyticsService {
	return &analyticsService{
		analyticsRepo: analyticsRepo,
		saleRepo:      saleRepo,
		financeRepo:   financeRepo,
		inventoryRepo: inventoryRepo,
		batchRepo:     batchRepo,
	}
}

func (s *analyticsService) Dashboard(ctx context.Context) (DashboardResponse, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	today, err := s.analyticsRepo.SalesSince(ctx, dayStart)
	if err != nil {
		return DashboardResponse{}, fmt.Errorf("failed to load today's sales: %w", err)
	}
	week, err := s.analyticsRepo.SalesSince(ctx, dayStart.AddDate(0, 0, -7))
	if err != nil {
		return DashboardResponse{}, fmt.Errorf("failed to load weekly sales: %w", err)
	}
	month, err := s.analyticsRepo.SalesSince(ctx, dayStart.AddDate(0, -1, 0))
	if err != nil {
		return DashboardResponse{}, fmt.Errorf("failed to load monthly sales: %w", err)
	}

	saleStats, err := s.saleRepo.Stats(ctx)
	if err != nil {
		return DashboardResponse{}, fmt.Errorf("failed to load sale statistics: %w", err)
	}
	batchStats, err := s.batchRepo.Stats(ctx)
	if err != nil {
		return DashboardResponse{}, fmt.Errorf("failed to load batch statistics: %w", err)
	}
	lowStock, err := s.inventoryRepo.ListLowStock(ctx)
	if err != nil {
		return DashboardResponse{}, fmt.Errorf("failed to load low stock items: %w", err)
	}

	totalRevenue, err := s.financeRepo.SumRevenues(ctx)
	if err != nil {
		return DashboardResponse{}, fmt.Errorf("failed to sum revenues: %w", err)
	}
	totalExpenses, err := s.financeRepo.SumExpenses(ctx)
	if err != nil {
		return DashboardResponse{}, fmt.Errorf("failed to sum expenses: %w", err)
	}

	return DashboardResponse{
		SalesToday:     today.Total.StringFixed(2),
		SalesThisWeek:  week.Total.StringFixed(2),
		SalesThisMonth: month.Total.StringFixed(2),
		TotalSales:     saleStats.TotalSales,
		Outstanding:    saleStats.TotalRevenue.Sub(saleStats.TotalCollected).StringFixed(2),
		LowStockItems:  len(lowStock),
		OpenBatches:    batchStats.InProgress,
		NetProfit:      totalRevenue.Sub(totalExpenses).StringFixed(2),
	}, nil
}

func (s *analyticsService) MonthlyFinancials(ctx context.Context) ([]MonthlyFinancialRow, error) {
	revenue, err := s.analyticsRepo.MonthlyRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly revenue: %w", err)
	}
	expenses, err := s.analyticsRepo.MonthlyExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly expenses: %w", err)
	}

	byMonth := make(map[string]*MonthlyFinancialRow)
	for _, r := range revenue {
		byMonth[r.Month] = &MonthlyFinancialRow{
			Month:    r.Month,
			Revenue:  r.Total.StringFixed(2),
			Expenses: decimal.Zero.StringFixed(2),
			Profit:   r.Total.StringFixed(2),
		}
	}
	for _, e := range expenses {
		row, ok := byMonth[e.Month]
		if !ok {
			byMonth[e.Month] = &MonthlyFinancialRow{
				Month:    e.Month,
				Revenue:  decimal.Zero.StringFixed(2),
				Expenses: e.Total.StringFixed(2),
				Profit:   e.Total.Neg().StringFixed(2),
			}
			continue
		}
		rev, _ := decimal.NewFromString(row.Revenue)
		row.Expenses = e.Total.StringFixed(2)
		row.Profit = rev.Sub(e.Total).StringFixed(2)
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	rows := make([]MonthlyFinancialRow, 0, len(months))
	for _, month := range months {
		rows = append(rows, *byMonth[month])
	}
	return rows, nil
}

func (s *analyticsService) TopProducts(ctx context.Context, orderBy string, limit int) ([]TopProductRow, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	if orderBy != "units_sold" {
		orderBy = "total_revenue"
	}

	totals, err := s.analyticsRepo.TopProductsBySales(ctx, orderBy, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}

	rows := make([]TopProductRow, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, TopProductRow{
			ProductName:  t.ProductName,
			Unit:         t.Unit,
			UnitsSold:    t.UnitsSold,
			TotalRevenue: t.TotalRevenue.StringFixed(2),
		})
	}
	return rows, nil
}

func (s *analyticsService) ExportSalesCSV(ctx context.Context, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"invoice_number", "sale_date", "customer", "payment_method",
		"payment_status", "total_amount", "amount_paid", "balance",
	}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	page := 1
	for {
		sales, total, err := s.saleRepo.List(ctx, repository.SaleFilter{Page: page, Limit: 500})
		if err != nil {
			return fmt.Errorf("failed to list sales: %w", err)
		}
		for _, sale := range sales {
			customer := ""
			if sale.Customer != nil {
				customer = sale.Customer.Name
			}
			if err := writer.Write([]string{
				sale.InvoiceNumber,
				sale.SaleDate.Format("2006-01-02"),
				customer,
				sale.PaymentMethod,
				sale.PaymentStatus,
				sale.TotalAmount.StringFixed(2),
				sale.AmountPaid.StringFixed(2),
				sale.Balance().StringFixed(2),
			}); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
		if int64(page*500) >= total {
			break
		}
		page++
	}

	writer.Flush()
	return writer.Error()
}

func (s *analyticsService) InventoryValuation(ctx context.Context) (ValuationReport, error) {
	report := ValuationReport{}
	total := decimal.Zero

	page := 1
	for {
		items, count, err := s.inventoryRepo.ListItems(ctx, repository.InventoryFilter{Page: page, Limit: 500})
		if err != nil {
			return ValuationReport{}, fmt.Errorf("failed to list inventory items: %w", err)
		}
		for _, item := range items {
			if item.Product == nil {
				continue
			}
			value := item.Product.SellingPrice.Mul(decimal.NewFromInt(int64(item.QuantityInStock)))
			report.Items = append(report.Items, ValuationRow{
				ProductName:     item.Product.Name,
				Category:        item.Product.Category,
				Unit:            item.Product.Unit,
				QuantityInStock: item.QuantityInStock,
				IsLowStock:      item.IsLowStock(),
				SellingPrice:    item.Product.SellingPrice.StringFixed(2),
				EstimatedValue:  value.StringFixed(2),
			})
			total = total.Add(value)
		}
		if int64(page*500) >= count {
			break
		}
		page++
	}

	report.TotalEstimatedValue = total.StringFixed(2)
	return report, nil
}

func (s *analyticsService) ExportMovementsCSV(ctx context.Context, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"created_at", "product", "movement_type", "reason", "quantity", "reference",
	}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	page := 1
	for {
		movements, total, err := s.inventoryRepo.ListMovements(ctx, repository.MovementFilter{Page: page, Limit: 500})
		if err != nil {
			return fmt.Errorf("failed to list movements: %w", err)
		}
		for _, m := range movements {
			product := ""
			if m.InventoryItem != nil && m.InventoryItem.Product != nil {
				product = m.InventoryItem.Product.Name
			}
			if err := writer.Write([]string{
				m.CreatedAt.Format("2006-01-02 15:04:05"),
				product,
				m.MovementType,
				m.Reason,
				fmt.Sprintf("%d", m.Quantity),
				m.Reference,
			}); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
		if int64(page*500) >= total {
			break
		}
		page++
	}

	writer.Flush()
	return writer.Error()
}
