package service

import (
	"context"
	"testing"

	"github.com/maxwelmichira/timberflow/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestInventoryValuation(t *testing.T) {
	invRepo := newFakeInventoryRepo()
	poles := testProduct("Round Pole 4 inch") // sells at 250
	invRepo.addItem(poles, 10, 2)
	chairs := testProduct("Dining Chair")
	chairs.Category = model.CategoryFurniture
	chairs.SellingPrice = decimal.RequireFromString("3500")
	invRepo.addItem(chairs, 1, 2)

	svc := NewAnalyticsService(nil, nil, nil, invRepo, nil)

	report, err := svc.InventoryValuation(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Items, 2)
	// 10 x 250 + 1 x 3500
	require.Equal(t, "6000.00", report.TotalEstimatedValue)

	byName := make(map[string]ValuationRow)
	for _, row := range report.Items {
		byName[row.ProductName] = row
	}
	require.Equal(t, "2500.00", byName["Round Pole 4 inch"].EstimatedValue)
	require.Equal(t, "3500.00", byName["Dining Chair"].EstimatedValue)
	require.True(t, byName["Dining Chair"].IsLowStock)
	require.Equal(t, model.CategoryFurniture, byName["Dining Chair"].Category)
}

func TestInventoryValuationEmpty(t *testing.T) {
	svc := NewAnalyticsService(nil, nil, nil, newFakeInventoryRepo(), nil)

	report, err := svc.InventoryValuation(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Items)
	require.Equal(t, "0.00", report.TotalEstimatedValue)
}

func TestListProductsByCategory(t *testing.T) {
	prodRepo := newFakeProductRepo()
	for _, name := range []string{"Round Pole 4 inch", "Round Pole 6 inch"} {
		require.NoError(t, prodRepo.Create(context.Background(), testProduct(name)))
	}
	chair := testProduct("Dining Chair")
	chair.Category = model.CategoryFurniture
	require.NoError(t, prodRepo.Create(context.Background(), chair))

	svc := NewProductService(prodRepo, newFakeInventoryRepo(), &fakeAuditRepo{}, fakeTxManager{})

	grouped, err := svc.ListByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, grouped, 2)
	require.Len(t, grouped[model.CategoryPoles], 2)
	require.Len(t, grouped[model.CategoryFurniture], 1)
}
