package service

import (
	"context"
	"testing"

	"github.com/maxwelmichira/timberflow/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestInventoryService() (InventoryService, *fakeInventoryRepo, *fakeAuditRepo) {
	invRepo := newFakeInventoryRepo()
	auditRepo := &fakeAuditRepo{}
	svc := NewInventoryService(invRepo, auditRepo, fakeTxManager{}, nil)
	return svc, invRepo, auditRepo
}

func testProduct(name string) *model.Product {
	return &model.Product{
		ID:           uuid.New(),
		Name:         name,
		Category:     model.CategoryPoles,
		Unit:         model.UnitPieces,
		SellingPrice: decimal.RequireFromString("250"),
		IsActive:     true,
	}
}

func TestApplyMovementOut(t *testing.T) {
	svc, invRepo, _ := newTestInventoryService()
	item := invRepo.addItem(testProduct("Round Pole 4 inch"), 10, 2)

	update, err := svc.ApplyMovement(context.Background(), MovementParams{
		InventoryItemID: item.ID,
		MovementType:    model.MovementOut,
		Reason:          model.ReasonSale,
		Quantity:        4,
		Reference:       "INV-20260831-00001",
	})
	require.NoError(t, err)
	require.Equal(t, 6, update.NewQuantity)
	require.False(t, update.LowStock)

	stored, err := invRepo.FindItemByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, 6, stored.QuantityInStock)

	require.Len(t, invRepo.movements, 1)
	m := invRepo.movements[0]
	require.Equal(t, model.MovementOut, m.MovementType)
	require.Equal(t, model.ReasonSale, m.Reason)
	require.Equal(t, 4, m.Quantity)
	require.Equal(t, "INV-20260831-00001", m.Reference)
}

func TestApplyMovementInsufficientStock(t *testing.T) {
	svc, invRepo, _ := newTestInventoryService()
	item := invRepo.addItem(testProduct("Round Pole 4 inch"), 10, 2)

	_, err := svc.ApplyMovement(context.Background(), MovementParams{
		InventoryItemID: item.ID,
		MovementType:    model.MovementOut,
		Reason:          model.ReasonSale,
		Quantity:        11,
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	// neither the cached quantity nor the ledger changed
	stored, err := invRepo.FindItemByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, 10, stored.QuantityInStock)
	require.Empty(t, invRepo.movements)
}

func TestApplyMovementExactStock(t *testing.T) {
	svc, invRepo, _ := newTestInventoryService()
	item := invRepo.addItem(testProduct("Offcut Bundle"), 5, 2)

	update, err := svc.ApplyMovement(context.Background(), MovementParams{
		InventoryItemID: item.ID,
		MovementType:    model.MovementOut,
		Reason:          model.ReasonSale,
		Quantity:        5,
	})
	require.NoError(t, err)
	require.Equal(t, 0, update.NewQuantity)
	require.True(t, update.LowStock)
}

func TestApplyMovementRejectsBadQuantity(t *testing.T) {
	svc, invRepo, _ := newTestInventoryService()
	item := invRepo.addItem(testProduct("Round Pole 4 inch"), 10, 2)

	for _, qty := range []int{0, -3} {
		_, err := svc.ApplyMovement(context.Background(), MovementParams{
			InventoryItemID: item.ID,
			MovementType:    model.MovementIn,
			Reason:          model.ReasonProcessing,
			Quantity:        qty,
		})
		require.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestAdjustStockSignedQuantity(t *testing.T) {
	svc, invRepo, auditRepo := newTestInventoryService()
	item := invRepo.addItem(testProduct("Round Pole 4 inch"), 10, 2)
	userID := uuid.New().String()

	res, err := svc.AdjustStock(context.Background(), userID, item.ID.String(), AdjustStockRequest{
		Quantity: -3,
		Reason:   model.ReasonDamage,
	})
	require.NoError(t, err)
	require.Equal(t, 7, res.QuantityInStock)

	res, err = svc.AdjustStock(context.Background(), userID, item.ID.String(), AdjustStockRequest{
		Quantity: 2,
	})
	require.NoError(t, err)
	require.Equal(t, 9, res.QuantityInStock)

	require.Len(t, invRepo.movements, 2)
	require.Equal(t, model.MovementOut, invRepo.movements[0].MovementType)
	require.Equal(t, model.ReasonDamage, invRepo.movements[0].Reason)
	require.Equal(t, model.MovementIn, invRepo.movements[1].MovementType)
	require.Equal(t, model.ReasonAdjustment, invRepo.movements[1].Reason)

	require.Len(t, auditRepo.entries, 2)
	require.Equal(t, model.ActionAdjustStock, auditRepo.entries[0].Action)
}

func TestAdjustStockBelowZeroFails(t *testing.T) {
	svc, invRepo, _ := newTestInventoryService()
	item := invRepo.addItem(testProduct("Round Pole 4 inch"), 2, 2)

	_, err := svc.AdjustStock(context.Background(), uuid.New().String(), item.ID.String(), AdjustStockRequest{
		Quantity: -3,
		Reason:   model.ReasonDamage,
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	stored, err := invRepo.FindItemByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, 2, stored.QuantityInStock)
}

func TestAdjustStockUnknownItem(t *testing.T) {
	svc, _, _ := newTestInventoryService()

	_, err := svc.AdjustStock(context.Background(), uuid.New().String(), uuid.New().String(), AdjustStockRequest{
		Quantity: 1,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureItemCreatesOnFirstUse(t *testing.T) {
	svc, invRepo, _ := newTestInventoryService()
	product := testProduct("Dining Chair")

	item, err := svc.EnsureItem(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, 0, item.QuantityInStock)

	again, err := svc.EnsureItem(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, item.ID, again.ID)
	require.Len(t, invRepo.items, 1)
}

func TestReconcileFlagsDrift(t *testing.T) {
	svc, invRepo, _ := newTestInventoryService()
	item := invRepo.addItem(testProduct("Round Pole 4 inch"), 10, 2)

	// ledger says 10 in, 4 out => 6, but cache says 10
	invRepo.movements = append(invRepo.movements,
		model.StockMovement{InventoryItemID: item.ID, MovementType: model.MovementIn, Quantity: 10},
		model.StockMovement{InventoryItemID: item.ID, MovementType: model.MovementOut, Quantity: 4},
	)

	report, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.ItemsChecked)
	require.Equal(t, 1, report.ItemsDrifted)
	require.Len(t, report.Rows, 1)
	require.Equal(t, 10, report.Rows[0].CachedQuantity)
	require.Equal(t, 6, report.Rows[0].LedgerQuantity)
	require.Equal(t, 4, report.Rows[0].Drift)
}

func TestReconcileClean(t *testing.T) {
	svc, invRepo, _ := newTestInventoryService()
	item := invRepo.addItem(testProduct("Round Pole 4 inch"), 6, 2)
	invRepo.movements = append(invRepo.movements,
		model.StockMovement{InventoryItemID: item.ID, MovementType: model.MovementIn, Quantity: 6},
	)

	report, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, report.ItemsDrifted)
	require.Equal(t, 0, report.Rows[0].Drift)
}
