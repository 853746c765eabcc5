package service

import (
	"context"
	"testing"
	"time"

	"github.com/maxwelmichira/timberflow/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type processingFixture struct {
	svc       ProcessingService
	batchRepo *fakeBatchRepo
	invRepo   *fakeInventoryRepo
	prodRepo  *fakeProductRepo
	purchase  *model.TreePurchase
}

func newProcessingFixture(t *testing.T) *processingFixture {
	t.Helper()
	batchRepo := newFakeBatchRepo()
	purchaseRepo := newFakePurchaseRepo()
	batchRepo.purchases = purchaseRepo
	prodRepo := newFakeProductRepo()
	invRepo := newFakeInventoryRepo()
	auditRepo := &fakeAuditRepo{}
	tx := fakeTxManager{}
	invSvc := NewInventoryService(invRepo, auditRepo, tx, nil)

	purchase := &model.TreePurchase{
		SupplierID:   uuid.New(),
		PurchaseDate: time.Now(),
		TreeSpecies:  "eucalyptus",
		Quantity:     20,
		UnitCost:     decimal.RequireFromString("500"),
		TotalCost:    decimal.RequireFromString("10000"),
	}
	require.NoError(t, purchaseRepo.Create(context.Background(), purchase))

	return &processingFixture{
		svc:       NewProcessingService(batchRepo, purchaseRepo, prodRepo, auditRepo, invSvc, tx),
		batchRepo: batchRepo,
		invRepo:   invRepo,
		prodRepo:  prodRepo,
		purchase:  purchase,
	}
}

func (f *processingFixture) openBatch(t *testing.T) *model.ProcessingBatch {
	t.Helper()
	batch, err := f.svc.CreateBatch(context.Background(), uuid.New().String(), CreateBatchRequest{
		TreePurchaseID: f.purchase.ID.String(),
		LaborCost:      "1500",
		EquipmentCost:  "500",
	})
	require.NoError(t, err)
	return batch
}

func TestCreateBatch(t *testing.T) {
	f := newProcessingFixture(t)

	batch := f.openBatch(t)
	require.Equal(t, model.BatchInProgress, batch.Status)
	require.Regexp(t, `^BATCH-\d{8}-\d{4}$`, batch.BatchNumber)
	require.True(t, batch.TotalProcessingCost.Equal(decimal.RequireFromString("2000")))
}

func TestCreateBatchUnknownPurchase(t *testing.T) {
	f := newProcessingFixture(t)

	_, err := f.svc.CreateBatch(context.Background(), uuid.New().String(), CreateBatchRequest{
		TreePurchaseID: uuid.New().String(),
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteBatchStocksInEveryLine(t *testing.T) {
	f := newProcessingFixture(t)
	batch := f.openBatch(t)
	userID := uuid.New().String()

	poles := testProduct("Round Pole 4 inch")
	require.NoError(t, f.prodRepo.Create(context.Background(), poles))
	offcuts := testProduct("Offcut Bundle")
	require.NoError(t, f.prodRepo.Create(context.Background(), offcuts))

	// poles already have an inventory item, offcuts get one on completion
	existing := f.invRepo.addItem(poles, 5, 2)

	_, err := f.svc.AddProduct(context.Background(), userID, batch.ID.String(), AddProcessedProductRequest{
		ProductID:        poles.ID.String(),
		QuantityProduced: 40,
	})
	require.NoError(t, err)
	_, err = f.svc.AddProduct(context.Background(), userID, batch.ID.String(), AddProcessedProductRequest{
		ProductID:        offcuts.ID.String(),
		QuantityProduced: 15,
	})
	require.NoError(t, err)

	completed, err := f.svc.CompleteBatch(context.Background(), userID, batch.ID.String())
	require.NoError(t, err)
	require.Equal(t, model.BatchCompleted, completed.Status)

	stored, err := f.invRepo.FindItemByID(context.Background(), existing.ID)
	require.NoError(t, err)
	require.Equal(t, 45, stored.QuantityInStock)

	created, err := f.invRepo.FindItemByProductForUpdate(context.Background(), offcuts.ID)
	require.NoError(t, err)
	require.Equal(t, 15, created.QuantityInStock)

	require.Len(t, f.invRepo.movements, 2)
	for _, m := range f.invRepo.movements {
		require.Equal(t, model.MovementIn, m.MovementType)
		require.Equal(t, model.ReasonProcessing, m.Reason)
		require.Equal(t, batch.BatchNumber, m.Reference)
	}
}

func TestCompleteBatchTwiceFails(t *testing.T) {
	f := newProcessingFixture(t)
	batch := f.openBatch(t)
	userID := uuid.New().String()

	product := testProduct("Round Pole 4 inch")
	require.NoError(t, f.prodRepo.Create(context.Background(), product))
	_, err := f.svc.AddProduct(context.Background(), userID, batch.ID.String(), AddProcessedProductRequest{
		ProductID:        product.ID.String(),
		QuantityProduced: 10,
	})
	require.NoError(t, err)

	_, err = f.svc.CompleteBatch(context.Background(), userID, batch.ID.String())
	require.NoError(t, err)

	_, err = f.svc.CompleteBatch(context.Background(), userID, batch.ID.String())
	require.ErrorIs(t, err, ErrBatchNotOpen)

	// no double stock-in
	item, err := f.invRepo.FindItemByProductForUpdate(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, 10, item.QuantityInStock)
}

func TestCompleteEmptyBatchFails(t *testing.T) {
	f := newProcessingFixture(t)
	batch := f.openBatch(t)

	_, err := f.svc.CompleteBatch(context.Background(), uuid.New().String(), batch.ID.String())
	require.ErrorIs(t, err, ErrBatchEmpty)
}

func TestAddProductHoldsBatchLock(t *testing.T) {
	f := newProcessingFixture(t)
	batch := f.openBatch(t)
	userID := uuid.New().String()

	product := testProduct("Round Pole 4 inch")
	require.NoError(t, f.prodRepo.Create(context.Background(), product))

	before := f.batchRepo.lockedReads
	_, err := f.svc.AddProduct(context.Background(), userID, batch.ID.String(), AddProcessedProductRequest{
		ProductID:        product.ID.String(),
		QuantityProduced: 10,
	})
	require.NoError(t, err)
	require.Equal(t, before+1, f.batchRepo.lockedReads)
}

func TestAddProductAfterCompletionFails(t *testing.T) {
	f := newProcessingFixture(t)
	batch := f.openBatch(t)
	userID := uuid.New().String()

	product := testProduct("Round Pole 4 inch")
	require.NoError(t, f.prodRepo.Create(context.Background(), product))
	_, err := f.svc.AddProduct(context.Background(), userID, batch.ID.String(), AddProcessedProductRequest{
		ProductID:        product.ID.String(),
		QuantityProduced: 10,
	})
	require.NoError(t, err)

	_, err = f.svc.CompleteBatch(context.Background(), userID, batch.ID.String())
	require.NoError(t, err)

	_, err = f.svc.AddProduct(context.Background(), userID, batch.ID.String(), AddProcessedProductRequest{
		ProductID:        product.ID.String(),
		QuantityProduced: 5,
	})
	require.ErrorIs(t, err, ErrBatchNotOpen)

	// stock reflects only the completed line
	item, err := f.invRepo.FindItemByProductForUpdate(context.Background(), product.ID)
	require.NoError(t, err)
	require.Equal(t, 10, item.QuantityInStock)
}

func TestAddProductToClosedBatchFails(t *testing.T) {
	f := newProcessingFixture(t)
	batch := f.openBatch(t)
	userID := uuid.New().String()

	_, err := f.svc.CancelBatch(context.Background(), userID, batch.ID.String())
	require.NoError(t, err)

	product := testProduct("Round Pole 4 inch")
	require.NoError(t, f.prodRepo.Create(context.Background(), product))
	_, err = f.svc.AddProduct(context.Background(), userID, batch.ID.String(), AddProcessedProductRequest{
		ProductID:        product.ID.String(),
		QuantityProduced: 10,
	})
	require.ErrorIs(t, err, ErrBatchNotOpen)
}

func TestYieldReportAllocatesCostByQuantity(t *testing.T) {
	f := newProcessingFixture(t)
	batch := f.openBatch(t)
	userID := uuid.New().String()

	poles := testProduct("Round Pole 4 inch")
	require.NoError(t, f.prodRepo.Create(context.Background(), poles))
	offcuts := testProduct("Offcut Bundle")
	require.NoError(t, f.prodRepo.Create(context.Background(), offcuts))

	_, err := f.svc.AddProduct(context.Background(), userID, batch.ID.String(), AddProcessedProductRequest{
		ProductID:        poles.ID.String(),
		QuantityProduced: 30,
	})
	require.NoError(t, err)
	_, err = f.svc.AddProduct(context.Background(), userID, batch.ID.String(), AddProcessedProductRequest{
		ProductID:        offcuts.ID.String(),
		QuantityProduced: 10,
	})
	require.NoError(t, err)

	report, err := f.svc.YieldReport(context.Background(), batch.ID.String())
	require.NoError(t, err)

	// purchase 10000 + processing 2000, split 30/10
	require.Equal(t, "10000.00", report.PurchaseCost)
	require.Equal(t, "2000.00", report.ProcessingCost)
	require.Equal(t, "12000.00", report.TotalCost)
	require.Equal(t, 40, report.UnitsProduced)
	require.Len(t, report.Lines, 2)
	require.Equal(t, "9000.00", report.Lines[0].AllocatedCost)
	require.Equal(t, "300.00", report.Lines[0].CostPerUnit)
	require.Equal(t, "3000.00", report.Lines[1].AllocatedCost)
}
