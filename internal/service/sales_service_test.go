package service

import (
	"context"
	"errors"
	"testing"

	"github.com/maxwelmichira/timberflow/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// dupSaleRepo fails Create with a unique-violation error a set number of
// times before delegating, simulating an invoice-number collision.
type dupSaleRepo struct {
	*fakeSaleRepo
	remainingFailures int
}

func (r *dupSaleRepo) Create(ctx context.Context, sale *model.Sale) error {
	if r.remainingFailures > 0 {
		r.remainingFailures--
		return errors.New(`duplicate key value violates unique constraint "idx_sales_invoice_number"`)
	}
	return r.fakeSaleRepo.Create(ctx, sale)
}

type salesFixture struct {
	svc       SalesService
	saleRepo  *fakeSaleRepo
	invRepo   *fakeInventoryRepo
	custRepo  *fakeCustomerRepo
	auditRepo *fakeAuditRepo
}

func newSalesFixture() *salesFixture {
	saleRepo := newFakeSaleRepo()
	custRepo := newFakeCustomerRepo()
	invRepo := newFakeInventoryRepo()
	auditRepo := &fakeAuditRepo{}
	tx := fakeTxManager{}
	invSvc := NewInventoryService(invRepo, auditRepo, tx, nil)
	return &salesFixture{
		svc:       NewSalesService(saleRepo, custRepo, invRepo, auditRepo, invSvc, tx),
		saleRepo:  saleRepo,
		invRepo:   invRepo,
		custRepo:  custRepo,
		auditRepo: auditRepo,
	}
}

func TestCreateSaleWithItemsDecrementsStock(t *testing.T) {
	f := newSalesFixture()
	item := f.invRepo.addItem(testProduct("Round Pole 4 inch"), 10, 2)
	userID := uuid.New().String()

	res, err := f.svc.CreateSale(context.Background(), userID, CreateSaleRequest{
		Items: []AddSaleItemRequest{
			{InventoryItemID: item.ID.String(), Quantity: 4},
		},
	})
	require.NoError(t, err)
	require.Regexp(t, `^INV-\d{8}-\d{5}$`, res.InvoiceNumber)
	require.Equal(t, "1000.00", res.TotalAmount) // 4 x 250 selling price
	require.Equal(t, "0.00", res.AmountPaid)
	require.Equal(t, model.PaymentStatusPending, res.PaymentStatus)
	require.Len(t, res.Items, 1)

	stored, err := f.invRepo.FindItemByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, 6, stored.QuantityInStock)

	require.Len(t, f.invRepo.movements, 1)
	require.Equal(t, res.InvoiceNumber, f.invRepo.movements[0].Reference)
	require.Equal(t, model.ReasonSale, f.invRepo.movements[0].Reason)

	// asking for more than the 6 left fails and changes nothing
	_, err = f.svc.AddItem(context.Background(), userID, res.ID, AddSaleItemRequest{
		InventoryItemID: item.ID.String(),
		Quantity:        10,
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	stored, err = f.invRepo.FindItemByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, 6, stored.QuantityInStock)

	unchanged, err := f.svc.GetSale(context.Background(), res.ID)
	require.NoError(t, err)
	require.Equal(t, "1000.00", unchanged.TotalAmount)
	require.Len(t, unchanged.Items, 1)
}

func TestCreateSaleUnknownCustomer(t *testing.T) {
	f := newSalesFixture()

	_, err := f.svc.CreateSale(context.Background(), uuid.New().String(), CreateSaleRequest{
		CustomerID: uuid.New().String(),
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddItemInsufficientStock(t *testing.T) {
	f := newSalesFixture()
	item := f.invRepo.addItem(testProduct("Round Pole 4 inch"), 10, 2)
	userID := uuid.New().String()

	sale, err := f.svc.CreateSale(context.Background(), userID, CreateSaleRequest{})
	require.NoError(t, err)

	_, err = f.svc.AddItem(context.Background(), userID, sale.ID, AddSaleItemRequest{
		InventoryItemID: item.ID.String(),
		Quantity:        11,
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	// no sale item, no movement, stock untouched
	require.Empty(t, f.saleRepo.items)
	require.Empty(t, f.invRepo.movements)
	stored, err := f.invRepo.FindItemByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, 10, stored.QuantityInStock)
}

func TestAddItemRecomputesTotal(t *testing.T) {
	f := newSalesFixture()
	item := f.invRepo.addItem(testProduct("Round Pole 4 inch"), 20, 2)
	userID := uuid.New().String()

	sale, err := f.svc.CreateSale(context.Background(), userID, CreateSaleRequest{
		Items: []AddSaleItemRequest{
			{InventoryItemID: item.ID.String(), Quantity: 2, UnitPrice: "300"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "600.00", sale.TotalAmount)

	sale, err = f.svc.AddItem(context.Background(), userID, sale.ID, AddSaleItemRequest{
		InventoryItemID: item.ID.String(),
		Quantity:        3,
	})
	require.NoError(t, err)
	// 2 x 300 + 3 x 250 (default selling price)
	require.Equal(t, "1350.00", sale.TotalAmount)
	require.Len(t, sale.Items, 2)
}

func TestRecordPaymentDerivesStatus(t *testing.T) {
	f := newSalesFixture()
	item := f.invRepo.addItem(testProduct("Round Pole 4 inch"), 10, 2)
	userID := uuid.New().String()

	sale, err := f.svc.CreateSale(context.Background(), userID, CreateSaleRequest{
		Items: []AddSaleItemRequest{
			{InventoryItemID: item.ID.String(), Quantity: 4}, // 1000 total
		},
	})
	require.NoError(t, err)

	sale, err = f.svc.RecordPayment(context.Background(), userID, sale.ID, RecordPaymentRequest{
		Amount: "400",
		Method: model.PaymentMpesa,
	})
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusPartial, sale.PaymentStatus)
	require.Equal(t, "400.00", sale.AmountPaid)
	require.Equal(t, "600.00", sale.Balance)

	sale, err = f.svc.RecordPayment(context.Background(), userID, sale.ID, RecordPaymentRequest{
		Amount: "600",
	})
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusPaid, sale.PaymentStatus)
	require.Equal(t, "1000.00", sale.AmountPaid)
	require.Equal(t, "0.00", sale.Balance)
	require.Len(t, sale.Payments, 2)
}

func TestRecordPaymentOverpaymentIsPaid(t *testing.T) {
	f := newSalesFixture()
	item := f.invRepo.addItem(testProduct("Round Pole 4 inch"), 10, 2)
	userID := uuid.New().String()

	sale, err := f.svc.CreateSale(context.Background(), userID, CreateSaleRequest{
		Items: []AddSaleItemRequest{
			{InventoryItemID: item.ID.String(), Quantity: 4},
		},
	})
	require.NoError(t, err)

	sale, err = f.svc.RecordPayment(context.Background(), userID, sale.ID, RecordPaymentRequest{
		Amount: "1200",
	})
	require.NoError(t, err)
	require.Equal(t, model.PaymentStatusPaid, sale.PaymentStatus)
	require.Equal(t, "-200.00", sale.Balance)
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	f := newSalesFixture()
	userID := uuid.New().String()

	sale, err := f.svc.CreateSale(context.Background(), userID, CreateSaleRequest{})
	require.NoError(t, err)

	for _, amount := range []string{"0", "-100", "not-a-number"} {
		_, err = f.svc.RecordPayment(context.Background(), userID, sale.ID, RecordPaymentRequest{
			Amount: amount,
		})
		require.ErrorIs(t, err, ErrInvalidAmount)
	}
	require.Empty(t, f.saleRepo.payments)
}

func TestRecordPaymentUnknownSale(t *testing.T) {
	f := newSalesFixture()

	_, err := f.svc.RecordPayment(context.Background(), uuid.New().String(), uuid.New().String(), RecordPaymentRequest{
		Amount: "100",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateSaleRetriesOnInvoiceCollision(t *testing.T) {
	saleRepo := &dupSaleRepo{fakeSaleRepo: newFakeSaleRepo(), remainingFailures: 1}
	invRepo := newFakeInventoryRepo()
	auditRepo := &fakeAuditRepo{}
	tx := fakeTxManager{}
	invSvc := NewInventoryService(invRepo, auditRepo, tx, nil)
	svc := NewSalesService(saleRepo, newFakeCustomerRepo(), invRepo, auditRepo, invSvc, tx)

	res, err := svc.CreateSale(context.Background(), uuid.New().String(), CreateSaleRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, res.InvoiceNumber)
	require.Len(t, saleRepo.sales, 1)
}

func TestCreateSaleFailsOnRepeatedInvoiceCollision(t *testing.T) {
	saleRepo := &dupSaleRepo{fakeSaleRepo: newFakeSaleRepo(), remainingFailures: 2}
	invRepo := newFakeInventoryRepo()
	auditRepo := &fakeAuditRepo{}
	tx := fakeTxManager{}
	invSvc := NewInventoryService(invRepo, auditRepo, tx, nil)
	svc := NewSalesService(saleRepo, newFakeCustomerRepo(), invRepo, auditRepo, invSvc, tx)

	_, err := svc.CreateSale(context.Background(), uuid.New().String(), CreateSaleRequest{})
	require.Error(t, err)
	require.Empty(t, saleRepo.sales)
}

func TestCreateSaleAuditTrail(t *testing.T) {
	f := newSalesFixture()
	userID := uuid.New().String()

	_, err := f.svc.CreateSale(context.Background(), userID, CreateSaleRequest{})
	require.NoError(t, err)

	require.Len(t, f.auditRepo.entries, 1)
	require.Equal(t, model.ActionCreateSale, f.auditRepo.entries[0].Action)
	require.Equal(t, userID, f.auditRepo.entries[0].UserID.String())
}
