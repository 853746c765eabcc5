package service

import (
	"context"
	"sort"
	"time"

	"github.com/maxwelmichira/timberflow/internal/model"
	"github.com/maxwelmichira/timberflow/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory doubles for the repository interfaces. They keep just enough
// behavior for the services under test: lookups fail with
// gorm.ErrRecordNotFound, writes mutate shared state immediately.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, _ repository.AuditFilter) ([]model.AuditLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

// --- inventory ---

type fakeInventoryRepo struct {
	items     map[uuid.UUID]*model.InventoryItem
	movements []model.StockMovement
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{items: make(map[uuid.UUID]*model.InventoryItem)}
}

func (r *fakeInventoryRepo) addItem(product *model.Product, quantity, reorderLevel int) *model.InventoryItem {
	item := &model.InventoryItem{
		ID:              uuid.New(),
		ProductID:       product.ID,
		Product:         product,
		QuantityInStock: quantity,
		ReorderLevel:    reorderLevel,
		LastUpdated:     time.Now(),
	}
	r.items[item.ID] = item
	return item
}

func (r *fakeInventoryRepo) CreateItem(_ context.Context, item *model.InventoryItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *fakeInventoryRepo) UpdateItem(_ context.Context, item *model.InventoryItem) error {
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *fakeInventoryRepo) FindItemByID(_ context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *item
	return &clone, nil
}

func (r *fakeInventoryRepo) FindItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	return r.FindItemByID(ctx, id)
}

func (r *fakeInventoryRepo) FindItemByProductForUpdate(_ context.Context, productID uuid.UUID) (*model.InventoryItem, error) {
	for _, item := range r.items {
		if item.ProductID == productID {
			clone := *item
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeInventoryRepo) UpdateQuantity(_ context.Context, id uuid.UUID, quantity int) error {
	item, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.QuantityInStock = quantity
	item.LastUpdated = time.Now()
	return nil
}

func (r *fakeInventoryRepo) ListItems(_ context.Context, _ repository.InventoryFilter) ([]model.InventoryItem, int64, error) {
	var items []model.InventoryItem
	for _, item := range r.items {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID.String() < items[j].ID.String() })
	return items, int64(len(items)), nil
}

func (r *fakeInventoryRepo) ListLowStock(_ context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	for _, item := range r.items {
		if item.IsLowStock() {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (r *fakeInventoryRepo) CreateMovement(_ context.Context, movement *model.StockMovement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	movement.CreatedAt = time.Now()
	r.movements = append(r.movements, *movement)
	return nil
}

func (r *fakeInventoryRepo) ListMovements(_ context.Context, filter repository.MovementFilter) ([]model.StockMovement, int64, error) {
	var movements []model.StockMovement
	for _, m := range r.movements {
		if filter.InventoryItemID != nil && m.InventoryItemID != *filter.InventoryItemID {
			continue
		}
		movements = append(movements, m)
	}
	return movements, int64(len(movements)), nil
}

func (r *fakeInventoryRepo) LedgerBalances(_ context.Context) ([]repository.ItemBalance, error) {
	sums := make(map[uuid.UUID]int)
	for _, m := range r.movements {
		sums[m.InventoryItemID] += m.SignedQuantity()
	}

	var balances []repository.ItemBalance
	for id, item := range r.items {
		balances = append(balances, repository.ItemBalance{
			InventoryItemID: id,
			CachedQuantity:  item.QuantityInStock,
			LedgerQuantity:  sums[id],
		})
	}
	return balances, nil
}

// --- sales ---

type fakeSaleRepo struct {
	sales    map[uuid.UUID]*model.Sale
	items    []model.SaleItem
	payments []model.Payment
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *fakeSaleRepo) Create(_ context.Context, sale *model.Sale) error {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	clone := *sale
	r.sales[sale.ID] = &clone
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *sale
	for _, item := range r.items {
		if item.SaleID == id {
			clone.Items = append(clone.Items, item)
		}
	}
	for _, p := range r.payments {
		if p.SaleID == id {
			clone.Payments = append(clone.Payments, p)
		}
	}
	return &clone, nil
}

func (r *fakeSaleRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *sale
	return &clone, nil
}

func (r *fakeSaleRepo) Update(_ context.Context, sale *model.Sale) error {
	clone := *sale
	clone.Items = nil
	clone.Payments = nil
	r.sales[sale.ID] = &clone
	return nil
}

func (r *fakeSaleRepo) List(_ context.Context, _ repository.SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	for _, sale := range r.sales {
		sales = append(sales, *sale)
	}
	return sales, int64(len(sales)), nil
}

func (r *fakeSaleRepo) CreateItem(_ context.Context, item *model.SaleItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items = append(r.items, *item)
	return nil
}

func (r *fakeSaleRepo) SumItemTotals(_ context.Context, saleID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range r.items {
		if item.SaleID == saleID {
			total = total.Add(item.TotalPrice)
		}
	}
	return total, nil
}

func (r *fakeSaleRepo) CountByDate(_ context.Context, _ time.Time) (int64, error) {
	return int64(len(r.sales)), nil
}

func (r *fakeSaleRepo) Stats(_ context.Context) (repository.SaleStats, error) {
	stats := repository.SaleStats{
		TotalRevenue:   decimal.Zero,
		TotalCollected: decimal.Zero,
	}
	for _, sale := range r.sales {
		stats.TotalSales++
		stats.TotalRevenue = stats.TotalRevenue.Add(sale.TotalAmount)
		stats.TotalCollected = stats.TotalCollected.Add(sale.AmountPaid)
		if sale.PaymentStatus == model.PaymentStatusPending {
			stats.PendingPayment++
		}
	}
	return stats, nil
}

func (r *fakeSaleRepo) CreatePayment(_ context.Context, payment *model.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	r.payments = append(r.payments, *payment)
	return nil
}

func (r *fakeSaleRepo) SumPayments(_ context.Context, saleID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.payments {
		if p.SaleID == saleID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (r *fakeSaleRepo) ListPayments(_ context.Context, saleID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	for _, p := range r.payments {
		if p.SaleID == saleID {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

// --- customers ---

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *fakeCustomerRepo) Create(_ context.Context, customer *model.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	clone := *customer
	r.customers[customer.ID] = &clone
	return nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, customer *model.Customer) error {
	clone := *customer
	r.customers[customer.ID] = &clone
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.customers, id)
	return nil
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	customer, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *customer
	return &clone, nil
}

func (r *fakeCustomerRepo) List(_ context.Context, _ string, _, _ int) ([]model.Customer, int64, error) {
	var customers []model.Customer
	for _, c := range r.customers {
		customers = append(customers, *c)
	}
	return customers, int64(len(customers)), nil
}

// --- processing ---

type fakeBatchRepo struct {
	batches     map[uuid.UUID]*model.ProcessingBatch
	products    []model.ProcessedProduct
	purchases   *fakePurchaseRepo // when set, FindByID preloads the purchase
	lockedReads int               // FindByIDForUpdate call count
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: make(map[uuid.UUID]*model.ProcessingBatch)}
}

func (r *fakeBatchRepo) Create(_ context.Context, batch *model.ProcessingBatch) error {
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	clone := *batch
	r.batches[batch.ID] = &clone
	return nil
}

func (r *fakeBatchRepo) Update(_ context.Context, batch *model.ProcessingBatch) error {
	clone := *batch
	clone.ProcessedProducts = nil
	r.batches[batch.ID] = &clone
	return nil
}

func (r *fakeBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProcessingBatch, error) {
	batch, ok := r.batches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *batch
	for _, p := range r.products {
		if p.ProcessingBatchID == id {
			clone.ProcessedProducts = append(clone.ProcessedProducts, p)
		}
	}
	if r.purchases != nil {
		if purchase, ok := r.purchases.purchases[clone.TreePurchaseID]; ok {
			pc := *purchase
			clone.TreePurchase = &pc
		}
	}
	return &clone, nil
}

func (r *fakeBatchRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.ProcessingBatch, error) {
	r.lockedReads++
	batch, ok := r.batches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *batch
	return &clone, nil
}

func (r *fakeBatchRepo) List(_ context.Context, _ repository.BatchFilter) ([]model.ProcessingBatch, int64, error) {
	var batches []model.ProcessingBatch
	for _, b := range r.batches {
		batches = append(batches, *b)
	}
	return batches, int64(len(batches)), nil
}

func (r *fakeBatchRepo) CountByDate(_ context.Context, _ time.Time) (int64, error) {
	return int64(len(r.batches)), nil
}

func (r *fakeBatchRepo) CreateProduct(_ context.Context, product *model.ProcessedProduct) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products = append(r.products, *product)
	return nil
}

func (r *fakeBatchRepo) ListProducts(_ context.Context, batchID uuid.UUID) ([]model.ProcessedProduct, error) {
	var products []model.ProcessedProduct
	for _, p := range r.products {
		if p.ProcessingBatchID == batchID {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r *fakeBatchRepo) Stats(_ context.Context) (repository.BatchStats, error) {
	stats := repository.BatchStats{TotalProcessingCost: decimal.Zero}
	for _, b := range r.batches {
		stats.TotalBatches++
		switch b.Status {
		case model.BatchInProgress:
			stats.InProgress++
		case model.BatchCompleted:
			stats.Completed++
		}
		stats.TotalProcessingCost = stats.TotalProcessingCost.Add(b.TotalProcessingCost)
	}
	return stats, nil
}

// --- procurement ---

type fakePurchaseRepo struct {
	purchases map[uuid.UUID]*model.TreePurchase
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{purchases: make(map[uuid.UUID]*model.TreePurchase)}
}

func (r *fakePurchaseRepo) Create(_ context.Context, purchase *model.TreePurchase) error {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	clone := *purchase
	r.purchases[purchase.ID] = &clone
	return nil
}

func (r *fakePurchaseRepo) Update(_ context.Context, purchase *model.TreePurchase) error {
	clone := *purchase
	r.purchases[purchase.ID] = &clone
	return nil
}

func (r *fakePurchaseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TreePurchase, error) {
	purchase, ok := r.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *purchase
	return &clone, nil
}

func (r *fakePurchaseRepo) List(_ context.Context, _ repository.PurchaseFilter) ([]model.TreePurchase, int64, error) {
	var purchases []model.TreePurchase
	for _, p := range r.purchases {
		purchases = append(purchases, *p)
	}
	return purchases, int64(len(purchases)), nil
}

func (r *fakePurchaseRepo) TotalsBySupplier(_ context.Context) ([]repository.PurchaseGroupTotal, error) {
	return nil, nil
}

func (r *fakePurchaseRepo) TotalsBySpecies(_ context.Context) ([]repository.PurchaseGroupTotal, error) {
	return nil, nil
}

// --- products ---

type fakeProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *fakeProductRepo) Create(_ context.Context, product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *model.Product) error {
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *product
	return &clone, nil
}

func (r *fakeProductRepo) List(_ context.Context, _ repository.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	for _, p := range r.products {
		products = append(products, *p)
	}
	return products, int64(len(products)), nil
}
