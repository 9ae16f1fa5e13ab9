package service

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-retail-erp/internal/model"
	"go-retail-erp/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// fakeTxRunner runs the transaction body directly; service code only
// threads the tx handle through to repositories, which the fakes ignore.
type fakeTxRunner struct{}

func (fakeTxRunner) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	return fc(nil)
}

type fakeItemRepo struct {
	items map[uuid.UUID]*model.InventoryItem
}

func newFakeItemRepo(items ...*model.InventoryItem) *fakeItemRepo {
	repo := &fakeItemRepo{items: make(map[uuid.UUID]*model.InventoryItem)}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (f *fakeItemRepo) Create(tx *gorm.DB, item *model.InventoryItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	f.items[item.ID] = item
	return nil
}

func (f *fakeItemRepo) FindAll() ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	for _, item := range f.items {
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeItemRepo) FindByID(id uuid.UUID) (*model.InventoryItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (f *fakeItemRepo) FindBySKU(sku string) (*model.InventoryItem, error) {
	for _, item := range f.items {
		if item.SKU == sku {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeItemRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.InventoryItem, error) {
	return f.FindByID(id)
}

func (f *fakeItemRepo) Update(item *model.InventoryItem) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeItemRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	item, ok := f.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.Stock = newStock
	item.UpdatedBy = updatedBy
	return nil
}

func (f *fakeItemRepo) UpdateStockAndCost(tx *gorm.DB, id uuid.UUID, newStock int, originalCost decimal.Decimal, updatedBy string) error {
	item, ok := f.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.Stock = newStock
	item.OriginalCost = originalCost
	item.UpdatedBy = updatedBy
	return nil
}

func (f *fakeItemRepo) CountAll() (int64, error) { return int64(len(f.items)), nil }

func (f *fakeItemRepo) CountLowStock() (int64, error) {
	var n int64
	for _, item := range f.items {
		if item.IsLowStock() {
			n++
		}
	}
	return n, nil
}

func (f *fakeItemRepo) TotalValuation() (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range f.items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Stock))))
	}
	return total, nil
}

type fakeOrderRepo struct {
	orders  map[string]*model.Order
	created []string
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*model.Order)}
}

func (f *fakeOrderRepo) Create(tx *gorm.DB, order *model.Order) error {
	order.CreatedAt = time.Now()
	f.orders[order.ID] = order
	f.created = append(f.created, order.ID)
	return nil
}

func (f *fakeOrderRepo) FindLatestIDForUpdate(tx *gorm.DB) (string, error) {
	if len(f.created) == 0 {
		return "", nil
	}
	return f.created[len(f.created)-1], nil
}

func (f *fakeOrderRepo) FindByID(id string) (*model.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) FindByIDForUpdate(tx *gorm.DB, id string) (*model.Order, error) {
	return f.FindByID(id)
}

func (f *fakeOrderRepo) Update(tx *gorm.DB, order *model.Order) error {
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) FindAll(status model.OrderStatus, history bool, limit int) ([]model.Order, error) {
	var out []model.Order
	for _, order := range f.orders {
		if status != "" && order.Status != status {
			continue
		}
		if history != order.Status.IsTerminal() {
			continue
		}
		out = append(out, *order)
	}
	return out, nil
}

func (f *fakeOrderRepo) CountByStatus() (map[model.OrderStatus]int64, error) {
	counts := make(map[model.OrderStatus]int64)
	for _, order := range f.orders {
		counts[order.Status]++
	}
	return counts, nil
}

func (f *fakeOrderRepo) SalesSummary(startDate, endDate time.Time) (decimal.Decimal, decimal.Decimal, error) {
	revenue, profit := decimal.Zero, decimal.Zero
	for _, order := range f.orders {
		if order.Status == model.StatusCancelled {
			continue
		}
		revenue = revenue.Add(order.Amount)
		profit = profit.Add(order.Profit)
	}
	return revenue, profit, nil
}

func (f *fakeOrderRepo) MonthlySales(months int) ([]repository.MonthlySalesData, error) {
	return nil, nil
}

type fakeCommentRepo struct {
	comments []*model.OrderComment
}

func (f *fakeCommentRepo) Create(comment *model.OrderComment) error {
	f.comments = append(f.comments, comment)
	return nil
}

func (f *fakeCommentRepo) FindByOrder(orderID string) ([]model.OrderComment, error) {
	var out []model.OrderComment
	for _, c := range f.comments {
		if c.OrderID == orderID {
			out = append(out, *c)
		}
	}
	return out, nil
}

// stubNotifier counts deliveries so tests can assert the no-op paths.
type stubNotifier struct {
	statusChanges int
	comments      int
}

func (s *stubNotifier) NotifyComment(order *model.Order, comment *model.OrderComment, actor Actor) error {
	s.comments++
	return nil
}

func (s *stubNotifier) NotifyStatusChange(order *model.Order, actor Actor) error {
	s.statusChanges++
	return nil
}

func (s *stubNotifier) ListForUser(userID uuid.UUID) ([]model.Notification, error) { return nil, nil }
func (s *stubNotifier) MarkRead(id, userID uuid.UUID) error                        { return nil }
func (s *stubNotifier) MarkAllRead(userID uuid.UUID) error                         { return nil }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

type orderFixture struct {
	service  OrderService
	itemRepo *fakeItemRepo
	lotRepo  *fakeLotRepo
	notifier *stubNotifier
	item     *model.InventoryItem
}

func newOrderFixture(t *testing.T, stock int, lots ...*model.CostLot) *orderFixture {
	t.Helper()

	item := &model.InventoryItem{
		BaseModel:    model.BaseModel{ID: uuid.New()},
		SKU:          "SKU-1",
		Name:         "Widget",
		Stock:        stock,
		Price:        decimal.NewFromInt(200),
		OriginalCost: decimal.NewFromInt(100),
	}
	for _, lot := range lots {
		lot.ItemID = item.ID
	}

	lotRepo := &fakeLotRepo{lots: lots}
	itemRepo := newFakeItemRepo(item)
	notifier := &stubNotifier{}

	svc := NewOrderService(
		newFakeOrderRepo(),
		itemRepo,
		&fakeCommentRepo{},
		NewLedgerService(lotRepo),
		notifier,
		fakeTxRunner{},
		nil,
		quietLogger(),
	)
	return &orderFixture{service: svc, itemRepo: itemRepo, lotRepo: lotRepo, notifier: notifier, item: item}
}

func placeRequest(itemID uuid.UUID, qty int) *PlaceOrderRequest {
	return &PlaceOrderRequest{
		CustomerName: "Batbayar",
		Items:        []PlaceOrderLine{{ProductID: itemID, Quantity: qty}},
	}
}

func TestPlaceOrderComputesTotalsAndFreezesCosts(t *testing.T) {
	fx := newOrderFixture(t, 8,
		newLot(uuid.Nil, 3, 100),
		newLot(uuid.Nil, 5, 120),
	)
	actor := Actor{ID: uuid.New(), Username: "sara"}

	order, err := fx.service.PlaceOrder(placeRequest(fx.item.ID, 4), actor)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if order.ID != "ORD-1" {
		t.Fatalf("expected first order id ORD-1, got %s", order.ID)
	}
	if order.Status != model.StatusPending {
		t.Fatalf("expected PENDING, got %s", order.Status)
	}
	if !order.Amount.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("expected amount 800, got %s", order.Amount)
	}
	// Cost of goods: 3@100 + 1@120 = 420, so profit 800-420 = 380
	if !order.Profit.Equal(decimal.NewFromInt(380)) {
		t.Fatalf("expected profit 380, got %s", order.Profit)
	}
	if !order.Items[0].UnitCost.Equal(decimal.NewFromInt(105)) {
		t.Fatalf("expected frozen unit cost 105, got %s", order.Items[0].UnitCost)
	}
	if order.RepID != actor.ID {
		t.Fatalf("order without explicit rep should belong to the actor")
	}
	if fx.item.Stock != 4 {
		t.Fatalf("expected stock 4 after sale, got %d", fx.item.Stock)
	}
}

func TestPlaceOrderAssignsSequentialIDs(t *testing.T) {
	fx := newOrderFixture(t, 100, newLot(uuid.Nil, 100, 50))
	actor := Actor{ID: uuid.New(), Username: "sara"}

	first, err := fx.service.PlaceOrder(placeRequest(fx.item.ID, 1), actor)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	second, err := fx.service.PlaceOrder(placeRequest(fx.item.ID, 1), actor)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if first.ID != "ORD-1" || second.ID != "ORD-2" {
		t.Fatalf("expected ORD-1 then ORD-2, got %s then %s", first.ID, second.ID)
	}
}

func TestPlaceOrderFloorsStockAtZero(t *testing.T) {
	fx := newOrderFixture(t, 2, newLot(uuid.Nil, 2, 100))
	actor := Actor{ID: uuid.New(), Username: "sara"}

	order, err := fx.service.PlaceOrder(placeRequest(fx.item.ID, 5), actor)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if fx.item.Stock != 0 {
		t.Fatalf("stock must floor at zero, got %d", fx.item.Stock)
	}
	// 2@100 from the lot plus 3 oversold at the original cost of 100
	if !order.Profit.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected profit 500, got %s", order.Profit)
	}
}

func TestPlaceOrderUnknownItem(t *testing.T) {
	fx := newOrderFixture(t, 5, newLot(uuid.Nil, 5, 100))
	actor := Actor{ID: uuid.New(), Username: "sara"}

	_, err := fx.service.PlaceOrder(placeRequest(uuid.New(), 1), actor)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestUpdateStatusWalksTheHappyPath(t *testing.T) {
	fx := newOrderFixture(t, 5, newLot(uuid.Nil, 5, 100))
	actor := Actor{ID: uuid.New(), Username: "sara"}
	order, err := fx.service.PlaceOrder(placeRequest(fx.item.ID, 1), actor)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	for _, next := range []model.OrderStatus{model.StatusShipped, model.StatusDelivered, model.StatusPaid} {
		order, err = fx.service.UpdateStatus(order.ID, &StatusUpdateRequest{Status: next}, actor)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
		if order.Status != next {
			t.Fatalf("expected %s, got %s", next, order.Status)
		}
	}

	// PAID is terminal
	if _, err := fx.service.UpdateStatus(order.ID, &StatusUpdateRequest{Status: model.StatusCancelled}, actor); !errors.Is(err, ErrOrderTerminal) {
		t.Fatalf("expected ErrOrderTerminal, got %v", err)
	}
}

func TestUpdateStatusRejectsSkippedSteps(t *testing.T) {
	fx := newOrderFixture(t, 5, newLot(uuid.Nil, 5, 100))
	actor := Actor{ID: uuid.New(), Username: "sara"}
	order, err := fx.service.PlaceOrder(placeRequest(fx.item.ID, 1), actor)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if _, err := fx.service.UpdateStatus(order.ID, &StatusUpdateRequest{Status: model.StatusPaid}, actor); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCancelRestoresInventory(t *testing.T) {
	fx := newOrderFixture(t, 8,
		newLot(uuid.Nil, 3, 100),
		newLot(uuid.Nil, 5, 120),
	)
	actor := Actor{ID: uuid.New(), Username: "sara"}

	order, err := fx.service.PlaceOrder(placeRequest(fx.item.ID, 4), actor)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if fx.item.Stock != 4 {
		t.Fatalf("expected stock 4 after sale, got %d", fx.item.Stock)
	}

	_, err = fx.service.UpdateStatus(order.ID, &StatusUpdateRequest{
		Status:          model.StatusCancelled,
		CancelledReason: "customer changed their mind",
	}, actor)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if fx.item.Stock != 8 {
		t.Fatalf("cancel must restore stock to 8, got %d", fx.item.Stock)
	}

	// Restored quantity comes back as a lot at the frozen line cost
	total := 0
	for _, lot := range fx.lotRepo.lots {
		total += lot.Quantity
	}
	if total != 8 {
		t.Fatalf("lot quantities must sum to 8 after restore, got %d", total)
	}
}

func TestCancelTwiceIsNoOp(t *testing.T) {
	fx := newOrderFixture(t, 5, newLot(uuid.Nil, 5, 100))
	actor := Actor{ID: uuid.New(), Username: "sara"}

	order, err := fx.service.PlaceOrder(placeRequest(fx.item.ID, 2), actor)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if _, err := fx.service.UpdateStatus(order.ID, &StatusUpdateRequest{Status: model.StatusCancelled}, actor); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	stockAfterCancel := fx.item.Stock

	// Second cancel must not restore inventory again
	result, err := fx.service.UpdateStatus(order.ID, &StatusUpdateRequest{Status: model.StatusCancelled}, actor)
	if err != nil {
		t.Fatalf("repeated cancel should be a no-op, got %v", err)
	}
	if result.Status != model.StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", result.Status)
	}
	if fx.item.Stock != stockAfterCancel {
		t.Fatalf("repeated cancel must not change stock: %d vs %d", fx.item.Stock, stockAfterCancel)
	}
}

func TestAddCommentNotifies(t *testing.T) {
	fx := newOrderFixture(t, 5, newLot(uuid.Nil, 5, 100))
	actor := Actor{ID: uuid.New(), Username: "sara"}

	order, err := fx.service.PlaceOrder(placeRequest(fx.item.ID, 1), actor)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	comment, err := fx.service.AddComment(order.ID, "needs gift wrapping", actor)
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if comment.OrderID != order.ID || comment.UserID != actor.ID {
		t.Fatalf("comment not linked correctly: %+v", comment)
	}
	if fx.notifier.comments != 1 {
		t.Fatalf("expected 1 comment notification pass, got %d", fx.notifier.comments)
	}
}
