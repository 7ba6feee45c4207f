package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"storefront-orders/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &PostgresStore{DB: db}, mock
}

func orderRows(o model.Order) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "product_id", "product_name", "quantity", "unit_price", "total_price",
		"buyer_email", "buyer_name", "status", "created_at", "updated_at",
	}).AddRow(
		o.ID.String(), o.ProductID.String(), o.ProductName, o.Quantity, o.UnitPrice.String(), o.TotalPrice.String(),
		o.BuyerEmail, o.BuyerName, string(o.Status), o.CreatedAt, o.UpdatedAt,
	)
}

func sampleOrder(status model.OrderStatus) model.Order {
	now := time.Now()
	return model.Order{
		ID:          uuid.New(),
		ProductID:   uuid.New(),
		ProductName: "football",
		Quantity:    2,
		UnitPrice:   decimal.NewFromInt(10),
		TotalPrice:  decimal.NewFromInt(20),
		BuyerEmail:  "buyer@example.com",
		BuyerName:   "Buyer",
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestTryReserve_SuccessIsSingleConditionalUpdate(t *testing.T) {
	s, mock := newMockStore(t)
	pid := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(reserveSQL)).
		WithArgs(2, pid).
		WillReturnRows(sqlmock.NewRows([]string{"current_stock"}).AddRow(3))

	remaining, err := s.TryReserve(context.Background(), pid, 2)
	if err != nil {
		t.Fatalf("TryReserve failed: %v", err)
	}
	if remaining != 3 {
		t.Fatalf("expected remaining 3, got %d", remaining)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTryReserve_InsufficientStock(t *testing.T) {
	s, mock := newMockStore(t)
	pid := uuid.New()

	// conditional update matches nothing, follow-up read only classifies
	mock.ExpectQuery(regexp.QuoteMeta(reserveSQL)).
		WithArgs(5, pid).
		WillReturnRows(sqlmock.NewRows([]string{"current_stock"}))
	mock.ExpectQuery(regexp.QuoteMeta(availableSQL)).
		WithArgs(pid).
		WillReturnRows(sqlmock.NewRows([]string{"current_stock"}).AddRow(1))

	_, err := s.TryReserve(context.Background(), pid, 5)
	var se *model.StockError
	if !errors.As(err, &se) {
		t.Fatalf("expected StockError, got %v", err)
	}
	if se.ProductID != pid || se.Requested != 5 || se.Available != 1 {
		t.Fatalf("unexpected stock error: %+v", se)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTryReserve_UnknownProductAndBadQuantity(t *testing.T) {
	s, mock := newMockStore(t)
	pid := uuid.New()

	// invalid qty -> should error early, no DB calls
	if _, err := s.TryReserve(context.Background(), pid, 0); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(reserveSQL)).
		WithArgs(1, pid).
		WillReturnRows(sqlmock.NewRows([]string{"current_stock"}))
	mock.ExpectQuery(regexp.QuoteMeta(availableSQL)).
		WithArgs(pid).
		WillReturnRows(sqlmock.NewRows([]string{"current_stock"}))

	if _, err := s.TryReserve(context.Background(), pid, 1); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTryReserve_DriverErrorIsPersistence(t *testing.T) {
	s, mock := newMockStore(t)
	pid := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(reserveSQL)).
		WithArgs(1, pid).
		WillReturnError(errors.New("connection reset"))

	_, err := s.TryReserve(context.Background(), pid, 1)
	if !errors.Is(err, model.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestRestore_ClampedByStatement(t *testing.T) {
	s, mock := newMockStore(t)
	pid := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(restoreSQL)).
		WithArgs(50, pid).
		WillReturnRows(sqlmock.NewRows([]string{"current_stock"}).AddRow(10))

	got, err := s.Restore(context.Background(), pid, 50)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got != 10 {
		t.Fatalf("expected clamped stock 10, got %d", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetAvailable(t *testing.T) {
	s, mock := newMockStore(t)
	pid := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(availableSQL)).
		WithArgs(pid).
		WillReturnRows(sqlmock.NewRows([]string{"current_stock"}).AddRow(7))

	got, err := s.GetAvailable(context.Background(), pid)
	if err != nil || got != 7 {
		t.Fatalf("expected 7, got %d (%v)", got, err)
	}
}

func expectShareLock(mock sqlmock.Sqlmock, ids ...uuid.UUID) {
	for _, id := range ids {
		mock.ExpectQuery(regexp.QuoteMeta(shareProductSQL)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))
	}
}

func TestInsertOrders_OneTransaction(t *testing.T) {
	s, mock := newMockStore(t)
	o1 := sampleOrder(model.OrderStatusPending)
	o2 := sampleOrder(model.OrderStatusPending)

	mock.ExpectBegin()
	expectShareLock(mock, o1.ProductID, o2.ProductID)
	mock.ExpectPrepare(regexp.QuoteMeta(insertOrderSQL))
	for _, o := range []model.Order{o1, o2} {
		mock.ExpectExec(regexp.QuoteMeta(insertOrderSQL)).
			WithArgs(o.ID, o.ProductID, o.ProductName, o.Quantity, o.UnitPrice, o.TotalPrice,
				o.BuyerEmail, o.BuyerName, "pending", o.CreatedAt, o.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	if err := s.InsertOrders(context.Background(), []model.Order{o1, o2}); err != nil {
		t.Fatalf("InsertOrders failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertOrders_RollbackOnSecondRow(t *testing.T) {
	s, mock := newMockStore(t)
	o1 := sampleOrder(model.OrderStatusPending)
	o2 := sampleOrder(model.OrderStatusPending)

	mock.ExpectBegin()
	expectShareLock(mock, o1.ProductID, o2.ProductID)
	mock.ExpectPrepare(regexp.QuoteMeta(insertOrderSQL))
	mock.ExpectExec(regexp.QuoteMeta(insertOrderSQL)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertOrderSQL)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.InsertOrders(context.Background(), []model.Order{o1, o2})
	if !errors.Is(err, model.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertOrders_LocksEachProductOnce(t *testing.T) {
	s, mock := newMockStore(t)
	o1 := sampleOrder(model.OrderStatusPending)
	o2 := sampleOrder(model.OrderStatusPending)
	o2.ProductID = o1.ProductID

	mock.ExpectBegin()
	expectShareLock(mock, o1.ProductID)
	mock.ExpectPrepare(regexp.QuoteMeta(insertOrderSQL))
	mock.ExpectExec(regexp.QuoteMeta(insertOrderSQL)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertOrderSQL)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := s.InsertOrders(context.Background(), []model.Order{o1, o2}); err != nil {
		t.Fatalf("InsertOrders failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertOrders_DiscontinuedProductWritesNothing(t *testing.T) {
	s, mock := newMockStore(t)
	o1 := sampleOrder(model.OrderStatusPending)
	o2 := sampleOrder(model.OrderStatusPending)

	// o2's product was deleted after the availability read
	mock.ExpectBegin()
	expectShareLock(mock, o1.ProductID)
	mock.ExpectQuery(regexp.QuoteMeta(shareProductSQL)).
		WithArgs(o2.ProductID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := s.InsertOrders(context.Background(), []model.Order{o1, o2})
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, model.ErrPersistence) {
		t.Fatalf("a missing product is not a storage failure: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmOrder_ReserveAndCompleteTogether(t *testing.T) {
	s, mock := newMockStore(t)
	o := sampleOrder(model.OrderStatusCompleted)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(transitionOrderSQL)).
		WithArgs(o.ID, "completed").
		WillReturnRows(orderRows(o))
	mock.ExpectQuery(regexp.QuoteMeta(reserveSQL)).
		WithArgs(o.Quantity, o.ProductID).
		WillReturnRows(sqlmock.NewRows([]string{"current_stock"}).AddRow(1))
	mock.ExpectCommit()

	got, err := s.ConfirmOrder(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("ConfirmOrder failed: %v", err)
	}
	if got.ID != o.ID || got.Status != model.OrderStatusCompleted || !got.TotalPrice.Equal(o.TotalPrice) {
		t.Fatalf("unexpected order: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmOrder_InsufficientStockRollsBackStatus(t *testing.T) {
	s, mock := newMockStore(t)
	o := sampleOrder(model.OrderStatusCompleted)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(transitionOrderSQL)).
		WithArgs(o.ID, "completed").
		WillReturnRows(orderRows(o))
	mock.ExpectQuery(regexp.QuoteMeta(reserveSQL)).
		WithArgs(o.Quantity, o.ProductID).
		WillReturnRows(sqlmock.NewRows([]string{"current_stock"}))
	mock.ExpectQuery(regexp.QuoteMeta(availableSQL)).
		WithArgs(o.ProductID).
		WillReturnRows(sqlmock.NewRows([]string{"current_stock"}).AddRow(1))
	// status write is undone together with the failed reservation
	mock.ExpectRollback()

	_, err := s.ConfirmOrder(context.Background(), o.ID)
	if !errors.Is(err, model.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmOrder_AlreadyCompletedNoStockTouched(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(transitionOrderSQL)).
		WithArgs(id, "completed").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(orderStatusSQL)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("completed"))
	mock.ExpectRollback()

	_, err := s.ConfirmOrder(context.Background(), id)
	var ce *model.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if ce.Status != model.OrderStatusCompleted {
		t.Fatalf("unexpected conflict: %+v", ce)
	}
	// no reserve statement was expected; sqlmock would have failed on it
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmOrder_MissingOrder(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(transitionOrderSQL)).
		WithArgs(id, "completed").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(orderStatusSQL)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectRollback()

	if _, err := s.ConfirmOrder(context.Background(), id); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRefundOrder_PendingAndConflict(t *testing.T) {
	s, mock := newMockStore(t)
	o := sampleOrder(model.OrderStatusRefunded)

	mock.ExpectQuery(regexp.QuoteMeta(transitionOrderSQL)).
		WithArgs(o.ID, "refunded").
		WillReturnRows(orderRows(o))

	got, err := s.RefundOrder(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("RefundOrder failed: %v", err)
	}
	if got.Status != model.OrderStatusRefunded {
		t.Fatalf("expected refunded, got %s", got.Status)
	}

	// second refund: CAS misses, lookup reports the terminal status
	mock.ExpectQuery(regexp.QuoteMeta(transitionOrderSQL)).
		WithArgs(o.ID, "refunded").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(orderStatusSQL)).
		WithArgs(o.ID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("refunded"))

	if _, err := s.RefundOrder(context.Background(), o.ID); !errors.Is(err, model.ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteOrder_NoRowsAndSuccess(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(deleteOrderSQL)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := s.DeleteOrder(context.Background(), id); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta(deleteOrderSQL)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := s.DeleteOrder(context.Background(), id); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetOrderAndListOrders(t *testing.T) {
	s, mock := newMockStore(t)
	o := sampleOrder(model.OrderStatusPending)

	mock.ExpectQuery(regexp.QuoteMeta(selectOrderSQL)).
		WithArgs(o.ID).
		WillReturnRows(orderRows(o))
	got, err := s.GetOrder(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if got.ProductID != o.ProductID || got.BuyerEmail != o.BuyerEmail || !got.UnitPrice.Equal(o.UnitPrice) {
		t.Fatalf("unexpected order: %+v", got)
	}

	mock.ExpectQuery(regexp.QuoteMeta(listOrdersSQL)).
		WithArgs("buyer@example.com", "").
		WillReturnRows(orderRows(o))
	list, err := s.ListOrders(context.Background(), model.OrderFilter{BuyerEmail: "buyer@example.com"})
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != o.ID {
		t.Fatalf("unexpected list: %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateProduct_CurrentStockStartsAtStock(t *testing.T) {
	s, mock := newMockStore(t)
	createdAt := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(insertProductSQL)).
		WithArgs(sqlmock.AnyArg(), "ball", "", decimal.RequireFromString("9.99"), 12, 12).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	p, err := s.CreateProduct(context.Background(), model.Product{
		Name: "ball", Price: decimal.RequireFromString("9.99"), Stock: 12, CurrentStock: 3,
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if p.ID == uuid.Nil || p.CurrentStock != 12 || !p.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected product: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func productRow(p model.Product) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "description", "price", "stock", "current_stock", "created_at"}).
		AddRow(p.ID.String(), p.Name, p.Description, p.Price.String(), p.Stock, p.CurrentStock, p.CreatedAt)
}

func TestUpdateProduct_PartialSingleStatement(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()
	price := decimal.RequireFromString("12.00")
	u := model.ProductUpdate{Price: &price}

	// omitted fields go down as NULL and keep the stored values
	mock.ExpectQuery(regexp.QuoteMeta(updateProductSQL)).
		WithArgs(id, nil, nil, price, nil, nil).
		WillReturnRows(productRow(model.Product{
			ID: id, Name: "ball", Price: price, Stock: 5, CurrentStock: 0, CreatedAt: time.Now(),
		}))

	p, err := s.UpdateProduct(context.Background(), id, u)
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if p.CurrentStock != 0 || p.Name != "ball" || !p.Price.Equal(price) {
		t.Fatalf("unexpected product: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateProduct_InvariantAndCheckViolation(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()
	stock, current := 3, 4

	// current_stock > stock -> rejected before any DB call
	if _, err := s.UpdateProduct(context.Background(), id, model.ProductUpdate{Stock: &stock, CurrentStock: &current}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// only current_stock given; the row's stock is smaller
	mock.ExpectQuery(regexp.QuoteMeta(updateProductSQL)).
		WithArgs(id, nil, nil, nil, nil, current).
		WillReturnError(&pq.Error{Code: pqCheckViolation, Constraint: "products_current_stock_check"})
	if _, err := s.UpdateProduct(context.Background(), id, model.ProductUpdate{CurrentStock: &current}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected check violation mapped to validation error, got %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(updateProductSQL)).
		WithArgs(id, nil, nil, nil, stock, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price", "stock", "current_stock", "created_at"}))
	if _, err := s.UpdateProduct(context.Background(), id, model.ProductUpdate{Stock: &stock}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteProduct_GuardedByPendingOrders(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()
	lockRow := func() *sqlmock.Rows { return sqlmock.NewRows([]string{"id"}).AddRow(id.String()) }

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockProductSQL)).WithArgs(id).WillReturnRows(lockRow())
	mock.ExpectQuery(regexp.QuoteMeta(pendingOrdersSQL)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()
	if err := s.DeleteProduct(context.Background(), id); !errors.Is(err, model.ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockProductSQL)).WithArgs(id).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()
	if err := s.DeleteProduct(context.Background(), id); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockProductSQL)).WithArgs(id).WillReturnRows(lockRow())
	mock.ExpectQuery(regexp.QuoteMeta(pendingOrdersSQL)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(deleteProductSQL)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	if err := s.DeleteProduct(context.Background(), id); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListProducts(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "description", "price", "stock", "current_stock", "created_at"}).
		AddRow(id.String(), "p1", "d1", "99.50", 10, 4, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(listProductsSQL)).WillReturnRows(rows)

	out, err := s.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(out) != 1 || out[0].ID != id || out[0].CurrentStock != 4 || !out[0].Price.Equal(decimal.RequireFromString("99.5")) {
		t.Fatalf("unexpected products: %+v", out)
	}
}
