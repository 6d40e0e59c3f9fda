package repository

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderColumnNames = []string{
	"id", "owner_email", "total_amount",
	"ship_name", "ship_street", "ship_city", "ship_region", "ship_postal_code", "ship_phone",
	"payment_method", "payment_status", "fulfillment_status", "created_at", "updated_at",
}

var itemColumnNames = []string{"order_id", "product_ref", "name", "quantity", "unit_price", "image_ref"}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newOrderRepo(t *testing.T) (domain.OrderRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresOrderRepository(db, testLogger()), mock
}

func orderRow(rows *sqlmock.Rows, id, owner, payment, fulfillment string, createdAt time.Time) *sqlmock.Rows {
	return rows.AddRow(id, owner, "250.00",
		"Asha", "1 MG Road", "Pune", "MH", "411001", "9876543210",
		"ONLINE", payment, fulfillment, createdAt, createdAt)
}

func sampleOrder() *domain.Order {
	items := []domain.LineItem{
		{ProductRef: "p1", Name: "Kurta", Quantity: 2, UnitPrice: decimal.RequireFromString("100")},
		{ProductRef: "p2", Name: "Scarf", Quantity: 1, UnitPrice: decimal.RequireFromString("50"), ImageRef: "scarf.png"},
	}
	return &domain.Order{
		ID:                "order-1",
		OwnerEmail:        "asha@example.com",
		Items:             items,
		TotalAmount:       domain.ComputeTotal(items),
		ShippingAddress:   domain.ShippingAddress{Name: "Asha", Street: "1 MG Road", City: "Pune", Region: "MH", PostalCode: "411001", Phone: "9876543210"},
		PaymentMethod:     domain.PaymentOnline,
		PaymentStatus:     domain.PaymentPending,
		FulfillmentStatus: domain.FulfillmentProcessing,
	}
}

func TestOrderCreateCommitsOrderAndItems(t *testing.T) {
	repo, mock := newOrderRepo(t)
	order := sampleOrder()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs("order-1", "asha@example.com", sqlmock.AnyArg(),
			"Asha", "1 MG Road", "Pune", "MH", "411001", "9876543210",
			sqlmock.AnyArg(), sqlmock.AnyArg(), domain.FulfillmentProcessing).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO order_items"))
	prep.ExpectExec().
		WithArgs("order-1", 0, "p1", "Kurta", 2, sqlmock.AnyArg(), "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("order-1", 1, "p2", "Scarf", 1, sqlmock.AnyArg(), "scarf.png").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), order))
	assert.Equal(t, now, order.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderCreateRollsBackOnItemFailure(t *testing.T) {
	repo, mock := newOrderRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO order_items"))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnError(&pq.Error{Code: "23514", Message: "violates check constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderCreateBeginFailure(t *testing.T) {
	repo, mock := newOrderRepo(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), sampleOrder())
	assert.True(t, errors.Is(err, domain.ErrPersistence))
}

func TestOrderGetByID(t *testing.T) {
	repo, mock := newOrderRepo(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
		WithArgs("order-1").
		WillReturnRows(orderRow(sqlmock.NewRows(orderColumnNames), "order-1", "asha@example.com", "PENDING", "Processing", created))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(itemColumnNames).
			AddRow("order-1", "p1", "Kurta", 2, "100.00", "").
			AddRow("order-1", "p2", "Scarf", 1, "50.00", "scarf.png"))

	order, err := repo.GetByID(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", order.OwnerEmail)
	assert.Equal(t, domain.PaymentOnline, order.PaymentMethod)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.Equal(t, "411001", order.ShippingAddress.PostalCode)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(250)))
	require.Len(t, order.Items, 2)
	assert.Equal(t, "scarf.png", order.Items[1].ImageRef)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.NewFromInt(100)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderGetByIDNotFound(t *testing.T) {
	repo, mock := newOrderRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(orderColumnNames))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestOrderListByOwnerGroupsItems(t *testing.T) {
	repo, mock := newOrderRepo(t)
	newer := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-24 * time.Hour)

	rows := sqlmock.NewRows(orderColumnNames)
	orderRow(rows, "order-2", "asha@example.com", "PAID", "Confirmed", newer)
	orderRow(rows, "order-1", "asha@example.com", "PENDING", "Processing", older)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE owner_email = $1")).
		WithArgs("asha@example.com", 20, 0).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE order_id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows(itemColumnNames).
			AddRow("order-1", "p1", "Kurta", 2, "100.00", "").
			AddRow("order-2", "p3", "Saree", 1, "250.00", ""))

	orders, err := repo.ListByOwner(context.Background(), "asha@example.com", 20, 0)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "order-2", orders[0].ID)
	assert.Equal(t, "p3", orders[0].Items[0].ProductRef)
	assert.Equal(t, "order-1", orders[1].ID)
	assert.Equal(t, "p1", orders[1].Items[0].ProductRef)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderListAllEmpty(t *testing.T) {
	repo, mock := newOrderRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs(20, 40).
		WillReturnRows(sqlmock.NewRows(orderColumnNames))

	orders, err := repo.ListAll(context.Background(), 20, 40)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderMarkPaidSetsBothStatuses(t *testing.T) {
	repo, mock := newOrderRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE orders")).
		WithArgs("order-1", sqlmock.AnyArg(), domain.FulfillmentConfirmed).
		WillReturnRows(orderRow(sqlmock.NewRows(orderColumnNames), "order-1", "asha@example.com", "PAID", "Confirmed", now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items")).
		WillReturnRows(sqlmock.NewRows(itemColumnNames).AddRow("order-1", "p1", "Kurta", 2, "100.00", ""))

	order, err := repo.MarkPaid(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, domain.FulfillmentConfirmed, order.FulfillmentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderUpdateFulfillmentStatusNotFound(t *testing.T) {
	repo, mock := newOrderRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE orders")).
		WithArgs("missing", "Shipped").
		WillReturnRows(sqlmock.NewRows(orderColumnNames))

	_, err := repo.UpdateFulfillmentStatus(context.Background(), "missing", "Shipped")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestOrderListDriverFailure(t *testing.T) {
	repo, mock := newOrderRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).WillReturnError(errors.New("connection reset"))

	_, err := repo.ListAll(context.Background(), 20, 0)
	assert.True(t, errors.Is(err, domain.ErrPersistence))
}
