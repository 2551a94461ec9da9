package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/digineat/trade-orders/internal/models"
)

var orderColumns = []string{"id", "side", "type", "amount", "price", "status", "pair", "created_at", "updated_at", "is_deleted", "deleted_at"}

const stamp = "2025-08-01T10:00:00Z"

func newMockSQLite(t *testing.T) (*SQLiteStorage, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewSQLiteStorage(db)
	s.now = func() time.Time { return time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC) }
	return s, mock
}

func TestSQLiteStorage_Migrate(t *testing.T) {
	s, mock := newMockSQLite(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS trade_orders").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStorage_Create(t *testing.T) {
	s, mock := newMockSQLite(t)

	mock.ExpectExec("INSERT INTO trade_orders").
		WithArgs("o-1", "buy", "limit", "2.5", "100000", "open", "BTCUSD", stamp, stamp).
		WillReturnResult(sqlmock.NewResult(1, 1))

	o, err := s.Create(context.Background(), partial("o-1"))
	require.NoError(t, err)

	assert.Equal(t, "o-1", o.ID)
	assert.Equal(t, models.Open, o.Status)
	assert.False(t, o.IsDeleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStorage_CreateMarketWithoutPrice(t *testing.T) {
	s, mock := newMockSQLite(t)

	p := partial("")
	p.Type = models.Market
	p.Price = nil

	mock.ExpectExec("INSERT INTO trade_orders").
		WithArgs(sqlmock.AnyArg(), "buy", "market", "2.5", nil, "open", "BTCUSD", stamp, stamp).
		WillReturnResult(sqlmock.NewResult(1, 1))

	o, err := s.Create(context.Background(), p)
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.Nil(t, o.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStorage_CreateFails(t *testing.T) {
	s, mock := newMockSQLite(t)

	mock.ExpectExec("INSERT INTO trade_orders").WillReturnError(errors.New("disk full"))

	_, err := s.Create(context.Background(), partial("o-1"))
	assert.ErrorContains(t, err, "disk full")
}

func TestSQLiteStorage_FindByID(t *testing.T) {
	s, mock := newMockSQLite(t)

	rows := sqlmock.NewRows(orderColumns).
		AddRow("o-1", "sell", "stop", "1.25", "3000.5", "open", "ETHUSD", stamp, stamp, false, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ? AND is_deleted = FALSE")).
		WithArgs("o-1").
		WillReturnRows(rows)

	o, err := s.FindByID(context.Background(), "o-1")
	require.NoError(t, err)
	require.NotNil(t, o)

	assert.Equal(t, models.Sell, o.Side)
	assert.Equal(t, models.Stop, o.Type)
	assert.True(t, o.Amount.Equal(decimal.RequireFromString("1.25")))
	require.NotNil(t, o.Price)
	assert.True(t, o.Price.Equal(decimal.RequireFromString("3000.5")))
	assert.Equal(t, time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC), o.CreatedAt)
	assert.Nil(t, o.DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStorage_FindByIDMissing(t *testing.T) {
	s, mock := newMockSQLite(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ?")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(orderColumns))

	o, err := s.FindByID(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, o)
}

func TestSQLiteStorage_FindAll(t *testing.T) {
	s, mock := newMockSQLite(t)

	rows := sqlmock.NewRows(orderColumns).
		AddRow("o-1", "buy", "market", "1", nil, "open", "BTCUSD", stamp, stamp, false, nil).
		AddRow("o-2", "sell", "limit", "2", "1.1", "executed", "EURUSD", stamp, stamp, false, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_deleted = FALSE ORDER BY seq")).WillReturnRows(rows)

	orders, err := s.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"o-1", "o-2"}, ids(orders))
	assert.Nil(t, orders[0].Price)
	assert.Equal(t, models.Executed, orders[1].Status)
}

func TestSQLiteStorage_FindAllEmpty(t *testing.T) {
	s, mock := newMockSQLite(t)

	mock.ExpectQuery("SELECT (.+) FROM trade_orders").WillReturnRows(sqlmock.NewRows(orderColumns))

	orders, err := s.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestSQLiteStorage_FindAppliesDefaults(t *testing.T) {
	s, mock := newMockSQLite(t)

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT ? OFFSET ?")).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(orderColumns))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT ? OFFSET ?")).
		WithArgs(2, 2).
		WillReturnRows(sqlmock.NewRows(orderColumns).
			AddRow("o-3", "buy", "market", "1", nil, "open", "BTCUSD", stamp, stamp, false, nil))

	_, err := s.Find(context.Background(), -1, 0)
	require.NoError(t, err)

	page, err := s.Find(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"o-3"}, ids(page))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStorage_Delete(t *testing.T) {
	s, mock := newMockSQLite(t)

	rows := sqlmock.NewRows(orderColumns).
		AddRow("o-1", "buy", "limit", "2.5", "100000", "open", "BTCUSD", stamp, stamp, true, stamp)
	mock.ExpectQuery("UPDATE trade_orders SET is_deleted = TRUE(.+)RETURNING").
		WithArgs(stamp, "o-1").
		WillReturnRows(rows)
	mock.ExpectQuery("UPDATE trade_orders SET is_deleted = TRUE(.+)RETURNING").
		WithArgs(stamp, "unknown").
		WillReturnRows(sqlmock.NewRows(orderColumns))

	deleted, err := s.Delete(context.Background(), "o-1")
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, "o-1", deleted.ID)
	assert.True(t, deleted.IsDeleted)
	require.NotNil(t, deleted.DeletedAt)
	assert.Equal(t, stamp, deleted.DeletedAt.Format(time.RFC3339))

	deleted, err = s.Delete(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStorage_DeleteFails(t *testing.T) {
	s, mock := newMockSQLite(t)

	mock.ExpectQuery("UPDATE trade_orders").WillReturnError(errors.New("database is locked"))

	_, err := s.Delete(context.Background(), "o-1")
	assert.ErrorContains(t, err, "database is locked")
}

func TestSQLiteStorage_BadRow(t *testing.T) {
	s, mock := newMockSQLite(t)

	rows := sqlmock.NewRows(orderColumns).
		AddRow("o-1", "buy", "limit", "not-a-number", nil, "open", "BTCUSD", stamp, stamp, false, nil)
	mock.ExpectQuery("SELECT (.+) FROM trade_orders").WillReturnRows(rows)

	_, err := s.FindAll(context.Background())
	assert.ErrorContains(t, err, "bad amount")
}

func TestSQLiteStorage_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()

	s := NewSQLiteStorage(db)
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
