package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"gitlab.com/digineat/trade-orders/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS trade_orders (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    id         TEXT    NOT NULL,
    side       TEXT    NOT NULL,
    type       TEXT    NOT NULL,
    amount     TEXT    NOT NULL,
    price      TEXT,
    status     TEXT    NOT NULL,
    pair       TEXT    NOT NULL,
    created_at TEXT    NOT NULL,
    updated_at TEXT    NOT NULL,
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    deleted_at TEXT
);
CREATE INDEX IF NOT EXISTS trade_orders_id ON trade_orders (id);`

const columnList = `id, side, type, amount, price, status, pair, created_at, updated_at, is_deleted, deleted_at`

const selectColumns = `SELECT ` + columnList + ` FROM trade_orders`

// SQLiteStorage keeps orders in a SQLite table. The autoincrement seq column
// preserves insertion order; id is not unique.
type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

func OpenSQLite(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewSQLiteStorage(db), nil
}

func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db, now: time.Now}
}

func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Create(ctx context.Context, p models.PartialOrder) (models.Order, error) {
	o := newOrder(p, s.now().UTC())

	var price sql.NullString
	if o.Price != nil {
		price = sql.NullString{String: o.Price.String(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO trade_orders (id, side, type, amount, price, status, pair, created_at, updated_at, is_deleted)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, FALSE)`,
		o.ID, string(o.Side), string(o.Type), o.Amount.String(), price, string(o.Status), o.Pair,
		formatTime(o.CreatedAt), formatTime(o.UpdatedAt),
	)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to insert order %s: %w", o.ID, err)
	}
	return o, nil
}

func (s *SQLiteStorage) FindByID(ctx context.Context, id string) (*models.Order, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE id = ? AND is_deleted = FALSE ORDER BY seq LIMIT 1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query order %s: %w", id, err)
	}
	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return &orders[0], nil
}

func (s *SQLiteStorage) FindAll(ctx context.Context) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE is_deleted = FALSE ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	return scanOrders(rows)
}

func (s *SQLiteStorage) Find(ctx context.Context, offset, limit int) ([]models.Order, error) {
	offset, limit = pageBounds(offset, limit)

	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE is_deleted = FALSE ORDER BY seq LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders page: %w", err)
	}
	return scanOrders(rows)
}

// Delete flags the first row with the given id, deleted or not, and returns
// the updated row. A nil order means no row has that id.
func (s *SQLiteStorage) Delete(ctx context.Context, id string) (*models.Order, error) {
	now := formatTime(s.now().UTC())
	rows, err := s.db.QueryContext(ctx, `
        UPDATE trade_orders SET is_deleted = TRUE, deleted_at = ?
        WHERE seq = (SELECT seq FROM trade_orders WHERE id = ? ORDER BY seq LIMIT 1)
        RETURNING `+columnList,
		now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to delete order %s: %w", id, err)
	}
	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return &orders[0], nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func scanOrders(rows *sql.Rows) ([]models.Order, error) {
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		var (
			o                    models.Order
			side, otype, status  string
			amount, created, upd string
			price, deleted       sql.NullString
		)
		if err := rows.Scan(&o.ID, &side, &otype, &amount, &price, &status, &o.Pair, &created, &upd, &o.IsDeleted, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		o.Side = models.Side(side)
		o.Type = models.OrderType(otype)
		o.Status = models.Status(status)

		var err error
		if o.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("order %s has bad amount %q: %w", o.ID, amount, err)
		}
		if price.Valid {
			p, err := decimal.NewFromString(price.String)
			if err != nil {
				return nil, fmt.Errorf("order %s has bad price %q: %w", o.ID, price.String, err)
			}
			o.Price = &p
		}
		if o.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if o.UpdatedAt, err = parseTime(upd); err != nil {
			return nil, err
		}
		if deleted.Valid {
			d, err := parseTime(deleted.String)
			if err != nil {
				return nil, err
			}
			o.DeletedAt = &d
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order rows: %w", err)
	}
	return orders, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return t, nil
}
