package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisLib "github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	logger "github.com/sirupsen/logrus"
	"gitlab.com/digineat/trade-orders/internal/models"
)

const (
	ordersListKey    = "trade_orders"
	deleteMaxRetries = 5
)

// RedisStorage keeps orders as JSON records in a single Redis list so that
// insertion order and duplicate ids survive as they do in memory.
type RedisStorage struct {
	cli *redisLib.Client
	key string
	now func() time.Time
}

func NewRedisClient(addr string) (*redisLib.Client, error) {
	cli := redisLib.NewClient(&redisLib.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	})

	pong, err := cli.Ping(context.Background()).Result()
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	logger.WithField("addr", addr).Infoln("Redis answered", pong)
	return cli, nil
}

func NewRedisStorage(cli *redisLib.Client) *RedisStorage {
	return &RedisStorage{cli: cli, key: ordersListKey, now: time.Now}
}

func (r *RedisStorage) Create(ctx context.Context, p models.PartialOrder) (models.Order, error) {
	o := newOrder(p, r.now().UTC())

	data, err := json.Marshal(o)
	if err != nil {
		return models.Order{}, err
	}
	if err := r.cli.RPush(ctx, r.key, data).Err(); err != nil {
		return models.Order{}, fmt.Errorf("failed to push order %s: %w", o.ID, err)
	}
	return o, nil
}

func (r *RedisStorage) FindByID(ctx context.Context, id string) (*models.Order, error) {
	orders, err := r.load(ctx, r.cli)
	if err != nil {
		return nil, err
	}
	o, ok := lo.Find(orders, func(o models.Order) bool {
		return !o.IsDeleted && o.ID == id
	})
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *RedisStorage) FindAll(ctx context.Context) ([]models.Order, error) {
	orders, err := r.load(ctx, r.cli)
	if err != nil {
		return nil, err
	}
	return active(orders), nil
}

func (r *RedisStorage) Find(ctx context.Context, offset, limit int) ([]models.Order, error) {
	offset, limit = pageBounds(offset, limit)

	orders, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Slice(orders, offset, offset+limit), nil
}

// Delete rewrites the first record with the given id under WATCH, retrying
// when another client touched the list in between. It returns the rewritten
// record, or nil when no record has that id.
func (r *RedisStorage) Delete(ctx context.Context, id string) (*models.Order, error) {
	var deleted *models.Order

	txf := func(tx *redisLib.Tx) error {
		deleted = nil
		orders, err := r.load(ctx, tx)
		if err != nil {
			return err
		}
		o, idx, ok := lo.FindIndexOf(orders, func(o models.Order) bool {
			return o.ID == id
		})
		if !ok {
			return nil
		}

		now := r.now().UTC()
		o.IsDeleted = true
		o.DeletedAt = &now
		data, err := json.Marshal(o)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redisLib.Pipeliner) error {
			pipe.LSet(ctx, r.key, int64(idx), data)
			return nil
		})
		if err != nil {
			return err
		}
		deleted = &o
		return nil
	}

	for i := 0; i < deleteMaxRetries; i++ {
		err := r.cli.Watch(ctx, txf, r.key)
		if errors.Is(err, redisLib.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to delete order %s: %w", id, err)
		}
		return deleted, nil
	}
	return nil, fmt.Errorf("failed to delete order %s: too many concurrent updates", id)
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.cli.Ping(ctx).Err()
}

func (r *RedisStorage) Close() error {
	return r.cli.Close()
}

type listReader interface {
	LRange(ctx context.Context, key string, start, stop int64) *redisLib.StringSliceCmd
}

func (r *RedisStorage) load(ctx context.Context, cmd listReader) ([]models.Order, error) {
	values, err := cmd.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}

	orders := make([]models.Order, 0, len(values))
	for _, v := range values {
		var o models.Order
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, fmt.Errorf("failed to decode order record: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}
