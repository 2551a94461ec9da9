package storage

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"
	"gitlab.com/digineat/trade-orders/internal/models"
)

// MemoryStorage keeps orders in insertion order. Deleted orders stay in the
// slice with IsDeleted set and are hidden from every read.
type MemoryStorage struct {
	mu     sync.RWMutex
	orders []models.Order
	now    func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{now: time.Now}
}

// Create never fails. Caller-supplied ids are stored as given, even if taken.
func (m *MemoryStorage) Create(_ context.Context, p models.PartialOrder) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o := newOrder(p, m.now())
	m.orders = append(m.orders, o)
	return o.Clone(), nil
}

func (m *MemoryStorage) FindByID(_ context.Context, id string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := lo.Find(m.orders, func(o models.Order) bool {
		return !o.IsDeleted && o.ID == id
	})
	if !ok {
		return nil, nil
	}
	o = o.Clone()
	return &o, nil
}

func (m *MemoryStorage) FindAll(_ context.Context) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return cloneAll(active(m.orders)), nil
}

func (m *MemoryStorage) Find(_ context.Context, offset, limit int) ([]models.Order, error) {
	offset, limit = pageBounds(offset, limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	return cloneAll(lo.Slice(active(m.orders), offset, offset+limit)), nil
}

// Delete flags the first record with the given id, deleted or not, and
// returns it. A nil order means no record has that id.
func (m *MemoryStorage) Delete(_ context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, idx, ok := lo.FindIndexOf(m.orders, func(o models.Order) bool {
		return o.ID == id
	})
	if !ok {
		return nil, nil
	}

	now := m.now()
	m.orders[idx].IsDeleted = true
	m.orders[idx].DeletedAt = &now
	o := m.orders[idx].Clone()
	return &o, nil
}

// Records returns every stored order, including deleted ones.
func (m *MemoryStorage) Records() []models.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return cloneAll(m.orders)
}

func (m *MemoryStorage) Ping(context.Context) error { return nil }

func (m *MemoryStorage) Close() error { return nil }

func cloneAll(orders []models.Order) []models.Order {
	return lo.Map(orders, func(o models.Order, _ int) models.Order {
		return o.Clone()
	})
}
