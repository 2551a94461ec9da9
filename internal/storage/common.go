package storage

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gitlab.com/digineat/trade-orders/internal/models"
)

const DefaultPageLimit = 10

// newOrder materializes a partial order the way every backend stores it.
func newOrder(p models.PartialOrder, now time.Time) models.Order {
	o := models.Order{
		ID:        p.ID,
		Side:      p.Side,
		Type:      p.Type,
		Price:     p.Price,
		Status:    p.Status,
		Pair:      p.Pair,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.Amount != nil {
		o.Amount = *p.Amount
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = models.Open
	}
	return o.Clone()
}

func pageBounds(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	// offset+limit must not wrap around.
	if limit > math.MaxInt-offset {
		limit = math.MaxInt - offset
	}
	return offset, limit
}

func active(orders []models.Order) []models.Order {
	return lo.Filter(orders, func(o models.Order, _ int) bool {
		return !o.IsDeleted
	})
}
