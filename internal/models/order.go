package models

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

type OrderType string

const (
	Limit  OrderType = "limit"
	Market OrderType = "market"
	Stop   OrderType = "stop"
)

type Status string

const (
	Open      Status = "open"
	Cancelled Status = "cancelled"
	Executed  Status = "executed"
)

var (
	Sides    = []Side{Buy, Sell}
	Types    = []OrderType{Limit, Market, Stop}
	Statuses = []Status{Open, Cancelled, Executed}
)

func (s Side) Valid() bool      { return lo.Contains(Sides, s) }
func (t OrderType) Valid() bool { return lo.Contains(Types, t) }
func (s Status) Valid() bool    { return lo.Contains(Statuses, s) }

// Order is a persisted trade order. Price is nil for market orders
// submitted without one.
type Order struct {
	ID        string           `json:"id"`
	Side      Side             `json:"side"`
	Type      OrderType        `json:"type"`
	Amount    decimal.Decimal  `json:"amount"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Status    Status           `json:"status"`
	Pair      string           `json:"pair"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	IsDeleted bool             `json:"isDeleted"`
	DeletedAt *time.Time       `json:"deletedAt,omitempty"`
}

// PartialOrder is an order before validation and storage. Every field is
// optional; an empty string or nil pointer means absent. An empty ID makes
// the store assign one.
type PartialOrder struct {
	ID     string           `json:"id,omitempty"`
	Side   Side             `json:"side,omitempty"`
	Type   OrderType        `json:"type,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Price  *decimal.Decimal `json:"price,omitempty"`
	Status Status           `json:"status,omitempty"`
	Pair   string           `json:"pair,omitempty"`
}

// Clone returns a copy that shares no pointers with o.
func (o Order) Clone() Order {
	if o.Price != nil {
		p := *o.Price
		o.Price = &p
	}
	if o.DeletedAt != nil {
		d := *o.DeletedAt
		o.DeletedAt = &d
	}
	return o
}
