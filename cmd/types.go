package cmd

import (
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/digineat/trade-orders/internal/models"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// CreateOrderRequest is the body of POST /trade-orders. It carries no id:
// the store assigns one.
type CreateOrderRequest struct {
	Side   models.Side      `json:"side,omitempty" validate:"max=16"`
	Type   models.OrderType `json:"type,omitempty" validate:"max=16"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Price  *decimal.Decimal `json:"price,omitempty"`
	Status models.Status    `json:"status,omitempty" validate:"max=16"`
	Pair   string           `json:"pair,omitempty" validate:"max=16"`
}

func (r CreateOrderRequest) Partial() models.PartialOrder {
	return models.PartialOrder{
		Side:   r.Side,
		Type:   r.Type,
		Amount: r.Amount,
		Price:  r.Price,
		Status: r.Status,
		Pair:   r.Pair,
	}
}

// PageQuery is the parsed query of GET /trade-orders. Init, when set, is a raw
// offset and takes precedence over Page.
type PageQuery struct {
	Page  int  `json:"page" validate:"min=1"`
	Limit int  `json:"limit" validate:"min=1,max=100"`
	Init  *int `json:"init" validate:"omitempty,min=0"`
}

type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalCount      int  `json:"totalCount"`
	PageSize        int  `json:"pageSize"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

type OrderData struct {
	TradeOrder models.Order `json:"tradeOrder"`
}

type OrdersData struct {
	TradeOrders []models.Order `json:"tradeOrders"`
}

type MarketPricesData struct {
	MarketPrices map[string]decimal.Decimal `json:"marketPrices"`
}

type Response struct {
	Status     string      `json:"status"`
	Results    *int        `json:"results,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Data       any         `json:"data"`
}

type ErrorResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type FeedMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}
