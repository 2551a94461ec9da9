package validation

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// MarketPrices is a fixed table of reference prices per trading pair.
// It is built once and never mutated afterwards.
type MarketPrices struct {
	pairs  []string
	prices map[string]decimal.Decimal
}

type PairPrice struct {
	Pair  string
	Price decimal.Decimal
}

// NewMarketPrices keeps the order of entries for error messages.
// A repeated pair keeps its first position and its last price.
func NewMarketPrices(entries ...PairPrice) *MarketPrices {
	m := &MarketPrices{prices: make(map[string]decimal.Decimal, len(entries))}
	for _, e := range entries {
		if _, ok := m.prices[e.Pair]; !ok {
			m.pairs = append(m.pairs, e.Pair)
		}
		m.prices[e.Pair] = e.Price
	}
	return m
}

func DefaultMarketPrices() *MarketPrices {
	return NewMarketPrices(
		PairPrice{Pair: "BTCUSD", Price: decimal.RequireFromString("100150.4")},
		PairPrice{Pair: "EURUSD", Price: decimal.RequireFromString("1.035")},
		PairPrice{Pair: "ETHUSD", Price: decimal.RequireFromString("3310")},
	)
}

func (m *MarketPrices) Price(pair string) (decimal.Decimal, bool) {
	p, ok := m.prices[pair]
	return p, ok
}

func (m *MarketPrices) Pairs() []string {
	return append([]string(nil), m.pairs...)
}

// Snapshot returns a copy of the table; callers may modify it freely.
func (m *MarketPrices) Snapshot() map[string]decimal.Decimal {
	return lo.Assign(m.prices)
}
