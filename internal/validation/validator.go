package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gitlab.com/digineat/trade-orders/internal/models"
)

const (
	amountDecimals = 2
	priceDecimals  = 5
)

// Validator checks trade orders against business rules and the market price table.
type Validator struct {
	prices *MarketPrices
}

func New(prices *MarketPrices) *Validator {
	if prices == nil {
		prices = DefaultMarketPrices()
	}
	return &Validator{prices: prices}
}

// Validate runs every rule and returns all violations. An empty result means valid.
func (v *Validator) Validate(o models.PartialOrder) []string {
	var errs []string

	switch {
	case o.Side == "":
		errs = append(errs, "Side is required")
	case !o.Side.Valid():
		errs = append(errs, `Side must be either "buy" or "sell"`)
	}

	switch {
	case o.Type == "":
		errs = append(errs, "Type is required")
	case !o.Type.Valid():
		errs = append(errs, `Type must be "limit", "market", or "stop"`)
	}

	switch {
	case absent(o.Amount):
		errs = append(errs, "Amount is required")
	case !o.Amount.IsPositive():
		errs = append(errs, "Amount must be greater than 0")
	case decimalPlaces(*o.Amount) > amountDecimals:
		errs = append(errs, fmt.Sprintf("Amount must have maximum %d decimal places", amountDecimals))
	}

	marketPrice, pairKnown := v.prices.Price(o.Pair)
	switch {
	case o.Pair == "":
		errs = append(errs, "Pair is required")
	case !pairKnown:
		errs = append(errs, "Invalid trading pair. Available pairs: "+strings.Join(v.prices.Pairs(), ", "))
	}

	if o.Type != "" && o.Type != models.Market {
		switch {
		case absent(o.Price):
			errs = append(errs, "Price is required for limit and stop orders")
		case !o.Price.IsPositive():
			errs = append(errs, "Price must be greater than 0")
		case decimalPlaces(*o.Price) > priceDecimals:
			errs = append(errs, fmt.Sprintf("Price must have maximum %d decimal places", priceDecimals))
		case pairKnown:
			if msg := directionError(o.Type, o.Side, *o.Price, marketPrice); msg != "" {
				errs = append(errs, msg)
			}
		}
	} else if o.Price != nil {
		// Optional for market orders or a missing type, but checked when supplied.
		switch {
		case !o.Price.IsPositive():
			errs = append(errs, "Price must be greater than 0")
		case decimalPlaces(*o.Price) > priceDecimals:
			errs = append(errs, fmt.Sprintf("Price must have maximum %d decimal places", priceDecimals))
		}
	}

	if o.Status != "" && !o.Status.Valid() {
		errs = append(errs, `Status must be "open", "cancelled", or "executed"`)
	}

	return errs
}

// MarketPrices returns a copy of the reference price table.
func (v *Validator) MarketPrices() map[string]decimal.Decimal {
	return v.prices.Snapshot()
}

func directionError(t models.OrderType, side models.Side, price, market decimal.Decimal) string {
	switch t {
	case models.Limit:
		if side == models.Buy && price.GreaterThanOrEqual(market) {
			return fmt.Sprintf("Buy limit order price (%s) must be lower than current market price (%s)", price, market)
		}
		if side == models.Sell && price.LessThanOrEqual(market) {
			return fmt.Sprintf("Sell limit order price (%s) must be higher than current market price (%s)", price, market)
		}
	case models.Stop:
		if side == models.Buy && price.LessThanOrEqual(market) {
			return fmt.Sprintf("Buy stop order price (%s) must be higher than current market price (%s)", price, market)
		}
		if side == models.Sell && price.GreaterThanOrEqual(market) {
			return fmt.Sprintf("Sell stop order price (%s) must be lower than current market price (%s)", price, market)
		}
	}
	return ""
}

// A zero value counts as missing, same as an omitted field.
func absent(d *decimal.Decimal) bool {
	return d == nil || d.IsZero()
}

// decimalPlaces counts significant fractional digits of the canonical string,
// so trailing zeros are ignored.
func decimalPlaces(d decimal.Decimal) int {
	s := d.String()
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return len(s) - i - 1
}
