package seed

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gitlab.com/digineat/trade-orders/internal/models"
)

type priceRange struct{ lo, hi float64 }

var (
	Pairs = []string{
		"BTCUSD", "ETHUSD", "EURUSD", "GBPUSD", "USDJPY",
		"AUDUSD", "USDCAD", "EURGBP", "EURJPY", "GBPJPY",
	}

	priceRanges = map[string]priceRange{
		"BTCUSD": {40000, 70000},
		"ETHUSD": {2000, 4000},
		"EURUSD": {0.95, 1.35},
		"GBPUSD": {0.95, 1.35},
		"AUDUSD": {0.95, 1.35},
		"USDJPY": {140, 160},
		"USDCAD": {1.25, 1.40},
		"EURGBP": {0.82, 0.92},
		"EURJPY": {150, 170},
		"GBPJPY": {175, 195},
	}
)

type Creator interface {
	Create(ctx context.Context, p models.PartialOrder) (models.Order, error)
}

// RandomOrder builds a demo order. It does not pass business validation on purpose.
func RandomOrder(rng *rand.Rand) models.PartialOrder {
	pair := Pairs[rng.Intn(len(Pairs))]
	r, ok := priceRanges[pair]
	if !ok {
		r = priceRange{1, 100}
	}

	amount := decimal.NewFromFloat(between(rng, 0.1, 10)).Round(2)
	price := decimal.NewFromFloat(between(rng, r.lo, r.hi)).Round(5)

	return models.PartialOrder{
		Side:   models.Sides[rng.Intn(len(models.Sides))],
		Type:   models.Types[rng.Intn(len(models.Types))],
		Status: models.Statuses[rng.Intn(len(models.Statuses))],
		Pair:   pair,
		Amount: &amount,
		Price:  &price,
	}
}

// Orders writes count random orders straight into the store.
func Orders(ctx context.Context, store Creator, count int, rng *rand.Rand) error {
	logger.Infof("Seeding %d random trade orders", count)
	for i := 0; i < count; i++ {
		p := RandomOrder(rng)
		if _, err := store.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to seed order %d: %w", i, err)
		}
	}
	logger.Infof("Successfully seeded %d trade orders", count)
	return nil
}

func between(rng *rand.Rand, lo, hi float64) float64 {
	return rng.Float64()*(hi-lo) + lo
}
