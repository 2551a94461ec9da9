package seed

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/digineat/trade-orders/internal/models"
	"gitlab.com/digineat/trade-orders/internal/storage"
)

type failingCreator struct{}

func (failingCreator) Create(context.Context, models.PartialOrder) (models.Order, error) {
	return models.Order{}, errors.New("closed")
}

func TestRandomOrder_Shape(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		o := RandomOrder(rng)

		require.True(t, o.Side.Valid())
		require.True(t, o.Type.Valid())
		require.True(t, o.Status.Valid())
		require.Contains(t, Pairs, o.Pair)
		require.True(t, o.Amount.IsPositive())
		require.LessOrEqual(t, -o.Amount.Exponent(), int32(2))
		require.True(t, o.Price.IsPositive())
		require.LessOrEqual(t, -o.Price.Exponent(), int32(5))

		r := priceRanges[o.Pair]
		p := o.Price.InexactFloat64()
		require.GreaterOrEqual(t, p, r.lo-0.00001)
		require.LessOrEqual(t, p, r.hi+0.00001)
	}
}

func TestOrders_WritesCount(t *testing.T) {
	store := storage.NewMemoryStorage()

	require.NoError(t, Orders(context.Background(), store, 8, rand.New(rand.NewSource(1))))

	all, err := store.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 8)
}

func TestOrders_StopsOnError(t *testing.T) {
	err := Orders(context.Background(), failingCreator{}, 3, rand.New(rand.NewSource(1)))
	assert.ErrorContains(t, err, "failed to seed order 0")
}
