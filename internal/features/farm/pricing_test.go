package farm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPricing() Pricing {
	return NewPricing(1.10, 1000)
}

func TestUnitPriceFirstUnitIsBasePrice(t *testing.T) {
	pr, ok := ProducerByID("chicken")
	require.True(t, ok)

	price := testPricing().UnitPrice(pr, 0)
	assert.True(t, price.Equal(decimal.NewFromInt(50)), "got %s", price)
}

func TestUnitPriceGrowsMonotonically(t *testing.T) {
	pr, ok := ProducerByID("cow")
	require.True(t, ok)

	p := testPricing()
	prev := p.UnitPrice(pr, 0)
	for owned := 1; owned <= 30; owned++ {
		next := p.UnitPrice(pr, owned)
		assert.True(t, next.GreaterThan(prev),
			"цена должна строго расти: owned=%d prev=%s next=%s", owned, prev, next)
		prev = next
	}
}

func TestUnitPriceExactCurvePoints(t *testing.T) {
	pr, ok := ProducerByID("chicken")
	require.True(t, ok)
	p := testPricing()

	// 50 × 1.1^1 = 55.00, 50 × 1.1^2 = 60.50
	assert.True(t, p.UnitPrice(pr, 1).Equal(decimal.RequireFromString("55.00")))
	assert.True(t, p.UnitPrice(pr, 2).Equal(decimal.RequireFromString("60.50")))
}

func TestBatchPriceIsSumOfCurvePoints(t *testing.T) {
	pr, ok := ProducerByID("chicken")
	require.True(t, ok)
	p := testPricing()

	// 50 + 55 + 60.50 = 165.50
	got := p.BatchPrice(pr, 0, 3)
	assert.True(t, got.Equal(decimal.RequireFromString("165.50")), "got %s", got)

	// Партия дороже, чем qty × цена первой единицы
	naive := p.UnitPrice(pr, 0).Mul(decimal.NewFromInt(3))
	assert.True(t, got.GreaterThan(naive))
}

func TestMaxAffordable(t *testing.T) {
	pr, ok := ProducerByID("chicken")
	require.True(t, ok)
	p := testPricing()

	// 50 хватает ровно на одну курицу
	assert.Equal(t, 1, p.MaxAffordable(pr, 0, decimal.NewFromInt(50)))
	// 49.99 не хватает ни на одну
	assert.Equal(t, 0, p.MaxAffordable(pr, 0, decimal.RequireFromString("49.99")))
	// 165.50 хватает ровно на три (50 + 55 + 60.50)
	assert.Equal(t, 3, p.MaxAffordable(pr, 0, decimal.RequireFromString("165.50")))
	// чуть меньше — только на две
	assert.Equal(t, 2, p.MaxAffordable(pr, 0, decimal.RequireFromString("165.49")))
}

func TestMaxAffordableRespectsSearchCap(t *testing.T) {
	pr, ok := ProducerByID("chicken")
	require.True(t, ok)
	p := NewPricing(1.10, 5)

	huge := decimal.NewFromInt(1_000_000_000)
	assert.Equal(t, 5, p.MaxAffordable(pr, 0, huge))
}

func TestUnitProductionIsFlat(t *testing.T) {
	pr, ok := ProducerByID("chicken")
	require.True(t, ok)

	// Норма не зависит от количества уже имеющихся животных
	assert.True(t, UnitProduction(pr, 0).Equal(UnitProduction(pr, 500)))
	assert.True(t, UnitProduction(pr, 0).Equal(decimal.RequireFromString("0.1")))
}
