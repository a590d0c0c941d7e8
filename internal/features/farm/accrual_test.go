package farm

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccrueTenMinutesOfChickens(t *testing.T) {
	last := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := last.Add(10 * time.Minute)

	// 10 куриц × 0.1 яйца/мин × 10 мин = 10.00 яиц
	gains := Accrue(map[string]int{"chicken": 10}, last, now)
	require.Len(t, gains, 1)
	assert.True(t, gains[KindEggs].Equal(decimal.RequireFromString("10.00")), "got %s", gains[KindEggs])
}

func TestAccrueFractionalMinutes(t *testing.T) {
	last := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := last.Add(90 * time.Second)

	// 2 коровы × 1 молоко/мин × 1.5 мин = 3.00
	gains := Accrue(map[string]int{"cow": 2}, last, now)
	require.Len(t, gains, 1)
	assert.True(t, gains[KindMilk].Equal(decimal.RequireFromString("3.00")))
}

func TestAccrueMultipleKinds(t *testing.T) {
	last := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := last.Add(time.Minute)

	gains := Accrue(map[string]int{"chicken": 10, "pig": 1}, last, now)
	require.Len(t, gains, 2)
	assert.True(t, gains[KindEggs].Equal(decimal.RequireFromString("1.00")))
	assert.True(t, gains[KindMeat].Equal(decimal.RequireFromString("2.00")))
}

func TestAccrueNothingWhenNoTimePassed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Empty(t, Accrue(map[string]int{"chicken": 10}, now, now))
	// Часы назад — тоже пусто, отрицательного дохода не бывает
	assert.Empty(t, Accrue(map[string]int{"chicken": 10}, now, now.Add(-time.Hour)))
}

func TestAccrueNothingWithoutAnimals(t *testing.T) {
	last := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Empty(t, Accrue(nil, last, last.Add(time.Hour)))
	assert.Empty(t, Accrue(map[string]int{}, last, last.Add(time.Hour)))
}

func TestAccrueDropsZeroRoundedGains(t *testing.T) {
	last := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// 1 курица × 0.1/мин × 2 сек ≈ 0.0033 → округляется до 0.00 и выбрасывается
	gains := Accrue(map[string]int{"chicken": 1}, last, last.Add(2*time.Second))
	assert.Empty(t, gains)
}

func TestAccrueIgnoresUnknownProducers(t *testing.T) {
	last := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gains := Accrue(map[string]int{"dragon": 100}, last, last.Add(time.Hour))
	assert.Empty(t, gains)
}

func TestAccrueSingleTerminalRounding(t *testing.T) {
	last := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// 3 курицы × 0.1 × 0.5 мин = 0.15 — без промежуточных округлений
	gains := Accrue(map[string]int{"chicken": 3}, last, last.Add(30*time.Second))
	require.Len(t, gains, 1)
	assert.True(t, gains[KindEggs].Equal(decimal.RequireFromString("0.15")), "got %s", gains[KindEggs])
}
