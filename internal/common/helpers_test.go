package common

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "150.00💰", FormatMoney(decimal.NewFromInt(150)))
	assert.Equal(t, "0.50💰", FormatMoney(decimal.RequireFromString("0.5")))
	assert.Equal(t, "1234.57💰", FormatMoney(decimal.RequireFromString("1234.567")))
}

func TestPluralizeUnits(t *testing.T) {
	cases := map[int]string{
		1: "штука", 2: "штуки", 4: "штуки", 5: "штук",
		11: "штук", 12: "штук", 21: "штука", 22: "штуки", 100: "штук",
	}
	for n, want := range cases {
		assert.Equal(t, want, PluralizeUnits(n), "n=%d", n)
	}
}

func TestPluralizeHours(t *testing.T) {
	assert.Equal(t, "час", PluralizeHours(1))
	assert.Equal(t, "часа", PluralizeHours(3))
	assert.Equal(t, "часов", PluralizeHours(11))
	assert.Equal(t, "час", PluralizeHours(21))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0 мин", FormatDuration(0))
	assert.Equal(t, "30 мин", FormatDuration(30*time.Minute))
	assert.Equal(t, "2 часа 15 мин", FormatDuration(2*time.Hour+15*time.Minute))
	assert.Equal(t, "1 час", FormatDuration(time.Hour))
}
