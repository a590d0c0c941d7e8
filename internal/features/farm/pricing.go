// Package farm — pricing.go содержит кривые цен и производства.
// Все функции чистые и детерминированные: на входе каталожные данные
// и текущее количество у игрока, на выходе цена или норма производства.
package farm

import "github.com/shopspring/decimal"

// Pricing вычисляет цены по экспоненциальной кривой.
// Каждая следующая единица животного дороже предыдущей:
// price(n) = basePrice × growth^n, где n — уже купленное количество.
type Pricing struct {
	growth    decimal.Decimal
	searchCap int
}

// NewPricing создаёт калькулятор цен.
// growthFactor — множитель за единицу (параметр экономики, > 1.0),
// searchCap — потолок перебора в MaxAffordable.
func NewPricing(growthFactor float64, searchCap int) Pricing {
	return Pricing{
		growth:    decimal.NewFromFloat(growthFactor),
		searchCap: searchCap,
	}
}

// UnitPrice возвращает цену (owned+1)-й единицы животного,
// округлённую до копеек. Цена строго растёт с owned.
func (p Pricing) UnitPrice(pr Producer, owned int) decimal.Decimal {
	factor := p.growth.Pow(decimal.NewFromInt(int64(owned)))
	return pr.BasePrice.Mul(factor).Round(2)
}

// BatchPrice возвращает стоимость покупки qty единиц подряд:
// каждая следующая единица в партии берётся из следующей точки кривой.
// Это НЕ qty × UnitPrice(owned) — партия всегда дороже.
func (p Pricing) BatchPrice(pr Producer, owned, qty int) decimal.Decimal {
	total := decimal.Zero
	for i := 0; i < qty; i++ {
		total = total.Add(p.UnitPrice(pr, owned+i))
	}
	return total
}

// MaxAffordable возвращает максимальное количество единиц, которое игрок
// может купить на money, жадно накапливая цены по кривой.
// Перебор ограничен searchCap, чтобы не зациклиться на огромных балансах.
func (p Pricing) MaxAffordable(pr Producer, owned int, money decimal.Decimal) int {
	total := decimal.Zero
	n := 0
	for n < p.searchCap {
		next := total.Add(p.UnitPrice(pr, owned+n))
		if next.GreaterThan(money) {
			break
		}
		total = next
		n++
	}
	return n
}

// UnitProduction возвращает производительность одной единицы животного в минуту.
//
// Политика производства — "flat": каждая единица даёт базовую норму
// независимо от того, сколько таких животных уже есть. Исторически
// существовала затухающая политика (норма делилась на 1.0035^n),
// она сознательно не реализована; выбор зафиксирован в конфигурации
// (ECONOMY_YIELD_POLICY) и здесь.
func UnitProduction(pr Producer, owned int) decimal.Decimal {
	return pr.BaseProduction
}
