// Package farm — accrual.go вычисляет накопленный доход фермы.
// Начисление ленивое: ничего не тикает в фоне, доход считается
// в момент команды «собрать» из прошедшего времени.
package farm

import (
	"time"

	"github.com/shopspring/decimal"
)

var minuteDivisor = decimal.NewFromInt(60)

// Accrue возвращает прирост ресурсов по видам за время с last до now.
//
// Время считается с точностью до секунды и переводится в дробные минуты:
// нормы производства заданы в минутах, а целочисленные минуты (как в ранних
// версиях) теряли доход при частом сборе.
//
// Пустая карта означает no-op: собирать нечего, баланс и отметку времени
// трогать нельзя (иначе частые пустые сборы «съедали» бы время).
func Accrue(producers map[string]int, last, now time.Time) map[Kind]decimal.Decimal {
	if !now.After(last) {
		return nil
	}

	seconds := decimal.NewFromInt(int64(now.Sub(last) / time.Second))
	minutes := seconds.Div(minuteDivisor)

	gains := make(map[Kind]decimal.Decimal)
	for id, count := range producers {
		if count <= 0 {
			continue
		}
		pr, ok := ProducerByID(id)
		if !ok {
			// Животное убрано из каталога — его остатки дохода не приносят
			continue
		}
		gain := UnitProduction(pr, count).
			Mul(decimal.NewFromInt(int64(count))).
			Mul(minutes)
		gains[pr.Kind] = gains[pr.Kind].Add(gain)
	}

	// Округляем каждый вид до копеек единожды, в самом конце:
	// одно округление на сбор не накапливает ошибку.
	for k, v := range gains {
		v = v.Round(2)
		if v.IsZero() {
			delete(gains, k)
			continue
		}
		gains[k] = v
	}
	return gains
}
