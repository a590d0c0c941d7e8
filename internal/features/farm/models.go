// Package farm — models.go описывает состояние фермы игрока
// и результаты операций экономики.
package farm

import (
	"time"

	"github.com/shopspring/decimal"
)

// Farm — снимок состояния фермы одного игрока.
// Все балансы неотрицательны; LastCollection двигается только вперёд.
type Farm struct {
	UserID         int64
	Money          decimal.Decimal          // Деньги
	Resources      map[Kind]decimal.Decimal // Балансы ресурсов по видам
	Producers      map[string]int           // Количество животных по id каталога
	LastCollection time.Time                // Отметка последнего сбора
}

// ResourceBalance возвращает баланс ресурса (0, если вида ещё нет в карте).
func (f *Farm) ResourceBalance(kind Kind) decimal.Decimal {
	return f.Resources[kind]
}

// OwnedCount возвращает количество животных данного типа.
func (f *Farm) OwnedCount(producerID string) int {
	return f.Producers[producerID]
}

// TotalAnimals возвращает суммарное число животных на ферме.
func (f *Farm) TotalAnimals() int {
	total := 0
	for _, n := range f.Producers {
		total += n
	}
	return total
}

// CollectResult — итог команды «собрать».
// Пустые Gains означают документированный no-op: время ещё не накапало
// ни одной сотой ресурса, баланс и отметка времени не изменились.
type CollectResult struct {
	Gains       map[Kind]decimal.Decimal
	CollectedAt time.Time
}

// Empty сообщает, был ли сбор холостым.
func (r *CollectResult) Empty() bool {
	return len(r.Gains) == 0
}

// BuyResult — итог покупки животных.
type BuyResult struct {
	Producer      Producer
	Quantity      int
	TotalCost     decimal.Decimal
	NewCount      int
	NextUnitPrice decimal.Decimal // Цена следующей единицы после покупки
	MoneyLeft     decimal.Decimal
}

// SellResult — итог продажи ресурса.
type SellResult struct {
	Resource   Resource
	Sold       decimal.Decimal
	Proceeds   decimal.Decimal
	NewBalance decimal.Decimal // Остаток ресурса после продажи
	Money      decimal.Decimal // Деньги после продажи
}
