// Package rating ведёт таблицу лидеров по деньгам.
// Горячий путь — отсортированное множество в Redis; PostgreSQL остаётся
// источником истины и запасным путём, если Redis недоступен.
package rating

import "github.com/shopspring/decimal"

// Entry — строка таблицы лидеров.
type Entry struct {
	Rank   int
	UserID int64
	Name   string // Отображаемое имя (@username или имя)
	Money  decimal.Decimal
}

// Board — таблица лидеров плюс позиция запросившего игрока.
// Requester заполняется, даже если игрок не попал в топ.
type Board struct {
	Top       []Entry
	Requester *Entry // nil, если игрок не зарегистрирован
}
