// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование денежных сумм, работа с временем.
package common

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FormatMoney форматирует денежную сумму с двумя знаками после запятой.
// Пример: FormatMoney(decimal.NewFromInt(150)) → "150.00💰"
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2) + "💰"
}

// FormatAmount форматирует количество ресурса (два знака после запятой, без значка).
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// PluralizeAnimals возвращает правильную форму слова «животное» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "животное" (1, 21, 31, ...)
//   - остальные случаи → "животных"
func PluralizeAnimals(n int) string {
	lastDigit := abs(n) % 10
	lastTwoDigits := abs(n) % 100
	if lastDigit == 1 && lastTwoDigits != 11 {
		return "животное"
	}
	return "животных"
}

// PluralizeUnits возвращает форму слова «штука»: 1 штука, 2 штуки, 5 штук.
func PluralizeUnits(n int) string {
	lastDigit := abs(n) % 10
	lastTwoDigits := abs(n) % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "штука"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "штуки"
	}
	return "штук"
}

// PluralizeHours возвращает форму слова «час»: 1 час, 2 часа, 5 часов.
func PluralizeHours(n int) string {
	lastDigit := abs(n) % 10
	lastTwoDigits := abs(n) % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "час"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "часа"
	}
	return "часов"
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04" по Москве.
// Используется для отображения дат транзакций.
func FormatDateTime(t time.Time) string {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		loc = time.FixedZone("MSK", 3*60*60)
	}
	return t.In(loc).Format("02.01.2006 15:04")
}

// FormatDuration форматирует остаток времени в виде "5 часов 12 мин".
// Округляет до минуты, чтобы не показывать голые секунды.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0 мин"
	}
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%d %s %d мин", h, PluralizeHours(h), m)
	case h > 0:
		return fmt.Sprintf("%d %s", h, PluralizeHours(h))
	default:
		return fmt.Sprintf("%d мин", m)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
