// Package players управляет аккаунтами игроков: регистрацией, профилем, баном.
// models.go описывает структуры данных для работы с таблицей players.
package players

import (
	"time"

	"github.com/shopspring/decimal"
)

// Player представляет игрока в базе данных.
// Запись создаётся при первом обращении к боту вместе с полным набором
// счетов ресурсов (по одной строке на каждый вид).
type Player struct {
	UserID         int64           `db:"user_id"`         // Telegram user ID (первичный ключ)
	Username       string          `db:"username"`        // @username (может быть пустым)
	FirstName      string          `db:"first_name"`      // Имя пользователя
	LastName       string          `db:"last_name"`       // Фамилия (может быть пустой)
	Money          decimal.Decimal `db:"money"`           // Баланс денег
	LastCollection time.Time       `db:"last_collection"` // Отметка последнего сбора
	LastBonus      *time.Time      `db:"last_bonus"`      // Последний ежедневный бонус (nil — ещё не брал)
	IsBanned       bool            `db:"is_banned"`       // Флаг бана
	CreatedAt      time.Time       `db:"created_at"`      // Когда запись создана
	UpdatedAt      time.Time       `db:"updated_at"`      // Последнее обновление записи
}

// UpdateInfo содержит данные для обновления профиля.
// Используется, когда имя или username игрока могли измениться.
type UpdateInfo struct {
	Username  string
	FirstName string
	LastName  string
}

// DisplayName возвращает отображаемое имя игрока.
// Если есть @username — возвращает его, иначе — имя + фамилию.
func (p *Player) DisplayName() string {
	if p.Username != "" {
		return "@" + p.Username
	}
	name := p.FirstName
	if p.LastName != "" {
		name += " " + p.LastName
	}
	return name
}
