// Package admin реализует панель оператора с парольной аутентификацией.
// models.go описывает сессии, попытки входа и корректируемые поля.
package admin

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdminSession — активная сессия оператора.
type AdminSession struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	SessionToken    string    `db:"session_token"`
	AuthenticatedAt time.Time `db:"authenticated_at"`
	ExpiresAt       time.Time `db:"expires_at"`
	LastActivity    time.Time `db:"last_activity"`
	IsActive        bool      `db:"is_active"`
}

// LoginAttempt — попытка входа (для защиты от brute-force).
type LoginAttempt struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	AttemptTime time.Time `db:"attempt_time"`
	Success     bool      `db:"success"`
}

// AdminState — состояние диалога с оператором (конечный автомат).
type AdminState struct {
	State     string    // Текущее состояние ("", "awaiting_password")
	ExpiresAt time.Time // Когда состояние истекает (5 минут)
}

// Возможные состояния админ-диалога
const (
	StateNone             = ""                  // Нет активного состояния
	StateAwaitingPassword = "awaiting_password" // Ждём пароль
)

// FieldKind — класс корректируемого поля.
type FieldKind int

const (
	FieldMoney    FieldKind = iota // Деньги игрока
	FieldResource                  // Баланс ресурса (Key = вид)
	FieldProducer                  // Количество животных (Key = id каталога)
)

// Field — корректируемое поле аккаунта.
type Field struct {
	Kind FieldKind
	Key  string // Вид ресурса или id животного; для денег пусто
}

// Op — операция корректировки.
type Op string

const (
	OpAdd Op = "add" // Прибавить value
	OpSub Op = "sub" // Отнять value (с клампом в ноль)
	OpSet Op = "set" // Установить точное значение
)

// AdjustResult — итог корректировки.
type AdjustResult struct {
	TargetID   int64
	TargetName string
	Field      Field
	NewValue   decimal.Decimal
}
