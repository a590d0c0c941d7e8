// Package bank отвечает за движение денег между игроками:
// переводы, ежедневный бонус и журнал операций.
// models.go описывает структуры данных для работы с таблицей transactions.
package bank

import (
	"time"

	"github.com/shopspring/decimal"
)

// Типы операций в журнале.
const (
	TxTypeBuy       = "buy"
	TxTypeSell      = "sell"
	TxTypeTransfer  = "transfer"
	TxTypeBonus     = "bonus"
	TxTypeAdminGive = "admin_give"
	TxTypeAdminTake = "admin_take"
)

// SystemAccount — псевдо-счёт магазина/системы в журнале операций.
const SystemAccount int64 = 0

// Transaction — запись журнала операций.
// Reference — внешний идентификатор (UUID) для сверки и поддержки.
type Transaction struct {
	ID          int64           `db:"id"`
	Reference   string          `db:"reference"`
	FromUserID  int64           `db:"from_user_id"` // 0 — система
	ToUserID    int64           `db:"to_user_id"`   // 0 — система
	Amount      decimal.Decimal `db:"amount"`
	Type        string          `db:"type"`
	Description string          `db:"description"`
	CreatedAt   time.Time       `db:"created_at"`
}

// TransferResult — итог перевода денег.
// RecipientID нужен вызывающему, чтобы обновить кэш рейтинга обеих сторон.
type TransferResult struct {
	Amount        decimal.Decimal
	SenderBalance decimal.Decimal // Баланс отправителя после перевода
	RecipientID   int64
}

// BonusResult — итог запроса ежедневного бонуса.
// «Ещё рано» — не ошибка, а штатный исход: Granted=false
// и NextEligibleAt подсказывает, когда приходить.
type BonusResult struct {
	Granted        bool
	Amount         decimal.Decimal
	Balance        decimal.Decimal // Баланс после зачисления
	NextEligibleAt time.Time       // Когда бонус будет доступен снова
}
