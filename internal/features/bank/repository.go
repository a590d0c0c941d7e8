// Package bank — repository.go реализует Store поверх PostgreSQL.
// Перевод выполняется в одной транзакции с блокировкой обеих строк
// FOR UPDATE в порядке возрастания user_id (защита от дедлока).
package bank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"serotonyl.ru/farm-bot/internal/common"
)

// Repository — PostgreSQL-хранилище денежных операций.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт репозиторий банка.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrStoreUnavailable, err)
}

// Transfer атомарно переводит amount от fromID к toID.
// Обе строки блокируются FOR UPDATE в порядке возрастания id; проверка
// баланса выполняется под блокировкой, поэтому двойная трата невозможна
// даже без пер-игровых мьютексов (они здесь — лишь сериализация команд).
func (r *Repository) Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storeErr("открытие транзакции", err)
	}
	defer tx.Rollback(ctx)

	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}

	balances := make(map[int64]decimal.Decimal, 2)
	for _, id := range []int64{first, second} {
		var money decimal.Decimal
		err := tx.QueryRow(ctx,
			`SELECT money FROM players WHERE user_id = $1 FOR UPDATE`, id,
		).Scan(&money)
		if errors.Is(err, pgx.ErrNoRows) {
			if id == toID {
				return common.ErrRecipientNotFound
			}
			return common.ErrTargetNotFound
		}
		if err != nil {
			return storeErr("блокировка счёта", err)
		}
		balances[id] = money
	}

	if balances[fromID].LessThan(amount) {
		return common.ErrInsufficientFunds
	}

	_, err = tx.Exec(ctx,
		`UPDATE players SET money = money - $2, updated_at = NOW() WHERE user_id = $1`,
		fromID, amount,
	)
	if err != nil {
		return storeErr("списание у отправителя", err)
	}
	_, err = tx.Exec(ctx,
		`UPDATE players SET money = money + $2, updated_at = NOW() WHERE user_id = $1`,
		toID, amount,
	)
	if err != nil {
		return storeErr("зачисление получателю", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (reference, from_user_id, to_user_id, amount, type, description)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), fromID, toID, amount, TxTypeTransfer, "перевод между игроками",
	)
	if err != nil {
		return storeErr("запись в журнал операций", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("фиксация перевода", err)
	}
	return nil
}

// LastBonus возвращает отметку последнего бонуса (nil — ещё не брал).
func (r *Repository) LastBonus(ctx context.Context, userID int64) (*time.Time, error) {
	var last *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT last_bonus FROM players WHERE user_id = $1`, userID,
	).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrTargetNotFound
	}
	if err != nil {
		return nil, storeErr("чтение отметки бонуса", err)
	}
	return last, nil
}

// GrantBonus зачисляет бонус и двигает отметку last_bonus. Одна транзакция.
func (r *Repository) GrantBonus(ctx context.Context, userID int64, amount decimal.Decimal, at time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storeErr("открытие транзакции", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE players SET money = money + $2, last_bonus = $3, updated_at = NOW() WHERE user_id = $1`,
		userID, amount, at,
	)
	if err != nil {
		return storeErr("зачисление бонуса", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrTargetNotFound
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (reference, from_user_id, to_user_id, amount, type, description)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), SystemAccount, userID, amount, TxTypeBonus, "ежедневный бонус",
	)
	if err != nil {
		return storeErr("запись в журнал операций", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("фиксация бонуса", err)
	}
	return nil
}

// MoneyOf возвращает денежный баланс игрока.
func (r *Repository) MoneyOf(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var money decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT money FROM players WHERE user_id = $1`, userID,
	).Scan(&money)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, common.ErrTargetNotFound
	}
	if err != nil {
		return decimal.Zero, storeErr("чтение баланса", err)
	}
	return money, nil
}

// History возвращает последние операции игрока (входящие и исходящие),
// новые сверху.
func (r *Repository) History(ctx context.Context, userID int64, limit int) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, reference, from_user_id, to_user_id, amount, type, description, created_at
		FROM transactions
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, storeErr("чтение истории", err)
	}
	defer rows.Close()

	var history []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Reference, &t.FromUserID, &t.ToUserID,
			&t.Amount, &t.Type, &t.Description, &t.CreatedAt); err != nil {
			return nil, storeErr("чтение операции", err)
		}
		history = append(history, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("обход истории", err)
	}
	return history, nil
}

// BonusDueUserIDs возвращает id игроков, чей последний бонус старше cutoff
// (или не брался вовсе). Используется планировщиком напоминаний.
func (r *Repository) BonusDueUserIDs(ctx context.Context, cutoff time.Time) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id FROM players
		WHERE NOT is_banned AND (last_bonus IS NULL OR last_bonus < $1)`,
		cutoff,
	)
	if err != nil {
		return nil, storeErr("поиск кандидатов на бонус", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("чтение кандидата", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("обход кандидатов", err)
	}
	return ids, nil
}
