// Package farm — repository.go реализует Store поверх PostgreSQL.
// Каждый Apply* выполняется в одной транзакции; условные UPDATE-ы
// гарантируют, что балансы не уходят в минус даже при гонке.
package farm

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

// Repository — PostgreSQL-хранилище ферм.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт репозиторий фермы.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// storeErr помечает инфраструктурную ошибку как ErrStoreUnavailable,
// сохраняя исходную причину для логов.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrStoreUnavailable, err)
}

// Farm загружает снимок фермы игрока: деньги, ресурсы, животных.
func (r *Repository) Farm(ctx context.Context, userID int64) (*Farm, error) {
	farm := &Farm{
		UserID:    userID,
		Resources: make(map[Kind]decimal.Decimal),
		Producers: make(map[string]int),
	}

	err := r.pool.QueryRow(ctx,
		`SELECT money, last_collection FROM players WHERE user_id = $1`,
		userID,
	).Scan(&farm.Money, &farm.LastCollection)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrTargetNotFound
	}
	if err != nil {
		return nil, storeErr("загрузка игрока", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT kind, amount FROM player_resources WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, storeErr("загрузка ресурсов", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var amount decimal.Decimal
		if err := rows.Scan(&kind, &amount); err != nil {
			return nil, storeErr("чтение ресурса", err)
		}
		farm.Resources[Kind(kind)] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("обход ресурсов", err)
	}

	prows, err := r.pool.Query(ctx,
		`SELECT producer_id, count FROM player_producers WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, storeErr("загрузка животных", err)
	}
	defer prows.Close()
	for prows.Next() {
		var id string
		var count int
		if err := prows.Scan(&id, &count); err != nil {
			return nil, storeErr("чтение животного", err)
		}
		farm.Producers[id] = count
	}
	if err := prows.Err(); err != nil {
		return nil, storeErr("обход животных", err)
	}

	return farm, nil
}

// ApplyCollect зачисляет собранные ресурсы и двигает отметку сбора.
func (r *Repository) ApplyCollect(ctx context.Context, userID int64, gains map[Kind]decimal.Decimal, collectedAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storeErr("открытие транзакции", err)
	}
	defer tx.Rollback(ctx)

	for kind, gain := range gains {
		_, err := tx.Exec(ctx, `
			INSERT INTO player_resources (user_id, kind, amount)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, kind)
			DO UPDATE SET amount = player_resources.amount + EXCLUDED.amount`,
			userID, string(kind), gain,
		)
		if err != nil {
			return storeErr("зачисление ресурса", err)
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE players SET last_collection = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, collectedAt,
	)
	if err != nil {
		return storeErr("обновление отметки сбора", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("фиксация сбора", err)
	}
	return nil
}

// ApplyBuy списывает деньги, добавляет животных и сбрасывает отметку сбора.
// Условный UPDATE на money — последняя линия обороны от двойной траты.
func (r *Repository) ApplyBuy(ctx context.Context, userID int64, producerID string, qty int, cost decimal.Decimal, boughtAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storeErr("открытие транзакции", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE players
		SET money = money - $2, last_collection = $3, updated_at = NOW()
		WHERE user_id = $1 AND money >= $2`,
		userID, cost, boughtAt,
	)
	if err != nil {
		return storeErr("списание денег", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrInsufficientFunds
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO player_producers (user_id, producer_id, count)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, producer_id)
		DO UPDATE SET count = player_producers.count + EXCLUDED.count`,
		userID, producerID, qty,
	)
	if err != nil {
		return storeErr("добавление животных", err)
	}

	err = logTransaction(ctx, tx, userID, 0, cost, "buy",
		fmt.Sprintf("покупка %s x%d", producerID, qty))
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("фиксация покупки", err)
	}
	return nil
}

// ApplySell списывает ресурс и зачисляет выручку.
func (r *Repository) ApplySell(ctx context.Context, userID int64, kind Kind, amount, proceeds decimal.Decimal) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storeErr("открытие транзакции", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE player_resources
		SET amount = amount - $3
		WHERE user_id = $1 AND kind = $2 AND amount >= $3`,
		userID, string(kind), amount,
	)
	if err != nil {
		return storeErr("списание ресурса", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrInsufficientResource
	}

	_, err = tx.Exec(ctx,
		`UPDATE players SET money = money + $2, updated_at = NOW() WHERE user_id = $1`,
		userID, proceeds,
	)
	if err != nil {
		return storeErr("зачисление выручки", err)
	}

	err = logTransaction(ctx, tx, 0, userID, proceeds, "sell",
		fmt.Sprintf("продажа %s x%s", kind, amount.StringFixed(2)))
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("фиксация продажи", err)
	}
	return nil
}

// logTransaction пишет запись в журнал операций внутри открытой транзакции.
// from/to = 0 означает «системный» счёт (магазин, скупка).
func logTransaction(ctx context.Context, tx pgx.Tx, fromID, toID int64, amount decimal.Decimal, txType, description string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO transactions (reference, from_user_id, to_user_id, amount, type, description)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), fromID, toID, amount, txType, description,
	)
	if err != nil {
		return storeErr("запись в журнал операций", err)
	}
	return nil
}
