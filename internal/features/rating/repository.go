// Package rating — repository.go читает рейтинг из PostgreSQL.
// Это источник истины: Redis-кэш строится из этих запросов.
package rating

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"serotonyl.ru/farm-bot/internal/common"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, common.ErrStoreUnavailable, err)
}

// TopByMoney возвращает limit самых богатых игроков (забаненные не участвуют).
func (r *Repository) TopByMoney(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, username, first_name, money
		FROM players
		WHERE NOT is_banned
		ORDER BY money DESC, user_id
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, storeErr("чтение топа", err)
	}
	defer rows.Close()

	var top []Entry
	rank := 1
	for rows.Next() {
		var e Entry
		var username, firstName string
		if err := rows.Scan(&e.UserID, &username, &firstName, &e.Money); err != nil {
			return nil, storeErr("чтение строки топа", err)
		}
		e.Rank = rank
		e.Name = displayName(username, firstName)
		top = append(top, e)
		rank++
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("обход топа", err)
	}
	return top, nil
}

// RankOf возвращает позицию игрока и его баланс.
// Позиция = число игроков с бóльшим балансом + 1.
func (r *Repository) RankOf(ctx context.Context, userID int64) (*Entry, error) {
	var e Entry
	var username, firstName string
	err := r.pool.QueryRow(ctx, `
		SELECT p.user_id, p.username, p.first_name, p.money,
		       (SELECT COUNT(*) + 1 FROM players o WHERE NOT o.is_banned AND o.money > p.money)
		FROM players p
		WHERE p.user_id = $1`,
		userID,
	).Scan(&e.UserID, &username, &firstName, &e.Money, &e.Rank)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrTargetNotFound
	}
	if err != nil {
		return nil, storeErr("чтение позиции игрока", err)
	}
	e.Name = displayName(username, firstName)
	return &e, nil
}

// NamesByIDs возвращает отображаемые имена для набора игроков.
// Используется при сборке топа из Redis, где хранятся только id и балансы.
func (r *Repository) NamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, username, first_name FROM players WHERE user_id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, storeErr("чтение имён", err)
	}
	defer rows.Close()

	names := make(map[int64]string, len(ids))
	for rows.Next() {
		var id int64
		var username, firstName string
		if err := rows.Scan(&id, &username, &firstName); err != nil {
			return nil, storeErr("чтение имени", err)
		}
		names[id] = displayName(username, firstName)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("обход имён", err)
	}
	return names, nil
}

// AllBalances возвращает балансы всех незабаненных игроков.
// Используется планировщиком для полной пересборки Redis-кэша.
func (r *Repository) AllBalances(ctx context.Context) (map[int64]decimal.Decimal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, money FROM players WHERE NOT is_banned`,
	)
	if err != nil {
		return nil, storeErr("чтение балансов", err)
	}
	defer rows.Close()

	balances := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var id int64
		var money decimal.Decimal
		if err := rows.Scan(&id, &money); err != nil {
			return nil, storeErr("чтение баланса", err)
		}
		balances[id] = money
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("обход балансов", err)
	}
	return balances, nil
}

func displayName(username, firstName string) string {
	if username != "" {
		return "@" + username
	}
	return firstName
}
