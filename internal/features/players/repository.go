// Package players — repository.go отвечает за все операции с таблицей players.
// Каждая функция выполняет один SQL-запрос (Create — одну транзакцию)
// и возвращает результат или ошибку.
package players

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
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// resourceKinds — виды ресурсов, счёт по каждому создаётся вместе с игроком.
// Полный набор строк сразу избавляет остальной код от ленивых вставок.
var resourceKinds = []string{"eggs", "feathers", "down", "wool", "milk", "meat"}

// Create регистрирует нового игрока: строка в players со стартовым балансом
// плюс нулевой счёт по каждому виду ресурса. Всё в одной транзакции.
func (r *Repository) Create(ctx context.Context, p *Player, startingMoney decimal.Decimal) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("открытие транзакции: %w: %w", common.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO players (user_id, username, first_name, last_name, money, last_collection)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    updated_at = NOW()`,
		p.UserID, p.Username, p.FirstName, p.LastName, startingMoney,
	)
	if err != nil {
		return fmt.Errorf("ошибка создания игрока: %w: %w", common.ErrStoreUnavailable, err)
	}

	for _, kind := range resourceKinds {
		_, err = tx.Exec(ctx, `
			INSERT INTO player_resources (user_id, kind, amount)
			VALUES ($1, $2, 0)
			ON CONFLICT (user_id, kind) DO NOTHING`,
			p.UserID, kind,
		)
		if err != nil {
			return fmt.Errorf("ошибка создания счёта ресурса: %w: %w", common.ErrStoreUnavailable, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("фиксация регистрации: %w: %w", common.ErrStoreUnavailable, err)
	}
	return nil
}

// GetByUserID: если не найден — common.ErrTargetNotFound.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Player, error) {
	query := `
		SELECT user_id, username, first_name, last_name, money, last_collection,
		       last_bonus, is_banned, created_at, updated_at
		FROM players
		WHERE user_id = $1
	`
	var p Player
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Username, &p.FirstName, &p.LastName,
		&p.Money, &p.LastCollection, &p.LastBonus, &p.IsBanned,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrTargetNotFound
		}
		return nil, fmt.Errorf("ошибка чтения игрока (user_id=%d): %w: %w", userID, common.ErrStoreUnavailable, err)
	}
	return &p, nil
}

// GetByUsername ищет игрока по @username (без @), без учёта регистра.
// Если не найден — common.ErrRecipientNotFound (используется переводами).
func (r *Repository) GetByUsername(ctx context.Context, username string) (*Player, error) {
	query := `
		SELECT user_id, username, first_name, last_name, money, last_collection,
		       last_bonus, is_banned, created_at, updated_at
		FROM players
		WHERE LOWER(username) = LOWER($1)
	`
	var p Player
	err := r.db.QueryRow(ctx, query, username).Scan(
		&p.UserID, &p.Username, &p.FirstName, &p.LastName,
		&p.Money, &p.LastCollection, &p.LastBonus, &p.IsBanned,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("ошибка поиска игрока (username=%s): %w: %w", username, common.ErrStoreUnavailable, err)
	}
	return &p, nil
}

// Exists проверяет наличие игрока в базе.
func (r *Repository) Exists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM players WHERE user_id = $1)`, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки игрока: %w: %w", common.ErrStoreUnavailable, err)
	}
	return exists, nil
}

// UpdateInfo обновляет имя и username игрока.
func (r *Repository) UpdateInfo(ctx context.Context, userID int64, info UpdateInfo) error {
	_, err := r.db.Exec(ctx, `
		UPDATE players
		SET username = $2, first_name = $3, last_name = $4, updated_at = NOW()
		WHERE user_id = $1`,
		userID, info.Username, info.FirstName, info.LastName,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления профиля: %w: %w", common.ErrStoreUnavailable, err)
	}
	return nil
}

// SetBanned выставляет или снимает флаг бана.
func (r *Repository) SetBanned(ctx context.Context, userID int64, banned bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE players SET is_banned = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, banned,
	)
	if err != nil {
		return fmt.Errorf("ошибка смены флага бана: %w: %w", common.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrTargetNotFound
	}
	return nil
}
