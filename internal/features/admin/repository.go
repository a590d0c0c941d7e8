// Package admin — repository.go работает с таблицами admin_sessions
// и admin_login_attempts, а также выполняет корректировки счетов.
package admin

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

// Repository работает с админ-таблицами и корректировками.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateSession создаёт новую сессию оператора.
func (r *Repository) CreateSession(ctx context.Context, session *AdminSession) error {
	query := `
		INSERT INTO admin_sessions (user_id, session_token, expires_at, is_active)
		VALUES ($1, $2, $3, TRUE)
	`
	_, err := r.db.Exec(ctx, query, session.UserID, session.SessionToken, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("ошибка создания сессии: %w", err)
	}
	return nil
}

// GetActiveSession возвращает активную сессию пользователя.
func (r *Repository) GetActiveSession(ctx context.Context, userID int64) (*AdminSession, error) {
	query := `
		SELECT id, user_id, session_token, authenticated_at, expires_at, last_activity, is_active
		FROM admin_sessions
		WHERE user_id = $1 AND is_active = TRUE AND expires_at > NOW()
		ORDER BY authenticated_at DESC
		LIMIT 1
	`
	var s AdminSession
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.SessionToken, &s.AuthenticatedAt,
		&s.ExpiresAt, &s.LastActivity, &s.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("активная сессия не найдена: %w", err)
	}
	return &s, nil
}

// DeactivateSession деактивирует сессию (выход из панели).
func (r *Repository) DeactivateSession(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE admin_sessions SET is_active = FALSE WHERE user_id = $1`, userID)
	return err
}

// UpdateActivity обновляет время последней активности.
func (r *Repository) UpdateActivity(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE admin_sessions SET last_activity = NOW() WHERE user_id = $1 AND is_active = TRUE`,
		userID)
	return err
}

// LogAttempt записывает попытку входа.
func (r *Repository) LogAttempt(ctx context.Context, userID int64, success bool) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO admin_login_attempts (user_id, success) VALUES ($1, $2)`,
		userID, success)
	return err
}

// GetRecentAttempts возвращает количество неудачных попыток за период.
func (r *Repository) GetRecentAttempts(ctx context.Context, userID int64, period time.Duration) (int, error) {
	since := time.Now().Add(-period)
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM admin_login_attempts
		WHERE user_id = $1 AND success = FALSE AND attempt_time >= $2`,
		userID, since).Scan(&count)
	return count, err
}

// AdjustMoney корректирует деньги игрока и пишет операцию в журнал.
// delta-операции клампятся в ноль через GREATEST, отрицательное значение
// для установки сервис заранее приводит к нулю. Возвращает новый баланс.
func (r *Repository) AdjustMoney(ctx context.Context, targetID int64, op Op, value decimal.Decimal) (decimal.Decimal, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("открытие транзакции: %w: %w", common.ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	var query string
	switch op {
	case OpAdd:
		query = `UPDATE players SET money = money + $2, updated_at = NOW() WHERE user_id = $1 RETURNING money`
	case OpSub:
		query = `UPDATE players SET money = GREATEST(money - $2, 0), updated_at = NOW() WHERE user_id = $1 RETURNING money`
	case OpSet:
		query = `UPDATE players SET money = $2, updated_at = NOW() WHERE user_id = $1 RETURNING money`
	default:
		return decimal.Zero, common.ErrUnknownField
	}

	var newValue decimal.Decimal
	err = tx.QueryRow(ctx, query, targetID, value).Scan(&newValue)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, common.ErrTargetNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("корректировка денег: %w: %w", common.ErrStoreUnavailable, err)
	}

	// Списание пишется как from=игрок, to=система, чтобы в истории
	// оно отображалось со знаком минус (как покупка)
	txType := "admin_give"
	fromID, toID := int64(0), targetID
	if op == OpSub {
		txType = "admin_take"
		fromID, toID = targetID, 0
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (reference, from_user_id, to_user_id, amount, type, description)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), fromID, toID, value, txType, fmt.Sprintf("корректировка оператором (%s)", op),
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("запись в журнал операций: %w: %w", common.ErrStoreUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("фиксация корректировки: %w: %w", common.ErrStoreUnavailable, err)
	}
	return newValue, nil
}

// AdjustResource корректирует баланс ресурса. Возвращает новый баланс.
func (r *Repository) AdjustResource(ctx context.Context, targetID int64, kind string, op Op, value decimal.Decimal) (decimal.Decimal, error) {
	var query string
	switch op {
	case OpAdd:
		query = `UPDATE player_resources SET amount = amount + $3 WHERE user_id = $1 AND kind = $2 RETURNING amount`
	case OpSub:
		query = `UPDATE player_resources SET amount = GREATEST(amount - $3, 0) WHERE user_id = $1 AND kind = $2 RETURNING amount`
	case OpSet:
		query = `UPDATE player_resources SET amount = $3 WHERE user_id = $1 AND kind = $2 RETURNING amount`
	default:
		return decimal.Zero, common.ErrUnknownField
	}

	var newValue decimal.Decimal
	err := r.db.QueryRow(ctx, query, targetID, kind, value).Scan(&newValue)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, common.ErrTargetNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("корректировка ресурса: %w: %w", common.ErrStoreUnavailable, err)
	}
	return newValue, nil
}

// AdjustProducer корректирует количество животных. Возвращает новое количество.
// Строка создаётся при необходимости (животное могли ещё не покупать).
func (r *Repository) AdjustProducer(ctx context.Context, targetID int64, producerID string, op Op, value int) (int, error) {
	var query string
	switch op {
	case OpAdd:
		query = `
			INSERT INTO player_producers (user_id, producer_id, count)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, producer_id)
			DO UPDATE SET count = player_producers.count + EXCLUDED.count
			RETURNING count`
	case OpSub:
		query = `
			UPDATE player_producers SET count = GREATEST(count - $3, 0)
			WHERE user_id = $1 AND producer_id = $2 RETURNING count`
	case OpSet:
		query = `
			INSERT INTO player_producers (user_id, producer_id, count)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, producer_id)
			DO UPDATE SET count = EXCLUDED.count
			RETURNING count`
	default:
		return 0, common.ErrUnknownField
	}

	var newValue int
	err := r.db.QueryRow(ctx, query, targetID, producerID, value).Scan(&newValue)
	if errors.Is(err, pgx.ErrNoRows) {
		// OpSub по несуществующей строке: животных и так ноль
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("корректировка животных: %w: %w", common.ErrStoreUnavailable, err)
	}
	return newValue, nil
}
