// Package players — service.go содержит бизнес-логику управления игроками.
// Сервис координирует регистрацию, поиск и обновление профилей.
package players

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/farm-bot/internal/config"
)

// Service управляет аккаунтами игроков.
type Service struct {
	repo          *Repository
	startingMoney decimal.Decimal // Стартовый баланс нового игрока
}

// NewService создаёт новый сервис игроков.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{
		repo:          repo,
		startingMoney: decimal.NewFromFloat(cfg.EconomyStartingMoney),
	}
}

// EnsureAccount гарантирует, что у пользователя есть аккаунт.
// Новому игроку создаётся запись со стартовым балансом и нулевыми счетами
// ресурсов; у существующего обновляются имя и username, если изменились.
// Возвращает true, если аккаунт был создан этим вызовом.
func (s *Service) EnsureAccount(ctx context.Context, userID int64, username, firstName, lastName string) (bool, error) {
	existing, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		if existing.Username != username || existing.FirstName != firstName || existing.LastName != lastName {
			if err := s.repo.UpdateInfo(ctx, userID, UpdateInfo{
				Username:  username,
				FirstName: firstName,
				LastName:  lastName,
			}); err != nil {
				log.WithError(err).Warn("Не удалось обновить профиль игрока")
			}
		}
		return false, nil
	}

	player := &Player{
		UserID:    userID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.repo.Create(ctx, player, s.startingMoney); err != nil {
		return false, fmt.Errorf("ошибка регистрации игрока: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"username": username,
	}).Info("Новый игрок зарегистрирован")

	return true, nil
}

// GetByUserID возвращает игрока по его Telegram user ID.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Player, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// GetByUsername возвращает игрока по @username (без @).
func (s *Service) GetByUsername(ctx context.Context, username string) (*Player, error) {
	return s.repo.GetByUsername(ctx, username)
}

// IsBanned сообщает, забанен ли игрок. Незарегистрированный не забанен.
func (s *Service) IsBanned(ctx context.Context, userID int64) bool {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return false
	}
	return p.IsBanned
}
