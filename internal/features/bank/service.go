// Package bank — service.go содержит бизнес-логику денежных операций.
// Все проверки выполняются до мутации; сами мутации атомарны на уровне
// репозитория.
package bank

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/farm-bot/internal/common"
	"serotonyl.ru/farm-bot/internal/config"
)

// Store — интерфейс хранилища денежных операций.
// Реализуется Repository (PostgreSQL) и in-memory подделкой в тестах.
type Store interface {
	Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) error
	LastBonus(ctx context.Context, userID int64) (*time.Time, error)
	GrantBonus(ctx context.Context, userID int64, amount decimal.Decimal, at time.Time) error
	MoneyOf(ctx context.Context, userID int64) (decimal.Decimal, error)
	History(ctx context.Context, userID int64, limit int) ([]Transaction, error)
	BonusDueUserIDs(ctx context.Context, cutoff time.Time) ([]int64, error)
}

// bonusCooldown — минимальный интервал между бонусами.
const bonusCooldown = 24 * time.Hour

// Service управляет переводами и бонусами.
type Service struct {
	store    Store
	locks    *common.KeyedMutex
	minXfer  decimal.Decimal
	maxXfer  decimal.Decimal
	bonusMin int
	bonusMax int
	now      func() time.Time // подменяется в тестах
	randInt  func(n int) int  // подменяется в тестах
}

// NewService создаёт сервис банка.
func NewService(store Store, cfg *config.Config, locks *common.KeyedMutex) *Service {
	return &Service{
		store:    store,
		locks:    locks,
		minXfer:  decimal.NewFromInt(cfg.TransferMinAmount),
		maxXfer:  decimal.NewFromInt(cfg.TransferMaxAmount),
		bonusMin: cfg.BonusMinAmount,
		bonusMax: cfg.BonusMaxAmount,
		now:      time.Now,
		randInt:  rand.IntN,
	}
}

// Transfer переводит amount от fromID к toID.
//
// Проверки (все до мутации): не себе, сумма положительна и в пределах
// [min, max]. Существование получателя и достаточность баланса проверяет
// репозиторий под блокировкой строк.
func (s *Service) Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) (*TransferResult, error) {
	if fromID == toID {
		return nil, common.ErrSelfTransfer
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, common.ErrInvalidAmount
	}
	if amount.LessThan(s.minXfer) {
		return nil, common.ErrInvalidAmount
	}
	if amount.GreaterThan(s.maxXfer) {
		return nil, common.ErrAmountTooLarge
	}

	s.locks.LockPair(fromID, toID)
	defer s.locks.UnlockPair(fromID, toID)

	if err := s.store.Transfer(ctx, fromID, toID, amount); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"from":   fromID,
		"to":     toID,
		"amount": amount.StringFixed(2),
	}).Info("Перевод выполнен")

	balance, err := s.store.MoneyOf(ctx, fromID)
	if err != nil {
		// Перевод уже прошёл — баланс лишь для сообщения
		log.WithError(err).Warn("Не удалось прочитать баланс после перевода")
		balance = decimal.Zero
	}
	return &TransferResult{Amount: amount, SenderBalance: balance, RecipientID: toID}, nil
}

// ClaimDailyBonus выдаёт ежедневный бонус: случайную сумму из настроенного
// диапазона, не чаще раза в 24 часа. Первый запрос (last_bonus == NULL)
// проходит сразу. «Ещё рано» — штатный исход, не ошибка.
func (s *Service) ClaimDailyBonus(ctx context.Context, userID int64) (*BonusResult, error) {
	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	last, err := s.store.LastBonus(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if last != nil && now.Sub(*last) < bonusCooldown {
		return &BonusResult{
			Granted:        false,
			NextEligibleAt: last.Add(bonusCooldown),
		}, nil
	}

	amount := decimal.NewFromInt(int64(s.bonusMin + s.randInt(s.bonusMax-s.bonusMin+1)))
	if err := s.store.GrantBonus(ctx, userID, amount, now); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount.StringFixed(2),
	}).Info("Ежедневный бонус выдан")

	balance, err := s.store.MoneyOf(ctx, userID)
	if err != nil {
		log.WithError(err).Warn("Не удалось прочитать баланс после бонуса")
		balance = decimal.Zero
	}
	return &BonusResult{
		Granted:        true,
		Amount:         amount,
		Balance:        balance,
		NextEligibleAt: now.Add(bonusCooldown),
	}, nil
}

// Balance возвращает текущий денежный баланс игрока.
func (s *Service) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.store.MoneyOf(ctx, userID)
}

// History возвращает последние limit операций игрока.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]Transaction, error) {
	return s.store.History(ctx, userID, limit)
}

// BonusDueUserIDs возвращает игроков, которым бонус снова доступен
// (прошло больше 24 часов с последнего). Используется планировщиком
// напоминаний.
func (s *Service) BonusDueUserIDs(ctx context.Context) ([]int64, error) {
	cutoff := s.now().Add(-bonusCooldown)
	return s.store.BonusDueUserIDs(ctx, cutoff)
}
