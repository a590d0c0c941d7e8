// Package farm — service.go содержит бизнес-логику операций фермы.
// Каждая операция: проверить → посчитать → записать; частичных мутаций нет.
//
// Команды одного игрока сериализуются через общий KeyedMutex: все операции —
// это «прочитал-посчитал-записал» без версионирования, и без пер-игровой
// блокировки две параллельные покупки могли бы потратить одни и те же деньги.
package farm

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/farm-bot/internal/common"
	"serotonyl.ru/farm-bot/internal/config"
)

// Store — узкий интерфейс хранилища ферм. Реализуется Repository (PostgreSQL)
// и in-memory подделкой в тестах. Каждый Apply* атомарен: либо вся операция
// записана, либо ничего.
type Store interface {
	// Farm загружает снимок фермы игрока.
	Farm(ctx context.Context, userID int64) (*Farm, error)
	// ApplyCollect зачисляет прирост и двигает отметку сбора вперёд.
	ApplyCollect(ctx context.Context, userID int64, gains map[Kind]decimal.Decimal, collectedAt time.Time) error
	// ApplyBuy списывает деньги, увеличивает счётчик животных
	// и сбрасывает отметку сбора на момент покупки.
	ApplyBuy(ctx context.Context, userID int64, producerID string, qty int, cost decimal.Decimal, boughtAt time.Time) error
	// ApplySell списывает ресурс и зачисляет выручку.
	ApplySell(ctx context.Context, userID int64, kind Kind, amount, proceeds decimal.Decimal) error
}

// Service управляет экономикой фермы.
type Service struct {
	store   Store
	pricing Pricing
	locks   *common.KeyedMutex
	now     func() time.Time // подменяется в тестах
}

// NewService создаёт сервис фермы.
// locks — общий набор пер-игровых мьютексов приложения: ферма, банк и админка
// должны сериализоваться между собой, а не каждый сам по себе.
func NewService(store Store, cfg *config.Config, locks *common.KeyedMutex) *Service {
	return &Service{
		store:   store,
		pricing: NewPricing(cfg.EconomyGrowthFactor, cfg.EconomyBuySearchCap),
		locks:   locks,
		now:     time.Now,
	}
}

// Pricing возвращает калькулятор цен (для клавиатур покупки в обработчиках).
func (s *Service) Pricing() Pricing {
	return s.pricing
}

// FarmOf возвращает снимок фермы игрока (только чтение).
func (s *Service) FarmOf(ctx context.Context, userID int64) (*Farm, error) {
	return s.store.Farm(ctx, userID)
}

// Collect собирает накопленные ресурсы.
//
// Прирост считается лениво из прошедшего времени (см. Accrue). Если прирост
// нулевой — это no-op: ни балансы, ни отметка времени не меняются, чтобы
// холостые сборы не сдвигали окно начисления. Время берётся только из часов
// движка, никогда от клиента.
func (s *Service) Collect(ctx context.Context, userID int64) (*CollectResult, error) {
	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	farm, err := s.store.Farm(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	gains := Accrue(farm.Producers, farm.LastCollection, now)
	if len(gains) == 0 {
		return &CollectResult{}, nil
	}

	if err := s.store.ApplyCollect(ctx, userID, gains, now); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"kinds":   len(gains),
	}).Info("Сбор ресурсов выполнен")

	return &CollectResult{Gains: gains, CollectedAt: now}, nil
}

// Buy покупает qty животных по экспоненциальной кривой цен.
//
// Покупка сбрасывает отметку сбора на момент покупки: новые животные
// не должны приносить доход за время до своего появления. Побочный эффект —
// несобранный доход старых животных при покупке сгорает, поэтому
// обработчик напоминает сначала собрать.
func (s *Service) Buy(ctx context.Context, userID int64, producerID string, qty int) (*BuyResult, error) {
	pr, ok := ProducerByID(producerID)
	if !ok {
		return nil, common.ErrUnknownProducer
	}
	if qty < 1 {
		return nil, common.ErrInvalidAmount
	}
	// Количество приходит из callback-данных, им нельзя доверять.
	// Потолок тот же, что у перебора МАКС: выше него расчёт партии
	// только жжёт процессор, купить столько всё равно невозможно.
	if qty > s.pricing.searchCap {
		return nil, common.ErrAmountTooLarge
	}

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	farm, err := s.store.Farm(ctx, userID)
	if err != nil {
		return nil, err
	}

	owned := farm.OwnedCount(producerID)
	cost := s.pricing.BatchPrice(pr, owned, qty)
	if farm.Money.LessThan(cost) {
		return nil, common.ErrInsufficientFunds
	}

	now := s.now()
	if err := s.store.ApplyBuy(ctx, userID, producerID, qty, cost, now); err != nil {
		return nil, err
	}

	newCount := owned + qty
	log.WithFields(log.Fields{
		"user_id":  userID,
		"producer": producerID,
		"qty":      qty,
		"cost":     cost.StringFixed(2),
	}).Info("Покупка выполнена")

	return &BuyResult{
		Producer:      pr,
		Quantity:      qty,
		TotalCost:     cost,
		NewCount:      newCount,
		NextUnitPrice: s.pricing.UnitPrice(pr, newCount),
		MoneyLeft:     farm.Money.Sub(cost),
	}, nil
}

// Sell продаёт ресурс по фиксированной цене каталога.
// all=true означает «продать весь остаток»; иначе amount — запрошенное
// количество. Продажа, уводящая баланс в минус, отклоняется до мутации.
func (s *Service) Sell(ctx context.Context, userID int64, kind Kind, amount decimal.Decimal, all bool) (*SellResult, error) {
	res, ok := ResourceByKind(kind)
	if !ok {
		return nil, common.ErrUnknownResource
	}

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	farm, err := s.store.Farm(ctx, userID)
	if err != nil {
		return nil, err
	}

	balance := farm.ResourceBalance(kind)
	if all {
		amount = balance
	}
	if balance.IsZero() {
		return nil, common.ErrInsufficientResource
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, common.ErrInvalidAmount
	}
	if amount.GreaterThan(balance) {
		return nil, common.ErrInsufficientResource
	}

	proceeds := amount.Mul(res.Price).Round(2)
	if err := s.store.ApplySell(ctx, userID, kind, amount, proceeds); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"kind":     kind,
		"amount":   amount.StringFixed(2),
		"proceeds": proceeds.StringFixed(2),
	}).Info("Продажа выполнена")

	return &SellResult{
		Resource:   res,
		Sold:       amount,
		Proceeds:   proceeds,
		NewBalance: balance.Sub(amount),
		Money:      farm.Money.Add(proceeds),
	}, nil
}
