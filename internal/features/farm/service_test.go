package farm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/farm-bot/internal/common"
	"serotonyl.ru/farm-bot/internal/config"
)

// memStore — in-memory реализация Store для тестов сервиса.
type memStore struct {
	mu    sync.Mutex
	farms map[int64]*Farm
}

func newMemStore() *memStore {
	return &memStore{farms: make(map[int64]*Farm)}
}

func (m *memStore) put(f *Farm) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.farms[f.UserID] = f
}

func (m *memStore) Farm(ctx context.Context, userID int64) (*Farm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.farms[userID]
	if !ok {
		return nil, common.ErrTargetNotFound
	}
	// Копия, как из базы: сервис не должен мутировать хранилище напрямую
	cp := &Farm{
		UserID:         f.UserID,
		Money:          f.Money,
		Resources:      make(map[Kind]decimal.Decimal, len(f.Resources)),
		Producers:      make(map[string]int, len(f.Producers)),
		LastCollection: f.LastCollection,
	}
	for k, v := range f.Resources {
		cp.Resources[k] = v
	}
	for k, v := range f.Producers {
		cp.Producers[k] = v
	}
	return cp, nil
}

func (m *memStore) ApplyCollect(ctx context.Context, userID int64, gains map[Kind]decimal.Decimal, collectedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.farms[userID]
	for k, g := range gains {
		f.Resources[k] = f.Resources[k].Add(g)
	}
	f.LastCollection = collectedAt
	return nil
}

func (m *memStore) ApplyBuy(ctx context.Context, userID int64, producerID string, qty int, cost decimal.Decimal, boughtAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.farms[userID]
	if f.Money.LessThan(cost) {
		return common.ErrInsufficientFunds
	}
	f.Money = f.Money.Sub(cost)
	f.Producers[producerID] += qty
	f.LastCollection = boughtAt
	return nil
}

func (m *memStore) ApplySell(ctx context.Context, userID int64, kind Kind, amount, proceeds decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.farms[userID]
	if f.Resources[kind].LessThan(amount) {
		return common.ErrInsufficientResource
	}
	f.Resources[kind] = f.Resources[kind].Sub(amount)
	f.Money = f.Money.Add(proceeds)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		EconomyGrowthFactor: 1.10,
		EconomyBuySearchCap: 1000,
	}
}

func newTestService(store Store) *Service {
	return NewService(store, testConfig(), common.NewKeyedMutex())
}

func seedFarm(store *memStore, userID int64, money string) *Farm {
	f := &Farm{
		UserID:         userID,
		Money:          decimal.RequireFromString(money),
		Resources:      make(map[Kind]decimal.Decimal),
		Producers:      make(map[string]int),
		LastCollection: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	store.put(f)
	return f
}

func TestBuySpendsExactly(t *testing.T) {
	store := newMemStore()
	seedFarm(store, 1, "50.00")
	svc := newTestService(store)

	result, err := svc.Buy(context.Background(), 1, "chicken", 1)
	require.NoError(t, err)
	assert.True(t, result.MoneyLeft.IsZero(), "после покупки за весь баланс денег ноль, got %s", result.MoneyLeft)
	assert.Equal(t, 1, result.NewCount)
	assert.True(t, result.TotalCost.Equal(decimal.NewFromInt(50)))
	assert.True(t, result.NextUnitPrice.Equal(decimal.RequireFromString("55.00")))

	f, err := store.Farm(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, f.Money.IsZero())
	assert.Equal(t, 1, f.Producers["chicken"])
}

func TestBuyInsufficientFundsNoMutation(t *testing.T) {
	store := newMemStore()
	seedFarm(store, 1, "49.99")
	svc := newTestService(store)

	_, err := svc.Buy(context.Background(), 1, "chicken", 1)
	assert.ErrorIs(t, err, common.ErrInsufficientFunds)

	f, _ := store.Farm(context.Background(), 1)
	assert.True(t, f.Money.Equal(decimal.RequireFromString("49.99")))
	assert.Empty(t, f.Producers)
}

func TestBuyUnknownProducer(t *testing.T) {
	store := newMemStore()
	seedFarm(store, 1, "1000.00")
	svc := newTestService(store)

	_, err := svc.Buy(context.Background(), 1, "dragon", 1)
	assert.ErrorIs(t, err, common.ErrUnknownProducer)
}

func TestBuyQuantityAboveCapRejected(t *testing.T) {
	store := newMemStore()
	seedFarm(store, 1, "1000.00")
	svc := newTestService(store)

	// В callback можно подставить любое число — огромная партия
	// отклоняется до расчёта цены по кривой
	_, err := svc.Buy(context.Background(), 1, "chicken", 10_000_000)
	assert.ErrorIs(t, err, common.ErrAmountTooLarge)

	_, err = svc.Buy(context.Background(), 1, "chicken", testConfig().EconomyBuySearchCap+1)
	assert.ErrorIs(t, err, common.ErrAmountTooLarge)

	f, _ := store.Farm(context.Background(), 1)
	assert.True(t, f.Money.Equal(decimal.RequireFromString("1000.00")))
	assert.Empty(t, f.Producers)
}

func TestBuyResetsCollectionTimer(t *testing.T) {
	store := newMemStore()
	f := seedFarm(store, 1, "1000.00")
	f.Producers["chicken"] = 10
	svc := newTestService(store)

	start := f.LastCollection
	svc.now = func() time.Time { return start.Add(10 * time.Minute) }

	// Покупка сбрасывает таймер: несобранный доход за 10 минут сгорает
	_, err := svc.Buy(context.Background(), 1, "duck", 1)
	require.NoError(t, err)

	result, err := svc.Collect(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, result.Empty(), "после сброса таймера собирать нечего")
}

func TestCollectAccruesAndAdvancesTimer(t *testing.T) {
	store := newMemStore()
	f := seedFarm(store, 1, "0.00")
	f.Producers["chicken"] = 10
	svc := newTestService(store)

	start := f.LastCollection
	svc.now = func() time.Time { return start.Add(10 * time.Minute) }

	result, err := svc.Collect(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, result.Empty())
	assert.True(t, result.Gains[KindEggs].Equal(decimal.RequireFromString("10.00")))

	// Повторный сбор в тот же момент — no-op
	again, err := svc.Collect(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, again.Empty())

	stored, _ := store.Farm(context.Background(), 1)
	assert.True(t, stored.Resources[KindEggs].Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, start.Add(10*time.Minute), stored.LastCollection)
}

func TestCollectEmptyDoesNotAdvanceTimer(t *testing.T) {
	store := newMemStore()
	f := seedFarm(store, 1, "0.00")
	f.Producers["chicken"] = 1
	svc := newTestService(store)

	start := f.LastCollection
	// 2 секунды: прирост округляется в ноль
	svc.now = func() time.Time { return start.Add(2 * time.Second) }

	result, err := svc.Collect(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, result.Empty())

	stored, _ := store.Farm(context.Background(), 1)
	assert.Equal(t, start, stored.LastCollection, "холостой сбор не двигает отметку времени")
}

func TestSellExactAmount(t *testing.T) {
	store := newMemStore()
	f := seedFarm(store, 1, "0.00")
	f.Resources[KindEggs] = decimal.RequireFromString("10.00")
	svc := newTestService(store)

	result, err := svc.Sell(context.Background(), 1, KindEggs, decimal.NewFromInt(10), false)
	require.NoError(t, err)
	// 10 яиц × 0.50 = 5.00
	assert.True(t, result.Proceeds.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, result.NewBalance.IsZero())
	assert.True(t, result.Money.Equal(decimal.RequireFromString("5.00")))
}

func TestSellAll(t *testing.T) {
	store := newMemStore()
	f := seedFarm(store, 1, "0.00")
	f.Resources[KindMeat] = decimal.RequireFromString("3.50")
	svc := newTestService(store)

	result, err := svc.Sell(context.Background(), 1, KindMeat, decimal.Zero, true)
	require.NoError(t, err)
	// 3.5 мяса × 3.00 = 10.50
	assert.True(t, result.Proceeds.Equal(decimal.RequireFromString("10.50")))
	assert.True(t, result.NewBalance.IsZero())
}

func TestSellMoreThanBalance(t *testing.T) {
	store := newMemStore()
	f := seedFarm(store, 1, "0.00")
	f.Resources[KindEggs] = decimal.NewFromInt(5)
	svc := newTestService(store)

	_, err := svc.Sell(context.Background(), 1, KindEggs, decimal.NewFromInt(6), false)
	assert.ErrorIs(t, err, common.ErrInsufficientResource)

	stored, _ := store.Farm(context.Background(), 1)
	assert.True(t, stored.Resources[KindEggs].Equal(decimal.NewFromInt(5)), "баланс не изменился")
}

func TestSellZeroBalance(t *testing.T) {
	store := newMemStore()
	seedFarm(store, 1, "0.00")
	svc := newTestService(store)

	_, err := svc.Sell(context.Background(), 1, KindEggs, decimal.Zero, true)
	assert.ErrorIs(t, err, common.ErrInsufficientResource)
}

func TestSellNegativeAmount(t *testing.T) {
	store := newMemStore()
	f := seedFarm(store, 1, "0.00")
	f.Resources[KindEggs] = decimal.NewFromInt(5)
	svc := newTestService(store)

	_, err := svc.Sell(context.Background(), 1, KindEggs, decimal.NewFromInt(-1), false)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
}

func TestConcurrentBuysNeverOverspend(t *testing.T) {
	store := newMemStore()
	// Денег ровно на одну курицу
	seedFarm(store, 1, "50.00")
	svc := newTestService(store)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Buy(context.Background(), 1, "chicken", 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, common.ErrInsufficientFunds)
		}
	}
	assert.Equal(t, 1, succeeded, "ровно одна покупка должна пройти")

	f, _ := store.Farm(context.Background(), 1)
	assert.False(t, f.Money.IsNegative(), "деньги не могут уйти в минус")
	assert.Equal(t, 1, f.Producers["chicken"])
}
