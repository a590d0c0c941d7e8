package bank

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
	mu      sync.Mutex
	money   map[int64]decimal.Decimal
	bonus   map[int64]*time.Time
	history map[int64][]Transaction
}

func newMemStore() *memStore {
	return &memStore{
		money:   make(map[int64]decimal.Decimal),
		bonus:   make(map[int64]*time.Time),
		history: make(map[int64][]Transaction),
	}
}

func (m *memStore) Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	from, ok := m.money[fromID]
	if !ok {
		return common.ErrTargetNotFound
	}
	if _, ok := m.money[toID]; !ok {
		return common.ErrRecipientNotFound
	}
	if from.LessThan(amount) {
		return common.ErrInsufficientFunds
	}
	m.money[fromID] = from.Sub(amount)
	m.money[toID] = m.money[toID].Add(amount)
	return nil
}

func (m *memStore) LastBonus(ctx context.Context, userID int64) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.money[userID]; !ok {
		return nil, common.ErrTargetNotFound
	}
	return m.bonus[userID], nil
}

func (m *memStore) GrantBonus(ctx context.Context, userID int64, amount decimal.Decimal, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.money[userID]; !ok {
		return common.ErrTargetNotFound
	}
	m.money[userID] = m.money[userID].Add(amount)
	t := at
	m.bonus[userID] = &t
	return nil
}

func (m *memStore) MoneyOf(ctx context.Context, userID int64) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	money, ok := m.money[userID]
	if !ok {
		return decimal.Zero, common.ErrTargetNotFound
	}
	return money, nil
}

func (m *memStore) History(ctx context.Context, userID int64, limit int) ([]Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history[userID], nil
}

func (m *memStore) BonusDueUserIDs(ctx context.Context, cutoff time.Time) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for id := range m.money {
		last := m.bonus[id]
		if last == nil || last.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func testConfig() *config.Config {
	return &config.Config{
		TransferMinAmount: 1,
		TransferMaxAmount: 1000,
		BonusMinAmount:    50,
		BonusMaxAmount:    150,
	}
}

func newTestService(store Store) *Service {
	return NewService(store, testConfig(), common.NewKeyedMutex())
}

func TestTransferConservesTotal(t *testing.T) {
	store := newMemStore()
	store.money[1] = decimal.NewFromInt(100)
	store.money[2] = decimal.NewFromInt(30)
	svc := newTestService(store)

	result, err := svc.Transfer(context.Background(), 1, 2, decimal.NewFromInt(40))
	require.NoError(t, err)
	assert.True(t, result.SenderBalance.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, int64(2), result.RecipientID, "по нему обновляется кэш рейтинга получателя")

	total := store.money[1].Add(store.money[2])
	assert.True(t, total.Equal(decimal.NewFromInt(130)), "сумма денег в системе не меняется")
	assert.True(t, store.money[2].Equal(decimal.NewFromInt(70)))
}

func TestTransferInsufficientFundsNoMutation(t *testing.T) {
	store := newMemStore()
	store.money[1] = decimal.NewFromInt(10)
	store.money[2] = decimal.NewFromInt(5)
	svc := newTestService(store)

	_, err := svc.Transfer(context.Background(), 1, 2, decimal.NewFromInt(11))
	assert.ErrorIs(t, err, common.ErrInsufficientFunds)
	assert.True(t, store.money[1].Equal(decimal.NewFromInt(10)))
	assert.True(t, store.money[2].Equal(decimal.NewFromInt(5)))
}

func TestTransferToSelf(t *testing.T) {
	store := newMemStore()
	store.money[1] = decimal.NewFromInt(100)
	svc := newTestService(store)

	_, err := svc.Transfer(context.Background(), 1, 1, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, common.ErrSelfTransfer)
}

func TestTransferAmountBounds(t *testing.T) {
	store := newMemStore()
	store.money[1] = decimal.NewFromInt(100_000)
	store.money[2] = decimal.Zero
	svc := newTestService(store)

	_, err := svc.Transfer(context.Background(), 1, 2, decimal.Zero)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	_, err = svc.Transfer(context.Background(), 1, 2, decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	// Меньше TRANSFER_MIN_AMOUNT
	_, err = svc.Transfer(context.Background(), 1, 2, decimal.RequireFromString("0.50"))
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	// Больше TRANSFER_MAX_AMOUNT (в тестовом конфиге 1000)
	_, err = svc.Transfer(context.Background(), 1, 2, decimal.NewFromInt(1001))
	assert.ErrorIs(t, err, common.ErrAmountTooLarge)
}

func TestTransferUnknownRecipient(t *testing.T) {
	store := newMemStore()
	store.money[1] = decimal.NewFromInt(100)
	svc := newTestService(store)

	_, err := svc.Transfer(context.Background(), 1, 999, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, common.ErrRecipientNotFound)
}

func TestBonusFirstClaim(t *testing.T) {
	store := newMemStore()
	store.money[1] = decimal.Zero
	svc := newTestService(store)
	svc.randInt = func(n int) int { return 0 } // всегда минимум
	claimed := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return claimed }

	result, err := svc.ClaimDailyBonus(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, result.Granted)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(50)))
	assert.True(t, result.Balance.Equal(decimal.NewFromInt(50)))
	// NextEligibleAt заполняется и при успехе
	assert.Equal(t, claimed.Add(24*time.Hour), result.NextEligibleAt)
}

func TestBonusAmountWithinRange(t *testing.T) {
	store := newMemStore()
	store.money[1] = decimal.Zero
	svc := newTestService(store)
	svc.randInt = func(n int) int {
		assert.Equal(t, 101, n, "диапазон 50..150 — 101 вариант")
		return n - 1 // максимум
	}

	result, err := svc.ClaimDailyBonus(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(150)))
}

func TestBonusCooldown(t *testing.T) {
	store := newMemStore()
	store.money[1] = decimal.Zero
	svc := newTestService(store)

	claimed := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return claimed }

	first, err := svc.ClaimDailyBonus(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, first.Granted)

	// Через 12 часов — ещё рано, но это не ошибка
	svc.now = func() time.Time { return claimed.Add(12 * time.Hour) }
	second, err := svc.ClaimDailyBonus(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, second.Granted)
	assert.Equal(t, claimed.Add(24*time.Hour), second.NextEligibleAt)
	assert.True(t, store.money[1].Equal(first.Balance), "отказ не меняет баланс")

	// Ровно через 24 часа — снова можно
	svc.now = func() time.Time { return claimed.Add(24 * time.Hour) }
	third, err := svc.ClaimDailyBonus(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, third.Granted)
}

func TestBonusIntervalNotCalendarDay(t *testing.T) {
	store := newMemStore()
	store.money[1] = decimal.Zero
	svc := newTestService(store)

	// Взял бонус за минуту до полуночи
	claimed := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	svc.now = func() time.Time { return claimed }
	_, err := svc.ClaimDailyBonus(context.Background(), 1)
	require.NoError(t, err)

	// Новый календарный день не помогает — отсчёт идёт от момента выдачи
	svc.now = func() time.Time { return time.Date(2025, 6, 2, 0, 1, 0, 0, time.UTC) }
	result, err := svc.ClaimDailyBonus(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, result.Granted)
	assert.Equal(t, claimed.Add(24*time.Hour), result.NextEligibleAt)
}
