package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:test-token")
	t.Setenv("ADMIN_IDS", "100, 200")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("ADMIN_PASSWORD_HASH", "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	// Значения по умолчанию
	assert.Equal(t, "postgres", cfg.DBHost)
	assert.Equal(t, 1.10, cfg.EconomyGrowthFactor)
	assert.Equal(t, "flat", cfg.EconomyYieldPolicy)
	assert.Equal(t, 50.0, cfg.EconomyStartingMoney)
	assert.Equal(t, 1000, cfg.EconomyBuySearchCap)
	assert.Equal(t, int64(1000000), cfg.TransferMaxAmount)
	assert.Equal(t, 50, cfg.BonusMinAmount)
	assert.Equal(t, 150, cfg.BonusMaxAmount)
	assert.Equal(t, []int64{100, 200}, cfg.AdminIDs)
}

func TestIsOperator(t *testing.T) {
	cfg := &Config{AdminIDs: []int64{100, 200}}
	assert.True(t, cfg.IsOperator(100))
	assert.True(t, cfg.IsOperator(200))
	assert.False(t, cfg.IsOperator(300))
}

func TestValidateRejectsUnknownYieldPolicy(t *testing.T) {
	setRequiredEnv(t)
	// Затухающая политика существовала исторически, но не реализована:
	// конфиг обязан отвергнуть её, а не молча проигнорировать.
	t.Setenv("ECONOMY_YIELD_POLICY", "decay")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ECONOMY_YIELD_POLICY")
}

func TestValidateRejectsFlatGrowth(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ECONOMY_GROWTH_FACTOR", "1.0")

	_, err := Load()
	require.Error(t, err)
}

func TestValidateRejectsBadBonusRange(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BONUS_MIN_AMOUNT", "200")
	t.Setenv("BONUS_MAX_AMOUNT", "150")

	_, err := Load()
	require.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: 5432,
		DBName: "d", DBSSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.DatabaseDSN())
}
