// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, Redis, репозитории, сервисы,
// обработчики, фильтры и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/farm-bot/internal/bot"
	"serotonyl.ru/farm-bot/internal/bot/filters"
	"serotonyl.ru/farm-bot/internal/common"
	"serotonyl.ru/farm-bot/internal/config"
	"serotonyl.ru/farm-bot/internal/db/postgres"
	"serotonyl.ru/farm-bot/internal/db/redisdb"
	"serotonyl.ru/farm-bot/internal/features/admin"
	"serotonyl.ru/farm-bot/internal/features/bank"
	"serotonyl.ru/farm-bot/internal/features/farm"
	"serotonyl.ru/farm-bot/internal/features/players"
	"serotonyl.ru/farm-bot/internal/features/rating"
	"serotonyl.ru/farm-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	Redis     *goredis.Client
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Redis (кэш рейтинга, опционален) ===
	rdb := redisdb.NewClient(ctx, cfg)

	// === 3. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 4. Общие пер-игровые блокировки ===
	// Один набор на всё приложение: ферма, банк и админка сериализуются
	// между собой, а не каждый модуль сам по себе.
	locks := common.NewKeyedMutex()

	// === 5. Репозитории ===
	playerRepo := players.NewRepository(pool)
	farmRepo := farm.NewRepository(pool)
	bankRepo := bank.NewRepository(pool)
	ratingRepo := rating.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)

	// === 6. Сервисы ===
	playerService := players.NewService(playerRepo, cfg)
	farmService := farm.NewService(farmRepo, cfg, locks)
	bankService := bank.NewService(bankRepo, cfg, locks)
	ratingService := rating.NewService(ratingRepo, rdb, cfg)
	adminService := admin.NewService(adminRepo, playerRepo, cfg, locks)

	// === 7. Обработчики ===
	playerHandler := players.NewHandler(playerService, botAPI)
	farmHandler := farm.NewHandler(farmService, botAPI)
	bankHandler := bank.NewHandler(bankService, playerService, botAPI)
	ratingHandler := rating.NewHandler(ratingService, botAPI)
	adminHandler := admin.NewHandler(adminService, botAPI)

	// === 8. Фильтры ===
	chatFilter := filters.NewChatFilter(cfg.FarmChatID, playerService)

	// === 9. Собираем бота ===
	b := bot.New(
		botAPI, cfg,
		playerService, playerHandler,
		farmHandler,
		bankService, bankHandler,
		ratingService, ratingHandler,
		adminHandler,
		chatFilter,
	)

	// === 10. Планировщик задач ===
	scheduler := jobs.NewScheduler(cfg, bankService, ratingService, b.SendMessageToUser)

	// Прогреваем кэш рейтинга, не блокируя запуск надолго
	go ratingService.WarmUp(ctx)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		Redis:     rdb,
		BotAPI:    botAPI,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.InitMigrations(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Players},
		{2, migration002Resources},
		{3, migration003Producers},
		{4, migration004Transactions},
		{5, migration005Admin},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Players = `
CREATE TABLE IF NOT EXISTS players (
    user_id BIGINT PRIMARY KEY,
    username VARCHAR(255),
    first_name VARCHAR(255) NOT NULL,
    last_name VARCHAR(255),
    money NUMERIC(14,2) NOT NULL DEFAULT 50 CHECK (money >= 0),
    last_collection TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_bonus TIMESTAMPTZ,
    is_banned BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_players_username ON players(LOWER(username));
CREATE INDEX IF NOT EXISTS idx_players_money ON players(money DESC);
`

var migration002Resources = `
CREATE TABLE IF NOT EXISTS player_resources (
    user_id BIGINT NOT NULL REFERENCES players(user_id),
    kind VARCHAR(32) NOT NULL,
    amount NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (amount >= 0),
    PRIMARY KEY (user_id, kind)
);
`

var migration003Producers = `
CREATE TABLE IF NOT EXISTS player_producers (
    user_id BIGINT NOT NULL REFERENCES players(user_id),
    producer_id VARCHAR(32) NOT NULL,
    count INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0),
    PRIMARY KEY (user_id, producer_id)
);
`

var migration004Transactions = `
CREATE TABLE IF NOT EXISTS transactions (
    id BIGSERIAL PRIMARY KEY,
    reference UUID NOT NULL UNIQUE,
    from_user_id BIGINT NOT NULL,
    to_user_id BIGINT NOT NULL,
    amount NUMERIC(14,2) NOT NULL CHECK (amount >= 0),
    type VARCHAR(32) NOT NULL
        CHECK (type IN ('buy', 'sell', 'transfer', 'bonus', 'admin_give', 'admin_take')),
    description TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_transactions_from_user ON transactions(from_user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_to_user ON transactions(to_user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at DESC);
`

var migration005Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    session_token VARCHAR(255) UNIQUE,
    authenticated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMPTZ,
    last_activity TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_user_id ON admin_sessions(user_id);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    attempt_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    success BOOLEAN NOT NULL DEFAULT FALSE
);
`
