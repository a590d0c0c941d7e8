// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// Операторы бота: только эти user_id могут выполнять админ-команды
	AdminIDsRaw string  `envconfig:"ADMIN_IDS" required:"true"`
	AdminIDs    []int64 `envconfig:"-"` // заполним вручную
	// ID группового чата, в котором бот отвечает помимо личных сообщений (0 = только личка)
	FarmChatID int64 `envconfig:"FARM_CHAT_ID" default:"0"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"farm_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Redis (кэш таблицы лидеров) ---
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"redis:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`

	// --- Economy: кривые цен и производства ---
	// Множитель цены за каждую уже купленную единицу: price(n) = base × growth^n.
	// В разных деплоях встречались 1.05 и 1.10 — это параметр экономики, не константа.
	EconomyGrowthFactor float64 `envconfig:"ECONOMY_GROWTH_FACTOR" default:"1.10"`
	// Политика производства. Исторически существовали две: "flat" (единица всегда
	// даёт базовую норму) и затухающая. Реализована ТОЛЬКО "flat"; любое другое
	// значение — ошибка конфигурации, чтобы старую политику нельзя было включить молча.
	EconomyYieldPolicy string `envconfig:"ECONOMY_YIELD_POLICY" default:"flat"`
	// Стартовый капитал нового игрока
	EconomyStartingMoney float64 `envconfig:"ECONOMY_STARTING_MONEY" default:"50.00"`
	// Потолок поиска максимально доступного количества при покупке
	EconomyBuySearchCap int `envconfig:"ECONOMY_BUY_SEARCH_CAP" default:"1000"`

	// --- Transfers ---
	TransferMinAmount int64 `envconfig:"TRANSFER_MIN_AMOUNT" default:"1"`
	TransferMaxAmount int64 `envconfig:"TRANSFER_MAX_AMOUNT" default:"1000000"`

	// --- Daily bonus ---
	BonusMinAmount int `envconfig:"BONUS_MIN_AMOUNT" default:"50"`
	BonusMaxAmount int `envconfig:"BONUS_MAX_AMOUNT" default:"150"`
	// Напоминать ли игрокам, что бонус снова доступен (cron)
	BonusReminderEnabled bool `envconfig:"BONUS_REMINDER_ENABLED" default:"true"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Leaderboard ---
	RatingTopSize int `envconfig:"RATING_TOP_SIZE" default:"10"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// IsOperator проверяет, входит ли userID в список операторов.
// Единственная точка авторизации привилегированных команд.
func (c *Config) IsOperator(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	if len(c.AdminIDs) == 0 {
		return fmt.Errorf("ADMIN_IDS пуст — некому управлять ботом")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.EconomyGrowthFactor <= 1.0 {
		return fmt.Errorf("ECONOMY_GROWTH_FACTOR должен быть > 1.0 (цены растут)")
	}
	if c.EconomyYieldPolicy != "flat" {
		return fmt.Errorf("ECONOMY_YIELD_POLICY: поддерживается только \"flat\", получено %q", c.EconomyYieldPolicy)
	}
	if c.EconomyStartingMoney < 0 {
		return fmt.Errorf("ECONOMY_STARTING_MONEY не может быть отрицательным")
	}
	if c.EconomyBuySearchCap <= 0 {
		return fmt.Errorf("ECONOMY_BUY_SEARCH_CAP должен быть > 0")
	}
	if c.BonusMinAmount <= 0 || c.BonusMaxAmount < c.BonusMinAmount {
		return fmt.Errorf("некорректные BONUS_MIN_AMOUNT/BONUS_MAX_AMOUNT")
	}
	if c.TransferMinAmount <= 0 || c.TransferMaxAmount < c.TransferMinAmount {
		return fmt.Errorf("некорректные TRANSFER_MIN_AMOUNT/TRANSFER_MAX_AMOUNT")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
