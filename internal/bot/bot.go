// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go подключает обработчики команд фермы и запускает polling.
package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/farm-bot/internal/bot/filters"
	"serotonyl.ru/farm-bot/internal/bot/middleware"
	"serotonyl.ru/farm-bot/internal/config"
	"serotonyl.ru/farm-bot/internal/features/admin"
	"serotonyl.ru/farm-bot/internal/features/bank"
	"serotonyl.ru/farm-bot/internal/features/farm"
	"serotonyl.ru/farm-bot/internal/features/players"
	"serotonyl.ru/farm-bot/internal/features/rating"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	playerHandler *players.Handler
	farmHandler   *farm.Handler
	bankHandler   *bank.Handler
	ratingHandler *rating.Handler
	adminHandler  *admin.Handler

	playerService *players.Service
	bankService   *bank.Service
	ratingService *rating.Service

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	playerService *players.Service,
	playerHandler *players.Handler,
	farmHandler *farm.Handler,
	bankService *bank.Service,
	bankHandler *bank.Handler,
	ratingService *rating.Service,
	ratingHandler *rating.Handler,
	adminHandler *admin.Handler,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:           api,
		cfg:           cfg,
		chatFilter:    chatFilter,
		rateLimiter:   middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		playerHandler: playerHandler,
		farmHandler:   farmHandler,
		bankHandler:   bankHandler,
		ratingHandler: ratingHandler,
		adminHandler:  adminHandler,
		playerService: playerService,
		bankService:   bankService,
		ratingService: ratingService,
		parser:        NewCommandParser(),
		inflight:      make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	// Кнопки магазина
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil || update.Message.Text == "" {
		return
	}

	message := update.Message
	middleware.LogMessage(message)

	if !b.chatFilter.CheckAccess(ctx, message) {
		return
	}

	if message.From != nil && !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	// Аккаунт должен существовать до любой команды экономики
	if _, err := b.playerService.EnsureAccount(ctx, userID,
		message.From.UserName, message.From.FirstName, message.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureAccount failed")
	}

	// В личке текст может быть паролем панели оператора
	if message.Chat.IsPrivate() {
		if b.adminHandler.HandleText(ctx, chatID, userID, message.Text) {
			return
		}
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		return
	}

	b.routeCommand(ctx, message, cmd, args)
}

// handleCallback обрабатывает нажатия inline-кнопок магазина.
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil || query.Message.Chat == nil {
		return
	}
	if !b.rateLimiter.Allow(query.From.ID) {
		return
	}
	if b.playerService.IsBanned(ctx, query.From.ID) {
		return
	}

	b.farmHandler.HandleCallback(ctx, query)
	b.refreshRating(ctx, query.From.ID)
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, message *tgbotapi.Message, cmd string, args []string) {
	chatID := message.Chat.ID
	userID := message.From.ID
	isPrivate := message.Chat.IsPrivate()

	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	switch cmd {
	case "start":
		b.playerHandler.HandleStart(ctx, chatID, userID,
			message.From.UserName, message.From.FirstName, message.From.LastName)

	case "help", "помощь":
		b.playerHandler.HandleHelp(ctx, chatID)

	case "ферма", "профиль":
		b.farmHandler.HandleFarm(ctx, chatID, userID)

	case "собрать":
		b.farmHandler.HandleCollect(ctx, chatID, userID)

	case "магазин", "купить":
		b.farmHandler.HandleShop(ctx, chatID, userID)

	case "продать":
		b.farmHandler.HandleSell(ctx, chatID, userID, args)
		b.refreshRating(ctx, userID)

	case "отсыпать":
		// Деньги меняются у обеих сторон — кэш рейтинга тоже
		if result := b.bankHandler.HandleTransfer(ctx, chatID, userID, args); result != nil {
			b.refreshRating(ctx, result.RecipientID)
		}
		b.refreshRating(ctx, userID)

	case "бонус":
		b.bankHandler.HandleBonus(ctx, chatID, userID)
		b.refreshRating(ctx, userID)

	case "топ", "рейтинг":
		b.ratingHandler.HandleTop(ctx, chatID, userID)

	case "транзакции":
		b.bankHandler.HandleTransactions(ctx, chatID, userID)

	// --- Панель оператора (только личка) ---
	case "login":
		if isPrivate {
			b.adminHandler.HandleLogin(ctx, chatID, userID)
		}
	case "logout":
		if isPrivate {
			b.adminHandler.HandleLogout(ctx, chatID, userID)
		}
	case "дать", "забрать", "установить":
		if isPrivate {
			if targetID := b.adminHandler.HandleAdjust(ctx, chatID, userID, cmd, args); targetID != 0 {
				b.refreshRating(ctx, targetID)
			}
		}
	case "бан":
		if isPrivate {
			b.adminHandler.HandleBan(ctx, chatID, userID, args, true)
		}
	case "разбан":
		if isPrivate {
			b.adminHandler.HandleBan(ctx, chatID, userID, args, false)
		}
	}
}

// refreshRating обновляет балл игрока в кэше рейтинга после операции,
// которая могла изменить деньги. Ошибки не фатальны.
func (b *Bot) refreshRating(ctx context.Context, userID int64) {
	money, err := b.bankService.Balance(ctx, userID)
	if err != nil {
		return
	}
	b.ratingService.Refresh(ctx, userID, money)
}

// SendMessageToUser отправляет сообщение пользователю (для напоминаний).
func (b *Bot) SendMessageToUser(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить сообщение")
	}
}

// CommandParser парсит русские команды с префиксами !, . и /
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	text = strings.TrimSpace(text)
	parts := strings.Fields(text)

	if len(parts) == 0 {
		return "", nil, false
	}

	// /start@farm_bot → start
	command := strings.ToLower(parts[0])
	if at := strings.IndexByte(command, '@'); at > 0 {
		command = command[:at]
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
