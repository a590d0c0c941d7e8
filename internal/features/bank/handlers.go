// Package bank — handlers.go обрабатывает команды:
// !отсыпать (перевод), !бонус (ежедневный бонус), !транзакции (история).
package bank

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/farm-bot/internal/common"
	"serotonyl.ru/farm-bot/internal/features/players"
)

// historyLimit — сколько операций показывать в !транзакции.
const historyLimit = 10

// Handler обрабатывает денежные команды.
type Handler struct {
	service       *Service
	playerService *players.Service // Для поиска получателя по @username
	bot           *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик денежных команд.
func NewHandler(service *Service, playerService *players.Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{
		service:       service,
		playerService: playerService,
		bot:           bot,
	}
}

// HandleTransfer обрабатывает команду !отсыпать @username 100.
// Возвращает итог перевода (nil, если перевод не состоялся) — вызывающему
// он нужен для обновления кэша рейтинга обеих сторон.
//
// Формат: !отсыпать @username 100
// или: !отсыпать username 100 (без @)
func (h *Handler) HandleTransfer(ctx context.Context, chatID int64, fromUserID int64, args []string) *TransferResult {
	if len(args) < 2 {
		h.sendMessage(chatID, "❌ Формат: !отсыпать @username сумма")
		return nil
	}

	username := strings.TrimPrefix(args[0], "@")
	if username == "" {
		h.sendMessage(chatID, "❌ Укажите @username получателя")
		return nil
	}

	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		h.sendMessage(chatID, "❌ Сумма должна быть числом")
		return nil
	}
	amount = amount.Round(2)

	recipient, err := h.playerService.GetByUsername(ctx, username)
	if err != nil {
		h.sendMessage(chatID, "❌ Получатель не найден — он уже играл в ферму?")
		return nil
	}

	result, err := h.service.Transfer(ctx, fromUserID, recipient.UserID, amount)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrSelfTransfer):
			h.sendMessage(chatID, "❌ Нельзя отсыпать самому себе")
		case errors.Is(err, common.ErrInsufficientFunds):
			h.sendMessage(chatID, "❌ Недостаточно денег на счёте")
		case errors.Is(err, common.ErrInvalidAmount):
			h.sendMessage(chatID, "❌ Сумма должна быть положительной")
		case errors.Is(err, common.ErrAmountTooLarge):
			h.sendMessage(chatID, "❌ Слишком большая сумма для одного перевода")
		case errors.Is(err, common.ErrRecipientNotFound):
			h.sendMessage(chatID, "❌ Получатель не найден")
		default:
			log.WithError(err).Error("Ошибка перевода")
			if errors.Is(err, common.ErrStoreUnavailable) {
				h.sendMessage(chatID, "⏳ База временно недоступна, попробуй позже")
			} else {
				h.sendMessage(chatID, "❌ Ошибка выполнения перевода")
			}
		}
		return nil
	}

	text := fmt.Sprintf("✅ Переведено %s игроку @%s\n💰 Твой баланс: %s",
		common.FormatMoney(result.Amount), username, common.FormatMoney(result.SenderBalance))
	h.sendMessage(chatID, text)
	return result
}

// HandleBonus обрабатывает команду !бонус — ежедневный бонус.
func (h *Handler) HandleBonus(ctx context.Context, chatID int64, userID int64) {
	result, err := h.service.ClaimDailyBonus(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка выдачи бонуса")
		h.sendMessage(chatID, "❌ Ошибка выдачи бонуса")
		return
	}

	if !result.Granted {
		wait := common.FormatDuration(time.Until(result.NextEligibleAt))
		h.sendMessage(chatID, fmt.Sprintf("🕐 Бонус уже получен — следующий через %s", wait))
		return
	}

	text := fmt.Sprintf("🎁 Ежедневный бонус: %s\n💰 Баланс: %s",
		common.FormatMoney(result.Amount), common.FormatMoney(result.Balance))
	h.sendMessage(chatID, text)
}

// HandleTransactions обрабатывает команду !транзакции — показывает историю.
func (h *Handler) HandleTransactions(ctx context.Context, chatID int64, userID int64) {
	history, err := h.service.History(ctx, userID, historyLimit)
	if err != nil {
		log.WithError(err).Error("Ошибка получения транзакций")
		h.sendMessage(chatID, "❌ Ошибка получения истории операций")
		return
	}

	if len(history) == 0 {
		h.sendMessage(chatID, "📭 Операций пока нет")
		return
	}

	var b strings.Builder
	b.WriteString("📜 Последние операции:\n\n")
	for _, t := range history {
		b.WriteString(formatTransaction(userID, t))
		b.WriteByte('\n')
	}
	h.sendMessage(chatID, b.String())
}

// formatTransaction собирает строку истории с точки зрения игрока userID:
// входящие суммы со знаком «+», исходящие — со знаком «−».
func formatTransaction(userID int64, t Transaction) string {
	sign := "−"
	if t.ToUserID == userID {
		sign = "+"
	}

	var label string
	switch t.Type {
	case TxTypeBuy:
		label = "🛒 покупка"
	case TxTypeSell:
		label = "📦 продажа"
	case TxTypeTransfer:
		if t.ToUserID == userID {
			label = "📥 перевод от игрока"
		} else {
			label = "📤 перевод игроку"
		}
	case TxTypeBonus:
		label = "🎁 бонус"
	case TxTypeAdminGive:
		label = "⚙️ начисление"
	case TxTypeAdminTake:
		label = "⚙️ списание"
	default:
		label = t.Type
	}

	return fmt.Sprintf("%s %s%s — %s",
		common.FormatDateTime(t.CreatedAt), sign, t.Amount.StringFixed(2), label)
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
