// Package players — handlers.go обрабатывает команду /start и !помощь.
package players

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Handler обрабатывает команды регистрации и справки.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleStart обрабатывает /start: регистрирует игрока и приветствует.
func (h *Handler) HandleStart(ctx context.Context, chatID int64, userID int64, username, firstName, lastName string) {
	created, err := h.service.EnsureAccount(ctx, userID, username, firstName, lastName)
	if err != nil {
		log.WithError(err).Error("Ошибка регистрации игрока")
		h.sendMessage(chatID, "❌ Ошибка регистрации, попробуй позже")
		return
	}

	if created {
		h.sendMessage(chatID, fmt.Sprintf(
			"🏡 Добро пожаловать на ферму, %s!\n\nТебе выдан стартовый капитал. Купи первое животное в !магазин и приходи за урожаем.\n\nСписок команд: !помощь", firstName))
		return
	}
	h.sendMessage(chatID, "👋 С возвращением! Твоя ферма ждёт: !ферма")
}

// HandleHelp показывает список команд.
func (h *Handler) HandleHelp(ctx context.Context, chatID int64) {
	text := `📖 Команды фермы:

!ферма — профиль: деньги, животные, склад
!собрать — собрать накопленные ресурсы
!магазин — купить животных
!продать <ресурс> [кол-во|всё] — продать со склада
!отсыпать @username <сумма> — перевести деньги
!бонус — ежедневный бонус
!топ — рейтинг богачей
!транзакции — история операций`
	h.sendMessage(chatID, text)
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
