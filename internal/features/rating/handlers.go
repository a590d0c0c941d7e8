// Package rating — handlers.go обрабатывает команду !топ.
package rating

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/farm-bot/internal/common"
)

// Handler обрабатывает команды рейтинга.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик рейтинга.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleTop обрабатывает команду !топ — таблица богачей.
// Если запросивший не попал в топ, его позиция дописывается отдельной строкой.
func (h *Handler) HandleTop(ctx context.Context, chatID int64, userID int64) {
	board, err := h.service.Board(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения рейтинга")
		h.sendMessage(chatID, "❌ Ошибка получения рейтинга")
		return
	}

	if len(board.Top) == 0 {
		h.sendMessage(chatID, "📭 Рейтинг пока пуст — стань первым фермером!")
		return
	}

	var b strings.Builder
	b.WriteString("🏆 Самые богатые фермеры:\n\n")
	inTop := false
	for _, e := range board.Top {
		b.WriteString(fmt.Sprintf("%s %d. %s — %s\n",
			medal(e.Rank), e.Rank, e.Name, common.FormatMoney(e.Money)))
		if e.UserID == userID {
			inTop = true
		}
	}

	if !inTop && board.Requester != nil {
		b.WriteString(fmt.Sprintf("\n…\n%d. Ты — %s\n",
			board.Requester.Rank, common.FormatMoney(board.Requester.Money)))
	}

	h.sendMessage(chatID, b.String())
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return "▫️"
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
