// Package filters решает, обрабатывать ли входящее сообщение.
package filters

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/farm-bot/internal/features/players"
)

// ChatFilter пропускает сообщения из фермерского чата и личек.
// Забаненные игроки отсекаются до любых обработчиков.
type ChatFilter struct {
	farmChatID    int64 // 0 — бот работает только в личке
	playerService *players.Service
}

func NewChatFilter(farmChatID int64, playerService *players.Service) *ChatFilter {
	return &ChatFilter{
		farmChatID:    farmChatID,
		playerService: playerService,
	}
}

// CheckAccess возвращает true, если сообщение нужно обрабатывать.
func (f *ChatFilter) CheckAccess(ctx context.Context, message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil || message.From == nil {
		return false
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	allowed := message.Chat.IsPrivate() || (f.farmChatID != 0 && chatID == f.farmChatID)
	if !allowed {
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"chat_id":   chatID,
		}).Debug("deny: чужой чат")
		return false
	}

	if f.playerService.IsBanned(ctx, userID) {
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"user_id":   userID,
		}).Debug("deny: игрок забанен")
		return false
	}

	return true
}
