// Package admin — handlers.go обрабатывает команды панели оператора.
// Панель работает только в личных сообщениях: /login → пароль → команды
// корректировки. Команды в общем чате игнорируются молча.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/farm-bot/internal/common"
)

// Handler обрабатывает команды панели оператора.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик панели.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleLogin обрабатывает /login — начало входа в панель.
func (h *Handler) HandleLogin(ctx context.Context, chatID int64, userID int64) {
	if err := h.service.Authorize(userID); err != nil {
		// Не оператор — не раскрываем существование панели
		return
	}

	if h.service.HasActiveSession(ctx, userID) {
		h.sendMessage(chatID, "✅ Сессия уже активна. /logout для выхода")
		return
	}

	h.service.SetState(userID, StateAwaitingPassword)
	h.sendMessage(chatID, "🔐 Введите пароль оператора:")
}

// HandleLogout обрабатывает /logout.
func (h *Handler) HandleLogout(ctx context.Context, chatID int64, userID int64) {
	if err := h.service.Authorize(userID); err != nil {
		return
	}
	if err := h.service.Logout(ctx, userID); err != nil {
		log.WithError(err).Error("Ошибка выхода из панели")
	}
	h.sendMessage(chatID, "👋 Сессия завершена")
}

// HandleText обрабатывает обычный текст в личке: если оператор в состоянии
// ожидания пароля — проверяем пароль. Возвращает true, если текст был
// частью админ-диалога и дальше его обрабатывать не нужно.
func (h *Handler) HandleText(ctx context.Context, chatID int64, userID int64, text string) bool {
	state := h.service.GetState(userID)
	if state == nil || state.State != StateAwaitingPassword {
		return false
	}

	h.service.ClearState(userID)
	err := h.service.VerifyPassword(ctx, userID, text)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTooManyAttempts):
			h.sendMessage(chatID, "⛔ Слишком много попыток, подождите 1 час")
		case errors.Is(err, common.ErrWrongPassword):
			h.sendMessage(chatID, "❌ Неверный пароль. /login для новой попытки")
		default:
			log.WithError(err).Error("Ошибка проверки пароля")
			h.sendMessage(chatID, "❌ Ошибка проверки пароля")
		}
		return true
	}

	h.sendMessage(chatID, `✅ Вход выполнен. Команды панели:

!дать @user <поле> <значение>
!забрать @user <поле> <значение>
!установить @user <поле> <значение>
!бан @user / !разбан @user

Поля: деньги, ресурсы (яйца, перья, …) или животные (chicken, cow, …)`)
	return true
}

// HandleAdjust обрабатывает !дать / !забрать / !установить.
// Возвращает id затронутого игрока (0, если корректировка не состоялась) —
// вызывающему он нужен для обновления кэша рейтинга.
//
// Формат: !дать @username деньги 100
func (h *Handler) HandleAdjust(ctx context.Context, chatID int64, operatorID int64, opName string, args []string) int64 {
	op, err := ParseOp(opName)
	if err != nil {
		return 0
	}
	if len(args) < 3 {
		h.sendMessage(chatID, fmt.Sprintf("❌ Формат: !%s @username поле значение", opName))
		return 0
	}

	username := strings.TrimPrefix(args[0], "@")
	field, err := ParseField(args[1])
	if err != nil {
		h.sendMessage(chatID, "❌ Неизвестное поле. Доступны: деньги, ресурсы, id животных")
		return 0
	}
	value, err := decimal.NewFromString(args[2])
	if err != nil {
		h.sendMessage(chatID, "❌ Значение должно быть числом")
		return 0
	}

	result, err := h.service.Adjust(ctx, operatorID, username, field, op, value)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUnauthorized):
			h.sendMessage(chatID, "⛔ Нужна активная сессия: /login")
		case errors.Is(err, common.ErrTargetNotFound):
			h.sendMessage(chatID, "❌ Игрок не найден")
		case errors.Is(err, common.ErrInvalidAmount):
			h.sendMessage(chatID, "❌ Некорректное значение для этой операции")
		case errors.Is(err, common.ErrUnknownField):
			h.sendMessage(chatID, "❌ Неизвестное поле или операция")
		default:
			log.WithError(err).Error("Ошибка корректировки")
			h.sendMessage(chatID, "❌ Ошибка выполнения корректировки")
		}
		return 0
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ Готово: %s, поле %s → %s",
		result.TargetName, args[1], result.NewValue.String()))
	return result.TargetID
}

// HandleBan обрабатывает !бан и !разбан.
func (h *Handler) HandleBan(ctx context.Context, chatID int64, operatorID int64, args []string, banned bool) {
	if len(args) < 1 {
		h.sendMessage(chatID, "❌ Формат: !бан @username")
		return
	}
	username := strings.TrimPrefix(args[0], "@")

	target, err := h.service.SetBanned(ctx, operatorID, username, banned)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUnauthorized):
			h.sendMessage(chatID, "⛔ Нужна активная сессия: /login")
		case errors.Is(err, common.ErrTargetNotFound):
			h.sendMessage(chatID, "❌ Игрок не найден")
		default:
			log.WithError(err).Error("Ошибка смены бана")
			h.sendMessage(chatID, "❌ Ошибка выполнения команды")
		}
		return
	}

	if banned {
		h.sendMessage(chatID, fmt.Sprintf("🚫 %s забанен", target.DisplayName()))
	} else {
		h.sendMessage(chatID, fmt.Sprintf("✅ %s разбанен", target.DisplayName()))
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
