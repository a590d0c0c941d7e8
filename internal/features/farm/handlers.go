// Package farm — handlers.go обрабатывает команды:
// !ферма (профиль), !собрать, !магазин (покупка через inline-клавиатуру),
// !продать (продажа ресурсов).
package farm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/farm-bot/internal/common"
)

// Handler обрабатывает команды фермы.
type Handler struct {
	service *Service         // Сервис экономики фермы
	bot     *tgbotapi.BotAPI // API Telegram для отправки ответов
}

// NewHandler создаёт новый обработчик команд фермы.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleFarm обрабатывает команду !ферма — показывает профиль фермы:
// деньги, животных и накопленные ресурсы.
func (h *Handler) HandleFarm(ctx context.Context, chatID int64, userID int64) {
	farm, err := h.service.FarmOf(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка загрузки фермы")
		h.sendMessage(chatID, "❌ Ошибка загрузки фермы")
		return
	}

	var b strings.Builder
	b.WriteString("🏡 Твоя ферма\n\n")
	b.WriteString(fmt.Sprintf("💰 Деньги: %s\n", common.FormatMoney(farm.Money)))

	if farm.TotalAnimals() == 0 {
		b.WriteString("\nЖивотных пока нет — загляни в !магазин\n")
	} else {
		b.WriteString("\n🐾 Животные:\n")
		for _, pr := range Producers {
			count := farm.OwnedCount(pr.ID)
			if count == 0 {
				continue
			}
			b.WriteString(fmt.Sprintf("  %s — %d %s\n",
				pr.Name, count, common.PluralizeAnimals(count)))
		}
	}

	hasResources := false
	for _, res := range Resources {
		amount := farm.ResourceBalance(res.Kind)
		if amount.IsZero() {
			continue
		}
		if !hasResources {
			b.WriteString("\n📦 Ресурсы на складе:\n")
			hasResources = true
		}
		b.WriteString(fmt.Sprintf("  %s %s — %s\n",
			res.Emoji, res.Name, common.FormatAmount(amount)))
	}

	h.sendMessage(chatID, b.String())
}

// HandleCollect обрабатывает команду !собрать — зачисляет накопленный доход.
func (h *Handler) HandleCollect(ctx context.Context, chatID int64, userID int64) {
	result, err := h.service.Collect(ctx, userID)
	if err != nil {
		if common.IsDomainError(err) {
			h.sendMessage(chatID, "❌ "+err.Error())
			return
		}
		log.WithError(err).Error("Ошибка сбора ресурсов")
		h.sendMessage(chatID, "⏳ Не получилось собрать, попробуй позже")
		return
	}

	if result.Empty() {
		h.sendMessage(chatID, "🕐 Пока нечего собирать — загляни позже")
		return
	}

	var b strings.Builder
	b.WriteString("🧺 Собрано:\n")
	for _, res := range Resources {
		gain, ok := result.Gains[res.Kind]
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s %s — %s\n",
			res.Emoji, res.Name, common.FormatAmount(gain)))
	}
	h.sendMessage(chatID, b.String())
}

// HandleShop обрабатывает команду !магазин — показывает каталог животных
// с inline-кнопками. Нажатие кнопки ведёт к выбору количества.
func (h *Handler) HandleShop(ctx context.Context, chatID int64, userID int64) {
	farm, err := h.service.FarmOf(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка загрузки фермы")
		h.sendMessage(chatID, "❌ Ошибка загрузки магазина")
		return
	}

	var b strings.Builder
	b.WriteString("🛒 Магазин животных\n")
	b.WriteString(fmt.Sprintf("💰 У тебя: %s\n\n", common.FormatMoney(farm.Money)))
	b.WriteString("Цена растёт с каждой купленной особью.\n")
	b.WriteString("⚠️ Покупка сбрасывает таймер дохода — сначала !собрать\n")

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, pr := range Producers {
		owned := farm.OwnedCount(pr.ID)
		price := h.service.Pricing().UnitPrice(pr, owned)
		label := fmt.Sprintf("%s — %s", pr.Name, common.FormatMoney(price))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "shop:"+pr.ID),
		))
	}

	msg := tgbotapi.NewMessage(chatID, b.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки магазина")
	}
}

// HandleCallback разбирает callback-данные магазина.
// "shop:<id>" — показать выбор количества, "buy:<id>:<qty>" — купить.
func (h *Handler) HandleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	parts := strings.Split(query.Data, ":")
	chatID := query.Message.Chat.ID
	userID := query.From.ID

	switch parts[0] {
	case "shop":
		if len(parts) == 2 {
			h.showQuantityPicker(ctx, chatID, userID, parts[1])
		}
	case "buy":
		if len(parts) == 3 {
			qty, err := strconv.Atoi(parts[2])
			if err == nil {
				h.executeBuy(ctx, chatID, userID, parts[1], qty)
			}
		}
	}

	// Погасить «часики» на кнопке
	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := h.bot.Request(callback); err != nil {
		log.WithError(err).Debug("Ошибка ответа на callback")
	}
}

// showQuantityPicker показывает кнопки выбора количества: 1, 10, 50 и МАКС
// (сколько игрок может себе позволить по кривой цен).
func (h *Handler) showQuantityPicker(ctx context.Context, chatID, userID int64, producerID string) {
	pr, ok := ProducerByID(producerID)
	if !ok {
		h.sendMessage(chatID, "❌ Такого животного нет в каталоге")
		return
	}

	farm, err := h.service.FarmOf(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка загрузки фермы")
		h.sendMessage(chatID, "❌ Ошибка загрузки магазина")
		return
	}

	owned := farm.OwnedCount(producerID)
	maxQty := h.service.Pricing().MaxAffordable(pr, owned, farm.Money)
	if maxQty == 0 {
		price := h.service.Pricing().UnitPrice(pr, owned)
		h.sendMessage(chatID, fmt.Sprintf("❌ Не хватает денег: %s стоит %s",
			pr.Name, common.FormatMoney(price)))
		return
	}

	var buttons []tgbotapi.InlineKeyboardButton
	for _, qty := range []int{1, 10, 50} {
		if qty > maxQty {
			break
		}
		cost := h.service.Pricing().BatchPrice(pr, owned, qty)
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("%d (%s)", qty, common.FormatMoney(cost)),
			fmt.Sprintf("buy:%s:%d", producerID, qty),
		))
	}
	maxCost := h.service.Pricing().BatchPrice(pr, owned, maxQty)
	buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
		fmt.Sprintf("МАКС %d (%s)", maxQty, common.FormatMoney(maxCost)),
		fmt.Sprintf("buy:%s:%d", producerID, maxQty),
	))

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Сколько купить? %s", pr.Name))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки выбора количества")
	}
}

// executeBuy выполняет покупку и отчитывается о результате.
func (h *Handler) executeBuy(ctx context.Context, chatID, userID int64, producerID string, qty int) {
	result, err := h.service.Buy(ctx, userID, producerID, qty)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInsufficientFunds):
			h.sendMessage(chatID, "❌ Не хватает денег на покупку")
		case errors.Is(err, common.ErrUnknownProducer):
			h.sendMessage(chatID, "❌ Такого животного нет в каталоге")
		case errors.Is(err, common.ErrInvalidAmount):
			h.sendMessage(chatID, "❌ Количество должно быть положительным")
		case errors.Is(err, common.ErrAmountTooLarge):
			h.sendMessage(chatID, "❌ Слишком большое количество за одну покупку")
		default:
			log.WithError(err).Error("Ошибка покупки")
			h.sendMessage(chatID, "❌ Ошибка выполнения покупки")
		}
		return
	}

	text := fmt.Sprintf("✅ Куплено: %s x%d за %s\nТеперь у тебя %d %s\nСледующая особь: %s\n💰 Осталось: %s",
		result.Producer.Name, result.Quantity, common.FormatMoney(result.TotalCost),
		result.NewCount, common.PluralizeAnimals(result.NewCount),
		common.FormatMoney(result.NextUnitPrice),
		common.FormatMoney(result.MoneyLeft))
	h.sendMessage(chatID, text)
}

// HandleSell обрабатывает команду !продать <ресурс> [количество|всё].
//
// Формат: !продать яйца 10
// или: !продать яйца всё (продать весь остаток)
// или: !продать яйца (то же, что всё)
func (h *Handler) HandleSell(ctx context.Context, chatID int64, userID int64, args []string) {
	if len(args) < 1 {
		h.sendMessage(chatID, "❌ Формат: !продать <ресурс> [количество|всё]")
		return
	}

	res, ok := ResourceByName(strings.ToLower(args[0]))
	if !ok {
		h.sendMessage(chatID, "❌ Неизвестный ресурс. Доступны: яйца, перья, пух, шерсть, молоко, мясо")
		return
	}

	all := true
	amount := decimal.Zero
	if len(args) >= 2 && !sellAllRequested(args[1]) {
		parsed, err := decimal.NewFromString(args[1])
		if err != nil {
			h.sendMessage(chatID, "❌ Количество должно быть числом")
			return
		}
		all = false
		amount = parsed
	}

	result, err := h.service.Sell(ctx, userID, res.Kind, amount, all)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInsufficientResource):
			h.sendMessage(chatID, fmt.Sprintf("❌ Не хватает ресурса: %s %s", res.Emoji, res.Name))
		case errors.Is(err, common.ErrInvalidAmount):
			h.sendMessage(chatID, "❌ Количество должно быть положительным")
		default:
			log.WithError(err).Error("Ошибка продажи")
			h.sendMessage(chatID, "❌ Ошибка выполнения продажи")
		}
		return
	}

	text := fmt.Sprintf("✅ Продано: %s %s x%s за %s\nОстаток: %s\n💰 Деньги: %s",
		result.Resource.Emoji, result.Resource.Name,
		common.FormatAmount(result.Sold), common.FormatMoney(result.Proceeds),
		common.FormatAmount(result.NewBalance), common.FormatMoney(result.Money))
	h.sendMessage(chatID, text)
}

// sellAllRequested распознаёт запрос «продать весь остаток».
func sellAllRequested(arg string) bool {
	switch strings.ToLower(arg) {
	case "всё", "все", "all":
		return true
	}
	return false
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
