package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"myspace/internal/conversation"
)

const (
	defaultRecentLimit = 5
	maxRecentLimit     = 20
	editListLimit      = 5
)

const welcomeText = `Привет! Я бот My Space 👋

Я помогу вести дневник и питание.
Выбери действие кнопками ниже.`

const helpText = `Подсказка ✨

Кнопки меню:
📝 Добавить запись
📒 Записи за сегодня
🗂️ Последние записи
🥗 Добавить продукт
🧺 Список продуктов
✏️ Изменить запись
🛠️ Изменить продукт
❌ Отмена

Команды:
/diary_all N - последние N записей (до 20)
/timezone - часовой пояс по геолокации
/skip - пропустить шаг, /done - закончить с фото

Можно прикреплять фото к записям и продуктам 📸`

// handleCommand runs a slash command or its menu equivalent
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message, command, args string) {
	chatID := message.Chat.ID

	switch command {
	case "start":
		b.states.Delete(chatID)
		b.reply(chatID, welcomeText, mainMenuKeyboard())
	case "help":
		b.reply(chatID, helpText, mainMenuKeyboard())
	case "cancel":
		b.states.Delete(chatID)
		b.reply(chatID, "Ок, отменил ✅ Что дальше?", mainMenuKeyboard())
	case "add_diary":
		b.startFlow(chatID, conversation.NewAddDiaryEntry())
		b.reply(chatID, promptDiaryText+"\nМожно просто одной фразой.", nil)
	case "add_food":
		b.startFlow(chatID, conversation.NewAddFoodProduct())
		b.reply(chatID, promptProductName, nil)
	case "diary_today":
		date, _ := b.localDateTime()
		b.sendDiaryEntries(ctx, chatID, date, 0)
	case "diary_all":
		b.sendDiaryEntries(ctx, chatID, "", parseRecentLimit(args))
	case "products":
		b.sendProducts(ctx, chatID)
	case "edit_diary":
		b.sendDiaryEditList(ctx, chatID)
	case "edit_product":
		b.sendProductEditList(ctx, chatID)
	case "timezone":
		b.reply(chatID, b.timezoneText(), locationKeyboard())
	default:
		b.reply(chatID, "Не знаю такой команды 🤔 Набери /help, чтобы увидеть список.", mainMenuKeyboard())
	}
}

// parseRecentLimit reads the optional N of /diary_all, clamped to 1..20
func parseRecentLimit(args string) int {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return defaultRecentLimit
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return defaultRecentLimit
	}
	return min(max(n, 1), maxRecentLimit)
}
