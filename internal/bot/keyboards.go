package bot

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"myspace/internal/models"
)

// Reply keyboard labels
const (
	menuAddDiary    = "📝 Добавить запись"
	menuDiaryToday  = "📒 Записи за сегодня"
	menuDiaryRecent = "🗂️ Последние записи"
	menuAddFood     = "🥗 Добавить продукт"
	menuProducts    = "🧺 Список продуктов"
	menuEditDiary   = "✏️ Изменить запись"
	menuEditProduct = "🛠️ Изменить продукт"
	menuHelp        = "ℹ️ Помощь"
	menuCancel      = "❌ Отмена"
	menuLocation    = "📍 Отправить геолокацию"
)

// menuCommands maps reply keyboard labels to the commands they run
var menuCommands = map[string]string{
	menuAddDiary:    "add_diary",
	menuDiaryToday:  "diary_today",
	menuDiaryRecent: "diary_all",
	menuAddFood:     "add_food",
	menuProducts:    "products",
	menuEditDiary:   "edit_diary",
	menuEditProduct: "edit_product",
	menuHelp:        "help",
	menuCancel:      "cancel",
}

var moodEmojis = map[int]string{
	1: "😢",
	2: "😐",
	3: "😊",
	4: "😍",
	5: "🤩",
}

var assessmentLabels = map[models.Assessment]string{
	models.AssessmentPositive: "✅ Положительный",
	models.AssessmentNeutral:  "➖ Средний",
	models.AssessmentNegative: "❌ Отрицательный",
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuAddDiary), tgbotapi.NewKeyboardButton(menuDiaryToday)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuDiaryRecent), tgbotapi.NewKeyboardButton(menuAddFood)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuProducts), tgbotapi.NewKeyboardButton(menuEditDiary)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuEditProduct), tgbotapi.NewKeyboardButton(menuHelp)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuCancel)),
	)
}

func locationKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewOneTimeReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonLocation(menuLocation)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(menuCancel)),
	)
	return kb
}

// moodKeyboard offers the five moods; skipLabel names the no-mood button
func moodKeyboard(skipLabel string) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(moodEmojis))
	for mood := 1; mood <= 5; mood++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(moodEmojis[mood], callbackData(cbDiaryMood, strconv.Itoa(mood))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(skipLabel, callbackData(cbDiaryMood, "skip"))),
	)
}

// assessmentKeyboard lists the three assessments under prefix; keep adds a "leave as is" button
func assessmentKeyboard(prefix string, keep bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(assessmentLabels[models.AssessmentPositive], callbackData(prefix, string(models.AssessmentPositive))),
			tgbotapi.NewInlineKeyboardButtonData(assessmentLabels[models.AssessmentNeutral], callbackData(prefix, string(models.AssessmentNeutral))),
			tgbotapi.NewInlineKeyboardButtonData(assessmentLabels[models.AssessmentNegative], callbackData(prefix, string(models.AssessmentNegative))),
		),
	}
	if keep {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Оставить как есть ⏭️", callbackData(prefix, "skip")),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func skipKeyboard(data string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Пропустить ⏭️", data)),
	)
}

func photosKeyboard(prefix string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Готово ✅", callbackData(prefix, "done")),
			tgbotapi.NewInlineKeyboardButtonData("Пропустить ⏭️", callbackData(prefix, "skip")),
		),
	)
}
