package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"myspace/internal/conversation"
	"myspace/internal/models"
)

func renderDiaryEntry(entry models.DiaryEntry) string {
	mood := ""
	if entry.Mood != nil {
		emoji, ok := moodEmojis[*entry.Mood]
		if !ok {
			emoji = "🙂"
		}
		mood = " · " + emoji
	}
	return fmt.Sprintf("📓 %s %s%s\n%s", entry.Date, entry.Time, mood, entry.Text)
}

func renderProduct(product models.Product) string {
	label, ok := assessmentLabels[product.Assessment]
	if !ok {
		label = assessmentLabels[models.AssessmentNeutral]
	}
	parts := []string{fmt.Sprintf("🥗 %s (%s)", product.Name, label)}
	if product.Pros != "" {
		parts = append(parts, "+ "+product.Pros)
	}
	if product.Cons != "" {
		parts = append(parts, "- "+product.Cons)
	}
	if product.Notes != "" {
		parts = append(parts, "📝 "+product.Notes)
	}
	return strings.Join(parts, "\n")
}

// sendDiaryEntries lists entries for date (all dates when empty), at most limit when positive
func (b *Bot) sendDiaryEntries(ctx context.Context, chatID int64, date string, limit int) {
	entries, err := b.backend.ListDiaryEntries(ctx, date)
	if err != nil {
		b.logger.Error("Failed to fetch diary entries", zap.Error(err), zap.Int64("chat_id", chatID))
		b.reply(chatID, "Не удалось получить записи 😔", mainMenuKeyboard())
		return
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if len(entries) == 0 {
		b.reply(chatID, "Записей пока нет 📭", mainMenuKeyboard())
		return
	}

	for _, entry := range entries {
		b.sendWithPhotos(ctx, chatID, renderDiaryEntry(entry), entry.Photos())
	}
	b.reply(chatID, "Готово ✅", mainMenuKeyboard())
}

func (b *Bot) sendProducts(ctx context.Context, chatID int64) {
	products, err := b.backend.ListProducts(ctx)
	if err != nil {
		b.logger.Error("Failed to fetch products", zap.Error(err), zap.Int64("chat_id", chatID))
		b.reply(chatID, "Не удалось получить список продуктов 😔", mainMenuKeyboard())
		return
	}
	if len(products) == 0 {
		b.reply(chatID, "Продуктов пока нет 🧺", mainMenuKeyboard())
		return
	}

	for _, product := range products {
		b.sendWithPhotos(ctx, chatID, renderProduct(product), product.Photos())
	}
	b.reply(chatID, "Готово ✅", mainMenuKeyboard())
}

// sendWithPhotos sends up to three photos captioned by text on the first one
func (b *Bot) sendWithPhotos(ctx context.Context, chatID int64, text string, photos []string) {
	if len(photos) == 0 {
		b.reply(chatID, text, nil)
		return
	}
	if len(photos) > models.MaxPhotos {
		photos = photos[:models.MaxPhotos]
	}
	for i, ref := range photos {
		caption := ""
		if i == 0 {
			caption = text
		}
		b.sendPhotoSafe(ctx, chatID, ref, caption)
	}
}

func (b *Bot) sendDiaryEditList(ctx context.Context, chatID int64) {
	entries, err := b.backend.ListDiaryEntries(ctx, "")
	if err != nil {
		b.logger.Error("Failed to fetch diary entries", zap.Error(err), zap.Int64("chat_id", chatID))
		b.reply(chatID, "Не удалось получить список записей 😔", mainMenuKeyboard())
		return
	}
	if len(entries) == 0 {
		b.reply(chatID, "Записей пока нет 📭", mainMenuKeyboard())
		return
	}
	if len(entries) > editListLimit {
		entries = entries[:editListLimit]
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, entry := range entries {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s", entry.Date, entry.Time),
				callbackData(cbDiaryEdit, strconv.FormatInt(entry.ID, 10)),
			),
		))
	}

	b.startFlow(chatID, conversation.NewEditDiaryEntry())
	b.reply(chatID, "Какую запись изменить?", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) sendProductEditList(ctx context.Context, chatID int64) {
	products, err := b.backend.ListProducts(ctx)
	if err != nil {
		b.logger.Error("Failed to fetch products", zap.Error(err), zap.Int64("chat_id", chatID))
		b.reply(chatID, "Не удалось получить список продуктов 😔", mainMenuKeyboard())
		return
	}
	if len(products) == 0 {
		b.reply(chatID, "Продуктов пока нет 🧺", mainMenuKeyboard())
		return
	}

	// Most recent first
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	if len(products) > editListLimit {
		products = products[:editListLimit]
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, product := range products {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				product.Name,
				callbackData(cbProductEdit, strconv.FormatInt(product.ID, 10)),
			),
		))
	}

	b.startFlow(chatID, conversation.NewEditFoodProduct())
	b.reply(chatID, "Какой продукт изменить?", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// selectDiaryEntry seeds the edit flow with the chosen entry
func (b *Bot) selectDiaryEntry(ctx context.Context, chatID int64, st *conversation.EditDiaryEntry, rawID string) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid diary entry id %q: %w", rawID, err)
	}

	entries, err := b.backend.ListDiaryEntries(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to load diary entry %d: %w", id, err)
	}
	for _, entry := range entries {
		if entry.ID == id {
			st.Select(entry)
			b.reply(chatID, fmt.Sprintf("Новый текст записи? (можно /skip)\n\nТекущий: %s", entry.Text), skipKeyboard(cbDiarySkip))
			return nil
		}
	}

	b.states.Delete(chatID)
	b.reply(chatID, "Не удалось найти запись 😔", mainMenuKeyboard())
	return nil
}

// selectProduct seeds the edit flow with the chosen product
func (b *Bot) selectProduct(ctx context.Context, chatID int64, st *conversation.EditFoodProduct, rawID string) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q: %w", rawID, err)
	}

	products, err := b.backend.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load product %d: %w", id, err)
	}
	for _, product := range products {
		if product.ID == id {
			st.Select(product)
			b.reply(chatID, fmt.Sprintf("Новое название? (можно /skip)\n\nТекущее: %s", product.Name), skipKeyboard(cbProductSkip))
			return nil
		}
	}

	b.states.Delete(chatID)
	b.reply(chatID, "Не удалось найти продукт 😔", mainMenuKeyboard())
	return nil
}
