package bot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"myspace/internal/conversation"
)

// finalize persists the collected entity. The chat's state is removed whatever the outcome.
func (b *Bot) finalize(ctx context.Context, chatID int64, state conversation.State) (err error) {
	defer func() {
		b.states.Delete(chatID)
		b.metrics.RecordFlowFinished(string(state.Flow()), err)
	}()

	switch st := state.(type) {
	case *conversation.AddDiaryEntry:
		date, clock := b.localDateTime()
		entry, err := b.backend.CreateDiaryEntry(ctx, st.Payload(date, clock))
		if err != nil {
			return fmt.Errorf("failed to create diary entry: %w", err)
		}
		b.logger.Info("Diary entry created", zap.Int64("chat_id", chatID), zap.Int64("entry_id", entry.ID))
		b.reply(chatID, "Запись добавлена ✅", mainMenuKeyboard())

	case *conversation.EditDiaryEntry:
		if st.ID == 0 {
			b.reply(chatID, "Не удалось обновить запись 😔", mainMenuKeyboard())
			return nil
		}
		if _, err := b.backend.UpdateDiaryEntry(ctx, st.ID, st.Patch()); err != nil {
			return fmt.Errorf("failed to update diary entry %d: %w", st.ID, err)
		}
		b.logger.Info("Diary entry updated", zap.Int64("chat_id", chatID), zap.Int64("entry_id", st.ID))
		b.reply(chatID, "Запись обновлена ✅", mainMenuKeyboard())

	case *conversation.AddFoodProduct:
		product, err := b.backend.CreateProduct(ctx, st.Payload())
		if err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		b.logger.Info("Product created", zap.Int64("chat_id", chatID), zap.Int64("product_id", product.ID))
		b.reply(chatID, "Продукт добавлен 🥳", mainMenuKeyboard())

	case *conversation.EditFoodProduct:
		if st.ID == 0 {
			b.reply(chatID, "Не удалось обновить продукт 😔", mainMenuKeyboard())
			return nil
		}
		if _, err := b.backend.UpdateProduct(ctx, st.ID, st.Patch()); err != nil {
			return fmt.Errorf("failed to update product %d: %w", st.ID, err)
		}
		b.logger.Info("Product updated", zap.Int64("chat_id", chatID), zap.Int64("product_id", st.ID))
		b.reply(chatID, "Продукт обновлён ✅", mainMenuKeyboard())

	default:
		return fmt.Errorf("unknown conversation state %T", state)
	}
	return nil
}
