package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) currentAPI() TelegramAPI {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.api
}

// send delivers c through the connected client
func (b *Bot) send(c tgbotapi.Chattable) error {
	api := b.currentAPI()
	if api == nil {
		return nil // Not connected
	}
	_, err := api.Send(c)
	return err
}

// request performs a call whose result carries no message
func (b *Bot) request(c tgbotapi.Chattable) {
	api := b.currentAPI()
	if api == nil {
		return
	}
	if _, err := api.Request(c); err != nil {
		b.logger.Warn("Telegram request failed", zap.Error(err))
	}
}

// reply sends text with an optional reply markup
func (b *Bot) reply(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if err := b.send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}
