package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"myspace/internal/settings"
)

var botCommands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Главное меню"},
	{Command: "add_diary", Description: "Добавить запись в дневник"},
	{Command: "diary_today", Description: "Записи за сегодня"},
	{Command: "diary_all", Description: "Последние записи"},
	{Command: "add_food", Description: "Добавить продукт"},
	{Command: "products", Description: "Список продуктов"},
	{Command: "edit_diary", Description: "Изменить запись"},
	{Command: "edit_product", Description: "Изменить продукт"},
	{Command: "timezone", Description: "Часовой пояс по геолокации"},
	{Command: "cancel", Description: "Отменить текущее действие"},
	{Command: "help", Description: "Помощь"},
}

// Run starts polling with the given settings and blocks until ctx is done.
// Without a usable token the bot stays idle until a settings reload provides one.
func (b *Bot) Run(ctx context.Context, st *settings.Settings) error {
	b.mu.Lock()
	b.baseCtx = ctx
	b.mu.Unlock()

	b.ApplySettings(st)

	switch {
	case st == nil || st.Token == "":
		b.logger.Error("Telegram bot token is missing. Set TELEGRAM_BOT_TOKEN or update the settings file")
	default:
		if err := b.connect(st.Token); err != nil {
			b.logger.Error("Failed to start bot", zap.Error(err))
		}
	}

	<-ctx.Done()
	b.logger.Info("Stopping bot")
	b.disconnect()
	b.handlers.Wait()
	return nil
}

// connect creates a Telegram client for token and starts polling
func (b *Bot) connect(token string) error {
	api, err := b.newAPI(token)
	if err != nil {
		return err
	}

	// Remove webhook (if any was set previously)
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.Warn("Failed to delete webhook", zap.Error(err))
	}
	if _, err := api.Request(tgbotapi.NewSetMyCommands(botCommands...)); err != nil {
		b.logger.Warn("Failed to register commands", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	b.mu.Lock()
	b.api = api
	b.token = token
	ctx := b.baseCtx
	b.mu.Unlock()

	go b.poll(ctx, updates)

	b.logger.Info("Bot started successfully. Waiting for updates...")
	return nil
}

// poll dispatches each update on its own goroutine until the channel closes
func (b *Bot) poll(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if ctx.Err() != nil {
			continue
		}
		b.handlers.Add(1)
		go func(u tgbotapi.Update) {
			defer b.handlers.Done()
			b.HandleUpdate(ctx, u)
		}(update)
	}
}

func (b *Bot) disconnect() {
	b.mu.Lock()
	api := b.api
	b.api = nil
	b.mu.Unlock()

	if api != nil {
		api.StopReceivingUpdates()
	}
}

// ReloadSettings re-reads the settings store. It always refreshes the cached
// access and timezone values and reconnects when the token changed.
func (b *Bot) ReloadSettings() {
	st, ok := b.store.Read()
	if !ok {
		b.logger.Warn("Settings reload skipped: no usable settings", zap.String("path", b.store.Path()))
		return
	}
	b.ApplySettings(st)

	b.mu.RLock()
	current := b.token
	ctx := b.baseCtx
	b.mu.RUnlock()

	if ctx.Err() != nil || st.Token == current {
		return
	}

	b.logger.Info("Telegram token changed. Restarting bot")
	b.reconnect(st.Token)
}

func (b *Bot) reconnect(token string) {
	if !b.reconnecting.CompareAndSwap(false, true) {
		b.logger.Warn("Reconnect already in progress")
		return
	}
	defer b.reconnecting.Store(false)

	b.disconnect()
	err := b.connect(token)
	b.metrics.RecordReconnect(err)
	if err != nil {
		b.logger.Error("Failed to reconnect bot", zap.Error(err))
	}
}
