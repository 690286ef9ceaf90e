package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"myspace/internal/conversation"
)

// HandleUpdate routes a single update. Updates from other chats than the
// allowed one are dropped; updates for the same chat are serialized.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	chatID, kind := updateChat(update)
	if chatID == 0 {
		return
	}

	if !b.isAllowed(chatID) {
		b.metrics.RecordUpdate(kind, false)
		b.logger.Debug("Dropping update from unauthorized chat", zap.Int64("chat_id", chatID))
		return
	}
	b.metrics.RecordUpdate(kind, true)

	unlock := b.lockChat(chatID)
	defer unlock()

	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}
	b.handleMessage(ctx, update.Message)
}

func updateChat(update tgbotapi.Update) (int64, string) {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID, "callback"
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, "message"
	}
	return 0, ""
}

func (b *Bot) isAllowed(chatID int64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.allowedID == nil || *b.allowedID == 0 || *b.allowedID == chatID
}

func (b *Bot) lockChat(chatID int64) func() {
	b.chatMu.Lock()
	l, ok := b.chatLocks[chatID]
	if !ok {
		l = &sync.Mutex{}
		b.chatLocks[chatID] = l
	}
	b.chatMu.Unlock()

	l.Lock()
	return l.Unlock
}

// handleMessage processes a single message
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.fail(chatID, fmt.Errorf("panic: %v", r))
		}
	}()

	if message.Location != nil {
		b.handleLocation(ctx, message)
		return
	}

	text := strings.TrimSpace(message.Text)

	// Menu buttons win over any active conversation
	if command, ok := menuCommands[text]; ok {
		b.handleCommand(ctx, message, command, "")
		return
	}

	state, active := b.states.Get(chatID)

	if message.IsCommand() {
		command := message.Command()
		if active && (command == "skip" || command == "done") {
			b.continueConversation(ctx, chatID, state, messageInput(message))
			return
		}
		b.handleCommand(ctx, message, command, message.CommandArguments())
		return
	}

	if active {
		b.continueConversation(ctx, chatID, state, messageInput(message))
		return
	}

	b.reply(chatID, "Выбери действие в меню 👇", mainMenuKeyboard())
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID

	defer func() {
		if r := recover(); r != nil {
			b.fail(chatID, fmt.Errorf("panic: %v", r))
		}
	}()

	// Answer the callback query to remove loading state
	b.request(tgbotapi.NewCallback(query.ID, ""))

	state, ok := b.states.Get(chatID)
	if !ok {
		return
	}

	in, ok := callbackInput(state, query.Data)
	if !ok {
		b.logger.Debug("Ignoring stale callback",
			zap.Int64("chat_id", chatID),
			zap.String("callback_data", query.Data),
			zap.String("flow", string(state.Flow())),
			zap.String("step", string(state.CurrentStep())),
		)
		return
	}

	b.continueConversation(ctx, chatID, state, in)
}

// continueConversation feeds in to the active state; any error ends the conversation
func (b *Bot) continueConversation(ctx context.Context, chatID int64, state conversation.State, in input) {
	if err := b.handleConversation(ctx, chatID, state, in); err != nil {
		b.fail(chatID, err)
	}
}

// fail clears the chat's conversation and reports a generic error
func (b *Bot) fail(chatID int64, err error) {
	b.logger.Error("Failed to process update", zap.Int64("chat_id", chatID), zap.Error(err))
	b.states.Delete(chatID)
	b.reply(chatID, "Ошибка. Попробуй позже.", mainMenuKeyboard())
}

func messageInput(message *tgbotapi.Message) input {
	text := strings.TrimSpace(message.Text)
	if message.IsCommand() {
		text = "/" + message.Command()
	}
	return input{
		text:   text,
		photos: message.Photo,
		skip:   isSkip(text),
		done:   isDone(text),
	}
}

func isSkip(text string) bool {
	switch strings.ToLower(text) {
	case "/skip", "skip", "пропустить":
		return true
	}
	return false
}

func isDone(text string) bool {
	switch strings.ToLower(text) {
	case "/done", "done", "готово":
		return true
	}
	return false
}
