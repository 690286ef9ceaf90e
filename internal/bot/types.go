package bot

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"myspace/internal/backend"
	"myspace/internal/conversation"
	"myspace/internal/metrics"
	"myspace/internal/settings"
)

// TelegramAPI defines the Telegram bot methods the engine needs.
// *tgbotapi.BotAPI satisfies it.
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// APIFactory connects to Telegram with the given token
type APIFactory func(token string) (TelegramAPI, error)

// ZoneFinder resolves coordinates to a zone identifier
type ZoneFinder interface {
	GetTimezoneName(lng float64, lat float64) string
}

// Bot is the conversation engine for diary and nutrition tracking
type Bot struct {
	newAPI     APIFactory
	backend    backend.Backend
	store      *settings.Store
	states     *conversation.Table
	zones      ZoneFinder
	httpClient *http.Client
	metrics    *metrics.Metrics
	now        func() time.Time
	logger     *zap.Logger

	mu        sync.RWMutex
	api       TelegramAPI
	token     string
	allowedID *int64
	tzIANA    string
	tzOffset  *int
	baseCtx   context.Context

	chatMu    sync.Mutex
	chatLocks map[int64]*sync.Mutex

	reconnecting atomic.Bool
	handlers     sync.WaitGroup
}

// input is a normalized user answer, from a message or an inline button
type input struct {
	text   string
	photos []tgbotapi.PhotoSize
	skip   bool
	done   bool
	button bool
}
