package bot

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"myspace/internal/backend"
	"myspace/internal/conversation"
	"myspace/internal/metrics"
	"myspace/internal/settings"
)

const fileDownloadTimeout = 30 * time.Second

// Option customizes a Bot
type Option func(*Bot)

// WithAPIFactory replaces the Telegram connector
func WithAPIFactory(f APIFactory) Option {
	return func(b *Bot) {
		b.newAPI = f
	}
}

// WithZoneFinder sets the coordinates to zone resolver
func WithZoneFinder(z ZoneFinder) Option {
	return func(b *Bot) {
		b.zones = z
	}
}

// WithHTTPClient sets the client used to download Telegram files
func WithHTTPClient(c *http.Client) Option {
	return func(b *Bot) {
		b.httpClient = c
	}
}

// WithMetrics sets the activity recorder
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bot) {
		b.metrics = m
	}
}

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

// NewTelegramAPI connects to the Telegram Bot API
func NewTelegramAPI(token string) (TelegramAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return api, nil
}

// NewBot creates the engine. It connects to Telegram only when Run is called.
func NewBot(be backend.Backend, store *settings.Store, logger *zap.Logger, opts ...Option) *Bot {
	b := &Bot{
		newAPI:     NewTelegramAPI,
		backend:    be,
		store:      store,
		states:     conversation.NewTable(),
		httpClient: &http.Client{Timeout: fileDownloadTimeout},
		now:        time.Now,
		logger:     logger,
		baseCtx:    context.Background(),
		chatLocks:  make(map[int64]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ApplySettings refreshes the cached access and timezone settings
func (b *Bot) ApplySettings(st *settings.Settings) {
	if st == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allowedID = st.AllowedUserID
	b.tzIANA = st.TimezoneIANA
	b.tzOffset = st.TimezoneOffsetMinutes
}
