package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"myspace/internal/models"
	"myspace/internal/settings"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

// fakeAPI records everything the bot sends to Telegram
type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	fileBase string
	updates  chan tgbotapi.Update
	stopOnce sync.Once
	stopped  bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 16)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fileBase == "" {
		return "", errors.New("file not available")
	}
	return f.fileBase + "/file/" + fileID, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.stopOnce.Do(func() {
		f.mu.Lock()
		f.stopped = true
		f.mu.Unlock()
		close(f.updates)
	})
}

func (f *fakeAPI) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// texts returns the text of every plain message sent
func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (f *fakeAPI) lastText() string {
	texts := f.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

func (f *fakeAPI) photos() []tgbotapi.PhotoConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.PhotoConfig
	for _, c := range f.sent {
		if p, ok := c.(tgbotapi.PhotoConfig); ok {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeAPI) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type diaryUpdate struct {
	id    int64
	patch models.DiaryEntryPatch
}

type productUpdate struct {
	id    int64
	patch models.ProductPatch
}

// fakeBackend keeps fixtures in memory and records every write
type fakeBackend struct {
	mu sync.Mutex

	diary    []models.DiaryEntry
	products []models.Product
	files    map[string][]byte

	createdDiary    []models.NewDiaryEntry
	updatedDiary    []diaryUpdate
	createdProducts []models.NewProduct
	updatedProducts []productUpdate
	uploads         [][]byte

	err        error
	panicOnAdd bool
}

func (f *fakeBackend) ListDiaryEntries(_ context.Context, date string) ([]models.DiaryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.DiaryEntry
	for _, e := range f.diary {
		if date == "" || e.Date == date {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeBackend) CreateDiaryEntry(_ context.Context, entry models.NewDiaryEntry) (*models.DiaryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOnAdd {
		panic("backend exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	f.createdDiary = append(f.createdDiary, entry)
	return &models.DiaryEntry{ID: int64(len(f.createdDiary)), Date: entry.Date, Time: entry.Time, Text: entry.Text}, nil
}

func (f *fakeBackend) UpdateDiaryEntry(_ context.Context, id int64, patch models.DiaryEntryPatch) (*models.DiaryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.updatedDiary = append(f.updatedDiary, diaryUpdate{id: id, patch: patch})
	return &models.DiaryEntry{ID: id}, nil
}

func (f *fakeBackend) ListProducts(context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Product(nil), f.products...), nil
}

func (f *fakeBackend) CreateProduct(_ context.Context, product models.NewProduct) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.createdProducts = append(f.createdProducts, product)
	return &models.Product{ID: int64(len(f.createdProducts)), Name: product.Name}, nil
}

func (f *fakeBackend) UpdateProduct(_ context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.updatedProducts = append(f.updatedProducts, productUpdate{id: id, patch: patch})
	return &models.Product{ID: id}, nil
}

func (f *fakeBackend) UploadFile(_ context.Context, _, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, data)
	return fmt.Sprintf("http://localhost:5000/uploads/%d.jpg", len(f.uploads)), nil
}

func (f *fakeBackend) FetchFile(_ context.Context, rawURL string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[rawURL]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

// fakeZones answers every lookup with zone and records the last query
type fakeZones struct {
	zone     string
	lng, lat float64
}

func (z *fakeZones) GetTimezoneName(lng float64, lat float64) string {
	z.lng, z.lat = lng, lat
	return z.zone
}

// newTestBot returns a connected bot whose clock reads 12:30 at UTC+3
func newTestBot(t *testing.T, opts ...Option) (*Bot, *fakeAPI, *fakeBackend) {
	t.Helper()

	api := newFakeAPI()
	be := &fakeBackend{}
	store := settings.NewStore(filepath.Join(t.TempDir(), "settings.json"), zap.NewNop())

	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithAPIFactory(func(string) (TelegramAPI, error) { return api, nil }),
	}
	b := NewBot(be, store, zap.NewNop(), append(base, opts...)...)

	offset := 180
	b.ApplySettings(&settings.Settings{Token: "test-token", TimezoneOffsetMinutes: &offset})
	b.api = api
	b.token = "test-token"
	return b, api, be
}

func messageUpdate(chatID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: chatID},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		length := len(text)
		if i := strings.IndexByte(text, ' '); i > 0 {
			length = i
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	}
	return tgbotapi.Update{Message: msg}
}

func callbackUpdate(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

func photoUpdate(chatID int64, fileID string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: chatID},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Photo: []tgbotapi.PhotoSize{
			{FileID: fileID + "-small", Width: 90, Height: 90},
			{FileID: fileID, Width: 1280, Height: 1280},
		},
	}}
}

func locationUpdate(chatID int64, lat, lon float64) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: chatID},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Location:  &tgbotapi.Location{Latitude: lat, Longitude: lon},
	}}
}

func handleAll(b *Bot, updates ...tgbotapi.Update) {
	for _, u := range updates {
		b.HandleUpdate(context.Background(), u)
	}
}
