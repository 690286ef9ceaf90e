package bot

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myspace/internal/conversation"
	"myspace/internal/settings"
)

func TestCallbackInput(t *testing.T) {
	moodStep := &conversation.AddDiaryEntry{Step: conversation.StepMood}
	photoStep := &conversation.AddDiaryEntry{Step: conversation.StepPhotos}
	prosStep := &conversation.AddFoodProduct{Step: conversation.StepPros}

	tests := []struct {
		name   string
		state  conversation.State
		data   string
		want   input
		wantOK bool
	}{
		{"mood value", moodStep, "diary:mood:4", input{text: "4", button: true}, true},
		{"mood skip", moodStep, "diary:mood:skip", input{skip: true, button: true}, true},
		{"photo done", photoStep, "diary:photo:done", input{done: true, button: true}, true},
		{"bare skip prefix", prosStep, "food:skip", input{skip: true, button: true}, true},
		{"wrong step", photoStep, "diary:mood:4", input{}, false},
		{"wrong flow", moodStep, "food:assessment:positive", input{}, false},
		{"prefix lookalike", moodStep, "diary:moodx:4", input{}, false},
		{"step without buttons", &conversation.AddDiaryEntry{Step: conversation.StepText}, "diary:mood:4", input{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := callbackInput(tt.state, tt.data)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRecentLimit(t *testing.T) {
	tests := []struct {
		args string
		want int
	}{
		{"", 5},
		{"3", 3},
		{"0", 1},
		{"-4", 1},
		{"50", 20},
		{"abc", 5},
		{" 7 extra", 7},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRecentLimit(tt.args))
		})
	}
}

func TestSkipAndDoneWords(t *testing.T) {
	for _, word := range []string{"/skip", "skip", "Пропустить"} {
		assert.True(t, isSkip(word), word)
	}
	for _, word := range []string{"/done", "DONE", "готово"} {
		assert.True(t, isDone(word), word)
	}
	assert.False(t, isSkip("maybe"))
	assert.False(t, isDone("later"))
}

func TestParseMood(t *testing.T) {
	mood, ok := parseMood("5")
	assert.True(t, ok)
	assert.Equal(t, 5, mood)

	for _, bad := range []string{"0", "6", "good", ""} {
		_, ok := parseMood(bad)
		assert.False(t, ok, bad)
	}
}

func TestOffsetName(t *testing.T) {
	assert.Equal(t, "UTC+03:00", offsetName(180))
	assert.Equal(t, "UTC-00:30", offsetName(-30))
	assert.Equal(t, "UTC+05:45", offsetName(345))
}

func TestBot_LocalDateTime(t *testing.T) {
	b, _, _ := newTestBot(t)

	date, clock := b.localDateTime()
	assert.Equal(t, "2026-10-19", date)
	assert.Equal(t, "12:30", clock)

	offset := -600
	b.ApplySettings(&settings.Settings{Token: "t", TimezoneOffsetMinutes: &offset})
	date, clock = b.localDateTime()
	assert.Equal(t, "2026-10-18", date)
	assert.Equal(t, "23:30", clock)

	// A zone name wins over the offset
	b.ApplySettings(&settings.Settings{Token: "t", TimezoneOffsetMinutes: &offset, TimezoneIANA: "UTC"})
	_, clock = b.localDateTime()
	assert.Equal(t, "09:30", clock)
}

func TestBot_PhotoFile(t *testing.T) {
	b, _, be := newTestBot(t)
	be.files = map[string][]byte{"http://localhost:5000/uploads/a.jpg": []byte("local")}
	ctx := context.Background()

	got, err := b.photoFile(ctx, "AgACAgIAAxkBAAI")
	require.NoError(t, err)
	assert.Equal(t, tgbotapi.FileID("AgACAgIAAxkBAAI"), got)

	got, err = b.photoFile(ctx, "https://cdn.example.com/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, tgbotapi.FileURL("https://cdn.example.com/a.jpg"), got)

	got, err = b.photoFile(ctx, "http://localhost:5000/uploads/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, tgbotapi.FileBytes{Name: "photo.jpg", Bytes: []byte("local")}, got)

	_, err = b.photoFile(ctx, "http://localhost:5000/uploads/missing.jpg")
	assert.Error(t, err)
}

func TestBot_SendPhotoSafeFallsBackToText(t *testing.T) {
	b, api, _ := newTestBot(t)

	b.sendPhotoSafe(context.Background(), chatID, "http://localhost:5000/uploads/missing.jpg", "caption")

	assert.Empty(t, api.photos())
	assert.Equal(t, []string{"caption"}, api.texts())
}
