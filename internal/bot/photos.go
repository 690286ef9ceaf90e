package bot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"myspace/internal/backend"
)

const relayFilename = "photo.jpg"

// relayPhoto copies a Telegram photo into backend storage and returns its hosted URL.
// On any failure it returns false and the caller keeps the Telegram file id.
func (b *Bot) relayPhoto(ctx context.Context, fileID string) (string, bool) {
	hosted, err := b.uploadTelegramFile(ctx, fileID)
	b.metrics.RecordPhotoRelay(err == nil)
	if err != nil {
		b.logger.Warn("Failed to relay photo", zap.String("file_id", fileID), zap.Error(err))
		return "", false
	}
	return hosted, true
}

func (b *Bot) uploadTelegramFile(ctx context.Context, fileID string) (string, error) {
	api := b.currentAPI()
	if api == nil {
		return "", fmt.Errorf("bot is not connected")
	}

	fileURL, err := api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("file download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "image/jpeg"
	}

	return b.backend.UploadFile(ctx, relayFilename, contentType, bytes.NewReader(data))
}

// sendPhotoSafe sends a stored photo reference, degrading to a text message on failure
func (b *Bot) sendPhotoSafe(ctx context.Context, chatID int64, ref, caption string) {
	photo, err := b.photoFile(ctx, ref)
	if err == nil {
		msg := tgbotapi.NewPhoto(chatID, photo)
		msg.Caption = caption
		err = b.send(msg)
	}
	if err == nil {
		return
	}

	b.logger.Warn("Failed to send photo", zap.Error(err), zap.Int64("chat_id", chatID))
	if caption != "" {
		b.reply(chatID, caption, nil)
	}
}

// photoFile picks how Telegram should receive ref: by file id, by URL, or as uploaded bytes
func (b *Bot) photoFile(ctx context.Context, ref string) (tgbotapi.RequestFileData, error) {
	if !strings.HasPrefix(ref, "http") {
		return tgbotapi.FileID(ref), nil
	}
	if !backend.IsLocalURL(ref) {
		return tgbotapi.FileURL(ref), nil
	}

	// Telegram cannot reach the backend host, so upload the bytes instead
	data, err := b.backend.FetchFile(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", ref, err)
	}
	return tgbotapi.FileBytes{Name: relayFilename, Bytes: data}, nil
}
