package bot

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

// RegisterRoutes mounts the Telegram file proxy used by the web client
// to show photos stored as raw file ids.
func (b *Bot) RegisterRoutes(r chi.Router) {
	r.Get("/api/telegram/files", b.handleFileProxy)
}

func (b *Bot) handleFileProxy(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("file_id")
	if fileID == "" {
		writeError(w, r, http.StatusBadRequest, "file_id is required")
		return
	}

	api := b.currentAPI()
	if api == nil {
		writeError(w, r, http.StatusInternalServerError, "Telegram token is missing")
		return
	}

	fileURL, err := api.GetFileDirectURL(fileID)
	if err != nil {
		b.logger.Warn("Failed to resolve Telegram file", zap.String("file_id", fileID), zap.Error(err))
		writeError(w, r, http.StatusNotFound, "Telegram file not found")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, fileURL, nil)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to proxy telegram file")
		return
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		b.logger.Error("Telegram file proxy error", zap.String("file_id", fileID), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Failed to proxy telegram file")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		writeError(w, r, resp.StatusCode, "Failed to download telegram file")
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cross-Origin-Resource-Policy", "cross-origin")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, resp.Body); err != nil {
		b.logger.Warn("Telegram file proxy interrupted", zap.String("file_id", fileID), zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": message})
}
