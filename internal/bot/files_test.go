package bot

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileProxy(t *testing.T, b *Bot) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	b.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestFileProxy_StreamsTelegramFile(t *testing.T) {
	telegram := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/file/abc" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("photo-bytes"))
	}))
	defer telegram.Close()

	b, api, _ := newTestBot(t, WithHTTPClient(telegram.Client()))
	api.fileBase = telegram.URL
	srv := newFileProxy(t, b)

	resp, err := http.Get(srv.URL + "/api/telegram/files?file_id=abc")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "photo-bytes", string(body))
}

func TestFileProxy_Errors(t *testing.T) {
	b, _, _ := newTestBot(t)
	srv := newFileProxy(t, b)

	tests := []struct {
		name   string
		query  string
		setup  func()
		status int
	}{
		{"missing file id", "", nil, http.StatusBadRequest},
		{"unknown file", "?file_id=abc", nil, http.StatusNotFound},
		{"not connected", "?file_id=abc", func() { b.disconnect() }, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			resp, err := http.Get(srv.URL + "/api/telegram/files" + tt.query)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
