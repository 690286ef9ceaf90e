package settings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (*chi.Mux, *Store) {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "settings.json"), zap.NewNop())
	r := chi.NewRouter()
	NewHandler(store, zap.NewNop()).RegisterRoutes(r)
	return r, store
}

func doRequest(r http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/telegram/settings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_GetEmptyDefaults(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doRequest(r, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "", body["token"])
	assert.Nil(t, body["allowedUserId"])
	assert.Nil(t, body["timezoneOffsetMinutes"])
	assert.Equal(t, "", body["timezoneCity"])
	assert.Nil(t, body["timezoneIana"])
}

func TestHandler_PutStoresSettings(t *testing.T) {
	r, store := newTestRouter(t)

	rec := doRequest(r, http.MethodPut, `{"token":" abc ","allowedUserId":"111","timezoneOffsetMinutes":180,"timezoneCity":"москва"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	st, ok := store.Read()
	require.True(t, ok)
	assert.Equal(t, "abc", st.Token)
	require.NotNil(t, st.AllowedUserID)
	assert.Equal(t, int64(111), *st.AllowedUserID)
	require.NotNil(t, st.TimezoneOffsetMinutes)
	assert.Equal(t, 180, *st.TimezoneOffsetMinutes)
	assert.Equal(t, "москва", st.TimezoneCity)
	assert.Equal(t, "Europe/Moscow", st.TimezoneIANA)

	get := doRequest(r, http.MethodGet, "")
	var body map[string]any
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &body))
	assert.Equal(t, "abc", body["token"])
	assert.Equal(t, "Europe/Moscow", body["timezoneIana"])
}

func TestHandler_PutValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing token", `{"allowedUserId":1}`, "Token is required"},
		{"blank token", `{"token":"   "}`, "Token is required"},
		{"bad user id", `{"token":"t","allowedUserId":"abc"}`, "allowedUserId must be a number"},
		{"bad offset", `{"token":"t","timezoneOffsetMinutes":"later"}`, "timezoneOffsetMinutes must be a number"},
		{"unknown city", `{"token":"t","timezoneCity":"Atlantis"}`, "Unknown city for timezone"},
		{"broken body", `{"token":`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store := newTestRouter(t)

			rec := doRequest(r, http.MethodPut, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)

			_, ok := store.Read()
			assert.False(t, ok, "rejected request must not write settings")
		})
	}
}

func TestHandler_PutEmptyOptionalValues(t *testing.T) {
	r, store := newTestRouter(t)

	rec := doRequest(r, http.MethodPut, `{"token":"t","allowedUserId":"","timezoneOffsetMinutes":null,"timezoneCity":""}`)
	require.Equal(t, http.StatusOK, rec.Code)

	st, ok := store.Read()
	require.True(t, ok)
	assert.Nil(t, st.AllowedUserID)
	assert.Nil(t, st.TimezoneOffsetMinutes)
	assert.Empty(t, st.TimezoneIANA)
}
