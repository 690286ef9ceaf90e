package stubs

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"myspace/internal/models"
)

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_DiaryOrdering(t *testing.T) {
	s := NewServer(zap.NewNop())
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	h := s.Routes()

	bodies := []string{
		`{"date":"2024-05-01","time":"09:00","text":"morning"}`,
		`{"date":"2024-05-02","time":"08:00","text":"next day"}`,
		`{"date":"2024-05-01","time":"21:00","text":"evening"}`,
		`{"date":"2024-05-01","time":"21:00","text":"evening again"}`,
	}
	for _, b := range bodies {
		rec := do(t, h, http.MethodPost, "/api/diary", b)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(t, h, http.MethodGet, "/api/diary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []models.DiaryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))

	var texts []string
	for _, e := range entries {
		texts = append(texts, e.Text)
	}
	assert.Equal(t, []string{"next day", "evening again", "evening", "morning"}, texts)

	rec = do(t, h, http.MethodGet, "/api/diary?date=2024-05-02", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "next day", entries[0].Text)
}

func TestServer_DiaryValidation(t *testing.T) {
	h := NewServer(zap.NewNop()).Routes()

	tests := []struct {
		name string
		body string
	}{
		{"missing text", `{"date":"2024-05-01","time":"09:00"}`},
		{"missing date", `{"time":"09:00","text":"x"}`},
		{"mood out of range", `{"date":"2024-05-01","time":"09:00","text":"x","mood":9}`},
		{"too many photos", `{"date":"2024-05-01","time":"09:00","text":"x","photo_urls":["a","b","c","d"]}`},
		{"not json", `text`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/diary", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServer_UpdateDiaryKeepsUnsetFields(t *testing.T) {
	s := NewServer(zap.NewNop())
	h := s.Routes()

	rec := do(t, h, http.MethodPost, "/api/diary", `{"date":"2024-05-01","time":"09:00","text":"old","mood":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/diary/1", `{"mood":4}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	entries := s.DiaryEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "old", entries[0].Text)
	require.NotNil(t, entries[0].Mood)
	assert.Equal(t, 4, *entries[0].Mood)

	rec = do(t, h, http.MethodPut, "/api/diary/42", `{"text":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/diary/abc", `{"text":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Products(t *testing.T) {
	s := NewServer(zap.NewNop())
	h := s.Routes()

	for _, b := range []string{
		`{"name":"Yogurt","assessment":"neutral"}`,
		`{"name":"Apple","assessment":"positive","pros":"Fresh"}`,
	} {
		rec := do(t, h, http.MethodPost, "/api/nutrition/products", b)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(t, h, http.MethodPost, "/api/nutrition/products", `{"name":"Chips","assessment":"tasty"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/nutrition/products", "")
	var products []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 2)
	assert.Equal(t, "Apple", products[0].Name)
	assert.Equal(t, "Yogurt", products[1].Name)

	rec = do(t, h, http.MethodPut, "/api/nutrition/products/1", `{"assessment":"negative","notes":"too sour"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/nutrition/products/1", `{"assessment":"meh"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	yogurt := s.Products()[1]
	assert.Equal(t, models.AssessmentNegative, yogurt.Assessment)
	assert.Equal(t, "too sour", yogurt.Notes)
	assert.Equal(t, "Yogurt", yogurt.Name)
}

func TestServer_Uploads(t *testing.T) {
	h := NewServer(zap.NewNop()).Routes()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.URL, "http://example.com/uploads/"))
	assert.True(t, strings.HasSuffix(resp.URL, ".jpg"))

	path := strings.TrimPrefix(resp.URL, "http://example.com")
	get := do(t, h, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, "jpeg-bytes", get.Body.String())

	missing := do(t, h, http.MethodPost, "/uploads", "")
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}
