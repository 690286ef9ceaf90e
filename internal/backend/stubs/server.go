package stubs

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"myspace/internal/models"
)

const maxUploadSize = 8 << 20

type upload struct {
	contentType string
	data        []byte
}

// Server is an in-memory implementation of the diary/nutrition REST API
type Server struct {
	mu       sync.RWMutex
	diary    map[int64]models.DiaryEntry
	products map[int64]models.Product
	uploads  map[string]upload
	nextID   int64

	validate *validator.Validate
	now      func() time.Time
	logger   *zap.Logger
}

// NewServer creates an empty in-memory backend
func NewServer(logger *zap.Logger) *Server {
	return &Server{
		diary:    make(map[int64]models.DiaryEntry),
		products: make(map[int64]models.Product),
		uploads:  make(map[string]upload),
		validate: validator.New(),
		now:      time.Now,
		logger:   logger,
	}
}

// Routes returns the HTTP handler serving /api/* and /uploads/*
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/diary", s.listDiary)
		r.Post("/diary", s.createDiary)
		r.Put("/diary/{id}", s.updateDiary)

		r.Get("/nutrition/products", s.listProducts)
		r.Post("/nutrition/products", s.createProduct)
		r.Put("/nutrition/products/{id}", s.updateProduct)
	})

	r.Post("/uploads", s.createUpload)
	r.Get("/uploads/{name}", s.getUpload)
	return r
}

// DiaryEntries returns a snapshot of stored entries, newest first
func (s *Server) DiaryEntries() []models.DiaryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedDiary("")
}

// Products returns a snapshot of stored products ordered by name
func (s *Server) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedProducts()
}

func (s *Server) sortedDiary(date string) []models.DiaryEntry {
	entries := make([]models.DiaryEntry, 0, len(s.diary))
	for _, e := range s.diary {
		if date != "" && e.Date != date {
			continue
		}
		entries = append(entries, e)
	}

	// Sort by date, time, creation descending
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if a.Time != b.Time {
			return a.Time > b.Time
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return entries
}

func (s *Server) sortedProducts() []models.Product {
	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}

	// Sort by name
	sort.Slice(products, func(i, j int) bool {
		if products[i].Name != products[j].Name {
			return products[i].Name < products[j].Name
		}
		return products[i].ID < products[j].ID
	})
	return products
}

func (s *Server) listDiary(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	entries := s.sortedDiary(r.URL.Query().Get("date"))
	s.mu.RUnlock()

	render.JSON(w, r, entries)
}

func (s *Server) createDiary(w http.ResponseWriter, r *http.Request) {
	var req models.NewDiaryEntry
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	s.nextID++
	entry := models.DiaryEntry{
		ID:        s.nextID,
		Date:      req.Date,
		Time:      req.Time,
		Text:      req.Text,
		Mood:      req.Mood,
		PhotoURL:  req.PhotoURL,
		PhotoURLs: req.PhotoURLs,
		CreatedAt: s.now(),
	}
	s.diary[entry.ID] = entry
	s.mu.Unlock()

	s.logger.Debug("Diary entry created", zap.Int64("id", entry.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, entry)
}

func (s *Server) updateDiary(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var patch models.DiaryEntryPatch
	if !s.decode(w, r, &patch) {
		return
	}

	s.mu.Lock()
	entry, exists := s.diary[id]
	if exists {
		if patch.Text != nil {
			entry.Text = *patch.Text
		}
		if patch.Mood != nil {
			entry.Mood = patch.Mood
		}
		if patch.PhotoURL != nil {
			entry.PhotoURL = *patch.PhotoURL
		}
		if patch.PhotoURLs != nil {
			entry.PhotoURLs = patch.PhotoURLs
		}
		s.diary[id] = entry
	}
	s.mu.Unlock()

	if !exists {
		s.fail(w, r, http.StatusNotFound, "Entry not found")
		return
	}
	render.JSON(w, r, entry)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	products := s.sortedProducts()
	s.mu.RUnlock()

	render.JSON(w, r, products)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req models.NewProduct
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	s.nextID++
	product := models.Product{
		ID:         s.nextID,
		Name:       req.Name,
		Assessment: req.Assessment,
		Pros:       req.Pros,
		Cons:       req.Cons,
		Notes:      req.Notes,
		PhotoURL:   req.PhotoURL,
		PhotoURLs:  req.PhotoURLs,
		CreatedAt:  s.now(),
	}
	s.products[product.ID] = product
	s.mu.Unlock()

	s.logger.Debug("Product created", zap.Int64("id", product.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, product)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var patch models.ProductPatch
	if !s.decode(w, r, &patch) {
		return
	}

	s.mu.Lock()
	product, exists := s.products[id]
	if exists {
		if patch.Name != nil {
			product.Name = *patch.Name
		}
		if patch.Assessment != nil {
			product.Assessment = *patch.Assessment
		}
		if patch.Pros != nil {
			product.Pros = *patch.Pros
		}
		if patch.Cons != nil {
			product.Cons = *patch.Cons
		}
		if patch.Notes != nil {
			product.Notes = *patch.Notes
		}
		if patch.PhotoURL != nil {
			product.PhotoURL = *patch.PhotoURL
		}
		if patch.PhotoURLs != nil {
			product.PhotoURLs = patch.PhotoURLs
		}
		s.products[id] = product
	}
	s.mu.Unlock()

	if !exists {
		s.fail(w, r, http.StatusNotFound, "Product not found")
		return
	}
	render.JSON(w, r, product)
}

func (s *Server) createUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		s.fail(w, r, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "Failed to read file")
		return
	}

	ext := strings.ToLower(path.Ext(header.Filename))
	name := uuid.NewString() + ext
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	s.mu.Lock()
	s.uploads[name] = upload{contentType: contentType, data: data}
	s.mu.Unlock()

	s.logger.Debug("File uploaded", zap.String("name", name), zap.Int("size", len(data)))
	render.JSON(w, r, map[string]string{
		"url": "http://" + r.Host + "/uploads/" + name,
	})
}

func (s *Server) getUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.RLock()
	f, ok := s.uploads[name]
	s.mu.RUnlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", f.contentType)
	_, _ = w.Write(f.data)
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.fail(w, r, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.fail(w, r, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		s.fail(w, r, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}
