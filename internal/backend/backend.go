package backend

import (
	"context"
	"errors"
	"fmt"
	"io"

	"myspace/internal/models"
)

// ErrTimeout is returned when a backend call exceeds its deadline
var ErrTimeout = errors.New("backend request timed out")

// StatusError is returned for non-2xx backend responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.StatusCode, e.Body)
}

// Backend defines the diary and nutrition operations used by the bot
type Backend interface {
	// Diary operations

	// ListDiaryEntries returns entries newest first; an empty date lists all entries
	ListDiaryEntries(ctx context.Context, date string) ([]models.DiaryEntry, error)
	CreateDiaryEntry(ctx context.Context, entry models.NewDiaryEntry) (*models.DiaryEntry, error)
	UpdateDiaryEntry(ctx context.Context, id int64, patch models.DiaryEntryPatch) (*models.DiaryEntry, error)

	// Product operations
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, product models.NewProduct) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error)

	// File operations

	// UploadFile stores a file and returns its hosted URL
	UploadFile(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	// FetchFile downloads a file hosted by the backend
	FetchFile(ctx context.Context, rawURL string) ([]byte, error)
}
