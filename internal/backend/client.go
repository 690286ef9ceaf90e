package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"myspace/internal/metrics"
	"myspace/internal/models"
)

const (
	// DefaultBaseURL is used when TELEGRAM_BACKEND_URL is not set
	DefaultBaseURL = "http://localhost:5000/api"
	// DefaultTimeout bounds every backend call
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 4 << 10
)

// Client talks to the diary/nutrition REST backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithTimeout overrides the per-call timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithMetrics records call latency and failures
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Origin returns the API root without its trailing /api segment
func (c *Client) Origin() string {
	return strings.TrimSuffix(c.baseURL, "/api")
}

// ListDiaryEntries returns diary entries, optionally filtered by date
func (c *Client) ListDiaryEntries(ctx context.Context, date string) ([]models.DiaryEntry, error) {
	path := "/diary"
	if date != "" {
		path += "?date=" + url.QueryEscape(date)
	}
	var entries []models.DiaryEntry
	if err := c.doJSON(ctx, "list_diary_entries", http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateDiaryEntry creates a diary entry
func (c *Client) CreateDiaryEntry(ctx context.Context, entry models.NewDiaryEntry) (*models.DiaryEntry, error) {
	var created models.DiaryEntry
	if err := c.doJSON(ctx, "create_diary_entry", http.MethodPost, "/diary", entry, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateDiaryEntry applies patch to the entry with the given id
func (c *Client) UpdateDiaryEntry(ctx context.Context, id int64, patch models.DiaryEntryPatch) (*models.DiaryEntry, error) {
	var updated models.DiaryEntry
	path := "/diary/" + strconv.FormatInt(id, 10)
	if err := c.doJSON(ctx, "update_diary_entry", http.MethodPut, path, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ListProducts returns all products
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.doJSON(ctx, "list_products", http.MethodGet, "/nutrition/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct creates a product
func (c *Client) CreateProduct(ctx context.Context, product models.NewProduct) (*models.Product, error) {
	var created models.Product
	if err := c.doJSON(ctx, "create_product", http.MethodPost, "/nutrition/products", product, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct applies patch to the product with the given id
func (c *Client) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	var updated models.Product
	path := "/nutrition/products/" + strconv.FormatInt(id, 10)
	if err := c.doJSON(ctx, "update_product", http.MethodPut, path, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// UploadFile posts r as the multipart field "file" to the uploads endpoint
func (c *Client) UploadFile(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	start := time.Now()
	hostedURL, err := c.upload(ctx, filename, contentType, r)
	c.metrics.RecordBackendCall("upload_file", time.Since(start), err)
	return hostedURL, err
}

func (c *Client) upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to create multipart part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to copy upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish multipart body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Origin()+"/uploads", &body)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, req, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", errors.New("upload response has no url")
	}
	return resp.URL, nil
}

// FetchFile downloads a backend-hosted file. Loopback URLs are rewritten to the backend origin.
func (c *Client) FetchFile(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.normalizeFileURL(rawURL), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build fetch request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.wrapTransportError(ctx, req, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, readStatusError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.wrapTransportError(ctx, req, err)
	}
	return data, nil
}

// IsLocalURL reports whether rawURL points at a backend that Telegram cannot reach
func IsLocalURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "http" {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1":
		return true
	case "backend":
		return u.Port() != ""
	}
	return false
}

func (c *Client) normalizeFileURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	host := u.Hostname()
	if u.Scheme != "http" || (host != "localhost" && host != "127.0.0.1") {
		return rawURL
	}

	origin, err := url.Parse(c.Origin())
	if err != nil {
		return rawURL
	}
	u.Scheme = origin.Scheme
	u.Host = origin.Host
	u.Path = strings.TrimRight(origin.Path, "/") + u.Path
	return u.String()
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	start := time.Now()
	err := c.requestJSON(ctx, method, path, in, out)
	c.metrics.RecordBackendCall(op, time.Since(start), err)
	if err != nil {
		c.logger.Debug("Backend call failed", zap.String("operation", op), zap.Error(err))
	}
	return err
}

func (c *Client) requestJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.wrapTransportError(ctx, req, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readStatusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return c.wrapTransportError(ctx, req, err)
		}
		return fmt.Errorf("failed to decode response from %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (c *Client) wrapTransportError(ctx context.Context, req *http.Request, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ErrTimeout)
	}
	return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
}

func readStatusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
}

var _ Backend = (*Client)(nil)
