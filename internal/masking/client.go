package masking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shaiso/maskctl/internal/domain"
)

const (
	// DefaultAPIVersion — версия API, с которой работали исходные сценарии.
	DefaultAPIVersion = "v5.1.33"

	// DefaultPageSize — размер страницы для list-запросов.
	DefaultPageSize = 100

	defaultTimeout = 30 * time.Second

	// maxErrorBody — сколько байт тела ответа попадает в APIError.
	maxErrorBody = 512
)

// ClientConfig — параметры Client.
type ClientConfig struct {
	// EngineURL — адрес engine без суффикса /masking/api, например http://engine.local.
	EngineURL string

	// APIVersion — версия API (default: v5.1.33).
	APIVersion string

	// Timeout — таймаут одного HTTP-запроса (default: 30s).
	Timeout time.Duration

	// PageSize — размер страницы list-запросов (default: 100).
	PageSize int

	// HTTPClient переопределяет http.Client (тесты).
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client — HTTP-клиент masking API.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient создаёт клиент для masking API.
func NewClient(cfg ClientConfig) *Client {
	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.EngineURL, "/") + "/masking/api/" + version,
		pageSize:   pageSize,
		httpClient: httpClient,
		logger:     logger,
	}
}

// BaseURL возвращает базовый URL API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- HTTP helpers ---

type pageInfo struct {
	NumberOnPage int `json:"numberOnPage"`
	Total        int `json:"total"`
}

type pageResponse[T any] struct {
	PageInfo     pageInfo `json:"_pageInfo"`
	ResponseList []T      `json:"responseList"`
}

// listAll читает все страницы list-эндпоинта.
// Чтение заканчивается, когда прочитано total элементов или пришла пустая страница.
func listAll[T any](ctx context.Context, c *Client, sess domain.Session, path string) ([]T, error) {
	var all []T

	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page_number", strconv.Itoa(page))
		params.Set("page_size", strconv.Itoa(c.pageSize))

		var resp pageResponse[T]
		if err := c.do(ctx, sess, http.MethodGet, path+"?"+params.Encode(), nil, &resp); err != nil {
			return nil, err
		}

		all = append(all, resp.ResponseList...)

		if len(resp.ResponseList) == 0 || len(all) >= resp.PageInfo.Total {
			break
		}
	}

	if all == nil {
		all = []T{}
	}
	return all, nil
}

func (c *Client) get(ctx context.Context, sess domain.Session, path string, result any) error {
	return c.do(ctx, sess, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, sess domain.Session, path string, body, result any) error {
	return c.do(ctx, sess, http.MethodPost, path, body, result)
}

func (c *Client) put(ctx context.Context, sess domain.Session, path string, body, result any) error {
	return c.do(ctx, sess, http.MethodPut, path, body, result)
}

// do выполняет авторизованный запрос и декодирует JSON-ответ в result.
func (c *Client) do(ctx context.Context, sess domain.Session, method, path string, body, result any) error {
	if !sess.Valid() {
		return fmt.Errorf("%s %s: %w: empty session token", method, path, ErrUnauthorized)
	}
	return c.roundTrip(ctx, sess.Token, method, path, body, result)
}

func (c *Client) roundTrip(ctx context.Context, token, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("engine request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(started),
	)

	if err := checkError(method, path, resp); err != nil {
		return err
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: %s %s: failed to decode response: %w", ErrRequestFailed, method, path, err)
	}
	return nil
}

func checkError(method, path string, resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(data)),
	}
}

// timeLayouts — форматы времени, встречающиеся в ответах engine.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
}

// parseTime разбирает время из ответа engine. Пустое или нераспознанное значение даёт nil.
func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
