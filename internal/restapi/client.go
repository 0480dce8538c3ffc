// Package restapi реализует клиент удаленного REST API маркетплейса.
//
// Пакет отвечает только за транспорт: авторизация по bearer-токену,
// сериализация запросов, нормализация форм ответов и классификация
// ошибок. Бизнес-правила живут в core/services.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Heyaski/sofa-marketplace/internal/ports"
)

// Client — клиент для взаимодействия с REST API маркетплейса.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         ports.TokenStore
	onUnauthorized func()
	log            *slog.Logger
}

// Option — функциональная опция для настройки Client.
type Option func(*Client)

// WithHTTPClient подменяет используемый http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTokenStore устанавливает хранилище токенов авторизации.
func WithTokenStore(ts ports.TokenStore) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithUnauthorizedHandler устанавливает обработчик истечения авторизации.
// Обработчик вызывается после очистки токенов при ответе 401 на любой
// запрос, кроме самих запросов входа и регистрации.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// WithLogger устанавливает логгер клиента.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient создает новый экземпляр Client для указанного базового URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// isAuthRequest сообщает, является ли путь запросом входа или регистрации.
// Для таких запросов 401 означает неверные учетные данные, а не истекшую
// сессию, и не должен приводить к сбросу токенов.
func isAuthRequest(path string) bool {
	return strings.Contains(path, "/auth/login/") || strings.Contains(path, "/users/register/")
}

// do выполняет один HTTP-запрос к API: прикрепляет bearer-токен,
// сериализует тело, декодирует ответ в out и классифицирует ошибки.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("не удалось сериализовать тело запроса: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("не удалось создать запрос: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		if tokens, ok := c.tokens.Load(); ok && tokens.Access != "" {
			req.Header.Set("Authorization", "Bearer "+tokens.Access)
		}
	}

	c.log.DebugContext(ctx, "Запрос к API", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("запрос %s %s завершился с ошибкой: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("не удалось прочитать тело ответа: %w", err)
	}

	c.log.DebugContext(ctx, "Ответ API", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized && !isAuthRequest(path) {
		// Сессия истекла: сбрасываем токены и уведомляем приложение.
		if c.tokens != nil {
			if clearErr := c.tokens.Clear(); clearErr != nil {
				c.log.WarnContext(ctx, "Не удалось очистить токены", "error", clearErr)
			}
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &APIError{StatusCode: resp.StatusCode, Body: respBody}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: respBody}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("не удалось декодировать ответ %s %s: %w", method, path, err)
	}
	return nil
}

// get выполняет GET-запрос.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// post выполняет POST-запрос.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// put выполняет PUT-запрос.
func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// delete выполняет DELETE-запрос.
func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
