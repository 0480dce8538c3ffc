package restapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError представляет ответ API со статусом вне диапазона 2xx.
// Тело сохраняется как есть для последующего разбора бизнес-правил.
type APIError struct {
	StatusCode int
	Body       []byte
}

// Error реализует интерфейс error.
func (e *APIError) Error() string {
	msg := e.Message()
	if msg == "" {
		return fmt.Sprintf("api: статус %d", e.StatusCode)
	}
	return fmt.Sprintf("api: статус %d: %s", e.StatusCode, msg)
}

// Message извлекает человекочитаемое сообщение из тела ошибки.
// API возвращает его в полях detail или error; ошибки валидации DRF
// приходят как словарь поле -> список строк.
func (e *APIError) Message() string {
	if len(e.Body) == 0 {
		return ""
	}

	var envelope struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &envelope); err == nil {
		if envelope.Detail != "" {
			return envelope.Detail
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}

	// Ошибки валидации: {"basket_id": ["..."], ...}
	var fields map[string][]string
	if err := json.Unmarshal(e.Body, &fields); err == nil {
		for _, msgs := range fields {
			if len(msgs) > 0 {
				return msgs[0]
			}
		}
	}

	return ""
}

// IsStatus сообщает, является ли ошибка ответом API с указанным статусом.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}
	return false
}

// IsUnauthorized сообщает, что запрос был отклонен из-за истекшей
// или отсутствующей авторизации.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}
