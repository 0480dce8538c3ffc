package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
	"github.com/Heyaski/sofa-marketplace/internal/ports"
	"github.com/Heyaski/sofa-marketplace/internal/restapi"
)

// ErrEmptyMessage возвращается при попытке отправить пустое или
// состоящее из пробелов сообщение. Сетевой запрос при этом не выполняется.
var ErrEmptyMessage = errors.New("сообщение не может быть пустым")

// MessageStream предоставляет ленту сообщений чата: чтение, отправку
// и отметку о прочтении.
type MessageStream struct {
	api           ports.MessageAPI
	log           *slog.Logger
	markReadDelay time.Duration

	mu     sync.Mutex
	timers map[int64]*time.Timer
}

// MessageStreamOption — функциональная опция для настройки MessageStream.
type MessageStreamOption func(*MessageStream)

// WithMarkReadDelay устанавливает задержку отложенной отметки о прочтении.
func WithMarkReadDelay(d time.Duration) MessageStreamOption {
	return func(s *MessageStream) {
		if d >= 0 {
			s.markReadDelay = d
		}
	}
}

// WithMessageStreamLogger устанавливает логгер ленты сообщений.
func WithMessageStreamLogger(l *slog.Logger) MessageStreamOption {
	return func(s *MessageStream) {
		if l != nil {
			s.log = l
		}
	}
}

// NewMessageStream создает новый экземпляр MessageStream.
func NewMessageStream(api ports.MessageAPI, opts ...MessageStreamOption) *MessageStream {
	s := &MessageStream{
		api:           api,
		log:           slog.Default(),
		markReadDelay: 500 * time.Millisecond,
		timers:        make(map[int64]*time.Timer),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ListMessages возвращает сообщения чата в хронологическом порядке.
// Сообщения без отправителя отбрасываются: частично гидратированный
// ответ API не должен попадать в отображаемую ленту. Ошибки приводят
// к пустому списку.
func (s *MessageStream) ListMessages(ctx context.Context, chatID int64) []domain.Message {
	messages, err := s.api.ListMessages(ctx, chatID)
	if err != nil {
		s.log.WarnContext(ctx, "Не удалось загрузить сообщения", "chat_id", chatID, "error", err)
		return []domain.Message{}
	}

	filtered := make([]domain.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Sender == nil {
			s.log.WarnContext(ctx, "Пропущено сообщение без отправителя", "chat_id", chatID, "message_id", msg.ID)
			continue
		}
		if err := msg.Validate(); err != nil {
			s.log.WarnContext(ctx, "Пропущено сообщение с некорректной нагрузкой", "chat_id", chatID, "message_id", msg.ID, "error", err)
			continue
		}
		filtered = append(filtered, msg)
	}
	return filtered
}

// SendText отправляет текстовое сообщение и возвращает ленту, которую
// следует отобразить: prev с добавленным сообщением, либо полностью
// перечитанный список, если сервер вернул сообщение без отправителя —
// авторство в отображаемой ленте не может быть неопределенным.
func (s *MessageStream) SendText(ctx context.Context, chatID int64, content string, prev []domain.Message) ([]domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return prev, ErrEmptyMessage
	}

	msg, err := s.api.SendText(ctx, chatID, content)
	if err != nil {
		return prev, fmt.Errorf("не удалось отправить сообщение: %w", err)
	}

	if msg.Sender == nil {
		s.log.WarnContext(ctx, "Сервер вернул сообщение без отправителя, перечитываем ленту", "chat_id", chatID)
		return s.ListMessages(ctx, chatID), nil
	}

	return append(prev, msg), nil
}

// SendBasket отправляет корзину отдельным сообщением и возвращает
// обновленную ленту.
func (s *MessageStream) SendBasket(ctx context.Context, chatID, basketID int64, prev []domain.Message) ([]domain.Message, error) {
	msg, err := s.api.SendBasket(ctx, chatID, basketID)
	if err != nil {
		return prev, fmt.Errorf("не удалось отправить корзину: %w", err)
	}

	if msg.Sender == nil {
		return s.ListMessages(ctx, chatID), nil
	}

	return append(prev, msg), nil
}

// SendProducts отправляет выбранные товары с форматами отдельным
// сообщением и возвращает обновленную ленту.
func (s *MessageStream) SendProducts(ctx context.Context, chatID int64, productIDs []int64, selectedFormats map[int64][]string, prev []domain.Message) ([]domain.Message, error) {
	if len(productIDs) == 0 {
		return prev, fmt.Errorf("не выбраны товары для отправки")
	}

	msg, err := s.api.SendProducts(ctx, chatID, productIDs, selectedFormats)
	if err != nil {
		return prev, fmt.Errorf("не удалось отправить товары: %w", err)
	}

	if msg.Sender == nil {
		return s.ListMessages(ctx, chatID), nil
	}

	return append(prev, msg), nil
}

// MarkChatRead отмечает все входящие сообщения чата как прочитанные.
// Ответы 400, 403 и 404 проглатываются: только что созданный или пустой
// чат уже согласован, это не отказ.
func (s *MessageStream) MarkChatRead(ctx context.Context, chatID int64) error {
	err := s.api.MarkChatRead(ctx, chatID)
	if err == nil {
		return nil
	}

	for _, status := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound} {
		if restapi.IsStatus(err, status) {
			s.log.DebugContext(ctx, "Отметка о прочтении пропущена", "chat_id", chatID, "error", err)
			return nil
		}
	}

	return fmt.Errorf("не удалось отметить чат %d прочитанным: %w", chatID, err)
}

// MarkChatReadSoon откладывает отметку о прочтении на markReadDelay
// после завершения загрузки ленты, чтобы не отмечать сообщения до того,
// как пользователь их увидит. Повторный вызов для того же чата
// перезапускает таймер.
func (s *MessageStream) MarkChatReadSoon(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[chatID]; ok {
		timer.Stop()
	}

	s.timers[chatID] = time.AfterFunc(s.markReadDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.MarkChatRead(ctx, chatID); err != nil {
			s.log.Warn("Отложенная отметка о прочтении не удалась", "chat_id", chatID, "error", err)
		}

		s.mu.Lock()
		delete(s.timers, chatID)
		s.mu.Unlock()
	})
}
