package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
	"github.com/Heyaski/sofa-marketplace/internal/restapi"
)

func TestListMessages(t *testing.T) {
	t.Run("отбрасывает сообщения без отправителя", func(t *testing.T) {
		api := &mockMessageAPI{
			listMessagesFunc: func(ctx context.Context, chatID int64) ([]domain.Message, error) {
				return []domain.Message{
					{ID: 1, Sender: &domain.User{ID: 1}, MessageType: domain.MessageTypeText, Content: "а"},
					{ID: 2, MessageType: domain.MessageTypeText, Content: "без отправителя"},
					{ID: 3, Sender: &domain.User{ID: 2}, MessageType: domain.MessageTypeText, Content: "б"},
				}, nil
			},
		}
		s := NewMessageStream(api)

		messages := s.ListMessages(context.Background(), 1)

		require.Len(t, messages, 2)
		assert.Equal(t, int64(1), messages[0].ID)
		assert.Equal(t, int64(3), messages[1].ID)
	})

	t.Run("отбрасывает сообщения с несогласованной нагрузкой", func(t *testing.T) {
		api := &mockMessageAPI{
			listMessagesFunc: func(ctx context.Context, chatID int64) ([]domain.Message, error) {
				return []domain.Message{
					{
						ID: 1, Sender: &domain.User{ID: 1},
						MessageType: domain.MessageTypeText,
						Products:    []domain.MessageProduct{{ID: 1}},
					},
				}, nil
			},
		}
		s := NewMessageStream(api)

		assert.Empty(t, s.ListMessages(context.Background(), 1))
	})

	t.Run("ошибка API приводит к пустому списку", func(t *testing.T) {
		api := &mockMessageAPI{
			listMessagesFunc: func(ctx context.Context, chatID int64) ([]domain.Message, error) {
				return nil, errors.New("сеть недоступна")
			},
		}
		s := NewMessageStream(api)

		messages := s.ListMessages(context.Background(), 1)

		assert.NotNil(t, messages)
		assert.Empty(t, messages)
	})
}

func TestSendText(t *testing.T) {
	t.Run("пустое сообщение не уходит в сеть", func(t *testing.T) {
		var called bool
		api := &mockMessageAPI{
			sendTextFunc: func(ctx context.Context, chatID int64, content string) (domain.Message, error) {
				called = true
				return domain.Message{}, nil
			},
		}
		s := NewMessageStream(api)

		prev := []domain.Message{{ID: 1}}
		got, err := s.SendText(context.Background(), 1, "   \n\t  ", prev)

		assert.ErrorIs(t, err, ErrEmptyMessage)
		assert.False(t, called, "сетевой запрос не должен выполняться")
		assert.Equal(t, prev, got, "лента остается прежней")
	})

	t.Run("обрезает пробелы перед отправкой", func(t *testing.T) {
		api := &mockMessageAPI{
			sendTextFunc: func(ctx context.Context, chatID int64, content string) (domain.Message, error) {
				assert.Equal(t, "привет", content)
				return domain.Message{ID: 2, Sender: &domain.User{ID: 1}, Content: content}, nil
			},
		}
		s := NewMessageStream(api)

		got, err := s.SendText(context.Background(), 1, "  привет  ", nil)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(2), got[0].ID)
	})

	t.Run("ответ без отправителя вызывает перечитывание ленты", func(t *testing.T) {
		api := &mockMessageAPI{
			sendTextFunc: func(ctx context.Context, chatID int64, content string) (domain.Message, error) {
				return domain.Message{ID: 5, MessageType: domain.MessageTypeText, Content: content}, nil
			},
			listMessagesFunc: func(ctx context.Context, chatID int64) ([]domain.Message, error) {
				return []domain.Message{
					{ID: 4, Sender: &domain.User{ID: 1}, MessageType: domain.MessageTypeText, Content: "а"},
					{ID: 5, Sender: &domain.User{ID: 1}, MessageType: domain.MessageTypeText, Content: "привет"},
				}, nil
			},
		}
		s := NewMessageStream(api)

		got, err := s.SendText(context.Background(), 1, "привет", []domain.Message{{ID: 4}})

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.NotNil(t, got[1].Sender, "в отображаемой ленте нет сообщений без автора")
	})
}

func TestMarkChatRead(t *testing.T) {
	t.Run("проглатывает 400, 403 и 404", func(t *testing.T) {
		for _, status := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound} {
			api := &mockMessageAPI{
				markChatReadFunc: func(ctx context.Context, chatID int64) error {
					return &restapi.APIError{StatusCode: status}
				},
			}
			s := NewMessageStream(api)

			assert.NoError(t, s.MarkChatRead(context.Background(), 1), "статус %d", status)
		}
	})

	t.Run("прочие ошибки возвращаются", func(t *testing.T) {
		api := &mockMessageAPI{
			markChatReadFunc: func(ctx context.Context, chatID int64) error {
				return &restapi.APIError{StatusCode: http.StatusInternalServerError}
			},
		}
		s := NewMessageStream(api)

		assert.Error(t, s.MarkChatRead(context.Background(), 1))
	})
}

func TestMarkChatReadSoon(t *testing.T) {
	t.Run("откладывает отметку и схлопывает повторные вызовы", func(t *testing.T) {
		var calls atomic.Int32
		api := &mockMessageAPI{
			markChatReadFunc: func(ctx context.Context, chatID int64) error {
				calls.Add(1)
				return nil
			},
		}
		s := NewMessageStream(api, WithMarkReadDelay(50*time.Millisecond))

		s.MarkChatReadSoon(1)
		s.MarkChatReadSoon(1)
		s.MarkChatReadSoon(1)

		assert.Equal(t, int32(0), calls.Load(), "отметка не должна выполняться сразу")

		require.Eventually(t, func() bool {
			return calls.Load() == 1
		}, 1*time.Second, 10*time.Millisecond, "три вызова схлопываются в один")
	})

	t.Run("разные чаты отмечаются независимо", func(t *testing.T) {
		var calls atomic.Int32
		api := &mockMessageAPI{
			markChatReadFunc: func(ctx context.Context, chatID int64) error {
				calls.Add(1)
				return nil
			},
		}
		s := NewMessageStream(api, WithMarkReadDelay(20*time.Millisecond))

		s.MarkChatReadSoon(1)
		s.MarkChatReadSoon(2)

		require.Eventually(t, func() bool {
			return calls.Load() == 2
		}, 1*time.Second, 10*time.Millisecond)
	})
}
