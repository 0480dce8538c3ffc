// Package services реализует бизнес-логику клиента маркетплейса:
// справочник чатов, ленту сообщений, отправку корзин и товаров,
// загрузки и сессию пользователя.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Heyaski/sofa-marketplace/internal/cache"
	"github.com/Heyaski/sofa-marketplace/internal/domain"
	"github.com/Heyaski/sofa-marketplace/internal/ports"
)

const chatListCacheKey = "chats"

// ChatDirectory предоставляет список чатов текущего пользователя и
// поиск или создание чата с собеседником.
type ChatDirectory struct {
	api      ports.ChatAPI
	store    *cache.Store[[]domain.Chat]
	cacheTTL time.Duration
	log      *slog.Logger
}

// ChatDirectoryOption — функциональная опция для настройки ChatDirectory.
type ChatDirectoryOption func(*ChatDirectory)

// WithChatCacheTTL устанавливает срок жизни кэша списка чатов.
func WithChatCacheTTL(ttl time.Duration) ChatDirectoryOption {
	return func(d *ChatDirectory) {
		if ttl > 0 {
			d.cacheTTL = ttl
		}
	}
}

// WithChatDirectoryLogger устанавливает логгер справочника чатов.
func WithChatDirectoryLogger(l *slog.Logger) ChatDirectoryOption {
	return func(d *ChatDirectory) {
		if l != nil {
			d.log = l
		}
	}
}

// NewChatDirectory создает новый экземпляр ChatDirectory.
func NewChatDirectory(api ports.ChatAPI, opts ...ChatDirectoryOption) *ChatDirectory {
	d := &ChatDirectory{
		api:      api,
		store:    cache.NewStore[[]domain.Chat](),
		cacheTTL: 30 * time.Second,
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// ListChats возвращает чаты пользователя, отсортированные по убыванию
// времени последнего сообщения; чаты без сообщений уходят в хвост,
// сохраняя исходный порядок. Любая ошибка транспорта или формы ответа
// приводит к пустому списку, а не к отказу: у вызывающей стороны всегда
// есть отображаемое состояние.
func (d *ChatDirectory) ListChats(ctx context.Context) []domain.Chat {
	if chats, ok := d.store.Get(chatListCacheKey); ok {
		return chats
	}

	chats, err := d.api.ListChats(ctx)
	if err != nil {
		d.log.WarnContext(ctx, "Не удалось загрузить список чатов", "error", err)
		return []domain.Chat{}
	}

	sortChats(chats)
	d.store.Put(chatListCacheKey, chats, d.cacheTTL)
	return chats
}

// FindOrCreateChat находит среди уже загруженных чатов диалог с указанным
// пользователем; только если такого нет, запрашивает создание у сервера.
// Два близких по времени вызова для одной пары могут создать дубликат —
// чтение и запись не атомарны, уникальность остается за сервером.
func (d *ChatDirectory) FindOrCreateChat(ctx context.Context, targetUserID int64) (domain.Chat, error) {
	for _, chat := range d.ListChats(ctx) {
		if companion := chat.Companion(); companion != nil && companion.ID == targetUserID {
			if chat.Participant1 != nil && chat.Participant1.ID == targetUserID {
				continue
			}
			return chat, nil
		}
	}

	chat, err := d.api.CreateChat(ctx, targetUserID)
	if err != nil {
		return domain.Chat{}, fmt.Errorf("не удалось создать чат с пользователем %d: %w", targetUserID, err)
	}
	if chat.ID == 0 {
		return domain.Chat{}, fmt.Errorf("сервер создал чат без идентификатора")
	}

	d.Invalidate()
	d.log.InfoContext(ctx, "Создан чат", "chat_id", chat.ID, "participant2_id", targetUserID)
	return chat, nil
}

// TogglePin переключает закрепление чата. Локальное состояние не
// обновляется: вызывающая сторона перечитывает справочник.
func (d *ChatDirectory) TogglePin(ctx context.Context, chatID int64) (bool, error) {
	pinned, err := d.api.TogglePin(ctx, chatID)
	if err != nil {
		return false, fmt.Errorf("не удалось переключить закрепление чата %d: %w", chatID, err)
	}
	d.Invalidate()
	return pinned, nil
}

// Invalidate сбрасывает кэш списка чатов.
func (d *ChatDirectory) Invalidate() {
	d.store.Invalidate(chatListCacheKey)
}

// sortChats упорядочивает чаты по убыванию времени последнего сообщения.
// Чаты без сообщений сравнивать не с чем, поэтому они не участвуют в
// сортировке: уходят в хвост, сохраняя порядок сервера.
func sortChats(chats []domain.Chat) {
	withLast := make([]domain.Chat, 0, len(chats))
	withoutLast := make([]domain.Chat, 0)
	for _, chat := range chats {
		if chat.LastMessage != nil {
			withLast = append(withLast, chat)
		} else {
			withoutLast = append(withoutLast, chat)
		}
	}

	sort.SliceStable(withLast, func(i, j int) bool {
		return withLast[i].LastMessage.CreatedAt.After(withLast[j].LastMessage.CreatedAt)
	})

	copy(chats, withLast)
	copy(chats[len(withLast):], withoutLast)
}
