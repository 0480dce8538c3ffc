package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Heyaski/sofa-marketplace/internal/cache"
	"github.com/Heyaski/sofa-marketplace/internal/domain"
	"github.com/Heyaski/sofa-marketplace/internal/ports"
)

const currentUserCacheKey = "me"

// Session централизует состояние текущего пользователя: один запрос
// /api/users/me/ на срок жизни кэша вместо независимых запросов из
// каждого представления. Подписчики уведомляются при каждой свежей
// загрузке профиля.
type Session struct {
	api      ports.UserAPI
	store    *cache.Store[domain.User]
	cacheTTL time.Duration
	log      *slog.Logger

	mu          sync.Mutex
	subscribers []func(domain.User)
}

// SessionOption — функциональная опция для настройки Session.
type SessionOption func(*Session)

// WithSessionTTL устанавливает срок жизни кэша профиля.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(s *Session) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithSessionLogger устанавливает логгер сессии.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSession создает новый экземпляр Session.
func NewSession(api ports.UserAPI, opts ...SessionOption) *Session {
	s := &Session{
		api:      api,
		store:    cache.NewStore[domain.User](),
		cacheTTL: 5 * time.Minute,
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CurrentUser возвращает текущего пользователя, загружая профиль с
// сервера не чаще, чем истекает кэш.
func (s *Session) CurrentUser(ctx context.Context) (domain.User, error) {
	if user, ok := s.store.Get(currentUserCacheKey); ok {
		return user, nil
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("не удалось загрузить профиль: %w", err)
	}

	s.store.Put(currentUserCacheKey, user, s.cacheTTL)
	s.notify(user)
	return user, nil
}

// Subscribe регистрирует подписчика на обновления профиля.
func (s *Session) Subscribe(fn func(domain.User)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Invalidate сбрасывает кэш профиля. Вызывается после изменения
// профиля, смены подписки или выхода из системы.
func (s *Session) Invalidate() {
	s.store.Invalidate(currentUserCacheKey)
}

func (s *Session) notify(user domain.User) {
	s.mu.Lock()
	subscribers := make([]func(domain.User), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(user)
	}
}
