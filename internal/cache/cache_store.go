// Package cache реализует клиентский TTL-кэш сущностей.
//
// Кэш разделяется сервисами модуля, чтобы разные представления не
// держали расходящиеся копии одних и тех же данных: мутация
// инвалидирует запись, следующий читатель получает свежий снимок.
package cache

import (
	"context"
	"sync"
	"time"
)

// Item представляет кэшированное значение со сроком действия.
type Item[T any] struct {
	Data      T
	ExpiresAt time.Time
}

// Store управляет хранением и извлечением кэшированных сущностей одного типа.
type Store[T any] struct {
	items map[string]*Item[T]
	mutex sync.RWMutex
}

// NewStore создает новый экземпляр Store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		items: make(map[string]*Item[T]),
	}
}

// Get извлекает кэшированное значение по ключу.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, exists := s.items[key]
	if !exists || time.Now().After(item.ExpiresAt) {
		var zero T
		return zero, false
	}

	return item.Data, true
}

// Put сохраняет значение в кэш с указанным сроком действия.
func (s *Store[T]) Put(key string, data T, ttl time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.items[key] = &Item[T]{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// Invalidate удаляет запись из кэша. Вызывается после мутаций,
// чтобы следующий читатель получил свежие данные с сервера.
func (s *Store[T]) Invalidate(key string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.items, key)
}

// CleanupExpired удаляет просроченные записи из кэша.
func (s *Store[T]) CleanupExpired() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	for key, item := range s.items {
		if now.After(item.ExpiresAt) {
			delete(s.items, key)
		}
	}
}

// StartCleanupTicker запускает таймер для периодической очистки просроченных записей.
func (s *Store[T]) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired()
			}
		}
	}()
}
