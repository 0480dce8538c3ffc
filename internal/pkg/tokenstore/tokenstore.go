// Package tokenstore реализует постоянное хранилище пары JWT-токенов
// в файле пользователя.
package tokenstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

// FileStore хранит пару токенов в JSON-файле. Доступ потокобезопасен:
// транспорт читает токены из каждого запроса, сервис аутентификации
// перезаписывает их при входе и обновлении.
type FileStore struct {
	path string

	mu     sync.RWMutex
	tokens domain.AuthTokens
	loaded bool
}

// NewFileStore создает хранилище токенов в указанном файле и читает
// сохраненную пару, если файл существует.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("не удалось прочитать файл токенов: %w", err)
	}

	var tokens domain.AuthTokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		// Поврежденный файл не должен блокировать запуск: пара будет
		// перезаписана при следующем входе.
		return s, nil
	}

	s.tokens = tokens
	s.loaded = tokens.Access != "" || tokens.Refresh != ""
	return s, nil
}

// Load возвращает сохраненную пару токенов.
func (s *FileStore) Load() (domain.AuthTokens, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens, s.loaded
}

// Save сохраняет пару токенов в памяти и на диске.
func (s *FileStore) Save(tokens domain.AuthTokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("не удалось сериализовать токены: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("не удалось создать каталог для токенов: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("не удалось записать файл токенов: %w", err)
	}

	s.tokens = tokens
	s.loaded = true
	return nil
}

// Clear удаляет пару токенов из памяти и с диска.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = domain.AuthTokens{}
	s.loaded = false

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("не удалось удалить файл токенов: %w", err)
	}
	return nil
}

// Memory — хранилище токенов в памяти процесса. Используется шлюзом и
// тестами, где сохранение между запусками не требуется.
type Memory struct {
	mu     sync.RWMutex
	tokens domain.AuthTokens
	loaded bool
}

// NewMemory создает новое хранилище токенов в памяти.
func NewMemory() *Memory {
	return &Memory{}
}

// Load возвращает сохраненную пару токенов.
func (m *Memory) Load() (domain.AuthTokens, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens, m.loaded
}

// Save сохраняет пару токенов.
func (m *Memory) Save(tokens domain.AuthTokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = tokens
	m.loaded = true
	return nil
}

// Clear удаляет пару токенов.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = domain.AuthTokens{}
	m.loaded = false
	return nil
}
