// Package clipboard реализует запись в системный буфер обмена.
package clipboard

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/Heyaski/sofa-marketplace/internal/ports"
)

// SystemClipboard реализует интерфейс Clipboard через системные утилиты:
// pbcopy на macOS, xclip или xsel на Linux.
type SystemClipboard struct{}

// NewSystemClipboard создает новый экземпляр SystemClipboard.
func NewSystemClipboard() ports.Clipboard {
	return &SystemClipboard{}
}

// Write записывает текст в системный буфер обмена.
func (c *SystemClipboard) Write(text string) error {
	cmd, err := clipboardCommand()
	if err != nil {
		return err
	}

	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("не удалось записать в буфер обмена: %w", err)
	}
	return nil
}

// clipboardCommand подбирает доступную утилиту буфера обмена.
func clipboardCommand() (*exec.Cmd, error) {
	if runtime.GOOS == "darwin" {
		return exec.Command("pbcopy"), nil
	}

	if _, err := exec.LookPath("xclip"); err == nil {
		return exec.Command("xclip", "-selection", "clipboard"), nil
	}
	if _, err := exec.LookPath("xsel"); err == nil {
		return exec.Command("xsel", "--clipboard", "--input"), nil
	}

	return nil, fmt.Errorf("утилита буфера обмена не найдена: установите xclip или xsel")
}

// Memory — буфер обмена в памяти. Используется тестами и средами без
// системного буфера.
type Memory struct {
	mu   sync.Mutex
	text string
}

// NewMemory создает новый буфер обмена в памяти.
func NewMemory() *Memory {
	return &Memory{}
}

// Write запоминает текст.
func (m *Memory) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

// Text возвращает последний записанный текст.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}
