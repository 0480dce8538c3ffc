// Package term обеспечивает интерактивный ввод учетных данных через терминал.
package term

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

// Terminal запрашивает учетные данные пользователя в терминале.
// Пароль читается без эха.
type Terminal struct {
	in      *bufio.Reader
	out     io.Writer
	stdinfd int
}

// NewTerminal создает новый экземпляр Terminal.
func NewTerminal() *Terminal {
	return &Terminal{
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		stdinfd: int(os.Stdin.Fd()),
	}
}

// Credentials запрашивает имя пользователя и пароль.
func (t *Terminal) Credentials() (domain.Credentials, error) {
	username, err := t.prompt("Имя пользователя: ")
	if err != nil {
		return domain.Credentials{}, err
	}

	password, err := t.Password("Пароль: ")
	if err != nil {
		return domain.Credentials{}, err
	}

	return domain.Credentials{Username: username, Password: password}, nil
}

// Password запрашивает пароль без отображения вводимых символов.
func (t *Terminal) Password(label string) (string, error) {
	fmt.Fprint(t.out, label)
	bytePwd, err := term.ReadPassword(t.stdinfd)
	if err != nil {
		return "", fmt.Errorf("не удалось прочитать пароль: %w", err)
	}
	fmt.Fprintln(t.out) // Новая строка после ввода
	return string(bytePwd), nil
}

// prompt выводит приглашение и читает строку ввода.
func (t *Terminal) prompt(label string) (string, error) {
	fmt.Fprint(t.out, label)
	line, err := t.in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("не удалось прочитать ввод: %w", err)
	}
	return strings.TrimSpace(line), nil
}
