package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
	"github.com/Heyaski/sofa-marketplace/internal/ports"
)

// ErrEmailSendNotAvailable возвращается при попытке отправить корзину
// на email: этот способ пока не реализован.
var ErrEmailSendNotAvailable = errors.New("отправка на email будет реализована позже")

// linkCopiedResetDelay — время, через которое сбрасывается признак
// "ссылка скопирована".
const linkCopiedResetDelay = 2 * time.Second

// ShareComposer реализует отправку корзины другому пользователю:
// в чат внутри маркетплейса или ссылкой через буфер обмена.
type ShareComposer struct {
	chats     *ChatDirectory
	messages  *MessageStream
	users     ports.UserAPI
	session   *Session
	clipboard ports.Clipboard
	origin    string
	log       *slog.Logger

	mu          sync.Mutex
	linkCopied  bool
	resetTimer  *time.Timer
	searchDelay time.Duration
	searchTimer *time.Timer
}

// ShareComposerOption — функциональная опция для настройки ShareComposer.
type ShareComposerOption func(*ShareComposer)

// WithSearchDebounce устанавливает паузу во вводе, после которой
// выполняется отложенный поиск получателей.
func WithSearchDebounce(d time.Duration) ShareComposerOption {
	return func(sc *ShareComposer) {
		if d >= 0 {
			sc.searchDelay = d
		}
	}
}

// NewShareComposer создает новый экземпляр ShareComposer.
// origin — адрес веб-интерфейса, используемый при построении ссылок.
func NewShareComposer(
	chats *ChatDirectory,
	messages *MessageStream,
	users ports.UserAPI,
	session *Session,
	clipboard ports.Clipboard,
	origin string,
	log *slog.Logger,
	opts ...ShareComposerOption,
) *ShareComposer {
	if log == nil {
		log = slog.Default()
	}
	sc := &ShareComposer{
		chats:       chats,
		messages:    messages,
		users:       users,
		session:     session,
		clipboard:   clipboard,
		origin:      strings.TrimRight(origin, "/"),
		log:         log,
		searchDelay: 300 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(sc)
	}

	return sc
}

// ShareBasketToUser отправляет корзину пользователю: находит или создает
// чат, отправляет сообщение с корзиной и, если задан комментарий,
// отправляет его следом отдельным текстовым сообщением. Отказ на шаге
// чата или корзины прерывает операцию; отказ на шаге комментария — нет:
// корзина к этому моменту уже доставлена, и откат невозможен.
func (sc *ShareComposer) ShareBasketToUser(ctx context.Context, basketID, userID int64, comment string) error {
	chat, err := sc.chats.FindOrCreateChat(ctx, userID)
	if err != nil {
		return fmt.Errorf("не удалось открыть чат для отправки корзины: %w", err)
	}

	if _, err := sc.messages.SendBasket(ctx, chat.ID, basketID, nil); err != nil {
		return fmt.Errorf("не удалось отправить корзину %d: %w", basketID, err)
	}

	if comment = strings.TrimSpace(comment); comment != "" {
		if _, err := sc.messages.SendText(ctx, chat.ID, comment, nil); err != nil {
			sc.log.WarnContext(ctx, "Комментарий к корзине не отправлен", "chat_id", chat.ID, "error", err)
		}
	}

	sc.log.InfoContext(ctx, "Корзина отправлена", "basket_id", basketID, "user_id", userID, "chat_id", chat.ID)
	return nil
}

// ShareBasketToEmail — отправка корзины на произвольный email.
// Пока не реализована.
func (sc *ShareComposer) ShareBasketToEmail(_ context.Context, _ int64, email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("введите e-mail адрес")
	}
	return ErrEmailSendNotAvailable
}

// Recipients возвращает кандидатов для выбора получателя: собеседников
// из существующих чатов и результаты общего поиска пользователей,
// без дубликатов по идентификатору и без текущего пользователя.
// Отказ любого из двух источников не прерывает сборку списка.
func (sc *ShareComposer) Recipients(ctx context.Context, query string) []domain.User {
	var currentUserID int64
	if current, err := sc.session.CurrentUser(ctx); err == nil {
		currentUserID = current.ID
	} else {
		sc.log.WarnContext(ctx, "Не удалось определить текущего пользователя", "error", err)
	}

	seen := make(map[int64]struct{})
	var recipients []domain.User

	add := func(user domain.User) {
		if user.ID == 0 || user.ID == currentUserID {
			return
		}
		if _, ok := seen[user.ID]; ok {
			return
		}
		seen[user.ID] = struct{}{}
		recipients = append(recipients, user)
	}

	for _, chat := range sc.chats.ListChats(ctx) {
		if companion := chat.Companion(); companion != nil {
			add(*companion)
		}
	}

	found, err := sc.users.Search(ctx, query)
	if err != nil {
		sc.log.WarnContext(ctx, "Поиск пользователей не удался", "query", query, "error", err)
	}
	for _, user := range found {
		add(user)
	}

	return recipients
}

// RecipientsSoon откладывает поиск получателей до паузы во вводе:
// каждый следующий вызов перезапускает таймер, поэтому deliver
// получает кандидатов только для последнего введенного запроса.
func (sc *ShareComposer) RecipientsSoon(query string, deliver func([]domain.User)) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.searchTimer != nil {
		sc.searchTimer.Stop()
	}

	sc.searchTimer = time.AfterFunc(sc.searchDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		deliver(sc.Recipients(ctx, query))
	})
}

// ShareLink строит ссылку на корзину в веб-интерфейсе.
func (sc *ShareComposer) ShareLink(basketID int64) string {
	return fmt.Sprintf("%s/profile/basket/%d", sc.origin, basketID)
}

// CopyShareLink записывает ссылку на корзину в буфер обмена и
// выставляет признак LinkCopied, который сбрасывается через две секунды.
func (sc *ShareComposer) CopyShareLink(basketID int64) error {
	link := sc.ShareLink(basketID)
	if err := sc.clipboard.Write(link); err != nil {
		return fmt.Errorf("не удалось скопировать ссылку: %w", err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.linkCopied = true
	if sc.resetTimer != nil {
		sc.resetTimer.Stop()
	}
	sc.resetTimer = time.AfterFunc(linkCopiedResetDelay, func() {
		sc.mu.Lock()
		sc.linkCopied = false
		sc.mu.Unlock()
	})

	return nil
}

// LinkCopied сообщает, показывать ли подтверждение "ссылка скопирована".
func (sc *ShareComposer) LinkCopied() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.linkCopied
}
