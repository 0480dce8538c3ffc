package restapi

import (
	"context"
	"fmt"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

// ListChats возвращает все чаты текущего пользователя в порядке,
// заданном сервером: по времени последнего сообщения, затем по
// времени обновления.
func (c *Client) ListChats(ctx context.Context) ([]domain.Chat, error) {
	return getList[domain.Chat](c, ctx, "/api/chats/", nil)
}

// CreateChat создает чат с указанным собеседником. Для уже существующей
// упорядоченной пары участников сервер возвращает существующий чат.
func (c *Client) CreateChat(ctx context.Context, participant2ID int64) (domain.Chat, error) {
	body := map[string]int64{"participant2_id": participant2ID}
	var chat domain.Chat
	if err := c.post(ctx, "/api/chats/", body, &chat); err != nil {
		return domain.Chat{}, err
	}
	return chat, nil
}

// TogglePin переключает закрепление чата и возвращает новое состояние.
func (c *Client) TogglePin(ctx context.Context, chatID int64) (bool, error) {
	var resp struct {
		IsPinned bool `json:"is_pinned"`
	}
	path := fmt.Sprintf("/api/chats/%d/toggle_pin/", chatID)
	if err := c.post(ctx, path, nil, &resp); err != nil {
		return false, err
	}
	return resp.IsPinned, nil
}
