package restapi

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

// messageCreateRequest — тело запроса создания сообщения.
// Поля полезной нагрузки заполняются в зависимости от типа сообщения;
// selected_formats — словарь "id товара" -> список форматов.
type messageCreateRequest struct {
	Chat            int64               `json:"chat"`
	MessageType     string              `json:"message_type"`
	Content         string              `json:"content"`
	ProductIDs      []int64             `json:"product_ids,omitempty"`
	SelectedFormats map[string][]string `json:"selected_formats,omitempty"`
	BasketID        int64               `json:"basket_id,omitempty"`
}

// ListMessages возвращает сообщения чата в хронологическом порядке
// (старые первыми), как их упорядочивает сервер.
func (c *Client) ListMessages(ctx context.Context, chatID int64) ([]domain.Message, error) {
	q := url.Values{}
	q.Set("chat_id", strconv.FormatInt(chatID, 10))
	return getList[domain.Message](c, ctx, "/api/messages/", q)
}

// SendText создает текстовое сообщение в чате.
func (c *Client) SendText(ctx context.Context, chatID int64, content string) (domain.Message, error) {
	req := messageCreateRequest{
		Chat:        chatID,
		MessageType: domain.MessageTypeText,
		Content:     content,
	}
	return c.createMessage(ctx, req)
}

// SendProducts создает сообщение с прикрепленными товарами и
// выбранными для каждого товара форматами файлов.
func (c *Client) SendProducts(ctx context.Context, chatID int64, productIDs []int64, selectedFormats map[int64][]string) (domain.Message, error) {
	formats := make(map[string][]string, len(selectedFormats))
	for productID, list := range selectedFormats {
		formats[strconv.FormatInt(productID, 10)] = list
	}
	req := messageCreateRequest{
		Chat:            chatID,
		MessageType:     domain.MessageTypeProduct,
		ProductIDs:      productIDs,
		SelectedFormats: formats,
	}
	return c.createMessage(ctx, req)
}

// SendBasket создает сообщение с прикрепленной корзиной.
func (c *Client) SendBasket(ctx context.Context, chatID, basketID int64) (domain.Message, error) {
	req := messageCreateRequest{
		Chat:        chatID,
		MessageType: domain.MessageTypeBasket,
		BasketID:    basketID,
	}
	return c.createMessage(ctx, req)
}

func (c *Client) createMessage(ctx context.Context, req messageCreateRequest) (domain.Message, error) {
	var msg domain.Message
	if err := c.post(ctx, "/api/messages/", req, &msg); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// MarkChatRead отмечает все входящие сообщения чата как прочитанные.
// Операция идемпотентна на стороне сервера.
func (c *Client) MarkChatRead(ctx context.Context, chatID int64) error {
	body := map[string]int64{"chat_id": chatID}
	return c.post(ctx, "/api/messages/mark_chat_read/", body, nil)
}
