package domain

import (
	"errors"
	"fmt"
	"time"
)

// Типы сообщений в чате.
const (
	MessageTypeText    = "text"
	MessageTypeProduct = "product"
	MessageTypeBasket  = "basket"
)

// ErrPayloadMismatch возвращается, когда полезная нагрузка сообщения
// не соответствует его типу (например, текстовое сообщение с корзинами).
var ErrPayloadMismatch = errors.New("полезная нагрузка не соответствует типу сообщения")

// Chat представляет диалог ровно между двумя пользователями.
// Поля unread_count и other_participant вычисляются сервером
// относительно текущего пользователя.
type Chat struct {
	ID               int64     `json:"id"`
	Participant1     *User     `json:"participant1,omitempty"`
	Participant2     *User     `json:"participant2,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	IsPinned         bool      `json:"is_pinned"`
	LastMessage      *Message  `json:"last_message,omitempty"`
	UnreadCount      int       `json:"unread_count"`
	OtherParticipant *User     `json:"other_participant,omitempty"`
}

// Companion возвращает собеседника: вычисленное сервером поле
// other_participant, а при его отсутствии — participant2.
func (c *Chat) Companion() *User {
	if c.OtherParticipant != nil {
		return c.OtherParticipant
	}
	return c.Participant2
}

// PreviewText возвращает краткий текст последнего сообщения для списка чатов.
func (c *Chat) PreviewText() string {
	if c.LastMessage == nil {
		return ""
	}
	switch c.LastMessage.MessageType {
	case MessageTypeProduct:
		return "Товар"
	case MessageTypeBasket:
		return "Корзина"
	}
	return c.LastMessage.Content
}

// MessageProduct представляет товар, прикрепленный к сообщению,
// вместе с выбранными форматами файлов.
type MessageProduct struct {
	ID              int64    `json:"id"`
	Product         *Product `json:"product,omitempty"`
	SelectedFormats []string `json:"selected_formats"`
}

// MessageBasket представляет корзину, прикрепленную к сообщению.
type MessageBasket struct {
	ID     int64   `json:"id"`
	Basket *Basket `json:"basket,omitempty"`
}

// Message представляет одно сообщение чата. Сообщение неизменяемо после
// создания, кроме флага is_read. Ровно одно из полей Products/Baskets
// может быть заполнено, в соответствии с MessageType.
type Message struct {
	ID          int64            `json:"id"`
	Chat        int64            `json:"chat"`
	Sender      *User            `json:"sender,omitempty"`
	MessageType string           `json:"message_type"`
	Content     string           `json:"content"`
	CreatedAt   time.Time        `json:"created_at"`
	IsRead      bool             `json:"is_read"`
	Products    []MessageProduct `json:"products,omitempty"`
	Baskets     []MessageBasket  `json:"baskets,omitempty"`
}

// Validate проверяет инвариант взаимного исключения полезных нагрузок:
// сообщение никогда не несет одновременно товары и корзины, а тип
// сообщения соответствует заполненной нагрузке.
func (m *Message) Validate() error {
	if len(m.Products) > 0 && len(m.Baskets) > 0 {
		return fmt.Errorf("%w: заполнены и товары, и корзины", ErrPayloadMismatch)
	}
	switch m.MessageType {
	case MessageTypeText:
		if len(m.Products) > 0 || len(m.Baskets) > 0 {
			return fmt.Errorf("%w: текстовое сообщение с вложениями", ErrPayloadMismatch)
		}
	case MessageTypeProduct:
		if len(m.Baskets) > 0 {
			return fmt.Errorf("%w: сообщение с товарами несет корзины", ErrPayloadMismatch)
		}
	case MessageTypeBasket:
		if len(m.Products) > 0 {
			return fmt.Errorf("%w: сообщение с корзиной несет товары", ErrPayloadMismatch)
		}
	default:
		return fmt.Errorf("%w: неизвестный тип сообщения %q", ErrPayloadMismatch, m.MessageType)
	}
	return nil
}

// TextPayload возвращает текст сообщения и признак того, что сообщение текстовое.
func (m *Message) TextPayload() (string, bool) {
	if m.MessageType != MessageTypeText {
		return "", false
	}
	return m.Content, true
}

// ProductPayload возвращает прикрепленные товары для сообщения типа product.
func (m *Message) ProductPayload() ([]MessageProduct, bool) {
	if m.MessageType != MessageTypeProduct {
		return nil, false
	}
	return m.Products, true
}

// BasketPayload возвращает прикрепленную корзину для сообщения типа basket.
// Сервер создает ровно одну запись MessageBasket на сообщение.
func (m *Message) BasketPayload() (*MessageBasket, bool) {
	if m.MessageType != MessageTypeBasket || len(m.Baskets) == 0 {
		return nil, false
	}
	return &m.Baskets[0], true
}
