package restapi

import (
	"context"
	"fmt"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

// ListBaskets возвращает все корзины текущего пользователя.
func (c *Client) ListBaskets(ctx context.Context) ([]domain.Basket, error) {
	return getList[domain.Basket](c, ctx, "/api/baskets/", nil)
}

// GetBasket возвращает корзину по идентификатору.
func (c *Client) GetBasket(ctx context.Context, id int64) (domain.Basket, error) {
	var basket domain.Basket
	if err := c.get(ctx, fmt.Sprintf("/api/baskets/%d/", id), nil, &basket); err != nil {
		return domain.Basket{}, err
	}
	return basket, nil
}

// CreateBasket создает новую именованную корзину.
func (c *Client) CreateBasket(ctx context.Context, name string) (domain.Basket, error) {
	body := map[string]string{"name": name}
	var basket domain.Basket
	if err := c.post(ctx, "/api/baskets/", body, &basket); err != nil {
		return domain.Basket{}, err
	}
	return basket, nil
}

// AddItem добавляет товар в корзину.
func (c *Client) AddItem(ctx context.Context, basketID, productID int64, quantity int, format string) (domain.BasketItem, error) {
	body := map[string]any{
		"basket":   basketID,
		"product":  productID,
		"quantity": quantity,
	}
	if format != "" {
		body["format"] = format
	}
	var item domain.BasketItem
	if err := c.post(ctx, "/api/basket-items/", body, &item); err != nil {
		return domain.BasketItem{}, err
	}
	return item, nil
}

// UpdateItem обновляет количество товара в корзине.
func (c *Client) UpdateItem(ctx context.Context, itemID int64, quantity int) (domain.BasketItem, error) {
	body := map[string]int{"quantity": quantity}
	var item domain.BasketItem
	if err := c.put(ctx, fmt.Sprintf("/api/basket-items/%d/", itemID), body, &item); err != nil {
		return domain.BasketItem{}, err
	}
	return item, nil
}

// RemoveItem удаляет позицию из корзины.
func (c *Client) RemoveItem(ctx context.Context, itemID int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/basket-items/%d/", itemID))
}

// ClearBasket удаляет все позиции корзины.
func (c *Client) ClearBasket(ctx context.Context, basketID int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/baskets/%d/items/", basketID))
}
