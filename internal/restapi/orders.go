package restapi

import (
	"context"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

// ListOrders возвращает заказы текущего пользователя.
func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return getList[domain.Order](c, ctx, "/api/orders/", nil)
}

// CreateOrder создает заказ из корзины.
func (c *Client) CreateOrder(ctx context.Context, basketID int64) (domain.Order, error) {
	body := map[string]int64{"basket": basketID}
	var order domain.Order
	if err := c.post(ctx, "/api/orders/", body, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}
