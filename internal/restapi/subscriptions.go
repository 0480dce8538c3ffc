package restapi

import (
	"context"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

// ListPlans возвращает все тарифные планы подписки.
func (c *Client) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	return getList[domain.Plan](c, ctx, "/subscriptions/plans/", nil)
}

// ListSubscriptions возвращает подписки текущего пользователя.
func (c *Client) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	return getList[domain.Subscription](c, ctx, "/subscriptions/", nil)
}

// Subscribe оформляет подписку на тарифный план.
func (c *Client) Subscribe(ctx context.Context, planID int64) (domain.Subscription, error) {
	body := map[string]int64{"plan": planID}
	var sub domain.Subscription
	if err := c.post(ctx, "/subscriptions/", body, &sub); err != nil {
		return domain.Subscription{}, err
	}
	return sub, nil
}
