package restapi

import (
	"context"
	"net/url"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

// Me возвращает текущего аутентифицированного пользователя.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var user domain.User
	if err := c.get(ctx, "/api/users/me/", nil, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Search ищет активных пользователей по имени пользователя или email.
// Пустой запрос возвращает всех активных пользователей.
func (c *Client) Search(ctx context.Context, query string) ([]domain.User, error) {
	q := url.Values{}
	q.Set("q", query)
	return getList[domain.User](c, ctx, "/api/users/search/", q)
}
