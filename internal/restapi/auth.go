package restapi

import (
	"context"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

// Login обменивает учетные данные на пару JWT-токенов.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.AuthTokens, error) {
	var tokens domain.AuthTokens
	if err := c.post(ctx, "/api/auth/login/", creds, &tokens); err != nil {
		return domain.AuthTokens{}, err
	}
	return tokens, nil
}

// Register создает нового пользователя.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	var user domain.User
	if err := c.post(ctx, "/api/users/register/", reg, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Refresh обновляет пару токенов по refresh-токену.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (domain.AuthTokens, error) {
	body := map[string]string{"refresh": refreshToken}
	var tokens domain.AuthTokens
	if err := c.post(ctx, "/api/auth/refresh/", body, &tokens); err != nil {
		return domain.AuthTokens{}, err
	}
	return tokens, nil
}

// Logout завершает сессию на сервере.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/api/users/logout/", nil, nil)
}
