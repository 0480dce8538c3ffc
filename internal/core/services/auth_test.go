package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
	"github.com/Heyaski/sofa-marketplace/internal/pkg/tokenstore"
)

// signedToken выпускает тестовый JWT с указанным сроком действия.
func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 7,
		"exp":     expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestLogin(t *testing.T) {
	t.Run("сохраняет токены и сбрасывает сессию", func(t *testing.T) {
		store := tokenstore.NewMemory()
		api := &mockAuthAPI{
			loginFunc: func(ctx context.Context, creds domain.Credentials) (domain.AuthTokens, error) {
				assert.Equal(t, "ivan", creds.Username)
				return domain.AuthTokens{Access: "a", Refresh: "r"}, nil
			},
		}
		s := NewAuthService(api, store, nil)

		err := s.Login(context.Background(), domain.Credentials{Username: "ivan", Password: "secret"})

		require.NoError(t, err)
		tokens, ok := store.Load()
		require.True(t, ok)
		assert.Equal(t, "a", tokens.Access)
		assert.True(t, s.Authenticated())
	})

	t.Run("отказ входа не трогает хранилище", func(t *testing.T) {
		store := tokenstore.NewMemory()
		api := &mockAuthAPI{
			loginFunc: func(ctx context.Context, creds domain.Credentials) (domain.AuthTokens, error) {
				return domain.AuthTokens{}, errors.New("неверные учетные данные")
			},
		}
		s := NewAuthService(api, store, nil)

		err := s.Login(context.Background(), domain.Credentials{Username: "ivan", Password: "wrong"})

		require.Error(t, err)
		_, ok := store.Load()
		assert.False(t, ok)
	})
}

func TestLogout(t *testing.T) {
	t.Run("очищает токены даже при отказе сервера", func(t *testing.T) {
		store := tokenstore.NewMemory()
		require.NoError(t, store.Save(domain.AuthTokens{Access: "a", Refresh: "r"}))

		api := &mockAuthAPI{
			logoutFunc: func(ctx context.Context) error {
				return errors.New("сервер недоступен")
			},
		}
		s := NewAuthService(api, store, nil)

		err := s.Logout(context.Background())

		require.NoError(t, err)
		_, ok := store.Load()
		assert.False(t, ok)
	})
}

func TestRefreshIfNeeded(t *testing.T) {
	t.Run("без токенов возвращает ErrNotAuthenticated", func(t *testing.T) {
		s := NewAuthService(&mockAuthAPI{}, tokenstore.NewMemory(), nil)
		assert.ErrorIs(t, s.RefreshIfNeeded(context.Background()), ErrNotAuthenticated)
	})

	t.Run("свежий токен не обновляется", func(t *testing.T) {
		store := tokenstore.NewMemory()
		require.NoError(t, store.Save(domain.AuthTokens{
			Access:  signedToken(t, time.Now().Add(1*time.Hour)),
			Refresh: "r",
		}))

		var refreshed bool
		api := &mockAuthAPI{
			refreshFunc: func(ctx context.Context, refreshToken string) (domain.AuthTokens, error) {
				refreshed = true
				return domain.AuthTokens{}, nil
			},
		}
		s := NewAuthService(api, store, nil)

		require.NoError(t, s.RefreshIfNeeded(context.Background()))
		assert.False(t, refreshed)
	})

	t.Run("истекший токен обновляется", func(t *testing.T) {
		store := tokenstore.NewMemory()
		require.NoError(t, store.Save(domain.AuthTokens{
			Access:  signedToken(t, time.Now().Add(-1*time.Minute)),
			Refresh: "old-refresh",
		}))

		api := &mockAuthAPI{
			refreshFunc: func(ctx context.Context, refreshToken string) (domain.AuthTokens, error) {
				assert.Equal(t, "old-refresh", refreshToken)
				return domain.AuthTokens{Access: "new-access"}, nil
			},
		}
		s := NewAuthService(api, store, nil)

		require.NoError(t, s.RefreshIfNeeded(context.Background()))

		tokens, ok := store.Load()
		require.True(t, ok)
		assert.Equal(t, "new-access", tokens.Access)
		assert.Equal(t, "old-refresh", tokens.Refresh, "refresh-токен сохраняется, если сервер не выдал новый")
	})

	t.Run("нечитаемый токен считается истекшим", func(t *testing.T) {
		assert.True(t, tokenExpiresSoon("не jwt", time.Minute))
		assert.True(t, tokenExpiresSoon("", time.Minute))
	})
}
