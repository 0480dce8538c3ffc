package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

func TestCurrentUser(t *testing.T) {
	t.Run("кэширует профиль", func(t *testing.T) {
		var calls int
		api := &mockUserAPI{
			meFunc: func(ctx context.Context) (domain.User, error) {
				calls++
				return domain.User{ID: 7, Username: "maria"}, nil
			},
		}
		s := NewSession(api, WithSessionTTL(1*time.Minute))

		first, err := s.CurrentUser(context.Background())
		require.NoError(t, err)
		second, err := s.CurrentUser(context.Background())
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, calls, "второй вызов обслуживается кэшем")
	})

	t.Run("инвалидация вызывает перечитывание", func(t *testing.T) {
		var calls int
		api := &mockUserAPI{
			meFunc: func(ctx context.Context) (domain.User, error) {
				calls++
				return domain.User{ID: 7}, nil
			},
		}
		s := NewSession(api)

		s.CurrentUser(context.Background())
		s.Invalidate()
		s.CurrentUser(context.Background())

		assert.Equal(t, 2, calls)
	})

	t.Run("ошибка API возвращается", func(t *testing.T) {
		api := &mockUserAPI{
			meFunc: func(ctx context.Context) (domain.User, error) {
				return domain.User{}, errors.New("сеть недоступна")
			},
		}
		s := NewSession(api)

		_, err := s.CurrentUser(context.Background())
		assert.Error(t, err)
	})
}

func TestSubscribe(t *testing.T) {
	t.Run("подписчики уведомляются при свежей загрузке", func(t *testing.T) {
		api := &mockUserAPI{
			meFunc: func(ctx context.Context) (domain.User, error) {
				return domain.User{ID: 7, Username: "maria"}, nil
			},
		}
		s := NewSession(api)

		var notified []domain.User
		s.Subscribe(func(user domain.User) {
			notified = append(notified, user)
		})

		s.CurrentUser(context.Background())
		s.CurrentUser(context.Background()) // из кэша, без уведомления

		require.Len(t, notified, 1)
		assert.Equal(t, "maria", notified[0].Username)
	})
}
