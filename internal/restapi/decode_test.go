package restapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

func TestDecodeList(t *testing.T) {
	t.Run("голый массив", func(t *testing.T) {
		data := []byte(`[{"id": 1, "username": "ivan"}, {"id": 2, "username": "maria"}]`)

		users := decodeList[domain.User](data)

		require.Len(t, users, 2)
		assert.Equal(t, int64(1), users[0].ID)
		assert.Equal(t, "maria", users[1].Username)
	})

	t.Run("пагинированный конверт", func(t *testing.T) {
		data := []byte(`{"count": 2, "next": null, "previous": null, "results": [{"id": 10}, {"id": 20}]}`)

		chats := decodeList[domain.Chat](data)

		require.Len(t, chats, 2)
		assert.Equal(t, int64(10), chats[0].ID)
		assert.Equal(t, int64(20), chats[1].ID)
	})

	t.Run("конверт с пустыми результатами", func(t *testing.T) {
		data := []byte(`{"count": 0, "results": []}`)

		users := decodeList[domain.User](data)

		assert.NotNil(t, users)
		assert.Empty(t, users)
	})

	t.Run("неожиданная форма приводится к пустому срезу", func(t *testing.T) {
		for _, data := range []string{`{"detail": "что-то пошло не так"}`, `"строка"`, `42`, `null`} {
			users := decodeList[domain.User]([]byte(data))
			assert.NotNil(t, users, "вход: %s", data)
			assert.Empty(t, users, "вход: %s", data)
		}
	})

	t.Run("мусор приводится к пустому срезу", func(t *testing.T) {
		users := decodeList[domain.User]([]byte(`не json вообще`))
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})
}

func TestAPIErrorMessage(t *testing.T) {
	t.Run("поле detail", func(t *testing.T) {
		err := &APIError{StatusCode: 403, Body: []byte(`{"detail": "Доступ запрещен"}`)}
		assert.Equal(t, "Доступ запрещен", err.Message())
	})

	t.Run("поле error", func(t *testing.T) {
		err := &APIError{StatusCode: 403, Body: []byte(`{"error": "Лимит скачиваний исчерпан"}`)}
		assert.Equal(t, "Лимит скачиваний исчерпан", err.Message())
	})

	t.Run("ошибки валидации по полям", func(t *testing.T) {
		err := &APIError{StatusCode: 400, Body: []byte(`{"basket_id": ["Корзина не найдена"]}`)}
		assert.Equal(t, "Корзина не найдена", err.Message())
	})

	t.Run("пустое тело", func(t *testing.T) {
		err := &APIError{StatusCode: 500}
		assert.Equal(t, "", err.Message())
		assert.Contains(t, err.Error(), "500")
	})
}
