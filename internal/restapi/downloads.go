package restapi

import (
	"context"
	"fmt"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

// ListDownloads возвращает историю загрузок текущего пользователя.
func (c *Client) ListDownloads(ctx context.Context) ([]domain.Download, error) {
	return getList[domain.Download](c, ctx, "/api/downloads/", nil)
}

// DeleteDownload удаляет запись истории загрузок.
func (c *Client) DeleteDownload(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/downloads/%d/", id))
}

// Presign запрашивает временную ссылку на файл товара в указанном
// формате. Отказы из-за лимита скачиваний возвращаются как APIError
// и классифицируются на уровне сервиса загрузок.
func (c *Client) Presign(ctx context.Context, productID int64, format string) (string, error) {
	body := map[string]any{
		"product_id": productID,
		"format":     format,
	}
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.post(ctx, "/api/downloads/presign/", body, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", fmt.Errorf("сервер не вернул ссылку на файл")
	}
	return resp.URL, nil
}
