package restapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

// ListProducts возвращает товары каталога с учетом фильтров.
func (c *Client) ListProducts(ctx context.Context, filters *domain.ProductFilters) ([]domain.Product, error) {
	return getList[domain.Product](c, ctx, "/api/products/", productQuery(filters))
}

// GetProduct возвращает товар по идентификатору.
func (c *Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var product domain.Product
	if err := c.get(ctx, fmt.Sprintf("/api/products/%d/", id), nil, &product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// ListCategories возвращает все категории каталога.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return getList[domain.Category](c, ctx, "/api/categories/", nil)
}

// productQuery переводит фильтры в параметры запроса.
// Незаполненные поля опускаются.
func productQuery(filters *domain.ProductFilters) url.Values {
	if filters == nil {
		return nil
	}

	q := url.Values{}
	if filters.Category != 0 {
		q.Set("category", strconv.FormatInt(filters.Category, 10))
	}
	if filters.Material != "" {
		q.Set("material", filters.Material)
	}
	if filters.Style != "" {
		q.Set("style", filters.Style)
	}
	if filters.Color != "" {
		q.Set("color", filters.Color)
	}
	if filters.PriceMin > 0 {
		q.Set("price_min", strconv.FormatFloat(filters.PriceMin, 'f', -1, 64))
	}
	if filters.PriceMax > 0 {
		q.Set("price_max", strconv.FormatFloat(filters.PriceMax, 'f', -1, 64))
	}
	if filters.IsTrending {
		q.Set("is_trending", "true")
	}
	if filters.Search != "" {
		q.Set("search", filters.Search)
	}
	if filters.Ordering != "" {
		q.Set("ordering", filters.Ordering)
	}
	return q
}
