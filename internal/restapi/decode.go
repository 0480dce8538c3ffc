package restapi

import (
	"context"
	"encoding/json"
	"net/url"
)

// listEnvelope представляет пагинированный конверт списочных ответов API.
type listEnvelope struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  json.RawMessage `json:"results"`
}

// decodeList нормализует списочный ответ API к упорядоченному срезу.
// Списочные эндпоинты возвращают либо голый массив, либо конверт
// {count, next, previous, results}; любая другая форма приводится к
// пустому срезу, а не к ошибке, чтобы у вызывающей стороны всегда было
// отображаемое состояние.
func decodeList[T any](data []byte) []T {
	var direct []T
	if err := json.Unmarshal(data, &direct); err == nil {
		if direct == nil {
			return []T{}
		}
		return direct
	}

	var envelope listEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Results != nil {
		var results []T
		if err := json.Unmarshal(envelope.Results, &results); err == nil && results != nil {
			return results
		}
	}

	return []T{}
}

// getList выполняет GET-запрос к списочному эндпоинту и нормализует
// обе поддерживаемые формы ответа.
func getList[T any](c *Client, ctx context.Context, path string, query url.Values) ([]T, error) {
	var raw json.RawMessage
	if err := c.get(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw), nil
}
