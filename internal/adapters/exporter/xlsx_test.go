package exporter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

func TestXLSXExporter(t *testing.T) {
	t.Run("Export сохраняет историю в файл", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "downloads.xlsx")
		exporter := NewXLSXExporter(path)

		downloads := []domain.Download{
			{
				ID:        1,
				Product:   &domain.Product{ID: 10, Title: "Диван Осло"},
				Format:    "obj",
				CreatedAt: time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC),
			},
		}

		require.NoError(t, exporter.Export(downloads))

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()

		title, err := f.GetCellValue("Загрузки", "B2")
		require.NoError(t, err)
		assert.Equal(t, "Диван Осло", title)

		format, err := f.GetCellValue("Загрузки", "C2")
		require.NoError(t, err)
		assert.Equal(t, "obj", format)
	})

	t.Run("Export пустой истории оставляет только заголовок", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.xlsx")
		exporter := NewXLSXExporter(path)

		require.NoError(t, exporter.Export(nil))

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()

		header, err := f.GetCellValue("Загрузки", "A1")
		require.NoError(t, err)
		assert.Equal(t, "№", header)
	})
}
