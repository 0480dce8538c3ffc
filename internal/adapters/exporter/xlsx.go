package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
	"github.com/Heyaski/sofa-marketplace/internal/ports"
)

// XLSXExporter реализует интерфейс DownloadExporter для сохранения
// истории загрузок в файл Excel.
type XLSXExporter struct {
	path string
}

// NewXLSXExporter создает новый экземпляр XLSXExporter, пишущий в path.
func NewXLSXExporter(path string) ports.DownloadExporter {
	return &XLSXExporter{path: path}
}

// Export сохраняет историю загрузок в XLSX-файл.
func (e *XLSXExporter) Export(downloads []domain.Download) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Загрузки"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("не удалось создать лист: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"№", "Товар", "Формат", "Дата"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("не удалось вычислить адрес ячейки: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("не удалось записать заголовок: %w", err)
		}
	}

	for i, d := range downloads {
		title := "(товар удален)"
		if d.Product != nil {
			title = d.Product.Title
		}
		row := i + 2
		values := []any{i + 1, title, d.Format, d.CreatedAt.Format("02.01.2006 15:04")}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("не удалось вычислить адрес ячейки: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("не удалось записать строку %d: %w", row, err)
			}
		}
	}

	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("не удалось сохранить файл %s: %w", e.path, err)
	}
	return nil
}
