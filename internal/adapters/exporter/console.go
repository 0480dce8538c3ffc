package exporter

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
	"github.com/Heyaski/sofa-marketplace/internal/ports"
)

// ConsoleExporter реализует интерфейс DownloadExporter для вывода
// истории загрузок в консоль.
type ConsoleExporter struct{}

// NewConsoleExporter создает новый экземпляр ConsoleExporter.
func NewConsoleExporter() ports.DownloadExporter {
	return &ConsoleExporter{}
}

// Export выводит историю загрузок в консоль.
func (e *ConsoleExporter) Export(downloads []domain.Download) error {
	color.New(color.Bold).Println("--- История загрузок ---")
	if len(downloads) == 0 {
		fmt.Println("Загрузок пока нет.")
		return nil
	}

	for i, d := range downloads {
		title := "(товар удален)"
		if d.Product != nil {
			title = d.Product.Title
		}
		if d.Format != "" {
			fmt.Printf("%d. %s [%s] — %s\n", i+1, title, d.Format, d.CreatedAt.Format("02.01.2006 15:04"))
		} else {
			fmt.Printf("%d. %s — %s\n", i+1, title, d.CreatedAt.Format("02.01.2006 15:04"))
		}
	}
	return nil
}
