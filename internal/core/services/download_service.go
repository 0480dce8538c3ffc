package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
	"github.com/Heyaski/sofa-marketplace/internal/ports"
	"github.com/Heyaski/sofa-marketplace/internal/restapi"
)

// ErrDownloadLimit возвращается, когда сервер отклонил выдачу файла
// из-за исчерпанного лимита скачиваний по текущей подписке. Вызывающая
// сторона по этой ошибке предлагает переход на страницу тарифов.
type ErrDownloadLimit struct {
	// Message — текст сервера о причине отказа, пригодный для показа.
	Message string
}

// Error реализует интерфейс error.
func (e *ErrDownloadLimit) Error() string {
	if e.Message == "" {
		return "лимит скачиваний исчерпан"
	}
	return e.Message
}

// limitKeywords — подстроки в тексте ошибки сервера, по которым
// внутренняя ошибка 500 распознается как отказ по лимиту подписки.
var limitKeywords = []string{"лимит", "скачиваний", "подписк"}

// DownloadService предоставляет выдачу файлов товаров и историю загрузок.
type DownloadService struct {
	api        ports.DownloadAPI
	httpClient *http.Client
	dir        string
	exporter   ports.DownloadExporter
	log        *slog.Logger
}

// DownloadServiceOption — функциональная опция для настройки DownloadService.
type DownloadServiceOption func(*DownloadService)

// WithDownloadHTTPClient устанавливает HTTP-клиент для получения файлов
// по временным ссылкам.
func WithDownloadHTTPClient(client *http.Client) DownloadServiceOption {
	return func(s *DownloadService) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithDownloadExporter устанавливает экспортер истории загрузок.
func WithDownloadExporter(exporter ports.DownloadExporter) DownloadServiceOption {
	return func(s *DownloadService) {
		s.exporter = exporter
	}
}

// WithDownloadLogger устанавливает логгер сервиса загрузок.
func WithDownloadLogger(l *slog.Logger) DownloadServiceOption {
	return func(s *DownloadService) {
		if l != nil {
			s.log = l
		}
	}
}

// NewDownloadService создает новый экземпляр DownloadService.
// dir — каталог, в который сохраняются скачанные файлы.
func NewDownloadService(api ports.DownloadAPI, dir string, opts ...DownloadServiceOption) *DownloadService {
	s := &DownloadService{
		api:        api,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		dir:        dir,
		log:        slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Download запрашивает временную ссылку на файл товара и сохраняет файл
// в каталог загрузок. Отказ по лимиту скачиваний возвращается как
// *ErrDownloadLimit до каких-либо попыток получить файл.
func (s *DownloadService) Download(ctx context.Context, productID int64, format string) (string, error) {
	url, err := s.api.Presign(ctx, productID, format)
	if err != nil {
		if limitErr := classifyLimit(err); limitErr != nil {
			s.log.InfoContext(ctx, "Скачивание отклонено по лимиту", "product_id", productID, "format", format)
			return "", limitErr
		}
		return "", fmt.Errorf("не удалось получить ссылку на файл: %w", err)
	}

	path, err := s.fetch(ctx, url, productID, format)
	if err != nil {
		return "", fmt.Errorf("не удалось скачать файл товара %d: %w", productID, err)
	}

	s.log.InfoContext(ctx, "Файл скачан", "product_id", productID, "format", format, "path", path)
	return path, nil
}

// History возвращает историю загрузок. Ошибки приводят к пустому списку.
func (s *DownloadService) History(ctx context.Context) []domain.Download {
	downloads, err := s.api.ListDownloads(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "Не удалось загрузить историю загрузок", "error", err)
		return []domain.Download{}
	}
	return downloads
}

// Delete удаляет запись истории загрузок.
func (s *DownloadService) Delete(ctx context.Context, id int64) error {
	if err := s.api.DeleteDownload(ctx, id); err != nil {
		return fmt.Errorf("не удалось удалить запись загрузки %d: %w", id, err)
	}
	return nil
}

// ExportHistory выводит историю загрузок через настроенный экспортер.
func (s *DownloadService) ExportHistory(ctx context.Context) error {
	if s.exporter == nil {
		return fmt.Errorf("экспортер истории загрузок не настроен")
	}
	return s.exporter.Export(s.History(ctx))
}

// fetch получает файл по временной ссылке с повторами и сохраняет его
// на диск. Ссылка короткоживущая, поэтому повторы ограничены по времени.
func (s *DownloadService) fetch(ctx context.Context, url string, productID int64, format string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("не удалось создать каталог загрузок: %w", err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("хранилище вернуло статус %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("хранилище вернуло статус %d", resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}

	name := fmt.Sprintf("product-%d-%s-%s%s", productID, format, uuid.NewString()[:8], extensionFor(format))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("не удалось сохранить файл: %w", err)
	}

	return path, nil
}

// classifyLimit распознает отказ по лимиту скачиваний. Сервер отвечает
// 403 с телом ошибки; при сбое на стороне выдачи лимит приходит как 500
// с текстом про лимит или подписку.
func classifyLimit(err error) *ErrDownloadLimit {
	var apiErr *restapi.APIError
	if !errors.As(err, &apiErr) {
		return nil
	}

	msg := apiErr.Message()

	if apiErr.StatusCode == http.StatusForbidden && msg != "" {
		return &ErrDownloadLimit{Message: msg}
	}

	if apiErr.StatusCode == http.StatusInternalServerError {
		lower := strings.ToLower(msg)
		for _, keyword := range limitKeywords {
			if strings.Contains(lower, keyword) {
				return &ErrDownloadLimit{Message: msg}
			}
		}
	}

	return nil
}

// extensionFor возвращает расширение файла для формата модели.
func extensionFor(format string) string {
	switch strings.ToLower(format) {
	case "obj", "fbx", "gltf", "glb", "max", "blend", "3ds", "zip":
		return "." + strings.ToLower(format)
	default:
		return ".bin"
	}
}
