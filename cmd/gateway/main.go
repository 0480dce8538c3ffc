package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Heyaski/sofa-marketplace/internal/adapters/clipboard"
	"github.com/Heyaski/sofa-marketplace/internal/core/services"
	applog "github.com/Heyaski/sofa-marketplace/internal/log"
	"github.com/Heyaski/sofa-marketplace/internal/pkg/config"
	"github.com/Heyaski/sofa-marketplace/internal/pkg/tokenstore"
	"github.com/Heyaski/sofa-marketplace/internal/restapi"
	"github.com/Heyaski/sofa-marketplace/internal/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run() error {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		// Логгер еще не инициализирован, выводим в stderr
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Инициализация логгера с маскировкой токенов
	logger := applog.Setup(cfg.Logging.Level)

	// 3. Валидация конфигурации (после инициализации логгера)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Инициализация зависимостей
	tokens, err := tokenstore.NewFileStore(cfg.Storage.TokenFile)
	if err != nil {
		return fmt.Errorf("failed to open token store: %w", err)
	}

	api := restapi.NewClient(cfg.API.BaseURL,
		restapi.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second}),
		restapi.WithTokenStore(tokens),
		restapi.WithLogger(logger),
		restapi.WithUnauthorizedHandler(func() {
			logger.Warn("Сессия истекла, требуется повторный вход")
		}),
	)

	session := services.NewSession(api, services.WithSessionLogger(logger))
	auth := services.NewAuthService(api, tokens, session, services.WithAuthLogger(logger))
	chats := services.NewChatDirectory(api,
		services.WithChatCacheTTL(time.Duration(cfg.Chats.CacheTTLSeconds)*time.Second),
		services.WithChatDirectoryLogger(logger),
	)
	messages := services.NewMessageStream(api,
		services.WithMarkReadDelay(time.Duration(cfg.Chats.MarkReadDelayMill)*time.Millisecond),
		services.WithMessageStreamLogger(logger),
	)
	// Буфер обмена у шлюза отсутствует: ссылки отдаются клиенту как есть.
	composer := services.NewShareComposer(chats, messages, api, session, clipboard.NewMemory(), cfg.UI.Origin, logger,
		services.WithSearchDebounce(time.Duration(cfg.UI.SearchDebounceMillis)*time.Millisecond))
	downloads := services.NewDownloadService(api, cfg.Storage.DownloadsDir,
		services.WithDownloadLogger(logger),
	)

	// 5. Создание HTTP-шлюза
	srv := server.New(cfg, server.Services{
		Auth:          auth,
		Session:       session,
		Chats:         chats,
		Messages:      messages,
		Composer:      composer,
		Downloads:     downloads,
		Catalog:       api,
		Baskets:       api,
		Subscriptions: api,
		Orders:        api,
	}, logger)

	// 6. Запуск шлюза и graceful shutdown
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		logger.Info("Starting gateway", "addr", cfg.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Gateway error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Signal received, shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Gateway.ShutdownTimeoutSeconds)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Gateway forced to shutdown", "error", err)
	}

	<-serverDone
	logger.Info("Gateway stopped gracefully")
	return nil
}
