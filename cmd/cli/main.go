package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"

	"github.com/Heyaski/sofa-marketplace/internal/adapters/clipboard"
	"github.com/Heyaski/sofa-marketplace/internal/adapters/exporter"
	"github.com/Heyaski/sofa-marketplace/internal/core/services"
	"github.com/Heyaski/sofa-marketplace/internal/domain"
	applog "github.com/Heyaski/sofa-marketplace/internal/log"
	"github.com/Heyaski/sofa-marketplace/internal/pkg/config"
	"github.com/Heyaski/sofa-marketplace/internal/pkg/term"
	"github.com/Heyaski/sofa-marketplace/internal/pkg/tokenstore"
	"github.com/Heyaski/sofa-marketplace/internal/restapi"
)

const usage = `Использование: cli <команда> [аргументы]

Команды:
  login                          вход в систему
  logout                         выход из системы
  chats                          список чатов
  messages <chat_id>             сообщения чата
  send <chat_id> <текст>         отправить текстовое сообщение
  share <basket_id> <user_id>    отправить корзину пользователю
  link <basket_id>               ссылка на корзину (с копированием в буфер)
  recipients [запрос]            кандидаты для отправки корзины
  download <product_id> <формат> скачать файл товара
  history                        история загрузок
  plans                          тарифные планы
`

// app объединяет сервисы, доступные командам CLI.
type app struct {
	cfg       *config.Config
	auth      *services.AuthService
	session   *services.Session
	chats     *services.ChatDirectory
	messages  *services.MessageStream
	composer  *services.ShareComposer
	downloads *services.DownloadService
	api       *restapi.Client
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var xlsxPath string
	var comment string
	flag.StringVar(&xlsxPath, "xlsx", "", "сохранить историю загрузок в XLSX-файл")
	flag.StringVar(&comment, "comment", "", "комментарий к отправляемой корзине")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("недопустимая конфигурация: %w", err)
	}

	// CLI шумит только о предупреждениях: результат команд идет в stdout.
	logger := applog.Setup("warn")
	a, err := newApp(cfg, logger, xlsxPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := a.refreshSession(ctx, args[0]); err != nil {
		return err
	}

	return a.dispatch(ctx, args, comment)
}

func newApp(cfg *config.Config, logger *slog.Logger, xlsxPath string) (*app, error) {
	tokens, err := tokenstore.NewFileStore(cfg.Storage.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть хранилище токенов: %w", err)
	}

	api := restapi.NewClient(cfg.API.BaseURL,
		restapi.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second}),
		restapi.WithTokenStore(tokens),
		restapi.WithLogger(logger),
		restapi.WithUnauthorizedHandler(func() {
			fmt.Fprintln(os.Stderr, "Сессия истекла, выполните вход: cli login")
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
	composer := services.NewShareComposer(chats, messages, api, session,
		clipboard.NewSystemClipboard(), cfg.UI.Origin, logger,
		services.WithSearchDebounce(time.Duration(cfg.UI.SearchDebounceMillis)*time.Millisecond))

	var historyExporter = exporter.NewConsoleExporter()
	if xlsxPath != "" {
		historyExporter = exporter.NewXLSXExporter(xlsxPath)
	}
	downloads := services.NewDownloadService(api, cfg.Storage.DownloadsDir,
		services.WithDownloadExporter(historyExporter),
		services.WithDownloadLogger(logger),
	)

	return &app{
		cfg:       cfg,
		auth:      auth,
		session:   session,
		chats:     chats,
		messages:  messages,
		composer:  composer,
		downloads: downloads,
		api:       api,
	}, nil
}

// refreshSession упреждающе обновляет токены перед командами,
// требующими авторизации.
func (a *app) refreshSession(ctx context.Context, command string) error {
	if command == "login" {
		return nil
	}
	if !a.auth.Authenticated() {
		return fmt.Errorf("требуется вход в систему: cli login")
	}
	if err := a.auth.RefreshIfNeeded(ctx); err != nil {
		slog.Warn("Не удалось обновить токены", "error", err)
	}
	return nil
}

func (a *app) dispatch(ctx context.Context, args []string, comment string) error {
	switch args[0] {
	case "login":
		return a.cmdLogin(ctx)
	case "logout":
		return a.auth.Logout(ctx)
	case "chats":
		return a.cmdChats(ctx)
	case "messages":
		chatID, err := argID(args, 1, "chat_id")
		if err != nil {
			return err
		}
		return a.cmdMessages(ctx, chatID)
	case "send":
		chatID, err := argID(args, 1, "chat_id")
		if err != nil {
			return err
		}
		if len(args) < 3 {
			return fmt.Errorf("требуется текст сообщения")
		}
		_, err = a.messages.SendText(ctx, chatID, args[2], nil)
		if err == nil {
			fmt.Println("Сообщение отправлено.")
		}
		return err
	case "share":
		basketID, err := argID(args, 1, "basket_id")
		if err != nil {
			return err
		}
		userID, err := argID(args, 2, "user_id")
		if err != nil {
			return err
		}
		if err := a.composer.ShareBasketToUser(ctx, basketID, userID, comment); err != nil {
			return err
		}
		fmt.Println("Корзина отправлена.")
		return nil
	case "link":
		basketID, err := argID(args, 1, "basket_id")
		if err != nil {
			return err
		}
		return a.cmdLink(basketID)
	case "recipients":
		query := ""
		if len(args) > 1 {
			query = args[1]
		}
		return a.cmdRecipients(ctx, query)
	case "download":
		productID, err := argID(args, 1, "product_id")
		if err != nil {
			return err
		}
		if len(args) < 3 {
			return fmt.Errorf("требуется формат файла")
		}
		return a.cmdDownload(ctx, productID, args[2])
	case "history":
		return a.downloads.ExportHistory(ctx)
	case "plans":
		return a.cmdPlans(ctx)
	default:
		flag.Usage()
		return fmt.Errorf("неизвестная команда: %s", args[0])
	}
}

func (a *app) cmdLogin(ctx context.Context) error {
	creds, err := term.NewTerminal().Credentials()
	if err != nil {
		return err
	}
	if err := a.auth.Login(ctx, creds); err != nil {
		return err
	}
	user, err := a.session.CurrentUser(ctx)
	if err != nil {
		return err
	}
	color.Green("Добро пожаловать, %s!", user.DisplayName())
	return nil
}

func (a *app) cmdChats(ctx context.Context) error {
	chats := a.chats.ListChats(ctx)
	if len(chats) == 0 {
		fmt.Println("Чатов пока нет.")
		return nil
	}

	bold := color.New(color.Bold)
	for _, chat := range chats {
		name := "(неизвестный собеседник)"
		if companion := chat.Companion(); companion != nil {
			name = companion.DisplayName()
		}
		marker := " "
		if chat.IsPinned {
			marker = "*"
		}
		bold.Printf("%s [%d] %s", marker, chat.ID, name)
		if chat.UnreadCount > 0 {
			color.Yellow(" (%d непрочитанных)", chat.UnreadCount)
		}
		fmt.Printf("  %s\n", chat.PreviewText())
	}
	return nil
}

func (a *app) cmdMessages(ctx context.Context, chatID int64) error {
	messages := a.messages.ListMessages(ctx, chatID)
	if len(messages) == 0 {
		fmt.Println("Сообщений пока нет.")
		return nil
	}

	for _, msg := range messages {
		fmt.Printf("[%s] %s: %s\n",
			msg.CreatedAt.Format("02.01 15:04"),
			msg.Sender.DisplayName(),
			messagePreview(msg))
	}

	// Процесс завершится раньше, чем сработала бы отложенная отметка,
	// поэтому чат отмечается прочитанным синхронно.
	if err := a.messages.MarkChatRead(ctx, chatID); err != nil {
		slog.Warn("Не удалось отметить чат прочитанным", "error", err)
	}
	return nil
}

func (a *app) cmdLink(basketID int64) error {
	link := a.composer.ShareLink(basketID)
	fmt.Println(link)
	if err := a.composer.CopyShareLink(basketID); err != nil {
		fmt.Fprintf(os.Stderr, "Ссылка не скопирована: %v\n", err)
		return nil
	}
	color.Green("Ссылка скопирована в буфер обмена.")
	return nil
}

func (a *app) cmdRecipients(ctx context.Context, query string) error {
	recipients := a.composer.Recipients(ctx, query)
	if len(recipients) == 0 {
		fmt.Println("Получатели не найдены.")
		return nil
	}
	for _, user := range recipients {
		fmt.Printf("[%d] %s\n", user.ID, user.DisplayName())
	}
	return nil
}

func (a *app) cmdDownload(ctx context.Context, productID int64, format string) error {
	path, err := a.downloads.Download(ctx, productID, format)
	if err != nil {
		var limitErr *services.ErrDownloadLimit
		if errors.As(err, &limitErr) {
			color.Red("%s", limitErr.Error())
			fmt.Println("Смените тариф на странице подписок:", a.cfg.UI.Origin+"/profile/subscriptions")
			return nil
		}
		return err
	}
	color.Green("Файл сохранен: %s", path)
	return nil
}

func (a *app) cmdPlans(ctx context.Context) error {
	plans, err := a.api.ListPlans(ctx)
	if err != nil {
		return err
	}
	for _, plan := range plans {
		color.New(color.Bold).Printf("%s — %.2f ₽/мес\n", plan.Name, plan.Price)
		if plan.Description != "" {
			fmt.Printf("  %s\n", plan.Description)
		}
	}
	return nil
}

// messagePreview возвращает однострочное представление сообщения.
func messagePreview(msg domain.Message) string {
	switch msg.MessageType {
	case domain.MessageTypeProduct:
		return fmt.Sprintf("[товары: %d шт.]", len(msg.Products))
	case domain.MessageTypeBasket:
		return "[корзина]"
	default:
		return msg.Content
	}
}

// argID извлекает числовой аргумент позиционно.
func argID(args []string, pos int, name string) (int64, error) {
	if len(args) <= pos {
		return 0, fmt.Errorf("требуется %s", name)
	}
	id, err := strconv.ParseInt(args[pos], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("недопустимый %s: %s", name, args[pos])
	}
	return id, nil
}
