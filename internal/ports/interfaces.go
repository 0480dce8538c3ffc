package ports

import (
	"context"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

// AuthAPI определяет интерфейс для операций аутентификации на удаленном API.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.AuthTokens, error)
	Register(ctx context.Context, reg domain.Registration) (domain.User, error)
	Refresh(ctx context.Context, refreshToken string) (domain.AuthTokens, error)
	Logout(ctx context.Context) error
}

// UserAPI определяет интерфейс для операций с пользователями.
type UserAPI interface {
	// Me возвращает текущего аутентифицированного пользователя.
	Me(ctx context.Context) (domain.User, error)
	// Search ищет активных пользователей по имени или email.
	// Пустой запрос возвращает всех активных пользователей.
	Search(ctx context.Context, query string) ([]domain.User, error)
}

// ChatAPI определяет интерфейс для операций с чатами.
type ChatAPI interface {
	ListChats(ctx context.Context) ([]domain.Chat, error)
	// CreateChat создает чат с указанным собеседником. Сервер
	// идемпотентен для упорядоченной пары участников.
	CreateChat(ctx context.Context, participant2ID int64) (domain.Chat, error)
	// TogglePin переключает закрепление чата и возвращает новое состояние.
	TogglePin(ctx context.Context, chatID int64) (bool, error)
}

// MessageAPI определяет интерфейс для операций с сообщениями чата.
type MessageAPI interface {
	ListMessages(ctx context.Context, chatID int64) ([]domain.Message, error)
	SendText(ctx context.Context, chatID int64, content string) (domain.Message, error)
	SendProducts(ctx context.Context, chatID int64, productIDs []int64, selectedFormats map[int64][]string) (domain.Message, error)
	SendBasket(ctx context.Context, chatID, basketID int64) (domain.Message, error)
	MarkChatRead(ctx context.Context, chatID int64) error
}

// CatalogAPI определяет интерфейс для операций с каталогом товаров.
type CatalogAPI interface {
	ListProducts(ctx context.Context, filters *domain.ProductFilters) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// BasketAPI определяет интерфейс для операций с корзинами.
type BasketAPI interface {
	ListBaskets(ctx context.Context) ([]domain.Basket, error)
	GetBasket(ctx context.Context, id int64) (domain.Basket, error)
	CreateBasket(ctx context.Context, name string) (domain.Basket, error)
	AddItem(ctx context.Context, basketID, productID int64, quantity int, format string) (domain.BasketItem, error)
	UpdateItem(ctx context.Context, itemID int64, quantity int) (domain.BasketItem, error)
	RemoveItem(ctx context.Context, itemID int64) error
	ClearBasket(ctx context.Context, basketID int64) error
}

// DownloadAPI определяет интерфейс для истории загрузок и выдачи файлов.
type DownloadAPI interface {
	ListDownloads(ctx context.Context) ([]domain.Download, error)
	DeleteDownload(ctx context.Context, id int64) error
	// Presign запрашивает временную ссылку на файл товара в указанном формате.
	Presign(ctx context.Context, productID int64, format string) (string, error)
}

// SubscriptionAPI определяет интерфейс для операций с подписками.
type SubscriptionAPI interface {
	ListPlans(ctx context.Context) ([]domain.Plan, error)
	ListSubscriptions(ctx context.Context) ([]domain.Subscription, error)
	Subscribe(ctx context.Context, planID int64) (domain.Subscription, error)
}

// OrderAPI определяет интерфейс для операций с заказами.
type OrderAPI interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	CreateOrder(ctx context.Context, basketID int64) (domain.Order, error)
}

// TokenStore определяет интерфейс для постоянного хранения пары токенов.
type TokenStore interface {
	Load() (domain.AuthTokens, bool)
	Save(tokens domain.AuthTokens) error
	Clear() error
}

// Clipboard определяет интерфейс для записи в буфер обмена.
type Clipboard interface {
	Write(text string) error
}

// DownloadExporter определяет интерфейс для вывода истории загрузок.
type DownloadExporter interface {
	Export(downloads []domain.Download) error
}
