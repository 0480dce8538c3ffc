package domain

import "time"

// UserProfile представляет профиль пользователя: подписка и уведомления.
// Платежные реквизиты сервера сознательно не декодируются: клиенту
// они не нужны, а в логи попадать не должны.
type UserProfile struct {
	SubscriptionType        string `json:"subscription_type"`
	SubscriptionTypeDisplay string `json:"subscription_type_display,omitempty"`
	ChatNotifications       bool   `json:"chat_notifications"`
	NewModelsNotifications  bool   `json:"new_models_notifications"`
}

// Уровни подписки пользователя.
const (
	SubscriptionTrial   = "trial"
	SubscriptionBasic   = "basic"
	SubscriptionPremium = "premium"
)

// User представляет пользователя маркетплейса.
// Идентификаторы назначаются сервером и считаются непрозрачными.
type User struct {
	ID        int64        `json:"id"`
	Username  string       `json:"username"`
	Email     string       `json:"email"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	IsActive  bool         `json:"is_active"`
	Profile   *UserProfile `json:"profile,omitempty"`
}

// DisplayName возвращает имя для отображения: username, иначе email.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Category представляет категорию каталога.
type Category struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent *int64 `json:"parent,omitempty"`
	Image  string `json:"image,omitempty"`
}

// ProductImage представляет одно изображение товара.
type ProductImage struct {
	ID       int64  `json:"id"`
	ImageURL string `json:"image_url"`
	Order    int    `json:"order"`
}

// Product представляет товар каталога (3D-модель мебели).
type Product struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Category    *Category      `json:"category,omitempty"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Material    string         `json:"material"`
	Style       string         `json:"style"`
	Color       string         `json:"color"`
	IsActive    bool           `json:"is_active"`
	IsTrending  bool           `json:"is_trending"`
	Image       string         `json:"image,omitempty"`
	Images      []ProductImage `json:"images,omitempty"`
}

// ProductFilters описывает фильтры списка товаров.
// Нулевые значения не попадают в параметры запроса.
type ProductFilters struct {
	Category   int64
	Material   string
	Style      string
	Color      string
	PriceMin   float64
	PriceMax   float64
	IsTrending bool
	Search     string
	Ordering   string
}

// BasketItem представляет позицию корзины: товар, количество и формат файла.
type BasketItem struct {
	ID       int64    `json:"id"`
	Product  *Product `json:"product,omitempty"`
	Quantity int      `json:"quantity"`
	Format   string   `json:"format,omitempty"`
}

// Basket представляет именованную корзину (проект) пользователя.
// Корзиной владеет ровно один пользователь; отправка корзины в чат
// не передает владение.
type Basket struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	User      *User        `json:"user,omitempty"`
	Items     []BasketItem `json:"items"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Download представляет запись истории загрузок.
type Download struct {
	ID        int64     `json:"id"`
	Product   *Product  `json:"product,omitempty"`
	Format    string    `json:"format,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	File      string    `json:"file,omitempty"`
}

// Plan представляет тарифный план подписки.
type Plan struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

// Subscription представляет подписку пользователя на тарифный план.
type Subscription struct {
	ID        int64     `json:"id"`
	Plan      *Plan     `json:"plan,omitempty"`
	User      int64     `json:"user"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Order представляет заказ, созданный из корзины.
type Order struct {
	ID          int64     `json:"id"`
	Basket      *Basket   `json:"basket,omitempty"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AuthTokens представляет пару JWT-токенов, выданную сервером.
type AuthTokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Credentials представляет учетные данные для входа.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration представляет данные для регистрации нового пользователя.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}
