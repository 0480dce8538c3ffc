package services

import (
	"context"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

// mockChatAPI - это мок-реализация ports.ChatAPI
type mockChatAPI struct {
	listChatsFunc  func(ctx context.Context) ([]domain.Chat, error)
	createChatFunc func(ctx context.Context, participant2ID int64) (domain.Chat, error)
	togglePinFunc  func(ctx context.Context, chatID int64) (bool, error)
}

func (m *mockChatAPI) ListChats(ctx context.Context) ([]domain.Chat, error) {
	if m.listChatsFunc != nil {
		return m.listChatsFunc(ctx)
	}
	return []domain.Chat{}, nil
}

func (m *mockChatAPI) CreateChat(ctx context.Context, participant2ID int64) (domain.Chat, error) {
	if m.createChatFunc != nil {
		return m.createChatFunc(ctx, participant2ID)
	}
	return domain.Chat{ID: 1}, nil
}

func (m *mockChatAPI) TogglePin(ctx context.Context, chatID int64) (bool, error) {
	if m.togglePinFunc != nil {
		return m.togglePinFunc(ctx, chatID)
	}
	return true, nil
}

// mockMessageAPI - это мок-реализация ports.MessageAPI
type mockMessageAPI struct {
	listMessagesFunc func(ctx context.Context, chatID int64) ([]domain.Message, error)
	sendTextFunc     func(ctx context.Context, chatID int64, content string) (domain.Message, error)
	sendProductsFunc func(ctx context.Context, chatID int64, productIDs []int64, selectedFormats map[int64][]string) (domain.Message, error)
	sendBasketFunc   func(ctx context.Context, chatID, basketID int64) (domain.Message, error)
	markChatReadFunc func(ctx context.Context, chatID int64) error
}

func (m *mockMessageAPI) ListMessages(ctx context.Context, chatID int64) ([]domain.Message, error) {
	if m.listMessagesFunc != nil {
		return m.listMessagesFunc(ctx, chatID)
	}
	return []domain.Message{}, nil
}

func (m *mockMessageAPI) SendText(ctx context.Context, chatID int64, content string) (domain.Message, error) {
	if m.sendTextFunc != nil {
		return m.sendTextFunc(ctx, chatID, content)
	}
	return domain.Message{
		ID:          1,
		Chat:        chatID,
		Sender:      &domain.User{ID: 1},
		MessageType: domain.MessageTypeText,
		Content:     content,
	}, nil
}

func (m *mockMessageAPI) SendProducts(ctx context.Context, chatID int64, productIDs []int64, selectedFormats map[int64][]string) (domain.Message, error) {
	if m.sendProductsFunc != nil {
		return m.sendProductsFunc(ctx, chatID, productIDs, selectedFormats)
	}
	return domain.Message{
		ID:          1,
		Chat:        chatID,
		Sender:      &domain.User{ID: 1},
		MessageType: domain.MessageTypeProduct,
	}, nil
}

func (m *mockMessageAPI) SendBasket(ctx context.Context, chatID, basketID int64) (domain.Message, error) {
	if m.sendBasketFunc != nil {
		return m.sendBasketFunc(ctx, chatID, basketID)
	}
	return domain.Message{
		ID:          1,
		Chat:        chatID,
		Sender:      &domain.User{ID: 1},
		MessageType: domain.MessageTypeBasket,
		Baskets:     []domain.MessageBasket{{ID: basketID}},
	}, nil
}

func (m *mockMessageAPI) MarkChatRead(ctx context.Context, chatID int64) error {
	if m.markChatReadFunc != nil {
		return m.markChatReadFunc(ctx, chatID)
	}
	return nil
}

// mockUserAPI - это мок-реализация ports.UserAPI
type mockUserAPI struct {
	meFunc     func(ctx context.Context) (domain.User, error)
	searchFunc func(ctx context.Context, query string) ([]domain.User, error)
}

func (m *mockUserAPI) Me(ctx context.Context) (domain.User, error) {
	if m.meFunc != nil {
		return m.meFunc(ctx)
	}
	return domain.User{ID: 1, Username: "me"}, nil
}

func (m *mockUserAPI) Search(ctx context.Context, query string) ([]domain.User, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query)
	}
	return []domain.User{}, nil
}

// mockDownloadAPI - это мок-реализация ports.DownloadAPI
type mockDownloadAPI struct {
	listDownloadsFunc  func(ctx context.Context) ([]domain.Download, error)
	deleteDownloadFunc func(ctx context.Context, id int64) error
	presignFunc        func(ctx context.Context, productID int64, format string) (string, error)
}

func (m *mockDownloadAPI) ListDownloads(ctx context.Context) ([]domain.Download, error) {
	if m.listDownloadsFunc != nil {
		return m.listDownloadsFunc(ctx)
	}
	return []domain.Download{}, nil
}

func (m *mockDownloadAPI) DeleteDownload(ctx context.Context, id int64) error {
	if m.deleteDownloadFunc != nil {
		return m.deleteDownloadFunc(ctx, id)
	}
	return nil
}

func (m *mockDownloadAPI) Presign(ctx context.Context, productID int64, format string) (string, error) {
	if m.presignFunc != nil {
		return m.presignFunc(ctx, productID, format)
	}
	return "http://files.test/file", nil
}

// mockAuthAPI - это мок-реализация ports.AuthAPI
type mockAuthAPI struct {
	loginFunc   func(ctx context.Context, creds domain.Credentials) (domain.AuthTokens, error)
	refreshFunc func(ctx context.Context, refreshToken string) (domain.AuthTokens, error)
	logoutFunc  func(ctx context.Context) error
}

func (m *mockAuthAPI) Login(ctx context.Context, creds domain.Credentials) (domain.AuthTokens, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, creds)
	}
	return domain.AuthTokens{Access: "access", Refresh: "refresh"}, nil
}

func (m *mockAuthAPI) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	return domain.User{ID: 1, Username: reg.Username}, nil
}

func (m *mockAuthAPI) Refresh(ctx context.Context, refreshToken string) (domain.AuthTokens, error) {
	if m.refreshFunc != nil {
		return m.refreshFunc(ctx, refreshToken)
	}
	return domain.AuthTokens{Access: "fresh-access", Refresh: "fresh-refresh"}, nil
}

func (m *mockAuthAPI) Logout(ctx context.Context) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx)
	}
	return nil
}
