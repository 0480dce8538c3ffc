package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
)

// fakeMarketplace - это мок-реализация удаленного API маркетплейса
// с состоянием: чаты и сообщения создаются по запросам, скачивания
// ограничены лимитом подписки.
type fakeMarketplace struct {
	mu            sync.Mutex
	nextChatID    int64
	nextMessageID int64
	chats         []domain.Chat
	messages      []domain.Message
	downloadLimit int
	downloads     int

	server *httptest.Server
}

func newFakeMarketplace(t *testing.T) *fakeMarketplace {
	t.Helper()

	f := &fakeMarketplace{
		nextChatID:    1,
		nextMessageID: 1,
		downloadLimit: 2,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login/", f.handleLogin)
	mux.HandleFunc("/api/users/me/", f.handleMe)
	mux.HandleFunc("/api/users/search/", f.handleSearch)
	mux.HandleFunc("/api/chats/", f.handleChats)
	mux.HandleFunc("/api/messages/", f.handleMessages)
	mux.HandleFunc("/api/messages/mark_chat_read/", f.handleMarkRead)
	mux.HandleFunc("/api/downloads/presign/", f.handlePresign)
	mux.HandleFunc("/blob", f.handleBlob)

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeMarketplace) URL() string { return f.server.URL }

func (f *fakeMarketplace) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	json.NewDecoder(r.Body).Decode(&creds)
	if creds.Password != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "неверные учетные данные"}`))
		return
	}
	json.NewEncoder(w).Encode(domain.AuthTokens{Access: "access-token", Refresh: "refresh-token"})
}

func (f *fakeMarketplace) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer access-token" {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "требуется авторизация"}`))
		return
	}
	json.NewEncoder(w).Encode(domain.User{ID: 1, Username: "me"})
}

func (f *fakeMarketplace) handleSearch(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode([]domain.User{
		{ID: 1, Username: "me"},
		{ID: 7, Username: "maria"},
	})
}

func (f *fakeMarketplace) handleChats(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method == http.MethodPost {
		var req struct {
			Participant2ID int64 `json:"participant2_id"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		chat := domain.Chat{
			ID:               f.nextChatID,
			Participant1:     &domain.User{ID: 1, Username: "me"},
			Participant2:     &domain.User{ID: req.Participant2ID},
			OtherParticipant: &domain.User{ID: req.Participant2ID},
		}
		f.nextChatID++
		f.chats = append(f.chats, chat)
		json.NewEncoder(w).Encode(chat)
		return
	}

	// Пагинированный конверт, как у настоящего API
	results, _ := json.Marshal(f.chats)
	json.NewEncoder(w).Encode(map[string]any{
		"count":   len(f.chats),
		"results": json.RawMessage(results),
	})
}

func (f *fakeMarketplace) handleMessages(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Method == http.MethodPost {
		var req struct {
			Chat        int64  `json:"chat"`
			MessageType string `json:"message_type"`
			Content     string `json:"content"`
			BasketID    int64  `json:"basket_id"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		msg := domain.Message{
			ID:          f.nextMessageID,
			Chat:        req.Chat,
			Sender:      &domain.User{ID: 1, Username: "me"},
			MessageType: req.MessageType,
			Content:     req.Content,
		}
		if req.MessageType == domain.MessageTypeBasket {
			msg.Baskets = []domain.MessageBasket{{ID: req.BasketID}}
		}
		f.nextMessageID++
		f.messages = append(f.messages, msg)
		json.NewEncoder(w).Encode(msg)
		return
	}

	chatID, _ := strconv.ParseInt(r.URL.Query().Get("chat_id"), 10, 64)
	var filtered []domain.Message
	for _, msg := range f.messages {
		if msg.Chat == chatID {
			filtered = append(filtered, msg)
		}
	}
	json.NewEncoder(w).Encode(filtered)
}

func (f *fakeMarketplace) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChatID int64 `json:"chat_id"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, chat := range f.chats {
		if chat.ID == req.ChatID {
			w.Write([]byte(`{"status": "ok"}`))
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"detail": "чат не найден"}`))
}

func (f *fakeMarketplace) handlePresign(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.downloads >= f.downloadLimit {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "Лимит скачиваний по подписке исчерпан"}`))
		return
	}
	f.downloads++
	json.NewEncoder(w).Encode(map[string]string{"url": f.server.URL + "/blob"})
}

func (f *fakeMarketplace) handleBlob(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("model-bytes"))
}
