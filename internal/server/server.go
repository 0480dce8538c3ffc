// Package server реализует локальный HTTP-шлюз над сервисами маркетплейса.
//
// Шлюз отдает представлениям готовые данные: списки чатов и сообщений
// уже отсортированы и отфильтрованы, ошибки лимита скачиваний
// преобразованы в понятный ответ с предложением сменить тариф.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/Heyaski/sofa-marketplace/internal/core/services"
	"github.com/Heyaski/sofa-marketplace/internal/domain"
	"github.com/Heyaski/sofa-marketplace/internal/pkg/config"
	"github.com/Heyaski/sofa-marketplace/internal/ports"
	"github.com/Heyaski/sofa-marketplace/internal/restapi"
)

// Services объединяет зависимости шлюза.
type Services struct {
	Auth      *services.AuthService
	Session   *services.Session
	Chats     *services.ChatDirectory
	Messages  *services.MessageStream
	Composer  *services.ShareComposer
	Downloads *services.DownloadService

	Catalog       ports.CatalogAPI
	Baskets       ports.BasketAPI
	Subscriptions ports.SubscriptionAPI
	Orders        ports.OrderAPI
}

// Server представляет HTTP-шлюз.
type Server struct {
	HTTPServer *http.Server
	cfg        *config.Config
	svc        Services
	jobs       *JobStore
	log        *slog.Logger

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
}

// New создает новый экземпляр Server.
func New(cfg *config.Config, svc Services, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		cfg:  cfg,
		svc:  svc,
		jobs: NewJobStore(),
		log:  log,
	}

	chiRouter := chi.NewRouter()

	// Промежуточное ПО
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.Logger)
	chiRouter.Use(middleware.Recoverer)

	// Конечная точка для проверки работоспособности
	chiRouter.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	chiRouter.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/me", s.handleMe)

		r.Get("/chats", s.handleListChats)
		r.Post("/chats", s.handleFindOrCreateChat)
		r.Post("/chats/{chatID}/pin", s.handleTogglePin)
		r.Get("/chats/{chatID}/messages", s.handleListMessages)
		r.Post("/chats/{chatID}/messages", s.handleSendMessage)
		r.Post("/chats/{chatID}/read", s.handleMarkRead)

		r.Get("/recipients", s.handleRecipients)
		r.Post("/baskets/{basketID}/share", s.handleShareBasket)
		r.Get("/baskets/{basketID}/link", s.handleShareLink)

		r.Get("/products", s.handleListProducts)
		r.Get("/products/{productID}", s.handleGetProduct)
		r.Get("/categories", s.handleListCategories)

		r.Get("/baskets", s.handleListBaskets)
		r.Post("/baskets", s.handleCreateBasket)
		r.Get("/baskets/{basketID}", s.handleGetBasket)
		r.Post("/baskets/{basketID}/items", s.handleAddBasketItem)
		r.Post("/baskets/{basketID}/clear", s.handleClearBasket)
		r.Put("/baskets/items/{itemID}", s.handleUpdateBasketItem)
		r.Delete("/baskets/items/{itemID}", s.handleRemoveBasketItem)

		r.Get("/downloads", s.handleListDownloads)
		r.Post("/downloads", s.handleDownload)
		r.Post("/downloads/jobs", s.handleCreateDownloadJob)
		r.Get("/downloads/jobs/{jobID}", s.handleGetDownloadJob)
		r.Delete("/downloads/{downloadID}", s.handleDeleteDownload)

		r.Get("/orders", s.handleListOrders)
		r.Post("/orders", s.handleCreateOrder)

		r.Get("/plans", s.handleListPlans)
		r.Get("/subscriptions", s.handleListSubscriptions)
		r.Post("/subscriptions", s.handleSubscribe)
	})

	// Очистка просроченных задач скачивания на время жизни шлюза
	s.cleanupCtx, s.cleanupCancel = context.WithCancel(context.Background())
	s.jobs.StartCleanupTicker(s.cleanupCtx, 1*time.Hour)

	s.HTTPServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      chiRouter,
		ReadTimeout:  time.Duration(cfg.Gateway.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Gateway.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// ListenAndServe запускает HTTP-шлюз.
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-шлюза и останавливает
// фоновую очистку задач скачивания.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Завершение работы HTTP-шлюза")
	s.cleanupCancel()
	return s.HTTPServer.Shutdown(ctx)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg domain.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeError(w, http.StatusBadRequest, "не удалось декодировать тело запроса")
		return
	}
	if reg.Username == "" || reg.Password == "" {
		writeError(w, http.StatusBadRequest, "требуются username и password")
		return
	}

	user, err := s.svc.Auth.Register(r.Context(), reg)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "не удалось декодировать тело запроса")
		return
	}

	if err := s.svc.Auth.Login(r.Context(), creds); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Auth.Logout(r.Context()); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.Session.CurrentUser(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Chats.ListChats(r.Context()))
}

func (s *Server) handleFindOrCreateChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "требуется user_id")
		return
	}

	chat, err := s.svc.Chats.FindOrCreateChat(r.Context(), req.UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

func (s *Server) handleTogglePin(w http.ResponseWriter, r *http.Request) {
	chatID, ok := pathID(w, r, "chatID")
	if !ok {
		return
	}

	pinned, err := s.svc.Chats.TogglePin(r.Context(), chatID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_pinned": pinned})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	chatID, ok := pathID(w, r, "chatID")
	if !ok {
		return
	}

	messages := s.svc.Messages.ListMessages(r.Context(), chatID)
	s.svc.Messages.MarkChatReadSoon(chatID)
	writeJSON(w, http.StatusOK, messages)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	chatID, ok := pathID(w, r, "chatID")
	if !ok {
		return
	}

	var req struct {
		MessageType     string             `json:"message_type"`
		Content         string             `json:"content"`
		ProductIDs      []int64            `json:"product_ids"`
		SelectedFormats map[int64][]string `json:"selected_formats"`
		BasketID        int64              `json:"basket_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "не удалось декодировать тело запроса")
		return
	}

	var (
		messages []domain.Message
		err      error
	)
	switch req.MessageType {
	case domain.MessageTypeText, "":
		messages, err = s.svc.Messages.SendText(r.Context(), chatID, req.Content, nil)
	case domain.MessageTypeProduct:
		messages, err = s.svc.Messages.SendProducts(r.Context(), chatID, req.ProductIDs, req.SelectedFormats, nil)
	case domain.MessageTypeBasket:
		messages, err = s.svc.Messages.SendBasket(r.Context(), chatID, req.BasketID, nil)
	default:
		writeError(w, http.StatusBadRequest, "неизвестный тип сообщения")
		return
	}

	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, messages)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	chatID, ok := pathID(w, r, "chatID")
	if !ok {
		return
	}

	if err := s.svc.Messages.MarkChatRead(r.Context(), chatID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRecipients(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, s.svc.Composer.Recipients(r.Context(), query))
}

func (s *Server) handleShareBasket(w http.ResponseWriter, r *http.Request) {
	basketID, ok := pathID(w, r, "basketID")
	if !ok {
		return
	}

	var req struct {
		UserID  int64  `json:"user_id"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "требуется user_id")
		return
	}

	if err := s.svc.Composer.ShareBasketToUser(r.Context(), basketID, req.UserID, req.Comment); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleShareLink(w http.ResponseWriter, r *http.Request) {
	basketID, ok := pathID(w, r, "basketID")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"link": s.svc.Composer.ShareLink(basketID)})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filters := productFilters(r)
	products, err := s.svc.Catalog.ListProducts(r.Context(), filters)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	product, err := s.svc.Catalog.GetProduct(r.Context(), productID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.Catalog.ListCategories(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleListBaskets(w http.ResponseWriter, r *http.Request) {
	baskets, err := s.svc.Baskets.ListBaskets(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, baskets)
}

func (s *Server) handleCreateBasket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "не удалось декодировать тело запроса")
		return
	}

	basket, err := s.svc.Baskets.CreateBasket(r.Context(), req.Name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, basket)
}

func (s *Server) handleGetBasket(w http.ResponseWriter, r *http.Request) {
	basketID, ok := pathID(w, r, "basketID")
	if !ok {
		return
	}

	basket, err := s.svc.Baskets.GetBasket(r.Context(), basketID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, basket)
}

func (s *Server) handleAddBasketItem(w http.ResponseWriter, r *http.Request) {
	basketID, ok := pathID(w, r, "basketID")
	if !ok {
		return
	}

	var req struct {
		ProductID int64  `json:"product_id"`
		Quantity  int    `json:"quantity"`
		Format    string `json:"format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == 0 {
		writeError(w, http.StatusBadRequest, "требуется product_id")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	item, err := s.svc.Baskets.AddItem(r.Context(), basketID, req.ProductID, req.Quantity, req.Format)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateBasketItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "требуется положительный quantity")
		return
	}

	item, err := s.svc.Baskets.UpdateItem(r.Context(), itemID, req.Quantity)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleRemoveBasketItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "itemID")
	if !ok {
		return
	}

	if err := s.svc.Baskets.RemoveItem(r.Context(), itemID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearBasket(w http.ResponseWriter, r *http.Request) {
	basketID, ok := pathID(w, r, "basketID")
	if !ok {
		return
	}

	if err := s.svc.Baskets.ClearBasket(r.Context(), basketID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListDownloads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Downloads.History(r.Context()))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64  `json:"product_id"`
		Format    string `json:"format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == 0 {
		writeError(w, http.StatusBadRequest, "требуются product_id и format")
		return
	}

	path, err := s.svc.Downloads.Download(r.Context(), req.ProductID, req.Format)
	if err != nil {
		var limitErr *services.ErrDownloadLimit
		if errors.As(err, &limitErr) {
			writeJSON(w, http.StatusPaymentRequired, map[string]string{
				"error":   limitErr.Error(),
				"upgrade": "/profile/subscriptions",
			})
			return
		}
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

// handleCreateDownloadJob запускает фоновое скачивание: большие файлы
// моделей не должны держать HTTP-запрос открытым на все время загрузки.
func (s *Server) handleCreateDownloadJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64  `json:"product_id"`
		Format    string `json:"format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == 0 {
		writeError(w, http.StatusBadRequest, "требуются product_id и format")
		return
	}

	jobID := uuid.NewString()
	s.jobs.CreateJob(jobID, 24*time.Hour)

	go func() {
		s.jobs.UpdateJobStatus(jobID, JobStatusProcessing)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		path, err := s.svc.Downloads.Download(ctx, req.ProductID, req.Format)
		if err != nil {
			var limitErr *services.ErrDownloadLimit
			s.jobs.UpdateJobError(jobID, err.Error(), errors.As(err, &limitErr))
			return
		}

		s.jobs.UpdateJobResult(jobID, path)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

func (s *Server) handleGetDownloadJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.GetJob(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "задача не найдена")
		return
	}

	resp := map[string]any{
		"job_id": job.ID,
		"status": job.Status,
	}
	if job.Path != "" {
		resp["path"] = job.Path
	}
	if job.ErrorMessage != "" {
		resp["error_message"] = job.ErrorMessage
	}
	if job.LimitExceeded {
		resp["upgrade"] = "/profile/subscriptions"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteDownload(w http.ResponseWriter, r *http.Request) {
	downloadID, ok := pathID(w, r, "downloadID")
	if !ok {
		return
	}

	if err := s.svc.Downloads.Delete(r.Context(), downloadID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.svc.Orders.ListOrders(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BasketID int64 `json:"basket_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BasketID == 0 {
		writeError(w, http.StatusBadRequest, "требуется basket_id")
		return
	}

	order, err := s.svc.Orders.CreateOrder(r.Context(), req.BasketID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.svc.Subscriptions.ListPlans(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.svc.Subscriptions.ListSubscriptions(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlanID int64 `json:"plan_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlanID == 0 {
		writeError(w, http.StatusBadRequest, "требуется plan_id")
		return
	}

	sub, err := s.svc.Subscriptions.Subscribe(r.Context(), req.PlanID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	// Профиль содержит уровень подписки, кэш больше не актуален.
	s.svc.Session.Invalidate()
	writeJSON(w, http.StatusCreated, sub)
}

// writeServiceError транслирует ошибку сервиса в HTTP-ответ шлюза:
// статусы удаленного API пробрасываются, остальное считается 502.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *restapi.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message()
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		writeError(w, apiErr.StatusCode, msg)
		return
	}

	s.log.ErrorContext(r.Context(), "Ошибка обработки запроса", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusBadGateway, err.Error())
}

// pathID извлекает числовой идентификатор из пути запроса.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "недопустимый идентификатор")
		return 0, false
	}
	return id, true
}

// productFilters собирает фильтры каталога из параметров запроса.
func productFilters(r *http.Request) *domain.ProductFilters {
	q := r.URL.Query()
	filters := &domain.ProductFilters{
		Material: q.Get("material"),
		Style:    q.Get("style"),
		Color:    q.Get("color"),
		Search:   q.Get("search"),
		Ordering: q.Get("ordering"),
	}
	if v, err := strconv.ParseInt(q.Get("category"), 10, 64); err == nil {
		filters.Category = v
	}
	if v, err := strconv.ParseFloat(q.Get("price_min"), 64); err == nil {
		filters.PriceMin = v
	}
	if v, err := strconv.ParseFloat(q.Get("price_max"), 64); err == nil {
		filters.PriceMax = v
	}
	if q.Get("is_trending") == "true" {
		filters.IsTrending = true
	}
	return filters
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
