package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Heyaski/sofa-marketplace/internal/domain"
	"github.com/Heyaski/sofa-marketplace/internal/ports"
)

// ErrNotAuthenticated возвращается, когда операция требует сохраненной
// сессии, а токенов в хранилище нет.
var ErrNotAuthenticated = errors.New("требуется вход в систему")

// refreshLeeway — запас до истечения access-токена, при котором пара
// обновляется заранее, а не по факту ответа 401.
const refreshLeeway = 30 * time.Second

// AuthService управляет жизненным циклом сессии: вход, регистрация,
// упреждающее обновление токенов и выход.
type AuthService struct {
	api     ports.AuthAPI
	store   ports.TokenStore
	session *Session
	log     *slog.Logger
}

// AuthServiceOption — функциональная опция для настройки AuthService.
type AuthServiceOption func(*AuthService)

// WithAuthLogger устанавливает логгер сервиса аутентификации.
func WithAuthLogger(l *slog.Logger) AuthServiceOption {
	return func(s *AuthService) {
		if l != nil {
			s.log = l
		}
	}
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(api ports.AuthAPI, store ports.TokenStore, session *Session, opts ...AuthServiceOption) *AuthService {
	s := &AuthService{
		api:     api,
		store:   store,
		session: session,
		log:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Login обменивает учетные данные на пару токенов и сохраняет ее.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) error {
	tokens, err := s.api.Login(ctx, creds)
	if err != nil {
		return fmt.Errorf("вход не выполнен: %w", err)
	}

	if err := s.store.Save(tokens); err != nil {
		return fmt.Errorf("не удалось сохранить токены: %w", err)
	}

	if s.session != nil {
		s.session.Invalidate()
	}

	s.log.InfoContext(ctx, "Вход выполнен", "username", creds.Username)
	return nil
}

// Register создает нового пользователя и сразу выполняет вход.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	user, err := s.api.Register(ctx, reg)
	if err != nil {
		return domain.User{}, fmt.Errorf("регистрация не выполнена: %w", err)
	}

	if err := s.Login(ctx, domain.Credentials{Username: reg.Username, Password: reg.Password}); err != nil {
		return user, fmt.Errorf("пользователь создан, но вход не выполнен: %w", err)
	}

	return user, nil
}

// Logout завершает сессию: уведомляет сервер и очищает локальные токены.
// Отказ сервера не мешает локальному выходу.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		s.log.WarnContext(ctx, "Сервер не подтвердил выход", "error", err)
	}

	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("не удалось очистить токены: %w", err)
	}

	if s.session != nil {
		s.session.Invalidate()
	}

	s.log.InfoContext(ctx, "Выход выполнен")
	return nil
}

// Authenticated сообщает, сохранена ли пара токенов.
func (s *AuthService) Authenticated() bool {
	tokens, ok := s.store.Load()
	return ok && tokens.Access != ""
}

// RefreshIfNeeded обновляет пару токенов, если access-токен истек или
// истекает в ближайшие секунды. Подпись не проверяется: токен выдан
// сервером, клиенту нужен только срок действия.
func (s *AuthService) RefreshIfNeeded(ctx context.Context) error {
	tokens, ok := s.store.Load()
	if !ok || tokens.Refresh == "" {
		return ErrNotAuthenticated
	}

	if !tokenExpiresSoon(tokens.Access, refreshLeeway) {
		return nil
	}

	fresh, err := s.api.Refresh(ctx, tokens.Refresh)
	if err != nil {
		return fmt.Errorf("не удалось обновить токены: %w", err)
	}
	if fresh.Refresh == "" {
		fresh.Refresh = tokens.Refresh
	}

	if err := s.store.Save(fresh); err != nil {
		return fmt.Errorf("не удалось сохранить обновленные токены: %w", err)
	}

	s.log.DebugContext(ctx, "Токены обновлены")
	return nil
}

// tokenExpiresSoon сообщает, истекает ли токен в пределах leeway.
// Нечитаемый токен считается истекшим.
func tokenExpiresSoon(token string, leeway time.Duration) bool {
	if token == "" {
		return true
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return time.Until(exp.Time) < leeway
}
