// Package services содержит бизнес-логику аутентификации Zecko:
// регистрацию, вход, проверку и отзыв сессионных токенов.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/zecko/internal/lib/jwt"
	"github.com/magabrotheeeer/zecko/internal/lib/password"
	"github.com/magabrotheeeer/zecko/internal/lib/sl"
	"github.com/magabrotheeeer/zecko/internal/models"
	"github.com/magabrotheeeer/zecko/internal/storage"
	"github.com/magabrotheeeer/zecko/internal/validation"
)

// TrialPeriod длительность пробной подписки для business и vendor.
const TrialPeriod = 14 * 24 * time.Hour

var (
	// ErrInvalidCredentials неверный логин или пароль. Сообщение не раскрывает, что именно не совпало.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated токен отсутствует, отозван или недействителен.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUserExists email или username уже заняты.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidRegistration данные регистрации не прошли бизнес-проверки.
	ErrInvalidRegistration = errors.New("invalid registration")
)

// RegistrationError уточняет ErrInvalidRegistration причиной, которую можно показать пользователю.
type RegistrationError struct {
	Reason string
}

func (e *RegistrationError) Error() string {
	return ErrInvalidRegistration.Error() + ": " + e.Reason
}

// Is позволяет сравнивать ошибку с ErrInvalidRegistration через errors.Is.
func (e *RegistrationError) Is(target error) bool {
	return target == ErrInvalidRegistration
}

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// Cache кэш профилей и список отозванных токенов.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// EventPublisher отправляет события аутентификации в брокер.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// RegisterInput данные публичной регистрации.
type RegisterInput struct {
	Email        string
	Username     string
	Password     string
	UserType     models.Role
	Phone        string
	Country      string
	BusinessName string
}

// Session результат успешного входа или регистрации.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users     UserRepository
	jwtMaker  jwt.Maker
	cache     Cache
	publisher EventPublisher
	log       *slog.Logger
	userTTL   time.Duration
	now       func() time.Time
}

// NewAuthService создает новый экземпляр AuthService. publisher может быть nil.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, cache Cache, publisher EventPublisher,
	log *slog.Logger, userTTL time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwtMaker:  jwtMaker,
		cache:     cache,
		publisher: publisher,
		log:       log,
		userTTL:   userTTL,
		now:       time.Now,
	}
}

func userCacheKey(userUID string) string {
	return "user:" + userUID
}

// Register создаёт пользователя и сразу открывает для него сессию.
// Роль admin через регистрацию не выдаётся, business и vendor получают пробный период.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	const op = "services.Register"

	role := in.UserType
	if role == "" {
		role = models.RoleFree
	}
	if !role.SelfRegistrable() {
		return nil, fmt.Errorf("%s: %w", op, &RegistrationError{Reason: fmt.Sprintf("user type %q is not available", role)})
	}

	user := models.User{
		Email:              strings.ToLower(strings.TrimSpace(in.Email)),
		Username:           strings.TrimSpace(in.Username),
		Role:               role,
		Country:            strings.ToUpper(in.Country),
		BusinessName:       strings.TrimSpace(in.BusinessName),
		SubscriptionStatus: models.SubscriptionNone,
	}

	if role.Paid() {
		if user.BusinessName == "" {
			return nil, fmt.Errorf("%s: %w", op, &RegistrationError{Reason: "business name is required"})
		}
		expire := s.now().UTC().Add(TrialPeriod)
		user.SubscriptionStatus = models.SubscriptionTrial
		user.SubscriptionExpire = &expire
	}

	if in.Phone != "" {
		phone, err := validation.NormalizePhone(user.Country, in.Phone)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, &RegistrationError{Reason: err.Error()})
		}
		user.Phone = phone
	}

	hashed, err := password.Hash(in.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooShort) {
			return nil, fmt.Errorf("%s: %w", op, &RegistrationError{Reason: password.ErrTooShort.Error()})
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.PasswordHash = hashed

	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.UUID = uid
	user.CreatedAt = s.now().UTC()

	sess, err := s.issue(&user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.publish(ctx, models.EventUserRegistered, &user)
	return sess, nil
}

// Login проверяет пароль и выпускает новый токен.
// identifier может быть email или username.
func (s *AuthService) Login(ctx context.Context, identifier, rawPassword string) (*Session, error) {
	const op = "services.Login"

	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		identifier = strings.ToLower(identifier)
	}
	if identifier == "" || rawPassword == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.users.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.Compare(user.PasswordHash, rawPassword); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	sess, err := s.issue(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.publish(ctx, models.EventUserLoggedIn, user)
	return sess, nil
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	token, claims, err := s.jwtMaker.GenerateToken(user.UUID, string(user.Role))
	if err != nil {
		return nil, err
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: withoutSecrets(user)}, nil
}

// ValidateToken проверяет токен и возвращает актуального пользователя.
// Отозванный или недействительный токен даёт ErrUnauthenticated.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	const op = "services.ValidateToken"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	revoked, err := s.cache.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if revoked {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	user, err := s.user(ctx, claims.UserUID())
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (s *AuthService) user(ctx context.Context, userUID string) (*models.User, error) {
	var cached models.User
	found, err := s.cache.Get(ctx, userCacheKey(userUID), &cached)
	if err != nil {
		s.log.Warn("user cache read failed", slog.String("user_uid", userUID), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	user = withoutSecrets(user)
	if err := s.cache.Set(ctx, userCacheKey(userUID), user, s.userTTL); err != nil {
		s.log.Warn("user cache write failed", slog.String("user_uid", userUID), sl.Err(err))
	}
	return user, nil
}

// Logout отзывает токен до истечения его срока жизни.
// Повторный вызов, а также вызов с недействительным токеном, не считается ошибкой.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	const op = "services.Logout"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil
	}
	if err := s.cache.Revoke(ctx, claims.ID, claims.Remaining(s.now())); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.publish(ctx, models.EventUserLoggedOut, &models.User{UUID: claims.UserUID(), Role: models.Role(claims.Role)})
	return nil
}

// ListUsers возвращает страницу пользователей для администраторов.
func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "services.ListUsers"

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.users.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i, u := range users {
		users[i] = withoutSecrets(u)
	}
	return users, nil
}

// InvalidateUser сбрасывает закэшированный профиль, например после смены подписки.
func (s *AuthService) InvalidateUser(ctx context.Context, userUID string) error {
	const op = "services.InvalidateUser"
	if err := s.cache.Invalidate(ctx, userCacheKey(userUID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *AuthService) publish(ctx context.Context, eventType string, user *models.User) {
	if s.publisher == nil {
		return
	}
	event := models.AuthEvent{
		Type:       eventType,
		UserUID:    user.UUID,
		UserType:   user.Role,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		s.log.Error("failed to publish auth event", slog.String("type", eventType), sl.Err(err))
	}
}

func withoutSecrets(u *models.User) *models.User {
	c := *u
	c.PasswordHash = ""
	return &c
}
