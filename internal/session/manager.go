package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/magabrotheeeer/zecko/internal/lib/sl"
)

// Config параметры клиента сессии.
type Config struct {
	BaseURL        string
	Transport      string        // token или cookie
	PollInterval   time.Duration // по умолчанию 30s
	RequestTimeout time.Duration // по умолчанию 10s
	CookieName     string        // по умолчанию zecko_session
}

// Option настраивает Manager.
type Option func(*options)

type options struct {
	client *http.Client
	creds  CredentialStore
	log    *slog.Logger
}

// WithHTTPClient задаёт HTTP-клиент.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithCredentialStore задаёт хранилище артефакта сессии.
func WithCredentialStore(s CredentialStore) Option {
	return func(o *options) { o.creds = s }
}

// WithLogger задаёт логгер.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// Result итог успешного входа или регистрации.
type Result struct {
	User    *User
	Landing string
}

// Manager владеет сессией одного клиента: транспортом, записью о пользователе
// и фоновой проверкой. Экземпляры независимы друг от друга.
type Manager struct {
	log       *slog.Logger
	transport *Transport
	store     *Store
	poller    *Poller
	guard     *Guard

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// New создаёт Manager. Сеть не используется до Start или первого обращения к сессии.
func New(cfg Config, opts ...Option) (*Manager, error) {
	const op = "session.New"

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = sl.Discard()
	}
	log := o.log.With(slog.String("component", "session"), slog.String("transport", cfg.Transport))

	transport, err := NewTransport(cfg.BaseURL, cfg.Transport, o.client, o.creds, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	transport.SetTimeout(cfg.RequestTimeout)
	transport.SetCookieName(cfg.CookieName)

	store := NewStore(transport.CurrentUser)
	poller := NewPoller(store, transport, cfg.PollInterval, log)
	// сервер отверг сессию: артефакт больше не нужен, как и после 401 в Do
	poller.OnExpired(func(ctx context.Context) {
		if err := transport.Forget(context.WithoutCancel(ctx)); err != nil {
			log.Warn("cannot delete session artifact", sl.Err(err))
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		log:       log,
		transport: transport,
		store:     store,
		poller:    poller,
		guard:     NewGuard(store),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start загружает текущего пользователя и запускает проверку, если сессия есть.
func (m *Manager) Start(ctx context.Context) error {
	const op = "session.Start"

	if err := m.checkOpen(); err != nil {
		return err
	}
	u, err := m.store.Current(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if u != nil {
		m.startPoller()
		m.log.Info("session restored", slog.String("user_id", string(u.ID)), slog.String("role", u.UserType))
	}
	return nil
}

// Close останавливает фоновую проверку. Артефакт сессии сохраняется.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.poller.Stop()
	m.cancel()
}

// Login выполняет вход и записывает пользователя в Store.
func (m *Manager) Login(ctx context.Context, creds Credentials) (*Result, error) {
	if err := m.checkOpen(); err != nil {
		return nil, err
	}
	u, err := m.transport.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return m.open(u), nil
}

// Register создаёт учётную запись и открывает сессию.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) (*Result, error) {
	if err := m.checkOpen(); err != nil {
		return nil, err
	}
	u, err := m.transport.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.open(u), nil
}

func (m *Manager) open(u *User) *Result {
	m.store.Set(u, ReasonLogin)
	m.startPoller()
	m.log.Info("logged in", slog.String("user_id", string(u.ID)), slog.String("role", u.UserType))
	return &Result{User: u, Landing: LandingFor(u)}
}

// Logout завершает сессию. Локальное состояние сбрасывается до обращения к серверу,
// поэтому ошибка сервера не оставляет клиента в сессии.
func (m *Manager) Logout(ctx context.Context) error {
	m.store.Clear(ReasonLogout)
	m.poller.Stop()

	if err := m.transport.Logout(ctx); err != nil {
		m.log.Warn("server logout failed", sl.Err(err))
		return err
	}
	m.log.Info("logged out")
	return nil
}

// CurrentUser возвращает пользователя текущей сессии или nil.
func (m *Manager) CurrentUser(ctx context.Context) (*User, error) {
	return m.store.Current(ctx)
}

// Do выполняет запрос к API с артефактом сессии. Ответ 401 завершает сессию.
func (m *Manager) Do(req *http.Request) (*http.Response, error) {
	resp, err := m.transport.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		m.invalidate(req.Context(), ReasonUnauthorized)
	}
	return resp, nil
}

func (m *Manager) invalidate(ctx context.Context, reason string) {
	if m.store.Clear(reason) {
		m.log.Info("session invalidated", slog.String("reason", reason))
	}
	m.poller.Stop()
	if err := m.transport.Forget(context.WithoutCancel(ctx)); err != nil {
		m.log.Warn("cannot delete session artifact", sl.Err(err))
	}
}

// State возвращает состояние фоновой проверки.
func (m *Manager) State() State {
	return m.poller.State()
}

// Store возвращает хранилище записи о пользователе.
func (m *Manager) Store() *Store {
	return m.store
}

// Guard возвращает проверку доступа поверх Store.
func (m *Manager) Guard() *Guard {
	return m.guard
}

// Subscribe подписывает на изменения записи о пользователе.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	return m.store.Subscribe()
}

func (m *Manager) startPoller() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.poller.Start(m.ctx)
}

func (m *Manager) checkOpen() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

// IsUnauthenticated сообщает, отклонил ли сервер учётные данные.
func IsUnauthenticated(err error) bool {
	var ce *CredentialError
	return errors.As(err, &ce) && ce.Status == http.StatusUnauthorized
}
