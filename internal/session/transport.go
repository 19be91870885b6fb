package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/magabrotheeeer/zecko/internal/config"
	"github.com/magabrotheeeer/zecko/internal/lib/sl"
)

// Режимы передачи сессионного артефакта. Клиент работает ровно в одном из них.
const (
	ModeToken  = config.TransportToken
	ModeCookie = config.TransportCookie
)

// Значения по умолчанию.
const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultPollInterval   = 30 * time.Second
	DefaultCookieName     = "zecko_session"
)

// Пути API.
const (
	pathLogin    = "/api/login"
	pathRegister = "/api/register"
	pathLogout   = "/api/logout"
	pathUser     = "/api/user"
	pathVerify   = "/api/auth/verify"
)

const maxErrorBody = 64 << 10

// Credentials учётные данные для входа. Identifier это email или username.
type Credentials struct {
	Identifier string
	Password   string
}

// RegisterRequest данные регистрации.
type RegisterRequest struct {
	Email        string `json:"email"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	UserType     string `json:"userType,omitempty"`
	Country      string `json:"country,omitempty"`
	Phone        string `json:"phone,omitempty"`
	BusinessName string `json:"businessName,omitempty"`
}

// VerifyResult ответ проверки сессии.
type VerifyResult struct {
	Authenticated bool
	User          *User
}

// Transport выполняет запросы к API и хранит артефакт сессии в CredentialStore.
type Transport struct {
	baseURL    *url.URL
	mode       string
	cookieName string
	timeout    time.Duration
	client     *http.Client
	creds      CredentialStore
	log        *slog.Logger
}

// NewTransport создаёт транспорт для сервера baseURL в режиме mode.
func NewTransport(baseURL, mode string, client *http.Client, creds CredentialStore, log *slog.Logger) (*Transport, error) {
	const op = "session.NewTransport"

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s: base url must be http or https, got %q", op, baseURL)
	}
	if mode != ModeToken && mode != ModeCookie {
		return nil, fmt.Errorf("%s: transport must be %q or %q, got %q", op, ModeToken, ModeCookie, mode)
	}
	if client == nil {
		client = &http.Client{}
	}
	if creds == nil {
		creds = &MemoryCredentials{}
	}
	if log == nil {
		log = sl.Discard()
	}
	return &Transport{
		baseURL:    u,
		mode:       mode,
		cookieName: DefaultCookieName,
		timeout:    DefaultRequestTimeout,
		client:     client,
		creds:      creds,
		log:        log,
	}, nil
}

// SetTimeout задаёт таймаут одного запроса. Неположительное значение игнорируется.
func (t *Transport) SetTimeout(d time.Duration) {
	if d > 0 {
		t.timeout = d
	}
}

// SetCookieName задаёт имя сессионной cookie для режима cookie.
func (t *Transport) SetCookieName(name string) {
	if name != "" {
		t.cookieName = name
	}
}

// Mode возвращает режим транспорта.
func (t *Transport) Mode() string {
	return t.mode
}

type authBody struct {
	User  json.RawMessage `json:"user"`
	Token string          `json:"token"`
}

// Login обменивает учётные данные на сессию и сохраняет артефакт.
func (t *Transport) Login(ctx context.Context, creds Credentials) (*User, error) {
	body := map[string]string{"password": creds.Password}
	if strings.Contains(creds.Identifier, "@") {
		body["email"] = creds.Identifier
	} else {
		body["username"] = creds.Identifier
	}
	return t.exchange(ctx, "session.Login", pathLogin, body)
}

// Register создаёт учётную запись и сразу открывает сессию.
func (t *Transport) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	return t.exchange(ctx, "session.Register", pathRegister, req)
}

func (t *Transport) exchange(ctx context.Context, op, path string, payload any) (*User, error) {
	resp, err := t.send(ctx, http.MethodPost, path, payload, false)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &CredentialError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}

	var body authBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.log.Debug("cannot decode auth response", slog.String("op", op), sl.Err(err))
		return nil, ErrMalformedResponse
	}
	user, err := ParseUser(body.User)
	if err != nil {
		t.log.Debug("auth response has no user", slog.String("op", op), sl.Err(err))
		return nil, ErrMalformedResponse
	}

	artifact := body.Token
	if t.mode == ModeCookie {
		artifact = t.sessionCookie(resp)
	}
	if artifact == "" {
		t.log.Debug("auth response has no session artifact", slog.String("op", op), slog.String("mode", t.mode))
		return nil, ErrMalformedResponse
	}
	if err := t.creds.Save(ctx, artifact); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Logout сообщает серверу о выходе и забывает артефакт независимо от ответа.
func (t *Transport) Logout(ctx context.Context) error {
	const op = "session.Logout"

	artifact, err := t.creds.Load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if artifact == "" {
		return nil
	}
	defer func() {
		if err := t.creds.Delete(context.WithoutCancel(ctx)); err != nil {
			t.log.Warn("cannot delete session artifact", sl.Err(err))
		}
	}()

	resp, err := t.send(ctx, http.MethodPost, pathLogout, nil, true)
	if err != nil {
		return err
	}
	defer closeBody(resp)
	if resp.StatusCode >= 500 {
		return &CredentialError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}
	return nil
}

// CurrentUser возвращает пользователя текущей сессии или nil, если сессии нет.
// Без сохранённого артефакта запрос не выполняется.
func (t *Transport) CurrentUser(ctx context.Context) (*User, error) {
	const op = "session.CurrentUser"

	ok, err := t.HasArtifact(ctx)
	if err != nil || !ok {
		return nil, err
	}
	resp, err := t.send(ctx, http.MethodGet, pathUser, nil, true)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &CredentialError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	user, err := ParseUser(raw)
	if err != nil {
		t.log.Debug("cannot parse current user", slog.String("op", op), sl.Err(err))
		return nil, ErrMalformedResponse
	}
	return user, nil
}

// Verify подтверждает сессию. Ответ 401 означает, что сессия недействительна.
func (t *Transport) Verify(ctx context.Context) (VerifyResult, error) {
	const op = "session.Verify"

	ok, err := t.HasArtifact(ctx)
	if err != nil || !ok {
		return VerifyResult{}, err
	}
	resp, err := t.send(ctx, http.MethodGet, pathVerify, nil, true)
	if err != nil {
		return VerifyResult{}, err
	}
	defer closeBody(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return VerifyResult{}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return VerifyResult{}, &CredentialError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}

	var body struct {
		Authenticated *bool           `json:"authenticated"`
		User          json.RawMessage `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Authenticated == nil {
		t.log.Debug("cannot decode verify response", slog.String("op", op), sl.Err(err))
		return VerifyResult{}, ErrMalformedResponse
	}
	result := VerifyResult{Authenticated: *body.Authenticated}
	if result.Authenticated && len(body.User) > 0 && string(body.User) != "null" {
		if result.User, err = ParseUser(body.User); err != nil {
			t.log.Debug("cannot parse verified user", slog.String("op", op), sl.Err(err))
			return VerifyResult{}, ErrMalformedResponse
		}
	}
	return result, nil
}

// HasArtifact сообщает, сохранён ли артефакт сессии.
func (t *Transport) HasArtifact(ctx context.Context) (bool, error) {
	artifact, err := t.creds.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("session.HasArtifact: %w", err)
	}
	return artifact != "", nil
}

// Forget удаляет сохранённый артефакт.
func (t *Transport) Forget(ctx context.Context) error {
	return t.creds.Delete(ctx)
}

// Do выполняет произвольный запрос к API с артефактом текущей сессии и
// таймаутом запроса. Относительный URL дополняется базовым адресом сервера.
// Тело ответа читается целиком до возврата.
func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	reqCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req = req.Clone(reqCtx)
	if !req.URL.IsAbs() {
		req.URL = t.baseURL.ResolveReference(req.URL)
		req.Host = ""
	}
	if err := t.attach(req); err != nil {
		return nil, err
	}
	return t.roundTrip(ctx, req, req.URL.Path)
}

// send выполняет запрос с таймаутом. Тело ответа читается до возврата,
// поэтому отмена таймаута не обрывает его.
func (t *Transport) send(ctx context.Context, method, path string, payload any, withArtifact bool) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("session.send: %w", err)
		}
		body = bytes.NewReader(b)
	}

	reqCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, t.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return nil, fmt.Errorf("session.send: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withArtifact {
		if err := t.attach(req); err != nil {
			return nil, err
		}
	}

	return t.roundTrip(ctx, req, path)
}

// roundTrip выполняет req и буферизует тело ответа. ctx исходный контекст
// вызывающего: его отмена возвращается как есть, остальное считается ошибкой сети.
func (t *Transport) roundTrip(ctx context.Context, req *http.Request, path string) (*http.Response, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		t.log.Debug("request failed", slog.String("path", path), sl.Err(err))
		return nil, &NetworkError{Err: err}
	}

	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &NetworkError{Err: err}
	}
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	return resp, nil
}

func (t *Transport) attach(req *http.Request) error {
	artifact, err := t.creds.Load(req.Context())
	if err != nil {
		return fmt.Errorf("session.attach: %w", err)
	}
	if artifact == "" {
		return nil
	}
	if t.mode == ModeCookie {
		req.Header.Set("Cookie", artifact)
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+artifact)
	return nil
}

// sessionCookie возвращает пару name=value сессионной cookie из ответа.
func (t *Transport) sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == t.cookieName && c.Value != "" && c.MaxAge >= 0 {
			return c.Name + "=" + c.Value
		}
	}
	return ""
}

// errorMessage извлекает текст ошибки из JSON-поля message или из тела целиком.
func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", resp.StatusCode)
}

func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
