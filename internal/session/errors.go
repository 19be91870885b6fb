package session

import (
	"errors"
)

var (
	// ErrNetwork сервер недоступен или не ответил вовремя.
	ErrNetwork = errors.New("network error, please try again")
	// ErrMalformedResponse ответ сервера не разбирается или в нём нет ожидаемых полей.
	ErrMalformedResponse = errors.New("unexpected server response")
	// ErrClosed Manager уже закрыт.
	ErrClosed = errors.New("session manager is closed")
)

// CredentialError сервер отклонил учётные данные или запрос.
// Message показывается пользователю как есть.
type CredentialError struct {
	Status  int
	Message string
}

func (e *CredentialError) Error() string {
	return e.Message
}

// NetworkError оборачивает транспортную ошибку. Текст всегда совпадает с ErrNetwork,
// причина доступна через errors.Unwrap.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return ErrNetwork.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is позволяет сравнивать ошибку с ErrNetwork через errors.Is.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}
