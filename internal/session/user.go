// Package session синхронизирует состояние аутентификации клиента с сервером Zecko.
//
// Manager объединяет четыре части: Transport обменивает учётные данные на
// сессионный артефакт, Store хранит единственную запись о текущем пользователе,
// Poller периодически подтверждает сессию, а Guard решает, пускать ли
// пользователя на защищённую страницу. Все решения читают один Store.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ID идентификатор пользователя. Сервер может прислать его числом или строкой,
// текстовое представление сохраняется без изменений.
type ID string

// UnmarshalJSON принимает число или строку.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("user id must be a number or a string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// User запись о пользователе в том виде, в каком её вернул сервер.
// Raw хранит исходный JSON, и MarshalJSON отдаёт его без изменений.
type User struct {
	ID                 ID     `json:"id"`
	Email              string `json:"email,omitempty"`
	Username           string `json:"username,omitempty"`
	UserType           string `json:"userType"`
	SuperAdmin         bool   `json:"superAdmin"`
	SubscriptionActive bool   `json:"subscriptionActive"`

	Raw json.RawMessage `json:"-"`
}

var errNoUserID = errors.New("user record has no id")

// ParseUser разбирает запись пользователя. Запись без id считается некорректной.
func ParseUser(raw json.RawMessage) (*User, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, errNoUserID
	}
	type plain User
	var u plain
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, errNoUserID
	}
	if u.UserType == "" {
		// часть ответов несёт роль в поле role
		var alt struct {
			Role string `json:"role"`
		}
		_ = json.Unmarshal(raw, &alt)
		u.UserType = alt.Role
	}
	user := User(u)
	user.Raw = append(json.RawMessage(nil), raw...)
	return &user, nil
}

// UnmarshalJSON сохраняет исходный JSON в Raw.
func (u *User) UnmarshalJSON(b []byte) error {
	parsed, err := ParseUser(b)
	if err != nil {
		return err
	}
	*u = *parsed
	return nil
}

// MarshalJSON возвращает исходный JSON, если он есть.
func (u User) MarshalJSON() ([]byte, error) {
	if len(u.Raw) > 0 {
		return u.Raw, nil
	}
	type plain User
	return json.Marshal(plain(u))
}

// Role возвращает тип учётной записи.
func (u *User) Role() string {
	if u == nil {
		return ""
	}
	return u.UserType
}

// Name возвращает username, а при его отсутствии email.
func (u *User) Name() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

func sameUser(a, b *User) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Raw) > 0 && len(b.Raw) > 0 {
		return bytes.Equal(a.Raw, b.Raw)
	}
	return a.ID == b.ID && a.Email == b.Email && a.Username == b.Username && a.UserType == b.UserType &&
		a.SuperAdmin == b.SuperAdmin && a.SubscriptionActive == b.SubscriptionActive
}
