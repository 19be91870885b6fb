// Package password реализует хеширование паролей пользователей Zecko и их проверку.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinLength минимальная длина пароля при регистрации.
const MinLength = 8

var (
	// ErrMismatch пароль не соответствует хэшу.
	ErrMismatch = errors.New("password does not match")
	// ErrTooShort пароль короче MinLength.
	ErrTooShort = fmt.Errorf("password must be at least %d characters", MinLength)
)

// Hash возвращает bcrypt‑хэш пароля для хранения в базе данных.
func Hash(password string) (string, error) {
	const op = "password.Hash"
	if len(password) < MinLength {
		return "", fmt.Errorf("%s: %w", op, ErrTooShort)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Compare сверяет хэш с введённым паролем.
//
// Возвращает ErrMismatch, если пароль не подходит.
func Compare(hash, password string) error {
	const op = "password.Compare"
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
