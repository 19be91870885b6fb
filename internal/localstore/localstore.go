// Package localstore реализует локальное хранилище клиента на SQLite:
// сессионный артефакт и корзина переживают перезапуск CLI.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Регистрация драйвера sqlite без cgo.
	_ "modernc.org/sqlite"
)

// ErrNotFound ключ отсутствует.
var ErrNotFound = errors.New("key not found")

// Store key/value хранилище в файле SQLite.
type Store struct {
	db *sql.DB
}

// New открывает или создаёт базу по пути path.
func New(ctx context.Context, path string) (*Store, error) {
	const op = "localstore.New"

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// один писатель, иначе SQLite отвечает SQLITE_BUSY
	db.SetMaxOpenConns(1)

	query := `CREATE TABLE IF NOT EXISTS kv (
				key        TEXT PRIMARY KEY,
				value      TEXT NOT NULL,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			  )`
	if _, err = db.ExecContext(ctx, query); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{db: db}, nil
}

// Close закрывает базу.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get возвращает значение ключа или ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	const op = "localstore.Get"

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}

// Put записывает значение ключа.
func (s *Store) Put(ctx context.Context, key, value string) error {
	const op = "localstore.Put"

	query := `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			  ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Delete удаляет ключ. Отсутствующий ключ не считается ошибкой.
func (s *Store) Delete(ctx context.Context, key string) error {
	const op = "localstore.Delete"

	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
