package session

import (
	"context"
	"sync"
)

// CredentialStore хранит сессионный артефакт между запусками клиента:
// токен в режиме token или пару name=value cookie в режиме cookie.
// Пустая строка означает отсутствие артефакта.
type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, artifact string) error
	Delete(ctx context.Context) error
}

// MemoryCredentials хранит артефакт в памяти процесса.
type MemoryCredentials struct {
	mu       sync.Mutex
	artifact string
}

// Load возвращает сохранённый артефакт.
func (m *MemoryCredentials) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.artifact, nil
}

// Save запоминает артефакт.
func (m *MemoryCredentials) Save(_ context.Context, artifact string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifact = artifact
	return nil
}

// Delete забывает артефакт.
func (m *MemoryCredentials) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifact = ""
	return nil
}
