package localstore

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/zecko/internal/session"
)

// ArtifactKey ключ сессионного артефакта.
const ArtifactKey = "session.artifact"

// Credentials хранит сессионный артефакт в Store.
type Credentials struct {
	store *Store
}

var _ session.CredentialStore = (*Credentials)(nil)

// NewCredentials создаёт хранилище артефакта поверх store.
func NewCredentials(store *Store) *Credentials {
	return &Credentials{store: store}
}

// Load возвращает сохранённый артефакт или пустую строку.
func (c *Credentials) Load(ctx context.Context) (string, error) {
	v, err := c.store.Get(ctx, ArtifactKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// Save сохраняет артефакт.
func (c *Credentials) Save(ctx context.Context, artifact string) error {
	return c.store.Put(ctx, ArtifactKey, artifact)
}

// Delete удаляет артефакт.
func (c *Credentials) Delete(ctx context.Context) error {
	return c.store.Delete(ctx, ArtifactKey)
}
