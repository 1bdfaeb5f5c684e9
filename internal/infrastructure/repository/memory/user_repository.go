package memory

import (
	"context"
	"sync"

	"github.com/padelhq/courtsight/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: make(map[string]user.User)}
}

func (r *UserRepository) Upsert(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[u.ID] = u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, false, nil
	}

	return u, true, nil
}
