package user

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository used by tests and by the
// HTTP layer's test harness. It mirrors the soft-delete semantics of the
// PostgreSQL implementation.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*User // keyed by public ID
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*User)}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) Create(_ context.Context, u *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if !existing.Deleted && existing.Email == u.Email {
			return nil, ErrDuplicateEmail
		}
	}

	r.nextID++
	clone := *u
	clone.ID = r.nextID
	r.users[clone.PublicID] = &clone

	out := clone
	return &out, nil
}

func (r *MemoryRepository) FindByPublicID(_ context.Context, publicID string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[publicID]
	if !ok || u.Deleted {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if !u.Deleted && u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if err == ErrNotFound {
		return false, nil
	}
	return false, err
}

func (r *MemoryRepository) SoftDelete(_ context.Context, publicID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[publicID]
	if !ok || u.Deleted {
		return ErrNotFound
	}
	now := time.Now()
	u.Deleted = true
	u.DeletedAt = &now
	u.UpdatedAt = now
	return nil
}
