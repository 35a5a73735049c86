package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"catapi/internal/model"
	"catapi/internal/repository"
)

var (
	ErrDuplicateID    = errors.New("record already exists")
	ErrDuplicateEmail = errors.New("email already registered")
)

type userRepo struct {
	mu    sync.RWMutex
	byID  map[string]model.User
	order []string
}

func NewUserRepo() repository.UserRepository {
	return &userRepo{byID: make(map[string]model.User)}
}

// emailTaken must be called with the lock held.
func (r *userRepo) emailTaken(email, exceptID string) bool {
	for id, u := range r.byID {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if _, exists := r.byID[user.ID]; exists {
		return ErrDuplicateID
	}
	if r.emailTaken(user.Email, "") {
		return ErrDuplicateEmail
	}
	r.byID[user.ID] = *user
	r.order = append(r.order, user.ID)
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.User, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if u, ok := r.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if u := r.byID[id]; strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) FindAll(ctx context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *userRepo) UpdateByID(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Email != nil && r.emailTaken(*patch.Email, id) {
		return nil, ErrDuplicateEmail
	}
	patch.Apply(&u)
	r.byID[id] = u
	return &u, nil
}

func (r *userRepo) DeleteByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.byID, id)
	r.order = removeID(r.order, id)
	return &u, nil
}
