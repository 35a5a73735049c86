// Package memory implements the repositories in process memory. It backs
// local development and the HTTP tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"catapi/internal/geo"
	"catapi/internal/model"
	"catapi/internal/repository"
)

type catRepo struct {
	mu    sync.RWMutex
	byID  map[string]model.Cat
	order []string
}

func NewCatRepo() repository.CatRepository {
	return &catRepo{byID: make(map[string]model.Cat)}
}

// clone detaches the stored location so callers cannot mutate it.
func clone(c model.Cat) model.Cat {
	if c.Location != nil {
		loc := geo.Location{Type: c.Location.Type, Coordinates: append([]float64(nil), c.Location.Coordinates...)}
		c.Location = &loc
	}
	c.Owner = nil
	return c
}

func (r *catRepo) FindByID(ctx context.Context, id string) (*model.Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c = clone(c)
	return &c, nil
}

func (r *catRepo) FindAll(ctx context.Context) ([]model.Cat, error) {
	return r.filter(func(model.Cat) bool { return true }), nil
}

func (r *catRepo) FindByOwner(ctx context.Context, ownerID string) ([]model.Cat, error) {
	return r.filter(func(c model.Cat) bool { return c.OwnerID == ownerID }), nil
}

func (r *catRepo) FindWithinRegion(ctx context.Context, region geo.Polygon) ([]model.Cat, error) {
	return r.filter(func(c model.Cat) bool {
		return c.Location != nil && len(c.Location.Coordinates) == 2 && region.Contains(c.Location.Point())
	}), nil
}

func (r *catRepo) filter(keep func(model.Cat) bool) []model.Cat {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Cat, 0)
	for _, id := range r.order {
		if c := r.byID[id]; keep(c) {
			out = append(out, clone(c))
		}
	}
	return out
}

func (r *catRepo) Create(ctx context.Context, cat *model.Cat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	if _, exists := r.byID[cat.ID]; exists {
		return ErrDuplicateID
	}
	r.byID[cat.ID] = clone(*cat)
	r.order = append(r.order, cat.ID)
	return nil
}

func (r *catRepo) UpdateByID(ctx context.Context, id string, scope repository.Scope, patch model.CatPatch) (*model.Cat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok || !scope.Matches(c.OwnerID) {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&c)
	c = clone(c)
	r.byID[id] = c
	out := clone(c)
	return &out, nil
}

func (r *catRepo) DeleteByID(ctx context.Context, id string, scope repository.Scope) (*model.Cat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok || !scope.Matches(c.OwnerID) {
		return nil, repository.ErrNotFound
	}
	delete(r.byID, id)
	r.order = removeID(r.order, id)
	return &c, nil
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
