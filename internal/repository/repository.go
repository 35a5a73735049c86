// Package repository defines the persistence operations used by the
// services. Backends live in the mysql, mongo and memory subpackages.
package repository

import (
	"context"
	"errors"

	"catapi/internal/geo"
	"catapi/internal/model"
)

// ErrNotFound is returned when no record matches the id (and scope).
var ErrNotFound = errors.New("record not found")

// Scope restricts a mutation to records owned by a user. The zero value
// matches any owner.
type Scope struct {
	OwnerID string
}

// AnyOwner matches every record.
var AnyOwner = Scope{}

// OwnedBy matches records owned by ownerID.
func OwnedBy(ownerID string) Scope {
	return Scope{OwnerID: ownerID}
}

// Matches reports whether a record owned by ownerID is in scope.
func (s Scope) Matches(ownerID string) bool {
	return s.OwnerID == "" || s.OwnerID == ownerID
}

// CatRepository defines cat persistence operations. Returned cats never have
// Owner attached.
type CatRepository interface {
	FindByID(ctx context.Context, id string) (*model.Cat, error)
	FindAll(ctx context.Context) ([]model.Cat, error)
	FindByOwner(ctx context.Context, ownerID string) ([]model.Cat, error)
	FindWithinRegion(ctx context.Context, region geo.Polygon) ([]model.Cat, error)
	Create(ctx context.Context, cat *model.Cat) error
	UpdateByID(ctx context.Context, id string, scope Scope, patch model.CatPatch) (*model.Cat, error)
	DeleteByID(ctx context.Context, id string, scope Scope) (*model.Cat, error)
}

// UserRepository defines user persistence operations. Email uniqueness is
// enforced by the backend.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpdateByID(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
	DeleteByID(ctx context.Context, id string) (*model.User, error)
}
