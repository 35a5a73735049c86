package service

import (
	"context"
	stderrors "errors"

	"golang.org/x/crypto/bcrypt"

	"catapi/internal/auth"
	"catapi/internal/errors"
	"catapi/internal/model"
	"catapi/internal/policy"
	"catapi/internal/repository"
)

const MsgUserNotFound = "User not found"

const bcryptCost = 12

// NewUser is the signup payload after validation.
type NewUser struct {
	UserName string
	Email    string
	Password string
	Role     string
}

// UserChanges lists the fields a user may change on their own record.
type UserChanges struct {
	UserName *string
	Email    *string
	Password *string
}

// UserService exposes user operations.
type UserService interface {
	Create(ctx context.Context, in NewUser) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateCurrent(ctx context.Context, principal *auth.Principal, in UserChanges) (*model.User, error)
	DeleteCurrent(ctx context.Context, principal *auth.Principal) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService over repo.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Create hashes the password and stores the user. Email uniqueness is left
// to the store, so a duplicate surfaces as a store failure.
func (s *userService) Create(ctx context.Context, in NewUser) (*model.User, error) {
	role, err := model.ParseRole(in.Role)
	if err != nil {
		return nil, errors.BadInput([]errors.FieldViolation{{Field: "role", Message: "Must be one of: user admin"}})
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, errors.Store(err)
	}

	user := &model.User{
		UserName:     in.UserName,
		Email:        in.Email,
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, errors.Store(err)
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, userError(err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, errors.Store(err)
	}
	return users, nil
}

// UpdateCurrent applies the changes to the principal's own record. A new
// password is hashed before it reaches the repository.
func (s *userService) UpdateCurrent(ctx context.Context, principal *auth.Principal, in UserChanges) (*model.User, error) {
	if err := policy.CanAct(principal, policy.OpSelf, ""); err != nil {
		return nil, err
	}

	patch := model.UserPatch{UserName: in.UserName, Email: in.Email}
	if in.Password != nil {
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, errors.Store(err)
		}
		patch.PasswordHash = &hash
	}

	user, err := s.repo.UpdateByID(ctx, principal.ID, patch)
	if err != nil {
		return nil, userError(err)
	}
	return user, nil
}

func (s *userService) DeleteCurrent(ctx context.Context, principal *auth.Principal) (*model.User, error) {
	if err := policy.CanAct(principal, policy.OpSelf, ""); err != nil {
		return nil, err
	}
	user, err := s.repo.DeleteByID(ctx, principal.ID)
	if err != nil {
		return nil, userError(err)
	}
	return user, nil
}

func userError(err error) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound(MsgUserNotFound)
	}
	return errors.Store(err)
}
