package service

import (
	"context"
	stderrors "errors"

	"catapi/internal/auth"
	"catapi/internal/errors"
	"catapi/internal/geo"
	"catapi/internal/model"
	"catapi/internal/policy"
	"catapi/internal/repository"
)

const (
	MsgCatNotFound  = "Cat not found"
	MsgCatsNotFound = "Cats not found"
)


// UploadDefaults carries the values resolved from an uploaded image.
type UploadDefaults struct {
	Filename string
	Location *geo.Location
}

// CatService exposes cat operations. Every method that takes a principal
// authorizes it before touching the repository.
type CatService interface {
	GetByID(ctx context.Context, id string) (*model.Cat, error)
	ListAll(ctx context.Context) ([]model.Cat, error)
	ListMine(ctx context.Context, principal *auth.Principal) ([]model.Cat, error)
	ListInArea(ctx context.Context, topRight, bottomLeft geo.Point) ([]model.Cat, error)
	Create(ctx context.Context, principal *auth.Principal, cat *model.Cat, defaults UploadDefaults) (*model.Cat, error)
	Update(ctx context.Context, principal *auth.Principal, id string, patch model.CatPatch) (*model.Cat, error)
	UpdateAsAdmin(ctx context.Context, principal *auth.Principal, id string, patch model.CatPatch) (*model.Cat, error)
	Delete(ctx context.Context, principal *auth.Principal, id string) (*model.Cat, error)
	DeleteAsAdmin(ctx context.Context, principal *auth.Principal, id string) (*model.Cat, error)
}

type catService struct {
	cats  repository.CatRepository
	users repository.UserRepository
}

// NewCatService builds a CatService. The user repository is used to attach
// owners to responses.
func NewCatService(cats repository.CatRepository, users repository.UserRepository) CatService {
	return &catService{cats: cats, users: users}
}

func (s *catService) GetByID(ctx context.Context, id string) (*model.Cat, error) {
	cat, err := s.cats.FindByID(ctx, id)
	if err != nil {
		return nil, catError(err)
	}
	if err := s.attachOwner(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *catService) ListAll(ctx context.Context) ([]model.Cat, error) {
	cats, err := s.cats.FindAll(ctx)
	if err != nil {
		return nil, errors.Store(err)
	}
	return s.attachOwners(ctx, cats)
}

func (s *catService) ListMine(ctx context.Context, principal *auth.Principal) ([]model.Cat, error) {
	if err := policy.CanAct(principal, policy.OpSelf, ""); err != nil {
		return nil, err
	}
	cats, err := s.cats.FindByOwner(ctx, principal.ID)
	if err != nil {
		return nil, errors.Store(err)
	}
	return s.attachOwners(ctx, cats)
}

// ListInArea returns the cats inside the rectangle spanned by the corners.
// The corners are assumed to be ordered; no reordering is done.
func (s *catService) ListInArea(ctx context.Context, topRight, bottomLeft geo.Point) ([]model.Cat, error) {
	cats, err := s.cats.FindWithinRegion(ctx, geo.RectangleBounds(topRight, bottomLeft))
	if err != nil {
		return nil, errors.Store(err)
	}
	if len(cats) == 0 {
		return nil, errors.NotFound(MsgCatsNotFound)
	}
	return cats, nil
}

func (s *catService) Create(ctx context.Context, principal *auth.Principal, cat *model.Cat, defaults UploadDefaults) (*model.Cat, error) {
	if err := policy.CanAct(principal, policy.OpSelf, ""); err != nil {
		return nil, err
	}
	if cat.OwnerID == "" {
		cat.OwnerID = principal.ID
	}
	if cat.Filename == "" {
		cat.Filename = defaults.Filename
	}
	if cat.Location == nil && defaults.Location != nil {
		loc := *defaults.Location
		cat.Location = &loc
	}

	if err := s.cats.Create(ctx, cat); err != nil {
		return nil, errors.Store(err)
	}
	return cat, nil
}

// Update changes a cat owned by the principal. Ownership cannot change on
// this path.
func (s *catService) Update(ctx context.Context, principal *auth.Principal, id string, patch model.CatPatch) (*model.Cat, error) {
	if err := policy.CanAct(principal, policy.OpSelf, ""); err != nil {
		return nil, err
	}
	patch.OwnerID = nil

	cat, err := s.cats.UpdateByID(ctx, id, repository.OwnedBy(principal.ID), patch)
	if err != nil {
		return nil, catError(err)
	}
	if err := s.attachOwner(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *catService) UpdateAsAdmin(ctx context.Context, principal *auth.Principal, id string, patch model.CatPatch) (*model.Cat, error) {
	if err := policy.CanAct(principal, policy.OpAdmin, ""); err != nil {
		return nil, err
	}
	cat, err := s.cats.UpdateByID(ctx, id, repository.AnyOwner, patch)
	if err != nil {
		return nil, catError(err)
	}
	return cat, nil
}

func (s *catService) Delete(ctx context.Context, principal *auth.Principal, id string) (*model.Cat, error) {
	if err := policy.CanAct(principal, policy.OpSelf, ""); err != nil {
		return nil, err
	}
	cat, err := s.cats.DeleteByID(ctx, id, repository.OwnedBy(principal.ID))
	if err != nil {
		return nil, catError(err)
	}
	if err := s.attachOwner(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *catService) DeleteAsAdmin(ctx context.Context, principal *auth.Principal, id string) (*model.Cat, error) {
	if err := policy.CanAct(principal, policy.OpAdmin, ""); err != nil {
		return nil, err
	}
	cat, err := s.cats.DeleteByID(ctx, id, repository.AnyOwner)
	if err != nil {
		return nil, catError(err)
	}
	return cat, nil
}

func (s *catService) attachOwner(ctx context.Context, cat *model.Cat) error {
	cats, err := s.attachOwners(ctx, []model.Cat{*cat})
	if err != nil {
		return err
	}
	cat.Owner = cats[0].Owner
	return nil
}

// attachOwners sets Owner on every cat whose owner still exists.
func (s *catService) attachOwners(ctx context.Context, cats []model.Cat) ([]model.Cat, error) {
	if len(cats) == 0 {
		return []model.Cat{}, nil
	}
	ids := make([]string, 0, len(cats))
	for _, c := range cats {
		ids = append(ids, c.OwnerID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Store(err)
	}

	byID := make(map[string]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for i := range cats {
		cats[i].Owner = byID[cats[i].OwnerID]
	}
	return cats, nil
}

func catError(err error) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound(MsgCatNotFound)
	}
	return errors.Store(err)
}
