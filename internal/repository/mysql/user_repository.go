package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"catapi/internal/model"
	"catapi/internal/repository"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	rec := newUserRecord(user)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return err
	}
	user.ID = rec.ID
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return rec.toModel(), nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	return r.find(r.db.WithContext(ctx).Where("id IN ?", ids))
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return rec.toModel(), nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]model.User, error) {
	return r.find(r.db.WithContext(ctx).Order("created_at"))
}

func (r *userRepository) find(q *gorm.DB) ([]model.User, error) {
	var recs []userRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(recs))
	for i := range recs {
		users = append(users, *recs[i].toModel())
	}
	return users, nil
}

func (r *userRepository) UpdateByID(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	var updated *model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec userRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&rec).Error; err != nil {
			return translate(err)
		}
		if cols := userColumns(patch); len(cols) > 0 {
			if err := tx.Model(&userRecord{}).Where("id = ?", rec.ID).Updates(cols).Error; err != nil {
				return err
			}
		}
		updated = rec.toModel()
		patch.Apply(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *userRepository) DeleteByID(ctx context.Context, id string) (*model.User, error) {
	var deleted *model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec userRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&rec).Error; err != nil {
			return translate(err)
		}
		if err := tx.Where("id = ?", rec.ID).Delete(&userRecord{}).Error; err != nil {
			return err
		}
		deleted = rec.toModel()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
