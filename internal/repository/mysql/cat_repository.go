package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"catapi/internal/geo"
	"catapi/internal/model"
	"catapi/internal/repository"
)

type catRepository struct {
	db *gorm.DB
}

// NewCatRepository builds a GORM-backed repository.
func NewCatRepository(db *gorm.DB) repository.CatRepository {
	return &catRepository{db: db}
}

func (r *catRepository) FindByID(ctx context.Context, id string) (*model.Cat, error) {
	var rec catRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return rec.toModel(), nil
}

func (r *catRepository) FindAll(ctx context.Context) ([]model.Cat, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *catRepository) FindByOwner(ctx context.Context, ownerID string) ([]model.Cat, error) {
	return r.find(r.db.WithContext(ctx).Where("owner_id = ?", ownerID))
}

// FindWithinRegion matches cats whose stored point lies inside region or on
// its edge. The region is an axis-aligned rectangle, so its MBR is exact.
func (r *catRepository) FindWithinRegion(ctx context.Context, region geo.Polygon) ([]model.Cat, error) {
	q := r.db.WithContext(ctx).
		Where("location_lng IS NOT NULL AND location_lat IS NOT NULL").
		Where("MBRCovers(ST_GeomFromText(?), POINT(location_lng, location_lat))", region.WKT())
	return r.find(q)
}

func (r *catRepository) find(q *gorm.DB) ([]model.Cat, error) {
	var recs []catRecord
	if err := q.Order("created_at").Find(&recs).Error; err != nil {
		return nil, err
	}
	cats := make([]model.Cat, 0, len(recs))
	for i := range recs {
		cats = append(cats, *recs[i].toModel())
	}
	return cats, nil
}

func (r *catRepository) Create(ctx context.Context, cat *model.Cat) error {
	rec := newCatRecord(cat)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return err
	}
	cat.ID = rec.ID
	return nil
}

// UpdateByID locks the row, applies every patched column in one statement and
// returns the updated cat.
func (r *catRepository) UpdateByID(ctx context.Context, id string, scope repository.Scope, patch model.CatPatch) (*model.Cat, error) {
	var updated *model.Cat
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec catRecord
		if err := scoped(tx, id, scope).Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec).Error; err != nil {
			return translate(err)
		}
		if cols := catColumns(patch); len(cols) > 0 {
			if err := tx.Model(&catRecord{}).Where("id = ?", rec.ID).Updates(cols).Error; err != nil {
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

func (r *catRepository) DeleteByID(ctx context.Context, id string, scope repository.Scope) (*model.Cat, error) {
	var deleted *model.Cat
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec catRecord
		if err := scoped(tx, id, scope).Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec).Error; err != nil {
			return translate(err)
		}
		if err := tx.Where("id = ?", rec.ID).Delete(&catRecord{}).Error; err != nil {
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

func scoped(tx *gorm.DB, id string, scope repository.Scope) *gorm.DB {
	q := tx.Where("id = ?", id)
	if scope.OwnerID != "" {
		q = q.Where("owner_id = ?", scope.OwnerID)
	}
	return q
}
