package mongo

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"catapi/internal/geo"
	"catapi/internal/model"
	"catapi/internal/repository"
)

type catRepository struct {
	coll *mongo.Collection
}

// NewCatRepository builds a repository over the cats collection of db.
func NewCatRepository(db *mongo.Database) repository.CatRepository {
	return &catRepository{coll: db.Collection(catsCollection)}
}

func (r *catRepository) FindByID(ctx context.Context, id string) (*model.Cat, error) {
	var doc catDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel(), nil
}

func (r *catRepository) FindAll(ctx context.Context) ([]model.Cat, error) {
	return r.find(ctx, bson.M{})
}

func (r *catRepository) FindByOwner(ctx context.Context, ownerID string) ([]model.Cat, error) {
	return r.find(ctx, bson.M{"owner": ownerID})
}

// FindWithinRegion runs a $geoWithin query against the stored location.
func (r *catRepository) FindWithinRegion(ctx context.Context, region geo.Polygon) ([]model.Cat, error) {
	return r.find(ctx, bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{
				"$geometry": bson.M{
					"type":        region.Type,
					"coordinates": region.Coordinates,
				},
			},
		},
	})
}

func (r *catRepository) find(ctx context.Context, filter bson.M) ([]model.Cat, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var docs []catDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	cats := make([]model.Cat, 0, len(docs))
	for i := range docs {
		cats = append(cats, *docs[i].toModel())
	}
	return cats, nil
}

func (r *catRepository) Create(ctx context.Context, cat *model.Cat) error {
	doc := newCatDocument(cat)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	cat.ID = doc.ID
	return nil
}

func (r *catRepository) UpdateByID(ctx context.Context, id string, scope repository.Scope, patch model.CatPatch) (*model.Cat, error) {
	filter := scopedFilter(id, scope)
	set := catSet(patch)
	if len(set) == 0 {
		var doc catDocument
		if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
			return nil, translate(err)
		}
		return doc.toModel(), nil
	}

	var doc catDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel(), nil
}

func (r *catRepository) DeleteByID(ctx context.Context, id string, scope repository.Scope) (*model.Cat, error) {
	var doc catDocument
	if err := r.coll.FindOneAndDelete(ctx, scopedFilter(id, scope)).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel(), nil
}

func scopedFilter(id string, scope repository.Scope) bson.M {
	filter := bson.M{"_id": id}
	if scope.OwnerID != "" {
		filter["owner"] = scope.OwnerID
	}
	return filter
}
