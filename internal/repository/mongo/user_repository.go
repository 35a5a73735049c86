package mongo

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"catapi/internal/model"
	"catapi/internal/repository"
)

type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository builds a repository over the users collection of db.
func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepository{coll: db.Collection(usersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	doc := newUserDocument(user)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	user.ID = doc.ID
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel(), nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *userRepository) FindAll(ctx context.Context) ([]model.User, error) {
	return r.find(ctx, bson.M{})
}

func (r *userRepository) find(ctx context.Context, filter bson.M) ([]model.User, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(docs))
	for i := range docs {
		users = append(users, *docs[i].toModel())
	}
	return users, nil
}

func (r *userRepository) UpdateByID(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	set := userSet(patch)
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}
	var doc userDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel(), nil
}

func (r *userRepository) DeleteByID(ctx context.Context, id string) (*model.User, error) {
	var doc userDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel(), nil
}
