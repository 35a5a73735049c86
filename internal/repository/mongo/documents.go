// Package mongo implements the repositories on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"catapi/internal/geo"
	"catapi/internal/model"
	"catapi/internal/repository"
)

const (
	catsCollection  = "cats"
	usersCollection = "users"
)

type pointDocument struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

type catDocument struct {
	ID        string         `bson:"_id"`
	CatName   string         `bson:"cat_name"`
	Weight    float64        `bson:"weight"`
	Filename  string         `bson:"filename"`
	Birthdate time.Time      `bson:"birthdate"`
	Location  *pointDocument `bson:"location,omitempty"`
	OwnerID   string         `bson:"owner"`
}

func newCatDocument(c *model.Cat) *catDocument {
	doc := &catDocument{
		ID:        c.ID,
		CatName:   c.CatName,
		Weight:    c.Weight,
		Filename:  c.Filename,
		Birthdate: c.Birthdate,
		OwnerID:   c.OwnerID,
	}
	if c.Location != nil {
		doc.Location = &pointDocument{Type: geo.TypePoint, Coordinates: c.Location.Coordinates}
	}
	return doc
}

func (d *catDocument) toModel() *model.Cat {
	cat := &model.Cat{
		ID:        d.ID,
		CatName:   d.CatName,
		Weight:    d.Weight,
		Filename:  d.Filename,
		Birthdate: d.Birthdate.UTC(),
		OwnerID:   d.OwnerID,
	}
	if d.Location != nil && len(d.Location.Coordinates) == 2 {
		cat.Location = &geo.Location{Type: geo.TypePoint, Coordinates: d.Location.Coordinates}
	}
	return cat
}

func catSet(p model.CatPatch) bson.M {
	set := bson.M{}
	if p.CatName != nil {
		set["cat_name"] = *p.CatName
	}
	if p.Weight != nil {
		set["weight"] = *p.Weight
	}
	if p.Filename != nil {
		set["filename"] = *p.Filename
	}
	if p.Birthdate != nil {
		set["birthdate"] = *p.Birthdate
	}
	if p.Location != nil {
		set["location"] = pointDocument{Type: geo.TypePoint, Coordinates: p.Location.Coordinates}
	}
	if p.OwnerID != nil {
		set["owner"] = *p.OwnerID
	}
	return set
}

type userDocument struct {
	ID       string `bson:"_id"`
	UserName string `bson:"user_name"`
	Email    string `bson:"email"`
	Role     string `bson:"role"`
	Password string `bson:"password"`
}

func newUserDocument(u *model.User) *userDocument {
	return &userDocument{
		ID:       u.ID,
		UserName: u.UserName,
		Email:    u.Email,
		Role:     string(u.Role),
		Password: u.PasswordHash,
	}
}

func (d *userDocument) toModel() *model.User {
	return &model.User{
		ID:           d.ID,
		UserName:     d.UserName,
		Email:        d.Email,
		Role:         model.Role(d.Role),
		PasswordHash: d.Password,
	}
}

func userSet(p model.UserPatch) bson.M {
	set := bson.M{}
	if p.UserName != nil {
		set["user_name"] = *p.UserName
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.PasswordHash != nil {
		set["password"] = *p.PasswordHash
	}
	return set
}

func translate(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

// EnsureIndexes creates the unique email index and the geospatial index used
// by region queries.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users email index: %w", err)
	}
	if _, err := db.Collection(catsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "owner", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("cats indexes: %w", err)
	}
	return nil
}
