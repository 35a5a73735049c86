package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"catapi/internal/geo"
	"catapi/internal/repository"
)

func TestCatRepository_Mongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by id not found", func(mt *mtest.T) {
		repo := NewCatRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.cats", mtest.FirstBatch))

		cat, err := repo.FindByID(context.Background(), "missing")
		assert.Nil(mt, cat)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("find within region sends geoWithin polygon", func(mt *mtest.T) {
		repo := NewCatRepository(mt.DB)
		birth := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.cats", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "c1"},
			{Key: "cat_name", Value: "Miso"},
			{Key: "weight", Value: 4.0},
			{Key: "filename", Value: "miso.jpg"},
			{Key: "birthdate", Value: birth},
			{Key: "location", Value: bson.D{{Key: "type", Value: "Point"}, {Key: "coordinates", Value: bson.A{5.0, 5.0}}}},
			{Key: "owner", Value: "u1"},
		}))

		region := geo.RectangleBounds(geo.Point{Lat: 10, Lng: 10}, geo.Point{Lat: 0, Lng: 0})
		cats, err := repo.FindWithinRegion(context.Background(), region)
		require.NoError(mt, err)
		require.Len(mt, cats, 1)
		assert.Equal(mt, "c1", cats[0].ID)
		assert.Equal(mt, "u1", cats[0].OwnerID)
		assert.Equal(mt, geo.NewLocation(geo.Point{Lat: 5, Lng: 5}), cats[0].Location)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		geomType := started.Command.Lookup("filter", "location", "$geoWithin", "$geometry", "type")
		assert.Equal(mt, "Polygon", geomType.StringValue())
	})

	mt.Run("delete scoped to owner", func(mt *mtest.T) {
		repo := NewCatRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		cat, err := repo.DeleteByID(context.Background(), "c1", repository.OwnedBy("u2"))
		assert.Nil(mt, cat)
		assert.ErrorIs(mt, err, repository.ErrNotFound)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "u2", started.Command.Lookup("query", "owner").StringValue())
	})
}
