package databases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/radio-santana-api/databases"
	"github.com/linesmerrill/radio-santana-api/databases/mocks"
	"github.com/linesmerrill/radio-santana-api/models"
)

func TestMusicRequestDatabase_InsertOne(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	var gotUpdate bson.M
	collectionHelper.
		On("UpdateOne", context.Background(), mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{UpsertedCount: 1}, nil).
		Run(func(args mock.Arguments) {
			gotUpdate = args.Get(2).(bson.M)
		})
	dbHelper.On("Collection", "musicRequests").Return(collectionHelper)

	requestDB := databases.NewMusicRequestDatabase(dbHelper)

	id, err := requestDB.InsertOne(context.Background(), models.MusicRequest{
		Track:     "Oye Como Va",
		Artist:    "Santana",
		Requester: "Ana",
		Status:    models.RequestStatusPending,
	})

	assert.NoError(t, err)
	assert.False(t, id.IsZero())
	fields := gotUpdate["$setOnInsert"].(bson.M)
	assert.Equal(t, "Oye Como Va", fields["track"])
	assert.Equal(t, models.RequestStatusPending, fields["status"])
	assert.Equal(t, bson.M{"timestamp": true}, gotUpdate["$currentDate"])
}

func TestMusicRequestDatabase_UpdateStatus(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	found := primitive.NewObjectID()
	missing := primitive.NewObjectID()

	update := bson.M{
		"$set":         bson.M{"status": models.RequestStatusPlayed},
		"$currentDate": bson.M{"updatedAt": true},
	}
	collectionHelper.On("UpdateOne", context.Background(), bson.M{"_id": found}, update).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	collectionHelper.On("UpdateOne", context.Background(), bson.M{"_id": missing}, update).
		Return(&mongo.UpdateResult{}, nil)
	dbHelper.On("Collection", "musicRequests").Return(collectionHelper)

	requestDB := databases.NewMusicRequestDatabase(dbHelper)

	assert.NoError(t, requestDB.UpdateStatus(context.Background(), found, models.RequestStatusPlayed))

	err := requestDB.UpdateStatus(context.Background(), missing, models.RequestStatusPlayed)
	assert.Equal(t, databases.CodeNotFound, databases.Classify(err))
}

func TestMusicRequestDatabase_DeleteMany(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	collectionHelper.On("DeleteMany", context.Background(), bson.M{"_id": bson.M{"$in": ids}}).Return(int64(2), nil)
	dbHelper.On("Collection", "musicRequests").Return(collectionHelper)

	requestDB := databases.NewMusicRequestDatabase(dbHelper)

	n, err := requestDB.DeleteMany(context.Background(), ids)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// nothing to delete never reaches the store
	n, err = requestDB.DeleteMany(context.Background(), nil)
	assert.NoError(t, err)
	assert.Zero(t, n)
	collectionHelper.AssertNumberOfCalls(t, "DeleteMany", 1)
}

func TestMusicRequestDatabase_Count(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("CountDocuments", context.Background(), bson.M{}).Return(int64(4), nil).Once()
	collectionHelper.On("CountDocuments", context.Background(), bson.M{}).Return(int64(0), mongo.ErrClientDisconnected).Once()
	dbHelper.On("Collection", "musicRequests").Return(collectionHelper)

	requestDB := databases.NewMusicRequestDatabase(dbHelper)

	n, err := requestDB.Count(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(4), n)

	_, err = requestDB.Count(context.Background())
	assert.Equal(t, databases.CodeUnavailable, databases.Classify(err))
}
