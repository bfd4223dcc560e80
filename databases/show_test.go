package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/radio-santana-api/databases"
	"github.com/linesmerrill/radio-santana-api/databases/mocks"
	"github.com/linesmerrill/radio-santana-api/models"
)

func TestShowDatabase_FindOne(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	srHelperErr := &mocks.SingleResultHelper{}
	srHelperCorrect := &mocks.SingleResultHelper{}

	srHelperErr.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	srHelperCorrect.On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Show)
		(*arg).Name = "Mañanas Santana"
	})

	collectionHelper.On("FindOne", context.Background(), bson.M{"error": true}).Return(srHelperErr)
	collectionHelper.On("FindOne", context.Background(), bson.M{"error": false}).Return(srHelperCorrect)
	dbHelper.On("Collection", "shows").Return(collectionHelper)

	showDB := databases.NewShowDatabase(dbHelper)

	show, err := showDB.FindOne(context.Background(), bson.M{"error": true})
	assert.Nil(t, show)
	assert.Equal(t, databases.CodeNotFound, databases.Classify(err))

	show, err = showDB.FindOne(context.Background(), bson.M{"error": false})
	assert.NoError(t, err)
	assert.Equal(t, "Mañanas Santana", show.Name)
}

func TestShowDatabase_UpdateOneNotFound(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("UpdateOne", context.Background(), bson.M{"_id": "x"}, bson.M{"$set": bson.M{"isLive": true}}).
		Return(&mongo.UpdateResult{}, nil)
	dbHelper.On("Collection", "shows").Return(collectionHelper)

	showDB := databases.NewShowDatabase(dbHelper)

	show, err := showDB.UpdateOne(context.Background(), bson.M{"_id": "x"}, bson.M{"$set": bson.M{"isLive": true}})
	assert.Nil(t, show)
	assert.Equal(t, databases.CodeNotFound, databases.Classify(err))
}

func TestNewsDatabase_DeleteOne(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}

	collectionHelper.On("DeleteOne", context.Background(), bson.M{"error": true}).Return(int64(0), errors.New("mocked-error"))
	collectionHelper.On("DeleteOne", context.Background(), bson.M{"error": false}).Return(int64(1), nil)
	dbHelper.On("Collection", "news").Return(collectionHelper)

	newsDB := databases.NewNewsDatabase(dbHelper)

	n, err := newsDB.DeleteOne(context.Background(), bson.M{"error": true})
	assert.Zero(t, n)
	assert.EqualError(t, err, "delete news item: unknown: mocked-error")

	n, err = newsDB.DeleteOne(context.Background(), bson.M{"error": false})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
