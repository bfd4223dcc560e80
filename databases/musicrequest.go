package databases

// go generate: mockery --name MusicRequestDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/radio-santana-api/models"
)

const musicRequestName = "musicRequests"

// MusicRequestDatabase contains the methods to use with the music request database
type MusicRequestDatabase interface {
	InsertOne(ctx context.Context, req models.MusicRequest) (primitive.ObjectID, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.MusicRequest, error)
	Count(ctx context.Context) (int64, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	Watch(ctx context.Context) (ChangeStreamHelper, error)
}

type musicRequestDatabase struct {
	db DatabaseHelper
}

// NewMusicRequestDatabase initializes a new instance of music request database with the provided db connection
func NewMusicRequestDatabase(db DatabaseHelper) MusicRequestDatabase {
	return &musicRequestDatabase{
		db: db,
	}
}

// InsertOne stores req with a server assigned timestamp and returns its id
func (m *musicRequestDatabase) InsertOne(ctx context.Context, req models.MusicRequest) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	fields := bson.M{
		"track":     req.Track,
		"artist":    req.Artist,
		"requester": req.Requester,
		"message":   req.Message,
		"status":    req.Status,
		"createdAt": time.Now().UTC().Format(time.RFC3339Nano),
	}
	err := insertWithServerTimestamp(ctx, m.db.Collection(musicRequestName), id, fields, "timestamp")
	if err != nil {
		return primitive.NilObjectID, Wrap("insert music request", err)
	}
	return id, nil
}

func (m *musicRequestDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.MusicRequest, error) {
	var requests []models.MusicRequest
	err := findAll(ctx, m.db.Collection(musicRequestName), filter, &requests, opts...)
	if err != nil {
		return nil, Wrap("find music requests", err)
	}
	return requests, nil
}

// Count returns the number of stored requests
func (m *musicRequestDatabase) Count(ctx context.Context) (int64, error) {
	n, err := m.db.Collection(musicRequestName).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, Wrap("count music requests", err)
	}
	return n, nil
}

// UpdateStatus sets the status and a server updatedAt on an existing request
func (m *musicRequestDatabase) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus) error {
	update := bson.M{
		"$set":         bson.M{"status": status},
		"$currentDate": bson.M{"updatedAt": true},
	}
	res, err := m.db.Collection(musicRequestName).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return Wrap("update music request", err)
	}
	if res.MatchedCount == 0 {
		return &Error{Code: CodeNotFound, Op: "update music request"}
	}
	return nil
}

// DeleteMany removes the requests with the given ids
func (m *musicRequestDatabase) DeleteMany(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := m.db.Collection(musicRequestName).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, Wrap("delete music requests", err)
	}
	return n, nil
}

func (m *musicRequestDatabase) Watch(ctx context.Context) (ChangeStreamHelper, error) {
	cs, err := m.db.Collection(musicRequestName).Watch(ctx, mutationPipeline)
	if err != nil {
		return nil, Wrap("watch music requests", err)
	}
	return cs, nil
}
