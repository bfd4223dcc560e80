package databases

// go generate: mockery --name ShowDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/radio-santana-api/models"
)

const showName = "shows"

// ShowDatabase contains the methods to use with the show database
type ShowDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Show, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Show, error)
	InsertOne(ctx context.Context, show models.Show) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*models.Show, error)
	DeleteOne(ctx context.Context, filter interface{}) (int64, error)
}

type showDatabase struct {
	db DatabaseHelper
}

// NewShowDatabase initializes a new instance of show database with the provided db connection
func NewShowDatabase(db DatabaseHelper) ShowDatabase {
	return &showDatabase{
		db: db,
	}
}

func (s *showDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Show, error) {
	show := &models.Show{}
	err := s.db.Collection(showName).FindOne(ctx, filter, opts...).Decode(&show)
	if err != nil {
		return nil, Wrap("find show", err)
	}
	return show, nil
}

func (s *showDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Show, error) {
	var shows []models.Show
	err := findAll(ctx, s.db.Collection(showName), filter, &shows, opts...)
	if err != nil {
		return nil, Wrap("find shows", err)
	}
	return shows, nil
}

func (s *showDatabase) InsertOne(ctx context.Context, show models.Show) (InsertOneResultHelper, error) {
	res, err := s.db.Collection(showName).InsertOne(ctx, show)
	if err != nil {
		return nil, Wrap("insert show", err)
	}
	return res, nil
}

func (s *showDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*models.Show, error) {
	res, err := s.db.Collection(showName).UpdateOne(ctx, filter, update, opts...)
	if err != nil {
		return nil, Wrap("update show", err)
	}
	if res.MatchedCount == 0 {
		return nil, &Error{Code: CodeNotFound, Op: "update show"}
	}
	return s.FindOne(ctx, filter)
}

func (s *showDatabase) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	n, err := s.db.Collection(showName).DeleteOne(ctx, filter)
	if err != nil {
		return 0, Wrap("delete show", err)
	}
	return n, nil
}
