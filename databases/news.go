package databases

// go generate: mockery --name NewsDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/radio-santana-api/models"
)

const newsName = "news"

// NewsDatabase contains the methods to use with the news database
type NewsDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.NewsItem, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.NewsItem, error)
	InsertOne(ctx context.Context, item models.NewsItem) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*models.NewsItem, error)
	DeleteOne(ctx context.Context, filter interface{}) (int64, error)
}

type newsDatabase struct {
	db DatabaseHelper
}

// NewNewsDatabase initializes a new instance of news database with the provided db connection
func NewNewsDatabase(db DatabaseHelper) NewsDatabase {
	return &newsDatabase{
		db: db,
	}
}

func (n *newsDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.NewsItem, error) {
	item := &models.NewsItem{}
	err := n.db.Collection(newsName).FindOne(ctx, filter, opts...).Decode(&item)
	if err != nil {
		return nil, Wrap("find news item", err)
	}
	return item, nil
}

func (n *newsDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.NewsItem, error) {
	var items []models.NewsItem
	err := findAll(ctx, n.db.Collection(newsName), filter, &items, opts...)
	if err != nil {
		return nil, Wrap("find news", err)
	}
	return items, nil
}

func (n *newsDatabase) InsertOne(ctx context.Context, item models.NewsItem) (InsertOneResultHelper, error) {
	res, err := n.db.Collection(newsName).InsertOne(ctx, item)
	if err != nil {
		return nil, Wrap("insert news item", err)
	}
	return res, nil
}

func (n *newsDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*models.NewsItem, error) {
	res, err := n.db.Collection(newsName).UpdateOne(ctx, filter, update, opts...)
	if err != nil {
		return nil, Wrap("update news item", err)
	}
	if res.MatchedCount == 0 {
		return nil, &Error{Code: CodeNotFound, Op: "update news item"}
	}
	return n.FindOne(ctx, filter)
}

func (n *newsDatabase) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	count, err := n.db.Collection(newsName).DeleteOne(ctx, filter)
	if err != nil {
		return 0, Wrap("delete news item", err)
	}
	return count, nil
}
