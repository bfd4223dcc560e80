package databases

// go generate: mockery --name ChatMessageDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/radio-santana-api/models"
)

const chatMessageName = "chatMessages"

// ChatMessageDatabase contains the methods to use with the chat message database
type ChatMessageDatabase interface {
	InsertOne(ctx context.Context, msg models.ChatMessage) (primitive.ObjectID, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ChatMessage, error)
	Watch(ctx context.Context) (ChangeStreamHelper, error)
}

type chatMessageDatabase struct {
	db DatabaseHelper
}

// NewChatMessageDatabase initializes a new instance of chat message database with the provided db connection
func NewChatMessageDatabase(db DatabaseHelper) ChatMessageDatabase {
	return &chatMessageDatabase{
		db: db,
	}
}

// InsertOne stores msg with a server assigned timestamp and returns its id
func (c *chatMessageDatabase) InsertOne(ctx context.Context, msg models.ChatMessage) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	fields := bson.M{
		"username":  msg.Username,
		"message":   msg.Message,
		"type":      msg.Type,
		"createdAt": time.Now().UTC().Format(time.RFC3339Nano),
	}
	err := insertWithServerTimestamp(ctx, c.db.Collection(chatMessageName), id, fields, "timestamp")
	if err != nil {
		return primitive.NilObjectID, Wrap("insert chat message", err)
	}
	return id, nil
}

func (c *chatMessageDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := findAll(ctx, c.db.Collection(chatMessageName), filter, &messages, opts...)
	if err != nil {
		return nil, Wrap("find chat messages", err)
	}
	return messages, nil
}

func (c *chatMessageDatabase) Watch(ctx context.Context) (ChangeStreamHelper, error) {
	cs, err := c.db.Collection(chatMessageName).Watch(ctx, mutationPipeline)
	if err != nil {
		return nil, Wrap("watch chat messages", err)
	}
	return cs, nil
}
