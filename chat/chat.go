// Package chat owns the station chat stream: it writes messages and keeps a
// live, oldest-first window of the most recent ones.
package chat

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/radio-santana-api/databases"
	"github.com/linesmerrill/radio-santana-api/livequery"
	"github.com/linesmerrill/radio-santana-api/models"
	"github.com/linesmerrill/radio-santana-api/telemetry"
)

// DefaultWindow is the number of recent messages a subscription carries
const DefaultWindow = 50

// Manager mediates every read and write against the chat messages
type Manager struct {
	db      databases.ChatMessageDatabase
	sink    telemetry.Sink
	window  int
	backoff time.Duration
}

// NewManager returns a Manager over db. A zero window or backoff takes the
// default and a nil sink discards events.
func NewManager(db databases.ChatMessageDatabase, sink telemetry.Sink, window int, backoff time.Duration) *Manager {
	if window <= 0 {
		window = DefaultWindow
	}
	if sink == nil {
		sink = telemetry.Noop{}
	}
	return &Manager{
		db:      db,
		sink:    sink,
		window:  window,
		backoff: backoff,
	}
}

// SendMessage posts content as a user message from username
func (m *Manager) SendMessage(ctx context.Context, username, content string) error {
	return m.send(ctx, username, content, models.MessageTypeUser)
}

// SendSystemMessage posts content under the reserved system name
func (m *Manager) SendSystemMessage(ctx context.Context, content string) error {
	return m.send(ctx, models.SystemUsername, content, models.MessageTypeSystem)
}

// SendDJMessage posts content as a DJ message from djName
func (m *Manager) SendDJMessage(ctx context.Context, djName, content string) error {
	return m.send(ctx, djName, content, models.MessageTypeDJ)
}

func (m *Manager) send(ctx context.Context, username, content string, msgType models.MessageType) error {
	username = strings.TrimSpace(username)
	content = strings.TrimSpace(content)
	if username == "" {
		return &models.ValidationError{Field: "username", Message: "El nombre de usuario es obligatorio."}
	}
	if content == "" {
		return &models.ValidationError{Field: "message", Message: "El mensaje no puede estar vacío."}
	}

	_, err := m.db.InsertOne(ctx, models.ChatMessage{
		Username: username,
		Message:  content,
		Type:     msgType,
	})
	if err != nil {
		we := newWriteError(err)
		zap.S().Errorw("failed to send chat message",
			"type", msgType,
			"code", we.Code,
			"error", err)
		return we
	}

	m.sink.RecordEvent(telemetry.EventChatMessageSent, map[string]string{"type": string(msgType)})
	return nil
}

// Recent reads the current window once, oldest first
func (m *Manager) Recent(ctx context.Context) ([]models.ChatMessage, error) {
	return m.fetch(ctx)
}

// Subscribe keeps onUpdate fed with the most recent messages, oldest first.
// Every call carries the full window and replaces the previous one. onError
// is called once if the subscription fails with a non retryable error.
func (m *Manager) Subscribe(onUpdate func([]models.ChatMessage), onError func(error)) *livequery.Subscription {
	src := livequery.SourceFuncs[models.ChatMessage]{
		FetchFunc: m.fetch,
		WatchFunc: func(ctx context.Context) (livequery.Stream, error) {
			cs, err := m.db.Watch(ctx)
			if err != nil {
				return nil, err
			}
			return cs, nil
		},
	}
	return livequery.Subscribe[models.ChatMessage](src, onUpdate, onError, livequery.Options{
		Name:    "chat",
		Backoff: m.backoff,
	})
}

// fetch queries newest first so the limit keeps the latest messages, then
// flips the page for display
func (m *Manager) fetch(ctx context.Context) ([]models.ChatMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(m.window))
	messages, err := m.db.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return messages, nil
}
