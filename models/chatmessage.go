package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageType tags the provenance of a chat message
type MessageType string

// The message types a chat message can carry
const (
	MessageTypeUser   MessageType = "user"
	MessageTypeSystem MessageType = "system"
	MessageTypeDJ     MessageType = "dj"
)

// SystemUsername is the reserved display name used for system messages
const SystemUsername = "Sistema"

// ChatMessage holds the structure for the chatMessages collection in mongo
type ChatMessage struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Username  string             `json:"username" bson:"username"`
	Message   string             `json:"message" bson:"message"`
	Type      MessageType        `json:"type" bson:"type"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp,omitempty"`
	CreatedAt string             `json:"-" bson:"createdAt"` // client fallback, RFC3339
}

// SentAt returns the server timestamp, falling back to the client creation time
// while the server value has not materialized yet
func (m ChatMessage) SentAt() time.Time {
	if !m.Timestamp.IsZero() {
		return m.Timestamp
	}
	t, err := time.Parse(time.RFC3339Nano, m.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
