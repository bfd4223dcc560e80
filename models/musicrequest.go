package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus is the moderation state of a music request
type RequestStatus string

// The statuses a music request moves through
const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusPlayed   RequestStatus = "played"
)

// Valid reports whether s is one of the known request statuses
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusPlayed:
		return true
	}
	return false
}

// MusicRequest holds the structure for the musicRequests collection in mongo
type MusicRequest struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Track     string             `json:"track" bson:"track"`
	Artist    string             `json:"artist" bson:"artist"`
	Requester string             `json:"requester" bson:"requester"`
	Message   string             `json:"message,omitempty" bson:"message"`
	Status    RequestStatus      `json:"status" bson:"status"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp,omitempty"`
	UpdatedAt *time.Time         `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
	CreatedAt string             `json:"-" bson:"createdAt"`
}

// CreateMusicRequest is the request body for a new song request
type CreateMusicRequest struct {
	Track     string `json:"track"`
	Artist    string `json:"artist"`
	Requester string `json:"requester"`
	Message   string `json:"message"`
}

// UpdateRequestStatus is the request body for a moderation status change
type UpdateRequestStatus struct {
	Status RequestStatus `json:"status"`
}
