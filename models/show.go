package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Show holds the structure for the shows collection in mongo
type Show struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Host        string             `json:"host" bson:"host"`
	Description string             `json:"description" bson:"description"`
	StartTime   string             `json:"startTime" bson:"startTime"` // HH:MM
	EndTime     string             `json:"endTime" bson:"endTime"`     // HH:MM
	Days        []string           `json:"days" bson:"days"`
	IsLive      bool               `json:"isLive" bson:"isLive"`
	ImageURL    string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	CreatedAt   *time.Time         `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt   *time.Time         `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}
