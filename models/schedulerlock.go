package models

import "time"

// SchedulerLock holds the structure for the schedulerLocks collection in mongo
type SchedulerLock struct {
	Name      string    `bson:"_id"`
	Owner     string    `bson:"owner"`
	ExpiresAt time.Time `bson:"expiresAt"`
}
