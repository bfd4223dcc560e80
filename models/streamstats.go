package models

import "time"

// StreamStats holds the last known Icecast status of the station stream
type StreamStats struct {
	Listeners int       `json:"listeners"`
	Bitrate   string    `json:"bitrate"`
	Genre     string    `json:"genre"`
	Website   string    `json:"website"`
	Title     string    `json:"title"`
	StreamURL string    `json:"streamUrl,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}
