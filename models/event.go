package models

// TelemetryEvent is an analytics event forwarded by the front-end
type TelemetryEvent struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params"`
}
