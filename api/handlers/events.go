package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/linesmerrill/radio-santana-api/api"
	"github.com/linesmerrill/radio-santana-api/config"
	"github.com/linesmerrill/radio-santana-api/models"
	"github.com/linesmerrill/radio-santana-api/telemetry"
)

const maxEventParams = 10

// Events lets the front-end forward analytics events to the telemetry sink
type Events struct {
	Sink telemetry.Sink
}

// RecordEventHandler records one front-end event
func (e Events) RecordEventHandler(w http.ResponseWriter, r *http.Request) {
	var body models.TelemetryEvent
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if !telemetry.IsClientEvent(body.Name) {
		config.ErrorStatus("unknown event", http.StatusBadRequest, w, nil)
		return
	}
	if len(body.Params) > maxEventParams {
		config.ErrorStatus("too many event params", http.StatusBadRequest, w, nil)
		return
	}

	e.Sink.RecordEvent(body.Name, body.Params)
	api.WriteJSON(w, http.StatusAccepted, map[string]bool{"recorded": true})
}
