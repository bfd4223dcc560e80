package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/radio-santana-api/api"
	"github.com/linesmerrill/radio-santana-api/config"
	"github.com/linesmerrill/radio-santana-api/models"
	"github.com/linesmerrill/radio-santana-api/requests"
)

// Requests exposes the music request queue
type Requests struct {
	Queue *requests.Queue
}

// RequestsHandler returns the retained requests, newest first
func (q Requests) RequestsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := q.Queue.Recent(ctx)
	if err != nil {
		config.ErrorStatus(requests.ConnectionMessage, http.StatusServiceUnavailable, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, list)
}

// CreateRequestHandler submits a song request
func (q Requests) CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	var body models.CreateMusicRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	id, err := q.Queue.Submit(ctx, body.Track, body.Artist, body.Requester, body.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]string{"_id": id.Hex()})
}

// UpdateRequestStatusHandler moves a request to another moderation status
func (q Requests) UpdateRequestStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["request_id"]

	var body models.UpdateRequestStatus
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := q.Queue.UpdateStatus(ctx, id, body.Status); err != nil {
		writeError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"_id": id, "status": string(body.Status)})
}
