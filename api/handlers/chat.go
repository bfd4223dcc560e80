package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/linesmerrill/radio-santana-api/api"
	"github.com/linesmerrill/radio-santana-api/chat"
	"github.com/linesmerrill/radio-santana-api/config"
	"github.com/linesmerrill/radio-santana-api/models"
	"github.com/linesmerrill/radio-santana-api/session"
)

// Chat exposes the chat channel
type Chat struct {
	Manager  *chat.Manager
	Sessions *session.Registry
}

// MessagesHandler returns the current chat window, oldest first
func (c Chat) MessagesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	messages, err := c.Manager.Recent(ctx)
	if err != nil {
		config.ErrorStatus(chat.ConnectionMessage, http.StatusServiceUnavailable, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, messages)
}

// SendMessageHandler posts a message under the caller's session name
func (c Chat) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	gate, ok := currentGate(c.Sessions, r)
	if !ok {
		config.ErrorStatus(NoSessionMessage, http.StatusNotFound, w, nil)
		return
	}

	var body models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := gate.SendMessage(ctx, body.Message); err != nil {
		writeError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, gate.State())
}

// DJMessageHandler posts a message on behalf of a DJ
func (c Chat) DJMessageHandler(w http.ResponseWriter, r *http.Request) {
	var body models.DJMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := c.Manager.SendDJMessage(ctx, body.DJName, body.Message); err != nil {
		writeError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]bool{"sent": true})
}
