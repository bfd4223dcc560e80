package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/linesmerrill/radio-santana-api/api"
	"github.com/linesmerrill/radio-santana-api/config"
	"github.com/linesmerrill/radio-santana-api/models"
	"github.com/linesmerrill/radio-santana-api/session"
)

// NoSessionMessage is returned when the caller has no open chat session
const NoSessionMessage = "No hay una sesión de chat activa."

// TokenRevoker refuses a bearer token from now on
type TokenRevoker interface {
	Revoke(r *http.Request, token string) error
}

// Session exposes the chat session gates
type Session struct {
	Registry *session.Registry
	Tokens   TokenRevoker
}

// currentGate returns the gate bound to the authenticated caller
func currentGate(reg *session.Registry, r *http.Request) (*session.Gate, bool) {
	user, ok := api.UserFromContext(r.Context())
	if !ok {
		return nil, false
	}
	return reg.Get(user.ID())
}

// LoginHandler signs a listener in anonymously under a display name
func (s Session) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var body models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	gate, cred, err := s.Registry.Login(ctx, body.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, models.LoginResponse{
		Token:   cred.Token,
		Session: gate.State(),
	})
}

// SessionHandler returns the state of the caller's session
func (s Session) SessionHandler(w http.ResponseWriter, r *http.Request) {
	gate, ok := currentGate(s.Registry, r)
	if !ok {
		config.ErrorStatus(NoSessionMessage, http.StatusNotFound, w, nil)
		return
	}
	api.WriteJSON(w, http.StatusOK, gate.State())
}

// LogoutHandler ends the caller's session and revokes its token
func (s Session) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := api.UserFromContext(r.Context())
	if !ok || !s.Registry.Logout(user.ID()) {
		config.ErrorStatus(NoSessionMessage, http.StatusNotFound, w, nil)
		return
	}
	if token, ok := api.BearerToken(r); ok && s.Tokens != nil {
		if err := s.Tokens.Revoke(r, token); err != nil {
			config.ErrorStatus("failed to revoke token", http.StatusInternalServerError, w, err)
			return
		}
	}
	api.WriteJSON(w, http.StatusOK, map[string]bool{"loggedOut": true})
}

// ReconnectHandler resubscribes the caller's chat feed after it failed
func (s Session) ReconnectHandler(w http.ResponseWriter, r *http.Request) {
	gate, ok := currentGate(s.Registry, r)
	if !ok {
		config.ErrorStatus(NoSessionMessage, http.StatusNotFound, w, nil)
		return
	}
	if err := gate.Reconnect(); err != nil {
		writeError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, gate.State())
}
