// Package session binds a chat identity and display name to a visitor and
// gates the admin console behind an allow-list.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linesmerrill/radio-santana-api/chat"
	"github.com/linesmerrill/radio-santana-api/identity"
	"github.com/linesmerrill/radio-santana-api/livequery"
	"github.com/linesmerrill/radio-santana-api/models"
	"github.com/linesmerrill/radio-santana-api/telemetry"
)

// Display name bounds, counted in characters after trimming
const (
	MinUsernameLength = 2
	MaxUsernameLength = 20
)

// StationName is announced in the join message
const StationName = "RadioOnline Santana"

var errAlreadyLoggedIn = &models.ValidationError{Field: "username", Message: "Ya has iniciado sesión."}

// ChatChannel is the part of the chat manager a gate drives
type ChatChannel interface {
	SendMessage(ctx context.Context, username, content string) error
	SendSystemMessage(ctx context.Context, content string) error
	Subscribe(onUpdate func([]models.ChatMessage), onError func(error)) *livequery.Subscription
}

// AnonymousSignIn issues ephemeral identities
type AnonymousSignIn interface {
	SignInAnonymously(ctx context.Context) (*identity.Credential, error)
}

// Gate is one visitor's chat session. The zero value is not usable, use
// NewGate.
type Gate struct {
	provider AnonymousSignIn
	chat     ChatChannel
	sink     telemetry.Sink

	mu         sync.Mutex
	id         string
	cred       *identity.Credential
	username   string
	loggedIn   bool
	connected  bool
	messages   []models.ChatMessage
	errMsg     string
	sub        *livequery.Subscription
	generation int
	watchers   map[int]func(models.SessionState)
	nextWatch  int
}

// NewGate returns a logged out gate
func NewGate(provider AnonymousSignIn, ch ChatChannel, sink telemetry.Sink) *Gate {
	if sink == nil {
		sink = telemetry.Noop{}
	}
	return &Gate{
		provider: provider,
		chat:     ch,
		sink:     sink,
		id:       uuid.New().String(),
		watchers: make(map[int]func(models.SessionState)),
	}
}

// ValidateUsername trims name and checks its length
func ValidateUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &models.ValidationError{Field: "username", Message: "Ingresa un nombre de usuario."}
	}
	n := utf8.RuneCountInString(name)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return "", &models.ValidationError{
			Field:   "username",
			Message: fmt.Sprintf("El nombre debe tener entre %d y %d caracteres.", MinUsernameLength, MaxUsernameLength),
		}
	}
	return name, nil
}

// Login validates name, signs in anonymously, binds the name, starts the chat
// subscription and announces the join. Invalid names never reach the provider
// and a failed sign-in leaves the gate logged out.
func (g *Gate) Login(ctx context.Context, name string) (*identity.Credential, error) {
	username, err := ValidateUsername(name)
	if err != nil {
		g.setError(err.Error())
		return nil, err
	}

	g.mu.Lock()
	if g.loggedIn {
		g.mu.Unlock()
		return nil, errAlreadyLoggedIn
	}
	g.mu.Unlock()

	cred, err := g.provider.SignInAnonymously(ctx)
	if err != nil {
		zap.S().Warnw("anonymous sign-in failed", "session", g.id, "code", identity.CodeOf(err), "error", err)
		g.setError(identity.Message(err))
		return nil, err
	}

	g.mu.Lock()
	if g.loggedIn {
		g.mu.Unlock()
		return nil, errAlreadyLoggedIn
	}
	g.cred = cred
	g.username = username
	g.loggedIn = true
	g.connected = true
	g.errMsg = ""
	g.subscribeLocked()
	g.mu.Unlock()
	g.notify()

	if err := g.chat.SendSystemMessage(ctx, fmt.Sprintf("¡Bienvenido %s a %s!", username, StationName)); err != nil {
		zap.S().Warnw("failed to announce chat join", "session", g.id, "error", err)
	}
	g.sink.RecordEvent(telemetry.EventChatLogin, nil)
	return cred, nil
}

// Logout stops the chat subscription and forgets the name and cached
// messages. The credential itself is left to expire.
func (g *Gate) Logout() {
	g.mu.Lock()
	wasLoggedIn := g.loggedIn
	g.stopLocked()
	g.cred = nil
	g.username = ""
	g.loggedIn = false
	g.connected = false
	g.messages = nil
	g.errMsg = ""
	g.mu.Unlock()

	g.notify()
	if wasLoggedIn {
		g.sink.RecordEvent(telemetry.EventChatLogout, nil)
	}
}

// SendMessage posts content under the session's name
func (g *Gate) SendMessage(ctx context.Context, content string) error {
	g.mu.Lock()
	username, loggedIn := g.username, g.loggedIn
	g.mu.Unlock()

	if !loggedIn {
		err := &models.ValidationError{Field: "session", Message: "Debes iniciar sesión para chatear."}
		g.setError(err.Message)
		return err
	}
	if err := g.chat.SendMessage(ctx, username, content); err != nil {
		g.setError(chat.ErrorMessage(err))
		return err
	}
	g.setError("")
	return nil
}

// Reconnect replaces the chat subscription, used after it failed for good
func (g *Gate) Reconnect() error {
	g.mu.Lock()
	if !g.loggedIn {
		g.mu.Unlock()
		return &models.ValidationError{Field: "session", Message: "Debes iniciar sesión para chatear."}
	}
	g.stopLocked()
	g.connected = true
	g.errMsg = ""
	g.subscribeLocked()
	g.mu.Unlock()

	g.notify()
	return nil
}

// ID identifies the gate for its whole life, across logins
func (g *Gate) ID() string {
	return g.id
}

// Credential returns the identity bound by the last login, nil when logged out
func (g *Gate) Credential() *identity.Credential {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cred
}

// State returns a snapshot of the session
func (g *Gate) State() models.SessionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

// Watch calls fn with the new state after every change until cancel is called
func (g *Gate) Watch(fn func(models.SessionState)) (cancel func()) {
	g.mu.Lock()
	id := g.nextWatch
	g.nextWatch++
	g.watchers[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.watchers, id)
		g.mu.Unlock()
	}
}

func (g *Gate) stateLocked() models.SessionState {
	msgs := make([]models.ChatMessage, len(g.messages))
	copy(msgs, g.messages)
	return models.SessionState{
		SessionID:   g.id,
		Username:    g.username,
		IsLoggedIn:  g.loggedIn,
		IsConnected: g.connected,
		Messages:    msgs,
		Error:       g.errMsg,
	}
}

// subscribeLocked starts a chat subscription tagged with a fresh generation so
// a late delivery from a cancelled one is dropped
func (g *Gate) subscribeLocked() {
	g.generation++
	gen := g.generation
	g.sub = g.chat.Subscribe(
		func(msgs []models.ChatMessage) {
			g.mu.Lock()
			if gen != g.generation {
				g.mu.Unlock()
				return
			}
			g.messages = msgs
			g.connected = true
			g.mu.Unlock()
			g.notify()
		},
		func(err error) {
			g.mu.Lock()
			if gen != g.generation {
				g.mu.Unlock()
				return
			}
			g.connected = false
			g.errMsg = chat.ConnectionMessage
			g.mu.Unlock()
			zap.S().Warnw("chat subscription lost", "session", g.id, "error", err)
			g.notify()
		},
	)
}

func (g *Gate) stopLocked() {
	g.generation++
	if g.sub != nil {
		g.sub.Cancel()
		g.sub = nil
	}
}

func (g *Gate) setError(msg string) {
	g.mu.Lock()
	g.errMsg = msg
	g.mu.Unlock()
	g.notify()
}

func (g *Gate) notify() {
	g.mu.Lock()
	state := g.stateLocked()
	fns := make([]func(models.SessionState), 0, len(g.watchers))
	for _, fn := range g.watchers {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
