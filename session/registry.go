package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/radio-santana-api/identity"
	"github.com/linesmerrill/radio-santana-api/telemetry"
)

// Registry owns the live gates, keyed by the uid of their identity
type Registry struct {
	provider AnonymousSignIn
	chat     ChatChannel
	sink     telemetry.Sink

	mu    sync.RWMutex
	gates map[string]*Gate
}

// NewRegistry returns an empty registry whose gates share provider and chat
func NewRegistry(provider AnonymousSignIn, ch ChatChannel, sink telemetry.Sink) *Registry {
	return &Registry{
		provider: provider,
		chat:     ch,
		sink:     sink,
		gates:    make(map[string]*Gate),
	}
}

// Login opens a new session for name. The gate is only kept once the sign-in
// succeeded.
func (r *Registry) Login(ctx context.Context, name string) (*Gate, *identity.Credential, error) {
	g := NewGate(r.provider, r.chat, r.sink)
	cred, err := g.Login(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	r.mu.Lock()
	r.gates[cred.UID] = g
	r.mu.Unlock()

	zap.S().Infow("chat session opened", "uid", cred.UID, "session", g.ID(), "username", g.State().Username)
	return g, cred, nil
}

// Get returns the gate bound to uid
func (r *Registry) Get(uid string) (*Gate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gates[uid]
	return g, ok
}

// Logout ends and forgets the session bound to uid
func (r *Registry) Logout(uid string) bool {
	r.mu.Lock()
	g, ok := r.gates[uid]
	delete(r.gates, uid)
	r.mu.Unlock()

	if !ok {
		return false
	}
	g.Logout()
	zap.S().Infow("chat session closed", "uid", uid, "session", g.ID())
	return true
}

// Len reports the number of open sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.gates)
}

// Expire logs out every session whose credential is no longer valid at now
// and reports how many it closed. Credentials without an expiry never lapse.
func (r *Registry) Expire(now time.Time) int {
	r.mu.Lock()
	expired := make(map[string]*Gate)
	for uid, g := range r.gates {
		cred := g.Credential()
		if cred == nil || (!cred.ExpiresAt.IsZero() && !now.Before(cred.ExpiresAt)) {
			expired[uid] = g
			delete(r.gates, uid)
		}
	}
	r.mu.Unlock()

	for uid, g := range expired {
		g.Logout()
		zap.S().Infow("chat session expired", "uid", uid, "session", g.ID())
	}
	return len(expired)
}

// CloseAll logs every session out, used on shutdown
func (r *Registry) CloseAll() {
	r.mu.Lock()
	gates := r.gates
	r.gates = make(map[string]*Gate)
	r.mu.Unlock()

	for _, g := range gates {
		g.Logout()
	}
}
