package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"

	"github.com/linesmerrill/radio-santana-api/config"
	"github.com/linesmerrill/radio-santana-api/identity"
	"github.com/linesmerrill/radio-santana-api/session"
)

// Groups carried by authenticated principals
const (
	GroupAdmin    = "admin"
	GroupListener = "listener"
)

const (
	// tokenCacheTTL bounds how long a verified token skips re-verification
	tokenCacheTTL = time.Hour
)

var errTokenRevoked = errors.New("token has been revoked")

// TokenVerifier checks credentials issued by the identity service
type TokenVerifier interface {
	Verify(token string) (*identity.Credential, error)
}

// AdminSignIn is the admin console gate
type AdminSignIn interface {
	SignIn(ctx context.Context, email, password string) (*identity.Credential, error)
	IsAllowed(email string) bool
}

// Guardian holds the go-guardian strategies protecting the routes
type Guardian struct {
	Verifier TokenVerifier
	Admins   AdminSignIn

	authenticator auth.Authenticator
	revoked       store.Cache
}

// SetupGoGuardian enables the basic strategy for admins and the cached bearer
// strategy for every issued credential. The caches are swept until ctx ends.
func (g *Guardian) SetupGoGuardian(ctx context.Context) {
	g.authenticator = auth.New()
	cache := store.NewFIFO(ctx, tokenCacheTTL)
	g.revoked = store.NewFIFO(ctx, identity.DefaultTTL)

	basicStrategy := basic.New(g.ValidateAdmin, cache)
	tokenStrategy := bearer.New(g.VerifyToken, cache)

	g.authenticator.EnableStrategy(basic.StrategyKey, basicStrategy)
	g.authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

// Middleware authenticates the request and stores the principal on its
// context. Browsers cannot set headers on a WebSocket handshake, so a token
// query parameter is accepted in place of the Authorization header.
func (g *Guardian) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") == "" {
			if token := r.URL.Query().Get("token"); token != "" {
				r.Header.Set("Authorization", "Bearer "+token)
			}
		}
		user, err := g.authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL.Path,
				"error", err)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugw("user authenticated", "user", user.UserName(), "groups", user.Groups())
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// AdminOnly lets through principals in the admin group, it must run after
// Middleware
func (g *Guardian) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || !hasGroup(user, GroupAdmin) {
			config.ErrorStatus(session.InsufficientPrivilegesMessage, http.StatusForbidden, w, session.ErrInsufficientPrivileges)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateToken exchanges admin basic credentials for a bearer token
func (g *Guardian) CreateToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	email, password, ok := r.BasicAuth()
	if !ok {
		http.Error(w, "basic auth failed", http.StatusUnauthorized)
		return
	}

	cred, err := g.Admins.SignIn(r.Context(), email, password)
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, session.ErrInsufficientPrivileges) {
			status = http.StatusForbidden
		}
		config.ErrorStatus(session.ErrorMessage(err), status, w, err)
		return
	}

	tokenStrategy := g.authenticator.Strategy(bearer.CachedStrategyKey)
	if err := auth.Append(tokenStrategy, cred.Token, g.info(cred), r); err != nil {
		config.ErrorStatus("failed to cache token", http.StatusInternalServerError, w, err)
		return
	}

	responseBody, err := json.Marshal(map[string]interface{}{
		"token":     cred.Token,
		"_id":       cred.UID,
		"expiresAt": cred.ExpiresAt,
	})
	if err != nil {
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Write(responseBody)
}

// RevokeToken revokes the bearer token of the request
func (g *Guardian) RevokeToken(w http.ResponseWriter, r *http.Request) {
	token, ok := BearerToken(r)
	if !ok {
		http.Error(w, "missing bearer token", http.StatusBadRequest)
		return
	}
	if err := g.Revoke(r, token); err != nil {
		config.ErrorStatus("failed to revoke token", http.StatusInternalServerError, w, err)
		return
	}
	w.Write([]byte(`{"revoked": true}`))
}

// Revoke drops token from the bearer cache and refuses it until it expires
func (g *Guardian) Revoke(r *http.Request, token string) error {
	if err := g.revoked.Store(token, true, r); err != nil {
		return err
	}
	tokenStrategy := g.authenticator.Strategy(bearer.CachedStrategyKey)
	return auth.Revoke(tokenStrategy, token, r)
}

// ValidateAdmin backs the basic strategy with the admin gate
func (g *Guardian) ValidateAdmin(ctx context.Context, r *http.Request, email, password string) (auth.Info, error) {
	cred, err := g.Admins.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return g.info(cred), nil
}

// VerifyToken backs the bearer strategy on cache misses
func (g *Guardian) VerifyToken(ctx context.Context, r *http.Request, token string) (auth.Info, error) {
	if _, revoked, _ := g.revoked.Load(token, r); revoked {
		return nil, errTokenRevoked
	}
	cred, err := g.Verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	return g.info(cred), nil
}

func (g *Guardian) info(cred *identity.Credential) auth.Info {
	if !cred.Anonymous && g.Admins != nil && g.Admins.IsAllowed(cred.Email) {
		return auth.NewDefaultUser(cred.Email, cred.UID, []string{GroupAdmin}, nil)
	}
	return auth.NewDefaultUser(cred.UID, cred.UID, []string{GroupListener}, nil)
}

// BearerToken extracts the token of an Authorization: Bearer header
func BearerToken(r *http.Request) (string, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" || token == r.Header.Get("Authorization") {
		return "", false
	}
	return token, true
}

func hasGroup(user auth.Info, group string) bool {
	for _, g := range user.Groups() {
		if g == group {
			return true
		}
	}
	return false
}
