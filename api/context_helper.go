package api

import (
	"context"
	"time"

	"github.com/shaj13/go-guardian/auth"
)

// QueryTimeout is the default timeout for database queries
const QueryTimeout = 10 * time.Second

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}

type userKey struct{}

// WithUser stores the authenticated principal on ctx
func WithUser(ctx context.Context, user auth.Info) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the principal the auth middleware stored
func UserFromContext(ctx context.Context) (auth.Info, bool) {
	user, ok := ctx.Value(userKey{}).(auth.Info)
	return user, ok && user != nil
}
