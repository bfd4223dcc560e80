package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/linesmerrill/radio-santana-api/identity"
)

// ErrInsufficientPrivileges is returned when a valid sign-in is not on the
// admin allow-list
var ErrInsufficientPrivileges = errors.New("session: insufficient privileges")

// InsufficientPrivilegesMessage is shown for ErrInsufficientPrivileges
const InsufficientPrivilegesMessage = "No tienes permisos de administrador."

// PasswordSignIn is the part of the identity service the admin console uses
type PasswordSignIn interface {
	SignInWithPassword(ctx context.Context, email, password string) (*identity.Credential, error)
	SignOut(ctx context.Context, cred *identity.Credential) error
}

// AdminGate lets only allow-listed identities into the admin console
type AdminGate struct {
	provider PasswordSignIn
	allowed  func(email string) bool
}

// NewAdminGate returns a gate that admits the emails allowed accepts
func NewAdminGate(provider PasswordSignIn, allowed func(email string) bool) *AdminGate {
	return &AdminGate{provider: provider, allowed: allowed}
}

// SignIn authenticates email and password, then signs the identity straight
// back out if it is not on the allow-list
func (a *AdminGate) SignIn(ctx context.Context, email, password string) (*identity.Credential, error) {
	cred, err := a.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !a.IsAllowed(cred.Email) {
		if err := a.provider.SignOut(ctx, cred); err != nil {
			zap.S().Errorw("failed to sign out non-admin identity", "uid", cred.UID, "error", err)
		}
		zap.S().Warnw("admin sign-in refused", "email", cred.Email)
		return nil, ErrInsufficientPrivileges
	}
	return cred, nil
}

// IsAllowed reports whether email is on the allow-list
func (a *AdminGate) IsAllowed(email string) bool {
	return email != "" && a.allowed != nil && a.allowed(email)
}

// ErrorMessage picks the text the admin login form shows for err
func ErrorMessage(err error) string {
	if errors.Is(err, ErrInsufficientPrivileges) {
		return InsufficientPrivilegesMessage
	}
	return identity.Message(err)
}
