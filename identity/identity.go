// Package identity issues and checks the signed credentials that gate the
// chat, the request form and the admin console.
package identity

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/linesmerrill/radio-santana-api/databases"
)

const (
	issuer = "radio-santana-api"

	// DefaultTTL is how long an issued credential stays valid
	DefaultTTL = 24 * time.Hour
)

// Credential is a signed-in principal
type Credential struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email,omitempty"`
	Anonymous bool      `json:"anonymous"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Provider is what the session gates need from an identity service
type Provider interface {
	SignInAnonymously(ctx context.Context) (*Credential, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Credential, error)
	SignOut(ctx context.Context, cred *Credential) error
	OnAuthStateChanged(fn func(uid string, cred *Credential)) (cancel func())
}

type claims struct {
	Email     string `json:"email,omitempty"`
	Anonymous bool   `json:"anon"`
	jwt.RegisteredClaims
}

// Options configures a Service
type Options struct {
	Secret           []byte
	TTL              time.Duration
	AnonymousEnabled bool
	// AnonymousRate is the number of anonymous sign-ins allowed per second
	AnonymousRate float64
	// AnonymousBurst defaults to ten times the rate, at least one
	AnonymousBurst int
}

// Service issues HS256 credentials for anonymous visitors and for admins
// stored in the admins collection
type Service struct {
	secret           []byte
	ttl              time.Duration
	anonymousEnabled bool
	anonLimiter      *rate.Limiter
	passwordLimiter  *rate.Limiter
	admins           databases.AdminDatabase
	now              func() time.Time

	mu        sync.Mutex
	listeners map[int]func(uid string, cred *Credential)
	nextID    int
}

var _ Provider = (*Service)(nil)

// NewService returns a Service backed by admins
func NewService(admins databases.AdminDatabase, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.AnonymousRate <= 0 {
		opts.AnonymousRate = 1
	}
	if opts.AnonymousBurst <= 0 {
		opts.AnonymousBurst = int(opts.AnonymousRate * 10)
		if opts.AnonymousBurst < 1 {
			opts.AnonymousBurst = 1
		}
	}
	return &Service{
		secret:           opts.Secret,
		ttl:              opts.TTL,
		anonymousEnabled: opts.AnonymousEnabled,
		anonLimiter:      rate.NewLimiter(rate.Limit(opts.AnonymousRate), opts.AnonymousBurst),
		passwordLimiter:  rate.NewLimiter(rate.Every(time.Second), 5),
		admins:           admins,
		now:              time.Now,
		listeners:        make(map[int]func(string, *Credential)),
	}
}

// SignInAnonymously issues a credential for a new ephemeral identity
func (s *Service) SignInAnonymously(ctx context.Context) (*Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Code: CodeNetwork, Err: err}
	}
	if !s.anonymousEnabled {
		return nil, &Error{Code: CodeOperationNotAllowed}
	}
	if !s.anonLimiter.Allow() {
		return nil, &Error{Code: CodeTooManyRequests}
	}

	cred, err := s.issue(uuid.New().String(), "", true)
	if err != nil {
		return nil, err
	}
	s.emit(cred.UID, cred)
	return cred, nil
}

// SignInWithPassword checks email and password against the admins collection
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*Credential, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &Error{Code: CodeInvalidEmail, Err: err}
	}
	if !s.passwordLimiter.Allow() {
		return nil, &Error{Code: CodeTooManyRequests}
	}

	admin, err := s.admins.FindOne(ctx, bson.M{"email": email})
	if err != nil {
		switch databases.Classify(err) {
		case databases.CodeNotFound:
			return nil, &Error{Code: CodeUserNotFound, Err: err}
		case databases.CodeUnavailable, databases.CodeDeadlineExceeded, databases.CodeCancelled:
			return nil, &Error{Code: CodeNetwork, Err: err}
		}
		zap.S().Errorw("failed to look up admin", "email", email, "error", err)
		return nil, &Error{Code: CodeInternal, Err: err}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, &Error{Code: CodeWrongPassword}
	}

	cred, err := s.issue(admin.ID.Hex(), admin.Email, false)
	if err != nil {
		return nil, err
	}
	s.emit(cred.UID, cred)
	return cred, nil
}

// SignOut tells the listeners the identity is gone. Issued tokens are not
// revoked here, bearer caches handle that.
func (s *Service) SignOut(_ context.Context, cred *Credential) error {
	if cred == nil {
		return nil
	}
	s.emit(cred.UID, nil)
	return nil
}

// OnAuthStateChanged registers fn for every sign-in and sign-out. fn gets a nil
// credential on sign-out.
func (s *Service) OnAuthStateChanged(fn func(uid string, cred *Credential)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Verify parses and checks a token issued by this service
func (s *Service) Verify(token string) (*Credential, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(token, c, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, &Error{Code: CodeInvalidCredential, Err: err}
	}

	cred := &Credential{
		UID:       c.Subject,
		Email:     c.Email,
		Anonymous: c.Anonymous,
		Token:     token,
	}
	if c.ExpiresAt != nil {
		cred.ExpiresAt = c.ExpiresAt.Time
	}
	return cred, nil
}

func (s *Service) issue(uid, email string, anonymous bool) (*Credential, error) {
	if len(s.secret) == 0 {
		return nil, &Error{Code: CodeInternal, Err: errors.New("no signing secret configured")}
	}
	now := s.now()
	expires := now.Add(s.ttl)
	c := claims{
		Email:     email,
		Anonymous: anonymous,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   uid,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return nil, &Error{Code: CodeInternal, Err: err}
	}
	return &Credential{
		UID:       uid,
		Email:     email,
		Anonymous: anonymous,
		Token:     token,
		ExpiresAt: expires,
	}, nil
}

func (s *Service) emit(uid string, cred *Credential) {
	s.mu.Lock()
	fns := make([]func(string, *Credential), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(uid, cred)
	}
}
