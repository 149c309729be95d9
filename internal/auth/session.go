package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"tasklane/internal/config"
	"tasklane/internal/service"
)

// IdentityTimeout bounds the userinfo lookup.
const IdentityTimeout = 10 * time.Second

// identityFunc resolves the account behind a token source.
type identityFunc func(ctx context.Context, ts oauth2.TokenSource) (*service.User, error)

// Session implements service.Authenticator on top of the stored token.
// A missing token means nobody is signed in.
type Session struct {
	cfg *config.Config
	ts  oauth2.TokenSource

	mu       sync.Mutex
	user     *service.User
	handlers map[int]func(*service.User)
	nextID   int
}

// NewSession loads the stored token and resolves the signed-in user.
// Without a token the session starts signed out.
func NewSession(ctx context.Context, cfg *config.Config) (*Session, error) {
	return newSession(ctx, cfg, lookupUser)
}

// SignedOut returns a session with nobody signed in. SignOut on it still
// removes a stored token, which clears credentials NewSession rejected.
func SignedOut(cfg *config.Config) *Session {
	return &Session{cfg: cfg, handlers: make(map[int]func(*service.User))}
}

func newSession(ctx context.Context, cfg *config.Config, identify identityFunc) (*Session, error) {
	s := SignedOut(cfg)
	if !cfg.HasToken() {
		return s, nil
	}

	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, &service.AuthError{Op: "load session", Err: err}
	}
	token, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, &service.AuthError{Op: "load session", Err: err}
	}
	ts := oauthConfig.TokenSource(ctx, token)

	ctx, cancel := context.WithTimeout(ctx, IdentityTimeout)
	defer cancel()
	user, err := identify(ctx, ts)
	if err != nil {
		return nil, &service.AuthError{Op: "load session", Err: fmt.Errorf("token expired or revoked (run: tasklane login): %w", err)}
	}
	s.ts = ts
	s.user = user
	return s, nil
}

func lookupUser(ctx context.Context, ts oauth2.TokenSource) (*service.User, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, err
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if info.Id == "" {
		return nil, errors.New("userinfo returned no account id")
	}
	return &service.User{ID: info.Id, Email: info.Email}, nil
}

// TokenSource returns the refreshing token source of the signed-in user, or
// nil when signed out.
func (s *Session) TokenSource() oauth2.TokenSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ts
}

// User returns the signed-in user, or nil.
func (s *Session) User() *service.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// OnAuthChange implements service.Authenticator. The handler is called once
// with the current user before OnAuthChange returns.
func (s *Session) OnAuthChange(handler func(*service.User)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = handler
	s.mu.Unlock()

	handler(s.User())
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
	}
}

// SignOut implements service.Authenticator. It removes the stored token and
// tells every handler that nobody is signed in.
func (s *Session) SignOut(ctx context.Context) error {
	if err := s.cfg.RemoveToken(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &service.AuthError{Op: "sign out", Err: fmt.Errorf("failed to remove token: %w", err)}
	}

	s.mu.Lock()
	s.user = nil
	s.ts = nil
	handlers := make([]func(*service.User), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(nil)
	}
	return nil
}
