package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/oauth2"

	"tasklane/internal/config"
	"tasklane/internal/service"
)

const testOAuthClient = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func staticIdentity(user *service.User, err error) identityFunc {
	return func(ctx context.Context, ts oauth2.TokenSource) (*service.User, error) {
		return user, err
	}
}

func signedInConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "oauth_client.json", testOAuthClient)
	writeFile(t, dir, "token.json", `{"access_token":"test","refresh_token":"test","token_type":"Bearer"}`)
	return &config.Config{Dir: dir}
}

func TestNewSession_NoToken(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	s, err := newSession(context.Background(), cfg, staticIdentity(nil, errors.New("must not be called")))
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	if s.User() != nil {
		t.Errorf("expected no user, got %+v", s.User())
	}
	if s.TokenSource() != nil {
		t.Error("expected no token source")
	}

	var got []*service.User
	stop := s.OnAuthChange(func(u *service.User) { got = append(got, u) })
	defer stop()
	if len(got) != 1 || got[0] != nil {
		t.Errorf("expected one immediate nil notification, got %v", got)
	}
}

func TestNewSession_WithToken(t *testing.T) {
	cfg := signedInConfig(t)
	want := &service.User{ID: "1234", Email: "alice@example.com"}

	s, err := newSession(context.Background(), cfg, staticIdentity(want, nil))
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	if u := s.User(); u == nil || *u != *want {
		t.Errorf("expected %+v, got %+v", want, u)
	}
	if s.TokenSource() == nil {
		t.Error("expected a token source")
	}
}

func TestNewSession_IdentityFailure(t *testing.T) {
	cfg := signedInConfig(t)
	_, err := newSession(context.Background(), cfg, staticIdentity(nil, errors.New("401 unauthorized")))
	if !service.IsAuth(err) {
		t.Errorf("expected AuthError, got %v", err)
	}
}

func TestNewSession_CorruptToken(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "oauth_client.json", testOAuthClient)
	writeFile(t, dir, "token.json", `not json`)

	_, err := newSession(context.Background(), &config.Config{Dir: dir}, staticIdentity(&service.User{ID: "1"}, nil))
	if !service.IsAuth(err) {
		t.Errorf("expected AuthError, got %v", err)
	}
}

func TestNewSession_MissingOAuthClient(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "token.json", `{"access_token":"test"}`)

	_, err := newSession(context.Background(), &config.Config{Dir: dir}, staticIdentity(&service.User{ID: "1"}, nil))
	if !errors.Is(err, ErrNoOAuthClient) {
		t.Errorf("expected ErrNoOAuthClient, got %v", err)
	}
}

func TestSession_SignOut(t *testing.T) {
	cfg := signedInConfig(t)
	oauthPath := cfg.OAuthClientPath()
	s, err := newSession(context.Background(), cfg, staticIdentity(&service.User{ID: "1"}, nil))
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}

	var got []*service.User
	stop := s.OnAuthChange(func(u *service.User) { got = append(got, u) })

	if err := s.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if len(got) != 2 || got[0] == nil || got[1] != nil {
		t.Errorf("expected signed-in then signed-out notifications, got %v", got)
	}
	if s.User() != nil {
		t.Error("expected no user after sign-out")
	}
	if cfg.HasToken() {
		t.Error("token.json should have been deleted")
	}
	if _, err := os.Stat(oauthPath); err != nil {
		t.Error("oauth_client.json should NOT have been deleted")
	}

	stop()
	if err := s.SignOut(context.Background()); err != nil {
		t.Errorf("second SignOut: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected no notification after unsubscribe, got %d", len(got))
	}
}

func TestTokenValid_NoRefreshToken(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "oauth_client.json", testOAuthClient)
	writeFile(t, dir, "token.json", `{"access_token":"test","token_type":"Bearer","expiry":"2020-01-01T00:00:00Z"}`)

	if TokenValid(context.Background(), &config.Config{Dir: dir}) {
		t.Error("token without refresh_token should not be valid")
	}
}

func TestTokenValid_NoToken(t *testing.T) {
	if TokenValid(context.Background(), &config.Config{Dir: t.TempDir()}) {
		t.Error("missing token should not be valid")
	}
}

func TestLogin_NoOAuthClient(t *testing.T) {
	var prompt nopWriter
	err := Login(context.Background(), &config.Config{Dir: t.TempDir()}, &prompt)
	if !errors.Is(err, ErrNoOAuthClient) {
		t.Errorf("expected ErrNoOAuthClient, got %v", err)
	}
	if prompt.n != 0 {
		t.Error("expected no prompt without an OAuth client")
	}
}

func TestLogin_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "oauth_client.json", testOAuthClient)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var prompt nopWriter
	if err := Login(ctx, &config.Config{Dir: dir}, &prompt); err == nil {
		t.Error("expected an error when cancelled")
	}
	if _, err := os.Stat(filepath.Join(dir, "token.json")); !os.IsNotExist(err) {
		t.Error("no token should be saved when cancelled")
	}
}

type nopWriter struct{ n int }

func (w *nopWriter) Write(p []byte) (int, error) {
	w.n += len(p)
	return len(p), nil
}

func TestSignedOut_RemovesRejectedToken(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "oauth_client.json", testOAuthClient)
	writeFile(t, dir, "token.json", `not json`)
	cfg := &config.Config{Dir: dir}

	s := SignedOut(cfg)
	if s.User() != nil {
		t.Fatal("expected no user")
	}
	if err := s.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if cfg.HasToken() {
		t.Error("token.json should have been deleted")
	}
}
