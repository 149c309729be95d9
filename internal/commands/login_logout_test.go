package commands_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tasklane/internal/auth"
	"tasklane/internal/commands"
	"tasklane/internal/config"
	"tasklane/internal/exitcode"
	"tasklane/internal/state"
	"tasklane/internal/testutil"
)

// TestLoginCommand_NoOAuthClient verifies login fails without oauth_client.json
func TestLoginCommand_NoOAuthClient(t *testing.T) {
	cmd := &commands.LoginCmd{}

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{
		Dir:   t.TempDir(),
		Quiet: false,
	}

	code := cmd.Run(context.Background(), cfg, nil, nil, &outBuf, &errBuf)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if outBuf.String() != "" {
		t.Errorf("expected no stdout, got %q", outBuf.String())
	}
	if !strings.Contains(errBuf.String(), "oauth_client.json not found") {
		t.Errorf("expected error message about missing oauth_client.json, got %q", errBuf.String())
	}
}

// TestLoginCommand_NoRefreshToken verifies login proceeds when token has no refresh token
func TestLoginCommand_NoRefreshToken(t *testing.T) {
	cmd := &commands.LoginCmd{}

	tmpDir := t.TempDir()

	oauthClient := `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`
	if err := os.WriteFile(filepath.Join(tmpDir, "oauth_client.json"), []byte(oauthClient), 0600); err != nil {
		t.Fatalf("failed to write oauth_client.json: %v", err)
	}
	tokenWithoutRefresh := `{"access_token":"test","token_type":"Bearer","expiry":"2020-01-01T00:00:00Z"}`
	if err := os.WriteFile(filepath.Join(tmpDir, "token.json"), []byte(tokenWithoutRefresh), 0600); err != nil {
		t.Fatalf("failed to write token.json: %v", err)
	}

	var outBuf, errBuf bytes.Buffer
	cfg := &config.Config{
		Dir:   tmpDir,
		Quiet: false,
	}

	// Cancelled up front so the flow does not wait for a browser.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := cmd.Run(ctx, cfg, nil, nil, &outBuf, &errBuf)

	if outBuf.String() == "already logged in\n" {
		t.Error("should not say 'already logged in' with token missing refresh_token")
	}
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
}

// TestLogoutCommand_SignsOut verifies logout ends the session through the app
func TestLogoutCommand_SignsOut(t *testing.T) {
	app, auth := newApp(t, sampleStore())

	stdout, stderr, code := runCommand(t, &commands.LogoutCmd{}, app, nil, false)

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "signed out alice@example.com\nrun 'tasklane login' to sign in again\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if auth.SignOuts() != 1 {
		t.Errorf("expected one sign-out, got %d", auth.SignOuts())
	}
	if _, ok := app.User(); ok {
		t.Error("expected no user after logout")
	}
	if len(app.Lists()) != 0 {
		t.Error("expected the mirror to be cleared")
	}
}

// TestLogoutCommand_Quiet verifies logout prints nothing when quiet
func TestLogoutCommand_Quiet(t *testing.T) {
	app, _ := newApp(t, sampleStore())

	stdout, stderr, code := runCommand(t, &commands.LogoutCmd{}, app, nil, true)

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
}

// TestLogoutCommand_NotLoggedIn verifies logout handles not being logged in
func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	auth := testutil.NewFakeAuth(nil)
	app := state.New(testutil.NewFakeStore(), auth, nil)
	app.Start(context.Background())
	defer app.Close()

	stdout, stderr, code := runCommand(t, &commands.LogoutCmd{}, app, nil, false)

	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "not logged in\n" {
		t.Errorf("expected 'not logged in\\n', got %q", stdout)
	}
	if auth.SignOuts() != 0 {
		t.Error("expected no sign-out call")
	}
}

// TestLogoutCommand_RejectedToken verifies logout clears a token that no
// longer yields a session, without any store
func TestLogoutCommand_RejectedToken(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	tokenPath := filepath.Join(cfg.Dir, config.TokenFile)
	if err := os.WriteFile(tokenPath, []byte(`{"access_token":"revoked"}`), 0600); err != nil {
		t.Fatalf("failed to write token: %v", err)
	}
	app := state.New(nil, auth.SignedOut(cfg), nil)
	app.Start(context.Background())
	defer app.Close()

	var out, errOut bytes.Buffer
	code := (&commands.LogoutCmd{}).Run(context.Background(), cfg, app, nil, &out, &errOut)

	expectCode(t, code, exitcode.Success, errOut.String())
	expected := "removed stored credentials\nrun 'tasklane login' to sign in again\n"
	if out.String() != expected {
		t.Errorf("expected %q, got %q", expected, out.String())
	}
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Error("token.json should have been deleted")
	}
}

// TestLogoutCommand_Failure verifies a failed sign-out is an auth error and
// keeps the session
func TestLogoutCommand_Failure(t *testing.T) {
	app, auth := newApp(t, sampleStore())
	auth.SignOutErr = errors.New("permission denied removing token.json")

	stdout, stderr, code := runCommand(t, &commands.LogoutCmd{}, app, nil, false)

	expectCode(t, code, exitcode.AuthError, stderr)
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: auth error: sign out: permission denied removing token.json\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if _, ok := app.User(); !ok {
		t.Error("expected the session to survive")
	}
}

func TestLogoutCommand_RunsSignedOut(t *testing.T) {
	if !commands.AllowsSignedOut(&commands.LogoutCmd{}) {
		t.Error("logout should run without a user")
	}
	if commands.AllowsSignedOut(&commands.BoardCmd{}) {
		t.Error("board should require a user")
	}
}
