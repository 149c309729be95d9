// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"tasklane/internal/auth"
	"tasklane/internal/config"
	"tasklane/internal/exitcode"
	"tasklane/internal/service"
	"tasklane/internal/state"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsSession returns true if the command works on the app state.
	// Commands like help, version and login return false.
	NeedsSession() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths).
	// app is nil if NeedsSession() returns false; otherwise it is started and,
	// when a user is signed in, synced.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int
}

// SignedOutRunner is implemented by session commands that also run when
// nobody is signed in. Every other session command requires a user.
// Such commands only use the auth session: they get an app without a store
// and do not wait for the first snapshots.
type SignedOutRunner interface {
	RunsSignedOut() bool
}

// AllowsSignedOut reports whether cmd may run without a signed-in user.
func AllowsSignedOut(cmd Command) bool {
	r, ok := cmd.(SignedOutRunner)
	return ok && r.RunsSignedOut()
}

// Report prints err and returns the matching exit code.
func Report(errOut io.Writer, err error) int {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, service.ErrNotAuthenticated):
		fmt.Fprintln(errOut, "error: not logged in (run: tasklane login)")
		return exitcode.AuthError
	case errors.Is(err, auth.ErrNoOAuthClient):
		fmt.Fprintf(errOut, "error: %v (run: tasklane login)\n", err)
		return exitcode.AuthError
	case service.IsAuth(err):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	case errors.Is(err, service.ErrPermissionDenied):
		fmt.Fprintf(errOut, "error: backend error: %v (run: tasklane login)\n", err)
		return exitcode.BackendError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// printOK prints the success marker unless quiet.
func printOK(cfg *config.Config, out io.Writer) {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
}
