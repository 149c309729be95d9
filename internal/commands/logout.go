package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"tasklane/internal/config"
	"tasklane/internal/exitcode"
	"tasklane/internal/state"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command. It only needs the auth session,
// so it works offline and with a token the provider no longer accepts.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string        { return "logout" }
func (c *LogoutCmd) Aliases() []string   { return nil }
func (c *LogoutCmd) Synopsis() string    { return "Sign out and remove stored credentials" }
func (c *LogoutCmd) Usage() string       { return "tasklane logout [common flags]" }
func (c *LogoutCmd) NeedsSession() bool  { return true }
func (c *LogoutCmd) RunsSignedOut() bool { return true }

func (c *LogoutCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int {
	user, ok := app.User()
	if !ok && !cfg.HasToken() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if err := app.Logout(ctx); err != nil {
		return Report(errOut, err)
	}

	if !cfg.Quiet {
		if ok {
			fmt.Fprintf(out, "signed out %s\n", displayName(user.Email, user.ID))
		} else {
			fmt.Fprintln(out, "removed stored credentials")
		}
		fmt.Fprintln(out, "run 'tasklane login' to sign in again")
	}
	return exitcode.Success
}

func displayName(email, id string) string {
	if email != "" {
		return email
	}
	return id
}
