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
	"tasklane/internal/state"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct{}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Sign in with a Google account" }
func (c *LoginCmd) Usage() string      { return "tasklane login [common flags]" }
func (c *LoginCmd) NeedsSession() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		printOAuthSetup(cfg, errOut)
		return exitcode.AuthError
	}

	if cfg.HasToken() && auth.TokenValid(ctx, cfg) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	if err := auth.Login(ctx, cfg, errOut); err != nil {
		if errors.Is(err, auth.ErrNoOAuthClient) {
			printOAuthSetup(cfg, errOut)
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.AuthError
	}

	printOK(cfg, out)
	return exitcode.Success
}

func printOAuthSetup(cfg *config.Config, errOut io.Writer) {
	fmt.Fprintf(errOut, "error: oauth_client.json not found in %s\n\n", cfg.Dir)
	fmt.Fprintln(errOut, "To sign in, you need OAuth credentials for the Firebase project:")
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "1. Go to https://console.cloud.google.com/apis/credentials")
	fmt.Fprintln(errOut, "2. Select the project that holds the Firestore database")
	fmt.Fprintln(errOut, "3. Create OAuth 2.0 credentials:")
	fmt.Fprintln(errOut, "   - Click 'Create Credentials' > 'OAuth client ID'")
	fmt.Fprintln(errOut, "   - Choose 'Desktop app' as application type")
	fmt.Fprintln(errOut, "   - Download the JSON file")
	fmt.Fprintln(errOut, "4. Save it as:")
	fmt.Fprintf(errOut, "   %s/oauth_client.json\n", cfg.Dir)
	fmt.Fprintf(errOut, "5. Set project_id in %s/%s\n", cfg.Dir, config.SettingsFile)
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "Then run 'tasklane login' again.")
}
