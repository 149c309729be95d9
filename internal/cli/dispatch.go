// Package cli parses the command line and runs commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"tasklane/internal/commands"
	"tasklane/internal/config"
	"tasklane/internal/exitcode"
	"tasklane/internal/logging"
	"tasklane/internal/service"
	"tasklane/internal/state"
)

// DefaultCommand runs when no command is given.
const DefaultCommand = "board"

// AppFactory creates the app state for a session command.
// Used to inject the auth provider and store during dispatch. Without
// withStore the app follows the auth session only, and a stored session that
// fails to load should leave it signed out rather than fail. The returned
// cleanup releases backend resources once the command has finished.
type AppFactory func(ctx context.Context, cfg *config.Config, logger *log.Logger, withStore bool) (app *state.App, cleanup func(), err error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  AppFactory
}

// NewDispatcher creates a new dispatcher with the given registry and app factory.
func NewDispatcher(registry *commands.Registry, factory AppFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return d.dispatch(ctx, DefaultCommand, nil, out, errOut)
	}

	// Flags require a command.
	cmdName := args[0]
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "override config directory")
	fs.BoolVarP(&quiet, "quiet", "q", false, "suppress informational output")
	fs.BoolVar(&debug, "debug", false, "print debug logs to stderr")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(out, "Usage:\n  %s\n\nFlags:\n%s", cmd.Usage(), fs.FlagUsages())
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	if debug {
		cfg.Debug = true
	}
	logger := logging.New(errOut, cfg.Debug)

	if !cmd.NeedsSession() {
		return cmd.Run(ctx, cfg, nil, fs.Args(), out, errOut)
	}

	if d.factory == nil {
		fmt.Fprintln(errOut, "error: backend error: no backend configured")
		return exitcode.BackendError
	}
	app, cleanup, err := d.factory(ctx, cfg, logger, !commands.AllowsSignedOut(cmd))
	if err != nil {
		return commands.Report(errOut, err)
	}
	defer cleanup()

	app.Start(ctx)
	defer app.Close()

	if code, ok := d.sync(ctx, cfg, cmd, app, errOut); !ok {
		return code
	}
	logger.Debug("running command", "command", cmd.Name())
	return cmd.Run(ctx, cfg, app, fs.Args(), out, errOut)
}

// sync waits for the first snapshots of the signed-in user. Commands that
// run signed out never touch the store and skip the wait.
func (d *Dispatcher) sync(ctx context.Context, cfg *config.Config, cmd commands.Command, app *state.App, errOut io.Writer) (int, bool) {
	if commands.AllowsSignedOut(cmd) {
		return exitcode.Success, true
	}
	if _, ok := app.User(); !ok {
		return commands.Report(errOut, service.ErrNotAuthenticated), false
	}

	syncCtx, cancel := context.WithTimeout(ctx, cfg.SyncTimeout)
	defer cancel()
	if err := app.WaitSynced(syncCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			fmt.Fprintf(errOut, "error: backend error: no data from the store after %s\n", cfg.SyncTimeout)
			return exitcode.BackendError, false
		}
		return commands.Report(errOut, err), false
	}
	return exitcode.Success, true
}
