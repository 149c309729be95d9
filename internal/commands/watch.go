package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"tasklane/internal/config"
	"tasklane/internal/exitcode"
	"tasklane/internal/output"
	"tasklane/internal/state"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\x1b[H\x1b[2J"

func init() {
	Register(&WatchCmd{})
}

// WatchCmd implements the watch command. It redraws the board on every
// change until interrupted, signed out, or the live feed fails.
type WatchCmd struct {
	long bool
}

func (c *WatchCmd) Name() string       { return "watch" }
func (c *WatchCmd) Aliases() []string  { return nil }
func (c *WatchCmd) Synopsis() string   { return "Show the board and keep it live" }
func (c *WatchCmd) Usage() string      { return "tasklane watch [--long]" }
func (c *WatchCmd) NeedsSession() bool { return true }

func (c *WatchCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.long, "long", "l", false, "show task descriptions")
}

func (c *WatchCmd) Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int {
	tty := isTerminal(out)
	opts := output.Options{Descriptions: c.long}

	// Drop the notification left over from the initial sync.
	select {
	case <-app.Changes():
	default:
	}

	frames := 0
	draw := func() {
		switch {
		case tty:
			fmt.Fprint(out, clearScreen)
		case frames > 0:
			fmt.Fprintln(out)
		}
		frames++
		board := app.Board()
		if len(board) == 0 {
			fmt.Fprintln(out, "no lists (run: tasklane addlist <name>)")
			return
		}
		output.Board(out, board, opts)
	}

	draw()
	for {
		if err := app.FeedErr(); err != nil {
			fmt.Fprintln(errOut, "error: live updates stopped")
			return Report(errOut, err)
		}
		select {
		case <-ctx.Done():
			return exitcode.Success
		case <-app.Changes():
			if _, ok := app.User(); !ok {
				fmt.Fprintln(errOut, "error: signed out")
				return exitcode.AuthError
			}
			if app.FeedErr() == nil {
				draw()
			}
		}
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
