package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"tasklane/internal/config"
	"tasklane/internal/exitcode"
	"tasklane/internal/output"
	"tasklane/internal/state"
)

func init() {
	Register(&BoardCmd{})
}

// BoardCmd implements the board command.
// Handles both `tasklane` (no args) and `tasklane board <list>`.
type BoardCmd struct {
	long bool
}

func (c *BoardCmd) Name() string       { return "board" }
func (c *BoardCmd) Aliases() []string  { return []string{"ls"} }
func (c *BoardCmd) Synopsis() string   { return "Show lists and their priority lanes" }
func (c *BoardCmd) Usage() string      { return "tasklane board [--long] [<list>]" }
func (c *BoardCmd) NeedsSession() bool { return true }

func (c *BoardCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.long, "long", "l", false, "show task descriptions")
}

func (c *BoardCmd) Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int {
	board := app.Board()
	opts := output.Options{Descriptions: c.long}

	if len(args) == 0 {
		if len(board) == 0 {
			if !cfg.Quiet {
				fmt.Fprintln(out, "no lists (run: tasklane addlist <name>)")
			}
			return exitcode.Success
		}
		output.Board(out, board, opts)
		return exitcode.Success
	}

	lv, err := ResolveList(board, strings.Join(args, " "))
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	output.List(out, boardIndex(board, lv.List.ID), lv, opts)
	return exitcode.Success
}

// boardIndex returns the position of a list on the board, which decides its
// letter.
func boardIndex(board []state.ListView, listID string) int {
	for i, lv := range board {
		if lv.List.ID == listID {
			return i
		}
	}
	return -1
}
