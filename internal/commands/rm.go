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
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	list string
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return nil }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "tasklane rm <ref> | rm --list <list> <n>" }
func (c *RmCmd) NeedsSession() bool { return true }

func (c *RmCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.list, "list", "l", "", "list name; the task is then given by number")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int {
	sel, n, err := ParseTaskSelector(c.list, args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if n < len(args) {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[n])
		return exitcode.UserError
	}

	_, task, err := sel.Resolve(app.Board())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := app.DeleteTask(ctx, task.ID); err != nil {
		return Report(errOut, err)
	}

	printOK(cfg, out)
	return exitcode.Success
}
