package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"tasklane/internal/config"
	"tasklane/internal/exitcode"
	"tasklane/internal/state"
)

func init() {
	Register(&RmListCmd{})
}

// RmListCmd implements the rmlist command. A list that still has tasks is
// only deleted with --force; its tasks go with it.
type RmListCmd struct {
	force bool
}

func (c *RmListCmd) Name() string       { return "rmlist" }
func (c *RmListCmd) Aliases() []string  { return nil }
func (c *RmListCmd) Synopsis() string   { return "Delete a list and its tasks" }
func (c *RmListCmd) Usage() string      { return "tasklane rmlist [--force] <list>" }
func (c *RmListCmd) NeedsSession() bool { return true }

func (c *RmListCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.force, "force", "f", false, "delete the list even if it has tasks")
}

func (c *RmListCmd) Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	lv, err := ResolveList(app.Board(), name)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !c.force && len(lv.Tasks()) > 0 {
		fmt.Fprintln(errOut, "error: list not empty (use --force)")
		return exitcode.UserError
	}

	if err := app.DeleteList(ctx, lv.List.ID); err != nil {
		return Report(errOut, err)
	}

	printOK(cfg, out)
	return exitcode.Success
}
