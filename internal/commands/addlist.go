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
	Register(&AddListCmd{})
}

// AddListCmd implements the addlist command.
type AddListCmd struct{}

func (c *AddListCmd) Name() string       { return "addlist" }
func (c *AddListCmd) Aliases() []string  { return []string{"createlist"} }
func (c *AddListCmd) Synopsis() string   { return "Create a new list" }
func (c *AddListCmd) Usage() string      { return "tasklane addlist [common flags] <list-name>" }
func (c *AddListCmd) NeedsSession() bool { return true }

func (c *AddListCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *AddListCmd) Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	for _, lv := range app.Board() {
		if strings.EqualFold(strings.TrimSpace(lv.List.Name), name) {
			fmt.Fprintf(errOut, "error: list already exists: %s\n", name)
			return exitcode.UserError
		}
	}

	app.SetListName(name)
	if _, err := app.AddList(ctx); err != nil {
		return Report(errOut, err)
	}

	printOK(cfg, out)
	return exitcode.Success
}
