package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"tasklane/internal/config"
	"tasklane/internal/exitcode"
	"tasklane/internal/model"
	"tasklane/internal/state"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	listName    string
	description string
	dueDate     string
	priority    string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "tasklane add [--list <list>] [--desc <text>] [--due <YYYY-MM-DD>] [--priority <low|medium|high>] <title...>"
}
func (c *AddCmd) NeedsSession() bool { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.listName, "list", "l", "", "list name or letter")
	fs.StringVarP(&c.description, "desc", "d", "", "task description")
	fs.StringVar(&c.dueDate, "due", "", "due date (YYYY-MM-DD)")
	fs.StringVarP(&c.priority, "priority", "p", "", "low, medium or high (default low)")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	board := app.Board()
	var list state.ListView
	switch {
	case c.listName != "":
		lv, err := ResolveList(board, c.listName)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		list = lv
	case len(board) == 1:
		list = board[0]
	case len(board) == 0:
		fmt.Fprintln(errOut, "error: no lists (run: tasklane addlist <name>)")
		return exitcode.UserError
	default:
		fmt.Fprintln(errOut, "error: list required (use --list)")
		return exitcode.UserError
	}

	id := list.List.ID
	app.SetDraftField(id, model.DraftTitle, title)
	app.SetDraftField(id, model.DraftDescription, c.description)
	app.SetDraftField(id, model.DraftDueDate, c.dueDate)
	app.SetDraftField(id, model.DraftPriority, c.priority)

	if _, err := app.AddTask(ctx, id); err != nil {
		return Report(errOut, err)
	}

	printOK(cfg, out)
	return exitcode.Success
}
