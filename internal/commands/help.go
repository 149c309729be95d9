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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "tasklane help [<command>]" }
func (c *HelpCmd) NeedsSession() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		cmd, ok := DefaultRegistry.Find(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(out, "%s\n\nUsage:\n  %s\n", cmd.Synopsis(), cmd.Usage())
		return exitcode.Success
	}
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  tasklane                                         Show the board
  tasklane board [--long] [<list>]                 Show lists and their lanes (alias: ls)
  tasklane watch [--long]                          Show the board and keep it live
  tasklane addlist <list-name>                     Create a list
  tasklane rmlist [--force] <list>                 Delete a list and its tasks
  tasklane add [--list <list>] [--desc <text>] [--due <YYYY-MM-DD>]
               [--priority <low|medium|high>] <title...>
  tasklane rm <ref>                                Delete a task
  tasklane move [--to <list>] <ref> <low|medium|high>
                                                   Move a task to another lane (alias: mv)
  tasklane login                                   Sign in with a Google account
  tasklane logout                                  Sign out
  tasklane help [<command>]
  tasklane version

A <list> is a list name or its letter on the board. A <ref> is the list
letter followed by the task number shown on the board, e.g. a3. Lists past
the 26th have no letter; their tasks are shown as #n and addressed with
--list <list> <n> on rm and move.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
