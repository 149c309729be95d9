package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"tasklane/internal/config"
	"tasklane/internal/exitcode"
	"tasklane/internal/model"
	"tasklane/internal/state"
)

func init() {
	Register(&MoveCmd{})
}

// MoveCmd implements the move command: the command-line form of dragging a
// task card onto another lane.
type MoveCmd struct {
	list   string
	toList string
}

func (c *MoveCmd) Name() string      { return "move" }
func (c *MoveCmd) Aliases() []string { return []string{"mv"} }
func (c *MoveCmd) Synopsis() string  { return "Move a task to another priority or list" }
func (c *MoveCmd) Usage() string {
	return "tasklane move [--to <list>] <ref> <low|medium|high>\n  tasklane move --list <list> [--to <list>] <n> <low|medium|high>"
}
func (c *MoveCmd) NeedsSession() bool { return true }

func (c *MoveCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.list, "list", "l", "", "list name; the task is then given by number")
	fs.StringVarP(&c.toList, "to", "t", "", "destination list name or letter")
}

func (c *MoveCmd) Run(ctx context.Context, cfg *config.Config, app *state.App, args []string, out, errOut io.Writer) int {
	sel, n, err := ParseTaskSelector(c.list, args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	rest := args[n:]
	if len(rest) == 0 {
		fmt.Fprintln(errOut, "error: priority required (low, medium, high)")
		return exitcode.UserError
	}
	if len(rest) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", rest[1])
		return exitcode.UserError
	}
	priority, err := model.ParsePriority(rest[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: invalid priority: %s\n", rest[0])
		return exitcode.UserError
	}

	board := app.Board()
	src, task, err := sel.Resolve(board)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	dst := src
	if c.toList != "" {
		if dst, err = ResolveList(board, c.toList); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}

	drag, ok := dragFor(src, dst, task.ID, priority)
	if !ok {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no change")
		}
		return exitcode.Success
	}
	if err := app.OnDragEnd(ctx, drag); err != nil {
		return Report(errOut, err)
	}

	printOK(cfg, out)
	return exitcode.Success
}

// dragFor builds the drop of a task at the end of the (dst, priority) lane.
// It reports false when the task already sits in that lane.
func dragFor(src, dst state.ListView, taskID string, priority model.Priority) (state.DragResult, bool) {
	from, index, _ := src.Position(taskID)
	to := model.Bucket{ListID: dst.List.ID, Priority: priority}
	if from == to {
		return state.DragResult{}, false
	}

	toIndex := 0
	for _, lane := range dst.Lanes {
		if lane.Bucket == to {
			toIndex = len(lane.Tasks)
		}
	}
	return state.DragResult{
		DraggableID: taskID,
		Source:      state.Location{DroppableID: from.ID(), Index: index},
		Destination: &state.Location{DroppableID: to.ID(), Index: toIndex},
	}, true
}
