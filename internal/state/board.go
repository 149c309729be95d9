package state

import (
	"sort"
	"strings"

	"tasklane/internal/model"
)

// TaskView is a task as shown on the board.
type TaskView struct {
	model.Task

	// Pending is set while a local move awaits confirmation.
	Pending bool
}

// Lane is the content of one bucket.
type Lane struct {
	Bucket model.Bucket
	Tasks  []TaskView
}

// ListView is a list with one lane per priority, in model.Priorities order.
type ListView struct {
	List  model.List
	Lanes []Lane
}

// Board returns the display projection of the mirror. Each task appears in
// exactly one lane; tasks of lists that are not cached are left out.
// Lane tasks are sorted by title, case-insensitive, then ID.
func (a *App) Board() []ListView {
	a.mu.Lock()
	defer a.mu.Unlock()

	byBucket := make(map[model.Bucket][]TaskView)
	for _, t := range a.tasks {
		_, pending := a.pending[t.ID]
		byBucket[t.Bucket()] = append(byBucket[t.Bucket()], TaskView{Task: t, Pending: pending})
	}

	lists := a.sortedListsLocked()
	board := make([]ListView, len(lists))
	for i, l := range lists {
		lanes := make([]Lane, len(model.Priorities))
		for j, p := range model.Priorities {
			b := model.Bucket{ListID: l.ID, Priority: p}
			tasks := byBucket[b]
			sort.Slice(tasks, func(x, y int) bool {
				tx, ty := strings.ToLower(tasks[x].Title), strings.ToLower(tasks[y].Title)
				if tx != ty {
					return tx < ty
				}
				return tasks[x].ID < tasks[y].ID
			})
			lanes[j] = Lane{Bucket: b, Tasks: tasks}
		}
		board[i] = ListView{List: l, Lanes: lanes}
	}
	return board
}

// Tasks returns the tasks of lv in board order, lane by lane.
func (lv ListView) Tasks() []TaskView {
	var out []TaskView
	for _, lane := range lv.Lanes {
		out = append(out, lane.Tasks...)
	}
	return out
}

// Position returns the lane and index of a task in lv.
func (lv ListView) Position(taskID string) (model.Bucket, int, bool) {
	for _, lane := range lv.Lanes {
		for i, t := range lane.Tasks {
			if t.ID == taskID {
				return lane.Bucket, i, true
			}
		}
	}
	return model.Bucket{}, 0, false
}
