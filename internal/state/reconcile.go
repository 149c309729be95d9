package state

import (
	"context"
	"fmt"

	"tasklane/internal/model"
	"tasklane/internal/service"
)

// Location is a position inside a bucket.
type Location struct {
	DroppableID string // Bucket.ID()
	Index       int
}

// DragResult is a completed drag gesture.
// Destination is nil when the item was dropped outside any bucket.
type DragResult struct {
	DraggableID string
	Source      Location
	Destination *Location
}

// OnDragEnd moves the dragged task to the destination bucket.
//
// Drops that change neither the list nor the priority are ignored: the
// position inside a bucket is not stored. Otherwise the cached task is moved
// at once and the two changed fields are written to the store. If the write
// fails and no task snapshot or later move has arrived since, the task is
// put back where it was; the error is returned either way.
func (a *App) OnDragEnd(ctx context.Context, r DragResult) error {
	if r.Destination == nil {
		return nil
	}
	if r.Source.DroppableID == r.Destination.DroppableID && r.Source.Index == r.Destination.Index {
		return nil
	}

	src, err := model.ParseBucketID(r.Source.DroppableID)
	if err != nil {
		return &service.ValidationError{Field: "source", Reason: err.Error()}
	}
	dst, err := model.ParseBucketID(r.Destination.DroppableID)
	if err != nil {
		return &service.ValidationError{Field: "destination", Reason: err.Error()}
	}
	if src == dst {
		return nil
	}
	if a.store == nil {
		return ErrNoStore
	}

	a.mu.Lock()
	task, ok := a.tasks[r.DraggableID]
	if !ok {
		a.mu.Unlock()
		a.logger.Debug("dragged task not cached", "id", r.DraggableID)
		return nil
	}
	if _, ok := a.lists[dst.ListID]; !ok {
		a.mu.Unlock()
		return &service.ValidationError{Field: "destination", Reason: fmt.Sprintf("unknown list %q", dst.ListID)}
	}

	prev := task
	task.ListID = dst.ListID
	task.Priority = dst.Priority
	a.tasks[task.ID] = task
	a.seq++
	marker := pendingMove{seq: a.seq, prev: prev}
	a.pending[task.ID] = marker
	session := a.session
	a.mu.Unlock()
	a.notify()

	fields := service.Fields{
		model.FieldListID:   dst.ListID,
		model.FieldPriority: string(dst.Priority),
	}
	err = a.store.Update(ctx, model.TasksCollection, task.ID, fields)
	if err == nil {
		a.logger.Debug("task moved", "id", task.ID, "from", src.ID(), "to", dst.ID())
		return nil
	}

	reverted := a.revert(session, task.ID, marker)
	a.logger.Error("move failed", "id", task.ID, "to", dst.ID(), "reverted", reverted, "err", err)
	return err
}

// revert restores the pre-move value of a task if marker is still the
// latest word on it.
func (a *App) revert(session uint64, taskID string, marker pendingMove) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != session {
		return false
	}
	current, ok := a.pending[taskID]
	if !ok || current.seq != marker.seq {
		return false
	}
	delete(a.pending, taskID)
	if _, ok := a.tasks[taskID]; !ok {
		return false
	}
	a.tasks[taskID] = marker.prev
	a.notify()
	return true
}
