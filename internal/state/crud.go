package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasklane/internal/model"
	"tasklane/internal/service"
)

// AddList creates a list named after the pending list name, trimmed.
// The pending name is cleared on success and kept on failure.
func (a *App) AddList(ctx context.Context) (string, error) {
	a.mu.Lock()
	user := a.user
	raw := a.listName
	a.mu.Unlock()

	if user == nil {
		return "", service.ErrNotAuthenticated
	}
	if a.store == nil {
		return "", ErrNoStore
	}
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", &service.ValidationError{Field: model.FieldName, Reason: "required"}
	}

	list := model.List{Name: name, OwnerID: user.ID}
	id, err := a.store.Create(ctx, model.ListsCollection, list.Fields())
	if err != nil {
		a.logger.Error("add list failed", "name", name, "err", err)
		return "", err
	}

	a.mu.Lock()
	if a.listName == raw {
		a.listName = ""
	}
	a.mu.Unlock()
	a.notify()
	a.logger.Debug("list added", "id", id)
	return id, nil
}

// AddTask creates a task in listID from that list's draft. An empty
// priority means Low. The draft is reset only after the store accepted the
// task; a rejected draft is left as it was.
func (a *App) AddTask(ctx context.Context, listID string) (string, error) {
	a.mu.Lock()
	user := a.user
	draft := a.drafts[listID]
	_, listKnown := a.lists[listID]
	a.mu.Unlock()

	if user == nil {
		return "", service.ErrNotAuthenticated
	}
	if a.store == nil {
		return "", ErrNoStore
	}
	task, err := taskFromDraft(draft)
	if err != nil {
		return "", err
	}
	if !listKnown {
		return "", &service.ValidationError{Field: model.FieldListID, Reason: fmt.Sprintf("unknown list %q", listID)}
	}
	task.ListID = listID
	task.OwnerID = user.ID

	id, err := a.store.Create(ctx, model.TasksCollection, task.Fields())
	if err != nil {
		a.logger.Error("add task failed", "list", listID, "err", err)
		return "", err
	}

	a.mu.Lock()
	if a.drafts[listID] == draft {
		delete(a.drafts, listID)
	}
	a.mu.Unlock()
	a.notify()
	a.logger.Debug("task added", "id", id, "list", listID)
	return id, nil
}

func taskFromDraft(d model.Draft) (model.Task, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return model.Task{}, &service.ValidationError{Field: model.FieldTitle, Reason: "required"}
	}

	priority := model.Low
	if strings.TrimSpace(d.Priority) != "" {
		p, err := model.ParsePriority(d.Priority)
		if err != nil {
			return model.Task{}, &service.ValidationError{Field: model.FieldPriority, Reason: err.Error()}
		}
		priority = p
	}

	due := strings.TrimSpace(d.DueDate)
	if due != "" {
		if _, err := time.Parse(model.DueDateLayout, due); err != nil {
			return model.Task{}, &service.ValidationError{Field: model.FieldDueDate, Reason: "expected YYYY-MM-DD"}
		}
	}

	return model.Task{
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		DueDate:     due,
		Priority:    priority,
	}, nil
}

// DeleteTask removes a task. A task that is already gone is not an error.
func (a *App) DeleteTask(ctx context.Context, taskID string) error {
	if _, ok := a.User(); !ok {
		return service.ErrNotAuthenticated
	}
	if a.store == nil {
		return ErrNoStore
	}
	err := a.store.Delete(ctx, model.TasksCollection, taskID)
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		a.logger.Error("delete task failed", "id", taskID, "err", err)
		return err
	}
	a.logger.Debug("task deleted", "id", taskID)
	return nil
}

// DeleteList removes a list and every task referencing it. The tasks go
// first, in one atomic batch; the list is deleted only after the batch
// succeeded, so a failure never leaves tasks pointing at a missing list.
func (a *App) DeleteList(ctx context.Context, listID string) error {
	user, ok := a.User()
	if !ok {
		return service.ErrNotAuthenticated
	}
	if a.store == nil {
		return ErrNoStore
	}

	q := service.Query{Collection: model.TasksCollection}.
		Where(model.FieldListID, listID).
		Where(model.FieldOwner, user.ID)
	docs, err := a.store.Query(ctx, q)
	if err != nil {
		a.logger.Error("delete list failed", "id", listID, "step", "query tasks", "err", err)
		return err
	}

	if len(docs) > 0 {
		ids := make([]string, len(docs))
		for i, d := range docs {
			ids[i] = d.ID
		}
		if err := a.store.BatchDelete(ctx, model.TasksCollection, ids); err != nil {
			a.logger.Error("delete list failed", "id", listID, "step", "delete tasks", "err", err)
			return err
		}
	}

	if err := a.store.Delete(ctx, model.ListsCollection, listID); err != nil {
		a.logger.Error("delete list failed", "id", listID, "step", "delete list", "err", err)
		return err
	}

	a.mu.Lock()
	delete(a.drafts, listID)
	a.mu.Unlock()
	a.logger.Debug("list deleted", "id", listID, "tasks", len(docs))
	return nil
}

// Logout ends the session. The auth change that follows clears the mirror
// and stops the subscriptions.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		a.logger.Error("logout failed", "err", err)
		var ae *service.AuthError
		if errors.As(err, &ae) {
			return err
		}
		return &service.AuthError{Op: "sign out", Err: err}
	}
	return nil
}
