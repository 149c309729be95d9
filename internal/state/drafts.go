package state

import "tasklane/internal/model"

// SetListName sets the pending new-list name.
func (a *App) SetListName(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listName = name
}

// ListName returns the pending new-list name.
func (a *App) ListName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listName
}

// SetDraftField sets one field of the new-task draft of a list.
func (a *App) SetDraftField(listID string, field model.DraftField, value string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.drafts[listID] = a.drafts[listID].Set(field, value)
}

// Draft returns the new-task draft of a list. Lists without edits have a
// zero draft.
func (a *App) Draft(listID string) model.Draft {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.drafts[listID]
}
