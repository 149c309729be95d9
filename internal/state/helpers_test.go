package state_test

import (
	"context"
	"testing"
	"time"

	"tasklane/internal/model"
	"tasklane/internal/service"
	"tasklane/internal/state"
	"tasklane/internal/testutil"
)

var (
	alice = &service.User{ID: "u1", Email: "alice@example.com"}
	bob   = &service.User{ID: "u2", Email: "bob@example.com"}
)

// newApp starts an App over store and auth and closes it after the test.
func newApp(t *testing.T, store *testutil.FakeStore, auth *testutil.FakeAuth) *state.App {
	t.Helper()
	app := state.New(store, auth, nil)
	app.Start(context.Background())
	t.Cleanup(app.Close)
	return app
}

// newSyncedApp starts an App signed in as alice and waits for the first
// snapshots.
func newSyncedApp(t *testing.T, store *testutil.FakeStore) (*state.App, *testutil.FakeAuth) {
	t.Helper()
	auth := testutil.NewFakeAuth(alice)
	app := newApp(t, store, auth)
	waitSynced(t, app)
	return app, auth
}

func waitSynced(t *testing.T, app *state.App) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := app.WaitSynced(ctx); err != nil {
		t.Fatalf("WaitSynced: %v", err)
	}
}

// eventually polls cond until it holds or two seconds pass.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func seedList(store *testutil.FakeStore, id, name, owner string) {
	store.Seed(model.ListsCollection, id, model.List{Name: name, OwnerID: owner}.Fields())
}

func seedTask(store *testutil.FakeStore, id, title, listID string, p model.Priority, owner string) {
	store.Seed(model.TasksCollection, id, model.Task{Title: title, Priority: p, ListID: listID, OwnerID: owner}.Fields())
}

func taskPriority(app *state.App, id string) model.Priority {
	task, _ := app.Task(id)
	return task.Priority
}
