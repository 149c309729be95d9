// Package state owns the application state: the signed-in user, the live
// mirror of the user's lists and tasks, the per-list drafts, and the
// optimistic reconciliation of task moves.
//
// The mirror is fed by two live subscriptions. Every snapshot replaces the
// whole collection it belongs to; local moves are applied ahead of the store
// and marked in flight until the next task snapshot arrives, which is then
// trusted unconditionally.
package state

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"tasklane/internal/logging"
	"tasklane/internal/model"
	"tasklane/internal/service"
)

// ErrNoStore is returned by store operations of an app created without a
// store.
var ErrNoStore = errors.New("no store configured")

type kind int

const (
	kindLists kind = iota
	kindTasks
)

func (k kind) collection() string {
	if k == kindLists {
		return model.ListsCollection
	}
	return model.TasksCollection
}

// pendingMove marks a task moved locally and not yet confirmed by a snapshot.
type pendingMove struct {
	seq  uint64
	prev model.Task
}

// syncState tracks the first snapshots of one session.
type syncState struct {
	done   chan struct{}
	closed bool
	lists  bool
	tasks  bool
	err    error
}

func newSyncState() *syncState {
	return &syncState{done: make(chan struct{})}
}

func (s *syncState) mark(k kind) {
	if k == kindLists {
		s.lists = true
	} else {
		s.tasks = true
	}
	if s.lists && s.tasks {
		s.close()
	}
}

func (s *syncState) fail(err error) {
	if s.err == nil {
		s.err = err
	}
	s.close()
}

func (s *syncState) close() {
	if !s.closed {
		s.closed = true
		close(s.done)
	}
}

// App is the single owner of application state. Views and commands hold a
// reference to it; it is safe for concurrent use.
type App struct {
	store  service.Store
	auth   service.Authenticator
	logger *log.Logger

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	user      *service.User
	session   uint64
	seq       uint64
	lists     map[string]model.List
	tasks     map[string]model.Task
	pending   map[string]pendingMove
	drafts    map[string]model.Draft
	listName  string
	subs      []service.Subscription
	firstSync *syncState
	feedErr   error
	stopAuth  func()

	changes chan struct{}
	wg      sync.WaitGroup
}

// New creates an App. A nil logger discards log output.
// A nil store gives an app that only follows the auth state: it never
// subscribes, and store operations fail with ErrNoStore.
func New(store service.Store, auth service.Authenticator, logger *log.Logger) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	return &App{
		store:   store,
		auth:    auth,
		logger:  logger,
		lists:   make(map[string]model.List),
		tasks:   make(map[string]model.Task),
		pending: make(map[string]pendingMove),
		drafts:  make(map[string]model.Draft),
		changes: make(chan struct{}, 1),
	}
}

// Start registers for auth changes. The current auth state is applied before
// Start returns; when signed in, both subscriptions are started.
// Subscriptions live until sign-out, Close, or ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	a.mu.Lock()
	if a.ctx != nil {
		a.mu.Unlock()
		return
	}
	a.ctx, a.cancel = context.WithCancel(ctx)
	a.mu.Unlock()

	stop := a.auth.OnAuthChange(a.handleAuth)

	a.mu.Lock()
	a.stopAuth = stop
	a.mu.Unlock()
}

// Close unregisters from auth changes, stops both subscriptions and waits
// for their delivery goroutines to exit. In-flight mutations are not
// cancelled.
func (a *App) Close() {
	a.mu.Lock()
	stop := a.stopAuth
	a.stopAuth = nil
	subs := a.subs
	a.subs = nil
	a.session++
	cancel := a.cancel
	a.mu.Unlock()

	if stop != nil {
		stop()
	}
	for _, s := range subs {
		s.Stop()
	}
	if cancel != nil {
		cancel()
	}
	a.wg.Wait()
}

// Changes delivers a notification after every state change. Notifications
// coalesce: a receiver sees at least one after any burst of changes.
func (a *App) Changes() <-chan struct{} {
	return a.changes
}

// WaitSynced blocks until both subscriptions of the current session have
// delivered their first snapshot. It returns ErrNotAuthenticated when no
// user is signed in and the subscription error if one failed.
func (a *App) WaitSynced(ctx context.Context) error {
	a.mu.Lock()
	s := a.firstSync
	a.mu.Unlock()
	if s == nil {
		return service.ErrNotAuthenticated
	}

	select {
	case <-s.done:
		a.mu.Lock()
		defer a.mu.Unlock()
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// User returns the signed-in user.
func (a *App) User() (service.User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return service.User{}, false
	}
	return *a.user, true
}

// List returns a cached list.
func (a *App) List(id string) (model.List, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.lists[id]
	return l, ok
}

// Lists returns the cached lists sorted by name, case-insensitive, then ID.
func (a *App) Lists() []model.List {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sortedListsLocked()
}

// Task returns a cached task.
func (a *App) Task(id string) (model.Task, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.tasks[id]
	return t, ok
}

// Tasks returns the cached tasks sorted by ID.
func (a *App) Tasks() []model.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.Task, 0, len(a.tasks))
	for _, t := range a.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IsPending reports whether a local move of the task awaits confirmation.
func (a *App) IsPending(taskID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.pending[taskID]
	return ok
}

func (a *App) sortedListsLocked() []model.List {
	out := make([]model.List, 0, len(a.lists))
	for _, l := range a.lists {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// handleAuth applies an auth state change. Every change starts a new session:
// the mirror, drafts and markers are dropped and the old subscriptions are
// stopped. Snapshots still queued for the old session are discarded.
func (a *App) handleAuth(user *service.User) {
	a.mu.Lock()
	stale := a.subs
	a.subs = nil
	a.session++
	session := a.session
	a.lists = make(map[string]model.List)
	a.tasks = make(map[string]model.Task)
	a.pending = make(map[string]pendingMove)
	a.drafts = make(map[string]model.Draft)
	a.listName = ""
	a.firstSync = newSyncState()
	a.feedErr = nil
	if user == nil {
		a.user = nil
		a.firstSync.fail(service.ErrNotAuthenticated)
	} else {
		u := *user
		a.user = &u
	}
	ctx := a.ctx
	a.mu.Unlock()

	for _, s := range stale {
		s.Stop()
	}
	a.notify()

	if user == nil {
		a.logger.Debug("signed out")
		return
	}
	a.logger.Debug("signed in", "user", user.ID)
	a.subscribe(ctx, session, kindLists, user.ID)
	a.subscribe(ctx, session, kindTasks, user.ID)
}

func (a *App) subscribe(ctx context.Context, session uint64, k kind, uid string) {
	if a.store == nil {
		a.logger.Debug("no store, not subscribing", "collection", k.collection())
		a.mu.Lock()
		if a.session == session {
			a.firstSync.fail(ErrNoStore)
		}
		a.mu.Unlock()
		return
	}

	q := service.Query{Collection: k.collection()}.Where(model.FieldOwner, uid)
	sub, err := a.store.Subscribe(ctx, q)
	if err != nil {
		a.logger.Error("subscribe failed", "collection", q.Collection, "err", err)
		a.mu.Lock()
		if a.session == session {
			a.firstSync.fail(err)
			a.setFeedErrLocked(err)
		}
		a.mu.Unlock()
		a.notify()
		return
	}

	a.mu.Lock()
	if a.session != session {
		a.mu.Unlock()
		sub.Stop()
		return
	}
	a.subs = append(a.subs, sub)
	a.wg.Add(1)
	a.mu.Unlock()

	go a.drain(session, k, sub)
}

func (a *App) drain(session uint64, k kind, sub service.Subscription) {
	defer a.wg.Done()
	for snap := range sub.Snapshots() {
		a.apply(session, k, snap)
	}
}

// apply replaces one collection of the mirror with a snapshot.
func (a *App) apply(session uint64, k kind, snap service.Snapshot) {
	a.mu.Lock()
	if a.session != session {
		a.mu.Unlock()
		a.logger.Debug("dropping snapshot from ended session", "collection", k.collection())
		return
	}
	if snap.Err != nil {
		a.firstSync.fail(snap.Err)
		a.setFeedErrLocked(snap.Err)
		a.mu.Unlock()
		a.logger.Error("subscription failed", "collection", k.collection(), "err", snap.Err)
		a.notify()
		return
	}

	var skipped []error
	switch k {
	case kindLists:
		lists := make(map[string]model.List, len(snap.Docs))
		for _, doc := range snap.Docs {
			l, err := model.ListFromDocument(doc)
			if err != nil {
				skipped = append(skipped, err)
				continue
			}
			lists[l.ID] = l
		}
		a.lists = lists
	case kindTasks:
		tasks := make(map[string]model.Task, len(snap.Docs))
		for _, doc := range snap.Docs {
			t, err := model.TaskFromDocument(doc)
			if err != nil {
				skipped = append(skipped, err)
				continue
			}
			tasks[t.ID] = t
		}
		a.tasks = tasks
		a.pending = make(map[string]pendingMove)
	}
	a.firstSync.mark(k)
	a.mu.Unlock()

	for _, err := range skipped {
		a.logger.Warn("skipping document", "err", err)
	}
	a.logger.Debug("snapshot applied", "collection", k.collection(), "docs", len(snap.Docs))
	a.notify()
}

// FeedErr returns the error that ended a live subscription of the current
// session, or nil while both are running. The mirror is not updated after
// such a failure until the next session.
func (a *App) FeedErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.feedErr
}

func (a *App) setFeedErrLocked(err error) {
	if a.feedErr == nil {
		a.feedErr = err
	}
}

func (a *App) notify() {
	select {
	case a.changes <- struct{}{}:
	default:
	}
}
