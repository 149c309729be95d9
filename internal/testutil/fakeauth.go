package testutil

import (
	"context"
	"sync"

	"tasklane/internal/service"
)

// FakeAuth is an in-memory implementation of service.Authenticator.
type FakeAuth struct {
	mu       sync.Mutex
	user     *service.User
	handlers map[int]func(*service.User)
	nextID   int
	signOuts int

	// SignOutErr is returned by SignOut when set; the session is kept.
	SignOutErr error
}

// NewFakeAuth creates a FakeAuth signed in as user (nil for signed out).
func NewFakeAuth(user *service.User) *FakeAuth {
	return &FakeAuth{user: user, handlers: make(map[int]func(*service.User))}
}

// OnAuthChange implements service.Authenticator.
func (a *FakeAuth) OnAuthChange(handler func(*service.User)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.handlers[id] = handler
	user := a.user
	a.mu.Unlock()

	handler(user)
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.handlers, id)
	}
}

// SignOut implements service.Authenticator.
func (a *FakeAuth) SignOut(ctx context.Context) error {
	a.mu.Lock()
	a.signOuts++
	a.mu.Unlock()
	if a.SignOutErr != nil {
		return a.SignOutErr
	}
	a.SetUser(nil)
	return nil
}

// SetUser changes the signed-in user and notifies every handler.
func (a *FakeAuth) SetUser(user *service.User) {
	a.mu.Lock()
	a.user = user
	handlers := make([]func(*service.User), 0, len(a.handlers))
	for _, h := range a.handlers {
		handlers = append(handlers, h)
	}
	a.mu.Unlock()

	for _, h := range handlers {
		h(user)
	}
}

// Handlers returns the number of registered handlers.
func (a *FakeAuth) Handlers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.handlers)
}

// SignOuts returns how many times SignOut was called.
func (a *FakeAuth) SignOuts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.signOuts
}
