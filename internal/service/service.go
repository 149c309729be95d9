// Package service defines the backend-agnostic interfaces for the remote
// document store and the auth provider.
// The app state and commands never import a store SDK directly.
package service

import "context"

// Fields holds the field values of a document, keyed by wire field name.
type Fields map[string]any

// Document is a stored document: its store-assigned ID and its fields.
type Document struct {
	ID     string
	Fields Fields
}

// Filter is an equality filter on a single field.
type Filter struct {
	Field string
	Value string
}

// Query selects documents of one collection matching every filter.
type Query struct {
	Collection string
	Filters    []Filter
}

// Where returns a copy of q with an additional equality filter.
func (q Query) Where(field, value string) Query {
	filters := make([]Filter, len(q.Filters), len(q.Filters)+1)
	copy(filters, q.Filters)
	q.Filters = append(filters, Filter{Field: field, Value: value})
	return q
}

// Snapshot is one delivery of a live subscription.
// Docs is the complete current result set, never a delta.
// A non-nil Err ends the subscription.
type Snapshot struct {
	Docs []Document
	Err  error
}

// Subscription is a standing query.
type Subscription interface {
	// Snapshots delivers full result sets, starting with the current one.
	// The channel is closed after Stop or after a snapshot carrying Err.
	Snapshots() <-chan Snapshot

	// Stop ends the subscription. Safe to call more than once.
	Stop()
}

// Store defines the remote document store operations.
type Store interface {
	// Subscribe starts a live subscription for q.
	Subscribe(ctx context.Context, q Query) (Subscription, error)

	// Query returns the documents currently matching q.
	Query(ctx context.Context, q Query) ([]Document, error)

	// Create persists a new document and returns its store-assigned ID.
	Create(ctx context.Context, collection string, fields Fields) (string, error)

	// Update merges fields into an existing document.
	// Returns a StoreError of kind ErrNotFound if the document does not exist.
	Update(ctx context.Context, collection, id string, fields Fields) error

	// Delete removes a document. Deleting an absent document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// BatchDelete removes all ids atomically: either every document is
	// removed or none is.
	BatchDelete(ctx context.Context, collection string, ids []string) error
}

// User is an authenticated user.
type User struct {
	ID    string
	Email string
}

// Authenticator defines the auth provider operations.
type Authenticator interface {
	// OnAuthChange calls handler with the current user (nil when signed
	// out) immediately and again on every change.
	// The returned function unregisters the handler.
	OnAuthChange(handler func(*User)) (unsubscribe func())

	// SignOut ends the authenticated session.
	SignOut(ctx context.Context) error
}
