// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"tasklane/internal/service"
)

// Call records one store operation.
type Call struct {
	Op         string // "query", "create", "update", "delete", "batch delete"
	Collection string
	ID         string
	IDs        []string
	Fields     service.Fields
}

// FakeStore is an in-memory implementation of service.Store for testing.
// Every mutation pushes a fresh snapshot to the matching subscriptions
// unless HoldPushes is set.
type FakeStore struct {
	mu       sync.Mutex
	docs     map[string]map[string]service.Fields // collection -> id -> fields
	counters map[string]int
	subs     map[*fakeSub]struct{}
	calls    []Call

	// Error injection for testing
	SubscribeErr   error
	QueryErr       error
	CreateErr      error
	UpdateErr      error
	DeleteErr      error
	BatchDeleteErr error

	// OnUpdate runs at the start of Update, before anything is applied.
	OnUpdate func(collection, id string, fields service.Fields)

	// HoldPushes suppresses automatic pushes; call Flush to deliver.
	HoldPushes bool
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		docs:     make(map[string]map[string]service.Fields),
		counters: make(map[string]int),
		subs:     make(map[*fakeSub]struct{}),
	}
}

// Seed stores a document without recording a call or pushing.
func (f *FakeStore) Seed(collection, id string, fields service.Fields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(collection, id, fields)
}

// Doc returns a copy of a stored document.
func (f *FakeStore) Doc(collection, id string) (service.Fields, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fields, ok := f.docs[collection][id]
	if !ok {
		return nil, false
	}
	return cloneFields(fields), true
}

// Count returns the number of documents in collection.
func (f *FakeStore) Count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs[collection])
}

// Calls returns the recorded operations in order. Subscriptions are not
// recorded.
func (f *FakeStore) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsOf returns the recorded operations named op.
func (f *FakeStore) CallsOf(op string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (f *FakeStore) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// ActiveSubscriptions returns the number of subscriptions not yet stopped.
func (f *FakeStore) ActiveSubscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Flush pushes the current result set to every subscription.
func (f *FakeStore) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subs {
		sub.ch <- service.Snapshot{Docs: f.match(sub.query)}
	}
}

// Fail delivers err to every subscription and ends them.
func (f *FakeStore) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subs {
		sub.ch <- service.Snapshot{Err: err}
		f.closeLocked(sub)
	}
}

// Subscribe implements service.Store.
func (f *FakeStore) Subscribe(ctx context.Context, q service.Query) (service.Subscription, error) {
	if f.SubscribeErr != nil {
		return nil, f.SubscribeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	sub := &fakeSub{store: f, query: q, ch: make(chan service.Snapshot, 64)}
	f.subs[sub] = struct{}{}
	sub.ch <- service.Snapshot{Docs: f.match(q)}
	sub.stopCtx = context.AfterFunc(ctx, sub.Stop)
	return sub, nil
}

// Query implements service.Store.
func (f *FakeStore) Query(ctx context.Context, q service.Query) ([]service.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "query", Collection: q.Collection})
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}
	return f.match(q), nil
}

// Create implements service.Store. IDs are the upper-cased first letter of
// the collection followed by a per-collection counter: L1, L2, T1, ...
// IDs already taken by seeded documents are skipped.
func (f *FakeStore) Create(ctx context.Context, collection string, fields service.Fields) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "create", Collection: collection, Fields: cloneFields(fields)})
	if f.CreateErr != nil {
		return "", f.CreateErr
	}

	var id string
	for {
		f.counters[collection]++
		id = strings.ToUpper(collection[:1]) + strconv.Itoa(f.counters[collection])
		if _, taken := f.docs[collection][id]; !taken {
			break
		}
	}
	f.put(collection, id, fields)
	f.pushLocked(collection)
	return id, nil
}

// Update implements service.Store.
func (f *FakeStore) Update(ctx context.Context, collection, id string, fields service.Fields) error {
	if f.OnUpdate != nil {
		f.OnUpdate(collection, id, fields)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "update", Collection: collection, ID: id, Fields: cloneFields(fields)})
	if f.UpdateErr != nil {
		return f.UpdateErr
	}

	doc, ok := f.docs[collection][id]
	if !ok {
		return &service.StoreError{Op: "update", Collection: collection, ID: id, Kind: service.ErrNotFound}
	}
	for k, v := range fields {
		doc[k] = v
	}
	f.pushLocked(collection)
	return nil
}

// Delete implements service.Store.
func (f *FakeStore) Delete(ctx context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "delete", Collection: collection, ID: id})
	if f.DeleteErr != nil {
		return f.DeleteErr
	}

	delete(f.docs[collection], id)
	f.pushLocked(collection)
	return nil
}

// BatchDelete implements service.Store.
func (f *FakeStore) BatchDelete(ctx context.Context, collection string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "batch delete", Collection: collection, IDs: append([]string(nil), ids...)})
	if f.BatchDeleteErr != nil {
		return f.BatchDeleteErr
	}

	for _, id := range ids {
		delete(f.docs[collection], id)
	}
	f.pushLocked(collection)
	return nil
}

func (f *FakeStore) put(collection, id string, fields service.Fields) {
	if f.docs[collection] == nil {
		f.docs[collection] = make(map[string]service.Fields)
	}
	f.docs[collection][id] = cloneFields(fields)
}

func (f *FakeStore) pushLocked(collection string) {
	if f.HoldPushes {
		return
	}
	for sub := range f.subs {
		if sub.query.Collection == collection {
			sub.ch <- service.Snapshot{Docs: f.match(sub.query)}
		}
	}
}

// match returns the documents matching q, sorted by ID.
func (f *FakeStore) match(q service.Query) []service.Document {
	ids := make([]string, 0, len(f.docs[q.Collection]))
	for id, fields := range f.docs[q.Collection] {
		if matches(fields, q.Filters) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	docs := make([]service.Document, len(ids))
	for i, id := range ids {
		docs[i] = service.Document{ID: id, Fields: cloneFields(f.docs[q.Collection][id])}
	}
	return docs
}

func (f *FakeStore) closeLocked(sub *fakeSub) {
	if _, ok := f.subs[sub]; !ok {
		return
	}
	delete(f.subs, sub)
	close(sub.ch)
	if sub.stopCtx != nil {
		sub.stopCtx()
	}
}

func matches(fields service.Fields, filters []service.Filter) bool {
	for _, flt := range filters {
		v, _ := fields[flt.Field].(string)
		if v != flt.Value {
			return false
		}
	}
	return true
}

func cloneFields(fields service.Fields) service.Fields {
	out := make(service.Fields, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

type fakeSub struct {
	store   *FakeStore
	query   service.Query
	ch      chan service.Snapshot
	stopCtx func() bool
}

func (s *fakeSub) Snapshots() <-chan service.Snapshot { return s.ch }

func (s *fakeSub) Stop() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.closeLocked(s)
}
