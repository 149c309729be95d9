// Package firestore implements the service.Store interface using Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/oauth2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tasklane/internal/config"
	"tasklane/internal/service"
)

const (
	// APITimeout is the timeout for one-shot API calls.
	APITimeout = 10 * time.Second

	// MaxBatch is the largest number of documents a single transaction may
	// delete.
	MaxBatch = 500
)

// Client implements service.Store using Cloud Firestore.
type Client struct {
	fs *firestore.Client
}

// New creates a Firestore client for the project and database in cfg,
// authorized by ts.
func New(ctx context.Context, cfg *config.Config, ts oauth2.TokenSource) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("no project id (set project_id in %s or %s)", config.SettingsFile, config.EnvProjectID)
	}
	fs, err := firestore.NewClientWithDatabase(ctx, cfg.ProjectID, cfg.Database, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &Client{fs: fs}, nil
}

// NewWithOptions creates a client with explicit client options, e.g. to
// reach the emulator.
func NewWithOptions(ctx context.Context, projectID, database string, opts ...option.ClientOption) (*Client, error) {
	fs, err := firestore.NewClientWithDatabase(ctx, projectID, database, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{fs: fs}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.fs.Close()
}

func (c *Client) query(q service.Query) firestore.Query {
	fq := c.fs.Collection(q.Collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, "==", f.Value)
	}
	return fq
}

// Subscribe starts a live query. Every change re-delivers the full result
// set. The subscription ends on Stop, when ctx is done, or after delivering
// an error.
func (c *Client) Subscribe(ctx context.Context, q service.Query) (service.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		ch:     make(chan service.Snapshot, 1),
		cancel: cancel,
	}
	go sub.run(ctx, c.query(q).Snapshots(ctx), q.Collection)
	return sub, nil
}

// Query runs a one-shot read.
func (c *Client) Query(ctx context.Context, q service.Query) ([]service.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	snaps, err := c.query(q).Documents(ctx).GetAll()
	if err != nil {
		return nil, wrapError("query", q.Collection, "", err)
	}
	return toDocuments(snaps), nil
}

// Create adds a document with a store-assigned id.
func (c *Client) Create(ctx context.Context, collection string, fields service.Fields) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	ref, _, err := c.fs.Collection(collection).Add(ctx, map[string]any(fields))
	if err != nil {
		return "", wrapError("create", collection, "", err)
	}
	return ref.ID, nil
}

// Update merges fields into an existing document.
func (c *Client) Update(ctx context.Context, collection, id string, fields service.Fields) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	if _, err := c.fs.Collection(collection).Doc(id).Update(ctx, updates); err != nil {
		return wrapError("update", collection, id, err)
	}
	return nil
}

// Delete removes a document. Deleting a missing document succeeds.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if _, err := c.fs.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return wrapError("delete", collection, id, err)
	}
	return nil
}

// BatchDelete removes all ids in one transaction: either every document is
// deleted or none is.
func (c *Client) BatchDelete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > MaxBatch {
		return &service.ValidationError{Field: "ids", Reason: fmt.Sprintf("at most %d documents per batch, got %d", MaxBatch, len(ids))}
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	col := c.fs.Collection(collection)
	err := c.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, id := range ids {
			if err := tx.Delete(col.Doc(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrapError("batch delete", collection, "", err)
	}
	return nil
}

type subscription struct {
	ch     chan service.Snapshot
	cancel context.CancelFunc
}

func (s *subscription) Snapshots() <-chan service.Snapshot { return s.ch }

func (s *subscription) Stop() { s.cancel() }

func (s *subscription) run(ctx context.Context, it *firestore.QuerySnapshotIterator, collection string) {
	defer close(s.ch)
	defer it.Stop()

	for {
		qs, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, iterator.Done) {
				return
			}
			s.send(ctx, service.Snapshot{Err: wrapError("subscribe", collection, "", err)})
			return
		}
		snaps, err := qs.Documents.GetAll()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.send(ctx, service.Snapshot{Err: wrapError("subscribe", collection, "", err)})
			return
		}
		if !s.send(ctx, service.Snapshot{Docs: toDocuments(snaps)}) {
			return
		}
	}
}

// send delivers snap unless the subscription ended first.
func (s *subscription) send(ctx context.Context, snap service.Snapshot) bool {
	select {
	case s.ch <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}

func toDocuments(snaps []*firestore.DocumentSnapshot) []service.Document {
	docs := make([]service.Document, 0, len(snaps))
	for _, ds := range snaps {
		docs = append(docs, service.Document{ID: ds.Ref.ID, Fields: ds.Data()})
	}
	return docs
}

// wrapError wraps API errors into a StoreError with a kind the app can act on.
func wrapError(op, collection, id string, err error) error {
	if err == nil {
		return nil
	}
	return &service.StoreError{
		Op:         op,
		Collection: collection,
		ID:         id,
		Kind:       classify(err),
		Err:        err,
	}
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return service.ErrNetworkUnavailable
	}
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated:
		return service.ErrPermissionDenied
	case codes.NotFound:
		return service.ErrNotFound
	case codes.Unavailable, codes.DeadlineExceeded:
		return service.ErrNetworkUnavailable
	default:
		return service.ErrUnknown
	}
}
