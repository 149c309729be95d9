package model

import (
	"fmt"
	"strings"
)

// Bucket is a (list, priority) drop target.
type Bucket struct {
	ListID   string
	Priority Priority
}

// ID encodes b as "<listId>-<priority>".
func (b Bucket) ID() string {
	return b.ListID + "-" + string(b.Priority)
}

// ParseBucketID decodes a bucket ID produced by Bucket.ID.
// The priority never contains '-', so the split is on the last one and list
// IDs may contain '-'.
func ParseBucketID(id string) (Bucket, error) {
	i := strings.LastIndex(id, "-")
	if i <= 0 || i == len(id)-1 {
		return Bucket{}, fmt.Errorf("invalid bucket id: %q", id)
	}
	p, err := ParsePriority(id[i+1:])
	if err != nil {
		return Bucket{}, fmt.Errorf("invalid bucket id: %q: %w", id, err)
	}
	return Bucket{ListID: id[:i], Priority: p}, nil
}
