// Package model defines lists, tasks, drafts and buckets, and their mapping
// to store documents.
package model

import (
	"fmt"
	"strings"

	"tasklane/internal/service"
)

// Collection names.
const (
	ListsCollection = "lists"
	TasksCollection = "tasks"
)

// Wire field names.
const (
	FieldName        = "name"
	FieldOwner       = "userId"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDueDate     = "dueDate"
	FieldPriority    = "priority"
	FieldListID      = "listId"
)

// DueDateLayout is the layout of Task.DueDate.
const DueDateLayout = "2006-01-02"

// Priority is a task priority lane.
type Priority string

const (
	Low    Priority = "Low"
	Medium Priority = "Medium"
	High   Priority = "High"
)

// Priorities lists the lanes in display order.
var Priorities = []Priority{Low, Medium, High}

// ParsePriority parses a priority name, case-insensitive.
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority: %q", s)
}

// List is a named to-do list.
type List struct {
	ID      string
	Name    string
	OwnerID string
}

// Fields returns the document fields of l.
func (l List) Fields() service.Fields {
	return service.Fields{
		FieldName:  l.Name,
		FieldOwner: l.OwnerID,
	}
}

// Task is a to-do item in a list.
type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     string // DueDateLayout or empty
	Priority    Priority
	ListID      string
	OwnerID     string
}

// Fields returns the document fields of t.
func (t Task) Fields() service.Fields {
	return service.Fields{
		FieldTitle:       t.Title,
		FieldDescription: t.Description,
		FieldDueDate:     t.DueDate,
		FieldPriority:    string(t.Priority),
		FieldListID:      t.ListID,
		FieldOwner:       t.OwnerID,
	}
}

// Bucket returns the bucket t is displayed in.
func (t Task) Bucket() Bucket {
	return Bucket{ListID: t.ListID, Priority: t.Priority}
}

// Draft is the unsaved new-task form state of one list.
// Priority is kept as typed; it is parsed when the task is created.
type Draft struct {
	Title       string
	Description string
	DueDate     string
	Priority    string
}

// IsZero reports whether every field of d is empty.
func (d Draft) IsZero() bool {
	return d == Draft{}
}

// DraftField names an editable draft field.
type DraftField int

const (
	DraftTitle DraftField = iota
	DraftDescription
	DraftDueDate
	DraftPriority
)

// Set returns a copy of d with field set to value.
func (d Draft) Set(field DraftField, value string) Draft {
	switch field {
	case DraftTitle:
		d.Title = value
	case DraftDescription:
		d.Description = value
	case DraftDueDate:
		d.DueDate = value
	case DraftPriority:
		d.Priority = value
	}
	return d
}
