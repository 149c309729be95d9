package model

import (
	"errors"
	"testing"

	"tasklane/internal/service"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"Low", Low, false},
		{"high", High, false},
		{" MEDIUM ", Medium, false},
		{"", "", true},
		{"urgent", "", true},
	}
	for _, tc := range tests {
		got, err := ParsePriority(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParsePriority(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParsePriority(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestBucketID(t *testing.T) {
	tests := []struct {
		id      string
		want    Bucket
		wantErr bool
	}{
		{"L1-Low", Bucket{ListID: "L1", Priority: Low}, false},
		{"list-with-dashes-High", Bucket{ListID: "list-with-dashes", Priority: High}, false},
		{"L1", Bucket{}, true},
		{"-High", Bucket{}, true},
		{"L1-", Bucket{}, true},
		{"L1-Urgent", Bucket{}, true},
	}
	for _, tc := range tests {
		got, err := ParseBucketID(tc.id)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseBucketID(%q): expected error, got %+v", tc.id, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBucketID(%q): unexpected error: %v", tc.id, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseBucketID(%q) = %+v, want %+v", tc.id, got, tc.want)
		}
		if got.ID() != tc.id {
			t.Errorf("Bucket.ID() = %q, want %q", got.ID(), tc.id)
		}
	}
}

func TestDraftSet(t *testing.T) {
	var d Draft
	if !d.IsZero() {
		t.Fatal("expected zero draft")
	}
	d = d.Set(DraftTitle, "Milk").Set(DraftPriority, "Low").Set(DraftDueDate, "2024-05-01").Set(DraftDescription, "2%")
	want := Draft{Title: "Milk", Description: "2%", DueDate: "2024-05-01", Priority: "Low"}
	if d != want {
		t.Errorf("got %+v, want %+v", d, want)
	}
}

func TestTaskFromDocument(t *testing.T) {
	doc := service.Document{ID: "T1", Fields: service.Fields{
		"title":       "Milk",
		"description": "",
		"dueDate":     "2024-05-01",
		"priority":    "High",
		"listId":      "L1",
		"userId":      "u1",
	}}

	task, err := TaskFromDocument(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Task{ID: "T1", Title: "Milk", DueDate: "2024-05-01", Priority: High, ListID: "L1", OwnerID: "u1"}
	if task != want {
		t.Errorf("got %+v, want %+v", task, want)
	}
}

func TestTaskFromDocument_EmptyPriorityReadsAsLow(t *testing.T) {
	doc := service.Document{ID: "T1", Fields: service.Fields{
		"title": "Milk", "priority": "", "listId": "L1", "userId": "u1",
	}}

	task, err := TaskFromDocument(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Priority != Low {
		t.Errorf("expected Low, got %q", task.Priority)
	}
}

func TestTaskFromDocument_Malformed(t *testing.T) {
	tests := map[string]service.Fields{
		"missing list":   {"title": "Milk", "userId": "u1"},
		"bad priority":   {"title": "Milk", "priority": "Urgent", "listId": "L1", "userId": "u1"},
		"bad due date":   {"title": "Milk", "dueDate": "tomorrow", "listId": "L1", "userId": "u1"},
		"numeric title":  {"title": 42, "listId": "L1", "userId": "u1"},
		"empty owner id": {"title": "Milk", "listId": "L1", "userId": ""},
	}
	for name, fields := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := TaskFromDocument(service.Document{ID: "T1", Fields: fields})
			var de *DocumentError
			if !errors.As(err, &de) {
				t.Fatalf("expected DocumentError, got %v", err)
			}
			if de.ID != "T1" || de.Collection != TasksCollection {
				t.Errorf("unexpected error fields: %+v", de)
			}
		})
	}
}

func TestListFromDocument(t *testing.T) {
	list, err := ListFromDocument(service.Document{ID: "L1", Fields: service.Fields{"name": "Groceries", "userId": "u1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list != (List{ID: "L1", Name: "Groceries", OwnerID: "u1"}) {
		t.Errorf("unexpected list %+v", list)
	}

	if _, err := ListFromDocument(service.Document{ID: "L2", Fields: service.Fields{"name": "x"}}); err == nil {
		t.Error("expected error for list without owner")
	}
}

func TestFieldsRoundTrip(t *testing.T) {
	task := Task{ID: "T1", Title: "Milk", Priority: Medium, ListID: "L1", OwnerID: "u1"}
	got, err := TaskFromDocument(service.Document{ID: "T1", Fields: task.Fields()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != task {
		t.Errorf("got %+v, want %+v", got, task)
	}
}
