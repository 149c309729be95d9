package model

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"tasklane/internal/service"
)

//go:embed schema/*.json
var schemaFS embed.FS

// schemaBaseURL prefixes the embedded schema names so the compiler never
// tries to resolve them against the working directory.
const schemaBaseURL = "https://tasklane.local/"

// DocumentError reports a stored document that does not match its schema.
type DocumentError struct {
	Collection string
	ID         string
	Path       string
	Message    string
}

func (e *DocumentError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed %s document %s: %s", e.Collection, e.ID, e.Message)
	}
	return fmt.Sprintf("malformed %s document %s: %s: %s", e.Collection, e.ID, e.Path, e.Message)
}

var schemas = sync.OnceValues(func() (map[string]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	files := map[string]string{
		ListsCollection: "schema/list.json",
		TasksCollection: "schema/task.json",
	}
	out := make(map[string]*jsonschema.Schema, len(files))
	for collection, name := range files {
		data, err := schemaFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		url := schemaBaseURL + name
		if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		out[collection] = schema
	}
	return out, nil
})

// validate checks doc against the schema of collection.
// The fields are round-tripped through JSON so that store-native values
// (int64, time.Time, ...) reach the validator as plain JSON values.
func validate(collection string, doc service.Document) error {
	all, err := schemas()
	if err != nil {
		return err
	}

	data, err := json.Marshal(doc.Fields)
	if err != nil {
		return &DocumentError{Collection: collection, ID: doc.ID, Message: err.Error()}
	}
	var obj any
	if err := json.Unmarshal(data, &obj); err != nil {
		return &DocumentError{Collection: collection, ID: doc.ID, Message: err.Error()}
	}

	if err := all[collection].Validate(obj); err != nil {
		return schemaError(collection, doc.ID, err)
	}
	return nil
}

// schemaError reduces a jsonschema error to its first leaf cause.
func schemaError(collection, id string, err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &DocumentError{Collection: collection, ID: id, Message: err.Error()}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &DocumentError{
		Collection: collection,
		ID:         id,
		Path:       ve.InstanceLocation,
		Message:    ve.Message,
	}
}

// ListFromDocument decodes a lists document.
func ListFromDocument(doc service.Document) (List, error) {
	if err := validate(ListsCollection, doc); err != nil {
		return List{}, err
	}
	return List{
		ID:      doc.ID,
		Name:    str(doc.Fields, FieldName),
		OwnerID: str(doc.Fields, FieldOwner),
	}, nil
}

// TaskFromDocument decodes a tasks document.
// A stored empty priority reads as Low.
func TaskFromDocument(doc service.Document) (Task, error) {
	if err := validate(TasksCollection, doc); err != nil {
		return Task{}, err
	}
	p := Low
	if raw := str(doc.Fields, FieldPriority); raw != "" {
		p = Priority(raw)
	}
	return Task{
		ID:          doc.ID,
		Title:       str(doc.Fields, FieldTitle),
		Description: str(doc.Fields, FieldDescription),
		DueDate:     str(doc.Fields, FieldDueDate),
		Priority:    p,
		ListID:      str(doc.Fields, FieldListID),
		OwnerID:     str(doc.Fields, FieldOwner),
	}, nil
}

func str(f service.Fields, key string) string {
	s, _ := f[key].(string)
	return s
}
