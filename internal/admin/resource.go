package admin

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Store errors the scaffold understands. Adapters wrap their own errors
// with these.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with existing data")
)

// FieldKind selects how a field is rendered and whether it is editable
type FieldKind int

const (
	KindText FieldKind = iota
	KindTextarea
	KindSelect
	KindReadOnly
)

// Option is a choice of a select field
type Option struct {
	Value string
	Label string
}

// Field describes one column of a resource
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	MaxLen   int  // in runes, zero means unbounded
	InList   bool // shown as a column on the list page

	// Options lists the choices of a select field, resolved per request
	Options func(ctx context.Context) ([]Option, error)
}

// Editable reports whether the field is read from submitted forms
func (f Field) Editable() bool {
	return f.Kind != KindReadOnly
}

// Record is a row as the scaffold sees it: string values keyed by field name
type Record struct {
	ID      int64
	Values  map[string]string
	Related []string
}

// Store adapts a concrete entity to the scaffold
type Store interface {
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id int64) (*Record, error)
	Create(ctx context.Context, values map[string]string) (int64, error)
	Update(ctx context.Context, id int64, values map[string]string) error
	Delete(ctx context.Context, id int64) error
}

// Resource is an entity registered with the scaffold
type Resource struct {
	Name   string // url segment
	Title  string
	Fields []Field
	Store  Store

	// CreateModal renders the create form in a dialog on the list page
	CreateModal bool
	// RelatedLabel, when set, adds a column listing Record.Related
	RelatedLabel string
}

var resourceName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func (r *Resource) validate() error {
	if !resourceName.MatchString(r.Name) {
		return fmt.Errorf("invalid resource name %q", r.Name)
	}
	if r.Store == nil {
		return fmt.Errorf("resource %q: store is required", r.Name)
	}
	if len(r.Fields) == 0 {
		return fmt.Errorf("resource %q: at least one field is required", r.Name)
	}

	seen := make(map[string]bool, len(r.Fields))
	for _, f := range r.Fields {
		if f.Name == "" {
			return fmt.Errorf("resource %q: field without a name", r.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("resource %q: duplicate field %q", r.Name, f.Name)
		}
		seen[f.Name] = true
		if f.Kind == KindSelect && f.Options == nil {
			return fmt.Errorf("resource %q: select field %q has no options", r.Name, f.Name)
		}
	}
	return nil
}

func (r *Resource) listFields() []Field {
	var fields []Field
	for _, f := range r.Fields {
		if f.InList {
			fields = append(fields, f)
		}
	}
	return fields
}
