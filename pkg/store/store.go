package store

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a referenced category or detail is absent.
var ErrNotFound = errors.New("not found")

// Category groups meters, notes and time-series values.
type Category struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Unit        string `json:"unit,omitempty"`
}

// Detail is a meter or a note attached to a category. Attributes is an
// opaque bag owned by the caller.
type Detail struct {
	ID         string                 `json:"id"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// DetailKind selects the meter or the note table.
type DetailKind string

const (
	KindMeter DetailKind = "meter"
	KindNote  DetailKind = "note"
)

// Value is a single timestamped reading. Time is epoch seconds.
type Value struct {
	Value string  `json:"value"`
	Time  float64 `json:"time"`
}

// ListOptions control value retrieval order and count. A negative Limit
// means unlimited.
type ListOptions struct {
	Limit   int
	Reverse bool
}

// Store is the data-store collaborator contract. Implementations own
// per-key write atomicity; the gateway holds no caches and no locks.
type Store interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	PutCategory(ctx context.Context, category Category) error
	DeleteCategory(ctx context.Context, id string) error

	ListDetails(ctx context.Context, categoryID string, kind DetailKind) ([]Detail, error)
	PutDetail(ctx context.Context, categoryID string, kind DetailKind, detail Detail) error

	WriteValue(ctx context.Context, categoryID string, value string, time float64) error
	DeleteValue(ctx context.Context, categoryID string, time float64) error

	// EachValue streams the values of a category in time order, applying
	// options. The walk stops with the first error fn returns, including
	// a context cancellation surfaced through fn's writer.
	EachValue(ctx context.Context, categoryID string, opts ListOptions, fn func(Value) error) error

	// Backup serializes the whole store as text into w as it is produced.
	Backup(ctx context.Context, w io.Writer) error
	// Restore ingests a stream previously produced by Backup.
	Restore(ctx context.Context, r io.Reader) error

	Close() error
}
