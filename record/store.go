package record

import (
	"context"
	"errors"
)

// ErrMissingTemplate indicates the template table a new record table would
// be cloned from does not exist.
var ErrMissingTemplate = errors.New("template table not found")

// ErrNoSuchTable indicates a named record table does not exist.
var ErrNoSuchTable = errors.New("record table not found")

// ErrDuplicatePath indicates an attempt to append a second record for a
// media path already present in a table.
var ErrDuplicatePath = errors.New("duplicate media path")

// Store is the persistence boundary for record tables: an ordered table
// keyed by a stable row id, supporting enumeration, row-scoped transactional
// updates, template-schema cloning and atomic bulk appends.
type Store interface {
	// CreateTable creates table name by cloning the template table's
	// schema, or leaves it untouched if it already exists.
	CreateTable(ctx context.Context, name string) error
	// HasTable reports whether a table exists.
	HasTable(ctx context.Context, name string) (bool, error)
	// Records enumerates all rows of a table in FID order.
	Records(ctx context.Context, table string) ([]*Record, error)
	// MediaPaths returns the set of media paths already present in a
	// table, for duplicate filtering.
	MediaPaths(ctx context.Context, table string) (map[string]bool, error)
	// Append inserts records in a single transaction and returns the
	// number added. On failure nothing is inserted.
	Append(ctx context.Context, table string, records []*Record) (int, error)
	// UpdateAnnotations writes the annotation fields of one row in its
	// own transaction. Shortcodes and FID are never written.
	UpdateAnnotations(ctx context.Context, table string, fid int64, a *Annotations) error
	// GetByFID fetches a single row, or nil if there is no such row.
	GetByFID(ctx context.Context, table string, fid int64) (*Record, error)
	// Close releases the underlying storage.
	Close() error
}
