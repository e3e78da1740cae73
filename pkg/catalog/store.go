// Package catalog persists content records and answers the read queries the
// platform needs: listing by level or type, substring search and aggregate stats.
package catalog

import (
	"context"

	"content-curator/pkg/domain"
)

// InsertResult reports what Insert did with a record.
type InsertResult int

const (
	// Inserted means the record was new and is now stored.
	Inserted InsertResult = iota + 1
	// AlreadyExists means a record with the same id was already stored. The
	// stored record is left untouched.
	AlreadyExists
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case AlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

// Store is the persistent catalog of content records. Records are immutable
// once inserted. List and search results are ordered newest first by
// created_at, ties broken by id.
type Store interface {
	// Insert stores rec unless its id is already present.
	Insert(ctx context.Context, rec *domain.ContentRecord) (InsertResult, error)
	// Get returns domain.ErrNotFound when id is absent.
	Get(ctx context.Context, id string) (*domain.ContentRecord, error)
	ListAll(ctx context.Context) ([]domain.ContentRecord, error)
	ListByLevel(ctx context.Context, level domain.Level) ([]domain.ContentRecord, error)
	ListByType(ctx context.Context, t domain.ContentType) ([]domain.ContentRecord, error)
	// Search is a case-sensitive substring match over the title or the
	// comma-joined tags. The empty query matches every record.
	Search(ctx context.Context, query string) ([]domain.ContentRecord, error)
	Stats(ctx context.Context) (domain.Stats, error)
	Close() error
}
