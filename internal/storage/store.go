package storage

import (
	"context"

	"github.com/annolab/imagejudge/internal/domain"
)

// Store is the durable, append-only collection of annotation records.
//
// Append concatenates records after the existing ones, preserving both
// orders. ReadAll returns the full collection; a store that does not exist
// yet reads as empty. Implementations must serialize concurrent appends so
// two flushes cannot lose each other's records.
type Store interface {
	Append(ctx context.Context, records []domain.AnnotationRecord) error
	ReadAll(ctx context.Context) ([]domain.AnnotationRecord, error)
}

type Type string

const (
	JSONFile Type = "json"
	SQLite   Type = "sqlite"
	PG       Type = "pg"
	InMem    Type = "in_mem"
)

type StoreError string

const (
	ErrUnsupportedStore StoreError = "unsupported store type: %s"
)

func (e StoreError) Error() string {
	return string(e)
}
