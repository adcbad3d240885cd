/*
store.go - Persistence contract for entries

PURPOSE:
  Defines the interface between the aggregation logic and the storage
  medium. The contract is engine-agnostic: a relational table and a JSON
  document file both satisfy it.

KEY INTERFACES:
  Store:    Insert, delete (by id / date / range / all), find (date / range / all)
  Backuper: Optional. Writes a consistent copy of the medium to a path.

ORDERING:
  FindByDate and All return entries in insertion order (ascending ID).
  FindByRange orders by date, then insertion order, so callers can bucket
  by day in a single pass.

DURABILITY:
  Every mutating call commits before it returns. A subsequent read never
  sees a partial write.

FAILURES:
  If the medium is missing, locked, closed or fails I/O, the call returns an
  error matching ErrStorageUnavailable. An empty slice with a nil error always
  means "no matching entries".

LIFECYCLE:
  A Store is opened by its constructor and owned by the caller, who must
  Close it. There is no package-level connection.

CONCURRENCY:
  Single session. Implementations add no locking beyond what the medium
  provides; one process and one goroutine use a Store at a time.

IMPLEMENTATIONS:
  - tracker/store/memory.go: In-memory, for tests and throwaway sessions
  - store/sqlite/sqlite.go: SQLite table (default)
  - store/jsonfile/jsonfile.go: Single JSON document file

SEE ALSO:
  - summary.go: Aggregator built on FindByDate / FindByRange
*/
package tracker

import "context"

// =============================================================================
// STORE - Interface for entry persistence
// =============================================================================

// Store persists entries. IDs are monotonic and never reused.
type Store interface {
	// Insert appends a new entry and returns its assigned ID.
	// Arguments are assumed validated; the store does not re-check them.
	Insert(ctx context.Context, date Date, kind string, quantity float64) (EntryID, error)

	// DeleteByID removes one entry. Returns false, nil if the ID is absent.
	DeleteByID(ctx context.Context, id EntryID) (bool, error)

	// DeleteByDate removes every entry on date and returns how many went.
	DeleteByDate(ctx context.Context, date Date) (int, error)

	// DeleteByRange removes every entry with start <= date <= end.
	DeleteByRange(ctx context.Context, start, end Date) (int, error)

	// DeleteAll removes every entry. The ID sequence is not reset.
	DeleteAll(ctx context.Context) (int, error)

	// FindByDate returns entries on date in insertion order.
	FindByDate(ctx context.Context, date Date) ([]Entry, error)

	// FindByRange returns entries with start <= date <= end,
	// ordered by date then insertion order.
	FindByRange(ctx context.Context, start, end Date) ([]Entry, error)

	// All returns every entry in insertion order.
	All(ctx context.Context) ([]Entry, error)

	// Close releases the medium. Later calls fail with ErrStorageUnavailable.
	Close() error
}

// Backuper is implemented by stores that can copy their medium to a file.
type Backuper interface {
	Backup(ctx context.Context, dst string) error
}

// Backup copies s to dst if the backend supports it.
func Backup(ctx context.Context, s Store, dst string) error {
	b, ok := s.(Backuper)
	if !ok {
		return ErrUnsupported
	}
	return b.Backup(ctx, dst)
}
