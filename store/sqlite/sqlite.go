/*
Package sqlite provides a SQLite-backed tracker.Store.

PURPOSE:
  Persists entries in a single relational table. This is the default
  backend for the drinklog binary.

KEY TABLE:
  entries(id INTEGER PRIMARY KEY AUTOINCREMENT, date TEXT, type TEXT, quantity REAL)

  date is ISO YYYY-MM-DD text, so lexical comparison in range predicates
  matches calendar order. Conversion to and from tracker.Date happens only
  in this file.

ID POLICY:
  AUTOINCREMENT keeps the high-water mark in sqlite_sequence, so IDs are
  never reused, even after DELETE FROM entries.

DURABILITY:
  Every statement runs in autocommit with WAL journaling and
  synchronous=FULL: a call returns only after its write is committed.

CONNECTIONS:
  One open connection (SetMaxOpenConns(1)). This keeps ":memory:" databases
  coherent and matches the single-session contract.

FAILURES:
  Every database/sql or driver error is returned as a tracker.StorageError,
  so callers match tracker.ErrStorageUnavailable. IsLocked distinguishes a
  database held by another process.

USAGE:
  store, err := sqlite.New("./drinklog.db")
  if err != nil {
      return err
  }
  defer store.Close()

SCHEMA:
  Created with CREATE TABLE IF NOT EXISTS on New(). The schema is fixed and
  unversioned.

SEE ALSO:
  - tracker/store.go: Interface definition
  - tracker/store/memory.go: In-memory implementation for testing
  - store/jsonfile/jsonfile.go: Document-file implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/drinklog/tracker"
)

// Store implements tracker.Store using SQLite.
type Store struct {
	db *sql.DB
}

// Option tunes how New opens the database.
type Option func(*options)

type options struct {
	mustExist bool
}

// MustExist opens read-write without creating the file, so a missing
// database is reported as tracker.ErrStorageUnavailable.
func MustExist() Option {
	return func(o *options) { o.mustExist = true }
}

// New opens (creating if needed) the SQLite database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite3", dsn(dbPath, o))
	if err != nil {
		return nil, tracker.Unavailable("open", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, tracker.Unavailable("open", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, tracker.Unavailable("create schema", err)
	}

	return store, nil
}

// uriPath escapes the characters SQLite's URI parser would otherwise treat
// as the start of the query, the fragment, or an escape.
var uriPath = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

func dsn(path string, o options) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_synchronous", "FULL")
	if o.mustExist && path != ":memory:" {
		params.Set("mode", "rw")
	}
	return "file:" + uriPath.Replace(path) + "?" + params.Encode()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		type TEXT NOT NULL,
		quantity REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_date
		ON entries(date, id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ENTRY STORE (tracker.Store interface)
// =============================================================================

// Insert adds an entry and returns its new ID.
func (s *Store) Insert(ctx context.Context, date tracker.Date, kind string, quantity float64) (tracker.EntryID, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (date, type, quantity) VALUES (?, ?, ?)`,
		date.String(), kind, quantity,
	)
	if err != nil {
		return 0, tracker.Unavailable("insert", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, tracker.Unavailable("insert", err)
	}
	return tracker.EntryID(id), nil
}

// DeleteByID removes one entry. Absent IDs return false, nil.
func (s *Store) DeleteByID(ctx context.Context, id tracker.EntryID) (bool, error) {
	n, err := s.exec(ctx, "delete by id", `DELETE FROM entries WHERE id = ?`, int64(id))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) DeleteByDate(ctx context.Context, date tracker.Date) (int, error) {
	return s.exec(ctx, "delete by date", `DELETE FROM entries WHERE date = ?`, date.String())
}

func (s *Store) DeleteByRange(ctx context.Context, start, end tracker.Date) (int, error) {
	return s.exec(ctx, "delete by range",
		`DELETE FROM entries WHERE date >= ? AND date <= ?`,
		start.String(), end.String())
}

// DeleteAll removes every row. sqlite_sequence keeps the ID high-water mark.
func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	return s.exec(ctx, "delete all", `DELETE FROM entries`)
}

func (s *Store) FindByDate(ctx context.Context, date tracker.Date) ([]tracker.Entry, error) {
	query := `
		SELECT id, date, type, quantity
		FROM entries
		WHERE date = ?
		ORDER BY id ASC
	`
	return s.queryEntries(ctx, "find by date", query, date.String())
}

func (s *Store) FindByRange(ctx context.Context, start, end tracker.Date) ([]tracker.Entry, error) {
	query := `
		SELECT id, date, type, quantity
		FROM entries
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, id ASC
	`
	return s.queryEntries(ctx, "find by range", query, start.String(), end.String())
}

func (s *Store) All(ctx context.Context) ([]tracker.Entry, error) {
	query := `
		SELECT id, date, type, quantity
		FROM entries
		ORDER BY id ASC
	`
	return s.queryEntries(ctx, "all", query)
}

// Backup writes a consistent copy of the database to dst, replacing it.
func (s *Store) Backup(ctx context.Context, dst string) error {
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return tracker.Unavailable("backup", err)
	}
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, dst); err != nil {
		return tracker.Unavailable("backup", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) exec(ctx context.Context, op, query string, args ...any) (int, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, tracker.Unavailable(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, tracker.Unavailable(op, err)
	}
	return int(n), nil
}

func (s *Store) queryEntries(ctx context.Context, op, query string, args ...any) ([]tracker.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, tracker.Unavailable(op, err)
	}
	defer rows.Close()

	entries := []tracker.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, tracker.Unavailable(op, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, tracker.Unavailable(op, err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (tracker.Entry, error) {
	var (
		id       int64
		dateStr  string
		kind     string
		quantity float64
	)
	if err := rows.Scan(&id, &dateStr, &kind, &quantity); err != nil {
		return tracker.Entry{}, err
	}

	date, err := tracker.ParseDate(dateStr)
	if err != nil {
		return tracker.Entry{}, fmt.Errorf("row %d: corrupt date %q", id, dateStr)
	}

	return tracker.Entry{
		ID:       tracker.EntryID(id),
		Date:     date,
		Type:     kind,
		Quantity: quantity,
	}, nil
}

// IsLocked reports whether err was caused by another connection holding the database.
func IsLocked(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}

// IsCantOpen reports whether err was caused by a missing or unreadable database file.
func IsCantOpen(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrCantOpen
}
