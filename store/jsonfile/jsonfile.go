/*
Package jsonfile provides a tracker.Store backed by a single JSON document.

PURPOSE:
  A human-readable, portable medium for a local single-user tracker. The
  whole collection lives in one file:

    {
      "last_id": 3,
      "entries": [
        {"id": 1, "date": "2024-01-01", "type": "water", "quantity": 16}
      ]
    }

ID POLICY:
  last_id is persisted next to the entries and only ever grows, so IDs are
  never reused, even after every entry has been deleted.

MEDIUM:
  The file is re-read on every call, so edits, deletion or corruption by
  anything outside this process surface on the next call as
  tracker.ErrStorageUnavailable. A file that is valid JSON but not this
  layout (unknown keys, no "entries", ids above last_id, a TinyDB db.json)
  is refused the same way and never rewritten. Writes go to a temp file in the same
  directory, are fsynced, then renamed over the original.

LEGACY IMPORT:
  ReadTinyDB parses the db.json written by the original tracker script
  ({"_default": {"1": {"date", "type", "ounces"}}}) for the import command.

SEE ALSO:
  - tracker/store.go: Interface definition
  - store/sqlite/sqlite.go: Relational implementation
*/
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/warp/drinklog/tracker"
)

var (
	errClosed      = errors.New("json store closed")
	errNotDocument = errors.New("not a drinklog document")
	errLegacyDoc   = errors.New("legacy TinyDB document, use the import command")
)

// createTemp is swapped in tests to make saves fail.
var createTemp = os.CreateTemp

// Store implements tracker.Store on one JSON file.
type Store struct {
	path   string
	closed bool
}

// Option tunes how New opens the document.
type Option func(*options)

type options struct {
	mustExist bool
}

// MustExist makes New fail with tracker.ErrStorageUnavailable instead of
// creating a missing document.
func MustExist() Option {
	return func(o *options) { o.mustExist = true }
}

type document struct {
	LastID  tracker.EntryID `json:"last_id"`
	Entries []record        `json:"entries"`
}

type record struct {
	ID       tracker.EntryID `json:"id"`
	Date     tracker.Date    `json:"date"`
	Type     string          `json:"type"`
	Quantity float64         `json:"quantity"`
}

func (r record) entry() tracker.Entry {
	return tracker.Entry{ID: r.ID, Date: r.Date, Type: r.Type, Quantity: r.Quantity}
}

// New opens the document at path, creating an empty one if it is absent.
// The parent directory must exist. An existing file must already be a
// drinklog document; anything else is refused so it is never overwritten.
func New(path string, opts ...Option) (*Store, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	s := &Store{path: path}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && o.mustExist:
		return nil, tracker.Unavailable("open", err)
	case errors.Is(err, os.ErrNotExist):
		if err := s.save(&document{Entries: []record{}}); err != nil {
			return nil, tracker.Unavailable("open", err)
		}
	case err != nil:
		return nil, tracker.Unavailable("open", err)
	default:
		if _, err := s.load(); err != nil {
			return nil, tracker.Unavailable("open", err)
		}
	}
	return s, nil
}

func (s *Store) Close() error {
	s.closed = true
	return nil
}

// =============================================================================
// ENTRY STORE (tracker.Store interface)
// =============================================================================

func (s *Store) Insert(_ context.Context, date tracker.Date, kind string, quantity float64) (tracker.EntryID, error) {
	var id tracker.EntryID
	err := s.update("insert", func(doc *document) int {
		doc.LastID++
		id = doc.LastID
		doc.Entries = append(doc.Entries, record{ID: id, Date: date, Type: kind, Quantity: quantity})
		return 1
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) DeleteByID(_ context.Context, id tracker.EntryID) (bool, error) {
	var removed int
	err := s.update("delete by id", func(doc *document) int {
		removed = doc.removeWhere(func(r record) bool { return r.ID == id })
		return removed
	})
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

func (s *Store) DeleteByDate(_ context.Context, date tracker.Date) (int, error) {
	var removed int
	err := s.update("delete by date", func(doc *document) int {
		removed = doc.removeWhere(func(r record) bool { return r.Date == date })
		return removed
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *Store) DeleteByRange(_ context.Context, start, end tracker.Date) (int, error) {
	var removed int
	err := s.update("delete by range", func(doc *document) int {
		removed = doc.removeWhere(func(r record) bool { return inRange(r.Date, start, end) })
		return removed
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// DeleteAll empties the document and keeps last_id.
func (s *Store) DeleteAll(_ context.Context) (int, error) {
	var removed int
	err := s.update("delete all", func(doc *document) int {
		removed = len(doc.Entries)
		doc.Entries = []record{}
		return removed
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *Store) FindByDate(_ context.Context, date tracker.Date) ([]tracker.Entry, error) {
	return s.find("find by date", func(r record) bool { return r.Date == date }, false)
}

func (s *Store) FindByRange(_ context.Context, start, end tracker.Date) ([]tracker.Entry, error) {
	return s.find("find by range", func(r record) bool { return inRange(r.Date, start, end) }, true)
}

func (s *Store) All(_ context.Context) ([]tracker.Entry, error) {
	return s.find("all", func(record) bool { return true }, false)
}

// Backup copies the document file to dst, replacing it.
func (s *Store) Backup(_ context.Context, dst string) error {
	if s.closed {
		return tracker.Unavailable("backup", errClosed)
	}
	if err := copyFile(s.path, dst); err != nil {
		return tracker.Unavailable("backup", err)
	}
	return nil
}

// =============================================================================
// DOCUMENT I/O
// =============================================================================

// update loads the document, applies fn and saves only if fn changed something.
func (s *Store) update(op string, fn func(doc *document) int) error {
	if s.closed {
		return tracker.Unavailable(op, errClosed)
	}
	doc, err := s.load()
	if err != nil {
		return tracker.Unavailable(op, err)
	}
	if fn(doc) == 0 {
		return nil
	}
	if err := s.save(doc); err != nil {
		return tracker.Unavailable(op, err)
	}
	return nil
}

func (s *Store) find(op string, keep func(record) bool, byDate bool) ([]tracker.Entry, error) {
	if s.closed {
		return nil, tracker.Unavailable(op, errClosed)
	}
	doc, err := s.load()
	if err != nil {
		return nil, tracker.Unavailable(op, err)
	}

	result := []tracker.Entry{}
	for _, r := range doc.Entries {
		if keep(r) {
			result = append(result, r.entry())
		}
	}
	if byDate {
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Date.Before(result[j].Date)
		})
	}
	return result, nil
}

func (s *Store) load() (*document, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return decodeDocument(b)
}

// decodeDocument accepts only the {"last_id", "entries"} layout with
// unique ids no greater than last_id.
func decodeDocument(b []byte) (*document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(b, &top); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if _, ok := top[tinyDefaultTable]; ok {
		return nil, errLegacyDoc
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errNotDocument, err)
	}
	if doc.Entries == nil {
		return nil, fmt.Errorf("%w: missing entries", errNotDocument)
	}

	seen := make(map[tracker.EntryID]bool, len(doc.Entries))
	for _, r := range doc.Entries {
		switch {
		case r.ID <= 0:
			return nil, fmt.Errorf("%w: entry id %d is not positive", errNotDocument, r.ID)
		case seen[r.ID]:
			return nil, fmt.Errorf("%w: duplicate entry id %d", errNotDocument, r.ID)
		case r.ID > doc.LastID:
			return nil, fmt.Errorf("%w: entry id %d exceeds last_id %d", errNotDocument, r.ID, doc.LastID)
		}
		seen[r.ID] = true
	}

	// entries are kept in insertion order on disk
	sort.SliceStable(doc.Entries, func(i, j int) bool { return doc.Entries[i].ID < doc.Entries[j].ID })
	return &doc, nil
}

func (s *Store) save(doc *document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}

	tmp, err := createTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}

func (doc *document) removeWhere(remove func(record) bool) int {
	kept := doc.Entries[:0]
	removed := 0
	for _, r := range doc.Entries {
		if remove(r) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	doc.Entries = kept
	return removed
}

func inRange(d, start, end tracker.Date) bool {
	return d.AfterOrEqual(start) && d.BeforeOrEqual(end)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("sync backup: %w", err)
	}
	return out.Close()
}
