// Package store provides an in-memory tracker.Store.
package store

import (
	"context"
	"errors"
	"sort"

	"github.com/warp/drinklog/tracker"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

var errClosed = errors.New("memory store closed")

// Memory keeps entries in a slice ordered by ID. Nothing survives Close.
type Memory struct {
	entries []tracker.Entry
	lastID  tracker.EntryID
	closed  bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) check(op string) error {
	if m.closed {
		return tracker.Unavailable(op, errClosed)
	}
	return nil
}

// Insert appends an entry with the next ID.
func (m *Memory) Insert(_ context.Context, date tracker.Date, kind string, quantity float64) (tracker.EntryID, error) {
	if err := m.check("insert"); err != nil {
		return 0, err
	}
	m.lastID++
	m.entries = append(m.entries, tracker.Entry{
		ID:       m.lastID,
		Date:     date,
		Type:     kind,
		Quantity: quantity,
	})
	return m.lastID, nil
}

func (m *Memory) DeleteByID(_ context.Context, id tracker.EntryID) (bool, error) {
	if err := m.check("delete by id"); err != nil {
		return false, err
	}
	// entries are ordered by ID
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].ID >= id })
	if i == len(m.entries) || m.entries[i].ID != id {
		return false, nil
	}
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	return true, nil
}

func (m *Memory) DeleteByDate(_ context.Context, date tracker.Date) (int, error) {
	if err := m.check("delete by date"); err != nil {
		return 0, err
	}
	return m.removeWhere(func(e tracker.Entry) bool { return e.Date == date }), nil
}

func (m *Memory) DeleteByRange(_ context.Context, start, end tracker.Date) (int, error) {
	if err := m.check("delete by range"); err != nil {
		return 0, err
	}
	return m.removeWhere(inRange(start, end)), nil
}

// DeleteAll empties the store. lastID is kept so IDs are never reused.
func (m *Memory) DeleteAll(_ context.Context) (int, error) {
	if err := m.check("delete all"); err != nil {
		return 0, err
	}
	n := len(m.entries)
	m.entries = nil
	return n, nil
}

func (m *Memory) FindByDate(_ context.Context, date tracker.Date) ([]tracker.Entry, error) {
	if err := m.check("find by date"); err != nil {
		return nil, err
	}
	return m.filter(func(e tracker.Entry) bool { return e.Date == date }), nil
}

func (m *Memory) FindByRange(_ context.Context, start, end tracker.Date) ([]tracker.Entry, error) {
	if err := m.check("find by range"); err != nil {
		return nil, err
	}
	result := m.filter(inRange(start, end))
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (m *Memory) All(_ context.Context) ([]tracker.Entry, error) {
	if err := m.check("all"); err != nil {
		return nil, err
	}
	return m.filter(func(tracker.Entry) bool { return true }), nil
}

func (m *Memory) Close() error {
	m.closed = true
	m.entries = nil
	return nil
}

func (m *Memory) filter(keep func(tracker.Entry) bool) []tracker.Entry {
	result := []tracker.Entry{}
	for _, e := range m.entries {
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}

func (m *Memory) removeWhere(remove func(tracker.Entry) bool) int {
	kept := m.entries[:0]
	removed := 0
	for _, e := range m.entries {
		if remove(e) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return removed
}

func inRange(start, end tracker.Date) func(tracker.Entry) bool {
	return func(e tracker.Entry) bool {
		return e.Date.AfterOrEqual(start) && e.Date.BeforeOrEqual(end)
	}
}
