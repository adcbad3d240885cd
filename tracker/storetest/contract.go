/*
Package storetest holds the behavioral contract every tracker.Store must meet.

USAGE:
  Each backend's tests call Run with a constructor for a fresh, empty store:

    func TestContract(t *testing.T) {
        storetest.Run(t, func(t *testing.T) tracker.Store {
            s, err := sqlite.New(":memory:")
            require.NoError(t, err)
            return s
        })
    }

  Run closes every store it opens.
*/
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/drinklog/tracker"
)

// Factory returns a fresh, empty store.
type Factory func(t *testing.T) tracker.Store

// Run executes the contract suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s tracker.Store)
	}{
		{"InsertThenFindByDate", testInsertThenFindByDate},
		{"FindByDateEmpty", testFindByDateEmpty},
		{"IDsStrictlyIncrease", testIDsStrictlyIncrease},
		{"IDsNotReusedAfterDeleteByID", testIDsNotReusedAfterDeleteByID},
		{"IDsNotReusedAfterDeleteAll", testIDsNotReusedAfterDeleteAll},
		{"DeleteByID", testDeleteByID},
		{"DeleteByIDAbsent", testDeleteByIDAbsent},
		{"DeleteByDate", testDeleteByDate},
		{"DeleteByRangeInclusive", testDeleteByRangeInclusive},
		{"DeleteByRangeWeek", testDeleteByRangeWeek},
		{"DeleteAll", testDeleteAll},
		{"FindByRangeOrdering", testFindByRangeOrdering},
		{"AllInsertionOrder", testAllInsertionOrder},
		{"ZeroQuantityAndFreeformType", testZeroQuantityAndFreeformType},
		{"ClosedStoreUnavailable", testClosedStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func date(s string) tracker.Date { return tracker.MustParseDate(s) }

func mustInsert(t *testing.T, s tracker.Store, d, kind string, qty float64) tracker.EntryID {
	t.Helper()
	id, err := s.Insert(context.Background(), date(d), kind, qty)
	require.NoError(t, err)
	return id
}

func ids(entries []tracker.Entry) []tracker.EntryID {
	out := make([]tracker.EntryID, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

// =============================================================================
// INSERT / FIND
// =============================================================================

func testInsertThenFindByDate(t *testing.T, s tracker.Store) {
	ctx := context.Background()
	id := mustInsert(t, s, "2024-01-01", "water", 16)

	entries, err := s.FindByDate(ctx, date("2024-01-01"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, id, e.ID)
	assert.Equal(t, "2024-01-01", e.Date.String())
	assert.Equal(t, "water", e.Type)
	assert.Equal(t, 16.0, e.Quantity)
}

func testFindByDateEmpty(t *testing.T, s tracker.Store) {
	mustInsert(t, s, "2024-01-01", "water", 16)

	entries, err := s.FindByDate(context.Background(), date("2024-01-02"))
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func testIDsStrictlyIncrease(t *testing.T, s tracker.Store) {
	a := mustInsert(t, s, "2024-01-02", "water", 1)
	b := mustInsert(t, s, "2024-01-01", "water", 1)
	c := mustInsert(t, s, "2024-01-02", "water", 1)

	assert.Greater(t, int64(b), int64(a))
	assert.Greater(t, int64(c), int64(b))
}

func testIDsNotReusedAfterDeleteByID(t *testing.T, s tracker.Store) {
	ctx := context.Background()
	mustInsert(t, s, "2024-01-01", "water", 1)
	last := mustInsert(t, s, "2024-01-01", "water", 2)

	ok, err := s.DeleteByID(ctx, last)
	require.NoError(t, err)
	require.True(t, ok)

	next := mustInsert(t, s, "2024-01-01", "water", 3)
	assert.Greater(t, int64(next), int64(last))
}

func testIDsNotReusedAfterDeleteAll(t *testing.T, s tracker.Store) {
	mustInsert(t, s, "2024-01-01", "water", 1)
	last := mustInsert(t, s, "2024-01-02", "tea", 2)

	n, err := s.DeleteAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	next := mustInsert(t, s, "2024-01-03", "water", 3)
	assert.Greater(t, int64(next), int64(last))
}

// =============================================================================
// DELETE
// =============================================================================

func testDeleteByID(t *testing.T, s tracker.Store) {
	ctx := context.Background()
	keep := mustInsert(t, s, "2024-01-01", "water", 16)
	drop := mustInsert(t, s, "2024-01-01", "juice", 8)

	ok, err := s.DeleteByID(ctx, drop)
	require.NoError(t, err)
	assert.True(t, ok)

	entries, err := s.FindByDate(ctx, date("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, []tracker.EntryID{keep}, ids(entries))
}

func testDeleteByIDAbsent(t *testing.T, s tracker.Store) {
	ctx := context.Background()
	id := mustInsert(t, s, "2024-01-01", "water", 16)

	ok, err := s.DeleteByID(ctx, id+100)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.DeleteByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.DeleteByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok, "second delete of the same id")

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testDeleteByDate(t *testing.T, s tracker.Store) {
	ctx := context.Background()
	mustInsert(t, s, "2024-01-01", "water", 16)
	mustInsert(t, s, "2024-01-01", "juice", 8)
	other := mustInsert(t, s, "2024-01-02", "water", 10)

	n, err := s.DeleteByDate(ctx, date("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.DeleteByDate(ctx, date("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tracker.EntryID{other}, ids(all))
}

func testDeleteByRangeInclusive(t *testing.T, s tracker.Store) {
	// GIVEN: Entries on 01-01, 01-02 and 01-05
	// WHEN: Deleting [01-02, 01-04]
	// THEN: Only the 01-02 entry goes

	ctx := context.Background()
	first := mustInsert(t, s, "2024-01-01", "water", 1)
	mustInsert(t, s, "2024-01-02", "water", 2)
	last := mustInsert(t, s, "2024-01-05", "water", 3)

	n, err := s.DeleteByRange(ctx, date("2024-01-02"), date("2024-01-04"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tracker.EntryID{first, last}, ids(all))

	n, err = s.DeleteByRange(ctx, date("2024-01-01"), date("2024-01-05"))
	require.NoError(t, err)
	assert.Equal(t, 2, n, "both bounds are inclusive")
}

func testDeleteByRangeWeek(t *testing.T, s tracker.Store) {
	// GIVEN: Entries on 2024-01-01 and 2024-01-08
	// WHEN: Deleting the week [2024-01-01, 2024-01-07]
	// THEN: Only the first entry goes and the count is 1

	ctx := context.Background()
	mustInsert(t, s, "2024-01-01", "water", 16)
	kept := mustInsert(t, s, "2024-01-08", "water", 16)

	n, err := s.DeleteByRange(ctx, date("2024-01-01"), date("2024-01-07"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tracker.EntryID{kept}, ids(all))
}

func testDeleteAll(t *testing.T, s tracker.Store) {
	ctx := context.Background()

	n, err := s.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	mustInsert(t, s, "2024-01-01", "water", 1)
	mustInsert(t, s, "2024-03-01", "tea", 2)

	n, err = s.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	byDate, err := s.FindByDate(ctx, date("2024-01-01"))
	require.NoError(t, err)
	assert.Empty(t, byDate)

	byRange, err := s.FindByRange(ctx, date("2000-01-01"), date("2099-12-31"))
	require.NoError(t, err)
	assert.Empty(t, byRange)
}

// =============================================================================
// ORDERING
// =============================================================================

func testFindByRangeOrdering(t *testing.T, s tracker.Store) {
	ctx := context.Background()
	a := mustInsert(t, s, "2024-01-03", "water", 1)
	b := mustInsert(t, s, "2024-01-01", "water", 2)
	c := mustInsert(t, s, "2024-01-03", "tea", 3)
	mustInsert(t, s, "2024-01-10", "water", 4)
	d := mustInsert(t, s, "2024-01-02", "juice", 5)

	entries, err := s.FindByRange(ctx, date("2024-01-01"), date("2024-01-07"))
	require.NoError(t, err)
	assert.Equal(t, []tracker.EntryID{b, d, a, c}, ids(entries))

	entries, err = s.FindByRange(ctx, date("2024-02-01"), date("2024-02-07"))
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func testAllInsertionOrder(t *testing.T, s tracker.Store) {
	a := mustInsert(t, s, "2024-01-03", "water", 1)
	b := mustInsert(t, s, "2024-01-01", "water", 2)
	c := mustInsert(t, s, "2024-01-02", "water", 3)

	all, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []tracker.EntryID{a, b, c}, ids(all))
}

func testZeroQuantityAndFreeformType(t *testing.T, s tracker.Store) {
	mustInsert(t, s, "2024-01-01", "Iced Coffee (large)", 0)
	mustInsert(t, s, "2024-01-01", "water", 12.75)

	entries, err := s.FindByDate(context.Background(), date("2024-01-01"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Iced Coffee (large)", entries[0].Type)
	assert.Equal(t, 0.0, entries[0].Quantity)
	assert.Equal(t, 12.75, entries[1].Quantity)
}

// =============================================================================
// FAILURE
// =============================================================================

func testClosedStoreUnavailable(t *testing.T, s tracker.Store) {
	ctx := context.Background()
	mustInsert(t, s, "2024-01-01", "water", 1)
	require.NoError(t, s.Close())

	_, err := s.Insert(ctx, date("2024-01-01"), "water", 1)
	assert.ErrorIs(t, err, tracker.ErrStorageUnavailable)

	_, err = s.DeleteByID(ctx, 1)
	assert.ErrorIs(t, err, tracker.ErrStorageUnavailable)

	_, err = s.DeleteByDate(ctx, date("2024-01-01"))
	assert.ErrorIs(t, err, tracker.ErrStorageUnavailable)

	_, err = s.DeleteByRange(ctx, date("2024-01-01"), date("2024-01-02"))
	assert.ErrorIs(t, err, tracker.ErrStorageUnavailable)

	_, err = s.DeleteAll(ctx)
	assert.ErrorIs(t, err, tracker.ErrStorageUnavailable)

	entries, err := s.FindByDate(ctx, date("2024-01-01"))
	assert.ErrorIs(t, err, tracker.ErrStorageUnavailable)
	assert.Nil(t, entries)

	_, err = s.FindByRange(ctx, date("2024-01-01"), date("2024-01-02"))
	assert.ErrorIs(t, err, tracker.ErrStorageUnavailable)

	_, err = s.All(ctx)
	assert.ErrorIs(t, err, tracker.ErrStorageUnavailable)
}
