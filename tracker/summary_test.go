package tracker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/drinklog/tracker"
	"github.com/warp/drinklog/tracker/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestAggregator(t *testing.T) (*tracker.Aggregator, *store.Memory) {
	s := store.NewMemory()
	t.Cleanup(func() { s.Close() })
	return tracker.NewAggregator(s), s
}

func insert(t *testing.T, s tracker.Store, date, kind string, qty float64) tracker.EntryID {
	t.Helper()
	id, err := s.Insert(context.Background(), tracker.MustParseDate(date), kind, qty)
	require.NoError(t, err)
	return id
}

// failingStore fails every read with a storage error.
type failingStore struct {
	tracker.Store
	err error
}

func (f failingStore) FindByDate(context.Context, tracker.Date) ([]tracker.Entry, error) {
	return nil, f.err
}

func (f failingStore) FindByRange(context.Context, tracker.Date, tracker.Date) ([]tracker.Entry, error) {
	return nil, f.err
}

// =============================================================================
// SUMMARIZE
// =============================================================================

func TestSummarize_TotalAndProgress(t *testing.T) {
	entries := []tracker.Entry{
		{ID: 1, Date: tracker.MustParseDate("2024-01-01"), Type: "water", Quantity: 16},
		{ID: 2, Date: tracker.MustParseDate("2024-01-01"), Type: "juice", Quantity: 8},
	}

	s := tracker.Summarize(entries, 64)

	assert.Equal(t, 24.0, s.Total)
	assert.InDelta(t, 37.5, s.ProgressPercent, 1e-9)
	assert.Equal(t, 64.0, s.Goal)
	assert.Equal(t, entries, s.Entries)
	assert.False(t, s.GoalReached())
}

func TestSummarize_Empty(t *testing.T) {
	s := tracker.Summarize(nil, 64)

	assert.Equal(t, 0.0, s.Total)
	assert.Equal(t, 0.0, s.ProgressPercent)
	assert.NotNil(t, s.Entries)
	assert.Empty(t, s.Entries)
}

func TestProgress_NonPositiveGoal(t *testing.T) {
	assert.Equal(t, 0.0, tracker.Progress(30, 0))
	assert.Equal(t, 0.0, tracker.Progress(30, -10))
	assert.InDelta(t, 150.0, tracker.Progress(96, 64), 1e-9)
}

func TestSummary_GoalReached(t *testing.T) {
	assert.True(t, tracker.Summary{Goal: 64, Total: 64}.GoalReached())
	assert.True(t, tracker.Summary{Goal: 64, Total: 80}.GoalReached())
	assert.False(t, tracker.Summary{Goal: 0, Total: 80}.GoalReached())
}

// =============================================================================
// DAILY SUMMARY
// =============================================================================

func TestDailySummary_TwoEntries(t *testing.T) {
	// GIVEN: 16 oz water and 8 oz juice on 2024-01-01
	// WHEN: Summarizing that day against a 64 oz goal
	// THEN: Total 24, progress 37.5%, entries in insertion order

	agg, s := newTestAggregator(t)
	insert(t, s, "2024-01-01", "water", 16)
	insert(t, s, "2024-01-01", "juice", 8)
	insert(t, s, "2024-01-02", "water", 32)

	sum, err := agg.DailySummary(context.Background(), tracker.MustParseDate("2024-01-01"), 64)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", sum.Date.String())
	assert.Equal(t, 24.0, sum.Total)
	assert.InDelta(t, 37.5, sum.ProgressPercent, 1e-9)
	require.Len(t, sum.Entries, 2)
	assert.Equal(t, "water", sum.Entries[0].Type)
	assert.Equal(t, "juice", sum.Entries[1].Type)
}

func TestDailySummary_ZeroGoal(t *testing.T) {
	agg, s := newTestAggregator(t)
	insert(t, s, "2024-01-01", "water", 16)

	sum, err := agg.DailySummary(context.Background(), tracker.MustParseDate("2024-01-01"), 0)
	require.NoError(t, err)

	assert.Equal(t, 16.0, sum.Total)
	assert.Equal(t, 0.0, sum.ProgressPercent)
}

func TestDailySummary_NoEntries(t *testing.T) {
	agg, _ := newTestAggregator(t)

	sum, err := agg.DailySummary(context.Background(), tracker.MustParseDate("2024-05-05"), 64)
	require.NoError(t, err)

	assert.Equal(t, 0.0, sum.Total)
	assert.Empty(t, sum.Entries)
}

func TestDailySummary_StorageErrorPropagates(t *testing.T) {
	cause := tracker.Unavailable("find by date", errors.New("database is locked"))
	agg := tracker.NewAggregator(failingStore{err: cause})

	_, err := agg.DailySummary(context.Background(), tracker.MustParseDate("2024-01-01"), 64)

	require.Error(t, err)
	assert.Equal(t, cause, err)
	assert.True(t, tracker.IsStorageUnavailable(err))
}

// =============================================================================
// WEEKLY SUMMARY
// =============================================================================

func TestWeeklySummary_SevenDaysMondayFirst(t *testing.T) {
	// GIVEN: Entries on Monday and Wednesday, one on the following Monday
	// WHEN: Summarizing the week of Wednesday 2024-01-03
	// THEN: 7 daily summaries Mon 01-01 .. Sun 01-07, empty days included

	agg, s := newTestAggregator(t)
	insert(t, s, "2024-01-01", "water", 16)
	insert(t, s, "2024-01-03", "coffee", 8)
	insert(t, s, "2024-01-03", "water", 24)
	insert(t, s, "2024-01-08", "water", 100)

	week, err := agg.WeeklySummary(context.Background(), tracker.MustParseDate("2024-01-03"), 64)
	require.NoError(t, err)

	require.Len(t, week.Days, 7)
	assert.Equal(t, "2024-01-01", week.Days[0].Date.String())
	assert.Equal(t, "2024-01-07", week.Days[6].Date.String())
	assert.Equal(t, "2024-01-01", week.Week.Start.String())

	assert.Equal(t, 16.0, week.Days[0].Total)
	assert.Equal(t, 0.0, week.Days[1].Total)
	assert.Equal(t, 32.0, week.Days[2].Total)
	assert.InDelta(t, 50.0, week.Days[2].ProgressPercent, 1e-9)
	assert.Equal(t, 48.0, week.TotalWeekly)

	wed, ok := week.Day(tracker.MustParseDate("2024-01-03"))
	require.True(t, ok)
	assert.Len(t, wed.Entries, 2)

	_, ok = week.Day(tracker.MustParseDate("2024-01-08"))
	assert.False(t, ok)

	byDate := week.ByDate()
	assert.Len(t, byDate, 7)
	assert.Equal(t, 16.0, byDate[tracker.MustParseDate("2024-01-01")].Total)
}

func TestWeeklySummary_EmptyWeek(t *testing.T) {
	agg, _ := newTestAggregator(t)

	week, err := agg.WeeklySummary(context.Background(), tracker.MustParseDate("2024-06-16"), 64)
	require.NoError(t, err)

	require.Len(t, week.Days, 7)
	assert.Equal(t, 0.0, week.TotalWeekly)
	for _, d := range week.Days {
		assert.Empty(t, d.Entries)
	}
}

func TestWeeklySummary_StorageErrorPropagates(t *testing.T) {
	agg := tracker.NewAggregator(failingStore{err: tracker.Unavailable("find by date", errors.New("gone"))})

	_, err := agg.WeeklySummary(context.Background(), tracker.MustParseDate("2024-01-03"), 64)
	assert.True(t, tracker.IsStorageUnavailable(err))
}

// =============================================================================
// RANGE SUMMARY
// =============================================================================

func TestRangeSummary_IncludesEmptyDays(t *testing.T) {
	agg, s := newTestAggregator(t)
	insert(t, s, "2024-01-02", "water", 10)
	insert(t, s, "2024-01-04", "tea", 6)
	insert(t, s, "2024-01-02", "juice", 5)
	insert(t, s, "2024-01-09", "water", 50)

	sum, err := agg.RangeSummary(context.Background(),
		tracker.MustParseDate("2024-01-01"), tracker.MustParseDate("2024-01-05"), 20)
	require.NoError(t, err)

	require.Len(t, sum.Days, 5)
	assert.Equal(t, 0.0, sum.Days[0].Total)
	assert.Equal(t, 15.0, sum.Days[1].Total)
	assert.InDelta(t, 75.0, sum.Days[1].ProgressPercent, 1e-9)
	assert.Equal(t, []string{"water", "juice"}, []string{sum.Days[1].Entries[0].Type, sum.Days[1].Entries[1].Type})
	assert.Equal(t, 6.0, sum.Days[3].Total)
	assert.Equal(t, 21.0, sum.Total)
}

func TestRangeSummary_InvertedRangeIsEmpty(t *testing.T) {
	agg, s := newTestAggregator(t)
	insert(t, s, "2024-01-02", "water", 10)

	sum, err := agg.RangeSummary(context.Background(),
		tracker.MustParseDate("2024-01-05"), tracker.MustParseDate("2024-01-01"), 64)
	require.NoError(t, err)

	assert.Empty(t, sum.Days)
	assert.Equal(t, 0.0, sum.Total)
}

func TestBucketByDate_KeepsOrderWithinDay(t *testing.T) {
	d1 := tracker.MustParseDate("2024-01-01")
	d2 := tracker.MustParseDate("2024-01-02")
	entries := []tracker.Entry{
		{ID: 1, Date: d1, Type: "a"},
		{ID: 2, Date: d2, Type: "b"},
		{ID: 3, Date: d1, Type: "c"},
	}

	buckets := tracker.BucketByDate(entries)

	require.Len(t, buckets, 2)
	require.Len(t, buckets[d1], 2)
	assert.Equal(t, tracker.EntryID(1), buckets[d1][0].ID)
	assert.Equal(t, tracker.EntryID(3), buckets[d1][1].ID)
}

// =============================================================================
// BACKUP CAPABILITY
// =============================================================================

func TestBackup_UnsupportedBackend(t *testing.T) {
	s := store.NewMemory()
	defer s.Close()

	err := tracker.Backup(context.Background(), s, "ignored.db")
	assert.ErrorIs(t, err, tracker.ErrUnsupported)
}
