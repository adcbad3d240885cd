/*
summary.go - Goal-relative aggregation over stored entries

PURPOSE:
  Turns raw entry sequences into summaries: total quantity, progress toward
  a daily goal, and the constituent entries.

CALCULATION:
  Total           = sum of Quantity, in the order received (0 if empty)
  ProgressPercent = Total / Goal * 100 when Goal > 0, otherwise 0

WINDOWS:
  Daily:  one date, via Store.FindByDate
  Weekly: the Monday-Sunday Week containing a reference date; one daily
          summary per day, Monday first, plus the weekly total
  Range:  any inclusive date range, one Store.FindByRange bucketed by day

  Days with no entries are always present with zero totals.
  Store errors are returned as-is so callers can match ErrStorageUnavailable.

EXAMPLE:
  16 oz water + 8 oz juice on 2024-01-01, goal 64:
    Total = 24, ProgressPercent = 37.5

SEE ALSO:
  - store.go: The Store the Aggregator reads from
  - date.go: Week bucketing
*/
package tracker

import "context"

// =============================================================================
// SUMMARY - Aggregation result for one day or one arbitrary entry set
// =============================================================================

// Summary is the total and goal progress for a set of entries.
// Date is zero when the summary was not computed for a single day.
type Summary struct {
	Date            Date
	Goal            float64
	Total           float64
	ProgressPercent float64
	Entries         []Entry
}

// Summarize folds entries into a Summary. Entries are kept as given.
func Summarize(entries []Entry, goal float64) Summary {
	if entries == nil {
		entries = []Entry{}
	}
	var total float64
	for _, e := range entries {
		total += e.Quantity
	}
	return Summary{
		Goal:            goal,
		Total:           total,
		ProgressPercent: Progress(total, goal),
		Entries:         entries,
	}
}

// Progress returns total as a percentage of goal. A non-positive goal gives 0.
func Progress(total, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return total / goal * 100
}

// GoalReached reports whether the summary total meets a positive goal.
func (s Summary) GoalReached() bool {
	return s.Goal > 0 && s.Total >= s.Goal
}

// WeeklySummary holds one Summary per day of a Week.
type WeeklySummary struct {
	Week        Week
	Days        []Summary // Monday first, always 7
	TotalWeekly float64
}

// ByDate returns the daily summaries keyed by date.
func (w WeeklySummary) ByDate() map[Date]Summary {
	m := make(map[Date]Summary, len(w.Days))
	for _, s := range w.Days {
		m[s.Date] = s
	}
	return m
}

// Day returns the summary for d if d is in the week.
func (w WeeklySummary) Day(d Date) (Summary, bool) {
	for _, s := range w.Days {
		if s.Date == d {
			return s, true
		}
	}
	return Summary{}, false
}

// RangeSummary holds one Summary per day of an inclusive date range.
type RangeSummary struct {
	Start Date
	End   Date
	Days  []Summary
	Total float64
}

// =============================================================================
// AGGREGATOR - Reads a Store and produces summaries
// =============================================================================

// Aggregator computes summaries from a Store.
type Aggregator struct {
	store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// DailySummary summarizes every entry on date.
func (a *Aggregator) DailySummary(ctx context.Context, date Date, goal float64) (Summary, error) {
	entries, err := a.store.FindByDate(ctx, date)
	if err != nil {
		return Summary{}, err
	}
	s := Summarize(entries, goal)
	s.Date = date
	return s, nil
}

// WeeklySummary summarizes each day of the Monday-Sunday week containing anyDate.
func (a *Aggregator) WeeklySummary(ctx context.Context, anyDate Date, goal float64) (WeeklySummary, error) {
	week := WeekOf(anyDate)
	result := WeeklySummary{Week: week, Days: make([]Summary, 0, 7)}

	for _, day := range week.Days() {
		s, err := a.DailySummary(ctx, day, goal)
		if err != nil {
			return WeeklySummary{}, err
		}
		result.Days = append(result.Days, s)
		result.TotalWeekly += s.Total
	}
	return result, nil
}

// RangeSummary summarizes each day in [start, end] from a single range query.
// An inverted range yields no days.
func (a *Aggregator) RangeSummary(ctx context.Context, start, end Date, goal float64) (RangeSummary, error) {
	entries, err := a.store.FindByRange(ctx, start, end)
	if err != nil {
		return RangeSummary{}, err
	}

	buckets := BucketByDate(entries)
	result := RangeSummary{Start: start, End: end}
	for _, day := range DaysBetween(start, end) {
		s := Summarize(buckets[day], goal)
		s.Date = day
		result.Days = append(result.Days, s)
		result.Total += s.Total
	}
	return result, nil
}

// BucketByDate groups entries by date, preserving relative order within a day.
func BucketByDate(entries []Entry) map[Date][]Entry {
	buckets := make(map[Date][]Entry)
	for _, e := range entries {
		buckets[e.Date] = append(buckets[e.Date], e)
	}
	return buckets
}
