/*
Package export dumps the whole entry collection in tabular or document form.

PURPOSE:
  Read-only collaborator of the core. It reads every entry with Store.All
  (insertion order, stable across runs) and writes one of:

    csv   id,date,type,quantity
    xlsx  sheet "Entries" (same columns) + sheet "Daily totals"
    json  array of {id, date, type, quantity}

  Quantities are written in shortest exact decimal form (16, 8.5, 0.1),
  never in float notation such as 1e-05.

SEE ALSO:
  - tracker/store.go: All() contract
*/
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/warp/drinklog/tracker"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatJSON:
		return f, nil
	default:
		return "", &tracker.ValidationError{Field: "format", Value: s, Reason: "expected csv, xlsx or json"}
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

var header = []string{"id", "date", "type", "quantity"}

// Write reads every entry from s and writes them to w in format f.
func Write(ctx context.Context, s tracker.Store, f Format, w io.Writer) (int, error) {
	entries, err := s.All(ctx)
	if err != nil {
		return 0, err
	}

	switch f {
	case FormatCSV:
		err = WriteCSV(w, entries)
	case FormatXLSX:
		err = WriteXLSX(w, entries)
	case FormatJSON:
		err = WriteJSON(w, entries)
	default:
		err = fmt.Errorf("unknown export format %q", f)
	}
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// FormatQuantity renders q in shortest exact decimal form.
func FormatQuantity(q float64) string {
	return decimal.NewFromFloat(q).String()
}

func row(e tracker.Entry) []string {
	return []string{e.ID.String(), e.Date.String(), e.Type, FormatQuantity(e.Quantity)}
}

// =============================================================================
// CSV
// =============================================================================

func WriteCSV(w io.Writer, entries []tracker.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write(row(e)); err != nil {
			return fmt.Errorf("write csv row %d: %w", e.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// =============================================================================
// XLSX
// =============================================================================

const (
	entriesSheet = "Entries"
	totalsSheet  = "Daily totals"
)

func WriteXLSX(w io.Writer, entries []tracker.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", entriesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(entriesSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{int64(e.ID), e.Date.String(), e.Type, e.Quantity}
		if err := f.SetSheetRow(entriesSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", e.ID, err)
		}
	}
	f.SetColWidth(entriesSheet, "A", "A", 8)
	f.SetColWidth(entriesSheet, "B", "B", 12)
	f.SetColWidth(entriesSheet, "C", "C", 20)
	f.SetColWidth(entriesSheet, "D", "D", 10)

	if err := writeTotalsSheet(f, entries); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// writeTotalsSheet adds one row per date that has entries, oldest first.
func writeTotalsSheet(f *excelize.File, entries []tracker.Entry) error {
	if _, err := f.NewSheet(totalsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	totalsHeader := []string{"date", "entries", "total"}
	if err := f.SetSheetRow(totalsSheet, "A1", &totalsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	buckets := tracker.BucketByDate(entries)
	dates := make([]tracker.Date, 0, len(buckets))
	for d := range buckets {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	for i, d := range dates {
		s := tracker.Summarize(buckets[d], 0)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{d.String(), len(s.Entries), s.Total}
		if err := f.SetSheetRow(totalsSheet, cell, &values); err != nil {
			return fmt.Errorf("write totals %s: %w", d, err)
		}
	}
	return nil
}

// =============================================================================
// JSON
// =============================================================================

type jsonEntry struct {
	ID       tracker.EntryID `json:"id"`
	Date     tracker.Date    `json:"date"`
	Type     string          `json:"type"`
	Quantity json.Number     `json:"quantity"`
}

func WriteJSON(w io.Writer, entries []tracker.Entry) error {
	out := make([]jsonEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, jsonEntry{
			ID:       e.ID,
			Date:     e.Date,
			Type:     e.Type,
			Quantity: json.Number(FormatQuantity(e.Quantity)),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
