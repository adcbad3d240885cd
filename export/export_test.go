package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/drinklog/export"
	"github.com/warp/drinklog/tracker"
	"github.com/warp/drinklog/tracker/store"
)

func seededStore(t *testing.T) tracker.Store {
	ctx := context.Background()
	s := store.NewMemory()
	t.Cleanup(func() { s.Close() })

	for _, e := range []struct {
		date string
		kind string
		qty  float64
	}{
		{"2024-01-02", "water", 16},
		{"2024-01-01", "juice", 8.5},
		{"2024-01-02", "tea, green", 0.1},
	} {
		_, err := s.Insert(ctx, tracker.MustParseDate(e.date), e.kind, e.qty)
		require.NoError(t, err)
	}
	return s
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, export.FormatXLSX, f)
	assert.Equal(t, ".xlsx", f.Ext())

	_, err = export.ParseFormat("pdf")
	assert.True(t, tracker.IsValidation(err))
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "16", export.FormatQuantity(16))
	assert.Equal(t, "8.5", export.FormatQuantity(8.5))
	assert.Equal(t, "0.1", export.FormatQuantity(0.1))
	assert.Equal(t, "0.00001", export.FormatQuantity(0.00001))
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	n, err := export.Write(context.Background(), seededStore(t), export.FormatCSV, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"id", "date", "type", "quantity"},
		{"1", "2024-01-02", "water", "16"},
		{"2", "2024-01-01", "juice", "8.5"},
		{"3", "2024-01-02", "tea, green", "0.1"},
	}, rows)
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	_, err := export.Write(context.Background(), seededStore(t), export.FormatJSON, &buf)
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"id": 1, "date": "2024-01-02", "type": "water", "quantity": 16},
		{"id": 2, "date": "2024-01-01", "type": "juice", "quantity": 8.5},
		{"id": 3, "date": "2024-01-02", "type": "tea, green", "quantity": 0.1}
	]`, buf.String())

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 3)
}

func TestWrite_JSONEmptyStore(t *testing.T) {
	s := store.NewMemory()
	defer s.Close()

	var buf bytes.Buffer
	n, err := export.Write(context.Background(), s, export.FormatJSON, &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.JSONEq(t, `[]`, buf.String())
}

func TestWrite_XLSX(t *testing.T) {
	// GIVEN: Three entries over two days
	// WHEN: Exporting as xlsx
	// THEN: "Entries" lists every row, "Daily totals" has one row per date, oldest first

	var buf bytes.Buffer
	_, err := export.Write(context.Background(), seededStore(t), export.FormatXLSX, &buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Entries", "Daily totals"}, f.GetSheetList())

	rows, err := f.GetRows("Entries")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"id", "date", "type", "quantity"}, rows[0])
	assert.Equal(t, []string{"2", "2024-01-01", "juice", "8.5"}, rows[2])

	totals, err := f.GetRows("Daily totals")
	require.NoError(t, err)
	require.Len(t, totals, 3)
	assert.Equal(t, []string{"2024-01-01", "1", "8.5"}, totals[1])
	assert.Equal(t, "2024-01-02", totals[2][0])
	assert.Equal(t, "2", totals[2][1])
}

func TestWrite_StorageError(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, s.Close())

	var buf bytes.Buffer
	_, err := export.Write(context.Background(), s, export.FormatCSV, &buf)
	assert.ErrorIs(t, err, tracker.ErrStorageUnavailable)
	assert.Zero(t, buf.Len())
}
