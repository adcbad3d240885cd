package cli_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SUBCOMMANDS
// =============================================================================

func TestRun_Add(t *testing.T) {
	s := newSession(t, nil)

	code, out := s.run("add", "water", "16")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Entry 1 added for 2024-01-03: 16 oz of water.")

	code, out = s.run("add", "-date", "2024-01-01", "green", "tea", "8")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Entry 2 added for 2024-01-01: 8 oz of green tea.")

	entries := s.all(t)
	require.Len(t, entries, 2)
	assert.Equal(t, "green tea", entries[1].Type)
}

func TestRun_AddRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing quantity", []string{"add", "water"}},
		{"negative quantity", []string{"add", "water", "-5"}},
		{"bad date", []string{"add", "-date", "yesterday", "water", "5"}},
		{"unknown flag", []string{"add", "-when", "2024-01-01", "water", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t, nil)
			code, _ := s.run(tt.args...)
			assert.Equal(t, 2, code)
			assert.Empty(t, s.all(t))
		})
	}
}

func TestRun_Summaries(t *testing.T) {
	s := newSession(t, nil)
	s.seed(t, "2024-01-03", "water", 16)
	s.seed(t, "2024-01-03", "juice", 8)

	code, out := s.run("today")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Goal Progress: 37.50%")

	code, out = s.run("day", "2024-01-03")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Total Ounces Consumed: 24 oz")

	code, out = s.run("week")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Weekly Summary [2024-01-01, 2024-01-07]")

	code, out = s.run("week", "2024-01-10")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Weekly Summary [2024-01-08, 2024-01-14]")
	assert.Contains(t, out, "Total Ounces Consumed for the Week: 0 oz")

	code, out = s.run("history", "2024-01-02", "2024-01-04")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "History [2024-01-02, 2024-01-04]")
}

func TestRun_UsageErrors(t *testing.T) {
	s := newSession(t, nil)

	for _, args := range [][]string{
		{"day"},
		{"day", "03-01-2024"},
		{"history", "2024-01-05", "2024-01-01"},
		{"rm"},
		{"rm", "zero"},
		{"clear", "all"},
		{"clear", "all", "yes"},
		{"clear", "month", "2024-01-01"},
		{"export", "pdf"},
		{"import"},
		{"frobnicate"},
	} {
		code, _ := s.run(args...)
		assert.Equal(t, 2, code, "args %v", args)
	}
}

func TestRun_RemoveAndClear(t *testing.T) {
	s := newSession(t, nil)
	s.seed(t, "2024-01-01", "water", 1)
	s.seed(t, "2024-01-02", "water", 2)
	s.seed(t, "2024-01-10", "water", 3)

	code, out := s.run("rm", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Entry with ID 1 removed successfully.")

	code, out = s.run("rm", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "No entry with ID 1.")

	code, out = s.run("clear", "week", "2024-01-03")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Removed 1 entries for the week")

	code, out = s.run("clear", "all", "-yes")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Removed all 1 entries.")
}

func TestRun_StorageFailureExitsOne(t *testing.T) {
	s := newSession(t, nil)
	require.NoError(t, s.store.Close())

	code, out := s.run("today")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Error: storage unavailable")
}

func TestRun_ExportJSON(t *testing.T) {
	s := newSession(t, nil)
	s.seed(t, "2024-01-01", "water", 16)
	dst := filepath.Join(s.dir, "out.json")

	code, out := s.run("export", "json", dst)
	require.Equal(t, 0, code, out)

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id": 1, "date": "2024-01-01", "type": "water", "quantity": 16}]`, string(b))
}

func TestRun_ExportFailureLeavesNoFile(t *testing.T) {
	s := newSession(t, nil)
	require.NoError(t, s.store.Close())
	dst := filepath.Join(s.dir, "out.csv")

	code, _ := s.run("export", "csv", dst)
	assert.Equal(t, 1, code)
	_, err := os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_ImportTinyDB(t *testing.T) {
	// GIVEN: A legacy db.json with two usable records and one without a date
	// WHEN: Importing it
	// THEN: Two entries get fresh IDs and the bad record is reported

	s := newSession(t, nil)
	s.seed(t, "2024-01-05", "water", 1)

	legacy := map[string]any{"_default": map[string]any{
		"1": map[string]any{"date": "2024-01-01", "type": "water", "ounces": 16},
		"2": map[string]any{"date": "2024-01-02", "type": "juice"},
		"3": map[string]any{"type": "tea", "ounces": 4},
	}}
	b, err := json.Marshal(legacy)
	require.NoError(t, err)
	path := filepath.Join(s.dir, "db.json")
	require.NoError(t, os.WriteFile(path, b, 0o644))

	code, out := s.run("import", path)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Skipped doc 3")
	assert.Contains(t, out, "Imported 2 entries (1 skipped).")

	entries := s.all(t)
	require.Len(t, entries, 3)
	assert.Equal(t, "water", entries[1].Type)
	assert.Equal(t, "2024-01-01", entries[1].Date.String())
	assert.Greater(t, int64(entries[1].ID), int64(entries[0].ID))
	assert.Equal(t, 0.0, entries[2].Quantity)
}

func TestRun_ImportMissingFile(t *testing.T) {
	s := newSession(t, nil)
	code, _ := s.run("import", filepath.Join(s.dir, "nope.json"))
	assert.Equal(t, 1, code)
}

func TestRun_Help(t *testing.T) {
	s := newSession(t, nil)
	code, out := s.run("help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "drinklog <subcommand> [args]")
}
