/*
Package cli is the interactive front end of drinklog.

PURPOSE:
  Reads and validates user input, calls the tracker core with clean
  arguments, and prints results. It is the only layer that talks to the
  terminal; tracker.Store and tracker.Aggregator never do.

MODES:
  Menu(): numbered prompt loop (add, summaries, remove, clear, backup,
          export, history, exit). Empty input cancels the current operation.
  Run():  one subcommand per process invocation; returns an exit code
          (0 ok, 1 error, 2 usage).

ERRORS:
  Validation errors print the reason and cancel the operation.
  Storage errors print, get logged, and cancel the operation; the session
  keeps going.

SEE ALSO:
  - render.go: Summary layout and styles
  - commands.go: Subcommand dispatch
*/
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/warp/drinklog/export"
	"github.com/warp/drinklog/logging"
	"github.com/warp/drinklog/store/jsonfile"
	"github.com/warp/drinklog/store/sqlite"
	"github.com/warp/drinklog/tracker"
)

// Options wires a Runner.
type Options struct {
	Store     tracker.Store
	Goal      float64
	BackupDir string
	BackupExt string // ".db" or ".json"
	In        io.Reader
	Out       io.Writer
	Logger    *slog.Logger
	Now       func() time.Time
}

// Runner holds the session state for one user at one terminal.
type Runner struct {
	store     tracker.Store
	agg       *tracker.Aggregator
	goal      float64
	backupDir string
	backupExt string
	in        *bufio.Scanner
	out       io.Writer
	log       *slog.Logger
	now       func() time.Time
	st        styles
}

func New(opts Options) *Runner {
	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	backupDir := opts.BackupDir
	if backupDir == "" {
		backupDir = "."
	}
	backupExt := opts.BackupExt
	if backupExt == "" {
		backupExt = ".db"
	}

	return &Runner{
		store:     opts.Store,
		agg:       tracker.NewAggregator(opts.Store),
		goal:      opts.Goal,
		backupDir: backupDir,
		backupExt: backupExt,
		in:        bufio.NewScanner(in),
		out:       out,
		log:       logging.WithComponent(logger, "cli"),
		now:       now,
		st:        newStyles(out),
	}
}

func (r *Runner) today() tracker.Date { return tracker.DateOf(r.now()) }

// =============================================================================
// MENU LOOP
// =============================================================================

var menu = []string{
	"1. Add Drink Entry",
	"2. Add Previous Entry",
	"3. Display Daily Summary",
	"4. Display Weekly Summary",
	"5. View Consumption for Any Day",
	"6. Remove Drink Entry",
	"7. Clear Entries",
	"8. Create Backup",
	"9. Exit",
	"10. Export Entries",
	"11. View History",
}

// Menu runs the prompt loop until the user exits or input ends.
func (r *Runner) Menu(ctx context.Context) error {
	for {
		fmt.Fprintln(r.out)
		r.panel(append([]string{r.st.title.Render("Menu:")}, menu...))

		choice, ok := r.prompt("Enter your choice (1-11): ")
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			r.report(r.addEntry(ctx, r.today()))
		case "2":
			r.report(r.addPreviousEntry(ctx))
		case "3":
			r.report(r.showDaily(ctx, r.today()))
		case "4":
			r.report(r.showWeekly(ctx, r.today()))
		case "5":
			r.report(r.showAnyDay(ctx))
		case "6":
			r.report(r.removeEntry(ctx))
		case "7":
			r.report(r.clearGroup(ctx))
		case "8":
			r.report(r.backup(ctx, ""))
		case "9":
			return nil
		case "10":
			r.report(r.exportPrompt(ctx))
		case "11":
			r.report(r.historyPrompt(ctx))
		default:
			r.fail("Invalid choice. Please enter a number between 1 and 11.")
		}
	}
}

// errCanceled marks an operation the user abandoned with empty input.
var errCanceled = errors.New("operation canceled")

// report prints the outcome of one menu operation. Nothing here ends the session.
func (r *Runner) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, errCanceled):
		r.info("Operation canceled.")
	case tracker.IsValidation(err):
		r.fail(err.Error() + ". Operation canceled.")
	case tracker.IsStorageUnavailable(err):
		r.log.Error("storage failure", "error", err)
		if sqlite.IsLocked(err) {
			r.fail("Error: the database is locked by another process.")
			return
		}
		r.fail("Error: storage unavailable: " + err.Error())
	default:
		r.log.Error("operation failed", "error", err)
		r.fail("Error: " + err.Error())
	}
}

// prompt prints label and reads one trimmed line. ok is false at end of input.
func (r *Runner) prompt(label string) (string, bool) {
	fmt.Fprint(r.out, label)
	if !r.in.Scan() {
		fmt.Fprintln(r.out)
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

// promptRequired treats empty input and end of input as a cancel.
func (r *Runner) promptRequired(label string) (string, error) {
	v, ok := r.prompt(label)
	if !ok || v == "" {
		return "", errCanceled
	}
	return v, nil
}

func (r *Runner) promptDate(label string) (tracker.Date, error) {
	v, err := r.promptRequired(label)
	if err != nil {
		return tracker.Date{}, err
	}
	return tracker.ParseDate(v)
}

// =============================================================================
// OPERATIONS
// =============================================================================

func (r *Runner) addEntry(ctx context.Context, date tracker.Date) error {
	kind, err := r.promptRequired("Enter the type of drink (or leave empty to cancel): ")
	if err != nil {
		return err
	}
	if kind, err = tracker.ValidateType(kind); err != nil {
		return err
	}

	raw, err := r.promptRequired(fmt.Sprintf("Enter the ounces of %s consumed on %s: ", kind, date))
	if err != nil {
		return err
	}
	quantity, err := tracker.ParseQuantity(raw)
	if err != nil {
		return err
	}

	return r.insert(ctx, date, kind, quantity)
}

func (r *Runner) insert(ctx context.Context, date tracker.Date, kind string, quantity float64) error {
	id, err := r.store.Insert(ctx, date, kind, quantity)
	if err != nil {
		return err
	}
	r.log.Debug("entry added", "id", id, "date", date, "type", kind, "quantity", quantity)
	r.ok(fmt.Sprintf("Entry %d added for %s: %s of %s.", id, date, oz(quantity), kind))
	return nil
}

func (r *Runner) addPreviousEntry(ctx context.Context) error {
	date, err := r.promptDate("Enter the date (YYYY-MM-DD) to add the entry to (or leave empty to cancel): ")
	if err != nil {
		return err
	}
	return r.addEntry(ctx, date)
}

func (r *Runner) showDaily(ctx context.Context, date tracker.Date) error {
	s, err := r.agg.DailySummary(ctx, date, r.goal)
	if err != nil {
		return err
	}
	r.printDailySummary(s)
	return nil
}

func (r *Runner) showWeekly(ctx context.Context, date tracker.Date) error {
	w, err := r.agg.WeeklySummary(ctx, date, r.goal)
	if err != nil {
		return err
	}
	r.printWeeklySummary(w)
	return nil
}

func (r *Runner) showAnyDay(ctx context.Context) error {
	date, err := r.promptDate("Enter the date (YYYY-MM-DD) to view consumption for or leave empty to cancel: ")
	if err != nil {
		return err
	}
	s, err := r.agg.DailySummary(ctx, date, r.goal)
	if err != nil {
		return err
	}
	r.printDayConsumption(s)
	return nil
}

func (r *Runner) removeEntry(ctx context.Context) error {
	if err := r.showDaily(ctx, r.today()); err != nil {
		return err
	}
	raw, err := r.promptRequired("Enter the ID of the entry to remove (or leave empty to cancel): ")
	if err != nil {
		return err
	}
	id, err := tracker.ParseEntryID(raw)
	if err != nil {
		return err
	}
	return r.remove(ctx, id)
}

func (r *Runner) remove(ctx context.Context, id tracker.EntryID) error {
	removed, err := r.store.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		r.info(fmt.Sprintf("No entry with ID %d.", id))
		return nil
	}
	r.log.Debug("entry removed", "id", id)
	r.ok(fmt.Sprintf("Entry with ID %d removed successfully.", id))
	return nil
}

func (r *Runner) clearGroup(ctx context.Context) error {
	r.info("Select the scope to clear entries:")
	r.info("1. Day")
	r.info("2. Week")
	r.info("3. All")

	choice, err := r.promptRequired("Enter your choice (1-3) or leave empty to cancel: ")
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		date, err := r.promptDate("Enter the date (YYYY-MM-DD) to clear entries for or leave empty to cancel: ")
		if err != nil {
			return err
		}
		return r.clearDay(ctx, date)
	case "2":
		date, err := r.promptDate("Enter a date within the week (YYYY-MM-DD) to clear entries for the entire week or leave empty to cancel: ")
		if err != nil {
			return err
		}
		return r.clearWeek(ctx, date)
	case "3":
		confirm, err := r.promptRequired("Are you sure you want to clear entries? (yes/no or leave empty to cancel): ")
		if err != nil {
			return err
		}
		if !strings.EqualFold(confirm, "yes") {
			return errCanceled
		}
		return r.clearAll(ctx)
	default:
		r.fail("Invalid choice. Operation canceled.")
		return nil
	}
}

func (r *Runner) clearDay(ctx context.Context, date tracker.Date) error {
	n, err := r.store.DeleteByDate(ctx, date)
	if err != nil {
		return err
	}
	r.log.Info("cleared day", "date", date, "removed", n)
	r.ok(fmt.Sprintf("Removed %d entries for %s.", n, date))
	return nil
}

func (r *Runner) clearWeek(ctx context.Context, date tracker.Date) error {
	week := tracker.WeekOf(date)
	n, err := r.store.DeleteByRange(ctx, week.Start, week.End)
	if err != nil {
		return err
	}
	r.log.Info("cleared week", "week", week.String(), "removed", n)
	r.ok(fmt.Sprintf("Removed %d entries for the week %s.", n, week))
	return nil
}

func (r *Runner) clearAll(ctx context.Context) error {
	n, err := r.store.DeleteAll(ctx)
	if err != nil {
		return err
	}
	r.log.Info("cleared all entries", "removed", n)
	r.ok(fmt.Sprintf("Removed all %d entries.", n))
	return nil
}

// backup copies the store to dst, or to a timestamped file in the backup dir.
func (r *Runner) backup(ctx context.Context, dst string) error {
	if dst == "" {
		name := "backup-" + r.now().Format("20060102-150405") + r.backupExt
		dst = filepath.Join(r.backupDir, name)
	}
	if err := tracker.Backup(ctx, r.store, dst); err != nil {
		if errors.Is(err, tracker.ErrUnsupported) {
			return fmt.Errorf("backup: %w, use export instead", err)
		}
		return err
	}
	r.log.Info("backup created", "path", dst)
	r.ok("Backup created successfully: " + dst)
	return nil
}

func (r *Runner) exportPrompt(ctx context.Context) error {
	raw, err := r.promptRequired("Enter the export format (csv, xlsx, json) or leave empty to cancel: ")
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(raw)
	if err != nil {
		return err
	}
	dst, _ := r.prompt("Enter the output file (leave empty for the default): ")
	return r.exportTo(ctx, format, dst)
}

func (r *Runner) exportTo(ctx context.Context, format export.Format, dst string) error {
	if dst == "" {
		dst = filepath.Join(r.backupDir, "drinklog-export-"+r.now().Format("20060102")+format.Ext())
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	n, err := export.Write(ctx, r.store, format, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close export file: %w", cerr)
	}
	if err != nil {
		os.Remove(dst)
		return err
	}

	r.log.Info("export written", "path", dst, "format", format, "entries", n)
	r.ok(fmt.Sprintf("Exported %d entries to %s", n, dst))
	return nil
}

func (r *Runner) historyPrompt(ctx context.Context) error {
	start, err := r.promptDate("Enter the start date (YYYY-MM-DD) or leave empty to cancel: ")
	if err != nil {
		return err
	}
	end, err := r.promptDate("Enter the end date (YYYY-MM-DD) or leave empty to cancel: ")
	if err != nil {
		return err
	}
	return r.history(ctx, start, end)
}

func (r *Runner) history(ctx context.Context, start, end tracker.Date) error {
	if end.Before(start) {
		return &tracker.ValidationError{Field: "range", Value: start.String() + ".." + end.String(), Reason: "end before start"}
	}
	s, err := r.agg.RangeSummary(ctx, start, end, r.goal)
	if err != nil {
		return err
	}
	r.printRangeSummary(s)
	return nil
}

// importTinyDB inserts every valid record of a legacy TinyDB file.
func (r *Runner) importTinyDB(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	entries, rejected, err := jsonfile.ReadTinyDB(f)
	if err != nil {
		return err
	}
	for _, rec := range rejected {
		r.log.Warn("skipped legacy record", "doc_id", rec.DocID, "error", rec.Err)
		r.fail("Skipped " + rec.Error())
	}

	for _, e := range entries {
		if _, err := r.store.Insert(ctx, e.Date, e.Type, e.Quantity); err != nil {
			return err
		}
	}
	r.log.Info("import finished", "path", path, "imported", len(entries), "skipped", len(rejected))
	r.ok(fmt.Sprintf("Imported %d entries (%d skipped).", len(entries), len(rejected)))
	return nil
}
