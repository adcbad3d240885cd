package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/warp/drinklog/export"
	"github.com/warp/drinklog/tracker"
)

// Run dispatches one subcommand and returns an exit code (0 ok, 1 error, 2 usage).
// No arguments starts the interactive menu.
func (r *Runner) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		if err := r.Menu(ctx); err != nil {
			r.report(err)
			return 1
		}
		return 0
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		r.PrintHelp()
		return 0
	case "menu":
		return r.exit(r.Menu(ctx))
	case "add":
		return r.cmdAdd(ctx, a)
	case "today":
		return r.exit(r.showDaily(ctx, r.today()))
	case "day":
		date, code := r.dateArg("day", a, false)
		if code != 0 {
			return code
		}
		return r.exit(r.showDaily(ctx, date))
	case "week":
		date, code := r.dateArg("week", a, true)
		if code != 0 {
			return code
		}
		return r.exit(r.showWeekly(ctx, date))
	case "history":
		return r.cmdHistory(ctx, a)
	case "rm":
		return r.cmdRemove(ctx, a)
	case "clear":
		return r.cmdClear(ctx, a)
	case "backup":
		dst := ""
		if len(a) > 0 {
			dst = a[0]
		}
		return r.exit(r.backup(ctx, dst))
	case "export":
		return r.cmdExport(ctx, a)
	case "import":
		if len(a) != 1 {
			return r.usage("usage: drinklog import <db.json>")
		}
		return r.exit(r.importTinyDB(ctx, a[0]))
	}

	r.fail("unknown subcommand: " + cmd)
	r.PrintHelp()
	return 2
}

func (r *Runner) PrintHelp() {
	fmt.Fprint(r.out, `drinklog - track what you drink against a daily goal

Usage:
  drinklog                         Interactive menu
  drinklog <subcommand> [args]

Subcommands:
  add [-date YYYY-MM-DD] <type> <ounces>   Record an entry (default date: today)
  today                                    Today's summary
  day <YYYY-MM-DD>                         Summary for one day
  week [YYYY-MM-DD]                        Monday-Sunday summary (default: this week)
  history <start> <end>                    Per-day totals over a date range
  rm <id>                                  Remove one entry
  clear day <date> | week <date> | all -yes
  backup [path]                            Copy the database
  export <csv|xlsx|json> [path]            Dump every entry
  import <db.json>                         Import a legacy TinyDB file

Examples:
  drinklog add water 16
  drinklog add -date 2024-01-01 juice 8
  drinklog week 2024-01-03
`)
}

// exit maps an operation error to an exit code after reporting it.
func (r *Runner) exit(err error) int {
	if err == nil {
		return 0
	}
	r.report(err)
	if tracker.IsValidation(err) || errors.Is(err, errCanceled) {
		return 2
	}
	return 1
}

func (r *Runner) usage(msg string) int {
	r.fail(msg)
	return 2
}

func (r *Runner) dateArg(cmd string, a []string, optional bool) (tracker.Date, int) {
	if len(a) == 0 && optional {
		return r.today(), 0
	}
	if len(a) != 1 {
		return tracker.Date{}, r.usage(fmt.Sprintf("usage: drinklog %s <YYYY-MM-DD>", cmd))
	}
	date, err := tracker.ParseDate(a[0])
	if err != nil {
		return tracker.Date{}, r.exit(err)
	}
	return date, 0
}

func (r *Runner) cmdAdd(ctx context.Context, a []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dateFlag := fs.String("date", "", "entry date (YYYY-MM-DD)")
	if err := fs.Parse(a); err != nil {
		return r.usage("add: " + err.Error())
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return r.usage("usage: drinklog add [-date YYYY-MM-DD] <type> <ounces>")
	}

	date := r.today()
	if *dateFlag != "" {
		d, err := tracker.ParseDate(*dateFlag)
		if err != nil {
			return r.exit(err)
		}
		date = d
	}

	kind, err := tracker.ValidateType(strings.Join(rest[:len(rest)-1], " "))
	if err != nil {
		return r.exit(err)
	}
	quantity, err := tracker.ParseQuantity(rest[len(rest)-1])
	if err != nil {
		return r.exit(err)
	}
	return r.exit(r.insert(ctx, date, kind, quantity))
}

func (r *Runner) cmdHistory(ctx context.Context, a []string) int {
	if len(a) != 2 {
		return r.usage("usage: drinklog history <start> <end>")
	}
	start, err := tracker.ParseDate(a[0])
	if err != nil {
		return r.exit(err)
	}
	end, err := tracker.ParseDate(a[1])
	if err != nil {
		return r.exit(err)
	}
	return r.exit(r.history(ctx, start, end))
}

func (r *Runner) cmdRemove(ctx context.Context, a []string) int {
	if len(a) != 1 {
		return r.usage("usage: drinklog rm <id>")
	}
	id, err := tracker.ParseEntryID(a[0])
	if err != nil {
		return r.exit(err)
	}
	return r.exit(r.remove(ctx, id))
}

func (r *Runner) cmdClear(ctx context.Context, a []string) int {
	const usage = "usage: drinklog clear day <date> | week <date> | all -yes"
	if len(a) != 2 {
		return r.usage(usage)
	}

	switch a[0] {
	case "day", "week":
		date, err := tracker.ParseDate(a[1])
		if err != nil {
			return r.exit(err)
		}
		if a[0] == "day" {
			return r.exit(r.clearDay(ctx, date))
		}
		return r.exit(r.clearWeek(ctx, date))
	case "all":
		if a[1] != "-yes" {
			return r.usage(usage)
		}
		return r.exit(r.clearAll(ctx))
	default:
		return r.usage(usage)
	}
}

func (r *Runner) cmdExport(ctx context.Context, a []string) int {
	if len(a) < 1 || len(a) > 2 {
		return r.usage("usage: drinklog export <csv|xlsx|json> [path]")
	}
	format, err := export.ParseFormat(a[0])
	if err != nil {
		return r.exit(err)
	}
	dst := ""
	if len(a) == 2 {
		dst = a[1]
	}
	return r.exit(r.exportTo(ctx, format, dst))
}
