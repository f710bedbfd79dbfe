package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zalepa/ecourts/browser"
	"github.com/zalepa/ecourts/config"
	"github.com/zalepa/ecourts/court"
)

const noTaskMessage = "No task specified. Use --check-case or --causelist-today."

// Session is a court.Page backed by a browser that must be closed.
type Session interface {
	court.Page
	Close() error
}

// Runner holds what the commands need from the outside world.
type Runner struct {
	Open   func(ctx context.Context, cfg config.Config) (Session, error)
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultRunner launches Chrome and writes to the process's stdio.
func DefaultRunner() *Runner {
	return &Runner{
		Open: func(ctx context.Context, cfg config.Config) (Session, error) {
			s, err := browser.Open(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

type rootOptions struct {
	configPath string
	outputDir  string
	verbose    bool

	checkCase      string
	today          bool
	tomorrow       bool
	causelistToday bool

	state    string
	district string
	complex  string
	headless bool
}

// NewRootCommand builds the ecourts command tree around r.
func NewRootCommand(r *Runner) *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:   "ecourts [--check-case TYPE NUMBER YEAR [--today|--tomorrow]] [--causelist-today]",
		Short: "ecourts checks e-Courts cause lists for a case and downloads the day's cause list.",
		Example: `  ecourts --check-case CA 123 2023 --today
  ecourts --check-case OS 45 2024 --tomorrow --district CHITTOOR
  ecourts --causelist-today --output-dir ./lists`,
		// ExecuteContext prints the error once.
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if o.checkCase != "" && len(args) != 2 {
				return fmt.Errorf("--check-case needs TYPE NUMBER YEAR, got %d value(s) after TYPE", len(args))
			}
			if o.checkCase == "" && len(args) > 0 {
				return fmt.Errorf("unexpected arguments %q", args)
			}
			return nil
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(r.Stderr, o.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return r.runTasks(cmd, o, args)
		},
	}
	root.SetOut(r.Stdout)
	root.SetErr(r.Stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "ecourts.json5", "config file (JSON5); a sibling .local file overrides it")
	pf.StringVar(&o.outputDir, "output-dir", "", "directory for results and downloads (overrides config)")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")

	f := root.Flags()
	f.StringVar(&o.checkCase, "check-case", "", "case TYPE; NUMBER and YEAR follow as arguments")
	f.BoolVar(&o.today, "today", false, "check the listing for today (default)")
	f.BoolVar(&o.tomorrow, "tomorrow", false, "check the listing for tomorrow")
	f.BoolVar(&o.causelistToday, "causelist-today", false, "download today's cause list PDF")
	f.StringVar(&o.state, "state", "", "state for --check-case (overrides config)")
	f.StringVar(&o.district, "district", "", "district for --check-case (overrides config)")
	f.StringVar(&o.complex, "complex", "", "court complex for --check-case (overrides config)")
	f.BoolVar(&o.headless, "headless", true, "run Chrome without a window")

	root.AddCommand(newParseCommand(r), newHistoryCommand(r, o))
	return root
}

// ExecuteContext runs the command tree with the default runner and exits
// non-zero on error.
func ExecuteContext(ctx context.Context) {
	if err := NewRootCommand(DefaultRunner()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h).With("run", uuid.NewString()))
}

// loadConfig reads the config file and applies the flags that override it.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if o.outputDir != "" {
		cfg.OutputDir = o.outputDir
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless = o.headless
	}
	return cfg, nil
}

// caseCourt is the court for --check-case: the configured court with any
// flag overrides.
func (o *rootOptions) caseCourt(cfg config.Config) config.Court {
	c := cfg.Court
	if o.state != "" {
		c.State = o.state
	}
	if o.district != "" {
		c.District = o.district
	}
	if o.complex != "" {
		c.Complex = o.complex
	}
	return c
}

func (r *Runner) runTasks(cmd *cobra.Command, o *rootOptions, args []string) (err error) {
	if o.checkCase == "" && !o.causelistToday {
		fmt.Fprintln(r.Stdout, noTaskMessage)
		return nil
	}

	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	ctx := cmd.Context()
	session, err := r.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close browser: %w", cerr))
		}
	}()

	now := r.Now()
	caseCourt := o.caseCourt(cfg)

	if o.checkCase != "" {
		q := court.CaseQuery{Type: o.checkCase, Number: args[0], Year: args[1]}
		if err := r.checkCase(ctx, session, cfg, caseCourt, q, court.ResolveDate(now, o.tomorrow)); err != nil {
			return err
		}
	}

	if o.causelistToday {
		if caseCourt != cfg.Court {
			slog.Warn("⚠ cause list is downloaded for the configured court, not the --state/--district/--complex flags",
				"court", cfg.Court.Complex, "flags_court", caseCourt.Complex)
		}
		if err := r.downloadCauseList(ctx, session, cfg, court.FormatDate(now)); err != nil {
			return err
		}
	}
	return nil
}
