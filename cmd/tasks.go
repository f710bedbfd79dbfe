package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/zalepa/ecourts/config"
	"github.com/zalepa/ecourts/court"
)

// checkCase selects c, checks q on date, prints the result and saves it.
// A failed court selection aborts the task without writing a file.
func (r *Runner) checkCase(ctx context.Context, page court.Page, cfg config.Config, c config.Court, q court.CaseQuery, date string) error {
	if err := court.SelectCourt(ctx, page, cfg, c); err != nil {
		slog.Error("✗ aborted: court selection failed", "kind", court.Kind(err), "err", err)
		return nil
	}

	res := court.CheckListing(ctx, page, cfg, q, date)
	if f, ok := res.Outcome.(court.Failed); ok {
		slog.Error("✗ listing check failed", "case", res.Case, "kind", court.Kind(f.Err), "err", f.Err)
	}

	if err := printJSON(r.Stdout, res); err != nil {
		return err
	}
	path := court.CheckResultPath(cfg.OutputDir, date)
	if err := court.WriteJSON(path, res); err != nil {
		return fmt.Errorf("write check result: %w", err)
	}
	slog.Info("results saved", "path", path)
	return nil
}

// downloadCauseList downloads the cause list for date and always writes the
// summary, whatever the outcome.
func (r *Runner) downloadCauseList(ctx context.Context, page court.Page, cfg config.Config, date string) error {
	res := court.DownloadCauseList(ctx, page, cfg, date)
	if f, ok := res.Outcome.(court.DownloadFailed); ok {
		slog.Error("✗ cause list download failed", "status", res.Status(), "kind", court.Kind(f.Err), "err", f.Err)
	}

	if err := printJSON(r.Stdout, res); err != nil {
		return err
	}
	path := court.DownloadSummaryPath(cfg.OutputDir, date)
	if err := court.WriteJSON(path, res); err != nil {
		return fmt.Errorf("write download summary: %w", err)
	}
	slog.Info("download summary saved", "path", path)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("print result: %w", err)
	}
	return nil
}
