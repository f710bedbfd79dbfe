package court

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zalepa/ecourts/config"
)

// DownloadCauseList selects cfg.Court, opens the cause list for date and
// clicks the first PDF-looking link so the browser saves the file into
// cfg.OutputDir. It always uses the configured court, whatever court an
// earlier step selected. Completion of the download is not confirmed.
func DownloadCauseList(ctx context.Context, page Page, cfg config.Config, date string) DownloadResult {
	res := DownloadResult{Date: date}
	slog.Info("▶ downloading cause list", "date", date)

	if err := SelectCourt(ctx, page, cfg, cfg.Court); err != nil {
		res.Outcome = DownloadFailed{Status: StatusSelectionFailed, Err: err}
		return res
	}

	if _, err := openCauseList(ctx, page, cfg, date); err != nil {
		res.Outcome = DownloadFailed{Err: err}
		return res
	}

	before := listFiles(cfg.OutputDir)
	link, ok, err := page.ClickFirst(ctx, PDFLinkXPath)
	if err != nil {
		res.Outcome = DownloadFailed{Err: &StepError{Step: "click PDF link", Err: err}}
		return res
	}
	if !ok {
		slog.Warn("✗ no PDF link on the cause list page", "date", date)
		res.Outcome = NoPDFLink{}
		return res
	}
	slog.Info("clicked PDF link", "href", link.Href, "text", link.Text)
	if err := page.Pause(ctx, cfg.DownloadPause.Std()); err != nil {
		res.Outcome = DownloadFailed{Err: &StepError{Step: "wait for download", Err: err}}
		return res
	}

	files := newFiles(before, listFiles(cfg.OutputDir))
	slog.Info("✓ download initiated", "dir", cfg.OutputDir, "new_files", len(files))
	res.Outcome = DownloadStarted{OutputDir: cfg.OutputDir, Href: link.Href, Files: files}
	return res
}

// listFiles returns the names of the PDF files in dir. Partial downloads
// (.crdownload) are not PDFs yet. An unreadable directory yields an empty set.
func listFiles(dir string) map[string]bool {
	names := make(map[string]bool)
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("list output dir", "dir", dir, "err", err)
		return names
	}
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			names[e.Name()] = true
		}
	}
	return names
}

func newFiles(before, after map[string]bool) []string {
	var added []string
	for name := range after {
		if !before[name] {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	return added
}
