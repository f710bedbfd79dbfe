package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/zalepa/ecourts/config"
	"github.com/zalepa/ecourts/court"
)

// listingRecord is one saved check result.
type listingRecord struct {
	date   time.Time
	result court.CheckResult
}

func newHistoryCommand(r *Runner, o *rootOptions) *cobra.Command {
	var caseFilter, pdfOut string
	c := &cobra.Command{
		Use:   "history [dir] [--case TYPE/NUMBER/YEAR] [--pdf output.pdf]",
		Short: "Shows saved case check results over time.",
		Example: `  ecourts history
  ecourts history ./scraper_output --case CA/123/2023
  ecourts history --pdf listings.pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			dir := o.outputDir
			if len(args) > 0 {
				dir = args[0]
			}
			if dir == "" {
				cfg, err := config.Load(o.configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				dir = cfg.OutputDir
			}
			return r.history(dir, caseFilter, pdfOut)
		},
	}
	c.Flags().StringVar(&caseFilter, "case", "", "only show this case")
	c.Flags().StringVar(&pdfOut, "pdf", "", "output PDF file path (omit for terminal output)")
	return c
}

func (r *Runner) history(dir, caseFilter, pdfOut string) error {
	records, err := loadRecords(dir)
	if err != nil {
		return fmt.Errorf("loading results: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no case check results found in %s", dir)
	}

	series := groupByCase(records, caseFilter)
	if len(series) == 0 {
		return fmt.Errorf("no results for case %s", caseFilter)
	}

	if pdfOut != "" {
		if err := renderPDF(pdfOut, series); err != nil {
			return fmt.Errorf("writing PDF: %w", err)
		}
		fmt.Fprintf(r.Stdout, "wrote %s\n", pdfOut)
		return nil
	}
	renderTables(r.Stdout, series)
	return nil
}

var resultFilePattern = regexp.MustCompile(`^case_check_result_(\d{2}-\d{2}-\d{4})\.json$`)

func loadRecords(dir string) ([]listingRecord, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "case_check_result_*.json"))
	if err != nil {
		return nil, err
	}

	var records []listingRecord
	for _, path := range matches {
		m := resultFilePattern.FindStringSubmatch(filepath.Base(path))
		if m == nil {
			continue
		}
		date, err := time.Parse(court.DateLayout, m[1])
		if err != nil {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var res court.CheckResult
		if err := json.Unmarshal(data, &res); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		records = append(records, listingRecord{date: date, result: res})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].date.Before(records[j].date)
	})
	return records, nil
}

// groupByCase splits records per case, keeping date order. An empty filter
// keeps every case.
func groupByCase(records []listingRecord, filter string) map[string][]listingRecord {
	series := make(map[string][]listingRecord)
	for _, rec := range records {
		name := rec.result.Case
		if filter != "" && !strings.EqualFold(name, filter) {
			continue
		}
		series[name] = append(series[name], rec)
	}
	return series
}

func sortedCases(series map[string][]listingRecord) []string {
	names := make([]string, 0, len(series))
	for k := range series {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func statusLabel(o court.Outcome) string {
	switch v := o.(type) {
	case court.Listed:
		return "listed"
	case court.NotListed:
		return "not listed"
	case court.Failed:
		return "error: " + v.Err.Error()
	}
	return "unknown"
}

// strip renders one glyph per check: █ listed, ▁ not listed, ✗ error.
func strip(recs []listingRecord) string {
	var sb strings.Builder
	for _, rec := range recs {
		switch rec.result.Outcome.(type) {
		case court.Listed:
			sb.WriteRune('█')
		case court.NotListed:
			sb.WriteRune('▁')
		default:
			sb.WriteRune('✗')
		}
	}
	return sb.String()
}

func renderTables(w io.Writer, series map[string][]listingRecord) {
	for _, name := range sortedCases(series) {
		recs := series[name]
		listed := 0
		for _, rec := range recs {
			if _, ok := rec.result.Outcome.(court.Listed); ok {
				listed++
			}
		}

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle(name)
		t.AppendHeader(table.Row{"Date", "Status"})
		for _, rec := range recs {
			t.AppendRow(table.Row{court.FormatDate(rec.date), statusLabel(rec.result.Outcome)})
		}
		t.AppendFooter(table.Row{strip(recs), fmt.Sprintf("listed %d of %d", listed, len(recs))})
		t.SetStyle(table.StyleRounded)
		t.Render()
	}
}
