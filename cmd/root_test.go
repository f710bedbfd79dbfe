package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalepa/ecourts/config"
	"github.com/zalepa/ecourts/court"
	"github.com/zalepa/ecourts/court/courttest"
)

// leapDay is the fixed "now" for orchestrator tests.
var leapDay = time.Date(2024, 2, 29, 9, 30, 0, 0, time.Local)

type harness struct {
	runner *Runner
	stdout bytes.Buffer
	stderr bytes.Buffer
	page   *courttest.Page
	opens  int
	dir    string
}

func newHarness(t *testing.T, markup string) *harness {
	t.Helper()
	h := &harness{page: courttest.NewPage(markup), dir: t.TempDir()}
	h.runner = &Runner{
		Open: func(ctx context.Context, cfg config.Config) (Session, error) {
			h.opens++
			return h.page, nil
		},
		Now:    func() time.Time { return leapDay },
		Stdout: &h.stdout,
		Stderr: &h.stderr,
	}
	return h
}

func (h *harness) run(args ...string) error {
	root := NewRootCommand(h.runner)
	root.SetArgs(append(args,
		"--config", filepath.Join(h.dir, "absent.json5"),
		"--output-dir", h.dir,
	))
	return root.ExecuteContext(context.Background())
}

func (h *harness) readFile(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestCheckCaseListedToday(t *testing.T) {
	h := newHarness(t, `<table><tr><td>1</td><td>CA/123/2023</td></tr></table>`)

	require.NoError(t, h.run("--check-case", "CA", "123", "2023", "--today"))

	want := `{
  "case_input": "CA/123/2023",
  "date": "29-02-2024",
  "is_listed": true,
  "details": "Details are visible on the cause list page."
}`
	assert.JSONEq(t, want, h.readFile(t, "case_check_result_29-02-2024.json"))
	assert.JSONEq(t, want, h.stdout.String())
	assert.Equal(t, "29-02-2024", h.page.Values[court.DateInputID])
	assert.Equal(t, 1, h.opens)
	assert.Equal(t, 1, h.page.Closes)
	assert.Equal(t, 1, strings.Count(h.stderr.String(), "✓ case is listed"))
}

func TestCheckCaseTomorrowNotListed(t *testing.T) {
	h := newHarness(t, `<td>CA/124/2023</td>`)

	require.NoError(t, h.run("--check-case", "CA", "123", "2023", "--tomorrow"))

	assert.JSONEq(t, `{"case_input":"CA/123/2023","date":"01-03-2024","is_listed":false}`,
		h.readFile(t, "case_check_result_01-03-2024.json"))
	assert.NoFileExists(t, filepath.Join(h.dir, "case_check_result_29-02-2024.json"))
	assert.Equal(t, 1, strings.Count(h.stderr.String(), "✗ case is not listed"))
}

func TestCheckCaseDefaultsToToday(t *testing.T) {
	h := newHarness(t, `<td>OS/7/2024</td>`)

	require.NoError(t, h.run("--check-case", "OS", "7", "2024"))

	assert.FileExists(t, filepath.Join(h.dir, "case_check_result_29-02-2024.json"))
}

func TestTomorrowWinsOverToday(t *testing.T) {
	h := newHarness(t, ``)

	require.NoError(t, h.run("--check-case", "CA", "1", "2024", "--today", "--tomorrow"))

	assert.FileExists(t, filepath.Join(h.dir, "case_check_result_01-03-2024.json"))
}

func TestCauseListTodayNoPDF(t *testing.T) {
	h := newHarness(t, `<a href="/help">Help</a>`)

	require.NoError(t, h.run("--causelist-today"))

	assert.JSONEq(t, `{"date":"29-02-2024","status":"No PDF link found"}`,
		h.readFile(t, "causelist_download_summary_29-02-2024.json"))
	assert.Equal(t, 1, h.page.Closes)
}

func TestCauseListTodayClicksPDF(t *testing.T) {
	h := newHarness(t, `<a href="/x">Home</a><a href="/lists/cl.pdf">Cause List</a>`)
	h.page.OnClick = func(court.Anchor) {
		require.NoError(t, os.WriteFile(filepath.Join(h.dir, "cl.pdf"), []byte("%PDF"), 0o644))
	}

	require.NoError(t, h.run("--causelist-today"))

	assert.Equal(t, []string{"/lists/cl.pdf"}, h.page.Clicked)
	assert.JSONEq(t, `{
		"date": "29-02-2024",
		"status": "Download Initiated",
		"output_dir": "`+h.dir+`",
		"link": "/lists/cl.pdf",
		"files": ["cl.pdf"]
	}`, h.readFile(t, "causelist_download_summary_29-02-2024.json"))
}

func TestCauseListTodayFailureWritesSummary(t *testing.T) {
	h := newHarness(t, `<a href="/lists/cl.pdf">PDF</a>`)
	h.page.Links = nil

	require.NoError(t, h.run("--causelist-today"))

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(h.readFile(t, "causelist_download_summary_29-02-2024.json")), &summary))
	assert.Equal(t, "Failed", summary["status"])
	assert.Contains(t, summary["error"], "open cause list by court/judge")
	assert.Empty(t, h.page.Clicked)
	assert.Equal(t, 1, h.page.Closes)
}

func TestNoTaskSkipsBrowser(t *testing.T) {
	h := newHarness(t, ``)

	require.NoError(t, h.run())

	assert.Equal(t, noTaskMessage+"\n", h.stdout.String())
	assert.Zero(t, h.opens)
}

func TestCheckCaseWrongArgumentCount(t *testing.T) {
	h := newHarness(t, ``)

	err := h.run("--check-case", "CA", "123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--check-case needs TYPE NUMBER YEAR")
	assert.Zero(t, h.opens)
	assert.NotContains(t, h.stderr.String(), "Error:")

	assert.Error(t, newHarness(t, ``).run("stray"))
}

func TestSelectionFailureWritesNothing(t *testing.T) {
	h := newHarness(t, `<td>CA/123/2023</td>`)

	require.NoError(t, h.run("--check-case", "CA", "123", "2023", "--state", "NOWHERE"))

	entries, err := os.ReadDir(h.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Contains(t, h.stderr.String(), "✗ aborted")
	assert.Equal(t, 1, h.page.Closes)
}

func TestBothTasksWarnOnCourtMismatch(t *testing.T) {
	h := newHarness(t, `<td>CA/123/2023</td>`)

	require.NoError(t, h.run("--check-case", "CA", "123", "2023", "--district", "ELSEWHERE", "--causelist-today"))

	// The check aborts on the unknown district; the download uses the
	// configured court and still writes its summary.
	assert.NoFileExists(t, filepath.Join(h.dir, "case_check_result_29-02-2024.json"))
	assert.FileExists(t, filepath.Join(h.dir, "causelist_download_summary_29-02-2024.json"))
	assert.Contains(t, h.stderr.String(), "⚠ cause list is downloaded for the configured court")
	assert.Contains(t, h.page.Calls, "select "+court.DistrictSelectID+" "+config.DefaultCourt.District)
	assert.Equal(t, 1, h.page.Closes)
}

func TestOpenFailure(t *testing.T) {
	h := newHarness(t, ``)
	h.runner.Open = func(ctx context.Context, cfg config.Config) (Session, error) {
		return nil, errors.New("chrome not found")
	}

	err := h.run("--causelist-today")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open browser: chrome not found")
	assert.NoFileExists(t, filepath.Join(h.dir, "causelist_download_summary_29-02-2024.json"))
}

func TestHeadlessFlagOverridesConfig(t *testing.T) {
	h := newHarness(t, ``)
	var got config.Config
	h.runner.Open = func(ctx context.Context, cfg config.Config) (Session, error) {
		got = cfg
		return h.page, nil
	}

	require.NoError(t, h.run("--causelist-today", "--headless=false"))

	assert.False(t, got.Headless)
	assert.Equal(t, h.dir, got.OutputDir)
}
