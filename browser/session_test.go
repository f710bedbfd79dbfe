package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalepa/ecourts/config"
	"github.com/zalepa/ecourts/court"
)

func TestXPathLiteral(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Cause List by Court/Judge", "'Cause List by Court/Judge'"},
		{"Judge's list", `"Judge's list"`},
		{`a'b"c`, `concat('a', "'", 'b"c')`},
	}
	for _, tt := range tests {
		if got := xpathLiteral(tt.in); got != tt.want {
			t.Errorf("xpathLiteral(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestWritePreferences(t *testing.T) {
	profile := t.TempDir()
	require.NoError(t, writePreferences(profile, "/data/out"))

	data, err := os.ReadFile(filepath.Join(profile, "Default", "Preferences"))
	require.NoError(t, err)

	var prefs struct {
		Download struct {
			DefaultDirectory  string `json:"default_directory"`
			PromptForDownload bool   `json:"prompt_for_download"`
			DirectoryUpgrade  bool   `json:"directory_upgrade"`
		} `json:"download"`
		Plugins struct {
			AlwaysOpenPDFExternally bool `json:"always_open_pdf_externally"`
		} `json:"plugins"`
	}
	require.NoError(t, json.Unmarshal(data, &prefs))
	assert.Equal(t, "/data/out", prefs.Download.DefaultDirectory)
	assert.False(t, prefs.Download.PromptForDownload)
	assert.True(t, prefs.Download.DirectoryUpgrade)
	assert.True(t, prefs.Plugins.AlwaysOpenPDFExternally)
}

func TestScriptsQuoteArguments(t *testing.T) {
	js := selectOptionJS("state_code", `O'NEIL "X"`)
	assert.Contains(t, js, `document.getElementById("state_code")`)
	assert.Contains(t, js, `"O'NEIL \"X\""`)
	assert.Contains(t, clickFirstJS(court.PDFLinkXPath), `document.evaluate("//a[contains(translate(., 'pdf', 'PDF'), 'PDF')]`)
	assert.Contains(t, optionPresentJS("district_code", "CHITTOOR"), `o.text === "CHITTOOR"`)
}

func TestRunError(t *testing.T) {
	expired, cancelRun := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelRun()
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	bg := context.Background()
	boom := errors.New("websocket closed")

	tests := []struct {
		name   string
		ctx    context.Context
		runCtx context.Context
		err    error
		want   error
		msg    string
	}{
		{"deadline", bg, bg, context.DeadlineExceeded, court.ErrNavigationTimeout, "navigate / after 1s"},
		{"polling timeout", bg, bg, fmt.Errorf("poll: %w", chromedp.ErrPollingTimeout), court.ErrNavigationTimeout, "after 1s"},
		{"run context expired", bg, expired, context.Canceled, court.ErrNavigationTimeout, "after 1s"},
		{"caller canceled", canceled, expired, context.DeadlineExceeded, context.Canceled, "navigate /: context canceled"},
		{"other", bg, bg, boom, boom, "navigate /: websocket closed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runError(tt.ctx, tt.runCtx, tt.err, "navigate /", time.Second, court.ErrNavigationTimeout)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.msg)
			if tt.want != court.ErrNavigationTimeout {
				assert.NotErrorIs(t, err, court.ErrNavigationTimeout)
			}
		})
	}

	assert.NoError(t, runError(bg, expired, nil, "navigate /", time.Second, court.ErrNavigationTimeout))
}

func TestSleep(t *testing.T) {
	require.NoError(t, sleep(context.Background(), time.Millisecond))
	require.NoError(t, sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
}

// fixtureSite serves a minimal cause-list page with cascading dropdowns.
func fixtureSite(listing string) *httptest.Server {
	page := `<!doctype html><html><body>
<select id="state_code"><option>Select State</option><option value="2">ANDHRA PRADESH</option></select>
<select id="district_code"><option>Select District</option></select>
<select id="court_complex_code"><option>Select Court Complex</option></select>
<a href="#" id="cl" onclick="document.getElementById('list').style.display='block';return false;">Cause List by Court/Judge</a>
<div id="list" style="display:none">
<input id="from_date_cal" type="text">
<table><tr><td>%s</td></tr></table>
<template><a href="/files/stale.pdf">Old PDF</a></template>
<a href="/files/causelist.pdf">Download PDF</a>
</div>
<script>
document.getElementById('state_code').addEventListener('change', () => setTimeout(() => {
	document.getElementById('district_code').add(new Option('CHITTOOR', '5'));
}, 300));
document.getElementById('district_code').addEventListener('change', () => setTimeout(() => {
	document.getElementById('court_complex_code').add(new Option('TIRUPATI', '9'));
}, 300));
</script>
</body></html>`
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, page, listing)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(3 * time.Second):
		case <-r.Context().Done():
			return
		}
		fmt.Fprint(w, "<!doctype html><html><body>late</body></html>")
	})
	mux.HandleFunc("/files/causelist.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="causelist.pdf"`)
		w.Write([]byte("%PDF-1.4\n%EOF\n"))
	})
	return httptest.NewServer(mux)
}

// TestSessionAgainstFixture drives a real Chrome. It only runs when
// ECOURTS_BROWSER_TESTS is set.
func TestSessionAgainstFixture(t *testing.T) {
	if os.Getenv("ECOURTS_BROWSER_TESTS") == "" {
		t.Skip("set ECOURTS_BROWSER_TESTS=1 to run browser tests")
	}
	srv := fixtureSite("CA/123/2023")
	defer srv.Close()

	cfg := config.Default()
	cfg.BaseURL = srv.URL + "/"
	cfg.LandingPath = ""
	cfg.OutputDir = t.TempDir()
	cfg.LandingPause = 0
	cfg.ResultsPause = config.Duration(200 * time.Millisecond)
	cfg.DownloadPause = config.Duration(2 * time.Second)
	cfg.WaitTimeout = config.Duration(5 * time.Second)

	ctx := context.Background()
	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, court.SelectCourt(ctx, s, cfg, config.DefaultCourt))

	res := court.CheckListing(ctx, s, cfg, court.CaseQuery{Type: "CA", Number: "123", Year: "2023"}, "05-01-2024")
	assert.Equal(t, court.Listed{Details: court.ListedDetails}, res.Outcome)

	dl := court.DownloadCauseList(ctx, s, cfg, "05-01-2024")
	started, ok := dl.Outcome.(court.DownloadStarted)
	require.True(t, ok, "outcome = %#v", dl.Outcome)
	assert.Equal(t, "/files/causelist.pdf", started.Href)

	err = s.SelectOption(ctx, court.DistrictSelectID, "NOWHERE")
	assert.ErrorIs(t, err, court.ErrOptionNotFound)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestNavigateTimesOut(t *testing.T) {
	if os.Getenv("ECOURTS_BROWSER_TESTS") == "" {
		t.Skip("set ECOURTS_BROWSER_TESTS=1 to run browser tests")
	}
	srv := fixtureSite("")
	defer srv.Close()

	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.PageLoadTimeout = config.Duration(time.Second)

	ctx := context.Background()
	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	start := time.Now()
	err = s.Navigate(ctx, srv.URL+"/slow")
	assert.ErrorIs(t, err, court.ErrNavigationTimeout)
	assert.Less(t, time.Since(start), 3*time.Second)
}
