// Package browser owns the Chrome instance used to drive the cause-list
// site. A Session implements court.Page.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"

	"github.com/zalepa/ecourts/config"
	"github.com/zalepa/ecourts/court"
)

// Session is one browser with one tab. Close it exactly once; extra calls
// are no-ops.
type Session struct {
	cfg        config.Config
	ctx        context.Context
	cancel     context.CancelFunc
	cancelExec context.CancelFunc
	profileDir string

	closeOnce sync.Once
	closeErr  error
}

// Open creates the output directory, launches Chrome with downloads routed
// into it and returns the session.
func Open(ctx context.Context, cfg config.Config) (*Session, error) {
	downloadDir, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	profileDir, err := os.MkdirTemp("", "ecourts-profile-")
	if err != nil {
		return nil, fmt.Errorf("create browser profile: %w", err)
	}
	if err := writePreferences(profileDir, downloadDir); err != nil {
		os.RemoveAll(profileDir)
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserDataDir(profileDir),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1440, 900),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	execCtx, cancelExec := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancel := chromedp.NewContext(execCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			slog.Debug(fmt.Sprintf(format, args...), "source", "chrome")
		}),
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			slog.Debug(fmt.Sprintf(format, args...), "source", "chrome", "level", "error")
		}),
	)

	s := &Session{
		cfg:        cfg,
		ctx:        tabCtx,
		cancel:     cancel,
		cancelExec: cancelExec,
		profileDir: profileDir,
	}

	// The first Run starts Chrome.
	if err := chromedp.Run(tabCtx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(downloadDir).
			WithEventsEnabled(true),
	); err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	slog.Info("▶ browser started", "headless", cfg.Headless, "downloads", downloadDir)
	return s, nil
}

// Close shuts Chrome down and removes the temporary profile.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.cancelExec()
		s.closeErr = os.RemoveAll(s.profileDir)
		slog.Info("browser closed")
	})
	return s.closeErr
}

// run executes actions on the tab under timeout. Cancelling ctx aborts the
// actions.
func (s *Session) run(ctx context.Context, timeout time.Duration, sentinel error, what string, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return runError(ctx, runCtx, chromedp.Run(runCtx, actions...), what, timeout, sentinel)
}

// runError classifies the result of a chromedp.Run under runCtx. A cancelled
// caller ctx wins over everything else; an expired wait is reported as
// sentinel.
func runError(ctx, runCtx context.Context, err error, what string, timeout time.Duration, sentinel error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%s: %w", what, ctx.Err())
	}
	if isTimeout(err) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s after %s: %w", what, timeout, sentinel)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, chromedp.ErrPollingTimeout)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	slog.Debug("navigate", "url", url)
	return s.run(ctx, s.cfg.PageLoadTimeout.Std(), court.ErrNavigationTimeout, "navigate "+url,
		chromedp.Navigate(url),
	)
}

func (s *Session) SelectOption(ctx context.Context, id, label string) error {
	wait := s.cfg.WaitTimeout.Std()
	sel := "#" + id
	if err := s.run(ctx, wait, court.ErrElementNotFound, "wait for "+sel,
		chromedp.WaitVisible(sel, chromedp.ByID),
	); err != nil {
		return err
	}

	// Dependent dropdowns are filled asynchronously; wait until the label
	// is on offer before choosing it.
	if err := s.run(ctx, wait+time.Second, court.ErrOptionNotFound, fmt.Sprintf("%s option %q", sel, label),
		chromedp.Poll(optionPresentJS(id, label), nil,
			chromedp.WithPollingInterval(s.cfg.PollInterval.Std()),
			chromedp.WithPollingTimeout(wait),
		),
	); err != nil {
		return err
	}

	var selected bool
	if err := s.run(ctx, wait, court.ErrElementNotFound, "select "+sel,
		chromedp.Evaluate(selectOptionJS(id, label), &selected),
	); err != nil {
		return err
	}
	if !selected {
		return fmt.Errorf("%s option %q: %w", sel, label, court.ErrOptionNotFound)
	}
	return nil
}

func (s *Session) ClickLink(ctx context.Context, text string) error {
	xpath := "//a[contains(text(), " + xpathLiteral(text) + ")]"
	return s.run(ctx, s.cfg.WaitTimeout.Std(), court.ErrElementNotFound, fmt.Sprintf("link %q", text),
		chromedp.WaitVisible(xpath, chromedp.BySearch),
		chromedp.Click(xpath, chromedp.BySearch),
	)
}

func (s *Session) SetValue(ctx context.Context, id, value string) error {
	sel := "#" + id
	return s.run(ctx, s.cfg.WaitTimeout.Std(), court.ErrElementNotFound, "set "+sel,
		chromedp.WaitVisible(sel, chromedp.ByID),
		chromedp.SetValue(sel, value, chromedp.ByID),
	)
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	var markup string
	err := s.run(ctx, s.cfg.WaitTimeout.Std(), court.ErrElementNotFound, "read page",
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	)
	return markup, err
}

// clickResult is what clickFirstJS reports back.
type clickResult struct {
	Found bool   `json:"found"`
	Text  string `json:"text"`
	Href  string `json:"href"`
}

func (s *Session) ClickFirst(ctx context.Context, xpath string) (court.Anchor, bool, error) {
	var res clickResult
	if err := s.run(ctx, s.cfg.WaitTimeout.Std(), court.ErrElementNotFound, "click first match",
		chromedp.Evaluate(clickFirstJS(xpath), &res),
	); err != nil {
		return court.Anchor{}, false, err
	}
	if !res.Found {
		return court.Anchor{}, false, nil
	}
	return court.Anchor{Text: res.Text, Href: res.Href}, true, nil
}

func (s *Session) Pause(ctx context.Context, d time.Duration) error {
	return sleep(ctx, d)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// writePreferences seeds the Chrome profile so downloads land in dir
// without a prompt and PDFs are saved rather than opened in the viewer.
func writePreferences(profileDir, downloadDir string) error {
	prefs := map[string]any{
		"download": map[string]any{
			"default_directory":   downloadDir,
			"prompt_for_download": false,
			"directory_upgrade":   true,
		},
		"plugins": map[string]any{
			"always_open_pdf_externally": true,
		},
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	dir := filepath.Join(profileDir, "Default")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Preferences"), data, 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}

// xpathLiteral quotes s for use inside an XPath 1.0 expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}
