package court

import (
	"context"
	"log/slog"
	"strings"

	"github.com/zalepa/ecourts/config"
)

// CheckListing reports whether q appears on the cause list for date. The
// court must already be selected on page. A case counts as listed when its
// display string occurs anywhere in the rendered markup; the table itself is
// not parsed. Errors are returned inside the result as Failed.
func CheckListing(ctx context.Context, page Page, cfg config.Config, q CaseQuery, date string) CheckResult {
	display := q.Display()
	res := CheckResult{Case: display, Date: date}
	slog.Info("▶ checking case listing", "case", display, "date", date)

	markup, err := openCauseList(ctx, page, cfg, date)
	if err != nil {
		res.Outcome = Failed{Err: err}
		return res
	}

	if IsListed(markup, q) {
		slog.Info("✓ case is listed", "case", display, "date", date)
		res.Outcome = Listed{Details: ListedDetails}
	} else {
		slog.Info("✗ case is not listed", "case", display, "date", date)
		res.Outcome = NotListed{}
	}
	return res
}

// IsListed reports whether markup contains q's display string verbatim.
func IsListed(markup string, q CaseQuery) bool {
	return strings.Contains(markup, q.Display())
}

// openCauseList switches to the by-court/judge view, injects date into the
// date field and returns the page markup once the table has had time to
// refresh.
func openCauseList(ctx context.Context, page Page, cfg config.Config, date string) (string, error) {
	if err := page.ClickLink(ctx, CauseListLink); err != nil {
		return "", &StepError{Step: "open cause list by court/judge", Err: err}
	}
	if err := page.SetValue(ctx, DateInputID, date); err != nil {
		return "", &StepError{Step: "set listing date", Err: err}
	}
	if err := page.Pause(ctx, cfg.ResultsPause.Std()); err != nil {
		return "", &StepError{Step: "wait for cause list", Err: err}
	}
	markup, err := page.HTML(ctx)
	if err != nil {
		return "", &StepError{Step: "read cause list", Err: err}
	}
	return markup, nil
}
