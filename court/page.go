package court

import (
	"context"
	"time"
)

// Element ids and link text of the cause-list page.
const (
	StateSelectID    = "state_code"
	DistrictSelectID = "district_code"
	ComplexSelectID  = "court_complex_code"
	DateInputID      = "from_date_cal"
	CauseListLink    = "Cause List by Court/Judge"
)

// Page is the slice of browser behaviour the workflow needs. Waits are
// bounded by the implementation; a wait that expires returns an error
// wrapping ErrElementNotFound, ErrOptionNotFound or ErrNavigationTimeout.
type Page interface {
	// Navigate loads url and waits for the page load.
	Navigate(ctx context.Context, url string) error
	// SelectOption waits for the <select> with id to be visible and offer an
	// option whose visible text is label, then selects it.
	SelectOption(ctx context.Context, id, label string) error
	// ClickLink waits for an anchor whose text contains text and clicks it.
	ClickLink(ctx context.Context, text string) error
	// SetValue waits for the element with id to be visible and assigns its
	// value property directly.
	SetValue(ctx context.Context, id, value string) error
	// HTML returns the rendered document markup.
	HTML(ctx context.Context) (string, error)
	// ClickFirst clicks the first element in document order that the XPath
	// expression matches in the live document. ok is false when nothing
	// matches.
	ClickFirst(ctx context.Context, xpath string) (a Anchor, ok bool, err error)
	// Pause blocks for d or until ctx is done.
	Pause(ctx context.Context, d time.Duration) error
}
