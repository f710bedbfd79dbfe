// Package court drives the e-Courts cause-list workflow: court selection,
// case listing checks and cause-list downloads. It talks to the browser only
// through the Page interface.
package court

import (
	"time"
)

// DateLayout is the DD-MM-YYYY format the cause-list date field expects.
const DateLayout = "02-01-2006"

// CaseQuery identifies a case by type (or CNR token), number and year.
type CaseQuery struct {
	Type   string
	Number string
	Year   string
}

// Display joins the query the way the cause list prints it. Parts are used
// verbatim.
func (q CaseQuery) Display() string {
	return q.Type + "/" + q.Number + "/" + q.Year
}

// FormatDate renders t's calendar date as DD-MM-YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ResolveDate returns the listing date for now, or the following calendar
// day when tomorrow is set.
func ResolveDate(now time.Time, tomorrow bool) string {
	if tomorrow {
		return FormatDate(now.AddDate(0, 0, 1))
	}
	return FormatDate(now)
}
