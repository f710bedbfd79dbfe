package court

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ListedDetails is reported when a case is found on the cause list. Serial
// number and court name are not extracted from the page.
const ListedDetails = "Details are visible on the cause list page."

// Outcome is the result of a case listing check: Listed, NotListed or
// Failed.
type Outcome interface {
	isOutcome()
}

// Listed means the case string occurs on the cause list page.
type Listed struct {
	Details string
}

// NotListed means the page loaded but the case string is absent.
type NotListed struct{}

// Failed means the check could not finish after the court was selected.
type Failed struct {
	Err error
}

func (Listed) isOutcome()    {}
func (NotListed) isOutcome() {}
func (Failed) isOutcome()    {}

// CheckResult is the outcome of one case listing check.
type CheckResult struct {
	Case    string
	Date    string
	Outcome Outcome
}

type checkJSON struct {
	CaseInput string  `json:"case_input"`
	Date      string  `json:"date"`
	IsListed  *bool   `json:"is_listed,omitempty"`
	Details   string  `json:"details,omitempty"`
	Error     *string `json:"error,omitempty"`
}

func (r CheckResult) MarshalJSON() ([]byte, error) {
	out := checkJSON{CaseInput: r.Case, Date: r.Date}
	switch o := r.Outcome.(type) {
	case Listed:
		out.IsListed = boolPtr(true)
		out.Details = o.Details
	case NotListed:
		out.IsListed = boolPtr(false)
	case Failed:
		out.Error = errString(o.Err)
	default:
		return nil, fmt.Errorf("check result: unknown outcome %T", r.Outcome)
	}
	return json.Marshal(out)
}

func (r *CheckResult) UnmarshalJSON(data []byte) error {
	var in checkJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Case, r.Date = in.CaseInput, in.Date
	switch {
	case in.Error != nil:
		r.Outcome = Failed{Err: errors.New(*in.Error)}
	case in.IsListed != nil && *in.IsListed:
		r.Outcome = Listed{Details: in.Details}
	case in.IsListed != nil:
		r.Outcome = NotListed{}
	default:
		return fmt.Errorf("check result %q: neither is_listed nor error set", in.CaseInput)
	}
	return nil
}

// Download statuses as written to the summary file.
const (
	StatusDownloadStarted = "Download Initiated"
	StatusNoPDFLink       = "No PDF link found"
	StatusSelectionFailed = "Failed court selection"
	StatusDownloadFailed  = "Failed"
)

// DownloadOutcome is the result of a cause-list download: DownloadStarted,
// NoPDFLink or DownloadFailed.
type DownloadOutcome interface {
	isDownloadOutcome()
}

// DownloadStarted means a PDF link was clicked. Files lists PDFs that showed
// up in OutputDir during the download pause; it does not confirm completion.
type DownloadStarted struct {
	OutputDir string
	Href      string
	Files     []string
}

// NoPDFLink means no anchor on the cause list looks like a PDF.
type NoPDFLink struct{}

// DownloadFailed means the download could not be started. Status is
// StatusSelectionFailed for a failed court selection and empty otherwise,
// in which case StatusDownloadFailed is reported.
type DownloadFailed struct {
	Status string
	Err    error
}

func (DownloadStarted) isDownloadOutcome() {}
func (NoPDFLink) isDownloadOutcome()       {}
func (DownloadFailed) isDownloadOutcome()  {}

// DownloadResult is the outcome of one cause-list download.
type DownloadResult struct {
	Date    string
	Outcome DownloadOutcome
}

type downloadJSON struct {
	Date      string   `json:"date"`
	Status    string   `json:"status"`
	OutputDir string   `json:"output_dir,omitempty"`
	Link      string   `json:"link,omitempty"`
	Files     []string `json:"files,omitempty"`
	Error     *string  `json:"error,omitempty"`
}

// Status returns the summary status string.
func (r DownloadResult) Status() string {
	switch o := r.Outcome.(type) {
	case DownloadStarted:
		return StatusDownloadStarted
	case NoPDFLink:
		return StatusNoPDFLink
	case DownloadFailed:
		if o.Status != "" {
			return o.Status
		}
		return StatusDownloadFailed
	}
	return ""
}

func (r DownloadResult) MarshalJSON() ([]byte, error) {
	out := downloadJSON{Date: r.Date, Status: r.Status()}
	switch o := r.Outcome.(type) {
	case DownloadStarted:
		out.OutputDir = o.OutputDir
		out.Link = o.Href
		out.Files = o.Files
	case NoPDFLink:
	case DownloadFailed:
		out.Error = errString(o.Err)
	default:
		return nil, fmt.Errorf("download result: unknown outcome %T", r.Outcome)
	}
	return json.Marshal(out)
}

func boolPtr(b bool) *bool { return &b }

func errString(err error) *string {
	s := "unknown error"
	if err != nil {
		s = err.Error()
	}
	return &s
}
