// Package courttest provides an in-memory court.Page for tests.
package courttest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/zalepa/ecourts/config"
	"github.com/zalepa/ecourts/court"
)

// Page serves fixed markup and dropdown options. Every call is appended to
// Calls as "method arg..." so tests can assert ordering.
type Page struct {
	Markup  string
	Options map[string][]string
	Links   []string

	NavigateErr error
	HTMLErr     error
	// OnClick runs after ClickFirst records the click.
	OnClick func(a court.Anchor)

	Calls   []string
	Values  map[string]string
	Clicked []string
	Pauses  []time.Duration
	Closes  int
}

// NewPage returns a Page that offers the default court in its dropdowns and
// the cause-list link, and renders markup.
func NewPage(markup string) *Page {
	return &Page{
		Markup: markup,
		Options: map[string][]string{
			court.StateSelectID:    {"Select State", config.DefaultCourt.State, "KERALA"},
			court.DistrictSelectID: {"Select District", config.DefaultCourt.District},
			court.ComplexSelectID:  {"Select Court Complex", config.DefaultCourt.Complex},
		},
		Links:  []string{court.CauseListLink},
		Values: make(map[string]string),
	}
}

func (p *Page) record(format string, args ...any) {
	p.Calls = append(p.Calls, fmt.Sprintf(format, args...))
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.record("navigate %s", url)
	return p.NavigateErr
}

func (p *Page) SelectOption(ctx context.Context, id, label string) error {
	p.record("select %s %s", id, label)
	labels, ok := p.Options[id]
	if !ok {
		return fmt.Errorf("#%s: %w", id, court.ErrElementNotFound)
	}
	if !slices.Contains(labels, label) {
		return fmt.Errorf("#%s %q: %w", id, label, court.ErrOptionNotFound)
	}
	return nil
}

func (p *Page) ClickLink(ctx context.Context, text string) error {
	p.record("click-link %s", text)
	for _, l := range p.Links {
		if strings.Contains(l, text) {
			return nil
		}
	}
	return fmt.Errorf("link %q: %w", text, court.ErrElementNotFound)
}

func (p *Page) SetValue(ctx context.Context, id, value string) error {
	p.record("set %s %s", id, value)
	if p.Values == nil {
		p.Values = make(map[string]string)
	}
	p.Values[id] = value
	return nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	p.record("html")
	return p.Markup, p.HTMLErr
}

// ClickFirst only understands court.PDFLinkXPath, which it evaluates against
// Markup with court.FindPDFLinks. Clicked gets the href of the match.
func (p *Page) ClickFirst(ctx context.Context, xpath string) (court.Anchor, bool, error) {
	p.record("click-first")
	if xpath != court.PDFLinkXPath {
		return court.Anchor{}, false, fmt.Errorf("courttest: unsupported xpath %q", xpath)
	}
	links, err := court.FindPDFLinks(p.Markup)
	if err != nil || len(links) == 0 {
		return court.Anchor{}, false, err
	}
	a := links[0]
	p.Clicked = append(p.Clicked, a.Href)
	if p.OnClick != nil {
		p.OnClick(a)
	}
	return a, true, nil
}

func (p *Page) Pause(ctx context.Context, d time.Duration) error {
	p.Pauses = append(p.Pauses, d)
	return ctx.Err()
}

func (p *Page) Close() error {
	p.Closes++
	return nil
}
