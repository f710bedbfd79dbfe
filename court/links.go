package court

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PDFLinkXPath matches anchors whose text contains "pdf" in any case, or
// whose href contains ".pdf" in any case.
const PDFLinkXPath = `//a[contains(translate(., 'pdf', 'PDF'), 'PDF')] | //a[contains(translate(@href, 'PDF', 'pdf'), '.pdf')]`

// Anchor is an <a> element of the cause-list page.
type Anchor struct {
	Text string
	Href string
}

// FindPDFLinks applies the PDFLinkXPath test to a markup snapshot and
// returns the matches in document order. Anchors inside <template> are not
// part of the rendered document and are skipped.
func FindPDFLinks(markup string) ([]Anchor, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse cause list markup: %w", err)
	}

	var links []Anchor
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if s.Closest("template").Length() > 0 {
			return
		}
		href, _ := s.Attr("href")
		text := s.Text()
		if isPDFLink(text, href) {
			links = append(links, Anchor{Text: strings.TrimSpace(text), Href: href})
		}
	})
	return links, nil
}

func isPDFLink(text, href string) bool {
	return strings.Contains(strings.ToUpper(text), "PDF") ||
		strings.Contains(strings.ToLower(href), ".pdf")
}
