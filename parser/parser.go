// Package parser extracts text lines from downloaded cause-list PDFs and
// finds the lines that mention a case.
package parser

import (
	"strings"
	"unicode"
)

// groupIntoLines splits text items into lines using empty-string line-break
// markers. Adjacent empties are collapsed and leading/trailing empties trimmed.
func groupIntoLines(items []string) [][]string {
	var lines [][]string
	var current []string
	for _, item := range items {
		s := strings.TrimSpace(item)
		if s == "" {
			if len(current) > 0 {
				lines = append(lines, current)
				current = nil
			}
		} else {
			current = append(current, s)
		}
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}
	return lines
}

// Lines returns the text of the page, one string per visual line.
func (p Page) Lines() []string {
	grouped := groupIntoLines(ExtractTextItems(p.Content, p.Fonts))
	lines := make([]string, len(grouped))
	for i, l := range grouped {
		lines[i] = strings.Join(l, " ")
	}
	return lines
}

// SearchCase returns every line that contains needle. Comparison ignores
// case and whitespace so that kerning-induced splits (e.g. "CA/1" + "23/2023")
// still match.
func SearchCase(pages []Page, needle string) []Match {
	want := compact(needle)
	if want == "" {
		return nil
	}
	var matches []Match
	for _, p := range pages {
		for i, line := range p.Lines() {
			if strings.Contains(compact(line), want) {
				matches = append(matches, Match{Page: p.Number, Line: i + 1, Text: line})
			}
		}
	}
	return matches
}

// SearchFile extracts path and searches it for needle. Matches carry the
// file name.
func SearchFile(path, needle string) ([]Match, error) {
	pages, err := ExtractPages(path)
	if err != nil {
		return nil, err
	}
	matches := SearchCase(pages, needle)
	for i := range matches {
		matches[i].File = path
	}
	return matches, nil
}

func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
}
