package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalepa/ecourts/parser"
	"github.com/zalepa/ecourts/parser/parsertest"
)

func TestParseDirectory(t *testing.T) {
	h := newHarness(t, ``)
	pdfDir := t.TempDir()
	parsertest.WritePDF(t, pdfDir, "court1.pdf",
		"BT /F1 10 Tf 72 700 Td (Court No. 1) Tj 0 -12 Td [(1)-2000(CA/123/2023)-2000(A vs B)] TJ ET")
	parsertest.WritePDF(t, pdfDir, "court2.pdf",
		"BT /F1 10 Tf 72 700 Td (Court No. 2) Tj 0 -12 Td [(1)-2000(OS/9/2022)] TJ ET")
	out := filepath.Join(h.dir, "matches.json")

	require.NoError(t, h.run("parse", pdfDir, "--case", "CA/123/2023", "--json", out))

	assert.Contains(t, h.stdout.String(), "court1.pdf\tpage 1\tline 2\t1 CA/123/2023 A vs B")
	assert.Contains(t, h.stderr.String(), "court2.pdf: 0 matching lines")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var report parseReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "CA/123/2023", report.Case)
	assert.Equal(t, 2, report.Files)
	require.Len(t, report.Matches, 1)
	assert.Equal(t, parser.Match{
		File: filepath.Join(pdfDir, "court1.pdf"), Page: 1, Line: 2, Text: "1 CA/123/2023 A vs B",
	}, report.Matches[0])
	assert.Zero(t, h.opens)
}

func TestParseErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad case", []string{"parse", dir, "--case", "CA-123"}, `want TYPE/NUMBER/YEAR`},
		{"missing input", []string{"parse", filepath.Join(dir, "nope.pdf"), "--case", "CA/1/2024"}, "no such file"},
		{"empty directory", []string{"parse", dir, "--case", "CA/1/2024"}, "no PDF files found"},
		{"case required", []string{"parse", dir}, `required flag(s) "case" not set`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newHarness(t, ``).run(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
